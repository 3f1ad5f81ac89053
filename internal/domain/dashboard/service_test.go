package dashboard

import (
	"churn-service/internal/domain/customer"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) FindAll(ctx context.Context) ([]customer.HistoricalRecord, error) {
	args := m.Called(ctx)
	if records, ok := args.Get(0).([]customer.HistoricalRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - dataset loaded once", func(t *testing.T) {
		repo := new(MockHistoryRepository)
		repo.On("FindAll", mock.Anything).Return(sampleRecords(), nil).Once()
		svc := NewService(repo, logger)

		first, err := svc.Stats(ctx)
		require.NoError(t, err)
		second, err := svc.Stats(ctx)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 4, first.Summary.Total)
		repo.AssertExpectations(t)
	})

	t.Run("Error - load failure is retried", func(t *testing.T) {
		repo := new(MockHistoryRepository)
		repo.On("FindAll", mock.Anything).Return(nil, errors.New("disk offline")).Once()
		repo.On("FindAll", mock.Anything).Return(sampleRecords(), nil).Once()
		svc := NewService(repo, logger)

		_, err := svc.Stats(ctx)
		assert.ErrorContains(t, err, "failed to load dataset")

		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Summary.Churned)
		repo.AssertExpectations(t)
	})

	t.Run("Panic - nil repository", func(t *testing.T) {
		assert.Panics(t, func() { NewService(nil, logger) })
	})
}
