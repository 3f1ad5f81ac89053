package prediction_test

import (
	"churn-service/internal/domain/customer"
	"churn-service/internal/domain/features"
	"churn-service/internal/domain/prediction"
	"churn-service/internal/pkg/apperrors"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Predict(x []float64) (int, float64, error) {
	args := m.Called(x)
	return args.Int(0), args.Get(1).(float64), args.Error(2)
}

func testCodec(t *testing.T) *features.Codec {
	t.Helper()
	enc, err := features.NewGenderEncoder([]string{"Female", "Male"})
	require.NoError(t, err)
	mean := []float64{650, 0.5, 39, 5, 76000, 1.5, 0.7, 0.5, 100000, 0.25, 0.25}
	scale := []float64{96, 0.5, 10, 2.9, 62000, 0.58, 0.46, 0.5, 57000, 0.43, 0.43}
	scaler, err := features.NewScaler(mean, scale)
	require.NoError(t, err)
	codec, err := features.NewCodec(enc, features.TrainedOrder, scaler)
	require.NoError(t, err)
	return codec
}

func setupTest(t *testing.T, cacheSize int) (*MockClassifier, prediction.Service) {
	t.Helper()
	classifier := new(MockClassifier)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := prediction.NewService(prediction.Artifacts{Codec: testCodec(t), Classifier: classifier}, cacheSize, logger)
	require.NoError(t, err)
	return classifier, svc
}

func TestService_Predict(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - churned", func(t *testing.T) {
		classifier, svc := setupTest(t, 0)
		classifier.On("Predict", mock.AnythingOfType("[]float64")).Return(1, 0.734567891, nil).Once()

		result, err := svc.Predict(ctx, customer.DefaultRecord())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Prediction)
		assert.Equal(t, 0.7346, result.ChurnProbability)
		assert.Equal(t, prediction.LabelChurned, result.Label)
		assert.Equal(t, features.RawFeatures{
			CreditScore:     652,
			Gender:          0,
			Age:             37,
			Tenure:          5,
			Balance:         97198.54,
			NumOfProducts:   1,
			HasCrCard:       1,
			IsActiveMember:  1,
			EstimatedSalary: 100193.91,
		}, result.InputFeatures)
		classifier.AssertExpectations(t)
	})

	t.Run("Success - stayed", func(t *testing.T) {
		classifier, svc := setupTest(t, 0)
		classifier.On("Predict", mock.Anything).Return(0, 0.12344, nil).Once()

		result, err := svc.Predict(ctx, customer.DefaultRecord())

		require.NoError(t, err)
		assert.Equal(t, 0, result.Prediction)
		assert.Equal(t, 0.1234, result.ChurnProbability)
		assert.Equal(t, prediction.LabelStayed, result.Label)
	})

	t.Run("Classifier receives scaled vector in trained order", func(t *testing.T) {
		classifier, svc := setupTest(t, 0)
		var got []float64
		classifier.On("Predict", mock.Anything).Run(func(args mock.Arguments) {
			got = args.Get(0).([]float64)
		}).Return(0, 0.2, nil).Once()

		_, err := svc.Predict(ctx, customer.DefaultRecord())
		require.NoError(t, err)
		require.Len(t, got, 11)
		assert.InDelta(t, (652.0-650)/96, got[0], 1e-12)
		assert.InDelta(t, (0-0.5)/0.5, got[1], 1e-12)
		assert.InDelta(t, (0-0.25)/0.43, got[10], 1e-12)
	})

	t.Run("Error - Unknown Gender never reaches classifier", func(t *testing.T) {
		classifier, svc := setupTest(t, 0)
		rec := customer.DefaultRecord()
		rec.Gender = "Unknown"

		result, err := svc.Predict(ctx, rec)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, apperrors.ErrUnknownCategory)
		classifier.AssertNotCalled(t, "Predict", mock.Anything)
	})

	t.Run("Error - Classifier failure", func(t *testing.T) {
		classifier, svc := setupTest(t, 0)
		modelErr := errors.New("tree references missing node")
		classifier.On("Predict", mock.Anything).Return(0, 0.0, modelErr).Once()

		_, err := svc.Predict(ctx, customer.DefaultRecord())

		assert.ErrorIs(t, err, modelErr)
		assert.Contains(t, err.Error(), "classifier failed")
	})

	t.Run("Error - Context cancelled", func(t *testing.T) {
		classifier, svc := setupTest(t, 0)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := svc.Predict(cancelled, customer.DefaultRecord())

		assert.ErrorIs(t, err, context.Canceled)
		classifier.AssertNotCalled(t, "Predict", mock.Anything)
	})
}

func TestService_PredictIsIdempotent(t *testing.T) {
	classifier, svc := setupTest(t, 0)
	classifier.On("Predict", mock.Anything).Return(1, 0.61, nil).Twice()
	ctx := context.Background()

	first, err := svc.Predict(ctx, customer.DefaultRecord())
	require.NoError(t, err)
	second, err := svc.Predict(ctx, customer.DefaultRecord())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	classifier.AssertExpectations(t)
}

func TestService_PredictCachesResults(t *testing.T) {
	classifier, svc := setupTest(t, 8)
	classifier.On("Predict", mock.Anything).Return(1, 0.61, nil).Once()
	ctx := context.Background()

	first, err := svc.Predict(ctx, customer.DefaultRecord())
	require.NoError(t, err)
	second, err := svc.Predict(ctx, customer.DefaultRecord())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	classifier.AssertNumberOfCalls(t, "Predict", 1)
}

func TestService_GermanyChangesOnlyGermanyColumn(t *testing.T) {
	classifier, svc := setupTest(t, 0)
	classifier.On("Predict", mock.Anything).Return(0, 0.3, nil)
	ctx := context.Background()

	france, err := svc.Predict(ctx, customer.DefaultRecord())
	require.NoError(t, err)

	rec := customer.DefaultRecord()
	rec.Geography = customer.GeographyGermany
	germany, err := svc.Predict(ctx, rec)
	require.NoError(t, err)

	want := france.InputFeatures
	want.GeographyGermany = 1
	assert.Equal(t, want, germany.InputFeatures)
}

func TestNewService_RequiresArtifacts(t *testing.T) {
	_, err := prediction.NewService(prediction.Artifacts{}, 0, nil)
	assert.Error(t, err)

	_, err = prediction.NewService(prediction.Artifacts{Codec: testCodec(t), Classifier: new(MockClassifier)}, 16, nil)
	assert.NoError(t, err)
}
