package dashboard

import (
	"churn-service/internal/domain/customer"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

var _ Service = (*service)(nil)

// service loads the dataset on first use and keeps the computed statistics
// for the process lifetime. A failed load is retried on the next call.
type service struct {
	repo   customer.HistoryRepository
	logger *slog.Logger

	mu    sync.Mutex
	stats *Stats
}

func NewService(repo customer.HistoryRepository, logger *slog.Logger) Service {
	if repo == nil {
		panic("HistoryRepository cannot be nil for dashboard service")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to dashboard.NewService, using default stderr handler")
	}
	return &service{repo: repo, logger: logger.With(slog.String("component", "dashboardService"))}
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats != nil {
		return s.stats, nil
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	stats := Compute(records)
	s.stats = &stats
	s.logger.InfoContext(ctx, "Computed dataset statistics",
		slog.Int("rows", stats.Summary.Total),
		slog.Float64("churnRate", stats.Summary.ChurnRate))
	return s.stats, nil
}
