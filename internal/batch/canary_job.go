package batch

import (
	"churn-service/internal/domain/customer"
	"churn-service/internal/domain/prediction"
	"churn-service/internal/infrastructure/monitoring"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrCanaryDrift = errors.New("canary prediction drifted from baseline")

// CanaryJob scores a fixed reference record on a schedule. The first
// successful run becomes the baseline; any later result that differs means
// the loaded artifacts or the inference path changed under a running
// process. Wire it to an uncached prediction.Service.
type CanaryJob struct {
	service prediction.Service
	record  customer.Record
	logger  *slog.Logger

	mu       sync.Mutex
	baseline *prediction.Result
}

func NewCanaryJob(svc prediction.Service, logger *slog.Logger) *CanaryJob {
	if svc == nil || logger == nil {
		panic("CanaryJob dependencies cannot be nil")
	}
	return &CanaryJob{
		service: svc,
		record:  customer.DefaultRecord(),
		logger:  logger.With("job", "PredictionCanary"),
	}
}

func (j *CanaryJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.DebugContext(ctx, "Starting prediction canary run.")

	result, err := j.service.Predict(ctx, j.record)
	if err != nil {
		j.logger.ErrorContext(ctx, "Canary prediction failed.", slog.Any("error", err))
		monitoring.RecordCanaryRun(monitoring.CanaryOutcomeError, 0)
		return fmt.Errorf("canary prediction failed: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.baseline == nil {
		j.baseline = result
		j.logger.InfoContext(ctx, "Canary baseline recorded.",
			slog.Float64("churn_probability", result.ChurnProbability),
			slog.String("label", result.Label))
		monitoring.RecordCanaryRun(monitoring.CanaryOutcomeOK, result.ChurnProbability)
		return nil
	}

	if result.Prediction != j.baseline.Prediction ||
		result.ChurnProbability != j.baseline.ChurnProbability ||
		result.InputFeatures != j.baseline.InputFeatures {
		j.logger.WarnContext(ctx, "Canary prediction differs from baseline.",
			slog.Float64("baseline_probability", j.baseline.ChurnProbability),
			slog.Float64("churn_probability", result.ChurnProbability),
			slog.Int("baseline_prediction", j.baseline.Prediction),
			slog.Int("prediction", result.Prediction))
		monitoring.RecordCanaryRun(monitoring.CanaryOutcomeDrift, result.ChurnProbability)
		return fmt.Errorf("%w: baseline %.4f, got %.4f", ErrCanaryDrift, j.baseline.ChurnProbability, result.ChurnProbability)
	}

	monitoring.RecordCanaryRun(monitoring.CanaryOutcomeOK, result.ChurnProbability)
	j.logger.DebugContext(ctx, "Prediction canary run finished.", slog.Duration("duration", time.Since(startTime)))
	return nil
}
