package batch

import (
	"churn-service/internal/config"
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	defaultCanarySchedule = "*/5 * * * *"
	defaultCanaryTimeout  = 30 * time.Second
)

// Job is a unit of scheduled work.
type Job interface {
	Run(ctx context.Context) error
}

// StartScheduler registers the canary and starts the cron scheduler. A
// disabled canary still returns a running, empty scheduler so shutdown is
// uniform.
func StartScheduler(cfg config.CanaryConfig, job Job, logger *slog.Logger) (*cron.Cron, error) {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	if cfg.Enabled {
		scheduleSpec := cfg.Schedule
		if scheduleSpec == "" {
			scheduleSpec = defaultCanarySchedule
			logger.Warn("Canary schedule not configured, using default", "schedule", scheduleSpec)
		}
		jobTimeout := cfg.Timeout
		if jobTimeout <= 0 {
			jobTimeout = defaultCanaryTimeout
		}

		jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
			runWithTimeout(job, jobTimeout, logger.With("job_name", "PredictionCanary"))
		}))
		if err != nil {
			logger.Error("Failed to schedule canary job", "schedule", scheduleSpec, slog.Any("error", err))
			return nil, err
		}
		logger.Info("Scheduled canary job", "schedule", scheduleSpec, "job_id", jobID)
	} else {
		logger.Info("Canary job disabled.")
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c, nil
}

func runWithTimeout(job Job, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		logger.Error("Canary job finished with error", slog.Any("error", err))
		return
	}
	logger.Debug("Canary job finished successfully.")
}
