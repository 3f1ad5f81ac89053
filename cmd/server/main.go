package main

import (
	_ "churn-service/docs"
	"churn-service/internal/api"
	"churn-service/internal/batch"
	"churn-service/internal/config"
	"churn-service/internal/domain/prediction"
	"churn-service/internal/infrastructure/artifacts"
	"churn-service/internal/infrastructure/logging"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

// @title Churn Prediction API
// @version 1.0
// @description Predicts whether a bank customer will churn from a trained gradient-boosted classifier.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	loaded := loadArtifacts(cfg, logger)
	predictionService, canaryService := initializeServices(cfg, loaded, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cronScheduler := startBatchJobs(cfg, logger, batch.NewCanaryJob(canaryService, logger))
	router := api.SetupRouter(ctx, predictionService, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "port", cfg.Server.Port)

	return cfg, logger
}

// loadArtifacts exits the process when any artifact is missing or malformed;
// the service never starts half-loaded.
func loadArtifacts(cfg *config.Config, logger *slog.Logger) prediction.Artifacts {
	dir, err := artifacts.ResolveDir(cfg.Artifacts.Dir)
	if err != nil {
		logger.Error("Failed to resolve artifacts directory", "error", err)
		os.Exit(1)
	}

	loaded, err := artifacts.Load(dir, logger)
	if err != nil {
		logger.Error("Failed to load model artifacts", "dir", dir, "error", err)
		os.Exit(1)
	}
	return loaded
}

// initializeServices returns the request-serving service and an uncached one
// for the canary; both share the same read-only artifacts.
func initializeServices(cfg *config.Config, loaded prediction.Artifacts, logger *slog.Logger) (prediction.Service, prediction.Service) {
	logger.Info("Initializing application components...")
	predictionService, err := prediction.NewService(loaded, cfg.Prediction.CacheSize, logger)
	if err != nil {
		logger.Error("Failed to initialize prediction service", "error", err)
		os.Exit(1)
	}
	canaryService, err := prediction.NewService(loaded, 0, logger)
	if err != nil {
		logger.Error("Failed to initialize canary prediction service", "error", err)
		os.Exit(1)
	}
	return predictionService, canaryService
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, canaryJob *batch.CanaryJob) *cron.Cron {
	c, err := batch.StartScheduler(cfg.Canary, canaryJob, logger)
	if err != nil {
		logger.Warn("Continuing without scheduled canary", slog.Any("error", err))
		c = cron.New()
		c.Start()
	}
	return c
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	triggerReason := waitForShutdownTrigger(shutdownChan, serverErrors, logger)

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	stopCronScheduler(cronScheduler, logger)
	shutdownHTTPServer(srv, serverErrors, logger)

	logger.Info("Application shutdown process complete.")
}

func waitForShutdownTrigger(shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) string {
	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
		return "signal: " + sig.String()
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		logger.Info("Server goroutine finished before signal.", "error", err)
		return "server exited"
	}
}

func stopCronScheduler(cronScheduler *cron.Cron, logger *slog.Logger) {
	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}
}

func shutdownHTTPServer(srv *http.Server, serverErrors <-chan error, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}
}
