package main

import (
	"churn-service/internal/client"
	"churn-service/internal/config"
	"churn-service/internal/domain/customer"
	"churn-service/internal/domain/dashboard"
	"churn-service/internal/infrastructure/database/postgres"
	"churn-service/internal/infrastructure/dataset"
	"churn-service/internal/infrastructure/logging"
	"churn-service/internal/web"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Dashboard starting...", "port", cfg.Dashboard.Port, "api_url", cfg.Dashboard.APIURL)

	repo, closeRepo, err := initializeRepository(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dataset source", "source", cfg.Dataset.Source, "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	handler := web.NewHandler(
		client.NewPredictClient(cfg.Dashboard.APIURL, cfg.Dashboard.RequestTimeout),
		dashboard.NewService(repo, logger),
		cfg.Dashboard.APIURL,
		logger,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Dashboard.Port),
		Handler:      web.NewRouter(handler, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	if err := run(srv, logger); err != nil {
		logger.Error("Dashboard exited with error", "error", err)
		os.Exit(1)
	}
}

// initializeRepository picks the dataset source. The returned close func is
// always safe to call.
func initializeRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (customer.HistoryRepository, func(), error) {
	switch cfg.Dataset.Source {
	case config.DatasetSourcePostgres:
		pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return postgres.NewDatasetRepository(pool, logger), pool.Close, nil
	default:
		logger.Info("Reading dataset from CSV", "path", cfg.Dataset.Path)
		return dataset.NewCSVRepository(cfg.Dataset.Path, logger), func() {}, nil
	}
}

func run(srv *http.Server, logger *slog.Logger) error {
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Dashboard listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Dashboard stopped.")
	return nil
}
