package prediction

import (
	"churn-service/internal/domain/customer"
	"churn-service/internal/domain/features"
	"churn-service/internal/infrastructure/monitoring"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
)

const (
	LabelChurned = "Churned"
	LabelStayed  = "Stayed"

	probabilityPlaces = 4
)

// Classifier maps a scaled feature vector to a binary label and the
// probability of class 1.
type Classifier interface {
	Predict(features []float64) (int, float64, error)
}

// Artifacts is the read-only state produced by training and loaded once at
// startup. Nothing in request handling mutates it.
type Artifacts struct {
	Codec      *features.Codec
	Classifier Classifier
}

type Result struct {
	Prediction       int
	ChurnProbability float64
	Label            string
	InputFeatures    features.RawFeatures
}

type Service interface {
	Predict(ctx context.Context, rec customer.Record) (*Result, error)
}

var _ Service = (*service)(nil)

type service struct {
	artifacts Artifacts
	cache     *lru.Cache[customer.Record, Result]
	logger    *slog.Logger
}

// NewService builds the inference service. Results are memoized in an LRU
// of cacheSize entries; zero disables the cache.
func NewService(artifacts Artifacts, cacheSize int, logger *slog.Logger) (Service, error) {
	if artifacts.Codec == nil || artifacts.Classifier == nil {
		return nil, errors.New("prediction artifacts must include a codec and a classifier")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewService, using default stderr handler")
	}

	svc := &service{
		artifacts: artifacts,
		logger:    logger.With(slog.String("component", "predictionService")),
	}
	if cacheSize > 0 {
		cache, err := lru.New[customer.Record, Result](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create prediction cache: %w", err)
		}
		svc.cache = cache
	}
	return svc, nil
}

// Predict expects a record that already passed customer.Record.Validate.
func (s *service) Predict(ctx context.Context, rec customer.Record) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	if s.cache != nil {
		if cached, ok := s.cache.Get(rec); ok {
			s.logger.DebugContext(ctx, "Prediction served from cache")
			monitoring.RecordPrediction(cached.Label, cached.ChurnProbability, true, time.Since(start))
			return &cached, nil
		}
	}

	raw, scaled, err := s.artifacts.Codec.Transform(rec)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to encode customer record", slog.Any("error", err))
		monitoring.RecordPredictionError(err)
		return nil, err
	}

	label, probability, err := s.artifacts.Classifier.Predict(scaled)
	if err != nil {
		s.logger.ErrorContext(ctx, "Classifier failed", slog.Any("error", err))
		monitoring.RecordPredictionError(err)
		return nil, fmt.Errorf("classifier failed: %w", err)
	}

	result := Result{
		Prediction:       label,
		ChurnProbability: roundProbability(probability),
		Label:            labelFor(label),
		InputFeatures:    raw,
	}
	if s.cache != nil {
		s.cache.Add(rec, result)
	}

	s.logger.DebugContext(ctx, "Prediction computed",
		slog.Int("prediction", result.Prediction),
		slog.Float64("churn_probability", result.ChurnProbability))
	monitoring.RecordPrediction(result.Label, result.ChurnProbability, false, time.Since(start))
	return &result, nil
}

func roundProbability(p float64) float64 {
	return decimal.NewFromFloat(p).Round(probabilityPlaces).InexactFloat64()
}

func labelFor(prediction int) string {
	if prediction == 1 {
		return LabelChurned
	}
	return LabelStayed
}
