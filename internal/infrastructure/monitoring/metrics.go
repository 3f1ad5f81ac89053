package monitoring

import (
	"churn-service/internal/pkg/apperrors"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PredictionMetrics struct {
	PredictionsTotal *prometheus.CounterVec
	Probability      prometheus.Histogram
	Duration         *prometheus.HistogramVec
	ErrorsTotal      *prometheus.CounterVec
}

type CanaryMetrics struct {
	Probability prometheus.Gauge
	RunsTotal   *prometheus.CounterVec
}

var (
	Prediction = PredictionMetrics{
		PredictionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_predictions_total",
				Help: "Total number of churn predictions served, by label.",
			},
			[]string{"label", "cached"},
		),
		Probability: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "churn_prediction_probability",
				Help:    "Distribution of predicted churn probabilities.",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
			},
		),
		Duration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "churn_prediction_duration_seconds",
				Help:    "Histogram of prediction latencies.",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"cached"},
		),
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_prediction_errors_total",
				Help: "Total number of failed predictions, by error kind.",
			},
			[]string{"kind"},
		),
	}

	Canary = CanaryMetrics{
		Probability: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "churn_canary_probability",
				Help: "Churn probability of the reference record at the last canary run.",
			},
		),
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "churn_canary_runs_total",
				Help: "Total number of canary runs, by outcome.",
			},
			[]string{"outcome"},
		),
	}
)

func RecordPrediction(label string, probability float64, cached bool, duration time.Duration) {
	cachedLabel := boolLabel(cached)
	Prediction.PredictionsTotal.WithLabelValues(label, cachedLabel).Inc()
	Prediction.Probability.Observe(probability)
	Prediction.Duration.WithLabelValues(cachedLabel).Observe(duration.Seconds())
}

func RecordPredictionError(err error) {
	Prediction.ErrorsTotal.WithLabelValues(ErrorKind(err)).Inc()
}

func RecordCanaryRun(outcome string, probability float64) {
	Canary.RunsTotal.WithLabelValues(outcome).Inc()
	if outcome != CanaryOutcomeError {
		Canary.Probability.Set(probability)
	}
}

const (
	CanaryOutcomeOK    = "ok"
	CanaryOutcomeDrift = "drift"
	CanaryOutcomeError = "error"
)

// ErrorKind names the taxonomy bucket of err for metric labels.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	case errors.Is(err, apperrors.ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(err, apperrors.ErrSchemaMismatch):
		return "schema_mismatch"
	default:
		return "internal"
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
