package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictor_predictions_total",
		Help: "Total number of predictions served, by path",
	}, []string{"path"})

	predictionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "predictor_prediction_duration_seconds",
		Help:    "Duration of prediction requests, by path",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	statReadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictor_stat_read_failures_total",
		Help: "Statistic reads that failed and fell back to the field default",
	}, []string{"field"})

	probabilityRenormalizations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predictor_probability_renormalizations_total",
		Help: "Probability triples that fell outside tolerance and were renormalized",
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predictor_cache_hits_total",
		Help: "Predictions served from the Redis cache",
	})
)

// Prediction path labels.
const (
	pathLearned    = "learned"
	pathFallback   = "rating_fallback"
	pathNoArtifact = "no_artifact"
)
