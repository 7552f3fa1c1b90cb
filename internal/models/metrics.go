package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics are package-level by convention
var (
	// ModelFetchErrorsTotal counts failed output fetches per model
	ModelFetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_model_fetch_errors_total",
			Help: "Total number of failed model output fetches",
		},
		[]string{"model_id"},
	)

	// ModelOutputsSkippedTotal counts serving-API outputs dropped before scoring
	ModelOutputsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_model_outputs_skipped_total",
			Help: "Total number of model outputs skipped during fetch",
		},
		[]string{"reason"},
	)

	// OutputCacheHitsTotal counts model output cache hits
	OutputCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bet_recommender_model_output_cache_hits_total",
			Help: "Total number of model output cache hits",
		},
	)

	// OutputCacheMissesTotal counts model output cache misses
	OutputCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bet_recommender_model_output_cache_misses_total",
			Help: "Total number of model output cache misses",
		},
	)
)
