package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsBuiltTotal tracks recommendations produced by track.
	RecommendationsBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_recommendations_built_total",
			Help: "Total number of recommendations produced",
		},
		[]string{"track"},
	)

	// EmptyRecommendationsTotal tracks valid empty outcomes by reason.
	EmptyRecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_empty_recommendations_total",
			Help: "Total number of fixtures scored without producing a recommendation",
		},
		[]string{"reason"},
	)

	// CrossLeagueRejectionsTotal tracks league guard rejections by model.
	CrossLeagueRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_cross_league_rejections_total",
			Help: "Total number of model outputs rejected by the league guard",
		},
		[]string{"model_id"},
	)

	// ModelOutputsExcludedTotal tracks outputs dropped before aggregation.
	ModelOutputsExcludedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_model_outputs_excluded_total",
			Help: "Total number of model outputs excluded from the ensemble",
		},
		[]string{"reason"},
	)

	// MarketsEvaluatedTotal tracks completed market evaluations.
	MarketsEvaluatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_markets_evaluated_total",
			Help: "Total number of market evaluations with odds available",
		},
		[]string{"market"},
	)

	// MarketsWithoutQuoteTotal tracks evaluations lacking a usable quote.
	MarketsWithoutQuoteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_markets_without_quote_total",
			Help: "Total number of market evaluations with no odds for the predicted outcome",
		},
		[]string{"market"},
	)

	// MarketsDroppedTotal tracks markets dropped during evaluation by reason.
	MarketsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_markets_dropped_total",
			Help: "Total number of markets dropped from a fixture's evaluation",
		},
		[]string{"reason"},
	)

	// SelectionsFilteredTotal tracks markets filtered by the selector.
	SelectionsFilteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_selections_filtered_total",
			Help: "Total number of markets filtered out during best-market selection",
		},
		[]string{"reason"},
	)

	// TrackAssignedTotal tracks bet track classifications.
	TrackAssignedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_track_assigned_total",
			Help: "Total number of bet track classifications",
		},
		[]string{"track"},
	)

	// StakesZeroTotal tracks zero-stake outcomes by reason.
	StakesZeroTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_stakes_zero_total",
			Help: "Total number of zero-stake recommendations",
		},
		[]string{"reason"},
	)

	// StakesCappedTotal tracks stakes clamped by the per-bet ceiling.
	StakesCappedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_stakes_capped_total",
		Help: "Total number of stakes capped by the per-bet ceiling",
	})

	// StakePercentObserved tracks recommended stake fractions.
	StakePercentObserved = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bet_recommender_stake_percent",
		Help:    "Recommended stake as a fraction of bankroll",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.02, 0.03, 0.05, 0.1},
	})

	// ExpectedValueObserved tracks evaluated market edges.
	ExpectedValueObserved = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bet_recommender_expected_value",
		Help:    "Expected value of evaluated markets",
		Buckets: []float64{-0.2, -0.1, -0.05, -0.02, 0, 0.02, 0.05, 0.1, 0.2, 0.5},
	})

	// EnsembleModelCount tracks ensemble sizes.
	EnsembleModelCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bet_recommender_ensemble_model_count",
		Help:    "Number of models contributing to an ensemble",
		Buckets: []float64{1, 2, 3, 4, 5, 8, 12},
	})

	// EnsembleVariance tracks model disagreement.
	EnsembleVariance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bet_recommender_ensemble_variance",
		Help:    "Variance of model top-outcome probability estimates",
		Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})

	// BuildDurationSeconds tracks full pipeline latency per fixture.
	BuildDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bet_recommender_build_duration_seconds",
		Help:    "Duration of the full recommendation pipeline for one fixture",
		Buckets: prometheus.DefBuckets,
	})
)
