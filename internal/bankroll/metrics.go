package bankroll

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SizingEnabled is 1 when stake sizing is allowed, 0 when gated.
	SizingEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bet_recommender_bankroll_sizing_enabled",
		Help: "Whether stake sizing is currently enabled (1) or gated (0)",
	})

	// Balance tracks the last fetched bankroll balance.
	Balance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bet_recommender_bankroll_balance",
		Help: "Last fetched bankroll balance",
	})

	// DailyLoss tracks the last fetched daily loss amount.
	DailyLoss = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bet_recommender_bankroll_daily_loss",
		Help: "Last fetched daily loss amount",
	})

	// StateChangesTotal counts gate transitions.
	StateChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_bankroll_state_changes_total",
		Help: "Total number of sizing gate state changes",
	})

	// CheckErrorsTotal counts failed bankroll checks.
	CheckErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_bankroll_check_errors_total",
		Help: "Total number of failed bankroll checks",
	})

	// CheckDuration tracks bankroll check latency.
	CheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bet_recommender_bankroll_check_duration_seconds",
		Help:    "Duration of bankroll checks",
		Buckets: prometheus.DefBuckets,
	})
)
