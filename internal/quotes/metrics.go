package quotes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics are package-level by convention
var (
	// QuotesReceivedTotal counts quotes received per market
	QuotesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_quotes_received_total",
			Help: "Total number of odds quotes received",
		},
		[]string{"market"},
	)

	// QuotesStaleTotal counts quotes discarded for being older than the stored one
	QuotesStaleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_quotes_stale_total",
			Help: "Total number of quotes discarded as stale",
		},
		[]string{"market"},
	)

	// QuotesDroppedTotal counts quote updates dropped on the outbound channel
	QuotesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_quote_updates_dropped_total",
			Help: "Total number of quote updates dropped",
		},
		[]string{"reason"},
	)

	// QuotesTracked tracks the number of (fixture, market) quotes held
	QuotesTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bet_recommender_quotes_tracked",
			Help: "Number of quotes currently tracked",
		},
	)

	// QuoteProcessingDuration tracks quote handling latency
	QuoteProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bet_recommender_quote_processing_duration_seconds",
			Help:    "Time to process a quote update",
			Buckets: prometheus.ExponentialBuckets(0.000001, 10, 8),
		},
	)
)
