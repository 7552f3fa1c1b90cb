package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FixturesPolledTotal tracks total fixtures returned by the feed API.
	FixturesPolledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_feed_fixtures_polled_total",
		Help: "Total number of fixtures returned by feed polls",
	})

	// NewFixturesTotal tracks fixtures newly tracked.
	NewFixturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_feed_new_fixtures_total",
		Help: "Total number of new fixtures tracked",
	})

	// FixturesTracked tracks the current tracked fixture count.
	FixturesTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bet_recommender_feed_fixtures_tracked",
		Help: "Number of fixtures currently tracked",
	})

	// QuotesForwardedTotal tracks polled quotes forwarded to the quote book.
	QuotesForwardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_feed_quotes_forwarded_total",
		Help: "Total number of polled quotes forwarded",
	})

	// QuoteFetchErrorsTotal tracks per-fixture quote fetch failures.
	QuoteFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_feed_quote_fetch_errors_total",
		Help: "Total number of quote fetch failures",
	})

	// PollDurationSeconds tracks feed poll latency.
	PollDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bet_recommender_feed_poll_duration_seconds",
		Help:    "Duration of feed API polls",
		Buckets: prometheus.DefBuckets,
	})

	// PollErrorsTotal tracks feed poll failures.
	PollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_feed_poll_errors_total",
		Help: "Total number of feed poll failures",
	})
)
