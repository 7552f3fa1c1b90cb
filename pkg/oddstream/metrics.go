package oddstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks active odds stream connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bet_recommender_oddstream_active_connections",
		Help: "Number of active odds stream connections",
	})

	// ReconnectAttemptsTotal tracks reconnection attempts.
	ReconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_oddstream_reconnect_attempts_total",
		Help: "Total number of odds stream reconnection attempts",
	})

	// ReconnectFailuresTotal tracks reconnection failures.
	ReconnectFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_oddstream_reconnect_failures_total",
		Help: "Total number of odds stream reconnection failures",
	})

	// MessagesReceivedTotal tracks messages received by type.
	MessagesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_oddstream_messages_received_total",
			Help: "Total number of odds stream messages received",
		},
		[]string{"event_type"},
	)

	// MessageLatencySeconds tracks message processing latency.
	MessageLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bet_recommender_oddstream_message_latency_seconds",
		Help:    "Odds stream message processing latency",
		Buckets: prometheus.DefBuckets,
	})

	// SubscriptionCount tracks active fixture subscriptions.
	SubscriptionCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bet_recommender_oddstream_subscription_count",
		Help: "Number of active fixture subscriptions",
	})

	// MessagesDroppedTotal tracks quotes dropped before delivery.
	MessagesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_recommender_oddstream_messages_dropped_total",
			Help: "Total number of odds stream messages dropped",
		},
		[]string{"reason"},
	)

	// ConnectionDuration tracks odds stream connection lifetime.
	ConnectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bet_recommender_oddstream_connection_duration_seconds",
		Help:    "Duration of odds stream connections before disconnect",
		Buckets: []float64{60, 300, 600, 1800, 3600, 7200, 14400, 28800, 43200, 86400},
	})

	// UnsubscriptionsTotal tracks fixture unsubscriptions.
	UnsubscriptionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bet_recommender_oddstream_unsubscriptions_total",
		Help: "Total number of fixture unsubscriptions",
	})
)
