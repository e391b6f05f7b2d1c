package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WSConnections tracks currently open chat connections.
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cabinet_chat_ws_connections",
			Help: "Open WebSocket chat connections",
		},
	)

	// MessagesTotal counts stored messages by sender role.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cabinet_chat_messages_total",
			Help: "Total chat messages stored",
		},
		[]string{"sender_role"},
	)

	// EventsTotal counts gateway events by name and outcome.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cabinet_chat_events_total",
			Help: "Total gateway events handled",
		},
		[]string{"event", "outcome"},
	)

	// BroadcastRecipients observes fan-out size per room broadcast.
	BroadcastRecipients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cabinet_chat_broadcast_recipients",
			Help:    "Connections reached per room broadcast",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)
)
