package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal counts dispatched inbound events by type and outcome (ok, not_found, invalid).
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Name:      "events_total",
		Help:      "Inbound quiz events by type and outcome.",
	}, []string{"type", "outcome"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quiz",
		Name:      "sessions_active",
		Help:      "Sessions currently held by the registry.",
	})

	ConnectedParticipants = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quiz",
		Name:      "participants_connected",
		Help:      "Participants currently registered.",
	})

	// DroppedMessages counts outbound messages discarded because a connection's queue was full.
	DroppedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz",
		Name:      "messages_dropped_total",
		Help:      "Outbound messages dropped for slow connections.",
	})
)
