package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connections
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taberna_connections_active",
		Help: "The current number of open WebSocket connections.",
	})
	TotalConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taberna_connections_total",
		Help: "The total number of WebSocket connections accepted.",
	})

	// Messages
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taberna_messages_received_total",
		Help: "Inbound messages by type. Unparsable frames are counted as \"invalid\".",
	}, []string{"type"})
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taberna_messages_sent_total",
		Help: "Outbound frames written to clients.",
	})
	SendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taberna_send_failures_total",
		Help: "Outbound messages that could not be delivered, by reason.",
	}, []string{"reason"})
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taberna_messages_rate_limited_total",
		Help: "Inbound messages dropped by the per-connection rate limiter.",
	})

	// Tavern state
	SeatsOccupied = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taberna_seats_occupied",
		Help: "Seats currently held by a player.",
	})
	ActiveDuels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taberna_duels_active",
		Help: "Duels accepted and not yet resolved.",
	})
	DuelsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taberna_duels_resolved_total",
		Help: "Finished duels by outcome: win, tie, timeout or forfeit.",
	}, []string{"outcome"})
	ChatMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taberna_chat_messages_total",
		Help: "Chat log entries appended, by kind.",
	}, []string{"kind"})
)

// Send failure reasons.
const (
	ReasonQueueFull = "queue_full"
	ReasonClosed    = "closed"
	ReasonWrite     = "write"
	ReasonMarshal   = "marshal"
)
