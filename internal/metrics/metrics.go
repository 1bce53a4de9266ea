// Package metrics exposes the Prometheus gauges/counters/histograms
// shared by every role binary.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks the number of live WebSocket sessions.
	ActiveConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ocpp_active_connections",
		Help: "Number of active WebSocket sessions, labeled by role.",
	}, []string{"role"})

	// MessagesReceived counts inbound frames labeled by OCPP version and Action.
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocpp_messages_received_total",
		Help: "Total number of OCPP-J frames received.",
	}, []string{"ocpp_version", "action"})

	// MessagesSent counts outbound frames labeled by Action.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocpp_messages_sent_total",
		Help: "Total number of OCPP-J frames sent.",
	}, []string{"ocpp_version", "action"})

	// CallErrorsSent counts CallError frames labeled by error code.
	CallErrorsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocpp_call_errors_sent_total",
		Help: "Total number of CallError frames sent, labeled by error code.",
	}, []string{"error_code"})

	// PendingCalls gauges the in-flight correlation-map size per connection role.
	PendingCalls = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ocpp_pending_calls",
		Help: "Number of outbound calls awaiting a CallResult/CallError.",
	}, []string{"role"})

	// CallTimeouts counts calls that hit their deadline unanswered.
	CallTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocpp_call_timeouts_total",
		Help: "Total number of outbound calls that timed out.",
	}, []string{"action"})

	// RequestFIFODepth gauges the persisted Request FIFO backlog.
	RequestFIFODepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ocpp_request_fifo_depth",
		Help: "Current number of entries retained in the request FIFO.",
	})

	// ConnectorStateTransitions counts connector status changes.
	ConnectorStateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocpp_connector_state_transitions_total",
		Help: "Total number of connector status transitions, labeled by resulting status.",
	}, []string{"status"})

	// EventsPublished counts integration events published to the event bus.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocpp_events_published_total",
		Help: "Total number of integration events published to the event bus.",
	}, []string{"event_type"})

	// CommandsConsumed counts downstream commands consumed from the event bus.
	CommandsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocpp_commands_consumed_total",
		Help: "Total number of downstream commands consumed from the event bus.",
	}, []string{"command_name"})

	// MessageProcessingDuration observes dispatcher handling latency.
	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ocpp_message_processing_duration_seconds",
		Help:    "Histogram of dispatcher handling time per Action.",
		Buckets: prometheus.LinearBuckets(0.005, 0.01, 12),
	}, []string{"action"})
)
