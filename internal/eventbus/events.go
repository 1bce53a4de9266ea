// Package eventbus publishes charge-point lifecycle events to Kafka for
// downstream billing/analytics consumers and accepts remote commands
// from the same bus, letting an external operator tool issue
// Reset/RemoteStartTransaction/RemoteStopTransaction against any charge
// point currently connected to this instance.
package eventbus

import "time"

// EventType names the kind of Event carried on the bus.
type EventType string

const (
	EventTypeBootNotification       EventType = "boot_notification"
	EventTypeConnectorStatusChanged EventType = "connector_status_changed"
	EventTypeTransactionStarted     EventType = "transaction_started"
	EventTypeMeterValuesReceived    EventType = "meter_values_received"
	EventTypeTransactionStopped     EventType = "transaction_stopped"
	EventTypeSecurityEventLogged    EventType = "security_event_logged"
)

// Event is anything publishable on the bus. ChargePointID doubles as the
// Kafka partition key so all events for one charge point stay ordered.
type Event interface {
	Type() EventType
	ChargePointID() string
	Timestamp() time.Time
	Payload() any
}

type baseEvent struct {
	eventType     EventType
	chargePointID string
	timestamp     time.Time
	payload       any
}

func (e baseEvent) Type() EventType       { return e.eventType }
func (e baseEvent) ChargePointID() string { return e.chargePointID }
func (e baseEvent) Timestamp() time.Time  { return e.timestamp }
func (e baseEvent) Payload() any          { return e.payload }

// NewEvent builds an Event of the given type carrying payload verbatim.
func NewEvent(eventType EventType, chargePointID string, timestamp time.Time, payload any) Event {
	return baseEvent{eventType: eventType, chargePointID: chargePointID, timestamp: timestamp, payload: payload}
}

// BootNotificationPayload is published when a charge point completes
// registration.
type BootNotificationPayload struct {
	Vendor          string `json:"vendor"`
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmwareVersion,omitempty"`
}

// ConnectorStatusChangedPayload mirrors a StatusNotification.
type ConnectorStatusChangedPayload struct {
	ConnectorID    int    `json:"connectorId"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus"`
	ErrorCode      string `json:"errorCode,omitempty"`
}

// TransactionStartedPayload is published on StartTransaction.
type TransactionStartedPayload struct {
	ConnectorID   int    `json:"connectorId"`
	TransactionID int    `json:"transactionId"`
	IDTag         string `json:"idTag"`
	MeterStartWh  int    `json:"meterStartWh"`
}

// MeterValuesReceivedPayload carries one MeterValues report.
type MeterValuesReceivedPayload struct {
	ConnectorID   int            `json:"connectorId"`
	TransactionID *int           `json:"transactionId,omitempty"`
	SampledValues []SampledValue `json:"sampledValues"`
}

// SampledValue is one measurand reading within a MeterValuesReceivedPayload.
type SampledValue struct {
	Timestamp time.Time `json:"timestamp"`
	Measurand string    `json:"measurand"`
	Value     string    `json:"value"`
	Unit      string    `json:"unit,omitempty"`
}

// TransactionStoppedPayload is published on StopTransaction.
type TransactionStoppedPayload struct {
	TransactionID int    `json:"transactionId"`
	Reason        string `json:"reason,omitempty"`
	MeterStopWh   int    `json:"meterStopWh"`
}

// SecurityEventLoggedPayload mirrors one internal/chargepoint security log entry.
type SecurityEventLoggedPayload struct {
	EventType string `json:"eventType"`
	TechInfo  string `json:"techInfo,omitempty"`
	Critical  bool   `json:"critical"`
}
