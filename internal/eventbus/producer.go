package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/metrics"
)

// IntegrationEvent is the wire format published to the upstream topic,
// stable across this runtime's own internal Event representation so
// downstream billing/analytics consumers don't need to track it.
type IntegrationEvent struct {
	EventID       string `json:"eventId"`
	EventType     string `json:"eventType"`
	ChargePointID string `json:"chargePointId"`
	InstanceID    string `json:"instanceId"`
	Timestamp     string `json:"timestamp"`
	Payload       any    `json:"payload"`
}

// Producer publishes Events to Kafka asynchronously, one partition per
// charge point so a single charge point's events stay ordered.
type Producer struct {
	producer   sarama.AsyncProducer
	topic      string
	instanceID string
	log        *logger.Logger

	nextID func() string
}

// NewProducer dials brokers and starts the success/error drain
// goroutines. idGenerator supplies the EventID field; pass
// google/uuid.NewString.
func NewProducer(brokers []string, topic, instanceID string, idGenerator func() string, log *logger.Logger) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Flush.Frequency = 500 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	sp, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("eventbus: create producer: %w", err)
	}

	p := &Producer{
		producer:   sp,
		topic:      topic,
		instanceID: instanceID,
		log:        log,
		nextID:     idGenerator,
	}
	go p.drainSuccesses()
	go p.drainErrors()
	return p, nil
}

// Publish serializes event as an IntegrationEvent and enqueues it on the
// producer's input channel; it returns once Kafka accepts the message
// into the client's internal buffer, not once a broker acknowledges it.
func (p *Producer) Publish(event Event) error {
	integration := IntegrationEvent{
		EventID:       p.nextID(),
		EventType:     string(event.Type()),
		ChargePointID: event.ChargePointID(),
		InstanceID:    p.instanceID,
		Timestamp:     event.Timestamp().UTC().Format(time.RFC3339Nano),
		Payload:       event.Payload(),
	}

	data, err := json.Marshal(integration)
	if err != nil {
		return fmt.Errorf("eventbus: marshal event: %w", err)
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic:    p.topic,
		Key:      sarama.StringEncoder(event.ChargePointID()),
		Value:    sarama.ByteEncoder(data),
		Metadata: event,
	}
	return nil
}

func (p *Producer) drainSuccesses() {
	for msg := range p.producer.Successes() {
		if event, ok := msg.Metadata.(Event); ok {
			metrics.EventsPublished.WithLabelValues(string(event.Type())).Inc()
		}
	}
}

func (p *Producer) drainErrors() {
	for err := range p.producer.Errors() {
		if p.log != nil {
			p.log.Errorf("eventbus: publish failed for topic %s: %v", err.Msg.Topic, err.Err)
		}
	}
}

// Close flushes and shuts down the underlying Kafka producer.
func (p *Producer) Close() error {
	return p.producer.Close()
}
