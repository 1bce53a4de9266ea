package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/metrics"
)

// Command is a downstream-issued remote action, decoded from the
// consumer group's downstream topic.
type Command struct {
	Action        string          `json:"action"`
	ChargePointID string          `json:"chargePointId"`
	Payload       json.RawMessage `json:"payload"`
}

// ChargePoint is the subset of a connected charge point's outbound
// command API a Command can invoke. centralsystem.IChargePoint already
// satisfies this.
type ChargePoint interface {
	Reset(ctx context.Context, req ocpp16.ResetRequest) (*ocpp16.ResetResponse, error)
	RemoteStartTransaction(ctx context.Context, req ocpp16.RemoteStartTransactionRequest) (*ocpp16.RemoteStartTransactionResponse, error)
	RemoteStopTransaction(ctx context.Context, req ocpp16.RemoteStopTransactionRequest) (*ocpp16.RemoteStopTransactionResponse, error)
}

// ChargePointLookup resolves a charge point identifier to its connected
// handle, or ok=false when no session for it is live on this instance.
type ChargePointLookup func(chargePointID string) (ChargePoint, bool)

// Consumer drives a sarama consumer group, decoding each message as a
// Command and routing it to the charge point it names.
type Consumer struct {
	group  sarama.ConsumerGroup
	topic  string
	lookup ChargePointLookup
	log    *logger.Logger
	cancel context.CancelFunc
}

// NewConsumer dials brokers and joins groupID, ready to Start consuming
// topic once a ChargePointLookup is supplied.
func NewConsumer(brokers []string, groupID, topic string, lookup ChargePointLookup, log *logger.Logger) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRange()
	cfg.Consumer.Group.Session.Timeout = 10 * time.Second
	cfg.Consumer.Group.Heartbeat.Interval = 3 * time.Second

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("eventbus: create consumer group: %w", err)
	}

	c := &Consumer{group: group, topic: topic, lookup: lookup, log: log}
	go func() {
		for err := range group.Errors() {
			if log != nil {
				log.Errorf("eventbus: consumer group error: %v", err)
			}
		}
	}()
	return c, nil
}

// Start joins the consumer group's claim loop in a background goroutine,
// retrying on rebalance/transient errors until Close is called.
func (c *Consumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
				if c.log != nil {
					c.log.Errorf("eventbus: consume error: %v", err)
				}
			}
			if ctx.Err() != nil {
				return
			}
			time.Sleep(time.Second)
		}
	}()
}

// Close stops the consume loop and leaves the consumer group.
func (c *Consumer) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.group.Close()
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim decodes each message as a Command and dispatches it,
// marking every message regardless of outcome since a failed remote
// command is not retryable by replaying the same Kafka offset.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var cmd Command
		if err := json.Unmarshal(msg.Value, &cmd); err != nil {
			if c.log != nil {
				c.log.Errorf("eventbus: decode command: %v", err)
			}
			session.MarkMessage(msg, "")
			continue
		}

		c.dispatch(session.Context(), cmd)
		metrics.CommandsConsumed.WithLabelValues(cmd.Action).Inc()
		session.MarkMessage(msg, "")
	}
	return nil
}

func (c *Consumer) dispatch(ctx context.Context, cmd Command) {
	cp, ok := c.lookup(cmd.ChargePointID)
	if !ok {
		if c.log != nil {
			c.log.Warnf("eventbus: command %s for %s: charge point not connected here", cmd.Action, cmd.ChargePointID)
		}
		return
	}

	var err error
	switch cmd.Action {
	case string(ocpp16.ActionReset):
		var req ocpp16.ResetRequest
		if err = json.Unmarshal(cmd.Payload, &req); err == nil {
			_, err = cp.Reset(ctx, req)
		}
	case string(ocpp16.ActionRemoteStartTransaction):
		var req ocpp16.RemoteStartTransactionRequest
		if err = json.Unmarshal(cmd.Payload, &req); err == nil {
			_, err = cp.RemoteStartTransaction(ctx, req)
		}
	case string(ocpp16.ActionRemoteStopTransaction):
		var req ocpp16.RemoteStopTransactionRequest
		if err = json.Unmarshal(cmd.Payload, &req); err == nil {
			_, err = cp.RemoteStopTransaction(ctx, req)
		}
	default:
		err = fmt.Errorf("eventbus: unsupported command action %q", cmd.Action)
	}

	if err != nil && c.log != nil {
		c.log.Errorf("eventbus: command %s for %s failed: %v", cmd.Action, cmd.ChargePointID, err)
	}
}
