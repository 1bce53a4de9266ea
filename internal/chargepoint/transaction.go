package chargepoint

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/connector"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/fifo"
)

// TransactionManager owns the StartTransaction/StopTransaction/
// MeterValues lifecycle. The online path calls straight through to the
// Central System; the offline path enqueues the same action onto the
// durable per-transaction FIFO so it is retried, in order, once the
// link comes back — the split this spec calls out explicitly for the
// transaction manager.
type TransactionManager struct {
	connectors *connector.Table
	queue      *fifo.Queue
	call       CallFunc
}

// NewTransactionManager builds a TransactionManager over one charge
// point's connector table and Request FIFO.
func NewTransactionManager(connectors *connector.Table, queue *fifo.Queue, call CallFunc) *TransactionManager {
	return &TransactionManager{connectors: connectors, queue: queue, call: call}
}

// offlineTransactionKey is the FIFO's transaction_id grouping key for a
// transaction that has not yet been assigned a real id by the Central
// System; it is keyed by connector since a charge point may have
// several connectors charging offline at once.
func offlineTransactionKey(connectorID int) string {
	return "offline/" + strconv.Itoa(connectorID)
}

// StartTransaction attempts StartTransaction online; if the call itself
// fails (link down, timeout), it records the -1 offline sentinel on the
// connector and enqueues the request for later retry instead of
// failing the local charging session outright.
func (m *TransactionManager) StartTransaction(ctx context.Context, connectorID int, idTag string, meterStart int, reservationID *int) (*ocpp16.StartTransactionResponse, error) {
	req := ocpp16.StartTransactionRequest{
		ConnectorId:   connectorID,
		IdTag:         idTag,
		MeterStart:    meterStart,
		ReservationId: reservationID,
		Timestamp:     ocpp16.DateTime{Time: time.Now().UTC()},
	}

	c := m.connectors.Get(connectorID)

	result, callErr, err := m.call(ctx, string(ocpp16.ActionStartTransaction), req)
	if err == nil && callErr == nil {
		var resp ocpp16.StartTransactionResponse
		if decErr := decodeInto(result, &resp); decErr != nil {
			return nil, decErr
		}
		if c != nil {
			c.StartTransaction(resp.TransactionId, idTag, ptrString(resp.IdTagInfo.ParentIdTag), req.Timestamp.Time)
		}
		return &resp, nil
	}
	if callErr != nil {
		return nil, callErr
	}

	payload, marshalErr := json.Marshal(req)
	if marshalErr != nil {
		return nil, marshalErr
	}
	if c != nil {
		c.StartOfflineTransaction(idTag, req.Timestamp.Time)
	}
	if m.queue != nil {
		if pushErr := m.queue.Push(ctx, offlineTransactionKey(connectorID), string(ocpp16.ActionStartTransaction), payload); pushErr != nil {
			return nil, pushErr
		}
	}
	return &ocpp16.StartTransactionResponse{
		IdTagInfo:     ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted},
		TransactionId: -1,
	}, nil
}

// StopTransaction mirrors StartTransaction's online/offline split.
func (m *TransactionManager) StopTransaction(ctx context.Context, transactionID, meterStop int, reason *ocpp16.Reason, idTag *string, transactionData []ocpp16.MeterValue) error {
	req := ocpp16.StopTransactionRequest{
		IdTag:           idTag,
		MeterStop:       meterStop,
		Timestamp:       ocpp16.DateTime{Time: time.Now().UTC()},
		TransactionId:   transactionID,
		Reason:          reason,
		TransactionData: transactionData,
	}

	_, callErr, err := m.call(ctx, string(ocpp16.ActionStopTransaction), req)
	if err == nil && callErr == nil {
		return nil
	}
	if callErr != nil {
		return callErr
	}

	payload, marshalErr := json.Marshal(req)
	if marshalErr != nil {
		return marshalErr
	}
	key := strconv.Itoa(transactionID)
	if transactionID < 0 {
		key = offlineTransactionKey(0)
	}
	return m.queue.Push(ctx, key, string(ocpp16.ActionStopTransaction), payload)
}

// MeterValues sends periodic meter readings, falling back to the FIFO
// on a down link exactly like Start/StopTransaction.
func (m *TransactionManager) MeterValues(ctx context.Context, connectorID int, transactionID *int, values []ocpp16.MeterValue) error {
	req := ocpp16.MeterValuesRequest{ConnectorId: connectorID, TransactionId: transactionID, MeterValue: values}

	_, callErr, err := m.call(ctx, string(ocpp16.ActionMeterValues), req)
	if err == nil && callErr == nil {
		return nil
	}
	if callErr != nil {
		return callErr
	}

	payload, marshalErr := json.Marshal(req)
	if marshalErr != nil {
		return marshalErr
	}
	key := offlineTransactionKey(connectorID)
	if transactionID != nil {
		key = strconv.Itoa(*transactionID)
	}
	return m.queue.Push(ctx, key, string(ocpp16.ActionMeterValues), payload)
}

// DrainOffline retries every FIFO-buffered entry across all of this
// charge point's transactions once the link comes back, head-first per
// transaction. A CallResult or a CallError from the Central System
// consumes the entry; a transport error stops the drain.
func (m *TransactionManager) DrainOffline(ctx context.Context) error {
	return m.queue.DrainAll(ctx, func(ctx context.Context, action string, payload []byte) (bool, error) {
		_, _, err := m.call(ctx, action, json.RawMessage(payload))
		if err != nil {
			return false, err
		}
		return true, nil
	})
}

func ptrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
