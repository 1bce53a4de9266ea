// Package fifo is the durable per-transaction outbound buffer for
// calls whose loss would compromise billing or safety: StartTransaction,
// StopTransaction, MeterValues, SecurityEventNotification. Each entry
// is retried until a CallResult (accepted) or CallError (peer rejected,
// also consumes the entry) arrives.
//
// Grounded on the shape of storage.ConnectionStorage — a small
// interface in front of a single backing store — but backed by
// storage/sqlite's request_fifo table instead of Redis, since entries
// here must survive a process restart rather than merely a TTL.
package fifo

import (
	"context"
	"fmt"

	"github.com/ocpp-platform/ocpp-runtime/internal/metrics"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
)

// Entry is one queued outbound request.
type Entry struct {
	Seq           int64
	TransactionID string
	Action        string
	Payload       []byte
}

// Queue is the durable per-transaction buffer, backed by one sqlite.Store.
type Queue struct {
	store         *sqlite.Store
	chargePointID string
}

// New wires a Queue to store, labeled with chargePointID for the
// transaction-key namespace and for metrics.
func New(store *sqlite.Store, chargePointID string) *Queue {
	return &Queue{store: store, chargePointID: chargePointID}
}

func (q *Queue) key(transactionID string) string {
	return fmt.Sprintf("%s/%s", q.chargePointID, transactionID)
}

// Push appends payload to the tail of transactionID's queue.
func (q *Queue) Push(ctx context.Context, transactionID, action string, payload []byte) error {
	key := q.key(transactionID)
	if _, err := q.store.FifoEnqueue(ctx, key, action, string(payload)); err != nil {
		return fmt.Errorf("fifo: push %s/%s: %w", key, action, err)
	}
	metrics.RequestFIFODepth.Inc()
	return nil
}

// Peek returns the oldest entry for transactionID without removing it,
// or ok=false if empty.
func (q *Queue) Peek(ctx context.Context, transactionID string) (Entry, bool, error) {
	row, ok, err := q.store.FifoPeek(ctx, q.key(transactionID))
	if err != nil || !ok {
		return Entry{}, false, err
	}
	return Entry{Seq: row.Seq, TransactionID: transactionID, Action: row.Action, Payload: []byte(row.Payload)}, true, nil
}

// Pop removes the entry at seq, called once its CallResult or
// CallError has been observed.
func (q *Queue) Pop(ctx context.Context, transactionID string, seq int64) error {
	if err := q.store.FifoAck(ctx, seq); err != nil {
		return err
	}
	metrics.RequestFIFODepth.Dec()
	return nil
}

// Size returns the number of entries still queued for transactionID.
func (q *Queue) Size(ctx context.Context, transactionID string) (int, error) {
	return q.store.FifoDepth(ctx, q.key(transactionID))
}

// PendingTransactions returns every transaction id with at least one
// queued entry, used to resume delivery loops after a restart.
func (q *Queue) PendingTransactions(ctx context.Context) ([]string, error) {
	keys, err := q.store.FifoKeys(ctx)
	if err != nil {
		return nil, err
	}
	prefix := q.chargePointID + "/"
	var out []string
	for _, k := range keys {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k[len(prefix):])
		}
	}
	return out, nil
}

// Deliver attempts to deliver one entry; it returns ok=true once the
// entry is confirmed (accepted or rejected by the peer, either way
// consuming it) or ok=false to leave it queued for a later retry.
type Deliver func(ctx context.Context, action string, payload []byte) (ok bool, err error)

// DrainAll walks every transaction with queued entries and delivers
// them oldest-first, stopping at the first entry deliver leaves queued
// so per-transaction order is preserved across retries. A transport
// error aborts the whole drain immediately; a transaction stopping
// early never blocks any other transaction's queue.
func (q *Queue) DrainAll(ctx context.Context, deliver Deliver) error {
	transactionIDs, err := q.PendingTransactions(ctx)
	if err != nil {
		return err
	}
	for _, transactionID := range transactionIDs {
		for {
			entry, ok, err := q.Peek(ctx, transactionID)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			delivered, err := deliver(ctx, entry.Action, entry.Payload)
			if err != nil {
				return err
			}
			if !delivered {
				break
			}
			if err := q.Pop(ctx, transactionID, entry.Seq); err != nil {
				return err
			}
		}
	}
	return nil
}
