package fifo

import (
	"context"
	"encoding/json"
)

// Caller sends one queued action and returns whether the entry is done
// with: true once the peer answered (a CallResult, or a CallError, which
// also consumes the entry). false or a transport error leaves the entry
// queued for the next Drain.
type Caller func(ctx context.Context, action string, payload json.RawMessage) (accepted bool, err error)

// Drain walks transactionID's queue head-first, invoking call for each
// entry and popping it only once call reports it done with. It stops at
// the first entry call fails to deliver, preserving per-transaction
// FIFO order across reconnects.
func (q *Queue) Drain(ctx context.Context, transactionID string, call Caller) error {
	for {
		entry, ok, err := q.Peek(ctx, transactionID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		accepted, err := call(ctx, entry.Action, entry.Payload)
		if err != nil {
			return err
		}
		if !accepted {
			return nil
		}
		if err := q.Pop(ctx, transactionID, entry.Seq); err != nil {
			return err
		}
	}
}

// DrainAll drains every transaction with pending entries, stopping a
// given transaction's drain on its first undelivered entry but
// continuing on to the rest.
func (q *Queue) DrainAll(ctx context.Context, call Caller) error {
	ids, err := q.PendingTransactions(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := q.Drain(ctx, id, call); err != nil {
			return err
		}
	}
	return nil
}
