package sqlite

import (
	"context"
	"time"
)

// FifoRow is one durable outbound entry awaiting delivery, ordered by
// Seq within its TransactionKey.
type FifoRow struct {
	Seq           int64
	TransactionKey string
	Action        string
	Payload       string
	CreatedAt     time.Time
}

// FifoEnqueue appends an entry to the tail of transactionKey's queue.
func (s *Store) FifoEnqueue(ctx context.Context, transactionKey, action, payload string) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO request_fifo (transaction_key, action, payload, created_at) VALUES (?, ?, ?, ?)`,
		transactionKey, action, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FifoPeek returns the oldest undelivered entry for transactionKey, or
// ok=false if the queue is empty.
func (s *Store) FifoPeek(ctx context.Context, transactionKey string) (FifoRow, bool, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT seq, transaction_key, action, payload, created_at FROM request_fifo
		 WHERE transaction_key = ? ORDER BY seq ASC LIMIT 1`, transactionKey)

	var r FifoRow
	var createdAt string
	if err := row.Scan(&r.Seq, &r.TransactionKey, &r.Action, &r.Payload, &createdAt); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return FifoRow{}, false, nil
		}
		return FifoRow{}, false, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return r, true, nil
}

// FifoAck removes the entry at seq once its delivery has been confirmed.
func (s *Store) FifoAck(ctx context.Context, seq int64) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM request_fifo WHERE seq = ?`, seq)
	return err
}

// FifoDepth returns how many entries remain queued for transactionKey.
func (s *Store) FifoDepth(ctx context.Context, transactionKey string) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM request_fifo WHERE transaction_key = ?`, transactionKey).Scan(&n)
	return n, err
}

// FifoKeys returns the distinct transaction keys with at least one
// queued entry, used to resume delivery loops after a restart.
func (s *Store) FifoKeys(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT transaction_key FROM request_fifo ORDER BY transaction_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
