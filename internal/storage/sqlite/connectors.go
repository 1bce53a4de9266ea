package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/connector"
)

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseNullTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s.String)
	return t
}

// SaveConnector upserts one connector row, the hook internal/connector's
// Table wires into its dirty-save pattern.
func (s *Store) SaveConnector(ctx context.Context, r connector.Row) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO connectors (id, status, last_notified_status, transaction_id, offline_transaction_id,
			transaction_start_time, transaction_id_tag, transaction_parent_id_tag,
			reservation_id, reservation_id_tag, reservation_parent_id_tag, reservation_expiry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status, last_notified_status=excluded.last_notified_status,
			transaction_id=excluded.transaction_id, offline_transaction_id=excluded.offline_transaction_id,
			transaction_start_time=excluded.transaction_start_time, transaction_id_tag=excluded.transaction_id_tag,
			transaction_parent_id_tag=excluded.transaction_parent_id_tag,
			reservation_id=excluded.reservation_id, reservation_id_tag=excluded.reservation_id_tag,
			reservation_parent_id_tag=excluded.reservation_parent_id_tag, reservation_expiry=excluded.reservation_expiry`,
		r.ID, r.Status, r.LastNotifiedStatus, r.TransactionID, r.OfflineTransactionID,
		nullTime(r.TransactionStartTime), r.TransactionIDTag, r.TransactionParentIDTag,
		r.ReservationID, r.ReservationIDTag, r.ReservationParentIDTag, nullTime(r.ReservationExpiry))
	return err
}

// LoadConnectors returns every persisted connector row, used to
// reconstruct a connector.Table at startup.
func (s *Store) LoadConnectors(ctx context.Context) ([]connector.Row, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, status, last_notified_status, transaction_id, offline_transaction_id,
			transaction_start_time, transaction_id_tag, transaction_parent_id_tag,
			reservation_id, reservation_id_tag, reservation_parent_id_tag, reservation_expiry
		FROM connectors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []connector.Row
	for rows.Next() {
		var r connector.Row
		var txStart, resExpiry sql.NullString
		if err := rows.Scan(&r.ID, &r.Status, &r.LastNotifiedStatus, &r.TransactionID, &r.OfflineTransactionID,
			&txStart, &r.TransactionIDTag, &r.TransactionParentIDTag,
			&r.ReservationID, &r.ReservationIDTag, &r.ReservationParentIDTag, &resExpiry); err != nil {
			return nil, err
		}
		r.TransactionStartTime = parseNullTime(txStart)
		r.ReservationExpiry = parseNullTime(resExpiry)
		out = append(out, r)
	}
	return out, rows.Err()
}
