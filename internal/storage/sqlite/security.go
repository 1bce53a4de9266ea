package sqlite

import (
	"context"
	"time"
)

// SecurityLogEntry is one persisted SecurityEventNotification. Entries
// are appended uncapped; the retention cap is enforced afterwards by
// SecurityLogPrune.
type SecurityLogEntry struct {
	ID            int64
	ChargePointID string
	Timestamp     time.Time
	Type          string
	TechInfo      string
	Critical      bool
}

func (s *Store) SecurityLogAppend(ctx context.Context, e SecurityLogEntry) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO security_logs (charge_point_id, timestamp, type, tech_info, critical)
		VALUES (?, ?, ?, ?, ?)`,
		e.ChargePointID, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Type, e.TechInfo, boolToInt(e.Critical))
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SecurityLogRecent returns the most recent limit entries for
// chargePointID, newest first.
func (s *Store) SecurityLogRecent(ctx context.Context, chargePointID string, limit int) ([]SecurityLogEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, charge_point_id, timestamp, type, tech_info, critical
		FROM security_logs WHERE charge_point_id = ? ORDER BY id DESC LIMIT ?`, chargePointID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SecurityLogEntry
	for rows.Next() {
		var e SecurityLogEntry
		var ts string
		var critical int
		if err := rows.Scan(&e.ID, &e.ChargePointID, &ts, &e.Type, &e.TechInfo, &critical); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		e.Critical = critical != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// SecurityLogPrune deletes all but the newest keep entries for
// chargePointID, enforcing the retention cap after each append.
func (s *Store) SecurityLogPrune(ctx context.Context, chargePointID string, keep int) error {
	_, err := s.DB.ExecContext(ctx, `
		DELETE FROM security_logs WHERE charge_point_id = ? AND id NOT IN (
			SELECT id FROM security_logs WHERE charge_point_id = ? ORDER BY id DESC LIMIT ?
		)`, chargePointID, chargePointID, keep)
	return err
}
