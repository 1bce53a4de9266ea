package sqlite

import "context"

// ProfileRow is one persisted charging profile, scoped to a charge
// point/connector/stack-purpose triple; ProfileJSON holds the full
// ocpp16.ChargingProfile payload so schedule details round-trip
// without a second schema.
type ProfileRow struct {
	ChargingProfileID int
	ChargePointID     string
	ConnectorID       int
	StackPurpose      string
	StackLevel        int
	BoundTransactionID *int
	ProfileJSON       string
}

func (s *Store) ProfileUpsert(ctx context.Context, r ProfileRow) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO charging_profiles (charging_profile_id, charge_point_id, connector_id, stack_purpose,
			stack_level, bound_transaction_id, profile_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(charging_profile_id) DO UPDATE SET
			charge_point_id=excluded.charge_point_id, connector_id=excluded.connector_id,
			stack_purpose=excluded.stack_purpose, stack_level=excluded.stack_level,
			bound_transaction_id=excluded.bound_transaction_id, profile_json=excluded.profile_json`,
		r.ChargingProfileID, r.ChargePointID, r.ConnectorID, r.StackPurpose,
		r.StackLevel, r.BoundTransactionID, r.ProfileJSON)
	return err
}

// ProfilesForConnector returns every profile installed for
// (chargePointID, connectorID) plus those installed on connector 0 of
// the same charge point, used to build the active stack for
// composite-schedule evaluation.
func (s *Store) ProfilesForConnector(ctx context.Context, chargePointID string, connectorID int) ([]ProfileRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT charging_profile_id, charge_point_id, connector_id, stack_purpose, stack_level,
			bound_transaction_id, profile_json
		FROM charging_profiles WHERE charge_point_id = ? AND connector_id IN (?, 0)
		ORDER BY stack_level ASC`, chargePointID, connectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProfileRow
	for rows.Next() {
		var r ProfileRow
		if err := rows.Scan(&r.ChargingProfileID, &r.ChargePointID, &r.ConnectorID, &r.StackPurpose,
			&r.StackLevel, &r.BoundTransactionID, &r.ProfileJSON); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ProfileClear deletes profiles matching the given optional filters; a
// zero value means "don't filter on this field" except chargePointID,
// which is always required.
func (s *Store) ProfileClear(ctx context.Context, chargePointID string, profileID *int, connectorID *int, purpose string, stackLevel *int) (int64, error) {
	query := `DELETE FROM charging_profiles WHERE charge_point_id = ?`
	args := []any{chargePointID}

	if profileID != nil {
		query += ` AND charging_profile_id = ?`
		args = append(args, *profileID)
	}
	if connectorID != nil {
		query += ` AND connector_id = ?`
		args = append(args, *connectorID)
	}
	if purpose != "" {
		query += ` AND stack_purpose = ?`
		args = append(args, purpose)
	}
	if stackLevel != nil {
		query += ` AND stack_level = ?`
		args = append(args, *stackLevel)
	}

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
