package sqlite

import "context"

// ChargePointRecord is one registered charge point's identity and
// current security posture.
type ChargePointRecord struct {
	Identifier        string
	SerialNumber      string
	Vendor            string
	Model             string
	SecurityProfile   int
	AuthenticationKey string
}

func (s *Store) ChargePointUpsert(ctx context.Context, r ChargePointRecord) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO charge_points (identifier, serial_number, vendor, model, security_profile, authentication_key)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			serial_number=excluded.serial_number, vendor=excluded.vendor, model=excluded.model,
			security_profile=excluded.security_profile, authentication_key=excluded.authentication_key`,
		r.Identifier, r.SerialNumber, r.Vendor, r.Model, r.SecurityProfile, r.AuthenticationKey)
	return err
}

func (s *Store) ChargePointGet(ctx context.Context, identifier string) (ChargePointRecord, bool, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT identifier, serial_number, vendor, model, security_profile, authentication_key
		FROM charge_points WHERE identifier = ?`, identifier)

	var r ChargePointRecord
	if err := row.Scan(&r.Identifier, &r.SerialNumber, &r.Vendor, &r.Model, &r.SecurityProfile, &r.AuthenticationKey); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return ChargePointRecord{}, false, nil
		}
		return ChargePointRecord{}, false, err
	}
	return r, true, nil
}

func (s *Store) ChargePointSetSecurityProfile(ctx context.Context, identifier string, profile int) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE charge_points SET security_profile = ? WHERE identifier = ?`, profile, identifier)
	return err
}

// ConfigGet/ConfigSet back internal_config, the GetConfiguration /
// ChangeConfiguration key-value store.
func (s *Store) ConfigGet(ctx context.Context, key string) (value string, readonly bool, ok bool, err error) {
	var ro int
	row := s.DB.QueryRowContext(ctx, `SELECT value, readonly FROM internal_config WHERE key = ?`, key)
	if scanErr := row.Scan(&value, &ro); scanErr != nil {
		if scanErr.Error() == "sql: no rows in result set" {
			return "", false, false, nil
		}
		return "", false, false, scanErr
	}
	return value, ro != 0, true, nil
}

func (s *Store) ConfigSet(ctx context.Context, key, value string, readonly bool) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO internal_config (key, value, readonly) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value, boolToInt(readonly))
	return err
}

func (s *Store) ConfigAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT key, value FROM internal_config`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
