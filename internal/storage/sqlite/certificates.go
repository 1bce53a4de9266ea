package sqlite

import "context"

// CACertificate is a trusted root/CA certificate installed via
// InstallCertificate, looked up by GetInstalledCertificateIds and
// matched against GetCertificateStatus OCSP requests.
type CACertificate struct {
	SerialNumber    string
	CertificateType string
	IssuerNameHash  string
	IssuerKeyHash   string
	HashAlgorithm   string
	PEM             string
}

func (s *Store) CACertificatePut(ctx context.Context, c CACertificate) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO ca_certificates (serial_number, certificate_type, issuer_name_hash, issuer_key_hash, hash_algorithm, pem)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(serial_number) DO UPDATE SET
			certificate_type=excluded.certificate_type, issuer_name_hash=excluded.issuer_name_hash,
			issuer_key_hash=excluded.issuer_key_hash, hash_algorithm=excluded.hash_algorithm, pem=excluded.pem`,
		c.SerialNumber, c.CertificateType, c.IssuerNameHash, c.IssuerKeyHash, c.HashAlgorithm, c.PEM)
	return err
}

func (s *Store) CACertificateDelete(ctx context.Context, serialNumber string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM ca_certificates WHERE serial_number = ?`, serialNumber)
	return err
}

func (s *Store) CACertificatesByType(ctx context.Context, certificateType string) ([]CACertificate, error) {
	query := `SELECT serial_number, certificate_type, issuer_name_hash, issuer_key_hash, hash_algorithm, pem FROM ca_certificates`
	args := []any{}
	if certificateType != "" {
		query += ` WHERE certificate_type = ?`
		args = append(args, certificateType)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CACertificate
	for rows.Next() {
		var c CACertificate
		if err := rows.Scan(&c.SerialNumber, &c.CertificateType, &c.IssuerNameHash, &c.IssuerKeyHash, &c.HashAlgorithm, &c.PEM); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CPCertificate is a charge point's own identity certificate chain,
// installed via CertificateSigned.
type CPCertificate struct {
	ChargePointID    string
	SerialNumber     string
	CertificateChain string
	InstalledAt      string
}

func (s *Store) CPCertificatePut(ctx context.Context, c CPCertificate) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO cp_certificates (charge_point_id, serial_number, certificate_chain, installed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(charge_point_id, serial_number) DO UPDATE SET
			certificate_chain=excluded.certificate_chain, installed_at=excluded.installed_at`,
		c.ChargePointID, c.SerialNumber, c.CertificateChain, c.InstalledAt)
	return err
}

func (s *Store) CPCertificatesFor(ctx context.Context, chargePointID string) ([]CPCertificate, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT charge_point_id, serial_number, certificate_chain, installed_at
		FROM cp_certificates WHERE charge_point_id = ?`, chargePointID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CPCertificate
	for rows.Next() {
		var c CPCertificate
		if err := rows.Scan(&c.ChargePointID, &c.SerialNumber, &c.CertificateChain, &c.InstalledAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
