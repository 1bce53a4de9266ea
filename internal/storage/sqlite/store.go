// Package sqlite is the embedded relational store backing every table
// this runtime needs durable across restarts: connectors, the
// authorization cache/local list, the request FIFO, charging profiles,
// security event logs, certificates, registered charge points, and
// internal configuration overrides.
//
// Generalized from storage.ConnectionStorage's role as the gateway's
// persistence seam (internal/storage/interface.go) — a single
// Redis-backed map — into the full table set this runtime requires,
// fronted by modernc.org/sqlite (pure Go, no cgo) rather than Redis —
// the request FIFO in particular needs durability-across-restart Redis
// alone does not guarantee.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS connectors (
	id INTEGER PRIMARY KEY,
	status TEXT NOT NULL,
	last_notified_status TEXT NOT NULL DEFAULT '',
	transaction_id INTEGER NOT NULL DEFAULT 0,
	offline_transaction_id INTEGER NOT NULL DEFAULT 0,
	transaction_start_time TEXT,
	transaction_id_tag TEXT NOT NULL DEFAULT '',
	transaction_parent_id_tag TEXT NOT NULL DEFAULT '',
	reservation_id INTEGER NOT NULL DEFAULT 0,
	reservation_id_tag TEXT NOT NULL DEFAULT '',
	reservation_parent_id_tag TEXT NOT NULL DEFAULT '',
	reservation_expiry TEXT
);

CREATE TABLE IF NOT EXISTS auth_cache (
	id_tag TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	parent_id_tag TEXT NOT NULL DEFAULT '',
	expiry_date TEXT,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_local_list (
	list_version INTEGER NOT NULL,
	id_tag TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	parent_id_tag TEXT NOT NULL DEFAULT '',
	expiry_date TEXT
);

CREATE TABLE IF NOT EXISTS request_fifo (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	transaction_key TEXT NOT NULL,
	action TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_request_fifo_txn ON request_fifo(transaction_key, seq);

CREATE TABLE IF NOT EXISTS charging_profiles (
	charging_profile_id INTEGER PRIMARY KEY,
	charge_point_id TEXT NOT NULL,
	connector_id INTEGER NOT NULL,
	stack_purpose TEXT NOT NULL,
	stack_level INTEGER NOT NULL,
	bound_transaction_id INTEGER,
	profile_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_charging_profiles_scope
	ON charging_profiles(charge_point_id, connector_id, stack_purpose);

CREATE TABLE IF NOT EXISTS security_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	charge_point_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	type TEXT NOT NULL,
	tech_info TEXT NOT NULL DEFAULT '',
	critical INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_security_logs_cp ON security_logs(charge_point_id, id);

CREATE TABLE IF NOT EXISTS ca_certificates (
	serial_number TEXT PRIMARY KEY,
	certificate_type TEXT NOT NULL,
	issuer_name_hash TEXT NOT NULL,
	issuer_key_hash TEXT NOT NULL,
	hash_algorithm TEXT NOT NULL,
	pem TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cp_certificates (
	charge_point_id TEXT NOT NULL,
	serial_number TEXT NOT NULL,
	certificate_chain TEXT NOT NULL,
	installed_at TEXT NOT NULL,
	PRIMARY KEY (charge_point_id, serial_number)
);

CREATE TABLE IF NOT EXISTS charge_points (
	identifier TEXT PRIMARY KEY,
	serial_number TEXT NOT NULL DEFAULT '',
	vendor TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	security_profile INTEGER NOT NULL DEFAULT 0,
	authentication_key TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS internal_config (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	readonly INTEGER NOT NULL DEFAULT 0
);
`

// Store is a thin facade over one *sql.DB, exposing prepared-query
// access to the tables above. Callers use the per-domain files in this
// package (connectors.go, fifo.go, ...) rather than reaching for DB
// directly.
type Store struct {
	DB *sql.DB
}

// Open creates (or attaches to) the sqlite file at dsn and ensures the
// schema exists. dsn is a modernc.org/sqlite data source, e.g.
// "file:/var/lib/ocpp-runtime/state.db?_pragma=journal_mode(WAL)".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // sqlite serializes writers; avoid lock contention across goroutines
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

// Ping verifies the underlying file is reachable, used by health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
