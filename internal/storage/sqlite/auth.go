package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// AuthCacheEntry is a cached Authorize/StartTransaction verdict, keyed
// by idTag, so a charge point offline from the backend can still
// authorize previously-seen tags.
type AuthCacheEntry struct {
	IDTag       string
	Status      string
	ParentIDTag string
	ExpiryDate  time.Time
	UpdatedAt   time.Time
}

func (s *Store) AuthCacheGet(ctx context.Context, idTag string) (AuthCacheEntry, bool, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id_tag, status, parent_id_tag, expiry_date, updated_at FROM auth_cache WHERE id_tag = ?`, idTag)

	var e AuthCacheEntry
	var expiry sql.NullString
	var updatedAt string
	if err := row.Scan(&e.IDTag, &e.Status, &e.ParentIDTag, &expiry, &updatedAt); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return AuthCacheEntry{}, false, nil
		}
		return AuthCacheEntry{}, false, err
	}
	e.ExpiryDate = parseNullTime(expiry)
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return e, true, nil
}

func (s *Store) AuthCachePut(ctx context.Context, e AuthCacheEntry) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO auth_cache (id_tag, status, parent_id_tag, expiry_date, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id_tag) DO UPDATE SET
			status=excluded.status, parent_id_tag=excluded.parent_id_tag,
			expiry_date=excluded.expiry_date, updated_at=excluded.updated_at`,
		e.IDTag, e.Status, e.ParentIDTag, nullTime(e.ExpiryDate), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) AuthCacheClear(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM auth_cache`)
	return err
}

// LocalListEntry is one row of the SendLocalList authorization list.
type LocalListEntry struct {
	ListVersion int
	IDTag       string
	Status      string
	ParentIDTag string
	ExpiryDate  time.Time
}

// LocalListVersion returns the currently stored list version, or 0 if
// no list has been installed yet (the AuthorizationListNotSupported /
// "no list" sentinel per the version-query operation).
func (s *Store) LocalListVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	err := s.DB.QueryRowContext(ctx, `SELECT MAX(list_version) FROM auth_local_list`).Scan(&v)
	if err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

// LocalListReplace installs a full local list at the given version,
// discarding any prior contents.
func (s *Store) LocalListReplace(ctx context.Context, version int, entries []LocalListEntry) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM auth_local_list`); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO auth_local_list (list_version, id_tag, status, parent_id_tag, expiry_date)
			VALUES (?, ?, ?, ?, ?)`,
			version, e.IDTag, e.Status, e.ParentIDTag, nullTime(e.ExpiryDate)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LocalListApplyDifferential upserts/deletes entries against the
// existing list and advances its version. An entry with an empty
// Status removes the idTag from the list.
func (s *Store) LocalListApplyDifferential(ctx context.Context, version int, entries []LocalListEntry) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		if e.Status == "" {
			if _, err := tx.ExecContext(ctx, `DELETE FROM auth_local_list WHERE id_tag = ?`, e.IDTag); err != nil {
				return err
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO auth_local_list (list_version, id_tag, status, parent_id_tag, expiry_date)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id_tag) DO UPDATE SET
				list_version=excluded.list_version, status=excluded.status,
				parent_id_tag=excluded.parent_id_tag, expiry_date=excluded.expiry_date`,
			version, e.IDTag, e.Status, e.ParentIDTag, nullTime(e.ExpiryDate)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE auth_local_list SET list_version = ?`, version); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) LocalListLookup(ctx context.Context, idTag string) (LocalListEntry, bool, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT list_version, id_tag, status, parent_id_tag, expiry_date FROM auth_local_list WHERE id_tag = ?`, idTag)

	var e LocalListEntry
	var expiry sql.NullString
	if err := row.Scan(&e.ListVersion, &e.IDTag, &e.Status, &e.ParentIDTag, &expiry); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return LocalListEntry{}, false, nil
		}
		return LocalListEntry{}, false, err
	}
	e.ExpiryDate = parseNullTime(expiry)
	return e, true, nil
}
