package chargepoint

import (
	"context"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/cache"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
)

// AuthManager answers "is this idTag authorized" from a fast in-memory
// cache backed by the durable AuthCache/AuthLocalList tables, so a
// reconnect never loses what the Central System already told this
// charge point. Built on a sharded LRU cache typed to hold IdTagInfo
// values rather than an opaque interface{}.
type AuthManager struct {
	store         *sqlite.Store
	chargePointID string
	memCache      *cache.LRUCache
	cacheEnabled  bool
	localListOn   bool
}

// NewAuthManager builds an AuthManager for one charge point.
// cacheEnabled/localListOn mirror config.OCPPConfig's
// AuthorizationCacheEnabled/LocalAuthListEnabled toggles.
func NewAuthManager(store *sqlite.Store, chargePointID string, cacheEnabled, localListOn bool) *AuthManager {
	return &AuthManager{
		store:         store,
		chargePointID: chargePointID,
		memCache:      cache.NewLRUCache(cache.DefaultCacheConfig()),
		cacheEnabled:  cacheEnabled,
		localListOn:   localListOn,
	}
}

func (m *AuthManager) cacheKey(idTag string) string {
	return m.chargePointID + "/" + idTag
}

// CheckLocal answers an authorization request without going over the
// wire: first the Local Authorization List (checked regardless of the
// cache toggle, since it is an operator-curated allow/deny list), then
// the Authorization Cache of previously-seen online decisions.
func (m *AuthManager) CheckLocal(ctx context.Context, idTag string) (ocpp16.IdTagInfo, bool, error) {
	if m.localListOn {
		entry, ok, err := m.store.LocalListLookup(ctx, idTag)
		if err != nil {
			return ocpp16.IdTagInfo{}, false, err
		}
		if ok {
			return localListEntryToIdTagInfo(entry), true, nil
		}
	}

	if !m.cacheEnabled {
		return ocpp16.IdTagInfo{}, false, nil
	}

	if v, ok := m.memCache.Get(m.cacheKey(idTag)); ok {
		if info, ok := v.(ocpp16.IdTagInfo); ok {
			return info, true, nil
		}
	}

	entry, ok, err := m.store.AuthCacheGet(ctx, idTag)
	if err != nil {
		return ocpp16.IdTagInfo{}, false, err
	}
	if !ok {
		return ocpp16.IdTagInfo{}, false, nil
	}
	info := authCacheEntryToIdTagInfo(entry)
	m.memCache.Set(m.cacheKey(idTag), info, time.Until(entry.ExpiryDate))
	return info, true, nil
}

// Remember persists an online Authorize/StartTransaction decision into
// both the in-memory and durable caches so a later offline window can
// still answer from it.
func (m *AuthManager) Remember(ctx context.Context, idTag string, info ocpp16.IdTagInfo) error {
	if !m.cacheEnabled {
		return nil
	}
	entry := sqlite.AuthCacheEntry{IDTag: idTag, Status: string(info.Status), UpdatedAt: time.Now()}
	if info.ParentIdTag != nil {
		entry.ParentIDTag = *info.ParentIdTag
	}
	if info.ExpiryDate != nil {
		entry.ExpiryDate = info.ExpiryDate.Time
	}
	if err := m.store.AuthCachePut(ctx, entry); err != nil {
		return err
	}
	ttl := time.Until(entry.ExpiryDate)
	m.memCache.Set(m.cacheKey(idTag), info, ttl)
	return nil
}

// ClearCache implements ClearCache: wipes both the durable and
// in-memory authorization cache, but never the Local Authorization
// List, which is a distinct data set managed by SendLocalList.
func (m *AuthManager) ClearCache(ctx context.Context) error {
	if err := m.store.AuthCacheClear(ctx); err != nil {
		return err
	}
	return m.memCache.Clear()
}

// LocalListVersion returns the currently installed Local Authorization
// List version (GetLocalListVersion).
func (m *AuthManager) LocalListVersion(ctx context.Context) (int, error) {
	return m.store.LocalListVersion(ctx)
}

// ApplyLocalList installs a SendLocalList update, full or differential,
// enforcing the ListVersion gate: a version not strictly greater than
// the currently installed one is rejected as stale.
func (m *AuthManager) ApplyLocalList(ctx context.Context, version int, updateType ocpp16.LocalListUpdateType, entries []ocpp16.LocalAuthorizationListEntry) (ocpp16.UpdateStatus, error) {
	current, err := m.store.LocalListVersion(ctx)
	if err != nil {
		return ocpp16.UpdateStatusFailed, err
	}
	if version <= current {
		return ocpp16.UpdateStatusVersionMismatch, nil
	}

	rows := make([]sqlite.LocalListEntry, 0, len(entries))
	for _, e := range entries {
		row := sqlite.LocalListEntry{ListVersion: version, IDTag: e.IdTag}
		if e.IdTagInfo != nil {
			row.Status = string(e.IdTagInfo.Status)
			if e.IdTagInfo.ParentIdTag != nil {
				row.ParentIDTag = *e.IdTagInfo.ParentIdTag
			}
			if e.IdTagInfo.ExpiryDate != nil {
				row.ExpiryDate = e.IdTagInfo.ExpiryDate.Time
			}
		}
		rows = append(rows, row)
	}

	switch updateType {
	case ocpp16.LocalListUpdateTypeFull:
		if err := m.store.LocalListReplace(ctx, version, rows); err != nil {
			return ocpp16.UpdateStatusFailed, err
		}
	case ocpp16.LocalListUpdateTypeDifferential:
		if err := m.store.LocalListApplyDifferential(ctx, version, rows); err != nil {
			return ocpp16.UpdateStatusFailed, err
		}
	default:
		return ocpp16.UpdateStatusNotSupported, nil
	}
	return ocpp16.UpdateStatusAccepted, nil
}

func localListEntryToIdTagInfo(e sqlite.LocalListEntry) ocpp16.IdTagInfo {
	info := ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatus(e.Status)}
	if e.ParentIDTag != "" {
		info.ParentIdTag = &e.ParentIDTag
	}
	if !e.ExpiryDate.IsZero() {
		dt := ocpp16.DateTime{Time: e.ExpiryDate}
		info.ExpiryDate = &dt
	}
	return info
}

func authCacheEntryToIdTagInfo(e sqlite.AuthCacheEntry) ocpp16.IdTagInfo {
	info := ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatus(e.Status)}
	if e.ParentIDTag != "" {
		info.ParentIdTag = &e.ParentIDTag
	}
	if !e.ExpiryDate.IsZero() {
		dt := ocpp16.DateTime{Time: e.ExpiryDate}
		info.ExpiryDate = &dt
	}
	return info
}
