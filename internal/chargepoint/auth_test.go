package chargepoint_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/chargepoint"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
)

func openAuthStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAuthManagerRememberThenCheckLocal(t *testing.T) {
	store := openAuthStore(t)
	m := chargepoint.NewAuthManager(store, "CP1", true, false)
	ctx := context.Background()

	_, ok, err := m.CheckLocal(ctx, "TAG1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Remember(ctx, "TAG1", ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted}))

	info, ok, err := m.CheckLocal(ctx, "TAG1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ocpp16.AuthorizationStatusAccepted, info.Status)
}

func TestAuthManagerClearCacheLeavesLocalList(t *testing.T) {
	store := openAuthStore(t)
	m := chargepoint.NewAuthManager(store, "CP1", true, true)
	ctx := context.Background()

	require.NoError(t, m.Remember(ctx, "TAG1", ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted}))
	status, err := m.ApplyLocalList(ctx, 1, ocpp16.LocalListUpdateTypeFull, []ocpp16.LocalAuthorizationListEntry{
		{IdTag: "TAG2", IdTagInfo: &ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted}},
	})
	require.NoError(t, err)
	assert.Equal(t, ocpp16.UpdateStatusAccepted, status)

	require.NoError(t, m.ClearCache(ctx))

	_, ok, err := m.CheckLocal(ctx, "TAG1")
	require.NoError(t, err)
	assert.False(t, ok, "auth cache entry should be gone")

	_, ok, err = m.CheckLocal(ctx, "TAG2")
	require.NoError(t, err)
	assert.True(t, ok, "local list entry must survive ClearCache")
}

func TestAuthManagerApplyLocalListRejectsStaleVersion(t *testing.T) {
	store := openAuthStore(t)
	m := chargepoint.NewAuthManager(store, "CP1", true, true)
	ctx := context.Background()

	status, err := m.ApplyLocalList(ctx, 5, ocpp16.LocalListUpdateTypeFull, nil)
	require.NoError(t, err)
	assert.Equal(t, ocpp16.UpdateStatusAccepted, status)

	status, err = m.ApplyLocalList(ctx, 5, ocpp16.LocalListUpdateTypeFull, nil)
	require.NoError(t, err)
	assert.Equal(t, ocpp16.UpdateStatusVersionMismatch, status)

	version, err := m.LocalListVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, version)
}
