package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/connector"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestConnectorRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	row := connector.Row{ID: 1, Status: "Available", TransactionIDTag: "TAG1"}
	require.NoError(t, store.SaveConnector(ctx, row))

	rows, err := store.LoadConnectors(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Available", rows[0].Status)
	assert.Equal(t, "TAG1", rows[0].TransactionIDTag)
}

func TestFifoOrderingAndAck(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seq1, err := store.FifoEnqueue(ctx, "txn-1", "StartTransaction", `{"a":1}`)
	require.NoError(t, err)
	_, err = store.FifoEnqueue(ctx, "txn-1", "MeterValues", `{"a":2}`)
	require.NoError(t, err)

	depth, err := store.FifoDepth(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	head, ok, err := store.FifoPeek(ctx, "txn-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seq1, head.Seq)
	assert.Equal(t, "StartTransaction", head.Action)

	require.NoError(t, store.FifoAck(ctx, head.Seq))
	head2, ok, err := store.FifoPeek(ctx, "txn-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "MeterValues", head2.Action)
}

func TestAuthCachePutGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AuthCachePut(ctx, sqlite.AuthCacheEntry{
		IDTag: "TAG1", Status: "Accepted", ExpiryDate: time.Now().Add(time.Hour),
	}))

	entry, ok, err := store.AuthCacheGet(ctx, "TAG1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Accepted", entry.Status)
}

func TestLocalListReplaceAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.LocalListReplace(ctx, 1, []sqlite.LocalListEntry{
		{IDTag: "TAG1", Status: "Accepted"},
		{IDTag: "TAG2", Status: "Blocked"},
	}))

	v, err := store.LocalListVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	entry, ok, err := store.LocalListLookup(ctx, "TAG2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Blocked", entry.Status)
}

func TestSecurityLogRetention(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.SecurityLogAppend(ctx, sqlite.SecurityLogEntry{
			ChargePointID: "CP1", Timestamp: time.Now(), Type: "StartupOfTheDevice", Critical: true,
		}))
	}
	require.NoError(t, store.SecurityLogPrune(ctx, "CP1", 3))

	entries, err := store.SecurityLogRecent(ctx, "CP1", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestChargePointAndConfig(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ChargePointUpsert(ctx, sqlite.ChargePointRecord{
		Identifier: "CP1", Vendor: "Acme", SecurityProfile: 1,
	}))
	rec, ok, err := store.ChargePointGet(ctx, "CP1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Acme", rec.Vendor)

	require.NoError(t, store.ConfigSet(ctx, "HeartbeatInterval", "300", false))
	val, readonly, ok, err := store.ConfigGet(ctx, "HeartbeatInterval")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "300", val)
	assert.False(t, readonly)
}
