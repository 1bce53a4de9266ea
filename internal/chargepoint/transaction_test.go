package chargepoint_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/chargepoint"
	"github.com/ocpp-platform/ocpp-runtime/internal/connector"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/fifo"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
)

func openFifo(t *testing.T) *fifo.Queue {
	t.Helper()
	store, err := sqlite.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return fifo.New(store, "CP1")
}

func TestStartTransactionOnlineBindsConnector(t *testing.T) {
	connectors := connector.NewTable(1, nil)
	queue := openFifo(t)
	call := func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
		resp := ocpp16.StartTransactionResponse{
			IdTagInfo:     ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted},
			TransactionId: 42,
		}
		raw, _ := json.Marshal(resp)
		return raw, nil, nil
	}

	m := chargepoint.NewTransactionManager(connectors, queue, call)
	resp, err := m.StartTransaction(context.Background(), 1, "TAG1", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, resp.TransactionId)
	assert.Equal(t, 42, connectors.Get(1).TransactionID())
}

func TestStartTransactionOfflineEnqueuesAndMarksConnector(t *testing.T) {
	connectors := connector.NewTable(1, nil)
	queue := openFifo(t)
	call := func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
		return nil, nil, errors.New("connection down")
	}

	m := chargepoint.NewTransactionManager(connectors, queue, call)
	resp, err := m.StartTransaction(context.Background(), 1, "TAG1", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, resp.TransactionId)
	assert.True(t, connectors.Get(1).HasActiveTransaction())

	pending, err := queue.PendingTransactions(context.Background())
	require.NoError(t, err)
	assert.Contains(t, pending, "offline/1")
}

func TestStartTransactionRejectedByCentralSystemReturnsCallError(t *testing.T) {
	connectors := connector.NewTable(1, nil)
	queue := openFifo(t)
	call := func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
		return nil, ocpperr.New(ocpperr.SecurityError, "unauthorized"), nil
	}

	m := chargepoint.NewTransactionManager(connectors, queue, call)
	_, err := m.StartTransaction(context.Background(), 1, "TAG1", 0, nil)
	require.Error(t, err)
	assert.False(t, connectors.Get(1).HasActiveTransaction())
}

func TestDrainOfflineRetriesQueuedEntries(t *testing.T) {
	connectors := connector.NewTable(1, nil)
	queue := openFifo(t)
	down := true
	var delivered []string
	call := func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
		if action == string(ocpp16.ActionStartTransaction) && down {
			return nil, nil, errors.New("connection down")
		}
		delivered = append(delivered, action)
		raw, _ := json.Marshal(ocpp16.StartTransactionResponse{IdTagInfo: ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted}, TransactionId: 7})
		return raw, nil, nil
	}

	m := chargepoint.NewTransactionManager(connectors, queue, call)
	_, err := m.StartTransaction(context.Background(), 1, "TAG1", 0, nil)
	require.NoError(t, err)

	down = false
	require.NoError(t, m.DrainOffline(context.Background()))
	assert.Equal(t, []string{string(ocpp16.ActionStartTransaction)}, delivered)

	pending, err := queue.PendingTransactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}
