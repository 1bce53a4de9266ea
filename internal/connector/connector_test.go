package connector

import (
	"testing"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectorStartAndClearTransaction(t *testing.T) {
	c := New(1)
	assert.False(t, c.HasActiveTransaction())

	c.StartTransaction(42, "tag1", "", time.Now())
	assert.True(t, c.HasActiveTransaction())
	assert.Equal(t, 42, c.TransactionID())

	c.ClearTransaction()
	assert.False(t, c.HasActiveTransaction())
}

func TestConnectorOfflineTransactionSentinel(t *testing.T) {
	c := New(1)
	c.StartOfflineTransaction("tag1", time.Now())
	assert.True(t, c.HasActiveTransaction())
	assert.Equal(t, 0, c.TransactionID())
}

func TestConnectorReservationLifecycle(t *testing.T) {
	c := New(1)
	expiry := time.Now().Add(time.Hour)
	c.Reserve(7, "tagA", "parentA", expiry)
	assert.True(t, c.HasActiveReservation())
	assert.Equal(t, 7, c.ReservationID())
	assert.False(t, c.ReservationExpired(time.Now()))
	assert.True(t, c.ReservationExpired(expiry.Add(time.Minute)))

	c.ClearReservation()
	assert.False(t, c.HasActiveReservation())
}

func TestConnectorDirtyTracking(t *testing.T) {
	c := New(1)
	assert.False(t, c.TakeDirty())
	c.SetStatus(ocpp16.ChargePointStatusCharging)
	assert.True(t, c.TakeDirty())
	assert.False(t, c.TakeDirty())
}

func TestTableSaveInvokesHook(t *testing.T) {
	var saved Row
	tbl := NewTable(2, func(r Row) error {
		saved = r
		return nil
	})
	c := tbl.Get(1)
	require.NotNil(t, c)
	c.SetStatus(ocpp16.ChargePointStatusPreparing)
	require.NoError(t, tbl.Save(c))
	assert.Equal(t, 1, saved.ID)
	assert.Equal(t, string(ocpp16.ChargePointStatusPreparing), saved.Status)
}

func TestTableResizeResetsRows(t *testing.T) {
	tbl := NewTable(3, nil)
	tbl.Get(2).SetStatus(ocpp16.ChargePointStatusCharging)
	tbl.Resize(1)
	assert.Nil(t, tbl.Get(2))
	assert.Equal(t, ocpp16.ChargePointStatusAvailable, tbl.Get(1).Status())
}

func TestLoadTableToppsUpMissingIDs(t *testing.T) {
	rows := []Row{{ID: 0, Status: string(ocpp16.ChargePointStatusAvailable)}}
	tbl := LoadTable(rows, 2, nil)
	assert.NotNil(t, tbl.Get(0))
	assert.NotNil(t, tbl.Get(1))
	assert.NotNil(t, tbl.Get(2))
}
