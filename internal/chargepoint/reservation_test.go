package chargepoint_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ocpp-platform/ocpp-runtime/internal/chargepoint"
	"github.com/ocpp-platform/ocpp-runtime/internal/connector"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
)

func TestReserveNowAccepted(t *testing.T) {
	connectors := connector.NewTable(1, nil)
	m := chargepoint.NewReservationManager(connectors, nil, 0)

	status := m.ReserveNow(ocpp16.ReserveNowRequest{
		ConnectorId:   1,
		ExpiryDate:    ocpp16.DateTime{Time: time.Now().Add(time.Hour)},
		IdTag:         "TAG1",
		ReservationId: 99,
	})
	assert.Equal(t, ocpp16.ReservationStatusAccepted, status)
	assert.Equal(t, ocpp16.ChargePointStatusReserved, connectors.Get(1).Status())
}

func TestReserveNowRejectsOccupiedConnector(t *testing.T) {
	connectors := connector.NewTable(1, nil)
	connectors.Get(1).StartTransaction(1, "TAG1", "", time.Now())

	m := chargepoint.NewReservationManager(connectors, nil, 0)
	status := m.ReserveNow(ocpp16.ReserveNowRequest{
		ConnectorId:   1,
		ExpiryDate:    ocpp16.DateTime{Time: time.Now().Add(time.Hour)},
		IdTag:         "TAG2",
		ReservationId: 100,
	})
	assert.Equal(t, ocpp16.ReservationStatusOccupied, status)
}

func TestCancelReservation(t *testing.T) {
	connectors := connector.NewTable(1, nil)
	m := chargepoint.NewReservationManager(connectors, nil, 0)

	m.ReserveNow(ocpp16.ReserveNowRequest{ConnectorId: 1, ExpiryDate: ocpp16.DateTime{Time: time.Now().Add(time.Hour)}, IdTag: "TAG1", ReservationId: 5})

	status := m.CancelReservation(5)
	assert.Equal(t, ocpp16.CancelReservationStatusAccepted, status)
	assert.Equal(t, ocpp16.ChargePointStatusAvailable, connectors.Get(1).Status())

	status = m.CancelReservation(5)
	assert.Equal(t, ocpp16.CancelReservationStatusRejected, status)
}

func TestExpireStaleRevertsToAvailable(t *testing.T) {
	connectors := connector.NewTable(1, nil)
	m := chargepoint.NewReservationManager(connectors, nil, 0)

	m.ReserveNow(ocpp16.ReserveNowRequest{ConnectorId: 1, ExpiryDate: ocpp16.DateTime{Time: time.Now().Add(time.Millisecond)}, IdTag: "TAG1", ReservationId: 5})
	time.Sleep(5 * time.Millisecond)

	m.ExpireStale(time.Now())
	assert.Equal(t, ocpp16.ChargePointStatusAvailable, connectors.Get(1).Status())
	assert.False(t, connectors.Get(1).HasActiveReservation())
}
