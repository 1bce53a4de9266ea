package chargepoint

import (
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/connector"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/workerpool"
)

// ReservationManager handles ReserveNow/CancelReservation and expires
// stale reservations with a periodic scan, grounded on the same
// TimerPool used for heartbeat scheduling and the connector.Table's
// per-connector mutex discipline for the actual state mutation.
type ReservationManager struct {
	connectors *connector.Table
	scanTimer  *workerpool.Timer
}

// NewReservationManager builds a ReservationManager and, if timers and
// scanInterval are non-zero, starts the periodic expiry scan.
func NewReservationManager(connectors *connector.Table, timers *workerpool.TimerPool, scanInterval time.Duration) *ReservationManager {
	m := &ReservationManager{connectors: connectors}
	if timers != nil && scanInterval > 0 {
		m.scanTimer = timers.Start(scanInterval, true, func() {
			m.ExpireStale(time.Now())
		})
	}
	return m
}

// ReserveNow earmarks connectorID for idTag until expiry. Rejects if
// the connector is occupied by a transaction or faulted, matching the
// reservation invariants: a reservation can only be placed on a
// connector that is currently available (or already reserved, for an
// amend-in-place).
func (m *ReservationManager) ReserveNow(req ocpp16.ReserveNowRequest) ocpp16.ReservationStatus {
	c := m.connectors.Get(req.ConnectorId)
	if c == nil {
		return ocpp16.ReservationStatusRejected
	}

	status := c.Status()
	switch status {
	case ocpp16.ChargePointStatusFaulted:
		return ocpp16.ReservationStatusFaulted
	case ocpp16.ChargePointStatusUnavailable:
		return ocpp16.ReservationStatusUnavailable
	case ocpp16.ChargePointStatusPreparing, ocpp16.ChargePointStatusCharging,
		ocpp16.ChargePointStatusSuspendedEV, ocpp16.ChargePointStatusSuspendedEVSE,
		ocpp16.ChargePointStatusFinishing:
		return ocpp16.ReservationStatusOccupied
	}
	if c.HasActiveTransaction() {
		return ocpp16.ReservationStatusOccupied
	}
	if c.HasActiveReservation() && c.ReservationID() != req.ReservationId {
		return ocpp16.ReservationStatusOccupied
	}

	parent := ""
	if req.ParentIdTag != nil {
		parent = *req.ParentIdTag
	}
	c.Reserve(req.ReservationId, req.IdTag, parent, req.ExpiryDate.Time)
	c.SetStatus(ocpp16.ChargePointStatusReserved)
	return ocpp16.ReservationStatusAccepted
}

// CancelReservation clears a reservation by id across every connector.
func (m *ReservationManager) CancelReservation(reservationID int) ocpp16.CancelReservationStatus {
	for _, c := range m.connectors.All() {
		if c.HasActiveReservation() && c.ReservationID() == reservationID {
			c.ClearReservation()
			if c.Status() == ocpp16.ChargePointStatusReserved {
				c.SetStatus(ocpp16.ChargePointStatusAvailable)
			}
			return ocpp16.CancelReservationStatusAccepted
		}
	}
	return ocpp16.CancelReservationStatusRejected
}

// ExpireStale clears every reservation whose expiry has passed,
// reverting the connector to Available.
func (m *ReservationManager) ExpireStale(now time.Time) {
	for _, c := range m.connectors.All() {
		if c.ReservationExpired(now) {
			c.ClearReservation()
			if c.Status() == ocpp16.ChargePointStatusReserved {
				c.SetStatus(ocpp16.ChargePointStatusAvailable)
			}
		}
	}
}

// Stop halts the periodic expiry scan.
func (m *ReservationManager) Stop() {
	if m.scanTimer != nil {
		m.scanTimer.Stop()
	}
}
