// Package connector models one charge point's connector table: per-id
// status, active transaction, and active reservation, each guarded by
// its own mutex so unrelated connectors never block each other.
//
// Adapted from the network/metrics/state bookkeeping in
// internal/domain/connection.Connection, trimmed to the fields OCPP's
// connector state machine actually needs.
package connector

import (
	"sync"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
)

// Connector is one entry of a charge point's connector table. Id 0 means
// the charge point as a whole; ids 1..N are physical connectors.
type Connector struct {
	mu sync.Mutex

	id                     int
	status                 ocpp16.ChargePointStatus
	lastNotifiedStatus     ocpp16.ChargePointStatus
	transactionID          int
	offlineTransactionID   int
	transactionStartTime   time.Time
	transactionIDTag       string
	transactionParentIDTag string
	reservationID          int
	reservationIDTag       string
	reservationParentIDTag string
	reservationExpiry      time.Time

	dirty bool
}

// New constructs a Connector in its initial Available state.
func New(id int) *Connector {
	return &Connector{
		id:     id,
		status: ocpp16.ChargePointStatusAvailable,
	}
}

func (c *Connector) ID() int { return c.id }

// Status returns the connector's current reported status.
func (c *Connector) Status() ocpp16.ChargePointStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SetStatus transitions the connector and marks it dirty for Save.
func (c *Connector) SetStatus(status ocpp16.ChargePointStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.dirty = true
}

// LastNotifiedStatus is the status last reported via StatusNotification;
// used to suppress duplicate notifications.
func (c *Connector) LastNotifiedStatus() ocpp16.ChargePointStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastNotifiedStatus
}

func (c *Connector) SetLastNotifiedStatus(status ocpp16.ChargePointStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastNotifiedStatus = status
}

// HasActiveTransaction reports whether a transaction is currently bound,
// including the -1 offline sentinel.
func (c *Connector) HasActiveTransaction() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transactionID != 0 || c.offlineTransactionID != 0
}

func (c *Connector) TransactionID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transactionID
}

// StartTransaction binds connector state to a newly accepted transaction.
func (c *Connector) StartTransaction(transactionID int, idTag, parentIDTag string, start time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactionID = transactionID
	c.transactionIDTag = idTag
	c.transactionParentIDTag = parentIDTag
	c.transactionStartTime = start
	c.dirty = true
}

// StartOfflineTransaction assigns the -1 sentinel used when the RPC call
// could not be attempted because the link is down.
func (c *Connector) StartOfflineTransaction(idTag string, start time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offlineTransactionID = -1
	c.transactionIDTag = idTag
	c.transactionStartTime = start
	c.dirty = true
}

// ClearTransaction releases the connector's transaction fields, e.g.
// after StopTransaction completes.
func (c *Connector) ClearTransaction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactionID = 0
	c.offlineTransactionID = 0
	c.transactionIDTag = ""
	c.transactionParentIDTag = ""
	c.transactionStartTime = time.Time{}
	c.dirty = true
}

// HasActiveReservation reports whether a reservation is currently held.
func (c *Connector) HasActiveReservation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reservationID != 0
}

func (c *Connector) ReservationID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reservationID
}

func (c *Connector) ReservationIDTag() (idTag, parentIDTag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reservationIDTag, c.reservationParentIDTag
}

// Reserve records a new reservation. Callers must check Status() is
// Available (or that reservationID matches for an amend) before calling.
func (c *Connector) Reserve(reservationID int, idTag, parentIDTag string, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reservationID = reservationID
	c.reservationIDTag = idTag
	c.reservationParentIDTag = parentIDTag
	c.reservationExpiry = expiry
	c.dirty = true
}

// ReservationExpired reports whether now is past the reservation's expiry.
func (c *Connector) ReservationExpired(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reservationID != 0 && now.After(c.reservationExpiry)
}

// ClearReservation drops the connector's reservation fields, whether
// because a transaction started, it was explicitly canceled, or it
// expired.
func (c *Connector) ClearReservation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reservationID = 0
	c.reservationIDTag = ""
	c.reservationParentIDTag = ""
	c.reservationExpiry = time.Time{}
	c.dirty = true
}

// TakeDirty reports whether the connector has unsaved mutations and clears
// the flag; callers persist the row and then call this to reset it.
func (c *Connector) TakeDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.dirty
	c.dirty = false
	return d
}

// Row is the flat, persistence-friendly snapshot of a Connector, used by
// storage/sqlite to load and save the connector table.
type Row struct {
	ID                     int
	Status                 string
	LastNotifiedStatus     string
	TransactionID          int
	OfflineTransactionID   int
	TransactionStartTime   time.Time
	TransactionIDTag       string
	TransactionParentIDTag string
	ReservationID          int
	ReservationIDTag       string
	ReservationParentIDTag string
	ReservationExpiry      time.Time
}

// Snapshot returns the connector's current state as a Row for persistence.
func (c *Connector) Snapshot() Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Row{
		ID:                     c.id,
		Status:                 string(c.status),
		LastNotifiedStatus:     string(c.lastNotifiedStatus),
		TransactionID:          c.transactionID,
		OfflineTransactionID:   c.offlineTransactionID,
		TransactionStartTime:   c.transactionStartTime,
		TransactionIDTag:       c.transactionIDTag,
		TransactionParentIDTag: c.transactionParentIDTag,
		ReservationID:          c.reservationID,
		ReservationIDTag:       c.reservationIDTag,
		ReservationParentIDTag: c.reservationParentIDTag,
		ReservationExpiry:      c.reservationExpiry,
	}
}

// FromRow rebuilds a Connector from a persisted Row.
func FromRow(r Row) *Connector {
	return &Connector{
		id:                     r.ID,
		status:                 ocpp16.ChargePointStatus(r.Status),
		lastNotifiedStatus:     ocpp16.ChargePointStatus(r.LastNotifiedStatus),
		transactionID:          r.TransactionID,
		offlineTransactionID:   r.OfflineTransactionID,
		transactionStartTime:   r.TransactionStartTime,
		transactionIDTag:       r.TransactionIDTag,
		transactionParentIDTag: r.TransactionParentIDTag,
		reservationID:          r.ReservationID,
		reservationIDTag:       r.ReservationIDTag,
		reservationParentIDTag: r.ReservationParentIDTag,
		reservationExpiry:      r.ReservationExpiry,
	}
}

// Table owns every connector for one charge point and the save hook used
// to persist mutations.
type Table struct {
	mu         sync.RWMutex
	connectors map[int]*Connector
	saveFn     func(Row) error
}

// NewTable builds a Table with N physical connectors plus connector 0.
// save is invoked by Table.Save with a dirty connector's row; a
// nil save makes the table memory-only (used in tests).
func NewTable(count int, save func(Row) error) *Table {
	t := &Table{
		connectors: make(map[int]*Connector, count+1),
		saveFn:     save,
	}
	for id := 0; id <= count; id++ {
		t.connectors[id] = New(id)
	}
	return t
}

// LoadTable rebuilds a Table from persisted rows, topping up any missing
// ids (e.g. after the configured connector count increased) with fresh
// Available connectors.
func LoadTable(rows []Row, count int, save func(Row) error) *Table {
	t := &Table{
		connectors: make(map[int]*Connector, count+1),
		saveFn:     save,
	}
	for _, r := range rows {
		t.connectors[r.ID] = FromRow(r)
	}
	for id := 0; id <= count; id++ {
		if _, ok := t.connectors[id]; !ok {
			t.connectors[id] = New(id)
		}
	}
	return t
}

// Get returns the connector for id, or nil if out of range.
func (t *Table) Get(id int) *Connector {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connectors[id]
}

// All returns every connector, ordered by id.
func (t *Table) All() []*Connector {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Connector, 0, len(t.connectors))
	for id := 0; id < len(t.connectors); id++ {
		if c, ok := t.connectors[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Save persists c's row via the configured save hook, if dirty.
func (t *Table) Save(c *Connector) error {
	if !c.TakeDirty() || t.saveFn == nil {
		return nil
	}
	return t.saveFn(c.Snapshot())
}

// Resize rebuilds the table for a new connector count. Per the "reducing
// connector count resets all connector rows" rule, any id outside the
// new range is dropped and every remaining row is reset to Available so
// a pending transaction is never silently orphaned.
func (t *Table) Resize(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connectors = make(map[int]*Connector, count+1)
	for id := 0; id <= count; id++ {
		t.connectors[id] = New(id)
	}
}
