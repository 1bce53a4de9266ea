package chargepoint

import (
	"context"
	"sync"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/ocpp-platform/ocpp-runtime/internal/workerpool"
)

// BootConfig carries the boot/heartbeat tunables.
type BootConfig struct {
	Vendor                string
	Model                 string
	HeartbeatInterval     time.Duration
	RegistrationRetryWait time.Duration
}

// BootManager drives the BootNotification handshake and keeps the
// heartbeat timer running afterward, resetting it on every outbound
// message per the reset-on-send suppression rule so an active charge
// point doesn't also send redundant heartbeats.
type BootManager struct {
	cfg    BootConfig
	call   CallFunc
	timers *workerpool.TimerPool
	log    *logger.Logger

	mu             sync.Mutex
	status         ocpp16.RegistrationStatus
	interval       time.Duration
	heartbeatTimer *workerpool.Timer
}

// NewBootManager builds a BootManager that sends outbound calls via
// call and schedules its heartbeat/retry timers on timers.
func NewBootManager(cfg BootConfig, call CallFunc, timers *workerpool.TimerPool, log *logger.Logger) *BootManager {
	return &BootManager{cfg: cfg, call: call, timers: timers, log: log}
}

// Status returns the last-known registration status.
func (m *BootManager) Status() ocpp16.RegistrationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Boot sends BootNotification and arms the heartbeat timer once
// accepted; on Pending/Rejected it schedules a single retry after
// RegistrationRetryWait, matching the "keep retrying the boot handshake
// until accepted" rule.
func (m *BootManager) Boot(ctx context.Context) error {
	result, callErr, err := m.call(ctx, string(ocpp16.ActionBootNotification), ocpp16.BootNotificationRequest{
		ChargePointVendor: m.cfg.Vendor,
		ChargePointModel:  m.cfg.Model,
	})
	if err != nil {
		return err
	}
	if callErr != nil {
		return callErr
	}

	var resp ocpp16.BootNotificationResponse
	if err := decodeInto(result, &resp); err != nil {
		return err
	}

	m.mu.Lock()
	m.status = resp.Status
	m.interval = time.Duration(resp.Interval) * time.Second
	m.mu.Unlock()

	switch resp.Status {
	case ocpp16.RegistrationStatusAccepted:
		m.armHeartbeat()
	default:
		if m.timers != nil && m.cfg.RegistrationRetryWait > 0 {
			m.timers.Start(m.cfg.RegistrationRetryWait, false, func() {
				_ = m.Boot(context.Background())
			})
		}
	}
	return nil
}

// armHeartbeat (re)starts the repeating heartbeat timer at the
// Central System-assigned interval, falling back to the configured
// default if the boot response carried none.
func (m *BootManager) armHeartbeat() {
	if m.timers == nil {
		return
	}
	m.mu.Lock()
	interval := m.interval
	if interval <= 0 {
		interval = m.cfg.HeartbeatInterval
	}
	if m.heartbeatTimer != nil {
		m.heartbeatTimer.Stop()
	}
	m.mu.Unlock()

	if interval <= 0 {
		return
	}
	timer := m.timers.Start(interval, true, func() {
		if err := m.Heartbeat(context.Background()); err != nil && m.log != nil {
			m.log.Errorf("heartbeat failed: %v", err)
		}
	})
	m.mu.Lock()
	m.heartbeatTimer = timer
	m.mu.Unlock()
}

// NoteOutboundActivity resets the heartbeat timer after any other
// outbound Call, so a busy session never sends a heartbeat on top of
// traffic that already proves it's alive.
func (m *BootManager) NoteOutboundActivity() {
	m.mu.Lock()
	timer := m.heartbeatTimer
	m.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
	m.armHeartbeat()
}

// Heartbeat sends a Heartbeat call and discards the response; the
// repeating heartbeat timer fires it again after the next interval.
func (m *BootManager) Heartbeat(ctx context.Context) error {
	_, callErr, err := m.call(ctx, string(ocpp16.ActionHeartbeat), ocpp16.HeartbeatRequest{})
	if err != nil {
		return err
	}
	if callErr != nil {
		return callErr
	}
	return nil
}

// Stop halts the heartbeat/retry timers.
func (m *BootManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.heartbeatTimer != nil {
		m.heartbeatTimer.Stop()
	}
}
