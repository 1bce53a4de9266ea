package chargepoint

import (
	"context"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
)

// SecurityManager appends every security-relevant occurrence to the
// durable, capped event log and notifies the Central System
// immediately for the events the fixed criticality table marks
// critical; non-critical events are logged only. Also sends the
// SignCertificate request that starts the CSR cycle; the
// CertificateSigned reply arrives later as a separate inbound Call.
type SecurityManager struct {
	store         *sqlite.Store
	chargePointID string
	logCap        int
	call          CallFunc
}

// NewSecurityManager builds a SecurityManager that retains at most
// logCap entries per charge point (config.OCPPConfig.SecurityLogCap).
func NewSecurityManager(store *sqlite.Store, chargePointID string, logCap int, call CallFunc) *SecurityManager {
	return &SecurityManager{store: store, chargePointID: chargePointID, logCap: logCap, call: call}
}

// LogEvent appends the event to the durable log, prunes it back to the
// retention cap, and — if the event is critical — sends
// SecurityEventNotification through the CallFunc. A transport error or
// CallError from that call is returned to the caller; the notification
// is not queued on the Request FIFO.
func (m *SecurityManager) LogEvent(ctx context.Context, eventType ocpp16.SecurityEventType, techInfo string) error {
	critical := ocpp16.SecurityEventCriticality[eventType]
	now := time.Now().UTC()

	if err := m.store.SecurityLogAppend(ctx, sqlite.SecurityLogEntry{
		ChargePointID: m.chargePointID,
		Timestamp:     now,
		Type:          string(eventType),
		TechInfo:      techInfo,
		Critical:      critical,
	}); err != nil {
		return err
	}
	if m.logCap > 0 {
		if err := m.store.SecurityLogPrune(ctx, m.chargePointID, m.logCap); err != nil {
			return err
		}
	}

	if !critical || m.call == nil {
		return nil
	}

	req := ocpp16.SecurityEventNotificationRequest{
		Type:      eventType,
		Timestamp: ocpp16.DateTime{Time: now},
	}
	if techInfo != "" {
		req.TechInfo = &techInfo
	}
	_, callErr, err := m.call(ctx, string(ocpp16.ActionSecurityEventNotification), req)
	if err != nil {
		return err
	}
	if callErr != nil {
		return callErr
	}
	return nil
}

// Recent returns the most recently logged events, newest first.
func (m *SecurityManager) Recent(ctx context.Context, limit int) ([]sqlite.SecurityLogEntry, error) {
	return m.store.SecurityLogRecent(ctx, m.chargePointID, limit)
}

// SignCertificate submits a CSR once and returns the Central System's
// status. It makes no retry and does not wait for CertificateSigned,
// which arrives on a separate inbound Call — SignCertificate's own
// response only says whether the Central System accepted the request,
// not the certificate itself.
func (m *SecurityManager) SignCertificate(ctx context.Context, csr string) (ocpp16.GenericStatus, error) {
	result, callErr, err := m.call(ctx, string(ocpp16.ActionSignCertificate), ocpp16.SignCertificateRequest{Csr: csr})
	if err != nil {
		return "", err
	}
	if callErr != nil {
		return "", callErr
	}
	var resp ocpp16.SignCertificateResponse
	if err := decodeInto(result, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// InstallSignedCertificate persists an inbound CertificateSigned
// delivery against this charge point. serialNumber distinguishes this
// identity certificate from any others already on file (e.g. during a
// rollover where the old certificate remains valid until it expires).
func (m *SecurityManager) InstallSignedCertificate(ctx context.Context, serialNumber, chain string) error {
	return m.store.CPCertificatePut(ctx, sqlite.CPCertificate{
		ChargePointID:    m.chargePointID,
		SerialNumber:     serialNumber,
		CertificateChain: chain,
		InstalledAt:      time.Now().UTC().Format(time.RFC3339),
	})
}
