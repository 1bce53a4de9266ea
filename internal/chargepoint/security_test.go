package chargepoint_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/chargepoint"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
)

func openSecurityStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLogEventCriticalNotifiesCentralSystem(t *testing.T) {
	store := openSecurityStore(t)
	var notified string
	call := func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
		notified = action
		raw, _ := json.Marshal(ocpp16.SecurityEventNotificationResponse{})
		return raw, nil, nil
	}

	m := chargepoint.NewSecurityManager(store, "CP1", 10, call)
	require.NoError(t, m.LogEvent(context.Background(), ocpp16.SecurityEventTamperDetectionActivated, "tamper switch tripped"))
	assert.Equal(t, string(ocpp16.ActionSecurityEventNotification), notified)

	entries, err := m.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Critical)
}

func TestLogEventNonCriticalSkipsNotification(t *testing.T) {
	store := openSecurityStore(t)
	called := false
	call := func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
		called = true
		return nil, nil, nil
	}

	m := chargepoint.NewSecurityManager(store, "CP1", 10, call)
	require.NoError(t, m.LogEvent(context.Background(), ocpp16.SecurityEventInvalidChargePointCertificate, ""))
	assert.False(t, called)

	entries, err := m.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Critical)
}

func TestLogEventPrunesToRetentionCap(t *testing.T) {
	store := openSecurityStore(t)
	m := chargepoint.NewSecurityManager(store, "CP1", 2, nil)
	ctx := context.Background()

	require.NoError(t, m.LogEvent(ctx, ocpp16.SecurityEventStartupOfTheDevice, "1"))
	require.NoError(t, m.LogEvent(ctx, ocpp16.SecurityEventStartupOfTheDevice, "2"))
	require.NoError(t, m.LogEvent(ctx, ocpp16.SecurityEventStartupOfTheDevice, "3"))

	entries, err := m.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSignCertificateReturnsStatus(t *testing.T) {
	store := openSecurityStore(t)
	call := func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
		raw, _ := json.Marshal(ocpp16.SignCertificateResponse{Status: ocpp16.GenericStatusAccepted})
		return raw, nil, nil
	}

	m := chargepoint.NewSecurityManager(store, "CP1", 10, call)
	status, err := m.SignCertificate(context.Background(), "-----BEGIN CERTIFICATE REQUEST-----")
	require.NoError(t, err)
	assert.Equal(t, ocpp16.GenericStatusAccepted, status)
}

func TestInstallSignedCertificatePersists(t *testing.T) {
	store := openSecurityStore(t)
	m := chargepoint.NewSecurityManager(store, "CP1", 10, nil)
	require.NoError(t, m.InstallSignedCertificate(context.Background(), "serial-1", "chain-pem"))

	certs, err := store.CPCertificatesFor(context.Background(), "CP1")
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, "chain-pem", certs[0].CertificateChain)
}
