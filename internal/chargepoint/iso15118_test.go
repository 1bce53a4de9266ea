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
)

func TestRequestEVCertificateRelaysEXIBlob(t *testing.T) {
	var sentVendorID string
	var sentMessageID string
	call := func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
		assert.Equal(t, string(ocpp16.ActionDataTransfer), action)
		req, ok := payload.(ocpp16.DataTransferRequest)
		require.True(t, ok)
		sentVendorID = req.VendorId
		if req.MessageId != nil {
			sentMessageID = *req.MessageId
		}

		raw, _ := json.Marshal(ocpp16.DataTransferResponse{
			Status: ocpp16.DataTransferStatusAccepted,
			Data: map[string]any{
				"status":      "Accepted",
				"exiResponse": "QkFTRTY0LUVYSQ==",
			},
		})
		return raw, nil, nil
	}

	m := chargepoint.NewPnCManager(call)
	exi, err := m.RequestEVCertificate(context.Background(), "urn:iso:15118:2:2013:MsgDef", "bGVhZGluZy1leGk=")
	require.NoError(t, err)
	assert.Equal(t, ocpp16.VendorIDISO15118PnC, sentVendorID)
	assert.Equal(t, chargepoint.MessageIDGet15118EVCertificate, sentMessageID)
	assert.Equal(t, "QkFTRTY0LUVYSQ==", exi)
}

func TestRequestCertificateStatusRejectedReturnsEmpty(t *testing.T) {
	call := func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
		raw, _ := json.Marshal(ocpp16.DataTransferResponse{Status: ocpp16.DataTransferStatusRejected})
		return raw, nil, nil
	}

	m := chargepoint.NewPnCManager(call)
	exi, err := m.RequestCertificateStatus(context.Background(), "req")
	require.NoError(t, err)
	assert.Empty(t, exi)
}
