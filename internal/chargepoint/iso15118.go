package chargepoint

import (
	"context"
	"encoding/json"

	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
)

// Plug-and-Charge message ids carried as DataTransfer.messageId under
// ocpp16.VendorIDISO15118PnC, per the ISO 15118-2 Annex mapping onto
// OCPP 1.6's vendor extension mechanism.
const (
	MessageIDGet15118EVCertificate = "Get15118EVCertificate"
	MessageIDGetCertificateStatus  = "GetCertificateStatus"
)

// exiRequest/exiResponse carry the ISO 15118 EXI blob opaquely as
// base64 inside DataTransfer.data; this stack implements no EXI codec
// (out of scope), so the blob passes through unexamined to/from the
// Central System.
type exiRequest struct {
	ISO15118SchemaVersion string `json:"iso15118SchemaVersion"`
	Action                string `json:"action"`
	ExiRequest            string `json:"exiRequest"`
}

type exiResponse struct {
	Status      ocpp16.DataTransferStatus `json:"status"`
	ExiResponse string                    `json:"exiResponse,omitempty"`
}

// PnCManager relays ISO 15118 Plug-and-Charge exchanges over
// DataTransfer: a Charge Point with a V2G-capable EV forwards the EV's
// EXI-encoded requests to the Central System and returns its EXI
// response unchanged.
type PnCManager struct {
	call CallFunc
}

// NewPnCManager builds a PnCManager bound to one charge point's call path.
func NewPnCManager(call CallFunc) *PnCManager {
	return &PnCManager{call: call}
}

// RequestEVCertificate forwards a vehicle's Get15118EVCertificate EXI
// request to the Central System, returning the Central System's
// opaque EXI response for relay back to the vehicle.
func (m *PnCManager) RequestEVCertificate(ctx context.Context, schemaVersion, exiRequestBlob string) (string, error) {
	return m.dataTransferEXI(ctx, MessageIDGet15118EVCertificate, exiRequest{
		ISO15118SchemaVersion: schemaVersion,
		Action:                "Install",
		ExiRequest:            exiRequestBlob,
	})
}

// RequestCertificateStatus forwards an OCSP status check for a
// Plug-and-Charge certificate.
func (m *PnCManager) RequestCertificateStatus(ctx context.Context, exiRequestBlob string) (string, error) {
	return m.dataTransferEXI(ctx, MessageIDGetCertificateStatus, exiRequest{
		ExiRequest: exiRequestBlob,
	})
}

func (m *PnCManager) dataTransferEXI(ctx context.Context, messageID string, data any) (string, error) {
	mid := messageID
	req := ocpp16.DataTransferRequest{
		VendorId:  ocpp16.VendorIDISO15118PnC,
		MessageId: &mid,
		Data:      data,
	}

	result, callErr, err := m.call(ctx, string(ocpp16.ActionDataTransfer), req)
	if err != nil {
		return "", err
	}
	if callErr != nil {
		return "", callErr
	}

	var resp ocpp16.DataTransferResponse
	if err := decodeInto(result, &resp); err != nil {
		return "", err
	}
	if resp.Status != ocpp16.DataTransferStatusAccepted {
		return "", nil
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return "", err
	}
	var exi exiResponse
	if err := json.Unmarshal(raw, &exi); err != nil {
		return "", err
	}
	return exi.ExiResponse, nil
}
