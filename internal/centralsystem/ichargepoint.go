// Package centralsystem implements the Central-System-side session
// manager: the HTTP/WebSocket acceptor, duplicate-identifier rejection,
// subprotocol negotiation, security-profile-gated authentication, and
// the per-connection wiring of dispatch/convert into a typed outbound
// command API (IChargePoint) plus an inbound ChargePointRequestHandler.
//
// Generalized from a single hardcoded OCPP 1.6 processor into a
// version-agnostic acceptor that reuses internal/rpc and
// internal/dispatch.
package centralsystem

import (
	"context"

	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpc"
)

// IChargePoint is the outbound command API exposed for one connected
// charge point. Every method blocks until the peer's
// CallResult/CallError arrives or its call deadline elapses.
type IChargePoint interface {
	ChangeConfiguration(ctx context.Context, req ocpp16.ChangeConfigurationRequest) (*ocpp16.ChangeConfigurationResponse, error)
	GetConfiguration(ctx context.Context, req ocpp16.GetConfigurationRequest) (*ocpp16.GetConfigurationResponse, error)
	Reset(ctx context.Context, req ocpp16.ResetRequest) (*ocpp16.ResetResponse, error)
	ChangeAvailability(ctx context.Context, req ocpp16.ChangeAvailabilityRequest) (*ocpp16.ChangeAvailabilityResponse, error)
	UnlockConnector(ctx context.Context, req ocpp16.UnlockConnectorRequest) (*ocpp16.UnlockConnectorResponse, error)
	RemoteStartTransaction(ctx context.Context, req ocpp16.RemoteStartTransactionRequest) (*ocpp16.RemoteStartTransactionResponse, error)
	RemoteStopTransaction(ctx context.Context, req ocpp16.RemoteStopTransactionRequest) (*ocpp16.RemoteStopTransactionResponse, error)
	ReserveNow(ctx context.Context, req ocpp16.ReserveNowRequest) (*ocpp16.ReserveNowResponse, error)
	CancelReservation(ctx context.Context, req ocpp16.CancelReservationRequest) (*ocpp16.CancelReservationResponse, error)
	DataTransfer(ctx context.Context, req ocpp16.DataTransferRequest) (*ocpp16.DataTransferResponse, error)
	TriggerMessage(ctx context.Context, req ocpp16.TriggerMessageRequest) (*ocpp16.TriggerMessageResponse, error)
	SetChargingProfile(ctx context.Context, req ocpp16.SetChargingProfileRequest) (*ocpp16.SetChargingProfileResponse, error)
	ClearChargingProfile(ctx context.Context, req ocpp16.ClearChargingProfileRequest) (*ocpp16.ClearChargingProfileResponse, error)
	GetCompositeSchedule(ctx context.Context, req ocpp16.GetCompositeScheduleRequest) (*ocpp16.GetCompositeScheduleResponse, error)
	SendLocalList(ctx context.Context, req ocpp16.SendLocalListRequest) (*ocpp16.SendLocalListResponse, error)
	GetLocalListVersion(ctx context.Context) (*ocpp16.GetLocalListVersionResponse, error)
	GetDiagnostics(ctx context.Context, req ocpp16.GetDiagnosticsRequest) (*ocpp16.GetDiagnosticsResponse, error)
	UpdateFirmware(ctx context.Context, req ocpp16.UpdateFirmwareRequest) error
	CertificateSigned(ctx context.Context, req ocpp16.CertificateSignedRequest) (*ocpp16.CertificateSignedResponse, error)
	GetInstalledCertificateIds(ctx context.Context, req ocpp16.GetInstalledCertificateIdsRequest) (*ocpp16.GetInstalledCertificateIdsResponse, error)
	DeleteCertificate(ctx context.Context, req ocpp16.DeleteCertificateRequest) (*ocpp16.DeleteCertificateResponse, error)
	InstallCertificate(ctx context.Context, req ocpp16.InstallCertificateRequest) (*ocpp16.InstallCertificateResponse, error)

	// ChargePointID identifies the session this handle addresses.
	ChargePointID() string
}

// chargePointHandle is the *rpc.Pool-backed IChargePoint implementation
// installed on every accepted Session.
type chargePointHandle struct {
	id   string
	pool *rpc.Pool
}

func newChargePointHandle(id string, pool *rpc.Pool) IChargePoint {
	return &chargePointHandle{id: id, pool: pool}
}

func (h *chargePointHandle) ChargePointID() string { return h.id }

func (h *chargePointHandle) call(ctx context.Context, action string, req, resp any) error {
	raw, callErr, err := h.pool.Call(ctx, action, req)
	if err != nil {
		return err
	}
	if callErr != nil {
		return callErr
	}
	return decodeInto(raw, resp)
}

func (h *chargePointHandle) ChangeConfiguration(ctx context.Context, req ocpp16.ChangeConfigurationRequest) (*ocpp16.ChangeConfigurationResponse, error) {
	var resp ocpp16.ChangeConfigurationResponse
	if err := h.call(ctx, string(ocpp16.ActionChangeConfiguration), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) GetConfiguration(ctx context.Context, req ocpp16.GetConfigurationRequest) (*ocpp16.GetConfigurationResponse, error) {
	var resp ocpp16.GetConfigurationResponse
	if err := h.call(ctx, string(ocpp16.ActionGetConfiguration), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) Reset(ctx context.Context, req ocpp16.ResetRequest) (*ocpp16.ResetResponse, error) {
	var resp ocpp16.ResetResponse
	if err := h.call(ctx, string(ocpp16.ActionReset), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) ChangeAvailability(ctx context.Context, req ocpp16.ChangeAvailabilityRequest) (*ocpp16.ChangeAvailabilityResponse, error) {
	var resp ocpp16.ChangeAvailabilityResponse
	if err := h.call(ctx, string(ocpp16.ActionChangeAvailability), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) UnlockConnector(ctx context.Context, req ocpp16.UnlockConnectorRequest) (*ocpp16.UnlockConnectorResponse, error) {
	var resp ocpp16.UnlockConnectorResponse
	if err := h.call(ctx, string(ocpp16.ActionUnlockConnector), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) RemoteStartTransaction(ctx context.Context, req ocpp16.RemoteStartTransactionRequest) (*ocpp16.RemoteStartTransactionResponse, error) {
	var resp ocpp16.RemoteStartTransactionResponse
	if err := h.call(ctx, string(ocpp16.ActionRemoteStartTransaction), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) RemoteStopTransaction(ctx context.Context, req ocpp16.RemoteStopTransactionRequest) (*ocpp16.RemoteStopTransactionResponse, error) {
	var resp ocpp16.RemoteStopTransactionResponse
	if err := h.call(ctx, string(ocpp16.ActionRemoteStopTransaction), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) ReserveNow(ctx context.Context, req ocpp16.ReserveNowRequest) (*ocpp16.ReserveNowResponse, error) {
	var resp ocpp16.ReserveNowResponse
	if err := h.call(ctx, string(ocpp16.ActionReserveNow), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) CancelReservation(ctx context.Context, req ocpp16.CancelReservationRequest) (*ocpp16.CancelReservationResponse, error) {
	var resp ocpp16.CancelReservationResponse
	if err := h.call(ctx, string(ocpp16.ActionCancelReservation), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) DataTransfer(ctx context.Context, req ocpp16.DataTransferRequest) (*ocpp16.DataTransferResponse, error) {
	var resp ocpp16.DataTransferResponse
	if err := h.call(ctx, string(ocpp16.ActionDataTransfer), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) TriggerMessage(ctx context.Context, req ocpp16.TriggerMessageRequest) (*ocpp16.TriggerMessageResponse, error) {
	var resp ocpp16.TriggerMessageResponse
	if err := h.call(ctx, string(ocpp16.ActionTriggerMessage), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) SetChargingProfile(ctx context.Context, req ocpp16.SetChargingProfileRequest) (*ocpp16.SetChargingProfileResponse, error) {
	var resp ocpp16.SetChargingProfileResponse
	if err := h.call(ctx, string(ocpp16.ActionSetChargingProfile), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) ClearChargingProfile(ctx context.Context, req ocpp16.ClearChargingProfileRequest) (*ocpp16.ClearChargingProfileResponse, error) {
	var resp ocpp16.ClearChargingProfileResponse
	if err := h.call(ctx, string(ocpp16.ActionClearChargingProfile), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) GetCompositeSchedule(ctx context.Context, req ocpp16.GetCompositeScheduleRequest) (*ocpp16.GetCompositeScheduleResponse, error) {
	var resp ocpp16.GetCompositeScheduleResponse
	if err := h.call(ctx, string(ocpp16.ActionGetCompositeSchedule), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) SendLocalList(ctx context.Context, req ocpp16.SendLocalListRequest) (*ocpp16.SendLocalListResponse, error) {
	var resp ocpp16.SendLocalListResponse
	if err := h.call(ctx, string(ocpp16.ActionSendLocalList), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) GetLocalListVersion(ctx context.Context) (*ocpp16.GetLocalListVersionResponse, error) {
	var resp ocpp16.GetLocalListVersionResponse
	if err := h.call(ctx, string(ocpp16.ActionGetLocalListVersion), ocpp16.GetLocalListVersionRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) GetDiagnostics(ctx context.Context, req ocpp16.GetDiagnosticsRequest) (*ocpp16.GetDiagnosticsResponse, error) {
	var resp ocpp16.GetDiagnosticsResponse
	if err := h.call(ctx, string(ocpp16.ActionGetDiagnostics), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) UpdateFirmware(ctx context.Context, req ocpp16.UpdateFirmwareRequest) error {
	var resp ocpp16.UpdateFirmwareResponse
	return h.call(ctx, string(ocpp16.ActionUpdateFirmware), req, &resp)
}

func (h *chargePointHandle) CertificateSigned(ctx context.Context, req ocpp16.CertificateSignedRequest) (*ocpp16.CertificateSignedResponse, error) {
	var resp ocpp16.CertificateSignedResponse
	if err := h.call(ctx, string(ocpp16.ActionCertificateSigned), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) GetInstalledCertificateIds(ctx context.Context, req ocpp16.GetInstalledCertificateIdsRequest) (*ocpp16.GetInstalledCertificateIdsResponse, error) {
	var resp ocpp16.GetInstalledCertificateIdsResponse
	if err := h.call(ctx, string(ocpp16.ActionGetInstalledCertificateIds), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) DeleteCertificate(ctx context.Context, req ocpp16.DeleteCertificateRequest) (*ocpp16.DeleteCertificateResponse, error) {
	var resp ocpp16.DeleteCertificateResponse
	if err := h.call(ctx, string(ocpp16.ActionDeleteCertificate), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *chargePointHandle) InstallCertificate(ctx context.Context, req ocpp16.InstallCertificateRequest) (*ocpp16.InstallCertificateResponse, error) {
	var resp ocpp16.InstallCertificateResponse
	if err := h.call(ctx, string(ocpp16.ActionInstallCertificate), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
