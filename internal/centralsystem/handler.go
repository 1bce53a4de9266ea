package centralsystem

import (
	"context"

	"github.com/ocpp-platform/ocpp-runtime/internal/dispatch"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
)

// ChargePointRequestHandler answers every Call a charge point may send
// to the Central System. One instance is bound per Session as the
// per-session inbound delivery target paired with the IChargePoint
// outbound handle.
type ChargePointRequestHandler interface {
	OnBootNotification(ctx context.Context, chargePointID string, req *ocpp16.BootNotificationRequest) (*ocpp16.BootNotificationResponse, *ocpperr.CallError)
	OnHeartbeat(ctx context.Context, chargePointID string, req *ocpp16.HeartbeatRequest) (*ocpp16.HeartbeatResponse, *ocpperr.CallError)
	OnStatusNotification(ctx context.Context, chargePointID string, req *ocpp16.StatusNotificationRequest) (*ocpp16.StatusNotificationResponse, *ocpperr.CallError)
	OnAuthorize(ctx context.Context, chargePointID string, req *ocpp16.AuthorizeRequest) (*ocpp16.AuthorizeResponse, *ocpperr.CallError)
	OnStartTransaction(ctx context.Context, chargePointID string, req *ocpp16.StartTransactionRequest) (*ocpp16.StartTransactionResponse, *ocpperr.CallError)
	OnStopTransaction(ctx context.Context, chargePointID string, req *ocpp16.StopTransactionRequest) (*ocpp16.StopTransactionResponse, *ocpperr.CallError)
	OnMeterValues(ctx context.Context, chargePointID string, req *ocpp16.MeterValuesRequest) (*ocpp16.MeterValuesResponse, *ocpperr.CallError)
	OnDataTransfer(ctx context.Context, chargePointID string, req *ocpp16.DataTransferRequest) (*ocpp16.DataTransferResponse, *ocpperr.CallError)
	OnSecurityEventNotification(ctx context.Context, chargePointID string, req *ocpp16.SecurityEventNotificationRequest) (*ocpp16.SecurityEventNotificationResponse, *ocpperr.CallError)
	OnSignCertificate(ctx context.Context, chargePointID string, req *ocpp16.SignCertificateRequest) (*ocpp16.SignCertificateResponse, *ocpperr.CallError)
}

// registerHandlers adapts a ChargePointRequestHandler's typed methods
// into the dispatch.Dispatcher's Action-keyed, any-typed Handler slots,
// mirroring the converter-pair registration pattern internal/convert
// uses for the wire side of the same Actions.
func registerHandlers(d *dispatch.Dispatcher, h ChargePointRequestHandler) {
	d.RegisterHandler(string(ocpp16.ActionBootNotification), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnBootNotification(ctx, cpID, req.(*ocpp16.BootNotificationRequest))
	})
	d.RegisterHandler(string(ocpp16.ActionHeartbeat), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnHeartbeat(ctx, cpID, req.(*ocpp16.HeartbeatRequest))
	})
	d.RegisterHandler(string(ocpp16.ActionStatusNotification), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnStatusNotification(ctx, cpID, req.(*ocpp16.StatusNotificationRequest))
	})
	d.RegisterHandler(string(ocpp16.ActionAuthorize), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnAuthorize(ctx, cpID, req.(*ocpp16.AuthorizeRequest))
	})
	d.RegisterHandler(string(ocpp16.ActionStartTransaction), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnStartTransaction(ctx, cpID, req.(*ocpp16.StartTransactionRequest))
	})
	d.RegisterHandler(string(ocpp16.ActionStopTransaction), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnStopTransaction(ctx, cpID, req.(*ocpp16.StopTransactionRequest))
	})
	d.RegisterHandler(string(ocpp16.ActionMeterValues), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnMeterValues(ctx, cpID, req.(*ocpp16.MeterValuesRequest))
	})
	d.RegisterHandler(string(ocpp16.ActionDataTransfer), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnDataTransfer(ctx, cpID, req.(*ocpp16.DataTransferRequest))
	})
	d.RegisterHandler(string(ocpp16.ActionSecurityEventNotification), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnSecurityEventNotification(ctx, cpID, req.(*ocpp16.SecurityEventNotificationRequest))
	})
	d.RegisterHandler(string(ocpp16.ActionSignCertificate), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return h.OnSignCertificate(ctx, cpID, req.(*ocpp16.SignCertificateRequest))
	})
}
