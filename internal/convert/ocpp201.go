package convert

import "github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp201"

// RegisterOCPP201 installs the converter pair for the 2.0.1 subset
// this runtime speaks.
func RegisterOCPP201(r *Registry) {
	reg := func(action string, newReq, newResp func() any) {
		r.Register(V201, action, newReq, newResp)
	}

	reg(string(ocpp201.ActionBootNotification),
		func() any { return new(ocpp201.BootNotificationRequest) },
		func() any { return new(ocpp201.BootNotificationResponse) })
	reg(string(ocpp201.ActionHeartbeat),
		func() any { return new(ocpp201.HeartbeatRequest) },
		func() any { return new(ocpp201.HeartbeatResponse) })
	reg(string(ocpp201.ActionStatusNotification),
		func() any { return new(ocpp201.StatusNotificationRequest) },
		func() any { return new(ocpp201.StatusNotificationResponse) })
	reg(string(ocpp201.ActionAuthorize),
		func() any { return new(ocpp201.AuthorizeRequest) },
		func() any { return new(ocpp201.AuthorizeResponse) })
	reg(string(ocpp201.ActionTransactionEvent),
		func() any { return new(ocpp201.TransactionEventRequest) },
		func() any { return new(ocpp201.TransactionEventResponse) })
	reg(string(ocpp201.ActionDataTransfer),
		func() any { return new(ocpp201.DataTransferRequest) },
		func() any { return new(ocpp201.DataTransferResponse) })
	reg(string(ocpp201.ActionGet15118EVCertificate),
		func() any { return new(ocpp201.Get15118EVCertificateRequest) },
		func() any { return new(ocpp201.Get15118EVCertificateResponse) })
	reg(string(ocpp201.ActionGetCertificateStatus),
		func() any { return new(ocpp201.GetCertificateStatusRequest) },
		func() any { return new(ocpp201.GetCertificateStatusResponse) })
}
