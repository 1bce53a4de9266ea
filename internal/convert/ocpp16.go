package convert

import "github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"

// RegisterOCPP16 installs the converter pair for every Action this
// runtime's OCPP 1.6 side speaks.
func RegisterOCPP16(r *Registry) {
	reg := func(action string, newReq, newResp func() any) {
		r.Register(V16, action, newReq, newResp)
	}

	reg(string(ocpp16.ActionBootNotification),
		func() any { return new(ocpp16.BootNotificationRequest) },
		func() any { return new(ocpp16.BootNotificationResponse) })
	reg(string(ocpp16.ActionHeartbeat),
		func() any { return new(ocpp16.HeartbeatRequest) },
		func() any { return new(ocpp16.HeartbeatResponse) })
	reg(string(ocpp16.ActionStatusNotification),
		func() any { return new(ocpp16.StatusNotificationRequest) },
		func() any { return new(ocpp16.StatusNotificationResponse) })
	reg(string(ocpp16.ActionAuthorize),
		func() any { return new(ocpp16.AuthorizeRequest) },
		func() any { return new(ocpp16.AuthorizeResponse) })
	reg(string(ocpp16.ActionStartTransaction),
		func() any { return new(ocpp16.StartTransactionRequest) },
		func() any { return new(ocpp16.StartTransactionResponse) })
	reg(string(ocpp16.ActionStopTransaction),
		func() any { return new(ocpp16.StopTransactionRequest) },
		func() any { return new(ocpp16.StopTransactionResponse) })
	reg(string(ocpp16.ActionMeterValues),
		func() any { return new(ocpp16.MeterValuesRequest) },
		func() any { return new(ocpp16.MeterValuesResponse) })
	reg(string(ocpp16.ActionDataTransfer),
		func() any { return new(ocpp16.DataTransferRequest) },
		func() any { return new(ocpp16.DataTransferResponse) })
	reg(string(ocpp16.ActionReset),
		func() any { return new(ocpp16.ResetRequest) },
		func() any { return new(ocpp16.ResetResponse) })
	reg(string(ocpp16.ActionChangeAvailability),
		func() any { return new(ocpp16.ChangeAvailabilityRequest) },
		func() any { return new(ocpp16.ChangeAvailabilityResponse) })
	reg(string(ocpp16.ActionGetConfiguration),
		func() any { return new(ocpp16.GetConfigurationRequest) },
		func() any { return new(ocpp16.GetConfigurationResponse) })
	reg(string(ocpp16.ActionChangeConfiguration),
		func() any { return new(ocpp16.ChangeConfigurationRequest) },
		func() any { return new(ocpp16.ChangeConfigurationResponse) })
	reg(string(ocpp16.ActionClearCache),
		func() any { return new(ocpp16.ClearCacheRequest) },
		func() any { return new(ocpp16.ClearCacheResponse) })
	reg(string(ocpp16.ActionUnlockConnector),
		func() any { return new(ocpp16.UnlockConnectorRequest) },
		func() any { return new(ocpp16.UnlockConnectorResponse) })
	reg(string(ocpp16.ActionRemoteStartTransaction),
		func() any { return new(ocpp16.RemoteStartTransactionRequest) },
		func() any { return new(ocpp16.RemoteStartTransactionResponse) })
	reg(string(ocpp16.ActionRemoteStopTransaction),
		func() any { return new(ocpp16.RemoteStopTransactionRequest) },
		func() any { return new(ocpp16.RemoteStopTransactionResponse) })

	reg(string(ocpp16.ActionSetChargingProfile),
		func() any { return new(ocpp16.SetChargingProfileRequest) },
		func() any { return new(ocpp16.SetChargingProfileResponse) })
	reg(string(ocpp16.ActionClearChargingProfile),
		func() any { return new(ocpp16.ClearChargingProfileRequest) },
		func() any { return new(ocpp16.ClearChargingProfileResponse) })
	reg(string(ocpp16.ActionGetCompositeSchedule),
		func() any { return new(ocpp16.GetCompositeScheduleRequest) },
		func() any { return new(ocpp16.GetCompositeScheduleResponse) })
	reg(string(ocpp16.ActionTriggerMessage),
		func() any { return new(ocpp16.TriggerMessageRequest) },
		func() any { return new(ocpp16.TriggerMessageResponse) })
	reg(string(ocpp16.ActionReserveNow),
		func() any { return new(ocpp16.ReserveNowRequest) },
		func() any { return new(ocpp16.ReserveNowResponse) })
	reg(string(ocpp16.ActionCancelReservation),
		func() any { return new(ocpp16.CancelReservationRequest) },
		func() any { return new(ocpp16.CancelReservationResponse) })
	reg(string(ocpp16.ActionSendLocalList),
		func() any { return new(ocpp16.SendLocalListRequest) },
		func() any { return new(ocpp16.SendLocalListResponse) })
	reg(string(ocpp16.ActionGetLocalListVersion),
		func() any { return new(ocpp16.GetLocalListVersionRequest) },
		func() any { return new(ocpp16.GetLocalListVersionResponse) })

	reg(string(ocpp16.ActionSecurityEventNotification),
		func() any { return new(ocpp16.SecurityEventNotificationRequest) },
		func() any { return new(ocpp16.SecurityEventNotificationResponse) })
	reg(string(ocpp16.ActionSignCertificate),
		func() any { return new(ocpp16.SignCertificateRequest) },
		func() any { return new(ocpp16.SignCertificateResponse) })
	reg(string(ocpp16.ActionCertificateSigned),
		func() any { return new(ocpp16.CertificateSignedRequest) },
		func() any { return new(ocpp16.CertificateSignedResponse) })
	reg(string(ocpp16.ActionGetInstalledCertificateIds),
		func() any { return new(ocpp16.GetInstalledCertificateIdsRequest) },
		func() any { return new(ocpp16.GetInstalledCertificateIdsResponse) })
	reg(string(ocpp16.ActionDeleteCertificate),
		func() any { return new(ocpp16.DeleteCertificateRequest) },
		func() any { return new(ocpp16.DeleteCertificateResponse) })
	reg(string(ocpp16.ActionInstallCertificate),
		func() any { return new(ocpp16.InstallCertificateRequest) },
		func() any { return new(ocpp16.InstallCertificateResponse) })

	reg(string(ocpp16.ActionGetDiagnostics),
		func() any { return new(ocpp16.GetDiagnosticsRequest) },
		func() any { return new(ocpp16.GetDiagnosticsResponse) })
	reg(string(ocpp16.ActionUpdateFirmware),
		func() any { return new(ocpp16.UpdateFirmwareRequest) },
		func() any { return new(ocpp16.UpdateFirmwareResponse) })
}
