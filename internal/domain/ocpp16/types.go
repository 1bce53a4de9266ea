package ocpp16

import (
	"time"
)

// MessageType tags an OCPP-J frame: 2=Call, 3=CallResult, 4=CallError.
type MessageType int

const (
	Call       MessageType = 2
	CallResult MessageType = 3
	CallError  MessageType = 4
)

// Action is a stable OCPP 1.6 message name.
type Action string

const (
	// Core Profile Actions
	ActionAuthorize              Action = "Authorize"
	ActionBootNotification       Action = "BootNotification"
	ActionChangeAvailability     Action = "ChangeAvailability"
	ActionChangeConfiguration    Action = "ChangeConfiguration"
	ActionClearCache             Action = "ClearCache"
	ActionDataTransfer           Action = "DataTransfer"
	ActionGetConfiguration       Action = "GetConfiguration"
	ActionHeartbeat              Action = "Heartbeat"
	ActionMeterValues            Action = "MeterValues"
	ActionRemoteStartTransaction Action = "RemoteStartTransaction"
	ActionRemoteStopTransaction  Action = "RemoteStopTransaction"
	ActionReset                  Action = "Reset"
	ActionStartTransaction       Action = "StartTransaction"
	ActionStatusNotification     Action = "StatusNotification"
	ActionStopTransaction        Action = "StopTransaction"
	ActionUnlockConnector        Action = "UnlockConnector"

	// Firmware Management Profile Actions
	ActionGetDiagnostics    Action = "GetDiagnostics"
	ActionDiagnosticsStatusNotification Action = "DiagnosticsStatusNotification"
	ActionFirmwareStatusNotification    Action = "FirmwareStatusNotification"
	ActionUpdateFirmware    Action = "UpdateFirmware"

	// Local Auth List Management Profile Actions
	ActionGetLocalListVersion Action = "GetLocalListVersion"
	ActionSendLocalList       Action = "SendLocalList"

	// Reservation Profile Actions
	ActionCancelReservation Action = "CancelReservation"
	ActionReserveNow        Action = "ReserveNow"

	// Smart Charging Profile Actions
	ActionClearChargingProfile Action = "ClearChargingProfile"
	ActionGetCompositeSchedule Action = "GetCompositeSchedule"
	ActionSetChargingProfile   Action = "SetChargingProfile"

	// Trigger Message Profile Actions
	ActionTriggerMessage Action = "TriggerMessage"

	// Security extensions (OCPP 1.6 Security Whitepaper)
	ActionSecurityEventNotification Action = "SecurityEventNotification"
	ActionSignCertificate           Action = "SignCertificate"
	ActionCertificateSigned         Action = "CertificateSigned"
	ActionGetInstalledCertificateIds Action = "GetInstalledCertificateIds"
	ActionDeleteCertificate         Action = "DeleteCertificate"
	ActionInstallCertificate        Action = "InstallCertificate"

	// DataTransfer vendor id used to carry ISO 15118 Plug-and-Charge
	// messages over plain OCPP 1.6 DataTransfer requests.
	VendorIDISO15118PnC = "org.openchargealliance.iso15118pnc"
)

// SecurityEventType names one of the fixed, standard security events;
// criticality is looked up via SecurityEventCriticality.
type SecurityEventType string

const (
	SecurityEventFirmwareUpdated                     SecurityEventType = "FirmwareUpdated"
	SecurityEventFailedToAuthenticateAtCentralSystem  SecurityEventType = "FailedToAuthenticateAtCentralSystem"
	SecurityEventCentralSystemFailedToAuthenticate    SecurityEventType = "CentralSystemFailedToAuthenticate"
	SecurityEventSettingSystemTime                    SecurityEventType = "SettingSystemTime"
	SecurityEventStartupOfTheDevice                   SecurityEventType = "StartupOfTheDevice"
	SecurityEventResetOrReboot                        SecurityEventType = "ResetOrReboot"
	SecurityEventSecurityLogWasCleared                SecurityEventType = "SecurityLogWasCleared"
	SecurityEventReconfigurationOfSecurityParameters  SecurityEventType = "ReconfigurationOfSecurityParameters"
	SecurityEventMemoryExhaustion                     SecurityEventType = "MemoryExhaustion"
	SecurityEventInvalidMessages                      SecurityEventType = "InvalidMessages"
	SecurityEventAttemptedReplayAttacks                SecurityEventType = "AttemptedReplayAttacks"
	SecurityEventTamperDetectionActivated              SecurityEventType = "TamperDetectionActivated"
	SecurityEventInvalidFirmwareSignature              SecurityEventType = "InvalidFirmwareSignature"
	SecurityEventInvalidFirmwareSigningCertificate     SecurityEventType = "InvalidFirmwareSigningCertificate"
	SecurityEventInvalidCentralSystemCertificate       SecurityEventType = "InvalidCentralSystemCertificate"
	SecurityEventInvalidChargePointCertificate         SecurityEventType = "InvalidChargePointCertificate"
	SecurityEventInvalidTLSVersion                     SecurityEventType = "InvalidTLSVersion"
	SecurityEventInvalidTLSCipherSuite                 SecurityEventType = "InvalidTLSCipherSuite"
)

// SecurityEventCriticality is the fixed criticality table from the
// glossary: true events are "critical" and must be surfaced via
// SecurityEventNotification even when bandwidth/logging is constrained.
var SecurityEventCriticality = map[SecurityEventType]bool{
	SecurityEventFirmwareUpdated:                    true,
	SecurityEventFailedToAuthenticateAtCentralSystem: false,
	SecurityEventCentralSystemFailedToAuthenticate:   false,
	SecurityEventSettingSystemTime:                   true,
	SecurityEventStartupOfTheDevice:                  true,
	SecurityEventResetOrReboot:                       true,
	SecurityEventSecurityLogWasCleared:               true,
	SecurityEventReconfigurationOfSecurityParameters: false,
	SecurityEventMemoryExhaustion:                    true,
	SecurityEventInvalidMessages:                     false,
	SecurityEventAttemptedReplayAttacks:              false,
	SecurityEventTamperDetectionActivated:            true,
	SecurityEventInvalidFirmwareSignature:            false,
	SecurityEventInvalidFirmwareSigningCertificate:   false,
	SecurityEventInvalidCentralSystemCertificate:     false,
	SecurityEventInvalidChargePointCertificate:       false,
	SecurityEventInvalidTLSVersion:                   false,
	SecurityEventInvalidTLSCipherSuite:                false,
}

// SecurityProfile is a closed sum type for the four OCPP security
// profiles; transitions may only ascend (see Charging-point registry).
type SecurityProfile int

const (
	SecurityProfileUnsecuredTransport SecurityProfile = 0
	SecurityProfileBasicAuth          SecurityProfile = 1
	SecurityProfileTLSBasicAuth       SecurityProfile = 2
	SecurityProfileTLSClientCert      SecurityProfile = 3
)

// Valid reports whether p is one of the four defined profiles.
func (p SecurityProfile) Valid() bool {
	return p >= SecurityProfileUnsecuredTransport && p <= SecurityProfileTLSClientCert
}

// CanTransitionTo enforces the ascend-only rule from the data model.
func (p SecurityProfile) CanTransitionTo(next SecurityProfile) bool {
	return next.Valid() && next >= p
}

// ChargePointStatus is a connector's reported status.
type ChargePointStatus string

const (
	ChargePointStatusAvailable     ChargePointStatus = "Available"
	ChargePointStatusPreparing     ChargePointStatus = "Preparing"
	ChargePointStatusCharging      ChargePointStatus = "Charging"
	ChargePointStatusSuspendedEVSE ChargePointStatus = "SuspendedEVSE"
	ChargePointStatusSuspendedEV   ChargePointStatus = "SuspendedEV"
	ChargePointStatusFinishing     ChargePointStatus = "Finishing"
	ChargePointStatusReserved      ChargePointStatus = "Reserved"
	ChargePointStatusUnavailable   ChargePointStatus = "Unavailable"
	ChargePointStatusFaulted       ChargePointStatus = "Faulted"
)

// ChargePointErrorCode accompanies a StatusNotification.
type ChargePointErrorCode string

const (
	ChargePointErrorCodeConnectorLockFailure         ChargePointErrorCode = "ConnectorLockFailure"
	ChargePointErrorCodeEVCommunicationError         ChargePointErrorCode = "EVCommunicationError"
	ChargePointErrorCodeGroundFailure                ChargePointErrorCode = "GroundFailure"
	ChargePointErrorCodeHighTemperature              ChargePointErrorCode = "HighTemperature"
	ChargePointErrorCodeInternalError                ChargePointErrorCode = "InternalError"
	ChargePointErrorCodeLocalListConflict            ChargePointErrorCode = "LocalListConflict"
	ChargePointErrorCodeNoError                      ChargePointErrorCode = "NoError"
	ChargePointErrorCodeOtherError                   ChargePointErrorCode = "OtherError"
	ChargePointErrorCodeOverCurrentFailure           ChargePointErrorCode = "OverCurrentFailure"
	ChargePointErrorCodeOverVoltage                  ChargePointErrorCode = "OverVoltage"
	ChargePointErrorCodePowerMeterFailure            ChargePointErrorCode = "PowerMeterFailure"
	ChargePointErrorCodePowerSwitchFailure           ChargePointErrorCode = "PowerSwitchFailure"
	ChargePointErrorCodeReaderFailure                ChargePointErrorCode = "ReaderFailure"
	ChargePointErrorCodeResetFailure                 ChargePointErrorCode = "ResetFailure"
	ChargePointErrorCodeUnderVoltage                 ChargePointErrorCode = "UnderVoltage"
	ChargePointErrorCodeWeakSignal                   ChargePointErrorCode = "WeakSignal"
)

// RegistrationStatus is the BootNotification response status.
type RegistrationStatus string

const (
	RegistrationStatusAccepted RegistrationStatus = "Accepted"
	RegistrationStatusPending  RegistrationStatus = "Pending"
	RegistrationStatusRejected RegistrationStatus = "Rejected"
)

// AuthorizationStatus is carried in IdTagInfo.
type AuthorizationStatus string

const (
	AuthorizationStatusAccepted     AuthorizationStatus = "Accepted"
	AuthorizationStatusBlocked      AuthorizationStatus = "Blocked"
	AuthorizationStatusExpired      AuthorizationStatus = "Expired"
	AuthorizationStatusInvalid      AuthorizationStatus = "Invalid"
	AuthorizationStatusConcurrentTx AuthorizationStatus = "ConcurrentTx"
)

// ResetType distinguishes Hard/Soft Reset requests.
type ResetType string

const (
	ResetTypeHard ResetType = "Hard"
	ResetTypeSoft ResetType = "Soft"
)

// AvailabilityType is the requested state in ChangeAvailability.
type AvailabilityType string

const (
	AvailabilityTypeInoperative AvailabilityType = "Inoperative"
	AvailabilityTypeOperative   AvailabilityType = "Operative"
)

// AvailabilityStatus is the ChangeAvailability response status.
type AvailabilityStatus string

const (
	AvailabilityStatusAccepted  AvailabilityStatus = "Accepted"
	AvailabilityStatusRejected  AvailabilityStatus = "Rejected"
	AvailabilityStatusScheduled AvailabilityStatus = "Scheduled"
)

// ConfigurationStatus is the ChangeConfiguration response status.
type ConfigurationStatus string

const (
	ConfigurationStatusAccepted       ConfigurationStatus = "Accepted"
	ConfigurationStatusRejected       ConfigurationStatus = "Rejected"
	ConfigurationStatusRebootRequired ConfigurationStatus = "RebootRequired"
	ConfigurationStatusNotSupported   ConfigurationStatus = "NotSupported"
)

// ClearCacheStatus is the ClearCache response status.
type ClearCacheStatus string

const (
	ClearCacheStatusAccepted ClearCacheStatus = "Accepted"
	ClearCacheStatusRejected ClearCacheStatus = "Rejected"
)

// UnlockStatus is the UnlockConnector response status.
type UnlockStatus string

const (
	UnlockStatusUnlocked         UnlockStatus = "Unlocked"
	UnlockStatusUnlockFailed     UnlockStatus = "UnlockFailed"
	UnlockStatusNotSupported     UnlockStatus = "NotSupported"
	UnlockStatusOngoingAuthorizedTransaction UnlockStatus = "OngoingAuthorizedTransaction"
)

// Reason is the StopTransaction reason.
type Reason string

const (
	ReasonEmergencyStop     Reason = "EmergencyStop"
	ReasonEVDisconnected    Reason = "EVDisconnected"
	ReasonHardReset         Reason = "HardReset"
	ReasonLocal             Reason = "Local"
	ReasonOther             Reason = "Other"
	ReasonPowerLoss         Reason = "PowerLoss"
	ReasonReboot            Reason = "Reboot"
	ReasonRemote            Reason = "Remote"
	ReasonSoftReset         Reason = "SoftReset"
	ReasonUnlockCommand     Reason = "UnlockCommand"
	ReasonDeAuthorized      Reason = "DeAuthorized"
)

// RemoteStartStopStatus answers RemoteStart/StopTransaction.
type RemoteStartStopStatus string

const (
	RemoteStartStopStatusAccepted RemoteStartStopStatus = "Accepted"
	RemoteStartStopStatusRejected RemoteStartStopStatus = "Rejected"
)

// DateTime marshals as RFC3339, the wire format OCPP uses everywhere.
type DateTime struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (dt DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + dt.Time.Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (dt *DateTime) UnmarshalJSON(data []byte) error {
	str := string(data)
	if str == "null" {
		return nil
	}
	str = str[1 : len(str)-1] // strip quotes
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	dt.Time = t
	return nil
}

// IdToken identifies a user/card presented for authorization.
type IdToken struct {
	IdToken string `json:"idToken" validate:"required,max=20"`
}

// IdTagInfo is the authorization decision attached to an id tag.
type IdTagInfo struct {
	ExpiryDate  *DateTime            `json:"expiryDate,omitempty"`
	ParentIdTag *string              `json:"parentIdTag,omitempty" validate:"omitempty,max=20"`
	Status      AuthorizationStatus  `json:"status" validate:"required"`
}

// KeyValue is one configuration entry (GetConfiguration response).
type KeyValue struct {
	Key      string  `json:"key" validate:"required,max=50"`
	Readonly bool    `json:"readonly"`
	Value    *string `json:"value,omitempty" validate:"omitempty,max=500"`
}

// MeterValue is one timestamped group of sampled readings.
type MeterValue struct {
	Timestamp    DateTime      `json:"timestamp" validate:"required"`
	SampledValue []SampledValue `json:"sampledValue" validate:"required,min=1"`
}

// SampledValue is a single measurement within a MeterValue.
type SampledValue struct {
	Value     string     `json:"value" validate:"required"`
	Context   *ReadingContext `json:"context,omitempty"`
	Format    *ValueFormat    `json:"format,omitempty"`
	Measurand *Measurand      `json:"measurand,omitempty"`
	Phase     *Phase          `json:"phase,omitempty"`
	Location  *Location       `json:"location,omitempty"`
	Unit      *UnitOfMeasure  `json:"unit,omitempty"`
}

// ReadingContext describes why a sample was taken.
type ReadingContext string

const (
	ReadingContextInterruptionBegin ReadingContext = "Interruption.Begin"
	ReadingContextInterruptionEnd   ReadingContext = "Interruption.End"
	ReadingContextSampleClock       ReadingContext = "Sample.Clock"
	ReadingContextSamplePeriodic    ReadingContext = "Sample.Periodic"
	ReadingContextTransactionBegin  ReadingContext = "Transaction.Begin"
	ReadingContextTransactionEnd    ReadingContext = "Transaction.End"
	ReadingContextTrigger           ReadingContext = "Trigger"
	ReadingContextOther             ReadingContext = "Other"
)

// ValueFormat distinguishes raw vs. signed sample encoding.
type ValueFormat string

const (
	ValueFormatRaw       ValueFormat = "Raw"
	ValueFormatSignedData ValueFormat = "SignedData"
)

// Measurand names the physical quantity sampled.
type Measurand string

const (
	MeasurandCurrentExport                Measurand = "Current.Export"
	MeasurandCurrentImport                Measurand = "Current.Import"
	MeasurandCurrentOffered               Measurand = "Current.Offered"
	MeasurandEnergyActiveExportRegister   Measurand = "Energy.Active.Export.Register"
	MeasurandEnergyActiveImportRegister   Measurand = "Energy.Active.Import.Register"
	MeasurandEnergyReactiveExportRegister Measurand = "Energy.Reactive.Export.Register"
	MeasurandEnergyReactiveImportRegister Measurand = "Energy.Reactive.Import.Register"
	MeasurandEnergyActiveExportInterval   Measurand = "Energy.Active.Export.Interval"
	MeasurandEnergyActiveImportInterval   Measurand = "Energy.Active.Import.Interval"
	MeasurandEnergyReactiveExportInterval Measurand = "Energy.Reactive.Export.Interval"
	MeasurandEnergyReactiveImportInterval Measurand = "Energy.Reactive.Import.Interval"
	MeasurandFrequency                    Measurand = "Frequency"
	MeasurandPowerActiveExport            Measurand = "Power.Active.Export"
	MeasurandPowerActiveImport            Measurand = "Power.Active.Import"
	MeasurandPowerFactor                  Measurand = "Power.Factor"
	MeasurandPowerOffered                 Measurand = "Power.Offered"
	MeasurandPowerReactiveExport          Measurand = "Power.Reactive.Export"
	MeasurandPowerReactiveImport          Measurand = "Power.Reactive.Import"
	MeasurandRPM                          Measurand = "RPM"
	MeasurandSoC                          Measurand = "SoC"
	MeasurandTemperature                  Measurand = "Temperature"
	MeasurandVoltage                      Measurand = "Voltage"
)

// Phase identifies which electrical phase a sample belongs to.
type Phase string

const (
	PhaseL1   Phase = "L1"
	PhaseL2   Phase = "L2"
	PhaseL3   Phase = "L3"
	PhaseN    Phase = "N"
	PhaseL1N  Phase = "L1-N"
	PhaseL2N  Phase = "L2-N"
	PhaseL3N  Phase = "L3-N"
	PhaseL1L2 Phase = "L1-L2"
	PhaseL2L3 Phase = "L2-L3"
	PhaseL3L1 Phase = "L3-L1"
)

// Location names where in the charging circuit a sample was taken.
type Location string

const (
	LocationBody   Location = "Body"
	LocationCable  Location = "Cable"
	LocationEV     Location = "EV"
	LocationInlet  Location = "Inlet"
	LocationOutlet Location = "Outlet"
)

// UnitOfMeasure is the physical unit of a sampled value.
type UnitOfMeasure string

const (
	UnitOfMeasureWh       UnitOfMeasure = "Wh"
	UnitOfMeasureKWh      UnitOfMeasure = "kWh"
	UnitOfMeasureVarh     UnitOfMeasure = "varh"
	UnitOfMeasureKvarh    UnitOfMeasure = "kvarh"
	UnitOfMeasureW        UnitOfMeasure = "W"
	UnitOfMeasureKW       UnitOfMeasure = "kW"
	UnitOfMeasureVA       UnitOfMeasure = "VA"
	UnitOfMeasureKVA      UnitOfMeasure = "kVA"
	UnitOfMeasureVar      UnitOfMeasure = "var"
	UnitOfMeasureKvar     UnitOfMeasure = "kvar"
	UnitOfMeasureA        UnitOfMeasure = "A"
	UnitOfMeasureV        UnitOfMeasure = "V"
	UnitOfMeasureCelsius  UnitOfMeasure = "Celsius"
	UnitOfMeasureFahrenheit UnitOfMeasure = "Fahrenheit"
	UnitOfMeasureK        UnitOfMeasure = "K"
	UnitOfMeasurePercent  UnitOfMeasure = "Percent"
)
