package ocpp16

// Message is the generic envelope shared by the three OCPP-J frame kinds.
type Message struct {
	MessageTypeID MessageType `json:"messageTypeId"`
	MessageID     string      `json:"messageId"`
	Action        Action      `json:"action,omitempty"`
	Payload       interface{} `json:"payload,omitempty"`
}

// CallMessage is an outbound or inbound request frame.
type CallMessage struct {
	MessageTypeID MessageType `json:"messageTypeId"`
	MessageID     string      `json:"messageId"`
	Action        Action      `json:"action"`
	Payload       interface{} `json:"payload"`
}

// CallResultMessage is a successful response frame.
type CallResultMessage struct {
	MessageTypeID MessageType `json:"messageTypeId"`
	MessageID     string      `json:"messageId"`
	Payload       interface{} `json:"payload"`
}

// CallErrorMessage is a failed response frame.
type CallErrorMessage struct {
	MessageTypeID    MessageType `json:"messageTypeId"`
	MessageID        string      `json:"messageId"`
	ErrorCode        string      `json:"errorCode"`
	ErrorDescription string      `json:"errorDescription"`
	ErrorDetails     interface{} `json:"errorDetails,omitempty"`
}

// BootNotificationRequest is sent once at startup and after any reconnect
// following an unrecognized Central System.
type BootNotificationRequest struct {
	ChargePointVendor       string  `json:"chargePointVendor" validate:"required,max=20"`
	ChargePointModel        string  `json:"chargePointModel" validate:"required,max=20"`
	ChargePointSerialNumber *string `json:"chargePointSerialNumber,omitempty" validate:"omitempty,max=25"`
	ChargeBoxSerialNumber   *string `json:"chargeBoxSerialNumber,omitempty" validate:"omitempty,max=25"`
	FirmwareVersion         *string `json:"firmwareVersion,omitempty" validate:"omitempty,max=50"`
	Iccid                   *string `json:"iccid,omitempty" validate:"omitempty,max=20"`
	Imsi                    *string `json:"imsi,omitempty" validate:"omitempty,max=20"`
	MeterType               *string `json:"meterType,omitempty" validate:"omitempty,max=25"`
	MeterSerialNumber       *string `json:"meterSerialNumber,omitempty" validate:"omitempty,max=25"`
}

type BootNotificationResponse struct {
	Status      RegistrationStatus `json:"status" validate:"required"`
	CurrentTime DateTime           `json:"currentTime" validate:"required"`
	Interval    int                `json:"interval" validate:"required,min=0"`
}

type HeartbeatRequest struct{}

type HeartbeatResponse struct {
	CurrentTime DateTime `json:"currentTime" validate:"required"`
}

// StatusNotificationRequest reports a connector's current operative status.
type StatusNotificationRequest struct {
	ConnectorId     int                  `json:"connectorId" validate:"required,min=0"`
	ErrorCode       ChargePointErrorCode `json:"errorCode" validate:"required"`
	Info            *string              `json:"info,omitempty" validate:"omitempty,max=50"`
	Status          ChargePointStatus    `json:"status" validate:"required"`
	Timestamp       *DateTime            `json:"timestamp,omitempty"`
	VendorId        *string              `json:"vendorId,omitempty" validate:"omitempty,max=255"`
	VendorErrorCode *string              `json:"vendorErrorCode,omitempty" validate:"omitempty,max=50"`
}

type StatusNotificationResponse struct{}

type AuthorizeRequest struct {
	IdTag string `json:"idTag" validate:"required,max=20"`
}

type AuthorizeResponse struct {
	IdTagInfo IdTagInfo `json:"idTagInfo" validate:"required"`
}

type StartTransactionRequest struct {
	ConnectorId   int      `json:"connectorId" validate:"required,min=1"`
	IdTag         string   `json:"idTag" validate:"required,max=20"`
	MeterStart    int      `json:"meterStart" validate:"required,min=0"`
	ReservationId *int     `json:"reservationId,omitempty"`
	Timestamp     DateTime `json:"timestamp" validate:"required"`
}

type StartTransactionResponse struct {
	IdTagInfo     IdTagInfo `json:"idTagInfo" validate:"required"`
	TransactionId int       `json:"transactionId" validate:"required"`
}

type StopTransactionRequest struct {
	IdTag           *string      `json:"idTag,omitempty" validate:"omitempty,max=20"`
	MeterStop       int          `json:"meterStop" validate:"required,min=0"`
	Timestamp       DateTime     `json:"timestamp" validate:"required"`
	TransactionId   int          `json:"transactionId" validate:"required"`
	Reason          *Reason      `json:"reason,omitempty"`
	TransactionData []MeterValue `json:"transactionData,omitempty"`
}

type StopTransactionResponse struct {
	IdTagInfo *IdTagInfo `json:"idTagInfo,omitempty"`
}

type MeterValuesRequest struct {
	ConnectorId   int          `json:"connectorId" validate:"required,min=0"`
	TransactionId *int         `json:"transactionId,omitempty"`
	MeterValue    []MeterValue `json:"meterValue" validate:"required,min=1"`
}

type MeterValuesResponse struct{}

// DataTransferRequest carries vendor-specific payloads, including the
// ISO 15118 Plug-and-Charge extensions under VendorIDISO15118PnC.
type DataTransferRequest struct {
	VendorId  string      `json:"vendorId" validate:"required,max=255"`
	MessageId *string     `json:"messageId,omitempty" validate:"omitempty,max=50"`
	Data      interface{} `json:"data,omitempty"`
}

type DataTransferResponse struct {
	Status DataTransferStatus `json:"status" validate:"required"`
	Data   interface{}        `json:"data,omitempty"`
}

type DataTransferStatus string

const (
	DataTransferStatusAccepted         DataTransferStatus = "Accepted"
	DataTransferStatusRejected         DataTransferStatus = "Rejected"
	DataTransferStatusUnknownMessageId DataTransferStatus = "UnknownMessageId"
	DataTransferStatusUnknownVendorId  DataTransferStatus = "UnknownVendorId"
)

type ResetRequest struct {
	Type ResetType `json:"type" validate:"required"`
}

type ResetResponse struct {
	Status ResetStatus `json:"status" validate:"required"`
}

type ResetStatus string

const (
	ResetStatusAccepted ResetStatus = "Accepted"
	ResetStatusRejected ResetStatus = "Rejected"
)

type ChangeAvailabilityRequest struct {
	ConnectorId int              `json:"connectorId" validate:"required,min=0"`
	Type        AvailabilityType `json:"type" validate:"required"`
}

type ChangeAvailabilityResponse struct {
	Status AvailabilityStatus `json:"status" validate:"required"`
}

type GetConfigurationRequest struct {
	Key []string `json:"key,omitempty"`
}

type GetConfigurationResponse struct {
	ConfigurationKey []KeyValue `json:"configurationKey,omitempty"`
	UnknownKey       []string   `json:"unknownKey,omitempty"`
}

type ChangeConfigurationRequest struct {
	Key   string `json:"key" validate:"required,max=50"`
	Value string `json:"value" validate:"required,max=500"`
}

type ChangeConfigurationResponse struct {
	Status ConfigurationStatus `json:"status" validate:"required"`
}

type ClearCacheRequest struct{}

type ClearCacheResponse struct {
	Status ClearCacheStatus `json:"status" validate:"required"`
}

type UnlockConnectorRequest struct {
	ConnectorId int `json:"connectorId" validate:"required,min=1"`
}

type UnlockConnectorResponse struct {
	Status UnlockStatus `json:"status" validate:"required"`
}

type RemoteStartTransactionRequest struct {
	ConnectorId     *int             `json:"connectorId,omitempty" validate:"omitempty,min=1"`
	IdTag           string           `json:"idTag" validate:"required,max=20"`
	ChargingProfile *ChargingProfile `json:"chargingProfile,omitempty"`
}

type RemoteStartTransactionResponse struct {
	Status RemoteStartStopStatus `json:"status" validate:"required"`
}

type RemoteStopTransactionRequest struct {
	TransactionId int `json:"transactionId" validate:"required"`
}

type RemoteStopTransactionResponse struct {
	Status RemoteStartStopStatus `json:"status" validate:"required"`
}

// ChargingProfile describes one entry of the stacked profile model: a
// ChargePointMaxProfile, TxDefaultProfile, or TxProfile at a given stack
// level, carrying a single ChargingSchedule.
type ChargingProfile struct {
	ChargingProfileId      int                    `json:"chargingProfileId" validate:"required"`
	TransactionId          *int                   `json:"transactionId,omitempty"`
	StackLevel             int                    `json:"stackLevel" validate:"required,min=0"`
	ChargingProfilePurpose ChargingProfilePurpose `json:"chargingProfilePurpose" validate:"required"`
	ChargingProfileKind    ChargingProfileKind    `json:"chargingProfileKind" validate:"required"`
	RecurrencyKind         *RecurrencyKind        `json:"recurrencyKind,omitempty"`
	ValidFrom              *DateTime              `json:"validFrom,omitempty"`
	ValidTo                *DateTime              `json:"validTo,omitempty"`
	ChargingSchedule       ChargingSchedule       `json:"chargingSchedule" validate:"required"`
}

type ChargingProfilePurpose string

const (
	ChargingProfilePurposeChargePointMaxProfile ChargingProfilePurpose = "ChargePointMaxProfile"
	ChargingProfilePurposeTxDefaultProfile      ChargingProfilePurpose = "TxDefaultProfile"
	ChargingProfilePurposeTxProfile             ChargingProfilePurpose = "TxProfile"
)

type ChargingProfileKind string

const (
	ChargingProfileKindAbsolute  ChargingProfileKind = "Absolute"
	ChargingProfileKindRecurring ChargingProfileKind = "Recurring"
	ChargingProfileKindRelative  ChargingProfileKind = "Relative"
)

type RecurrencyKind string

const (
	RecurrencyKindDaily  RecurrencyKind = "Daily"
	RecurrencyKindWeekly RecurrencyKind = "Weekly"
)

type ChargingSchedule struct {
	Duration               *int                     `json:"duration,omitempty" validate:"omitempty,min=0"`
	StartSchedule          *DateTime                `json:"startSchedule,omitempty"`
	ChargingRateUnit       ChargingRateUnit         `json:"chargingRateUnit" validate:"required"`
	ChargingSchedulePeriod []ChargingSchedulePeriod `json:"chargingSchedulePeriod" validate:"required,min=1"`
	MinChargingRate        *float64                 `json:"minChargingRate,omitempty"`
}

type ChargingRateUnit string

const (
	ChargingRateUnitW ChargingRateUnit = "W"
	ChargingRateUnitA ChargingRateUnit = "A"
)

type ChargingSchedulePeriod struct {
	StartPeriod  int     `json:"startPeriod" validate:"required,min=0"`
	Limit        float64 `json:"limit" validate:"required"`
	NumberPhases *int    `json:"numberPhases,omitempty" validate:"omitempty,min=1,max=3"`
}

// SetChargingProfileRequest installs one profile into the connector's
// stack (or the Charge Point's overall-max stack when ConnectorId is 0).
type SetChargingProfileRequest struct {
	ConnectorId        int             `json:"connectorId" validate:"required,min=0"`
	CsChargingProfiles ChargingProfile `json:"csChargingProfiles" validate:"required"`
}

type SetChargingProfileResponse struct {
	Status ChargingProfileStatus `json:"status" validate:"required"`
}

type ChargingProfileStatus string

const (
	ChargingProfileStatusAccepted     ChargingProfileStatus = "Accepted"
	ChargingProfileStatusRejected     ChargingProfileStatus = "Rejected"
	ChargingProfileStatusNotSupported ChargingProfileStatus = "NotSupported"
)

// ClearChargingProfileRequest's fields are all optional; an empty request
// clears every profile installed on the Charge Point.
type ClearChargingProfileRequest struct {
	Id                     *int                    `json:"id,omitempty"`
	ConnectorId            *int                    `json:"connectorId,omitempty"`
	ChargingProfilePurpose *ChargingProfilePurpose `json:"chargingProfilePurpose,omitempty"`
	StackLevel             *int                    `json:"stackLevel,omitempty"`
}

type ClearChargingProfileResponse struct {
	Status ClearChargingProfileStatus `json:"status" validate:"required"`
}

type ClearChargingProfileStatus string

const (
	ClearChargingProfileStatusAccepted ClearChargingProfileStatus = "Accepted"
	ClearChargingProfileStatusUnknown  ClearChargingProfileStatus = "Unknown"
)

// GetCompositeScheduleRequest asks for the pointwise-minimum schedule
// across the connector's three profile stacks over the requested window.
type GetCompositeScheduleRequest struct {
	ConnectorId      int               `json:"connectorId" validate:"required,min=0"`
	Duration         int               `json:"duration" validate:"required,min=0"`
	ChargingRateUnit *ChargingRateUnit `json:"chargingRateUnit,omitempty"`
}

type GetCompositeScheduleResponse struct {
	Status           GetCompositeScheduleStatus `json:"status" validate:"required"`
	ConnectorId      *int                       `json:"connectorId,omitempty"`
	ScheduleStart    *DateTime                  `json:"scheduleStart,omitempty"`
	ChargingSchedule *ChargingSchedule          `json:"chargingSchedule,omitempty"`
}

type GetCompositeScheduleStatus string

const (
	GetCompositeScheduleStatusAccepted GetCompositeScheduleStatus = "Accepted"
	GetCompositeScheduleStatusRejected GetCompositeScheduleStatus = "Rejected"
)

// TriggerMessageRequest asks the Charge Point to re-send one of the
// listed message kinds out of its normal schedule.
type TriggerMessageRequest struct {
	RequestedMessage MessageTrigger `json:"requestedMessage" validate:"required"`
	ConnectorId      *int           `json:"connectorId,omitempty" validate:"omitempty,min=1"`
}

type TriggerMessageResponse struct {
	Status TriggerMessageStatus `json:"status" validate:"required"`
}

type MessageTrigger string

const (
	MessageTriggerBootNotification               MessageTrigger = "BootNotification"
	MessageTriggerDiagnosticsStatusNotification  MessageTrigger = "DiagnosticsStatusNotification"
	MessageTriggerFirmwareStatusNotification     MessageTrigger = "FirmwareStatusNotification"
	MessageTriggerHeartbeat                      MessageTrigger = "Heartbeat"
	MessageTriggerMeterValues                    MessageTrigger = "MeterValues"
	MessageTriggerStatusNotification             MessageTrigger = "StatusNotification"
)

type TriggerMessageStatus string

const (
	TriggerMessageStatusAccepted      TriggerMessageStatus = "Accepted"
	TriggerMessageStatusRejected      TriggerMessageStatus = "Rejected"
	TriggerMessageStatusNotImplemented TriggerMessageStatus = "NotImplemented"
)

// ReserveNowRequest earmarks a connector for a single IdTag until ExpiryDate.
type ReserveNowRequest struct {
	ConnectorId   int      `json:"connectorId" validate:"required,min=0"`
	ExpiryDate    DateTime `json:"expiryDate" validate:"required"`
	IdTag         string   `json:"idTag" validate:"required,max=20"`
	ParentIdTag   *string  `json:"parentIdTag,omitempty" validate:"omitempty,max=20"`
	ReservationId int      `json:"reservationId" validate:"required"`
}

type ReserveNowResponse struct {
	Status ReservationStatus `json:"status" validate:"required"`
}

type ReservationStatus string

const (
	ReservationStatusAccepted    ReservationStatus = "Accepted"
	ReservationStatusFaulted     ReservationStatus = "Faulted"
	ReservationStatusOccupied    ReservationStatus = "Occupied"
	ReservationStatusRejected    ReservationStatus = "Rejected"
	ReservationStatusUnavailable ReservationStatus = "Unavailable"
)

type CancelReservationRequest struct {
	ReservationId int `json:"reservationId" validate:"required"`
}

type CancelReservationResponse struct {
	Status CancelReservationStatus `json:"status" validate:"required"`
}

type CancelReservationStatus string

const (
	CancelReservationStatusAccepted CancelReservationStatus = "Accepted"
	CancelReservationStatusRejected CancelReservationStatus = "Rejected"
)

// SendLocalListRequest pushes a differential or full replacement of the
// Authorization Local List; UpdateType and ListVersion gate the update.
type SendLocalListRequest struct {
	ListVersion             int                           `json:"listVersion" validate:"required"`
	LocalAuthorizationList  []LocalAuthorizationListEntry `json:"localAuthorizationList,omitempty"`
	UpdateType              LocalListUpdateType           `json:"updateType" validate:"required"`
}

type SendLocalListResponse struct {
	Status UpdateStatus `json:"status" validate:"required"`
}

type LocalAuthorizationListEntry struct {
	IdTag     string     `json:"idTag" validate:"required,max=20"`
	IdTagInfo *IdTagInfo `json:"idTagInfo,omitempty"`
}

type LocalListUpdateType string

const (
	LocalListUpdateTypeDifferential LocalListUpdateType = "Differential"
	LocalListUpdateTypeFull         LocalListUpdateType = "Full"
)

type UpdateStatus string

const (
	UpdateStatusAccepted        UpdateStatus = "Accepted"
	UpdateStatusFailed          UpdateStatus = "Failed"
	UpdateStatusNotSupported    UpdateStatus = "NotSupported"
	UpdateStatusVersionMismatch UpdateStatus = "VersionMismatch"
)

type GetLocalListVersionRequest struct{}

type GetLocalListVersionResponse struct {
	ListVersion int `json:"listVersion" validate:"required"`
}

// SecurityEventNotificationRequest reports a security-relevant occurrence;
// the Charge Point decides criticality using SecurityEventCriticality.
type SecurityEventNotificationRequest struct {
	Type      SecurityEventType `json:"type" validate:"required"`
	Timestamp DateTime          `json:"timestamp" validate:"required"`
	TechInfo  *string           `json:"techInfo,omitempty" validate:"omitempty,max=255"`
}

type SecurityEventNotificationResponse struct{}

// SignCertificateRequest asks the Central System to sign a CSR generated
// on the Charge Point; the device never uploads its private key.
type SignCertificateRequest struct {
	Csr string `json:"csr" validate:"required,max=5500"`
}

type SignCertificateResponse struct {
	Status GenericStatus `json:"status" validate:"required"`
}

type GenericStatus string

const (
	GenericStatusAccepted GenericStatus = "Accepted"
	GenericStatusRejected GenericStatus = "Rejected"
)

// CertificateSignedRequest delivers the signed certificate chain back to
// the Charge Point in response to a prior SignCertificate call.
type CertificateSignedRequest struct {
	CertificateChain string `json:"certificateChain" validate:"required,max=10000"`
}

type CertificateSignedResponse struct {
	Status CertificateSignedStatus `json:"status" validate:"required"`
}

type CertificateSignedStatus string

const (
	CertificateSignedStatusAccepted CertificateSignedStatus = "Accepted"
	CertificateSignedStatusRejected CertificateSignedStatus = "Rejected"
)

type CertificateUse string

const (
	CertificateUseCentralSystemRootCertificate CertificateUse = "CentralSystemRootCertificate"
	CertificateUseManufacturerRootCertificate  CertificateUse = "ManufacturerRootCertificate"
)

type GetInstalledCertificateIdsRequest struct {
	CertificateType CertificateUse `json:"certificateType" validate:"required"`
}

type GetInstalledCertificateIdsResponse struct {
	Status                   GetInstalledCertificateStatus `json:"status" validate:"required"`
	CertificateHashDataChain []CertificateHashData          `json:"certificateHashDataChain,omitempty"`
}

type GetInstalledCertificateStatus string

const (
	GetInstalledCertificateStatusAccepted GetInstalledCertificateStatus = "Accepted"
	GetInstalledCertificateStatusNotFound GetInstalledCertificateStatus = "NotFound"
)

type CertificateHashData struct {
	HashAlgorithm  HashAlgorithm `json:"hashAlgorithm" validate:"required"`
	IssuerNameHash string        `json:"issuerNameHash" validate:"required,max=128"`
	IssuerKeyHash  string        `json:"issuerKeyHash" validate:"required,max=128"`
	SerialNumber   string        `json:"serialNumber" validate:"required,max=40"`
}

type HashAlgorithm string

const (
	HashAlgorithmSHA256 HashAlgorithm = "SHA256"
	HashAlgorithmSHA384 HashAlgorithm = "SHA384"
	HashAlgorithmSHA512 HashAlgorithm = "SHA512"
)

type DeleteCertificateRequest struct {
	CertificateHashData CertificateHashData `json:"certificateHashData" validate:"required"`
}

type DeleteCertificateResponse struct {
	Status DeleteCertificateStatus `json:"status" validate:"required"`
}

type DeleteCertificateStatus string

const (
	DeleteCertificateStatusAccepted DeleteCertificateStatus = "Accepted"
	DeleteCertificateStatusFailed   DeleteCertificateStatus = "Failed"
	DeleteCertificateStatusNotFound DeleteCertificateStatus = "NotFound"
)

type InstallCertificateRequest struct {
	CertificateType CertificateUse `json:"certificateType" validate:"required"`
	Certificate     string         `json:"certificate" validate:"required,max=5500"`
}

type InstallCertificateResponse struct {
	Status InstallCertificateStatus `json:"status" validate:"required"`
}

type InstallCertificateStatus string

const (
	InstallCertificateStatusAccepted InstallCertificateStatus = "Accepted"
	InstallCertificateStatusFailed   InstallCertificateStatus = "Failed"
	InstallCertificateStatusRejected InstallCertificateStatus = "Rejected"
)

// GetDiagnosticsRequest and UpdateFirmwareRequest are carried for protocol
// completeness; neither triggers a real file transfer in this runtime.
type GetDiagnosticsRequest struct {
	Location      string    `json:"location" validate:"required"`
	Retries       *int      `json:"retries,omitempty"`
	RetryInterval *int      `json:"retryInterval,omitempty"`
	StartTime     *DateTime `json:"startTime,omitempty"`
	StopTime      *DateTime `json:"stopTime,omitempty"`
}

type GetDiagnosticsResponse struct {
	FileName *string `json:"fileName,omitempty" validate:"omitempty,max=255"`
}

type UpdateFirmwareRequest struct {
	Location      string   `json:"location" validate:"required"`
	Retries       *int     `json:"retries,omitempty"`
	RetrieveDate  DateTime `json:"retrieveDate" validate:"required"`
	RetryInterval *int     `json:"retryInterval,omitempty"`
}

type UpdateFirmwareResponse struct{}
