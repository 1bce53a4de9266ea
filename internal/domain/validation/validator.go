// Package validation wraps go-playground/validator/v10 with the
// OCPP-specific struct tags and error shape the rest of this runtime
// expects: a flat ValidationErrors slice instead of the library's
// FieldError interface.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator validates OCPP request/response structs and raw frame fields.
type Validator struct {
	validate *validator.Validate
}

// ValidationError describes one failed field.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a non-empty collection of ValidationError.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

func NewValidator() *Validator {
	validate := validator.New()
	registerCustomValidations(validate)
	return &Validator{validate: validate}
}

// ValidateStruct runs struct-tag validation and flattens failures into
// ValidationErrors.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors ValidationErrors
	if validatorErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range validatorErrors {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Value:   fmt.Sprintf("%v", fe.Value()),
				Message: getErrorMessage(fe),
			})
		}
	}
	return validationErrors
}

func (v *Validator) ValidateJSON(data []byte) error {
	var temp interface{}
	return json.Unmarshal(data, &temp)
}

// ValidateOCPPMessage validates the outer frame fields (type tag,
// unique_id, action) before the payload itself is deserialized.
func (v *Validator) ValidateOCPPMessage(messageType int, messageID string, action string, payload interface{}) error {
	if messageType < 2 || messageType > 4 {
		return ValidationError{
			Field: "messageType", Tag: "range", Value: strconv.Itoa(messageType),
			Message: "Message type must be 2 (Call), 3 (CallResult), or 4 (CallError)",
		}
	}

	if messageID == "" {
		return ValidationError{Field: "messageId", Tag: "required", Message: "Message ID is required"}
	}
	if len(messageID) > 36 {
		return ValidationError{Field: "messageId", Tag: "max", Value: messageID, Message: "Message ID must not exceed 36 characters"}
	}

	if messageType == 2 {
		if action == "" {
			return ValidationError{Field: "action", Tag: "required", Message: "Action is required for Call messages"}
		}
		if !isValidAction(action) {
			return ValidationError{Field: "action", Tag: "invalid", Value: action, Message: "Invalid OCPP action"}
		}
	}

	if payload != nil {
		return v.ValidateStruct(payload)
	}
	return nil
}

func registerCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("ocpp_datetime", validateOCPPDateTime)
	validate.RegisterValidation("ocpp_id_token", validateOCPPIdToken)
	validate.RegisterValidation("ocpp_connector_id", validateOCPPConnectorId)
	validate.RegisterValidation("ocpp_meter_value", validateOCPPMeterValue)
	validate.RegisterValidation("ocpp_status", validateOCPPStatus)
}

func validateOCPPDateTime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // required handles emptiness separately
	}
	_, err := time.Parse(time.RFC3339, value)
	return err == nil
}

func validateOCPPIdToken(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if len(value) > 20 {
		return false
	}
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9]+$`, value)
	return matched
}

func validateOCPPConnectorId(fl validator.FieldLevel) bool {
	return fl.Field().Int() >= 0
}

func validateOCPPMeterValue(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func validateOCPPStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	validStatuses := map[string]bool{
		"Available": true, "Preparing": true, "Charging": true,
		"SuspendedEVSE": true, "SuspendedEV": true, "Finishing": true,
		"Reserved": true, "Unavailable": true, "Faulted": true,
	}
	return validStatuses[value]
}

// isValidAction lists every Action this runtime's dispatcher may
// receive across OCPP 1.6 and 2.0.1, not just the original Core
// Profile subset.
func isValidAction(action string) bool {
	validActions := map[string]bool{
		// 1.6 Core Profile
		"Authorize": true, "BootNotification": true, "ChangeAvailability": true,
		"ChangeConfiguration": true, "ClearCache": true, "DataTransfer": true,
		"GetConfiguration": true, "Heartbeat": true, "MeterValues": true,
		"RemoteStartTransaction": true, "RemoteStopTransaction": true, "Reset": true,
		"StartTransaction": true, "StatusNotification": true, "StopTransaction": true,
		"UnlockConnector": true,

		// 1.6 Firmware Management Profile
		"GetDiagnostics": true, "DiagnosticsStatusNotification": true,
		"FirmwareStatusNotification": true, "UpdateFirmware": true,

		// 1.6 Local Auth List Management Profile
		"GetLocalListVersion": true, "SendLocalList": true,

		// 1.6 Reservation Profile
		"CancelReservation": true, "ReserveNow": true,

		// 1.6 Smart Charging Profile
		"ClearChargingProfile": true, "GetCompositeSchedule": true, "SetChargingProfile": true,

		// 1.6 Remote Trigger Profile
		"TriggerMessage": true,

		// 1.6 Security extensions
		"SecurityEventNotification": true, "SignCertificate": true, "CertificateSigned": true,
		"GetInstalledCertificateIds": true, "DeleteCertificate": true, "InstallCertificate": true,
		"Get15118EVCertificate": true, "GetCertificateStatus": true,

		// 2.0.1
		"TransactionEvent": true,
	}
	return validActions[action]
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must not exceed %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email", fe.Field())
	case "url":
		return fmt.Sprintf("Field '%s' must be a valid URL", fe.Field())
	case "ocpp_datetime":
		return fmt.Sprintf("Field '%s' must be a valid RFC3339 datetime", fe.Field())
	case "ocpp_id_token":
		return fmt.Sprintf("Field '%s' must be a valid ID token (max 20 alphanumeric characters)", fe.Field())
	case "ocpp_connector_id":
		return fmt.Sprintf("Field '%s' must be a valid connector ID (>= 0)", fe.Field())
	case "ocpp_meter_value":
		return fmt.Sprintf("Field '%s' must be a valid numeric meter value", fe.Field())
	case "ocpp_status":
		return fmt.Sprintf("Field '%s' must be a valid OCPP status", fe.Field())
	default:
		return fmt.Sprintf("Field '%s' failed validation for tag '%s'", fe.Field(), fe.Tag())
	}
}

func (v *Validator) ValidateMessageSize(data []byte, maxSize int) error {
	if len(data) > maxSize {
		return ValidationError{
			Field: "message", Tag: "max_size", Value: fmt.Sprintf("%d bytes", len(data)),
			Message: fmt.Sprintf("Message size %d bytes exceeds maximum allowed size %d bytes", len(data), maxSize),
		}
	}
	return nil
}

func (v *Validator) ValidateChargePointID(chargePointID string) error {
	if chargePointID == "" {
		return ValidationError{Field: "chargePointId", Tag: "required", Message: "Charge point ID is required"}
	}
	if len(chargePointID) > 20 {
		return ValidationError{Field: "chargePointId", Tag: "max", Value: chargePointID, Message: "Charge point ID must not exceed 20 characters"}
	}
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9\-]+$`, chargePointID)
	if !matched {
		return ValidationError{
			Field: "chargePointId", Tag: "format", Value: chargePointID,
			Message: "Charge point ID can only contain alphanumeric characters and hyphens",
		}
	}
	return nil
}

func (v *Validator) ValidateProtocolVersion(version string) error {
	validVersions := map[string]bool{"ocpp1.6": true, "ocpp2.0": true, "ocpp2.0.1": true}
	if !validVersions[version] {
		return ValidationError{Field: "protocolVersion", Tag: "invalid", Value: version, Message: "Unsupported protocol version"}
	}
	return nil
}
