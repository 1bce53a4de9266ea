// Package ocpperr defines the standard OCPP-J CallError codes and the
// CallError value handlers return to the dispatcher.
package ocpperr

import (
	"errors"
	"fmt"
)

// Code is one of the ten standard OCPP-J error codes.
type Code string

const (
	NotImplemented              Code = "NotImplemented"
	NotSupported                Code = "NotSupported"
	InternalError                Code = "InternalError"
	ProtocolError               Code = "ProtocolError"
	SecurityError                Code = "SecurityError"
	FormationViolation           Code = "FormationViolation"
	PropertyConstraintViolation  Code = "PropertyConstraintViolation"
	OccurrenceConstraintViolation Code = "OccurrenceConstraintViolation"
	TypeConstraintViolation      Code = "TypeConstraintViolation"
	GenericError                 Code = "GenericError"
)

// CallError is the payload of an OCPP-J CallError frame
// ([4, unique_id, error_code, error_description, error_details]).
type CallError struct {
	Code        Code           `json:"-"`
	Description string         `json:"-"`
	Details     map[string]any `json:"-"`
}

// Error satisfies the error interface so handlers can return it directly.
func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// New builds a CallError with the given code and description.
func New(code Code, description string) *CallError {
	return &CallError{Code: code, Description: description, Details: map[string]any{}}
}

// Newf builds a CallError with a formatted description.
func Newf(code Code, format string, args ...any) *CallError {
	return New(code, fmt.Sprintf(format, args...))
}

// WithDetails attaches structured error details and returns the receiver.
func (e *CallError) WithDetails(details map[string]any) *CallError {
	e.Details = details
	return e
}

// Internal is shorthand for New(InternalError, description).
func Internal(description string) *CallError { return New(InternalError, description) }

// AsCallError unwraps err into a *CallError if it is (or wraps) one,
// otherwise wraps it as an InternalError.
func AsCallError(err error) *CallError {
	if err == nil {
		return nil
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return ce
	}
	return Internal(err.Error())
}
