// Package convert is the Action → typed-struct registry the dispatcher
// uses to move between a wire-level json.RawMessage and a concrete
// OCPP request/response pair.
//
// Generalized from a one-off switch statement per Action into a
// registration table any endpoint can look up by Action and protocol
// version.
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/ocpp-platform/ocpp-runtime/internal/domain/validation"
)

// Version distinguishes which OCPP message set an Action's converter
// belongs to, since 1.6 and 2.0.1 both define overlapping action names
// (e.g. DataTransfer) with different field shapes.
type Version string

const (
	V16  Version = "ocpp1.6"
	V201 Version = "ocpp2.0.1"
)

// Converter translates between raw JSON and a typed request/response
// pair for one Action.
type Converter struct {
	NewRequest  func() any
	NewResponse func() any
}

// Registry is a (Version, Action) -> Converter lookup table.
type Registry struct {
	converters map[Version]map[string]Converter
	validator  *validation.Validator
}

func NewRegistry(v *validation.Validator) *Registry {
	return &Registry{
		converters: make(map[Version]map[string]Converter),
		validator:  v,
	}
}

// Register adds the converter pair for (version, action). NewRequest
// and NewResponse must return pointers to zero-valued structs, ready
// for json.Unmarshal/Marshal.
func (r *Registry) Register(version Version, action string, newRequest, newResponse func() any) {
	if r.converters[version] == nil {
		r.converters[version] = make(map[string]Converter)
	}
	r.converters[version][action] = Converter{NewRequest: newRequest, NewResponse: newResponse}
}

// Lookup returns the converter for (version, action), or ok=false if
// no converter was registered — the dispatcher maps that to CallError
// NotImplemented.
func (r *Registry) Lookup(version Version, action string) (Converter, bool) {
	byAction, ok := r.converters[version]
	if !ok {
		return Converter{}, false
	}
	c, ok := byAction[action]
	return c, ok
}

// DecodeRequest deserializes and validates payload into the Action's
// registered request type. The returned value is a pointer the caller
// type-asserts to the concrete *XxxRequest.
func (r *Registry) DecodeRequest(version Version, action string, payload json.RawMessage) (any, error) {
	c, ok := r.Lookup(version, action)
	if !ok {
		return nil, fmt.Errorf("convert: no converter registered for %s/%s", version, action)
	}

	req := c.NewRequest()
	if err := json.Unmarshal(payload, req); err != nil {
		return nil, fmt.Errorf("convert: decode %s: %w", action, err)
	}
	if r.validator != nil {
		if err := r.validator.ValidateStruct(req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// EncodeResponse serializes a typed response value back to JSON for
// the CallResult frame.
func (r *Registry) EncodeResponse(resp any) (json.RawMessage, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("convert: encode response: %w", err)
	}
	return data, nil
}

// NewResponse constructs a zero-valued response for the Action, used
// by handlers that want a typed value to populate before encoding.
func (r *Registry) NewResponse(version Version, action string) (any, error) {
	c, ok := r.Lookup(version, action)
	if !ok {
		return nil, fmt.Errorf("convert: no converter registered for %s/%s", version, action)
	}
	return c.NewResponse(), nil
}
