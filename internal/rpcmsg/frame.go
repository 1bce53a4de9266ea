// Package rpcmsg implements the OCPP-J wire framing: JSON arrays tagged
// by message type (2=Call, 3=CallResult, 4=CallError), encoding and
// decoding them without any knowledge of a particular Action's payload
// shape (that belongs to internal/convert).
package rpcmsg

import (
	"encoding/json"
	"fmt"

	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
)

// MessageType is the first element of every OCPP-J frame.
type MessageType int

const (
	Call       MessageType = 2
	CallResult MessageType = 3
	CallError  MessageType = 4
)

// FrameError reports a malformed frame. The dispatcher logs it and
// sends no reply; it is not turned into a CallError for the peer.
type FrameError struct {
	Op      string
	Message string
	Cause   error
}

func (e *FrameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *FrameError) Unwrap() error { return e.Cause }

func frameErr(op, msg string, cause error) error {
	return &FrameError{Op: op, Message: msg, Cause: cause}
}

// EncodeCall serializes a Call frame: [2, uniqueID, action, payload].
func EncodeCall(uniqueID, action string, payload any) ([]byte, error) {
	return json.Marshal([]any{Call, uniqueID, action, payload})
}

// EncodeCallResult serializes a CallResult frame: [3, uniqueID, payload].
func EncodeCallResult(uniqueID string, payload any) ([]byte, error) {
	return json.Marshal([]any{CallResult, uniqueID, payload})
}

// EncodeCallError serializes a CallError frame:
// [4, uniqueID, errorCode, errorDescription, errorDetails].
func EncodeCallError(uniqueID string, callErr *ocpperr.CallError) ([]byte, error) {
	details := callErr.Details
	if details == nil {
		details = map[string]any{}
	}
	return json.Marshal([]any{CallError, uniqueID, string(callErr.Code), callErr.Description, details})
}

// Decoded is the result of parsing a raw frame into its tag fields; the
// Action field is empty for CallResult/CallError frames.
type Decoded struct {
	Type      MessageType
	UniqueID  string
	Action    string
	Payload   json.RawMessage
	ErrorCode string
	ErrorDesc string
}

// Decode parses a raw OCPP-J frame into its tag fields without touching
// the nested payload's concrete type.
func Decode(data []byte) (*Decoded, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, frameErr("Decode", "frame is not a JSON array", err)
	}
	if len(raw) < 3 {
		return nil, frameErr("Decode", "frame has fewer than 3 elements", nil)
	}

	var msgType int
	if err := json.Unmarshal(raw[0], &msgType); err != nil {
		return nil, frameErr("Decode", "first element is not a message type", err)
	}

	var uniqueID string
	if err := json.Unmarshal(raw[1], &uniqueID); err != nil {
		return nil, frameErr("Decode", "second element is not a unique id", err)
	}

	switch MessageType(msgType) {
	case Call:
		if len(raw) != 4 {
			return nil, frameErr("Decode", "Call frame must have exactly 4 elements", nil)
		}
		var action string
		if err := json.Unmarshal(raw[2], &action); err != nil {
			return nil, frameErr("Decode", "third element is not an action name", err)
		}
		return &Decoded{Type: Call, UniqueID: uniqueID, Action: action, Payload: raw[3]}, nil

	case CallResult:
		if len(raw) != 3 {
			return nil, frameErr("Decode", "CallResult frame must have exactly 3 elements", nil)
		}
		return &Decoded{Type: CallResult, UniqueID: uniqueID, Payload: raw[2]}, nil

	case CallError:
		if len(raw) < 4 || len(raw) > 5 {
			return nil, frameErr("Decode", "CallError frame must have 4 or 5 elements", nil)
		}
		var code, desc string
		if err := json.Unmarshal(raw[2], &code); err != nil {
			return nil, frameErr("Decode", "third element is not an error code", err)
		}
		if err := json.Unmarshal(raw[3], &desc); err != nil {
			return nil, frameErr("Decode", "fourth element is not an error description", err)
		}
		d := &Decoded{Type: CallError, UniqueID: uniqueID, ErrorCode: code, ErrorDesc: desc}
		if len(raw) == 5 {
			d.Payload = raw[4]
		}
		return d, nil

	default:
		return nil, frameErr("Decode", fmt.Sprintf("unknown message type %d", msgType), nil)
	}
}
