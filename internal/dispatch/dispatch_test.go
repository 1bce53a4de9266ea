package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/convert"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/validation"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpcmsg"
)

func newTestDispatcher() *Dispatcher {
	r := convert.NewRegistry(validation.NewValidator())
	convert.RegisterOCPP16(r)
	return New(r, convert.V16, nil)
}

func TestHandleCallSuccess(t *testing.T) {
	d := newTestDispatcher()
	d.RegisterHandler(string(ocpp16.ActionBootNotification), func(ctx context.Context, chargePointID string, req any) (any, *ocpperr.CallError) {
		boot := req.(*ocpp16.BootNotificationRequest)
		assert.Equal(t, "Acme", boot.ChargePointVendor)
		return &ocpp16.BootNotificationResponse{Status: ocpp16.RegistrationStatusAccepted, Interval: 300}, nil
	})

	frame, err := rpcmsg.EncodeCall("1", string(ocpp16.ActionBootNotification), map[string]any{
		"chargePointVendor": "Acme",
		"chargePointModel":  "X1",
	})
	require.NoError(t, err)

	out := d.HandleCall(context.Background(), "CP1", frame)
	require.NotNil(t, out)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(out, &raw))
	require.Len(t, raw, 3)

	var msgType int
	require.NoError(t, json.Unmarshal(raw[0], &msgType))
	assert.Equal(t, int(rpcmsg.CallResult), msgType)

	stats := d.Stats()
	assert.EqualValues(t, 1, stats.SuccessfulMessages)
	assert.EqualValues(t, 0, stats.FailedMessages)
}

func TestHandleCallUnknownAction(t *testing.T) {
	d := newTestDispatcher()

	frame, err := rpcmsg.EncodeCall("2", "NotAnAction", map[string]any{})
	require.NoError(t, err)

	out := d.HandleCall(context.Background(), "CP1", frame)
	require.NotNil(t, out)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(out, &raw))
	var msgType int
	require.NoError(t, json.Unmarshal(raw[0], &msgType))
	assert.Equal(t, int(rpcmsg.CallError), msgType)

	var code string
	require.NoError(t, json.Unmarshal(raw[2], &code))
	assert.Equal(t, string(ocpperr.NotImplemented), code)

	stats := d.Stats()
	assert.EqualValues(t, 1, stats.FailedMessages)
}

func TestHandleCallValidationFailure(t *testing.T) {
	d := newTestDispatcher()
	d.RegisterHandler(string(ocpp16.ActionBootNotification), func(ctx context.Context, chargePointID string, req any) (any, *ocpperr.CallError) {
		t.Fatal("handler should not run when validation fails")
		return nil, nil
	})

	frame, err := rpcmsg.EncodeCall("3", string(ocpp16.ActionBootNotification), map[string]any{
		"chargePointModel": "X1",
	})
	require.NoError(t, err)

	out := d.HandleCall(context.Background(), "CP1", frame)
	require.NotNil(t, out)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(out, &raw))
	var code string
	require.NoError(t, json.Unmarshal(raw[2], &code))
	assert.Equal(t, string(ocpperr.FormationViolation), code)
}

func TestHandleCallNoHandlerRegistered(t *testing.T) {
	d := newTestDispatcher()

	frame, err := rpcmsg.EncodeCall("4", string(ocpp16.ActionHeartbeat), map[string]any{})
	require.NoError(t, err)

	out := d.HandleCall(context.Background(), "CP1", frame)
	require.NotNil(t, out)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(out, &raw))
	var code string
	require.NoError(t, json.Unmarshal(raw[2], &code))
	assert.Equal(t, string(ocpperr.NotSupported), code)
}

func TestHandleCallIgnoresNonCallFrames(t *testing.T) {
	d := newTestDispatcher()

	frame, err := rpcmsg.EncodeCallResult("5", map[string]any{"status": "Accepted"})
	require.NoError(t, err)

	out := d.HandleCall(context.Background(), "CP1", frame)
	assert.Nil(t, out)
}

func TestHandleCallMalformedFrame(t *testing.T) {
	d := newTestDispatcher()
	out := d.HandleCall(context.Background(), "CP1", []byte(`not json`))
	assert.Nil(t, out)
}
