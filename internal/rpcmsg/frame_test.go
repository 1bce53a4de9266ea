package rpcmsg

import (
	"testing"

	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCall(t *testing.T) {
	data, err := EncodeCall("u1", "Heartbeat", map[string]any{})
	require.NoError(t, err)

	d, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, Call, d.Type)
	assert.Equal(t, "u1", d.UniqueID)
	assert.Equal(t, "Heartbeat", d.Action)
}

func TestEncodeDecodeCallResult(t *testing.T) {
	data, err := EncodeCallResult("u1", map[string]any{"status": "Accepted"})
	require.NoError(t, err)

	d, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CallResult, d.Type)
	assert.Equal(t, "u1", d.UniqueID)
	assert.JSONEq(t, `{"status":"Accepted"}`, string(d.Payload))
}

func TestEncodeDecodeCallError(t *testing.T) {
	ce := ocpperr.New(ocpperr.NotImplemented, "unsupported action")
	data, err := EncodeCallError("u1", ce)
	require.NoError(t, err)

	d, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CallError, d.Type)
	assert.Equal(t, string(ocpperr.NotImplemented), d.ErrorCode)
	assert.Equal(t, "unsupported action", d.ErrorDesc)
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	_, err := Decode([]byte(`[2,"u1"]`))
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := Decode([]byte(`[9,"u1","x","y"]`))
	assert.Error(t, err)
}

func TestDecodeRejectsNonArray(t *testing.T) {
	_, err := Decode([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}
