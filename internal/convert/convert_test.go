package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/convert"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/validation"
)

func newRegistry() *convert.Registry {
	r := convert.NewRegistry(validation.NewValidator())
	convert.RegisterOCPP16(r)
	convert.RegisterOCPP201(r)
	return r
}

func TestDecodeRequestRoundTrip(t *testing.T) {
	r := newRegistry()

	payload := []byte(`{"chargePointVendor":"Acme","chargePointModel":"X1"}`)
	req, err := r.DecodeRequest(convert.V16, "BootNotification", payload)
	require.NoError(t, err)

	boot, ok := req.(*ocpp16.BootNotificationRequest)
	require.True(t, ok)
	assert.Equal(t, "Acme", boot.ChargePointVendor)
}

func TestDecodeRequestUnknownAction(t *testing.T) {
	r := newRegistry()
	_, err := r.DecodeRequest(convert.V16, "NotAnAction", []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeRequestValidationFailure(t *testing.T) {
	r := newRegistry()
	// ChargePointVendor is required; omitting it should fail validation.
	_, err := r.DecodeRequest(convert.V16, "BootNotification", []byte(`{"chargePointModel":"X1"}`))
	assert.Error(t, err)
}

func TestEncodeResponse(t *testing.T) {
	r := newRegistry()
	resp, err := r.NewResponse(convert.V16, "Heartbeat")
	require.NoError(t, err)

	hb, ok := resp.(*ocpp16.HeartbeatResponse)
	require.True(t, ok)
	hb.CurrentTime = ocpp16.DateTime{}

	data, err := r.EncodeResponse(hb)
	require.NoError(t, err)
	assert.Contains(t, string(data), "currentTime")
}
