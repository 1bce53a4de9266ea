package connector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionLifecycle(t *testing.T) {
	s := New("sess-1", "CP001", ProtocolVersionOCPP16, 0)
	assert.True(t, s.IsActive())
	s.SetState(StateDisconnected)
	assert.False(t, s.IsActive())
}

func TestSessionTrafficCounters(t *testing.T) {
	s := New("sess-1", "CP001", ProtocolVersionOCPP16, 0)
	s.RecordSent()
	s.RecordReceived()
	assert.Less(t, s.IdleFor().Nanoseconds(), int64(time.Second))
}

func TestRegistryRejectsDuplicateByDefault(t *testing.T) {
	r := NewRegistry()
	s1 := New("sess-1", "CP001", ProtocolVersionOCPP16, 0)
	s2 := New("sess-2", "CP001", ProtocolVersionOCPP16, 0)

	_, ok := r.Register(s1)
	assert.True(t, ok)

	existing, ok := r.Register(s2)
	assert.False(t, ok)
	assert.Equal(t, s1, existing)
}

func TestRegistryPreemptReplaces(t *testing.T) {
	r := NewRegistry()
	s1 := New("sess-1", "CP001", ProtocolVersionOCPP16, 0)
	s2 := New("sess-2", "CP001", ProtocolVersionOCPP16, 0)

	r.Register(s1)
	replaced := r.Preempt(s2)
	assert.Equal(t, s1, replaced)

	got, ok := r.Get("CP001")
	assert.True(t, ok)
	assert.Equal(t, s2, got)
}
