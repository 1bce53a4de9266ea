package localcontroller

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
)

// direction identifies which side of a Link originated a Call.
type direction int

const (
	cpToCS direction = iota
	csToCP
)

// InterceptResult is what an Interceptor returns. Spec §4.J describes
// three outcomes: fully answer locally and suppress forwarding, mutate
// the request and forward it, or observe only (returning nil or a zero
// InterceptResult forwards the original payload unchanged).
type InterceptResult struct {
	// Suppress, when true, stops the default relay: Response or CallErr
	// is sent back to the originating side instead.
	Suppress bool
	Response any
	CallErr  *ocpperr.CallError

	// Payload, when non-nil and Suppress is false, replaces the request
	// forwarded to the far side.
	Payload json.RawMessage
}

// Interceptor inspects (and may answer or mutate) one Call before the
// Link's default forward-as-is rule runs.
type Interceptor func(ctx context.Context, chargePointID, action string, payload json.RawMessage) *InterceptResult

// interceptorSet is the per-Proxy registry of interceptors, keyed by
// direction and Action — mirroring internal/dispatch's Action-keyed
// handler map, generalized to two directions instead of one.
type interceptorSet struct {
	mu  sync.RWMutex
	cp  map[string]Interceptor
	cs  map[string]Interceptor
}

func newInterceptorSet() *interceptorSet {
	return &interceptorSet{
		cp: make(map[string]Interceptor),
		cs: make(map[string]Interceptor),
	}
}

func (s *interceptorSet) register(dir direction, action string, fn Interceptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir == cpToCS {
		s.cp[action] = fn
	} else {
		s.cs[action] = fn
	}
}

func (s *interceptorSet) lookup(dir direction, action string) Interceptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if dir == cpToCS {
		return s.cp[action]
	}
	return s.cs[action]
}
