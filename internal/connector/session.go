package connector

import (
	"sync"
	"time"
)

// State is the lifecycle of one Session, mirrored from
// internal/domain/connection.ConnectionState but trimmed to the states
// relevant once a WebSocket has been accepted (no separate HTTP/TCP
// connecting phase).
type State string

const (
	StateConnected     State = "connected"
	StateAuthenticated State = "authenticated"
	StateRegistered    State = "registered"
	StateDisconnecting State = "disconnecting"
	StateDisconnected  State = "disconnected"
)

// ProtocolVersion is the negotiated OCPP-J subprotocol.
type ProtocolVersion string

const (
	ProtocolVersionOCPP16  ProtocolVersion = "ocpp1.6"
	ProtocolVersionOCPP201 ProtocolVersion = "ocpp2.0.1"
)

// Session wraps one live connection with the role-level identity and
// bookkeeping OCPP needs above the raw RPC transport: which charge point
// this is, what protocol and security profile it negotiated, and simple
// traffic counters used for metrics and idle detection.
//
// Adapted from internal/domain/connection.Connection: the network/TCP
// connection handle and HTTP/TCP connection-type support are dropped
// since every session here rides one WebSocket.
type Session struct {
	mu sync.RWMutex

	id              string
	chargePointID   string
	protocolVersion ProtocolVersion
	securityProfile int
	state           State

	connectedAt  time.Time
	lastActivity time.Time
	messagesSent uint64
	messagesRecv uint64

	metadata map[string]any
}

// New constructs a Session in the Connected state.
func New(id, chargePointID string, protocolVersion ProtocolVersion, securityProfile int) *Session {
	now := time.Now()
	return &Session{
		id:              id,
		chargePointID:   chargePointID,
		protocolVersion: protocolVersion,
		securityProfile: securityProfile,
		state:           StateConnected,
		connectedAt:     now,
		lastActivity:    now,
		metadata:        make(map[string]any),
	}
}

func (s *Session) ID() string              { return s.id }
func (s *Session) ChargePointID() string   { return s.chargePointID }
func (s *Session) ProtocolVersion() ProtocolVersion { return s.protocolVersion }
func (s *Session) SecurityProfile() int    { return s.securityProfile }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// SetSecurityProfile records a profile upgrade; callers enforce the
// ascend-only rule before calling (see ocpp16.SecurityProfile.CanTransitionTo).
func (s *Session) SetSecurityProfile(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.securityProfile = p
}

func (s *Session) IsActive() bool {
	switch s.State() {
	case StateConnected, StateAuthenticated, StateRegistered:
		return true
	default:
		return false
	}
}

func (s *Session) RecordSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messagesSent++
	s.lastActivity = time.Now()
}

func (s *Session) RecordReceived() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messagesRecv++
	s.lastActivity = time.Now()
}

func (s *Session) IdleFor() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastActivity)
}

func (s *Session) ConnectedFor() time.Duration {
	return time.Since(s.connectedAt)
}

func (s *Session) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[key] = value
}

func (s *Session) Metadata(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.metadata[key]
	return v, ok
}

// Registry tracks live sessions by charge point identifier, enforcing
// that at most one session per identifier is active at a time (the
// "duplicate identifier" rule resolved in favor of rejecting the newer
// connection unless AllowSessionPreemption is set).
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register attempts to add session under its ChargePointID. If an
// active session is already registered, ok is false and that session is
// returned (an inactive one is silently replaced);
// the caller decides whether to reject the new connection or preempt.
func (r *Registry) Register(s *Session) (existing *Session, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, found := r.sessions[s.chargePointID]; found && cur.IsActive() {
		return cur, false
	}
	r.sessions[s.chargePointID] = s
	return nil, true
}

// Preempt forcibly replaces any existing session for the same charge
// point identifier, returning the one it replaced (if any).
func (r *Registry) Preempt(s *Session) (replaced *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced = r.sessions[s.chargePointID]
	r.sessions[s.chargePointID] = s
	return replaced
}

func (r *Registry) Get(chargePointID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[chargePointID]
	return s, ok
}

func (r *Registry) Remove(chargePointID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chargePointID)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// All returns a snapshot slice of every registered session.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
