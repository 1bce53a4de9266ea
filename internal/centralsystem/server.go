package centralsystem

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ocpp-platform/ocpp-runtime/internal/config"
	"github.com/ocpp-platform/ocpp-runtime/internal/convert"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/validation"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/metrics"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpc"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
)

// HandlerFactory builds the per-session ChargePointRequestHandler,
// given the charge point identifier and negotiated protocol version —
// the Server has no business logic of its own, it only accepts
// connections and wires each one to a handler the owning binary
// supplies (cmd/centralsystem).
type HandlerFactory func(chargePointID string, version convert.Version) ChargePointRequestHandler

// Server accepts inbound charge point WebSocket connections, enforces
// security-profile-gated authentication and duplicate-identifier
// rejection, and hands each accepted connection to a Session.
//
// Follows the same config -> storage -> converter/dispatcher ->
// websocket wiring order and upgrade/duplicate-check shape as
// cmd/gateway, rebuilt on top of internal/rpc instead of a hand-rolled
// ConnectionWrapper.
type Server struct {
	cfg      config.Config
	store    *sqlite.Store
	affinity storage.ConnectionStorage
	log      *logger.Logger
	registry *convert.Registry

	upgrader websocket.Upgrader
	factory  HandlerFactory

	mu       sync.Mutex
	sessions map[string]*Session

	instanceID string
}

// NewServer builds a Server. affinity may be nil when running a single
// instance with no cross-instance connection registry.
func NewServer(cfg config.Config, store *sqlite.Store, affinity storage.ConnectionStorage, log *logger.Logger, factory HandlerFactory) *Server {
	registry := convert.NewRegistry(validation.NewValidator())
	convert.RegisterOCPP16(registry)
	convert.RegisterOCPP201(registry)

	s := &Server{
		cfg:        cfg,
		store:      store,
		affinity:   affinity,
		log:        log,
		registry:   registry,
		factory:    factory,
		sessions:   make(map[string]*Session),
		instanceID: cfg.InstanceID,
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     func(r *http.Request) bool { return true },
		Subprotocols:    cfg.OCPP.SupportedVersions,
	}

	return s
}

// ServeHTTP implements the OCPP-J upgrade endpoint; the router mounts
// this at the configured base path with the charge point identifier as
// the final path segment, e.g. "/ocpp/{chargePointID}".
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	chargePointID := extractChargePointID(r.URL.Path)
	if chargePointID == "" {
		http.Error(w, "missing charge point identifier", http.StatusBadRequest)
		return
	}

	if !authenticate(s.cfg.Security, s.store, chargePointID, r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="ocpp"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if s.hasSession(chargePointID) && !s.cfg.OCPP.AllowSessionPreemption {
		http.Error(w, "charge point already connected", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.log != nil {
			s.log.Errorf("centralsystem: upgrade failed for %s: %v", chargePointID, err)
		}
		return
	}

	version := negotiateVersion(conn.Subprotocol(), s.cfg.OCPP.SupportedVersions)
	s.accept(chargePointID, version, conn)
}

func (s *Server) accept(chargePointID string, version convert.Version, wsConn *websocket.Conn) {
	rpcConn := rpc.NewConnection(chargePointID, wsConn, rpc.DefaultConfig(), s.log, nil)

	var handler ChargePointRequestHandler
	if s.factory != nil {
		handler = s.factory(chargePointID, version)
	}

	session := newSession(chargePointID, version, rpcConn, s.registry, s.log, s.cfg.OCPP.CallRequestTimeout, handler)
	rpcConn.SetHandler(session.frameHandler())

	s.mu.Lock()
	if old, exists := s.sessions[chargePointID]; exists {
		if !s.cfg.OCPP.AllowSessionPreemption {
			s.mu.Unlock()
			rpcConn.Close()
			return
		}
		old.Close()
	}
	s.sessions[chargePointID] = session
	s.mu.Unlock()

	metrics.ActiveConnections.WithLabelValues("central_system").Inc()

	if s.affinity != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.affinity.SetConnection(ctx, chargePointID, s.instanceID, s.cfg.WebSocket.IdleTimeout)
		cancel()
	}

	go func() {
		session.Serve()
		s.remove(chargePointID, session)
	}()
}

func (s *Server) remove(chargePointID string, session *Session) {
	s.mu.Lock()
	if current, ok := s.sessions[chargePointID]; ok && current == session {
		delete(s.sessions, chargePointID)
	}
	s.mu.Unlock()

	metrics.ActiveConnections.WithLabelValues("central_system").Dec()

	if s.affinity != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.affinity.DeleteConnection(ctx, chargePointID)
		cancel()
	}
}

func (s *Server) hasSession(chargePointID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[chargePointID]
	return ok
}

// ChargePoint returns the outbound handle for a currently connected
// charge point, or ok=false if it is not connected to this instance.
func (s *Server) ChargePoint(chargePointID string) (IChargePoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[chargePointID]
	if !ok {
		return nil, false
	}
	return session.ChargePoint, true
}

// Touch refreshes chargePointID's affinity entry TTL. Call this on
// every OCPP Heartbeat so a charge point idling between heartbeats
// below the configured idle timeout never falls out of the registry.
func (s *Server) Touch(chargePointID string) {
	if s.affinity == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.affinity.RefreshConnection(ctx, chargePointID, s.instanceID, s.cfg.WebSocket.IdleTimeout); err != nil && s.log != nil {
		s.log.Errorf("centralsystem: refresh affinity for %s: %v", chargePointID, err)
	}
}

// ConnectionCount reports the number of sessions live on this instance.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func extractChargePointID(path string) string {
	trimmed := strings.TrimRight(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return trimmed[idx+1:]
}

// negotiateVersion maps the subprotocol gorilla/websocket selected
// (empty if the peer sent none or none matched) onto a convert.Version,
// defaulting to the first configured version for bootstrap clients that
// omit Sec-WebSocket-Protocol entirely.
func negotiateVersion(subprotocol string, supported []string) convert.Version {
	switch subprotocol {
	case "ocpp2.0.1":
		return convert.V201
	case "ocpp1.6":
		return convert.V16
	}
	if len(supported) > 0 && supported[0] == "ocpp2.0.1" {
		return convert.V201
	}
	return convert.V16
}
