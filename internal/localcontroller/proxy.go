// Package localcontroller implements the Local Controller proxy role:
// for each charge point accepted on its server-facing listener, it opens
// a client-side WebSocket to the configured Central System and joins the
// two connections with a bidirectional forwarding Link. Every Call is
// relayed as-is by default; an owner may register an Interceptor per
// Action to answer locally, mutate a request before forwarding, or only
// observe.
//
// Grounded on cmd/gateway/main.go's config -> storage -> transport
// wiring order (reused for the accept side) and internal/rpc.Connection,
// which this package is the first to use on both the server and the
// client side of a single process.
package localcontroller

import (
	"encoding/base64"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ocpp-platform/ocpp-runtime/internal/config"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/metrics"
)

// CredentialValidator inspects the Basic-auth or mutual-TLS credentials
// a charge point presented on its upgrade request, surfacing them to
// the proxy owner for validation before the CS-side connection is
// opened.
type CredentialValidator func(chargePointID string, r *http.Request) bool

// Proxy accepts inbound charge point WebSocket connections and, for each
// one, dials the configured Central System, wiring the pair into a Link.
type Proxy struct {
	cfg       config.Config
	log       *logger.Logger
	validator CredentialValidator

	upgrader websocket.Upgrader
	dialer   websocket.Dialer

	interceptors *interceptorSet

	mu    sync.Mutex
	links map[string]*Link
}

// NewProxy builds a Proxy. validator may be nil to accept every upgrade
// unconditionally (e.g. profile-0 bootstrap deployments).
func NewProxy(cfg config.Config, log *logger.Logger, validator CredentialValidator) *Proxy {
	p := &Proxy{
		cfg:          cfg,
		log:          log,
		validator:    validator,
		interceptors: newInterceptorSet(),
		links:        make(map[string]*Link),
	}

	p.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     func(r *http.Request) bool { return true },
		Subprotocols:    cfg.OCPP.SupportedVersions,
	}
	p.dialer = websocket.Dialer{
		HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
		Subprotocols:     cfg.OCPP.SupportedVersions,
	}

	return p
}

// InterceptCPToCS registers a handler for Calls the charge point sends,
// run before the default forward-as-is rule.
func (p *Proxy) InterceptCPToCS(action string, fn Interceptor) {
	p.interceptors.register(cpToCS, action, fn)
}

// InterceptCSToCP registers a handler for Calls the Central System sends.
func (p *Proxy) InterceptCSToCP(action string, fn Interceptor) {
	p.interceptors.register(csToCP, action, fn)
}

// ServeHTTP implements the CP-facing OCPP-J upgrade endpoint, mounted at
// the configured base path with the charge point identifier as the final
// path segment — the same shape internal/centralsystem.Server uses.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	chargePointID := extractChargePointID(r.URL.Path)
	if chargePointID == "" {
		http.Error(w, "missing charge point identifier", http.StatusBadRequest)
		return
	}

	if p.validator != nil && !p.validator(chargePointID, r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="ocpp"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cpConn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.errf("upgrade failed for %s: %v", chargePointID, err)
		return
	}

	csConn, err := p.dialCentralSystem(chargePointID, cpConn.Subprotocol())
	if err != nil {
		p.errf("dial central system for %s: %v", chargePointID, err)
		cpConn.Close()
		return
	}

	link := newLink(chargePointID, cpConn, csConn, p.cfg, p.log, p.interceptors)

	p.mu.Lock()
	if old, exists := p.links[chargePointID]; exists {
		old.Close()
	}
	p.links[chargePointID] = link
	p.mu.Unlock()

	metrics.ActiveConnections.WithLabelValues("local_controller").Inc()

	go func() {
		link.Serve()
		p.remove(chargePointID, link)
	}()
}

// dialCentralSystem opens the CS-side leg, preserving the charge point
// identifier in the URL path and presenting the Local Controller's own
// configured credentials rather than the CP's.
func (p *Proxy) dialCentralSystem(chargePointID, subprotocol string) (*websocket.Conn, error) {
	base := strings.TrimRight(p.cfg.Server.DialURL, "/")
	url := base + "/" + chargePointID

	header := http.Header{}
	if p.cfg.Security.AuthorizationKey != "" {
		creds := chargePointID + ":" + p.cfg.Security.AuthorizationKey
		header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(creds)))
	}

	dialer := p.dialer
	if subprotocol != "" {
		dialer.Subprotocols = []string{subprotocol}
	}

	conn, _, err := dialer.Dial(url, header)
	return conn, err
}

func (p *Proxy) remove(chargePointID string, link *Link) {
	p.mu.Lock()
	if current, ok := p.links[chargePointID]; ok && current == link {
		delete(p.links, chargePointID)
	}
	p.mu.Unlock()
	metrics.ActiveConnections.WithLabelValues("local_controller").Dec()
}

// ConnectionCount reports the number of active charge point links.
func (p *Proxy) ConnectionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.links)
}

func (p *Proxy) errf(format string, args ...any) {
	if p.log != nil {
		p.log.Errorf("localcontroller: "+format, args...)
	}
}

func extractChargePointID(path string) string {
	trimmed := strings.TrimRight(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return trimmed[idx+1:]
}
