package localcontroller

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ocpp-platform/ocpp-runtime/internal/config"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpc"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpcmsg"
)

// pendingRelay remembers the unique id a forwarded Call carried on its
// originating side, so the far side's CallResult/CallError can be
// mapped back onto it.
type pendingRelay struct {
	originalID string
}

// Link joins one charge point's two connections — the CP-facing server
// side (cpConn) and the CS-facing client side (csConn) — applying the
// default bidirectional relay rule unless a registered Interceptor
// claims the Action.
//
// Grounded on internal/rpc.Connection reused symmetrically for both
// proxy sides; the id-remapping pending maps generalize
// internal/rpc.Pool's single-sided correlation map to two independent
// directions sharing one Link.
type Link struct {
	chargePointID string

	cpConn *rpc.Connection
	csConn *rpc.Connection

	cfg config.Config
	log *logger.Logger

	interceptors *interceptorSet

	mu   sync.Mutex
	onCS map[string]pendingRelay // id used on CS side -> original CP-side id
	onCP map[string]pendingRelay // id used on CP side -> original CS-side id

	closed chan struct{}
}

func newLink(chargePointID string, cpWS, csWS *websocket.Conn, cfg config.Config, log *logger.Logger, interceptors *interceptorSet) *Link {
	l := &Link{
		chargePointID: chargePointID,
		cfg:           cfg,
		log:           log,
		interceptors:  interceptors,
		onCS:          make(map[string]pendingRelay),
		onCP:          make(map[string]pendingRelay),
		closed:        make(chan struct{}),
	}

	rpcCfg := rpc.DefaultConfig()
	l.cpConn = rpc.NewConnection(chargePointID+"#cp", cpWS, rpcCfg, log, nil)
	l.csConn = rpc.NewConnection(chargePointID+"#cs", csWS, rpcCfg, log, nil)
	l.cpConn.SetHandler(l.fromCP)
	l.csConn.SetHandler(l.fromCS)

	return l
}

// Serve blocks until both sides close. If the CS side drops first,
// the CP side is torn down too when DisconnectFromCPWhenCSDisconnected
// is set; otherwise the CP side is left open and its pending/future
// Calls simply stop getting answered — nothing is queued, so those
// calls eventually fail with a disconnected peer.
func (l *Link) Serve() {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		l.csConn.Serve()
		if l.cfg.LocalController.DisconnectFromCPWhenCSDisconnected {
			l.cpConn.Close()
		}
	}()
	go func() {
		defer wg.Done()
		l.cpConn.Serve()
		l.csConn.Close()
	}()

	wg.Wait()
	close(l.closed)
}

// Close tears down both sides of the link.
func (l *Link) Close() {
	l.cpConn.Close()
	l.csConn.Close()
}

// Done reports when both sides have closed.
func (l *Link) Done() <-chan struct{} { return l.closed }

func (l *Link) fromCP(decoded *rpcmsg.Decoded) {
	switch decoded.Type {
	case rpcmsg.Call:
		l.relayCall(cpToCS, decoded, l.cpConn, l.csConn, l.onCS)
	case rpcmsg.CallResult, rpcmsg.CallError:
		l.relayReply(decoded, l.csConn, l.onCP)
	}
}

func (l *Link) fromCS(decoded *rpcmsg.Decoded) {
	switch decoded.Type {
	case rpcmsg.Call:
		l.relayCall(csToCP, decoded, l.csConn, l.cpConn, l.onCP)
	case rpcmsg.CallResult, rpcmsg.CallError:
		l.relayReply(decoded, l.cpConn, l.onCS)
	}
}

// relayCall runs the interception chain, then forwards to dst with a
// fresh unique id unless the interceptor suppressed forwarding. pending
// is keyed by that fresh id and resolves back to origin's original id
// when dst eventually replies.
func (l *Link) relayCall(dir direction, decoded *rpcmsg.Decoded, origin, dst *rpc.Connection, pending map[string]pendingRelay) {
	payload := decoded.Payload

	if fn := l.interceptors.lookup(dir, decoded.Action); fn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		result := fn(ctx, l.chargePointID, decoded.Action, decoded.Payload)
		cancel()

		if result != nil {
			if result.Suppress {
				l.answerLocally(origin, decoded.UniqueID, result)
				return
			}
			if result.Payload != nil {
				payload = result.Payload
			}
		}
	}

	newID := uuid.NewString()
	frame, err := rpcmsg.EncodeCall(newID, decoded.Action, payload)
	if err != nil {
		l.errf("encode relayed %s for %s: %v", decoded.Action, l.chargePointID, err)
		return
	}

	l.mu.Lock()
	pending[newID] = pendingRelay{originalID: decoded.UniqueID}
	l.mu.Unlock()

	if err := dst.Send(frame); err != nil {
		l.errf("relay %s for %s: %v", decoded.Action, l.chargePointID, err)
		l.answerLocally(origin, decoded.UniqueID, &InterceptResult{
			CallErr: ocpperr.New(ocpperr.GenericError, "peer disconnected"),
		})
	}
}

// relayReply maps a CallResult/CallError's unique id back onto the id
// its originating side used, then forwards it there.
func (l *Link) relayReply(decoded *rpcmsg.Decoded, dst *rpc.Connection, pending map[string]pendingRelay) {
	l.mu.Lock()
	relay, ok := pending[decoded.UniqueID]
	if ok {
		delete(pending, decoded.UniqueID)
	}
	l.mu.Unlock()
	if !ok {
		return
	}

	var frame []byte
	var err error
	switch decoded.Type {
	case rpcmsg.CallResult:
		frame, err = rpcmsg.EncodeCallResult(relay.originalID, decoded.Payload)
	case rpcmsg.CallError:
		frame, err = rpcmsg.EncodeCallError(relay.originalID, &ocpperr.CallError{
			Code:        ocpperr.Code(decoded.ErrorCode),
			Description: decoded.ErrorDesc,
		})
	}
	if err != nil {
		l.errf("encode relayed reply for %s: %v", l.chargePointID, err)
		return
	}
	_ = dst.Send(frame)
}

func (l *Link) answerLocally(origin *rpc.Connection, uniqueID string, result *InterceptResult) {
	var frame []byte
	var err error
	if result.CallErr != nil {
		frame, err = rpcmsg.EncodeCallError(uniqueID, result.CallErr)
	} else {
		frame, err = rpcmsg.EncodeCallResult(uniqueID, result.Response)
	}
	if err != nil {
		l.errf("encode local answer for %s: %v", l.chargePointID, err)
		return
	}
	_ = origin.Send(frame)
}

func (l *Link) errf(format string, args ...any) {
	if l.log != nil {
		l.log.Errorf("localcontroller: "+format, args...)
	}
}
