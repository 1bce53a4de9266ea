package centralsystem

import (
	"context"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/convert"
	"github.com/ocpp-platform/ocpp-runtime/internal/dispatch"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpc"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpcmsg"
)

// Session is one accepted charge point connection: the transport
// (rpc.Connection), the outbound correlation pool, the inbound call
// dispatcher, and the typed handle/handler pair bound to it.
type Session struct {
	ChargePointID string
	Version       convert.Version

	conn       *rpc.Connection
	pool       *rpc.Pool
	dispatcher *dispatch.Dispatcher

	ChargePoint IChargePoint

	closed chan struct{}
}

// newSession wires one accepted connection end to end: FrameHandler
// routes CallResult/CallError to the Pool and Call frames to the
// Dispatcher, exactly the split internal/rpc's doc comment describes
// between transport and correlation/dispatch.
func newSession(chargePointID string, version convert.Version, conn *rpc.Connection, registry *convert.Registry, log *logger.Logger, callTimeout time.Duration, handler ChargePointRequestHandler) *Session {
	s := &Session{
		ChargePointID: chargePointID,
		Version:       version,
		conn:          conn,
		closed:        make(chan struct{}),
	}

	s.dispatcher = dispatch.New(registry, version, log)
	s.pool = rpc.NewPool(conn, "central_system", callTimeout)
	s.ChargePoint = newChargePointHandle(chargePointID, s.pool)

	if handler != nil {
		registerHandlers(s.dispatcher, handler)
	}

	return s
}

// frameHandler returns the FrameHandler to install on the underlying
// rpc.Connection: CallResult/CallError go to the Pool's correlation
// map, Call frames go through the Dispatcher and the reply is sent
// back over the same connection.
func (s *Session) frameHandler() rpc.FrameHandler {
	return func(decoded *rpcmsg.Decoded) {
		if decoded.Type == rpcmsg.CallResult || decoded.Type == rpcmsg.CallError {
			s.pool.Resolve(decoded)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		reply := s.dispatcher.HandleDecoded(ctx, s.ChargePointID, decoded)
		if reply == nil {
			return
		}
		_ = s.conn.Send(reply)
	}
}

// Serve blocks until the connection closes.
func (s *Session) Serve() {
	defer close(s.closed)
	s.conn.Serve()
}

// Close tears down the session's pool and underlying connection.
func (s *Session) Close() {
	s.pool.Close()
	s.conn.Close()
}

// Done reports when the underlying connection has closed.
func (s *Session) Done() <-chan struct{} { return s.closed }
