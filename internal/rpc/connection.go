// Package rpc implements the OCPP-J transport: one gorilla/websocket
// connection per charge point, a single writer goroutine per connection
// (serializing outbound frames the way the protocol requires), and the
// request/response correlation pool used for outbound Call/await.
//
// HTTP upgrade/routing concerns live in internal/centralsystem and
// internal/chargepoint (component-specific), leaving this package with
// just the per-connection read/write/ping loops and frame plumbing.
package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/metrics"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpcmsg"
)

// Config tunes one Connection's read/write/ping behavior.
type Config struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	SendQueueLength int
}

func DefaultConfig() Config {
	return Config{
		ReadTimeout:     90 * time.Second,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1 << 20,
		SendQueueLength: 100,
	}
}

// FrameHandler receives every inbound decoded frame. It runs on the
// connection's receive goroutine; handlers that do real work should hand
// off to a worker pool rather than block here.
type FrameHandler func(*rpcmsg.Decoded)

// Connection wraps one live WebSocket carrying OCPP-J frames. Reads run
// on a dedicated goroutine and are handed to a FrameHandler; writes are
// serialized through a single sender goroutine reading off sendChan, so
// two callers writing concurrently never interleave bytes on the wire.
type Connection struct {
	conn   *websocket.Conn
	cfg    Config
	log    *logger.Logger
	id     string

	sendChan chan []byte
	handler  FrameHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// NewConnection wraps an already-upgraded websocket connection. Call
// Serve to start its read/write/ping goroutines.
func NewConnection(id string, conn *websocket.Conn, cfg Config, log *logger.Logger, handler FrameHandler) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	conn.SetReadLimit(cfg.MaxMessageSize)
	c := &Connection{
		conn:     conn,
		cfg:      cfg,
		log:      log,
		id:       id,
		sendChan: make(chan []byte, cfg.SendQueueLength),
		handler:  handler,
		ctx:      ctx,
		cancel:   cancel,
	}
	conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		return nil
	})
	return c
}

// SetHandler installs the FrameHandler. Callers that need the
// Connection's id before they can build their handler (e.g. a Session
// that wraps this Connection in its own Pool) construct with a nil
// handler and call SetHandler before Serve.
func (c *Connection) SetHandler(handler FrameHandler) {
	c.handler = handler
}

// Serve starts the connection's goroutines and blocks until the
// connection is closed (by a read error, a call to Close, or context
// cancellation from the caller). It is meant to be run in its own
// goroutine by the owner (centralsystem/chargepoint acceptor).
func (c *Connection) Serve() {
	c.wg.Add(2)
	go c.writeLoop()
	go c.pingLoop()
	c.readLoop()
	c.Close()
	c.wg.Wait()
}

// Send enqueues a raw frame for the writer goroutine. Returns an error
// immediately if the connection is closed or the send queue is full —
// OCPP-J has no backpressure primitive, so a full queue means the peer
// isn't draining and the caller (RPC Pool) should treat this as a
// transport failure rather than block.
func (c *Connection) Send(frame []byte) error {
	select {
	case c.sendChan <- frame:
		return nil
	case <-c.ctx.Done():
		return fmt.Errorf("rpc: connection %s is closed", c.id)
	default:
		return fmt.Errorf("rpc: connection %s send queue is full", c.id)
	}
}

// Close tears down the connection exactly once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.conn.Close()
	})
}

func (c *Connection) Done() <-chan struct{} { return c.ctx.Done() }

func (c *Connection) writeLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case frame, ok := <-c.sendChan:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Errorf("rpc: write to %s failed: %v", c.id, err)
				c.cancel()
				return
			}
			metrics.MessagesSent.WithLabelValues("", "").Inc()
		}
	}
}

func (c *Connection) readLoop() {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Errorf("rpc: read from %s failed: %v", c.id, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		decoded, err := rpcmsg.Decode(data)
		if err != nil {
			c.log.Warnf("rpc: malformed frame from %s: %v", c.id, err)
			continue
		}
		metrics.MessagesReceived.WithLabelValues("", decoded.Action).Inc()
		if c.handler != nil {
			c.handler(decoded)
		}

		select {
		case <-c.ctx.Done():
			return
		default:
		}
	}
}

func (c *Connection) pingLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Errorf("rpc: ping to %s failed: %v", c.id, err)
				c.cancel()
				return
			}
		}
	}
}
