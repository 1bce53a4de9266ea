package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpcmsg"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.DefaultConfig())
	require.NoError(t, err)
	return log
}

// dialPair spins up a local websocket server that echoes a CallResult
// for whatever Call it receives, and returns a client-side Connection.
func dialPair(t *testing.T) *Connection {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				decoded, err := rpcmsg.Decode(data)
				if err != nil {
					continue
				}
				if decoded.Type == rpcmsg.Call {
					resp, _ := rpcmsg.EncodeCallResult(decoded.UniqueID, map[string]string{"status": "Accepted"})
					conn.WriteMessage(websocket.TextMessage, resp)
				}
			}
		}()
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + srv.URL[len("http"):]
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.PingInterval = time.Hour
	conn := NewConnection("test-conn", clientConn, cfg, testLogger(t), nil)
	go conn.Serve()
	t.Cleanup(conn.Close)
	return conn
}

func TestPoolCallReceivesResult(t *testing.T) {
	conn := dialPair(t)
	pool := NewPool(conn, "charge_point", 2*time.Second)
	defer pool.Close()
	conn.handler = func(d *rpcmsg.Decoded) { pool.Resolve(d) }

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result, callErr, err := pool.Call(ctx, "Heartbeat", map[string]any{})
	require.NoError(t, err)
	require.Nil(t, callErr)
	require.Contains(t, string(result), "Accepted")
}

func TestPoolCallTimesOutWithoutResponse(t *testing.T) {
	conn := dialPair(t)
	pool := NewPool(conn, "charge_point", 50*time.Millisecond)
	defer pool.Close()
	// No handler wired: the server's CallResult frame is never resolved.

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, _, err := pool.Call(ctx, "Heartbeat", map[string]any{})
	require.Error(t, err)
}
