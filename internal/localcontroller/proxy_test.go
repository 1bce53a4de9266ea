package localcontroller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/config"
	"github.com/ocpp-platform/ocpp-runtime/internal/localcontroller"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpcmsg"
)

// echoCentralSystem answers every Call it receives with a CallResult
// carrying {"echoed": true}, mimicking a CS that accepts everything —
// enough to exercise the Link's forwarding and id-remapping logic.
func echoCentralSystem(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			decoded, err := rpcmsg.Decode(data)
			if err != nil || decoded.Type != rpcmsg.Call {
				continue
			}
			reply, _ := rpcmsg.EncodeCallResult(decoded.UniqueID, map[string]bool{"echoed": true})
			_ = conn.WriteMessage(websocket.TextMessage, reply)
		}
	}))
}

func testConfig(dialURL string) config.Config {
	return config.Config{
		Server: config.ServerConfig{DialURL: dialURL},
		OCPP:   config.OCPPConfig{SupportedVersions: []string{"ocpp1.6"}},
		WebSocket: config.WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.DefaultConfig())
	require.NoError(t, err)
	return log
}

func TestLinkForwardsCallAndMapsResultID(t *testing.T) {
	cs := echoCentralSystem(t)
	defer cs.Close()
	csURL := "ws" + cs.URL[len("http"):]

	proxy := localcontroller.NewProxy(testConfig(csURL), testLogger(t), nil)
	lc := httptest.NewServer(http.HandlerFunc(proxy.ServeHTTP))
	defer lc.Close()

	cpURL := "ws" + lc.URL[len("http"):] + "/ocpp/CP1"
	conn, _, err := websocket.DefaultDialer.Dial(cpURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	frame, err := rpcmsg.EncodeCall("orig-1", "Heartbeat", map[string]any{})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	decoded, err := rpcmsg.Decode(data)
	require.NoError(t, err)
	require.Equal(t, rpcmsg.CallResult, decoded.Type)
	require.Equal(t, "orig-1", decoded.UniqueID)
	require.Contains(t, string(decoded.Payload), "echoed")
}

func TestInterceptorSuppressesForwarding(t *testing.T) {
	cs := echoCentralSystem(t)
	defer cs.Close()
	csURL := "ws" + cs.URL[len("http"):]

	proxy := localcontroller.NewProxy(testConfig(csURL), testLogger(t), nil)
	proxy.InterceptCPToCS("Authorize", func(ctx context.Context, chargePointID, action string, payload json.RawMessage) *localcontroller.InterceptResult {
		return &localcontroller.InterceptResult{
			Suppress: true,
			Response: map[string]any{"idTagInfo": map[string]string{"status": "Accepted"}},
		}
	})

	lc := httptest.NewServer(http.HandlerFunc(proxy.ServeHTTP))
	defer lc.Close()

	cpURL := "ws" + lc.URL[len("http"):] + "/ocpp/CP2"
	conn, _, err := websocket.DefaultDialer.Dial(cpURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	frame, err := rpcmsg.EncodeCall("orig-2", "Authorize", map[string]any{"idTag": "TAG1"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	decoded, err := rpcmsg.Decode(data)
	require.NoError(t, err)
	require.Equal(t, rpcmsg.CallResult, decoded.Type)
	require.Equal(t, "orig-2", decoded.UniqueID)
	require.Contains(t, string(decoded.Payload), "Accepted")
}

func TestInterceptorMutatesPayloadBeforeForwarding(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan string, 1)
	cs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		decoded, err := rpcmsg.Decode(data)
		require.NoError(t, err)
		received <- string(decoded.Payload)
		reply, _ := rpcmsg.EncodeCallResult(decoded.UniqueID, map[string]bool{"ok": true})
		_ = conn.WriteMessage(websocket.TextMessage, reply)
	}))
	defer cs.Close()
	csURL := "ws" + cs.URL[len("http"):]

	proxy := localcontroller.NewProxy(testConfig(csURL), testLogger(t), nil)
	proxy.InterceptCPToCS("DataTransfer", func(ctx context.Context, chargePointID, action string, payload json.RawMessage) *localcontroller.InterceptResult {
		mutated, _ := json.Marshal(map[string]any{"vendorId": "rewritten"})
		return &localcontroller.InterceptResult{Payload: mutated}
	})

	lc := httptest.NewServer(http.HandlerFunc(proxy.ServeHTTP))
	defer lc.Close()

	cpURL := "ws" + lc.URL[len("http"):] + "/ocpp/CP3"
	conn, _, err := websocket.DefaultDialer.Dial(cpURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	frame, err := rpcmsg.EncodeCall("orig-3", "DataTransfer", map[string]any{"vendorId": "original"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	select {
	case payload := <-received:
		require.Contains(t, payload, "rewritten")
	case <-time.After(2 * time.Second):
		t.Fatal("central system never received forwarded call")
	}
}

func TestDialCentralSystemFailureClosesChargePointSide(t *testing.T) {
	proxy := localcontroller.NewProxy(testConfig("ws://127.0.0.1:1/unreachable"), testLogger(t), nil)
	lc := httptest.NewServer(http.HandlerFunc(proxy.ServeHTTP))
	defer lc.Close()

	cpURL := "ws" + lc.URL[len("http"):] + "/ocpp/CP4"
	conn, _, err := websocket.DefaultDialer.Dial(cpURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)

	require.Equal(t, 0, proxy.ConnectionCount())
}
