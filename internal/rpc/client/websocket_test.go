package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

// wsNode is a WebSocket node whose behaviour is scripted per test.
type wsNode struct {
	handle func(conn *websocket.Conn, msg map[string]any)
}

func newWSNode(t *testing.T, handle func(conn *websocket.Conn, msg map[string]any)) string {
	t.Helper()
	node := &wsNode{handle: handle}
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			node.handle(conn, msg)
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func reply(conn *websocket.Conn, id any, result string) {
	_ = conn.WriteJSON(map[string]any{
		"id":     id,
		"status": "success",
		"type":   "response",
		"result": json.RawMessage(result),
	})
}

func TestWebSocketCall(t *testing.T) {
	msgs := make(chan map[string]any, 1)
	url := newWSNode(t, func(conn *websocket.Conn, msg map[string]any) {
		msgs <- msg
		reply(conn, msg["id"], `{"info": {"complete_ledgers": "32570-100", "validated_ledger": {"seq": 100}}}`)
	})

	c, err := Dial(context.Background(), url, time.Second, nil, nil)
	require.NoError(t, err)
	defer c.Close()

	info, err := c.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "32570-100", info.Info.CompleteLedgers)
	assert.Equal(t, uint32(100), info.Info.ValidatedLedger.Seq)
	got := <-msgs
	assert.Equal(t, "server_info", got["command"])
	assert.NotNil(t, got["id"])
}

func TestWebSocketMergesParams(t *testing.T) {
	msgs := make(chan map[string]any, 1)
	url := newWSNode(t, func(conn *websocket.Conn, msg map[string]any) {
		msgs <- msg
		reply(conn, msg["id"], `{"transactions": []}`)
	})

	transport, err := DialWebSocket(context.Background(), url, nil)
	require.NoError(t, err)
	defer transport.Close()

	c := New(transport, time.Second, nil, nil)
	_, err = c.AccountTx(context.Background(), rpc_types.AccountTxRequest{
		Account:        testAccount,
		LedgerIndexMin: -1,
		LedgerIndexMax: 500,
		Forward:        true,
		Limit:          400,
	})
	require.NoError(t, err)

	msg := <-msgs
	assert.Equal(t, "account_tx", msg["command"])
	assert.Equal(t, testAccount, msg["account"])
	assert.Equal(t, float64(500), msg["ledger_index_max"])
	assert.Equal(t, true, msg["forward"])
	assert.NotContains(t, msg, "marker")
}

func TestWebSocketMatchesRepliesById(t *testing.T) {
	var (
		mu      sync.Mutex
		waiting []map[string]any
	)
	url := newWSNode(t, func(conn *websocket.Conn, msg map[string]any) {
		mu.Lock()
		defer mu.Unlock()
		waiting = append(waiting, msg)
		if len(waiting) < 2 {
			return
		}
		// answer in reverse order, after a stream message
		_ = conn.WriteJSON(map[string]any{"type": "ledgerClosed", "ledger_index": 7})
		for i := len(waiting) - 1; i >= 0; i-- {
			m := waiting[i]
			reply(conn, m["id"], `{"engine_result": "`+m["tx_blob"].(string)+`"}`)
		}
		waiting = nil
	})

	transport, err := DialWebSocket(context.Background(), url, nil)
	require.NoError(t, err)
	defer transport.Close()
	c := New(transport, 2*time.Second, nil, nil)

	var wg sync.WaitGroup
	for _, blob := range []string{"AA", "BB"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Submit(context.Background(), rpc_types.SubmitRequest{TxBlob: blob})
			if assert.NoError(t, err) {
				assert.Equal(t, blob, resp.EngineResult)
			}
		}()
	}
	wg.Wait()
}

func TestWebSocketNodeError(t *testing.T) {
	url := newWSNode(t, func(conn *websocket.Conn, msg map[string]any) {
		_ = conn.WriteJSON(map[string]any{
			"id":            msg["id"],
			"status":        "error",
			"type":          "response",
			"error":         "actMalformed",
			"error_code":    35,
			"error_message": "Account malformed.",
		})
	})

	c, err := Dial(context.Background(), url, time.Second, nil, nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.AccountTx(context.Background(), rpc_types.AccountTxRequest{Account: "bogus"})
	var rpcErr *rpc_types.RpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, rpc_types.RpcACT_MALFORMED, rpcErr.Code)
	assert.Equal(t, "actMalformed", rpcErr.ErrorString)
	assert.Equal(t, rpc_types.MethodAccountTx, rpcErr.Method)
}

func TestWebSocketTimeout(t *testing.T) {
	url := newWSNode(t, func(*websocket.Conn, map[string]any) {})

	c, err := Dial(context.Background(), url, 50*time.Millisecond, nil, nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ServerInfo(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWebSocketConnectionLost(t *testing.T) {
	url := newWSNode(t, func(conn *websocket.Conn, _ map[string]any) {
		conn.Close()
	})

	transport, err := DialWebSocket(context.Background(), url, nil)
	require.NoError(t, err)
	defer transport.Close()

	_, err = transport.Call(context.Background(), rpc_types.MethodServerInfo, rpc_types.ServerInfoRequest{})
	require.Error(t, err)

	_, err = transport.Call(context.Background(), rpc_types.MethodServerInfo, rpc_types.ServerInfoRequest{})
	require.Error(t, err)
}

func TestWebSocketClosed(t *testing.T) {
	url := newWSNode(t, func(conn *websocket.Conn, msg map[string]any) {
		reply(conn, msg["id"], `{}`)
	})

	transport, err := DialWebSocket(context.Background(), url, nil)
	require.NoError(t, err)
	require.NoError(t, transport.Close())

	_, err = transport.Call(context.Background(), rpc_types.MethodServerInfo, nil)
	require.ErrorIs(t, err, ErrClosed)
}
