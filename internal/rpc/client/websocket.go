package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tidepay/tidepay-go/internal/log"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

const (
	writeWait = 10 * time.Second
	// account_tx pages of 400 binary transactions can be several megabytes
	maxMessageSize = 32 << 20
)

// ErrClosed is returned by calls on a closed WebSocket transport.
var ErrClosed = errors.New("websocket transport closed")

type wsReply struct {
	result json.RawMessage
	err    error
}

// WebSocketTransport multiplexes concurrent calls over one WebSocket
// connection, matching replies to requests by id.
type WebSocketTransport struct {
	conn    *websocket.Conn
	logger  *zap.SugaredLogger
	nextID  atomic.Uint64
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan wsReply // nil once the connection is gone

	done      chan struct{}
	err       error // why the connection is gone, set before done is closed
	closeOnce sync.Once
}

// DialWebSocket connects to a node's WebSocket port.
func DialWebSocket(ctx context.Context, url string, logger *zap.SugaredLogger) (*WebSocketTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return newWebSocketTransport(conn, logger), nil
}

func newWebSocketTransport(conn *websocket.Conn, logger *zap.SugaredLogger) *WebSocketTransport {
	t := &WebSocketTransport{
		conn:    conn,
		logger:  log.OrNop(logger),
		pending: make(map[uint64]chan wsReply),
		done:    make(chan struct{}),
	}
	conn.SetReadLimit(maxMessageSize)
	go t.readLoop()
	return t
}

// Call implements Transport.
func (t *WebSocketTransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := t.nextID.Add(1)
	msg, err := commandMessage(id, method, params)
	if err != nil {
		return nil, fmt.Errorf("%s: encoding request: %w", method, err)
	}

	reply := make(chan wsReply, 1)
	t.mu.Lock()
	if t.pending == nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", method, t.err)
	}
	t.pending[id] = reply
	t.mu.Unlock()
	defer t.forget(id)

	if err := t.write(msg); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	select {
	case r := <-reply:
		return r.result, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", method, ctx.Err())
	case <-t.done:
		return nil, fmt.Errorf("%s: %w", method, t.err)
	}
}

// Close closes the connection. Calls in flight fail with ErrClosed.
func (t *WebSocketTransport) Close() error {
	t.shutdown(ErrClosed)

	t.writeMu.Lock()
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	t.writeMu.Unlock()

	return t.conn.Close()
}

// commandMessage builds {"id": id, "command": method, ...params}.
func commandMessage(id uint64, method string, params any) ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("params must encode to a JSON object: %w", err)
		}
	}

	envelope, err := json.Marshal(rpc_types.WebSocketCommand{ID: id, Command: method})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(envelope, &fields); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (t *WebSocketTransport) write(msg []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, msg)
}

func (t *WebSocketTransport) forget(id uint64) {
	t.mu.Lock()
	if t.pending != nil {
		delete(t.pending, id)
	}
	t.mu.Unlock()
}

// readLoop delivers replies until the connection fails.
func (t *WebSocketTransport) readLoop() {
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.logger.Warnw("websocket connection lost", "error", err)
			}
			t.shutdown(fmt.Errorf("websocket read: %w", err))
			return
		}

		var resp rpc_types.WebSocketResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			t.logger.Warnw("discarding malformed websocket message", "error", err)
			continue
		}
		if resp.Type != "response" {
			t.logger.Debugw("ignoring stream message", "type", resp.Type)
			continue
		}

		t.mu.Lock()
		reply, ok := t.pending[resp.ID]
		delete(t.pending, resp.ID)
		t.mu.Unlock()
		if !ok {
			t.logger.Debugw("reply for unknown request", "id", resp.ID)
			continue
		}
		reply <- toReply(resp)
	}
}

func toReply(resp rpc_types.WebSocketResponse) wsReply {
	if resp.Status == "error" {
		return wsReply{err: &rpc_types.RpcError{
			Code:        resp.ErrorCode,
			ErrorString: resp.Error,
			Type:        resp.Type,
			Message:     resp.ErrorMessage,
		}}
	}
	return wsReply{result: resp.Result}
}

func (t *WebSocketTransport) shutdown(err error) {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.pending = nil
		t.err = err
		t.mu.Unlock()
		close(t.done)
	})
}
