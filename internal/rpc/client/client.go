// Package client calls the public API of an XRPL node over JSON-RPC/HTTP or
// WebSocket.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/tidepay/tidepay-go/internal/log"
	"github.com/tidepay/tidepay-go/internal/metrics"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

// Transport sends one request and returns the raw result object.
// Node-side errors are returned as *rpc_types.RpcError.
type Transport interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
	Close() error
}

// Client issues the node calls used by history retrieval and submission.
// It is safe for concurrent use.
type Client struct {
	transport Transport
	timeout   time.Duration
	logger    *zap.SugaredLogger
	metrics   *metrics.Metrics
}

// New creates a client over transport. A zero timeout disables the per
// call deadline. m may be nil.
func New(transport Transport, timeout time.Duration, logger *zap.SugaredLogger, m *metrics.Metrics) *Client {
	return &Client{
		transport: transport,
		timeout:   timeout,
		logger:    log.OrNop(logger),
		metrics:   m,
	}
}

// Dial picks the transport from the URL scheme: http and https use
// JSON-RPC, ws and wss a WebSocket connection.
func Dial(ctx context.Context, nodeURL string, timeout time.Duration, logger *zap.SugaredLogger, m *metrics.Metrics) (*Client, error) {
	u, err := url.Parse(nodeURL)
	if err != nil {
		return nil, fmt.Errorf("invalid node url %q: %w", nodeURL, err)
	}

	var transport Transport
	switch u.Scheme {
	case "http", "https":
		transport = NewHTTPTransport(nodeURL, nil)
	case "ws", "wss":
		transport, err = DialWebSocket(ctx, nodeURL, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported node url scheme %q", u.Scheme)
	}
	return New(transport, timeout, logger, m), nil
}

// Close releases the transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// AccountTx fetches one page of an account's transactions.
func (c *Client) AccountTx(ctx context.Context, req rpc_types.AccountTxRequest) (*rpc_types.AccountTxResponse, error) {
	var resp rpc_types.AccountTxResponse
	if err := c.call(ctx, rpc_types.MethodAccountTx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tx fetches a single transaction.
func (c *Client) Tx(ctx context.Context, req rpc_types.TxRequest) (rpc_types.TxResponse, error) {
	var resp rpc_types.TxResponse
	if err := c.call(ctx, rpc_types.MethodTx, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Submit submits a signed transaction blob.
func (c *Client) Submit(ctx context.Context, req rpc_types.SubmitRequest) (*rpc_types.SubmitResponse, error) {
	var resp rpc_types.SubmitResponse
	if err := c.call(ctx, rpc_types.MethodSubmit, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ServerInfo fetches the node status.
func (c *Client) ServerInfo(ctx context.Context) (*rpc_types.ServerInfoResponse, error) {
	var resp rpc_types.ServerInfoResponse
	if err := c.call(ctx, rpc_types.MethodServerInfo, rpc_types.ServerInfoRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.do(ctx, method, params, result)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordRPCCall(method, status, elapsed.Seconds())

	if err != nil {
		c.logger.Debugw("rpc call failed", "method", method, "duration", elapsed, "error", err)
		return err
	}
	c.logger.Debugw("rpc call", "method", method, "duration", elapsed)
	return nil
}

func (c *Client) do(ctx context.Context, method string, params, result any) error {
	raw, err := c.transport.Call(ctx, method, params)
	if err != nil {
		var rpcErr *rpc_types.RpcError
		if errors.As(err, &rpcErr) && rpcErr.Method == "" {
			rpcErr.Method = method
		}
		return err
	}

	if err := resultError(method, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("%s: decoding result: %w", method, err)
	}
	return nil
}

// resultError returns the node error embedded in a result object, if any.
func resultError(method string, raw json.RawMessage) error {
	var status rpc_types.ResultStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return fmt.Errorf("%s: decoding result status: %w", method, err)
	}
	if status.Status != "error" && status.Error == "" {
		return nil
	}
	return rpc_types.NewRpcError(method, status.ErrorCode, status.Error, status.ErrorMessage)
}
