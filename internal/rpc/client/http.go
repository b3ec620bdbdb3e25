package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

// maxErrorBody bounds the part of a non-200 body quoted in errors.
const maxErrorBody = 512

// HTTPTransport sends JSON-RPC requests in the {"method", "params": [{...}]}
// shape accepted by rippled's HTTP port.
type HTTPTransport struct {
	url        string
	httpClient *http.Client
}

// NewHTTPTransport creates a transport posting to url. A nil httpClient
// uses http.DefaultClient.
func NewHTTPTransport(url string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPTransport{url: url, httpClient: httpClient}
}

// Call implements Transport.
func (t *HTTPTransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpc_types.JsonRpcRequest{
		Method: method,
		Params: []any{params},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: encoding request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s: node returned HTTP %d: %s", method, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var envelope rpc_types.JsonRpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", method, err)
	}
	if len(envelope.Result) == 0 {
		return nil, fmt.Errorf("%s: response has no result", method)
	}
	return envelope.Result, nil
}

// Close implements Transport. Idle connections are left to the http.Client.
func (t *HTTPTransport) Close() error {
	return nil
}
