package rpc_types

import (
	"bytes"
	"encoding/json"
)

// RPC method names used by the client
const (
	MethodAccountTx  = "account_tx"
	MethodTx         = "tx"
	MethodSubmit     = "submit"
	MethodServerInfo = "server_info"
)

// Marker is the opaque pagination cursor returned by account_tx.
// It is passed back to the node verbatim and never interpreted.
type Marker json.RawMessage

// IsZero reports whether the marker is absent
func (m Marker) IsZero() bool {
	trimmed := bytes.TrimSpace(m)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Equal reports whether two markers carry the same bytes
func (m Marker) Equal(other Marker) bool {
	return bytes.Equal(m, other)
}

// String returns the raw JSON of the marker
func (m Marker) String() string {
	if m.IsZero() {
		return ""
	}
	return string(m)
}

// MarshalJSON returns the marker bytes untouched
func (m Marker) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return m, nil
}

// UnmarshalJSON stores a copy of the raw marker bytes
func (m *Marker) UnmarshalJSON(data []byte) error {
	*m = append((*m)[0:0], data...)
	return nil
}

// AccountTxRequest is the parameter object of account_tx
type AccountTxRequest struct {
	Account        string `json:"account"`
	LedgerIndexMin int64  `json:"ledger_index_min"`
	LedgerIndexMax int64  `json:"ledger_index_max"`
	Forward        bool   `json:"forward"`
	Binary         bool   `json:"binary"`
	Limit          int    `json:"limit"`
	Marker         Marker `json:"marker,omitempty"`
}

// AccountTransaction is one entry of account_tx.transactions.
// With binary=true TxBlob and Meta are hex strings, otherwise Tx and Meta are objects.
type AccountTransaction struct {
	Tx          map[string]any  `json:"tx,omitempty"`
	TxBlob      string          `json:"tx_blob,omitempty"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	LedgerIndex uint32          `json:"ledger_index,omitempty"`
	Validated   bool            `json:"validated"`
}

// IsBinary reports whether the entry carries a binary encoded transaction
func (t AccountTransaction) IsBinary() bool {
	return t.TxBlob != ""
}

// AccountTxResponse is the result object of account_tx
type AccountTxResponse struct {
	Account        string               `json:"account"`
	LedgerIndexMin int64                `json:"ledger_index_min"`
	LedgerIndexMax int64                `json:"ledger_index_max"`
	Limit          int                  `json:"limit"`
	Marker         Marker               `json:"marker,omitempty"`
	Transactions   []AccountTransaction `json:"transactions"`
	Validated      bool                 `json:"validated,omitempty"`
}

// TxRequest is the parameter object of tx
type TxRequest struct {
	Transaction string `json:"transaction"`
	Binary      bool   `json:"binary"`
}

// TxResponse is the result object of tx. rippled returns the transaction
// fields at the top level next to meta, validated and ledger_index, so the
// whole object is kept as a map.
type TxResponse map[string]any

// SubmitRequest is the parameter object of submit
type SubmitRequest struct {
	TxBlob string `json:"tx_blob"`
}

// SubmitResponse is the result object of submit
type SubmitResponse struct {
	EngineResult        string         `json:"engine_result"`
	EngineResultCode    int            `json:"engine_result_code"`
	EngineResultMessage string         `json:"engine_result_message"`
	TxBlob              string         `json:"tx_blob,omitempty"`
	TxJson              map[string]any `json:"tx_json,omitempty"`
	Accepted            bool           `json:"accepted,omitempty"`
	Applied             bool           `json:"applied,omitempty"`
	Broadcast           bool           `json:"broadcast,omitempty"`
	Kept                bool           `json:"kept,omitempty"`
	Queued              bool           `json:"queued,omitempty"`
}

// ServerInfoRequest is the (empty) parameter object of server_info
type ServerInfoRequest struct{}

// ServerInfoResponse is the result object of server_info
type ServerInfoResponse struct {
	Info ServerInfo `json:"info"`
}

// ServerInfo holds the fields of server_info.info the client uses
type ServerInfo struct {
	BuildVersion    string           `json:"build_version,omitempty"`
	CompleteLedgers string           `json:"complete_ledgers"`
	ServerState     string           `json:"server_state,omitempty"`
	NetworkID       uint32           `json:"network_id,omitempty"`
	ValidatedLedger *ValidatedLedger `json:"validated_ledger,omitempty"`
}

// ValidatedLedger describes the latest validated ledger known to the node
type ValidatedLedger struct {
	Seq         uint32  `json:"seq"`
	Hash        string  `json:"hash,omitempty"`
	BaseFeeXRP  float64 `json:"base_fee_xrp,omitempty"`
	ReserveBase float64 `json:"reserve_base_xrp,omitempty"`
}

// JSON-RPC request envelope as accepted by rippled over HTTP
type JsonRpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// JSON-RPC response envelope
type JsonRpcResponse struct {
	Result json.RawMessage `json:"result"`
}

// ResultStatus holds the status fields rippled embeds in every result
type ResultStatus struct {
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// WebSocketCommand is the envelope of a WebSocket request. Params are
// merged into the top-level object when marshalled by the transport.
type WebSocketCommand struct {
	ID      uint64 `json:"id"`
	Command string `json:"command"`
}

// WebSocketResponse is the envelope of a WebSocket reply
type WebSocketResponse struct {
	ID           uint64          `json:"id"`
	Status       string          `json:"status"`
	Type         string          `json:"type"`
	Result       json.RawMessage `json:"result,omitempty"`
	Error        string          `json:"error,omitempty"`
	ErrorCode    int             `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}
