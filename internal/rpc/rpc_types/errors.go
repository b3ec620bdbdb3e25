package rpc_types

import (
	"errors"
	"fmt"
)

// XRPL RPC error codes as reported by rippled in error_code.
// Only the codes this client reacts to are listed.

// RpcError represents an error result returned by the node
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Type        string `json:"type,omitempty"`
	Message     string `json:"error_message,omitempty"`
	Method      string `json:"-"`
}

func (e *RpcError) Error() string {
	msg := e.ErrorString
	if e.Message != "" {
		msg = e.Message
	}
	if e.Method != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Method, msg, e.ErrorString)
	}
	return msg
}

// Error codes - must match rippled
const (
	RpcUNKNOWN        = -1
	RpcTOO_BUSY       = 9
	RpcSLOW_DOWN      = 10
	RpcNO_CURRENT     = 16
	RpcNO_NETWORK     = 17
	RpcACT_NOT_FOUND  = 19
	RpcLGR_NOT_FOUND  = 21
	RpcTXN_NOT_FOUND  = 29
	RpcINVALID_PARAMS = 31
	RpcACT_MALFORMED  = 35
	RpcINTERNAL       = 73
)

// Error strings reported in the "error" field
const (
	ErrTxnNotFound     = "txnNotFound"
	ErrActNotFound     = "actNotFound"
	ErrLgrNotFound     = "lgrNotFound"
	ErrInvalidParams   = "invalidParams"
	ErrLgrIdxsInvalid  = "lgrIdxsInvalid"
	ErrLgrIdxMalformed = "lgrIdxMalformed"
)

// NewRpcError builds an RpcError for the given method
func NewRpcError(method string, code int, errorString, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: errorString,
		Type:        "response",
		Message:     message,
		Method:      method,
	}
}

// IsTxnNotFound reports whether err is the node's txnNotFound error
func IsTxnNotFound(err error) bool {
	var rpcErr *RpcError
	return errors.As(err, &rpcErr) && rpcErr.ErrorString == ErrTxnNotFound
}
