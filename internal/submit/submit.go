// Package submit sends signed transactions to a node and classifies the
// preliminary engine result.
package submit

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tidepay/tidepay-go/internal/log"
	"github.com/tidepay/tidepay-go/internal/metrics"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
	"github.com/tidepay/tidepay-go/internal/validate"
)

// Outcome is the preliminary result the node reports for a submission.
// The final result is only known once the transaction is in a validated ledger.
type Outcome struct {
	ResultCode    string `json:"resultCode"`
	ResultMessage string `json:"resultMessage"`
}

// Class returns the three letter result class ("tes", "tem", "ter"...).
func (o Outcome) Class() string {
	if len(o.ResultCode) < 3 {
		return o.ResultCode
	}
	return o.ResultCode[:3]
}

// NodeRejectionError is returned when the node rejects a transaction as
// malformed. Such a transaction can never succeed.
type NodeRejectionError struct {
	Outcome Outcome
}

func (e *NodeRejectionError) Error() string {
	return fmt.Sprintf("submit failed: %s: %s", e.Outcome.ResultCode, e.Outcome.ResultMessage)
}

// IsImmediateRejection reports whether resultCode means the transaction was
// rejected for good.
func IsImmediateRejection(resultCode string) bool {
	return strings.HasPrefix(resultCode, "tem")
}

// Node issues submit calls.
type Node interface {
	Submit(ctx context.Context, req rpc_types.SubmitRequest) (*rpc_types.SubmitResponse, error)
}

// Submitter submits signed transactions.
type Submitter struct {
	node    Node
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewSubmitter creates a submitter. m may be nil.
func NewSubmitter(node Node, logger *zap.SugaredLogger, m *metrics.Metrics) *Submitter {
	return &Submitter{
		node:    node,
		logger:  log.OrNop(logger),
		metrics: m,
	}
}

// Submit sends signedTransaction, a hex encoded signed blob. Results other
// than tem are returned as an Outcome even when they are failures, since
// the transaction may still make it into a ledger.
func (s *Submitter) Submit(ctx context.Context, signedTransaction string) (*Outcome, error) {
	if err := validate.SignedTransaction(signedTransaction); err != nil {
		return nil, err
	}

	resp, err := s.node.Submit(ctx, rpc_types.SubmitRequest{TxBlob: signedTransaction})
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		ResultCode:    resp.EngineResult,
		ResultMessage: resp.EngineResultMessage,
	}
	if IsImmediateRejection(outcome.ResultCode) {
		s.metrics.RecordSubmission(outcome.Class(), "rejected")
		s.logger.Warnw("node rejected transaction",
			"result", outcome.ResultCode,
			"message", outcome.ResultMessage,
		)
		return nil, &NodeRejectionError{Outcome: *outcome}
	}

	s.metrics.RecordSubmission(outcome.Class(), "accepted")
	s.logger.Infow("submitted transaction",
		"result", outcome.ResultCode,
		"queued", resp.Queued,
		"broadcast", resp.Broadcast,
	)
	return outcome, nil
}
