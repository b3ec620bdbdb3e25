// Package history retrieves the validated transaction history of an account
// from a node, following account_tx markers until the requested window is
// covered, and verifies that the node was not missing ledgers in it.
package history

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
	"github.com/tidepay/tidepay-go/internal/log"
	"github.com/tidepay/tidepay-go/internal/metrics"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

// AccountTxFetcher issues account_tx calls.
type AccountTxFetcher interface {
	AccountTx(ctx context.Context, req rpc_types.AccountTxRequest) (*rpc_types.AccountTxResponse, error)
}

// TransactionLookup resolves a transaction id to a validated transaction.
type TransactionLookup interface {
	GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error)
}

// Service assembles account histories. It keeps no state between calls
// and is safe for concurrent use.
type Service struct {
	node       AccountTxFetcher
	lookup     TransactionLookup
	oracle     RangeOracle
	normalizer *Normalizer
	chain      Chain
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
}

// NewService creates a history service. m may be nil.
func NewService(node AccountTxFetcher, lookup TransactionLookup, oracle RangeOracle, normalizer *Normalizer, logger *zap.SugaredLogger, m *metrics.Metrics) *Service {
	return &Service{
		node:       node,
		lookup:     lookup,
		oracle:     oracle,
		normalizer: normalizer,
		chain:      DefaultChain(),
		logger:     log.OrNop(logger),
		metrics:    m,
	}
}

// GetTransactions returns the validated transactions of address selected
// by opts, ordered by opts.Direction(). Either the whole result is
// returned or an error.
func (s *Service) GetTransactions(ctx context.Context, address string, opts Options) ([]*transaction.Transaction, error) {
	if err := opts.Validate(address); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	switch {
	case opts.Start != "":
		tx, err := s.lookup.GetTransaction(ctx, opts.Start)
		if err != nil {
			return nil, fmt.Errorf("resolving start transaction: %w", err)
		}
		opts = opts.resumeFrom(tx)
	case opts.StartTx != nil:
		opts = opts.resumeFrom(opts.StartTx)
	}

	txs, err := GetRecursive(ctx, s.pageFetcher(address, &opts), opts.Limit)
	if err != nil {
		return nil, err
	}

	opts.Direction().Sort(txs)

	if !opts.NotCheckGaps {
		if err := s.checkForLedgerGaps(ctx, &opts, txs); err != nil {
			return nil, err
		}
	}

	s.logger.Infow("retrieved account transactions",
		"address", address,
		"count", len(txs),
		"direction", opts.Direction(),
	)
	return txs, nil
}

func (s *Service) pageFetcher(address string, opts *Options) PageFetcher {
	return func(ctx context.Context, marker rpc_types.Marker, pageSize int) (*Page, error) {
		resp, err := s.node.AccountTx(ctx, rpc_types.AccountTxRequest{
			Account:        address,
			LedgerIndexMin: wireLedger(opts.MinLedgerVersion),
			LedgerIndexMax: wireLedger(opts.MaxLedgerVersion),
			Forward:        opts.EarliestFirst,
			Binary:         opts.Binary,
			Limit:          pageSize,
			Marker:         marker,
		})
		if err != nil {
			return nil, err
		}

		page, err := FormatPage(s.normalizer, s.chain, address, opts, resp)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordPage(page.Fetched, len(page.Results))
		s.logger.Debugw("fetched account_tx page",
			"address", address,
			"limit", pageSize,
			"fetched", page.Fetched,
			"kept", len(page.Results),
			"more", !page.Marker.IsZero(),
		)
		return page, nil
	}
}
