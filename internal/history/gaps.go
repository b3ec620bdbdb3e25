package history

import (
	"context"
	"fmt"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
)

// RangeOracle reports whether the node holds every ledger of a range.
// Bounds <= 0 mean the earliest and latest ledgers.
type RangeOracle interface {
	HasCompleteLedgerRange(ctx context.Context, minLedger, maxLedger int64) (bool, error)
}

// checkedRange returns the ledger range that must be complete for txs to
// be the whole answer. When limit results were returned, only the ledgers
// up to the last one have to be checked.
func checkedRange(opts *Options, txs []*transaction.Transaction) (int64, int64) {
	minLedger, maxLedger := opts.MinLedgerVersion, opts.MaxLedgerVersion
	if opts.Limit > 0 && len(txs) == opts.Limit {
		last := int64(txs[len(txs)-1].Outcome.LedgerVersion)
		if opts.EarliestFirst {
			maxLedger = last
		} else {
			minLedger = last
		}
	}
	return minLedger, maxLedger
}

func (s *Service) checkForLedgerGaps(ctx context.Context, opts *Options, txs []*transaction.Transaction) error {
	minLedger, maxLedger := checkedRange(opts, txs)

	complete, err := s.oracle.HasCompleteLedgerRange(ctx, minLedger, maxLedger)
	if err != nil {
		s.metrics.RecordGapCheck("error")
		return fmt.Errorf("checking ledger range: %w", err)
	}
	if !complete {
		s.metrics.RecordGapCheck("missing")
		return &MissingLedgerHistoryError{MinLedgerVersion: minLedger, MaxLedgerVersion: maxLedger}
	}
	s.metrics.RecordGapCheck("complete")
	return nil
}
