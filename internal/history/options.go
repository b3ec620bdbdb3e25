package history

import (
	"go.uber.org/multierr"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
	"github.com/tidepay/tidepay-go/internal/validate"
)

// Options controls one history retrieval. The zero value returns every
// validated transaction of the account, newest first.
type Options struct {
	// MinLedgerVersion is the lowest ledger to search; 0 means the earliest available.
	MinLedgerVersion int64
	// MaxLedgerVersion is the highest ledger to search; 0 or -1 means the most recent.
	MaxLedgerVersion int64
	EarliestFirst    bool
	// Limit caps the number of returned transactions; 0 means no cap.
	Limit           int
	ExcludeFailures bool
	// Types restricts results to the given type names as reported by
	// transaction.Parse: normalized names, or ledger names for types without one.
	Types []string
	// Initiated keeps only transactions sent (true) or received (false) by the account.
	Initiated    *bool
	Counterparty string
	// Start resumes after the transaction with this id.
	Start string
	// StartTx resumes after this transaction without looking it up.
	StartTx      *transaction.Transaction
	Binary       bool
	NotCheckGaps bool
}

// Direction returns the walking order selected by EarliestFirst.
func (o *Options) Direction() transaction.Direction {
	if o.EarliestFirst {
		return transaction.Ascending
	}
	return transaction.Descending
}

// Validate checks the options for address before any call is made.
func (o *Options) Validate(address string) error {
	err := validate.Address("address", address)
	err = multierr.Append(err, validate.LedgerRange(o.MinLedgerVersion, o.MaxLedgerVersion))
	err = multierr.Append(err, validate.Limit(o.Limit))
	err = multierr.Append(err, validate.OneOf("types", o.Types, transaction.KnownTypes()))
	if o.Counterparty != "" {
		err = multierr.Append(err, validate.Address("counterparty", o.Counterparty))
	}
	if o.Start != "" {
		err = multierr.Append(err, validate.TransactionID("start", o.Start))
	}
	err = multierr.Append(err, validate.Exclusive(map[string]bool{
		"start":   o.Start != "",
		"startTx": o.StartTx != nil,
	}))
	return err
}

// withDefaults returns a copy of o with unset values filled in.
func (o Options) withDefaults() Options {
	if o.MaxLedgerVersion == 0 {
		o.MaxLedgerVersion = -1
	}
	return o
}

// resumeFrom bounds the search at tx and sets it as the resume cursor.
func (o Options) resumeFrom(tx *transaction.Transaction) Options {
	if o.EarliestFirst {
		o.MinLedgerVersion = int64(tx.Outcome.LedgerVersion)
	} else {
		o.MaxLedgerVersion = int64(tx.Outcome.LedgerVersion)
	}
	o.StartTx = tx
	return o
}

// wireLedger converts an unset ledger bound to the node's -1.
func wireLedger(v int64) int64 {
	if v <= 0 {
		return -1
	}
	return v
}
