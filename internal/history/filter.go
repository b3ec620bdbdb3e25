package history

import (
	"slices"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
)

// Predicate decides whether a transaction belongs in the result for address.
type Predicate interface {
	Keep(address string, opts *Options, tx *transaction.Transaction) bool
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(address string, opts *Options, tx *transaction.Transaction) bool

func (f PredicateFunc) Keep(address string, opts *Options, tx *transaction.Transaction) bool {
	return f(address, opts, tx)
}

// Chain keeps a transaction only if every predicate does. Predicates run in
// order and evaluation stops at the first drop.
type Chain []Predicate

func (c Chain) Keep(address string, opts *Options, tx *transaction.Transaction) bool {
	for _, p := range c {
		if !p.Keep(address, opts, tx) {
			return false
		}
	}
	return true
}

// DefaultChain returns the filters applied to every history page.
func DefaultChain() Chain {
	return Chain{
		PredicateFunc(excludeFailures),
		PredicateFunc(typeAllowed),
		PredicateFunc(initiated),
		PredicateFunc(counterparty),
		PredicateFunc(resumeCursor),
	}
}

func excludeFailures(_ string, opts *Options, tx *transaction.Transaction) bool {
	return !opts.ExcludeFailures || tx.Succeeded()
}

func typeAllowed(_ string, opts *Options, tx *transaction.Transaction) bool {
	return len(opts.Types) == 0 || slices.Contains(opts.Types, tx.Type)
}

func initiated(address string, opts *Options, tx *transaction.Transaction) bool {
	if opts.Initiated == nil {
		return true
	}
	return *opts.Initiated == (tx.Address == address)
}

func counterparty(_ string, opts *Options, tx *transaction.Transaction) bool {
	if opts.Counterparty == "" {
		return true
	}
	return tx.Address == opts.Counterparty ||
		tx.DestinationAddress() == opts.Counterparty ||
		tx.Specification.Counterparty == opts.Counterparty
}

// resumeCursor keeps transactions strictly past StartTx in the walking order.
func resumeCursor(_ string, opts *Options, tx *transaction.Transaction) bool {
	return opts.StartTx == nil || opts.Direction().After(tx, opts.StartTx)
}
