package transaction

import (
	"cmp"
	"slices"
)

// Direction is the order in which history is walked.
type Direction int

const (
	// Descending walks newest first.
	Descending Direction = iota
	// Ascending walks earliest first.
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "ascending"
	}
	return "descending"
}

// Compare orders two transactions by ledger version, then by position
// inside the ledger.
func Compare(a, b *Transaction) int {
	if c := cmp.Compare(a.Outcome.LedgerVersion, b.Outcome.LedgerVersion); c != 0 {
		return c
	}
	return cmp.Compare(a.Outcome.IndexInLedger, b.Outcome.IndexInLedger)
}

// Compare orders a and b so that "forward" in direction d sorts first.
// A positive result means a comes after b when walking in direction d.
func (d Direction) Compare(a, b *Transaction) int {
	if d == Descending {
		return Compare(b, a)
	}
	return Compare(a, b)
}

// After reports whether tx lies strictly after cursor when walking in direction d.
func (d Direction) After(tx, cursor *Transaction) bool {
	return d.Compare(tx, cursor) > 0
}

// Sort orders txs in place in direction d. The sort is stable.
func (d Direction) Sort(txs []*Transaction) {
	slices.SortStableFunc(txs, d.Compare)
}
