package history

import "fmt"

// MissingLedgerHistoryError is returned when the node does not hold every
// ledger of the searched range, so transactions may be missing from the result.
type MissingLedgerHistoryError struct {
	MinLedgerVersion int64
	MaxLedgerVersion int64
}

func (e *MissingLedgerHistoryError) Error() string {
	return fmt.Sprintf("server is missing ledger history in the specified range [%s, %s]",
		ledgerBound(e.MinLedgerVersion, "earliest"), ledgerBound(e.MaxLedgerVersion, "latest"))
}

func ledgerBound(v int64, unset string) string {
	if v <= 0 {
		return unset
	}
	return fmt.Sprint(v)
}

// NotFoundError is returned when a transaction id does not resolve to a
// validated transaction.
type NotFoundError struct {
	ID     string
	Reason string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found: %s", e.ID, e.Reason)
}
