// Package transaction defines the normalized form of a ledger transaction
// returned by the history and lookup APIs, and the parser that produces it.
package transaction

import "time"

// Transaction is a validated transaction in normalized form.
type Transaction struct {
	Type          string        `json:"type"`
	Address       string        `json:"address"`
	Sequence      uint32        `json:"sequence"`
	ID            string        `json:"id"`
	Specification Specification `json:"specification"`
	Outcome       Outcome       `json:"outcome"`
}

// Specification holds what the initiator asked the ledger to do.
type Specification struct {
	Source       *Party         `json:"source,omitempty"`
	Destination  *Party         `json:"destination,omitempty"`
	Counterparty string         `json:"counterparty,omitempty"`
	Fields       map[string]any `json:"fields,omitempty"`
}

// Party is one side of a transaction.
type Party struct {
	Address string  `json:"address"`
	Tag     *uint32 `json:"tag,omitempty"`
}

// Outcome holds what the ledger did with the transaction.
type Outcome struct {
	Result        string    `json:"result"`
	LedgerVersion uint32    `json:"ledgerVersion"`
	IndexInLedger uint32    `json:"indexInLedger"`
	Fee           string    `json:"fee,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitempty"`
}

// DestinationAddress returns the destination address or "".
func (t *Transaction) DestinationAddress() string {
	if t.Specification.Destination == nil {
		return ""
	}
	return t.Specification.Destination.Address
}

// Succeeded reports whether the engine result is tesSUCCESS.
func (t *Transaction) Succeeded() bool {
	return t.Outcome.Result == ResultSuccess
}

// ResultSuccess is the engine result of a transaction that applied cleanly.
const ResultSuccess = "tesSUCCESS"
