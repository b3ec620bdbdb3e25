package history

import (
	"fmt"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

// Page is one formatted account_tx page.
type Page struct {
	Marker rpc_types.Marker
	// Fetched is the number of records the node returned.
	Fetched int
	Results []*transaction.Transaction
}

// FormatPage keeps the validated records of page that pass chain, in the
// order the node returned them.
func FormatPage(n *Normalizer, chain Chain, address string, opts *Options, page *rpc_types.AccountTxResponse) (*Page, error) {
	formatted := &Page{
		Marker:  page.Marker,
		Fetched: len(page.Transactions),
	}
	for i, rec := range page.Transactions {
		if !rec.Validated {
			continue
		}
		tx, err := n.Normalize(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if chain.Keep(address, opts, tx) {
			formatted.Results = append(formatted.Results, tx)
		}
	}
	return formatted, nil
}
