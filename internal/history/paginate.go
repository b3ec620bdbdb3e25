package history

import (
	"context"
	"fmt"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

// Page size bounds accepted by account_tx.
const (
	MinPageSize = 10
	MaxPageSize = 400
)

// PageSize returns the number of records to request when remaining more
// results are wanted. remaining <= 0 means no limit.
func PageSize(remaining int) int {
	if remaining <= 0 {
		return MaxPageSize
	}
	return min(max(remaining, MinPageSize), MaxPageSize)
}

// PageFetcher fetches and formats the page starting at marker.
type PageFetcher func(ctx context.Context, marker rpc_types.Marker, pageSize int) (*Page, error)

// GetRecursive follows markers until the node runs out of pages or limit
// results have been collected. limit <= 0 collects everything. Results
// past limit are dropped.
func GetRecursive(ctx context.Context, fetch PageFetcher, limit int) ([]*transaction.Transaction, error) {
	var (
		results []*transaction.Transaction
		marker  rpc_types.Marker
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		remaining := 0
		if limit > 0 {
			remaining = limit - len(results)
		}
		page, err := fetch(ctx, marker, PageSize(remaining))
		if err != nil {
			return nil, err
		}
		results = append(results, page.Results...)

		if limit > 0 && len(results) >= limit {
			return results[:limit], nil
		}
		if page.Marker.IsZero() {
			return results, nil
		}
		if !marker.IsZero() && page.Marker.Equal(marker) {
			return nil, fmt.Errorf("node returned marker %s twice", marker)
		}
		marker = page.Marker
	}
}
