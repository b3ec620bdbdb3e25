package history

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
	"github.com/tidepay/tidepay-go/internal/log"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
	"github.com/tidepay/tidepay-go/internal/validate"
)

// DefaultCacheSize is the number of resolved transactions kept by a Resolver.
const DefaultCacheSize = 1024

// TxFetcher issues tx calls.
type TxFetcher interface {
	Tx(ctx context.Context, req rpc_types.TxRequest) (rpc_types.TxResponse, error)
}

// Resolver looks up single transactions with the tx method. Validated
// transactions never change, so resolved ones are cached.
type Resolver struct {
	node   TxFetcher
	cache  *lru.Cache[string, *transaction.Transaction]
	group  singleflight.Group
	logger *zap.SugaredLogger
}

// NewResolver creates a resolver caching up to cacheSize transactions.
func NewResolver(node TxFetcher, cacheSize int, logger *zap.SugaredLogger) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *transaction.Transaction](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating transaction cache: %w", err)
	}
	return &Resolver{
		node:   node,
		cache:  cache,
		logger: log.OrNop(logger),
	}, nil
}

// GetTransaction returns the validated transaction with the given id.
// The returned value is shared and must not be modified.
func (r *Resolver) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	if err := validate.TransactionID("id", id); err != nil {
		return nil, err
	}
	id = strings.ToUpper(id)

	if tx, ok := r.cache.Get(id); ok {
		return tx, nil
	}

	// Shared lookups are not canceled with the caller that started them.
	callCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(id, func() (any, error) {
		return r.fetch(callCtx, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*transaction.Transaction), nil
	}
}

func (r *Resolver) fetch(ctx context.Context, id string) (*transaction.Transaction, error) {
	resp, err := r.node.Tx(ctx, rpc_types.TxRequest{Transaction: id})
	if err != nil {
		if rpc_types.IsTxnNotFound(err) {
			return nil, &NotFoundError{ID: id, Reason: "unknown to the node"}
		}
		return nil, err
	}

	if validated, _ := resp["validated"].(bool); !validated {
		return nil, &NotFoundError{ID: id, Reason: "not in a validated ledger"}
	}

	tx, err := transaction.Parse(resp)
	if err != nil {
		return nil, fmt.Errorf("parsing transaction %s: %w", id, err)
	}
	if tx.ID == "" {
		tx.ID = id
	}

	r.cache.Add(id, tx)
	r.logger.Debugw("resolved transaction", "id", id, "ledger", tx.Outcome.LedgerVersion)
	return tx, nil
}
