package ranges

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tidepay/tidepay-go/internal/log"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

// DefaultEarliestLedger is the first ledger still held by the main network;
// earlier ledgers were lost.
const DefaultEarliestLedger uint32 = 32570

// ServerInfoGetter is the node call the oracle needs.
type ServerInfoGetter interface {
	ServerInfo(ctx context.Context) (*rpc_types.ServerInfoResponse, error)
}

// Oracle answers whether a node holds every validated ledger of a span.
// Concurrent queries share one in-flight server_info call.
type Oracle struct {
	node     ServerInfoGetter
	earliest uint32
	group    singleflight.Group
	logger   *zap.SugaredLogger
}

// NewOracle creates an oracle. earliest replaces an unset lower bound;
// zero selects DefaultEarliestLedger.
func NewOracle(node ServerInfoGetter, earliest uint32, logger *zap.SugaredLogger) *Oracle {
	if earliest == 0 {
		earliest = DefaultEarliestLedger
	}
	return &Oracle{
		node:     node,
		earliest: earliest,
		logger:   log.OrNop(logger),
	}
}

// Snapshot is the node's ledger holdings at one point in time.
type Snapshot struct {
	Complete        *CompleteLedgerSet
	LatestValidated uint32
}

// Snapshot fetches and parses the node's complete ledgers. The server_info
// call is shared with concurrent callers and is not canceled with ctx; a
// canceled caller stops waiting and gets ctx.Err().
func (o *Oracle) Snapshot(ctx context.Context) (*Snapshot, error) {
	callCtx := context.WithoutCancel(ctx)
	ch := o.group.DoChan(rpc_types.MethodServerInfo, func() (any, error) {
		resp, err := o.node.ServerInfo(callCtx)
		if err != nil {
			return nil, err
		}
		set, err := Parse(resp.Info.CompleteLedgers)
		if err != nil {
			return nil, err
		}
		snap := &Snapshot{Complete: set}
		if resp.Info.ValidatedLedger != nil {
			snap.LatestValidated = resp.Info.ValidatedLedger.Seq
		} else if _, hi, ok := set.Range(); ok {
			snap.LatestValidated = hi
		}
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("fetching complete ledgers: %w", res.Err)
		}
		if res.Shared {
			o.logger.Debugw("shared in-flight server_info call")
		}
		return res.Val.(*Snapshot), nil
	}
}

// RangeCheck is the result of checking one span against a snapshot.
type RangeCheck struct {
	Min      uint32        `json:"min"`
	Max      uint32        `json:"max"`
	Complete bool          `json:"complete"`
	Gaps     []LedgerRange `json:"gaps,omitempty"`
}

// Check resolves unset bounds and checks [minLedger, maxLedger] against the
// node's complete ledgers. minLedger <= 0 means the earliest ledger of the
// network and maxLedger <= 0 the latest validated ledger.
func (o *Oracle) Check(ctx context.Context, minLedger, maxLedger int64) (*RangeCheck, error) {
	if minLedger > math.MaxUint32 || maxLedger > math.MaxUint32 {
		return nil, fmt.Errorf("ledger range [%d, %d] exceeds the largest ledger version", minLedger, maxLedger)
	}
	snap, err := o.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	check := &RangeCheck{Min: uint32(minLedger), Max: uint32(maxLedger)}
	if minLedger <= 0 {
		check.Min = o.earliest
	}
	if maxLedger <= 0 {
		check.Max = snap.LatestValidated
	}

	check.Complete = snap.Complete.ContainsRange(check.Min, check.Max)
	if !check.Complete {
		check.Gaps = snap.Complete.Gaps(check.Min, check.Max)
		o.logger.Warnw("node is missing ledgers in range",
			"min", check.Min,
			"max", check.Max,
			"gaps", check.Gaps,
			"complete_ledgers", snap.Complete.String(),
		)
	}
	return check, nil
}

// HasCompleteLedgerRange reports whether every ledger in [minLedger, maxLedger]
// is held by the node. Bounds are resolved as in Check.
func (o *Oracle) HasCompleteLedgerRange(ctx context.Context, minLedger, maxLedger int64) (bool, error) {
	check, err := o.Check(ctx, minLedger, maxLedger)
	if err != nil {
		return false, err
	}
	return check.Complete, nil
}
