package history

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
	"github.com/tidepay/tidepay-go/internal/metrics"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
	"github.com/tidepay/tidepay-go/internal/validate"
)

type fixture struct {
	node    *mockNode
	lookup  *mockLookup
	oracle  *mockOracle
	service *Service
}

func newFixture() *fixture {
	f := &fixture{node: &mockNode{}, lookup: &mockLookup{}, oracle: &mockOracle{}}
	f.service = NewService(f.node, f.lookup, f.oracle, NewNormalizer(nil, nil), nil,
		metrics.NewMetrics(prometheus.NewRegistry(), "test"))
	return f
}

func page(marker string, txs ...rpc_types.AccountTransaction) *rpc_types.AccountTxResponse {
	resp := &rpc_types.AccountTxResponse{Account: account, Transactions: txs}
	if marker != "" {
		resp.Marker = rpc_types.Marker(marker)
	}
	return resp
}

func TestGetTransactionsTwoPages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := mock.MatchedBy(func(req rpc_types.AccountTxRequest) bool {
		return req.Marker.IsZero() &&
			req.Account == account &&
			req.LedgerIndexMin == -1 &&
			req.LedgerIndexMax == -1 &&
			req.Forward &&
			!req.Binary &&
			req.Limit == 10
	})
	f.node.On("AccountTx", mock.Anything, first).
		Return(page(`"M1"`, ok(100, 0), ok(100, 1), ok(101, 0), ok(102, 3), ok(103, 0)), nil).Once()
	f.node.On("AccountTx", mock.Anything, markerIs(`"M1"`)).
		Return(page("", ok(104, 0), ok(105, 2), ok(106, 0)), nil).Once()
	f.oracle.On("HasCompleteLedgerRange", mock.Anything, int64(0), int64(106)).Return(true, nil).Once()

	txs, err := f.service.GetTransactions(ctx, account, Options{EarliestFirst: true, Limit: 8})
	require.NoError(t, err)

	assert.Equal(t, [][2]uint32{
		{100, 0}, {100, 1}, {101, 0}, {102, 3}, {103, 0}, {104, 0}, {105, 2}, {106, 0},
	}, keys(txs))
	f.node.AssertExpectations(t)
	f.oracle.AssertExpectations(t)
}

func TestGetTransactionsSortsAndNeverDuplicates(t *testing.T) {
	f := newFixture()
	f.node.On("AccountTx", mock.Anything, markerIs("")).
		Return(page(`{"ledger":50,"seq":0}`, ok(52, 1), ok(52, 0), ok(53, 0)), nil).Once()
	f.node.On("AccountTx", mock.Anything, markerIs(`{"ledger":50,"seq":0}`)).
		Return(page("", ok(51, 4), ok(50, 0)), nil).Once()
	f.oracle.On("HasCompleteLedgerRange", mock.Anything, int64(0), int64(-1)).Return(true, nil)

	txs, err := f.service.GetTransactions(context.Background(), account, Options{})
	require.NoError(t, err)

	assert.Equal(t, [][2]uint32{{53, 0}, {52, 1}, {52, 0}, {51, 4}, {50, 0}}, keys(txs))
	seen := make(map[string]bool)
	for _, tx := range txs {
		assert.False(t, seen[tx.ID], "duplicate %s", tx.ID)
		seen[tx.ID] = true
	}
}

func TestGetTransactionsNarrowsGapCheckNewestFirst(t *testing.T) {
	f := newFixture()
	f.node.On("AccountTx", mock.Anything, mock.MatchedBy(func(req rpc_types.AccountTxRequest) bool {
		return !req.Forward && req.Limit == 10
	})).Return(page(`"MORE"`, ok(200, 0), ok(199, 0), ok(198, 0), ok(197, 0)), nil).Once()
	f.oracle.On("HasCompleteLedgerRange", mock.Anything, int64(198), int64(-1)).Return(true, nil).Once()

	txs, err := f.service.GetTransactions(context.Background(), account, Options{Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, [][2]uint32{{200, 0}, {199, 0}, {198, 0}}, keys(txs))
	f.oracle.AssertExpectations(t)
}

func TestGetTransactionsDoesNotNarrowBelowLimit(t *testing.T) {
	f := newFixture()
	f.node.On("AccountTx", mock.Anything, mock.MatchedBy(func(req rpc_types.AccountTxRequest) bool {
		return req.LedgerIndexMin == 150 && req.LedgerIndexMax == 300
	})).Return(page("", ok(250, 0), ok(160, 0)), nil).Once()
	f.oracle.On("HasCompleteLedgerRange", mock.Anything, int64(150), int64(300)).Return(true, nil).Once()

	txs, err := f.service.GetTransactions(context.Background(), account,
		Options{MinLedgerVersion: 150, MaxLedgerVersion: 300, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	f.oracle.AssertExpectations(t)
}

func TestGetTransactionsNotCheckGapsSkipsOracle(t *testing.T) {
	f := newFixture()
	f.node.On("AccountTx", mock.Anything, mock.Anything).Return(page("", ok(10, 0)), nil).Once()

	txs, err := f.service.GetTransactions(context.Background(), account, Options{NotCheckGaps: true, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	f.oracle.AssertNotCalled(t, "HasCompleteLedgerRange", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetTransactionsMissingLedgerHistory(t *testing.T) {
	f := newFixture()
	f.node.On("AccountTx", mock.Anything, mock.Anything).Return(page("", ok(10, 0)), nil).Once()
	f.oracle.On("HasCompleteLedgerRange", mock.Anything, int64(5), int64(-1)).Return(false, nil).Once()

	txs, err := f.service.GetTransactions(context.Background(), account, Options{MinLedgerVersion: 5})
	require.Error(t, err)
	assert.Nil(t, txs)

	var missing *MissingLedgerHistoryError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, int64(5), missing.MinLedgerVersion)
	assert.Equal(t, int64(-1), missing.MaxLedgerVersion)
}

func TestGetTransactionsOracleError(t *testing.T) {
	f := newFixture()
	boom := errors.New("server_info failed")
	f.node.On("AccountTx", mock.Anything, mock.Anything).Return(page(""), nil).Once()
	f.oracle.On("HasCompleteLedgerRange", mock.Anything, mock.Anything, mock.Anything).Return(false, boom).Once()

	_, err := f.service.GetTransactions(context.Background(), account, Options{})
	require.ErrorIs(t, err, boom)
}

func TestGetTransactionsResumesFromStart(t *testing.T) {
	f := newFixture()
	start := txAt(150, 3)

	f.lookup.On("GetTransaction", mock.Anything, start.ID).Return(start, nil).Once()
	f.node.On("AccountTx", mock.Anything, mock.MatchedBy(func(req rpc_types.AccountTxRequest) bool {
		return req.LedgerIndexMax == 150 && req.LedgerIndexMin == -1 && !req.Forward
	})).Return(page("", ok(150, 5), ok(150, 3), ok(150, 2), ok(149, 1)), nil).Once()
	f.oracle.On("HasCompleteLedgerRange", mock.Anything, int64(0), int64(150)).Return(true, nil).Once()

	txs, err := f.service.GetTransactions(context.Background(), account, Options{Start: start.ID})
	require.NoError(t, err)

	assert.Equal(t, [][2]uint32{{150, 2}, {149, 1}}, keys(txs), "start transaction is never returned")
	f.lookup.AssertExpectations(t)
	f.oracle.AssertExpectations(t)
}

func TestGetTransactionsResumesFromStartTxEarliestFirst(t *testing.T) {
	f := newFixture()
	start := txAt(70, 1)

	f.node.On("AccountTx", mock.Anything, mock.MatchedBy(func(req rpc_types.AccountTxRequest) bool {
		return req.LedgerIndexMin == 70 && req.LedgerIndexMax == -1 && req.Forward
	})).Return(page("", ok(70, 0), ok(70, 1), ok(70, 2), ok(71, 0)), nil).Once()
	f.oracle.On("HasCompleteLedgerRange", mock.Anything, int64(70), int64(-1)).Return(true, nil).Once()

	txs, err := f.service.GetTransactions(context.Background(), account, Options{StartTx: start, EarliestFirst: true})
	require.NoError(t, err)

	assert.Equal(t, [][2]uint32{{70, 2}, {71, 0}}, keys(txs))
	f.lookup.AssertNotCalled(t, "GetTransaction", mock.Anything, mock.Anything)
}

func TestGetTransactionsStartLookupFails(t *testing.T) {
	f := newFixture()
	id := txID(1, 1)
	f.lookup.On("GetTransaction", mock.Anything, id).Return(nil, &NotFoundError{ID: id, Reason: "unknown to the node"}).Once()

	_, err := f.service.GetTransactions(context.Background(), account, Options{Start: id})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	f.node.AssertNotCalled(t, "AccountTx", mock.Anything, mock.Anything)
}

func TestGetTransactionsValidationFailsFast(t *testing.T) {
	tests := []struct {
		name    string
		address string
		opts    Options
	}{
		{"bad address", "not-an-address", Options{}},
		{"negative limit", account, Options{Limit: -1}},
		{"inverted range", account, Options{MinLedgerVersion: 10, MaxLedgerVersion: 5}},
		{"range beyond ledger versions", account, Options{MinLedgerVersion: 1<<32 + 10, MaxLedgerVersion: 1<<32 + 100}},
		{"unknown type", account, Options{Types: []string{"teleport"}}},
		{"ledger name of a normalized type", account, Options{Types: []string{"Payment"}}},
		{"bad counterparty", account, Options{Counterparty: "rBogus"}},
		{"bad start", account, Options{Start: "XYZ"}},
		{"start and startTx", account, Options{Start: txID(1, 1), StartTx: txAt(1, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.service.GetTransactions(context.Background(), tt.address, tt.opts)

			var vErr *validate.ValidationError
			require.ErrorAs(t, err, &vErr)
			f.node.AssertNotCalled(t, "AccountTx", mock.Anything, mock.Anything)
			f.lookup.AssertNotCalled(t, "GetTransaction", mock.Anything, mock.Anything)
			f.oracle.AssertNotCalled(t, "HasCompleteLedgerRange", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGetTransactionsAppliesFilters(t *testing.T) {
	f := newFixture()
	f.node.On("AccountTx", mock.Anything, mock.Anything).Return(page("",
		record(account, other, 30, 0, "tesSUCCESS"),
		record(account, other, 29, 0, "tecPATH_DRY"),
		record(other, account, 28, 0, "tesSUCCESS"),
	), nil).Once()

	txs, err := f.service.GetTransactions(context.Background(), account, Options{
		ExcludeFailures: true,
		Initiated:       boolPtr(true),
		Types:           []string{"payment"},
		NotCheckGaps:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]uint32{{30, 0}}, keys(txs))
	for _, tx := range txs {
		assert.Equal(t, transaction.ResultSuccess, tx.Outcome.Result)
	}
}

func TestGetTransactionsPropagatesNodeErrors(t *testing.T) {
	f := newFixture()
	nodeErr := rpc_types.NewRpcError(rpc_types.MethodAccountTx, rpc_types.RpcACT_NOT_FOUND, rpc_types.ErrActNotFound, "Account not found.")
	f.node.On("AccountTx", mock.Anything, mock.Anything).Return(nil, nodeErr).Once()

	_, err := f.service.GetTransactions(context.Background(), account, Options{})

	var rpcErr *rpc_types.RpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, rpc_types.ErrActNotFound, rpcErr.ErrorString)
	f.oracle.AssertNotCalled(t, "HasCompleteLedgerRange", mock.Anything, mock.Anything, mock.Anything)
}
