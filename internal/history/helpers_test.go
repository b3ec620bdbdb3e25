package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

const (
	account = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	other   = "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"
	issuer  = "rf1BiGeXwwQoi8Z2ueFYTEXSwuJYfV2Jpn"
)

func txID(ledger, index uint32) string {
	return fmt.Sprintf("%064X", uint64(ledger)<<16|uint64(index))
}

func txAt(ledger, index uint32) *transaction.Transaction {
	return &transaction.Transaction{
		Type:    "payment",
		Address: account,
		ID:      txID(ledger, index),
		Outcome: transaction.Outcome{
			Result:        transaction.ResultSuccess,
			LedgerVersion: ledger,
			IndexInLedger: index,
		},
	}
}

// record builds a validated plain account_tx entry for a payment from -> to.
func record(from, to string, ledger, index uint32, result string) rpc_types.AccountTransaction {
	return rpc_types.AccountTransaction{
		Tx: map[string]any{
			"TransactionType": "Payment",
			"Account":         from,
			"Destination":     to,
			"Amount":          "1000",
			"Fee":             "12",
			"Sequence":        float64(index + 1),
			"hash":            txID(ledger, index),
		},
		Meta:        json.RawMessage(fmt.Sprintf(`{"TransactionResult":%q,"TransactionIndex":%d}`, result, index)),
		LedgerIndex: ledger,
		Validated:   true,
	}
}

func ok(ledger, index uint32) rpc_types.AccountTransaction {
	return record(account, other, ledger, index, transaction.ResultSuccess)
}

func keys(txs []*transaction.Transaction) [][2]uint32 {
	out := make([][2]uint32, len(txs))
	for i, tx := range txs {
		out[i] = [2]uint32{tx.Outcome.LedgerVersion, tx.Outcome.IndexInLedger}
	}
	return out
}

type mockNode struct {
	mock.Mock
}

func (m *mockNode) AccountTx(ctx context.Context, req rpc_types.AccountTxRequest) (*rpc_types.AccountTxResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*rpc_types.AccountTxResponse)
	return resp, args.Error(1)
}

func (m *mockNode) Tx(ctx context.Context, req rpc_types.TxRequest) (rpc_types.TxResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(rpc_types.TxResponse)
	return resp, args.Error(1)
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*transaction.Transaction)
	return tx, args.Error(1)
}

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) HasCompleteLedgerRange(ctx context.Context, minLedger, maxLedger int64) (bool, error) {
	args := m.Called(ctx, minLedger, maxLedger)
	return args.Bool(0), args.Error(1)
}

func markerIs(raw string) any {
	return mock.MatchedBy(func(req rpc_types.AccountTxRequest) bool {
		if raw == "" {
			return req.Marker.IsZero()
		}
		return req.Marker.Equal(rpc_types.Marker(raw))
	})
}

type fakeCodec struct {
	blobs map[string]map[string]any
}

func (f fakeCodec) Decode(blob string) (map[string]any, error) {
	decoded, ok := f.blobs[blob]
	if !ok {
		return nil, fmt.Errorf("unknown blob %q", blob)
	}
	out := make(map[string]any, len(decoded))
	for k, v := range decoded {
		out[k] = v
	}
	return out, nil
}

func (f fakeCodec) ComputeTransactionHash(tx map[string]any) (string, error) {
	if _, ok := tx["hash"]; ok {
		return "", fmt.Errorf("hash computed over a transaction that already has one")
	}
	return "HASH-" + tx["Account"].(string), nil
}
