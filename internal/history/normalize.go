package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/tidepay/tidepay-go/internal/ledger/transaction"
	"github.com/tidepay/tidepay-go/internal/rpc/rpc_types"
)

// Decoder decodes binary transactions and metadata.
type Decoder interface {
	Decode(blob string) (map[string]any, error)
}

// Hasher computes the id of a decoded transaction.
type Hasher interface {
	ComputeTransactionHash(tx map[string]any) (string, error)
}

// Normalizer turns account_tx records into normalized transactions.
type Normalizer struct {
	decoder Decoder
	hasher  Hasher
}

// NewNormalizer creates a normalizer. The decoder and hasher are only used
// for binary records.
func NewNormalizer(decoder Decoder, hasher Hasher) *Normalizer {
	return &Normalizer{decoder: decoder, hasher: hasher}
}

// Normalize converts one account_tx record. account_tx nests the
// transaction under "tx" while tx returns it at the top level, so the
// record is flattened into the tx shape before parsing.
func (n *Normalizer) Normalize(rec rpc_types.AccountTransaction) (*transaction.Transaction, error) {
	var (
		tx   map[string]any
		meta map[string]any
		err  error
	)
	if rec.IsBinary() {
		tx, meta, err = n.decodeBinary(rec)
	} else {
		tx, meta, err = decodePlain(rec)
	}
	if err != nil {
		return nil, err
	}

	merged := maps.Clone(tx)
	if merged == nil {
		merged = make(map[string]any)
	}
	if meta != nil {
		merged["meta"] = meta
	}
	merged["validated"] = rec.Validated

	parsed, err := transaction.Parse(merged)
	if err != nil {
		return nil, fmt.Errorf("parsing transaction: %w", err)
	}
	return parsed, nil
}

func (n *Normalizer) decodeBinary(rec rpc_types.AccountTransaction) (map[string]any, map[string]any, error) {
	if n.decoder == nil || n.hasher == nil {
		return nil, nil, fmt.Errorf("binary record received without a codec")
	}
	tx, err := n.decoder.Decode(rec.TxBlob)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding transaction blob: %w", err)
	}
	hash, err := n.hasher.ComputeTransactionHash(tx)
	if err != nil {
		return nil, nil, fmt.Errorf("computing transaction hash: %w", err)
	}
	tx["hash"] = hash
	tx["ledger_index"] = rec.LedgerIndex

	var metaBlob string
	if len(rec.Meta) > 0 {
		if err := json.Unmarshal(rec.Meta, &metaBlob); err != nil {
			return nil, nil, fmt.Errorf("binary meta is not a string: %w", err)
		}
	}
	if metaBlob == "" {
		return tx, nil, nil
	}
	meta, err := n.decoder.Decode(metaBlob)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding meta blob: %w", err)
	}
	return tx, meta, nil
}

func decodePlain(rec rpc_types.AccountTransaction) (map[string]any, map[string]any, error) {
	tx := maps.Clone(rec.Tx)
	if tx == nil {
		return nil, nil, fmt.Errorf("record has neither tx nor tx_blob")
	}
	if _, ok := tx["ledger_index"]; !ok && rec.LedgerIndex != 0 {
		tx["ledger_index"] = rec.LedgerIndex
	}

	var meta map[string]any
	if len(rec.Meta) > 0 && !bytes.Equal(bytes.TrimSpace(rec.Meta), []byte("null")) {
		if err := json.Unmarshal(rec.Meta, &meta); err != nil {
			return nil, nil, fmt.Errorf("decoding meta: %w", err)
		}
	}
	return tx, meta, nil
}
