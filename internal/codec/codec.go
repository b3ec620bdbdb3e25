// Package codec decodes binary ledger objects and computes transaction ids.
package codec

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	binarycodec "github.com/Peersyst/xrpl-go/binary-codec"
)

// Hash prefix for transaction ids: "TXN\x00"
var transactionIDPrefix = []byte{0x54, 0x58, 0x4E, 0x00}

// XRPL implements the history decoder and hasher on top of the xrpl-go codec.
type XRPL struct{}

// Decode decodes a hex encoded transaction or metadata blob.
func (XRPL) Decode(blob string) (map[string]any, error) {
	return Decode(blob)
}

// ComputeTransactionHash returns the id of a decoded transaction.
func (XRPL) ComputeTransactionHash(tx map[string]any) (string, error) {
	return ComputeTransactionHash(tx)
}

// Decode decodes a hex encoded transaction or metadata blob.
func Decode(blob string) (map[string]any, error) {
	decoded, err := binarycodec.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding blob: %w", err)
	}
	return decoded, nil
}

// ComputeTransactionHash re-encodes a decoded transaction and returns its id.
// tx must not carry fields outside the signed transaction (hash, meta...).
func ComputeTransactionHash(tx map[string]any) (string, error) {
	blob, err := binarycodec.Encode(tx)
	if err != nil {
		return "", fmt.Errorf("encoding transaction: %w", err)
	}
	return HashTxBlob(blob)
}

// HashTxBlob returns the id of a signed transaction blob.
func HashTxBlob(blob string) (string, error) {
	raw, err := hex.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("transaction blob is not hex: %w", err)
	}
	data := make([]byte, 0, len(transactionIDPrefix)+len(raw))
	data = append(data, transactionIDPrefix...)
	data = append(data, raw...)
	hash := Sha512Half(data)
	return strings.ToUpper(hex.EncodeToString(hash[:])), nil
}

// Sha512Half returns the first 32 bytes of the SHA-512 of msg.
func Sha512Half(msg []byte) [32]byte {
	h := sha512.Sum512(msg)
	var result [32]byte
	copy(result[:], h[:32])
	return result
}
