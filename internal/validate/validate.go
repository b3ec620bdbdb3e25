// Package validate checks caller input before any RPC call is issued.
package validate

import (
	"encoding/hex"
	"fmt"
	"math"
	"slices"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
	"go.uber.org/multierr"
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Errors splits an aggregated validation error into its parts.
func Errors(err error) []error {
	return multierr.Errors(err)
}

// Address checks that v is a classic account address.
func Address(field, v string) error {
	if v == "" {
		return invalid(field, "address is required")
	}
	if !addresscodec.IsValidClassicAddress(v) {
		return invalid(field, "%q is not a valid classic address", v)
	}
	return nil
}

// TransactionID checks that v is a 256-bit hex transaction id.
func TransactionID(field, v string) error {
	if len(v) != 64 {
		return invalid(field, "transaction id must be 64 hex characters, got %d", len(v))
	}
	if _, err := hex.DecodeString(v); err != nil {
		return invalid(field, "transaction id is not hex")
	}
	return nil
}

// SignedTransaction checks that blob is a non-empty hex encoded transaction.
func SignedTransaction(blob string) error {
	if blob == "" {
		return invalid("signedTransaction", "blob is required")
	}
	if len(blob)%2 != 0 {
		return invalid("signedTransaction", "blob has an odd number of hex characters")
	}
	if _, err := hex.DecodeString(blob); err != nil {
		return invalid("signedTransaction", "blob is not hex")
	}
	return nil
}

// LedgerRange checks explicit ledger bounds. Zero means unset and -1 means
// "most recent" for max.
func LedgerRange(minLedger, maxLedger int64) error {
	var err error
	if minLedger < 0 {
		err = multierr.Append(err, invalid("minLedgerVersion", "must be a positive ledger version, got %d", minLedger))
	} else if minLedger > math.MaxUint32 {
		err = multierr.Append(err, invalid("minLedgerVersion", "%d exceeds the largest ledger version", minLedger))
	}
	if maxLedger < -1 {
		err = multierr.Append(err, invalid("maxLedgerVersion", "must be a positive ledger version, got %d", maxLedger))
	} else if maxLedger > math.MaxUint32 {
		err = multierr.Append(err, invalid("maxLedgerVersion", "%d exceeds the largest ledger version", maxLedger))
	}
	if minLedger > 0 && maxLedger > 0 && minLedger > maxLedger {
		err = multierr.Append(err, invalid("minLedgerVersion", "%d is greater than maxLedgerVersion %d", minLedger, maxLedger))
	}
	return err
}

// Limit checks a result cap. Zero means unbounded.
func Limit(limit int) error {
	if limit < 0 {
		return invalid("limit", "must not be negative, got %d", limit)
	}
	return nil
}

// OneOf checks that every value is in allowed.
func OneOf(field string, values []string, allowed map[string]struct{}) error {
	var err error
	for _, v := range values {
		if _, ok := allowed[v]; !ok {
			err = multierr.Append(err, invalid(field, "unknown value %q", v))
		}
	}
	return err
}

// Exclusive fails when more than one of the named options is set.
func Exclusive(set map[string]bool) error {
	var names []string
	for name, isSet := range set {
		if isSet {
			names = append(names, name)
		}
	}
	if len(names) > 1 {
		slices.Sort(names)
		return &ValidationError{Reason: fmt.Sprintf("options %v cannot be combined", names)}
	}
	return nil
}
