package transaction

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// rippleEpoch is 2000-01-01T00:00:00Z, the origin of ledger close times.
const rippleEpoch = 946684800

var typeNames = map[string]string{
	"Payment":              "payment",
	"OfferCreate":          "order",
	"OfferCancel":          "orderCancellation",
	"TrustSet":             "trustline",
	"AccountSet":           "settings",
	"SetRegularKey":        "settings",
	"SignerListSet":        "settings",
	"EscrowCreate":         "escrowCreation",
	"EscrowFinish":         "escrowExecution",
	"EscrowCancel":         "escrowCancellation",
	"PaymentChannelCreate": "paymentChannelCreate",
	"PaymentChannelFund":   "paymentChannelFund",
	"PaymentChannelClaim":  "paymentChannelClaim",
	"CheckCreate":          "checkCreate",
	"CheckCash":            "checkCash",
	"CheckCancel":          "checkCancel",
	"DepositPreauth":       "depositPreauth",
	"AccountDelete":        "accountDelete",
	"TicketCreate":         "ticketCreate",
	"EnableAmendment":      "amendment",
	"SetFee":               "feeUpdate",
}

// ledger types without a normalized name; Parse reports them unchanged
var passthroughTypes = []string{
	"AMMBid",
	"AMMClawback",
	"AMMCreate",
	"AMMDelete",
	"AMMDeposit",
	"AMMVote",
	"AMMWithdraw",
	"Clawback",
	"CredentialAccept",
	"CredentialCreate",
	"CredentialDelete",
	"DIDDelete",
	"DIDSet",
	"MPTokenAuthorize",
	"MPTokenIssuanceCreate",
	"MPTokenIssuanceDestroy",
	"MPTokenIssuanceSet",
	"NFTokenAcceptOffer",
	"NFTokenBurn",
	"NFTokenCancelOffer",
	"NFTokenCreateOffer",
	"NFTokenMint",
	"NFTokenModify",
	"OracleDelete",
	"OracleSet",
	"PermissionedDomainDelete",
	"PermissionedDomainSet",
	"UNLModify",
	"XChainAccountCreateCommit",
	"XChainAddAccountCreateAttestation",
	"XChainAddClaimAttestation",
	"XChainClaim",
	"XChainCommit",
	"XChainCreateBridge",
	"XChainCreateClaimID",
	"XChainModifyBridge",
}

// fields that end up in the normalized envelope rather than Specification.Fields
var envelopeFields = map[string]struct{}{
	"Account":         {},
	"TransactionType": {},
	"Sequence":        {},
	"Fee":             {},
	"hash":            {},
	"meta":            {},
	"metaData":        {},
	"validated":       {},
	"ledger_index":    {},
	"inLedger":        {},
	"date":            {},
	"SigningPubKey":   {},
	"TxnSignature":    {},
	"Destination":     {},
	"DestinationTag":  {},
	"SourceTag":       {},
}

// TypeName maps a ledger TransactionType to its normalized type name.
// Unknown types are returned unchanged.
func TypeName(transactionType string) string {
	if name, ok := typeNames[transactionType]; ok {
		return name
	}
	return transactionType
}

// KnownTypes returns every type name Parse can report: the normalized names,
// plus the ledger names of types that have none.
func KnownTypes() map[string]struct{} {
	known := make(map[string]struct{}, len(typeNames)+len(passthroughTypes))
	for _, name := range typeNames {
		known[name] = struct{}{}
	}
	for _, name := range passthroughTypes {
		known[name] = struct{}{}
	}
	return known
}

// Parse normalizes one transaction given in the shape returned by the tx
// method: transaction fields at the top level, plus meta, validated and
// ledger_index.
func Parse(tx map[string]any) (*Transaction, error) {
	txType, ok := tx["TransactionType"].(string)
	if !ok || txType == "" {
		return nil, fmt.Errorf("transaction is missing TransactionType")
	}
	account, ok := tx["Account"].(string)
	if !ok || account == "" {
		return nil, fmt.Errorf("transaction is missing Account")
	}

	meta, err := metaObject(tx)
	if err != nil {
		return nil, err
	}

	parsed := &Transaction{
		Type:    TypeName(txType),
		Address: account,
	}
	if seq, ok := toUint32(tx["Sequence"]); ok {
		parsed.Sequence = seq
	}
	if hash, ok := tx["hash"].(string); ok {
		parsed.ID = hash
	}

	parsed.Specification = parseSpecification(txType, tx)
	parsed.Outcome = parseOutcome(tx, meta)
	return parsed, nil
}

func metaObject(tx map[string]any) (map[string]any, error) {
	raw, ok := tx["meta"]
	if !ok || raw == nil {
		raw = tx["metaData"]
	}
	switch m := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m, nil
	default:
		return nil, fmt.Errorf("transaction meta has unexpected type %T", raw)
	}
}

func parseSpecification(txType string, tx map[string]any) Specification {
	spec := Specification{
		Source: &Party{Address: tx["Account"].(string)},
	}
	if tag, ok := toUint32(tx["SourceTag"]); ok {
		spec.Source.Tag = &tag
	}
	if dest, ok := tx["Destination"].(string); ok && dest != "" {
		spec.Destination = &Party{Address: dest}
		if tag, ok := toUint32(tx["DestinationTag"]); ok {
			spec.Destination.Tag = &tag
		}
	}

	switch txType {
	case "TrustSet":
		spec.Counterparty = issuerOf(tx["LimitAmount"])
	case "OfferCreate":
		if issuer := issuerOf(tx["TakerGets"]); issuer != "" {
			spec.Counterparty = issuer
		} else {
			spec.Counterparty = issuerOf(tx["TakerPays"])
		}
	}

	for k, v := range tx {
		if _, skip := envelopeFields[k]; skip {
			continue
		}
		if spec.Fields == nil {
			spec.Fields = make(map[string]any)
		}
		spec.Fields[k] = v
	}
	return spec
}

func parseOutcome(tx, meta map[string]any) Outcome {
	var out Outcome
	if fee, ok := tx["Fee"]; ok {
		out.Fee = toString(fee)
	}
	if v, ok := toUint32(tx["ledger_index"]); ok {
		out.LedgerVersion = v
	} else if v, ok := toUint32(tx["inLedger"]); ok {
		out.LedgerVersion = v
	}
	if date, ok := toUint64(tx["date"]); ok {
		out.Timestamp = time.Unix(int64(date)+rippleEpoch, 0).UTC()
	}
	if meta != nil {
		if result, ok := meta["TransactionResult"].(string); ok {
			out.Result = result
		}
		if idx, ok := toUint32(meta["TransactionIndex"]); ok {
			out.IndexInLedger = idx
		}
	}
	return out
}

func issuerOf(amount any) string {
	obj, ok := amount.(map[string]any)
	if !ok {
		return ""
	}
	issuer, _ := obj["issuer"].(string)
	return issuer
}

func toString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case json.Number:
		return n.String()
	default:
		if u, ok := toUint64(v); ok {
			return strconv.FormatUint(u, 10)
		}
		return fmt.Sprint(v)
	}
}

func toUint32(v any) (uint32, bool) {
	u, ok := toUint64(v)
	if !ok || u > math.MaxUint32 {
		return 0, false
	}
	return uint32(u), true
}

// toUint64 accepts the numeric shapes produced by encoding/json and by the
// binary codec.
func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, false
		}
		return uint64(n), true
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		return u, err == nil
	default:
		return 0, false
	}
}
