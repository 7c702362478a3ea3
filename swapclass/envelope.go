package swapclass

import (
	"fmt"
	"math/big"
)

// TxStatus is the on-chain execution outcome of the transaction.
type TxStatus string

const (
	StatusSuccess TxStatus = "success"
	StatusFailed  TxStatus = "failed"
)

// ActionKind discriminates the RawAction variants. The set is closed: the
// fallback reconstructor type-switches over every kind it consumes, and
// anything an adapter cannot map must be emitted as ActionOther, never dropped
// into a half-filled transfer.
type ActionKind string

const (
	ActionSwap           ActionKind = "swap"
	ActionRoute          ActionKind = "route"
	ActionNativeTransfer ActionKind = "native_transfer"
	ActionTokenTransfer  ActionKind = "token_transfer"
	ActionOther          ActionKind = "other"
)

// RawBalanceChange is one ledger entry for an (account owner, asset) pair.
// Amounts are raw base units carried as big integers; they are never
// normalized to decimal before delta collection (see CollectDeltas).
type RawBalanceChange struct {
	Owner    string   `json:"owner"`
	Asset    string   `json:"asset"`
	Decimals uint8    `json:"decimals"`
	Pre      *big.Int `json:"pre"`
	Post     *big.Int `json:"post"`
	Change   *big.Int `json:"change"` // post - pre
}

// RawAction is an itemized action record from the transaction. Which fields
// are meaningful depends on Kind:
//
//	native_transfer:  Sender, Receiver, Amount (lamports)
//	token_transfer:   Sender, Receiver, Asset, Amount, Decimals
//	swap, route:      Swapper, Input*, Output*
//	other:            Program only
type RawAction struct {
	Kind    ActionKind `json:"kind"`
	Program string     `json:"program,omitempty"`

	Sender   string `json:"sender,omitempty"`
	Receiver string `json:"receiver,omitempty"`
	Asset    string `json:"asset,omitempty"`
	Amount   uint64 `json:"amount,omitempty"`
	Decimals uint8  `json:"decimals,omitempty"`

	Swapper        string `json:"swapper,omitempty"`
	InputAsset     string `json:"inputAsset,omitempty"`
	InputAmount    uint64 `json:"inputAmount,omitempty"`
	InputDecimals  uint8  `json:"inputDecimals,omitempty"`
	OutputAsset    string `json:"outputAsset,omitempty"`
	OutputAmount   uint64 `json:"outputAmount,omitempty"`
	OutputDecimals uint8  `json:"outputDecimals,omitempty"`
}

// TransactionEnvelope is the unit of work: one classification call per
// envelope. Adapters must preserve raw integer balances and per-asset decimals
// exactly; premature float conversion is what the integer pipeline exists to
// prevent.
type TransactionEnvelope struct {
	Signature      string             `json:"signature"`
	Status         TxStatus           `json:"status"`
	FeePayer       string             `json:"feePayer"`
	Signers        []string           `json:"signers"`
	BalanceChanges []RawBalanceChange `json:"balanceChanges"`
	Actions        []RawAction        `json:"actions"`
}

// Validate reports structurally malformed input. A malformed envelope is a
// caller bug surfaced as an error, never coerced into a Rejection.
func (e *TransactionEnvelope) Validate() error {
	if e == nil {
		return fmt.Errorf("nil envelope")
	}
	if e.Signature == "" {
		return fmt.Errorf("envelope missing signature")
	}
	if e.Status != StatusSuccess && e.Status != StatusFailed {
		return fmt.Errorf("envelope %s: unknown status %q", e.Signature, e.Status)
	}
	if e.FeePayer == "" {
		return fmt.Errorf("envelope %s: missing fee payer", e.Signature)
	}
	for i, bc := range e.BalanceChanges {
		if bc.Owner == "" || bc.Asset == "" {
			return fmt.Errorf("envelope %s: balance change %d missing owner/asset", e.Signature, i)
		}
		if bc.Pre == nil || bc.Post == nil || bc.Change == nil {
			return fmt.Errorf("envelope %s: balance change %d has nil amount", e.Signature, i)
		}
		want := new(big.Int).Sub(bc.Post, bc.Pre)
		if want.Cmp(bc.Change) != 0 {
			return fmt.Errorf("envelope %s: balance change %d inconsistent: post-pre=%s change=%s",
				e.Signature, i, want.String(), bc.Change.String())
		}
	}
	for i, act := range e.Actions {
		switch act.Kind {
		case ActionNativeTransfer:
			if act.Sender == "" || act.Receiver == "" {
				return fmt.Errorf("envelope %s: native transfer %d missing sender/receiver", e.Signature, i)
			}
		case ActionTokenTransfer:
			if act.Sender == "" || act.Receiver == "" || act.Asset == "" {
				return fmt.Errorf("envelope %s: token transfer %d missing sender/receiver/asset", e.Signature, i)
			}
		case ActionSwap, ActionRoute:
			if act.Swapper == "" {
				return fmt.Errorf("envelope %s: %s action %d missing swapper", e.Signature, act.Kind, i)
			}
			if act.InputAsset == "" || act.OutputAsset == "" {
				return fmt.Errorf("envelope %s: %s action %d missing input/output asset", e.Signature, act.Kind, i)
			}
		case ActionOther:
			// nothing required
		default:
			return fmt.Errorf("envelope %s: action %d has unknown kind %q", e.Signature, i, act.Kind)
		}
	}
	return nil
}
