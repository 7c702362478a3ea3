package swapclass

// Direction of a classified swap from the swapper's point of view.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Confidence grades how direct the evidence behind a record is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Classification source tags.
const (
	SourceDelta          = "delta"
	SourceActionFallback = "action_fallback"
)

// SplitReasonNonCorePair is the only split reason currently produced.
const SplitReasonNonCorePair = "non_core_to_non_core"

// Outcome is the discriminated classification result: exactly one of
// *SwapRecord, *SplitSwapPair or *Rejection per envelope. The interface is
// sealed so a downstream type switch over the three kinds is exhaustive.
type Outcome interface {
	outcome()
}

// SwapRecord is an accepted single-direction swap. Quote and base assets are
// always distinct; all amounts are non-negative, normalized by each asset's
// decimals.
type SwapRecord struct {
	Signature string    `json:"signature"`
	Swapper   string    `json:"swapper"`
	Direction Direction `json:"direction"`

	QuoteAsset string `json:"quoteAsset"`
	BaseAsset  string `json:"baseAsset"`

	SwapInputAmount  float64 `json:"swapInputAmount"`
	SwapOutputAmount float64 `json:"swapOutputAmount"`
	BaseAmount       float64 `json:"baseAmount"`

	// TotalWalletCost (buy) / NetWalletReceived (sell) is the absolute
	// quote-asset delta, including any same-asset transfers folded in during
	// delta collection.
	TotalWalletCost   float64 `json:"totalWalletCost,omitempty"`
	NetWalletReceived float64 `json:"netWalletReceived,omitempty"`

	// QuoteValueUSD is set when the configured pricer could value the quote
	// leg; zero otherwise.
	QuoteValueUSD float64 `json:"quoteValueUsd,omitempty"`

	Confidence Confidence `json:"confidence"`
	Source     string     `json:"classificationSource"`
}

func (*SwapRecord) outcome() {}

// SplitSwapPair represents a token-to-token trade as two independent
// single-asset legs. Persistence must store the legs as two separate records;
// a single record with an ambiguous "both" direction loses which asset was
// sold versus bought.
type SplitSwapPair struct {
	Sell        *SwapRecord `json:"sellRecord"`
	Buy         *SwapRecord `json:"buyRecord"`
	SplitReason string      `json:"splitReason"`
}

func (*SplitSwapPair) outcome() {}

// RejectReason is the canonical rejection taxonomy.
type RejectReason string

const (
	ReasonFailedTransaction     RejectReason = "failed_transaction"
	ReasonInvalidAssetCount     RejectReason = "invalid_asset_count"
	ReasonInvalidDeltaSigns     RejectReason = "invalid_delta_signs"
	ReasonCoreToCoreSuppressed  RejectReason = "core_to_core_suppressed"
	ReasonBelowMinimumValue     RejectReason = "below_minimum_value"
	ReasonSwapperNotIdentified  RejectReason = "swapper_identification_failed"
	ReasonNoSwapAction          RejectReason = "no_swap_action"
)

// DebugInfo carries enough context to replay a rejection offline: the deltas
// and candidates actually considered, not a prose summary.
type DebugInfo struct {
	Signature      string       `json:"signature"`
	Swapper        string       `json:"swapper,omitempty"`
	Candidates     []string     `json:"candidates,omitempty"`
	Deltas         []AssetDelta `json:"deltas,omitempty"`
	ActionsScanned int          `json:"actionsScanned,omitempty"`
	USDValue       float64      `json:"usdValue,omitempty"`
	Note           string       `json:"note,omitempty"`
}

// Rejection is a classified non-swap. It is a normal result, not an error.
type Rejection struct {
	Reason RejectReason `json:"reason"`
	Debug  DebugInfo    `json:"debugInfo"`
}

func (*Rejection) outcome() {}
