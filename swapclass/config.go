package swapclass

// Well-known Solana asset identifiers. The native marker is the system program
// id, which indexers conventionally use for raw lamport balances since native
// SOL has no mint of its own.
const (
	NativeSOL  = "11111111111111111111111111111111"
	WrappedSOL = "So11111111111111111111111111111111111111112"

	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"

	MSOLMint    = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
	JitoSOLMint = "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn"
	BSOLMint    = "bSo13r4TkiE4KumL71LsHTPpL2euBYLFx6h9HP3piy1"
)

// AssetClass tags an asset as quote-worthy (core) or not.
type AssetClass int

const (
	NonCore AssetClass = iota
	Core
)

func (c AssetClass) String() string {
	if c == Core {
		return "core"
	}
	return "non_core"
}

// QuotePricer values a quote-asset amount in USD. Implementations may consult
// external feeds; ok=false means no price is known and the minimum-value
// filter is skipped for that asset.
type QuotePricer interface {
	QuoteUSD(asset string, amount float64) (usd float64, ok bool)
}

// StaticPricer maps asset id to USD per whole unit. Used in tests and for
// offline classification with a pinned SOL price.
type StaticPricer map[string]float64

func (s StaticPricer) QuoteUSD(asset string, amount float64) (float64, bool) {
	px, ok := s[asset]
	if !ok {
		return 0, false
	}
	return px * amount, true
}

// Config is the full, immutable configuration for one Classifier. It is built
// once at process start and never mutated during classification; hot reload
// means constructing a new Config and swapping the whole Classifier.
type Config struct {
	// CoreAssets is the registry of quote-worthy asset ids, keyed by logical
	// asset (the wrapped representation for the native currency).
	CoreAssets map[string]struct{}

	// NativeAsset and WrappedNativeAsset are merged into one logical asset
	// during delta collection; swaps are denominated in either interchangeably.
	NativeAsset        string
	WrappedNativeAsset string

	// MinQuoteUSD rejects buy/sell records whose quote-asset notional is below
	// this floor. Split (token-to-token) swaps always pass.
	MinQuoteUSD float64

	// SplitQuoteAsset is the reference quote assigned to the synthetic legs of
	// a split swap. Per-leg USD valuation of split legs is a downstream
	// pricing concern, not handled here.
	SplitQuoteAsset string

	// Pricer values quote notionals for the minimum-value filter. Nil disables
	// the filter.
	Pricer QuotePricer
}

// DefaultConfig returns the production registry: native/wrapped SOL, the major
// stablecoins and the liquid-staking SOL derivatives, with a $2 floor.
func DefaultConfig() Config {
	return Config{
		CoreAssets: map[string]struct{}{
			WrappedSOL:  {},
			USDCMint:    {},
			USDTMint:    {},
			MSOLMint:    {},
			JitoSOLMint: {},
			BSOLMint:    {},
		},
		NativeAsset:        NativeSOL,
		WrappedNativeAsset: WrappedSOL,
		MinQuoteUSD:        2.0,
		SplitQuoteAsset:    WrappedSOL,
	}
}

// LogicalAsset folds the native currency into its wrapped representation.
func (c Config) LogicalAsset(asset string) string {
	if asset == c.NativeAsset {
		return c.WrappedNativeAsset
	}
	return asset
}

// ClassOf is a pure registry lookup. It never rejects a transaction by
// itself; it only biases quote/base assignment and split policy.
func (c Config) ClassOf(asset string) AssetClass {
	if _, ok := c.CoreAssets[c.LogicalAsset(asset)]; ok {
		return Core
	}
	return NonCore
}
