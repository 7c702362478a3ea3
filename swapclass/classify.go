package swapclass

import (
	"context"
	"fmt"
	"math/big"
)

// Classifier turns transaction envelopes into swap records. It is a pure
// function of the envelope plus its immutable Config: no I/O, no state across
// calls, safe for unbounded concurrent use.
type Classifier struct {
	cfg Config
}

func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

func (c *Classifier) Config() Config { return c.cfg }

// Classify produces exactly one of *SwapRecord, *SplitSwapPair or *Rejection
// for the envelope. A non-nil error means the envelope itself is malformed,
// which is a caller bug, distinct from any rejection reason.
func (c *Classifier) Classify(ctx context.Context, env *TransactionEnvelope) (Outcome, error) {
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	// First gate: everything downstream assumes a successful transaction.
	if env.Status != StatusSuccess {
		dbg(ctx, "[classify] %s: transaction failed on chain", env.Signature)
		return &Rejection{
			Reason: ReasonFailedTransaction,
			Debug:  DebugInfo{Signature: env.Signature, Note: "on-chain status not success"},
		}, nil
	}

	deltas := CollectDeltas(c.cfg, env.BalanceChanges)
	candidates := swapperCandidates(env)
	dbg(ctx, "[classify] %s: %d owners with net deltas, %d swapper candidates",
		env.Signature, len(deltas), len(candidates))

	if swapper, set, ok := findSwapper(env, deltas); ok {
		dbg(ctx, "[classify] %s: swapper %s via deltas (%s / %s)",
			env.Signature, swapper, set[0].Asset, set[1].Asset)
		return c.resolve(ctx, env, swapper, set, SourceDelta, ConfidenceHigh), nil
	}

	// No candidate nets out to two assets; one leg may have moved through a
	// pool or vault account instead of the swapper's own token account.
	if swapper, set, conf, ok := c.reconstruct(ctx, env, deltas, candidates); ok {
		dbg(ctx, "[classify] %s: swapper %s via action fallback, confidence=%s",
			env.Signature, swapper, conf)
		return c.resolve(ctx, env, swapper, set, SourceActionFallback, conf), nil
	}

	return c.triage(ctx, env, deltas, candidates), nil
}

// resolve runs the direction state machine over a two-entry delta set.
func (c *Classifier) resolve(ctx context.Context, env *TransactionEnvelope, swapper string, set []AssetDelta, source string, conf Confidence) Outcome {
	debug := DebugInfo{
		Signature:      env.Signature,
		Swapper:        swapper,
		Deltas:         set,
		ActionsScanned: len(env.Actions),
	}

	if len(set) != 2 {
		debug.Note = fmt.Sprintf("expected 2 net deltas, got %d", len(set))
		return &Rejection{Reason: ReasonInvalidAssetCount, Debug: debug}
	}

	var neg, pos AssetDelta
	switch {
	case set[0].Net.Sign() < 0 && set[1].Net.Sign() > 0:
		neg, pos = set[0], set[1]
	case set[0].Net.Sign() > 0 && set[1].Net.Sign() < 0:
		neg, pos = set[1], set[0]
	default:
		debug.Note = "deltas do not form one spent / one received pair"
		return &Rejection{Reason: ReasonInvalidDeltaSigns, Debug: debug}
	}

	negClass := c.cfg.ClassOf(neg.Asset)
	posClass := c.cfg.ClassOf(pos.Asset)
	switch {
	case negClass == Core && posClass == Core:
		// Currency-to-currency rebalances are not signal for this system.
		debug.Note = "both assets in core registry"
		return &Rejection{Reason: ReasonCoreToCoreSuppressed, Debug: debug}
	case negClass == NonCore && posClass == NonCore:
		dbg(ctx, "[classify] %s: non-core pair %s -> %s, splitting", env.Signature, neg.Asset, pos.Asset)
		return c.splitPair(env, swapper, neg, pos, source, conf)
	}

	var quote, base AssetDelta
	var dir Direction
	if negClass == Core {
		quote, base = neg, pos
		dir = DirectionBuy
	} else {
		quote, base = pos, neg
		dir = DirectionSell
	}

	quoteAmt := normalizeAbs(quote.Net, quote.Decimals)
	baseAmt := normalizeAbs(base.Net, base.Decimals)

	rec := &SwapRecord{
		Signature:  env.Signature,
		Swapper:    swapper,
		Direction:  dir,
		QuoteAsset: quote.Asset,
		BaseAsset:  base.Asset,
		BaseAmount: baseAmt,
		Confidence: conf,
		Source:     source,
	}
	if dir == DirectionBuy {
		rec.SwapInputAmount = quoteAmt
		rec.SwapOutputAmount = baseAmt
		rec.TotalWalletCost = quoteAmt
	} else {
		rec.SwapInputAmount = baseAmt
		rec.SwapOutputAmount = quoteAmt
		rec.NetWalletReceived = quoteAmt
	}

	// Minimum-value filter on the quote notional. Split swaps never get here;
	// with no single quote value there is nothing to compare.
	if c.cfg.Pricer != nil {
		if usd, ok := c.cfg.Pricer.QuoteUSD(quote.Asset, quoteAmt); ok {
			if usd < c.cfg.MinQuoteUSD {
				dbg(ctx, "[classify] %s: quote notional $%.4f under $%.2f floor", env.Signature, usd, c.cfg.MinQuoteUSD)
				debug.USDValue = usd
				debug.Note = fmt.Sprintf("quote notional under $%.2f floor", c.cfg.MinQuoteUSD)
				return &Rejection{Reason: ReasonBelowMinimumValue, Debug: debug}
			}
			rec.QuoteValueUSD = usd
		} else {
			dbg(ctx, "[classify] %s: no USD price for %s, value filter skipped", env.Signature, quote.Asset)
		}
	}

	dbg(ctx, "[classify] %s: %s %s for %s, quote=%.9f base=%.9f",
		env.Signature, dir, base.Asset, quote.Asset, quoteAmt, baseAmt)
	return rec
}

// triage picks the right rejection when neither the delta path nor the
// fallback produced a swapper with two legs.
func (c *Classifier) triage(ctx context.Context, env *TransactionEnvelope, deltas map[string][]AssetDelta, candidates []string) Outcome {
	var best string
	var bestSet []AssetDelta
	for _, cand := range candidates {
		if ds := deltas[cand]; len(ds) > len(bestSet) {
			best, bestSet = cand, ds
		}
	}

	debug := DebugInfo{
		Signature:      env.Signature,
		Swapper:        best,
		Candidates:     candidates,
		Deltas:         bestSet,
		ActionsScanned: len(env.Actions),
	}

	switch {
	case len(bestSet) > 2:
		debug.Note = fmt.Sprintf("best candidate has %d net deltas", len(bestSet))
		dbg(ctx, "[classify] %s: rejected, %s", env.Signature, debug.Note)
		return &Rejection{Reason: ReasonInvalidAssetCount, Debug: debug}
	case len(bestSet) == 1:
		// One leg present, reconstruction already failed. If the envelope
		// holds no usable evidence at all this is rent/fee noise, not an
		// unreconstructable swap.
		if hasSwapEvidence(env, best) {
			debug.Note = "single leg, action fallback exhausted"
			return &Rejection{Reason: ReasonNoSwapAction, Debug: debug}
		}
		debug.Note = "single net delta and no swap-shaped actions"
		return &Rejection{Reason: ReasonInvalidAssetCount, Debug: debug}
	default:
		debug.Note = "no candidate with net deltas"
		return &Rejection{Reason: ReasonSwapperNotIdentified, Debug: debug}
	}
}

func hasSwapEvidence(env *TransactionEnvelope, candidate string) bool {
	for _, act := range env.Actions {
		switch act.Kind {
		case ActionSwap, ActionRoute:
			return true
		case ActionNativeTransfer:
			if act.Sender == candidate || act.Receiver == candidate {
				return true
			}
		}
	}
	return false
}

// ---------- amount normalization ----------

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// normalizeAbs converts a raw signed delta to its absolute decimal value.
// Integer math all the way down; the float exists only in the final output.
func normalizeAbs(n *big.Int, decimals uint8) float64 {
	r := new(big.Rat).SetFrac(new(big.Int).Abs(n), pow10(decimals))
	f, _ := r.Float64()
	return f
}
