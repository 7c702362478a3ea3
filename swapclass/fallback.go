package swapclass

import (
	"context"
	"math/big"
)

// reconstruct recovers the missing leg for a candidate whose delta set has
// exactly one entry. Two strategies, in order of trust:
//
//  1. A swap/route action naming the candidate declares both legs; take the
//     side the deltas are missing. Confidence medium.
//  2. Sum native transfers where the candidate is sender or receiver into a
//     synthetic native-currency leg. Summed, not taken individually: counting
//     pass-through hops one by one is how amounts get doubled. Confidence low.
func (c *Classifier) reconstruct(ctx context.Context, env *TransactionEnvelope, deltas map[string][]AssetDelta, candidates []string) (string, []AssetDelta, Confidence, bool) {
	for _, cand := range candidates {
		set := deltas[cand]
		if len(set) != 1 {
			continue
		}
		have := set[0]

		for _, act := range env.Actions {
			if act.Kind != ActionSwap && act.Kind != ActionRoute {
				continue
			}
			if act.Swapper != cand {
				continue
			}
			in := c.cfg.LogicalAsset(act.InputAsset)
			out := c.cfg.LogicalAsset(act.OutputAsset)
			inMatches := in == have.Asset
			outMatches := out == have.Asset
			if inMatches == outMatches {
				// Action doesn't pair up with the leg we have; not usable.
				continue
			}

			var missing AssetDelta
			if inMatches {
				missing = AssetDelta{
					Asset:    out,
					Owner:    cand,
					Decimals: act.OutputDecimals,
					Net:      new(big.Int).SetUint64(act.OutputAmount),
				}
			} else {
				missing = AssetDelta{
					Asset:    in,
					Owner:    cand,
					Decimals: act.InputDecimals,
					Net:      new(big.Int).Neg(new(big.Int).SetUint64(act.InputAmount)),
				}
			}
			if missing.Net.Sign() == 0 {
				continue
			}
			dbg(ctx, "[fallback] %s: leg %s reconstructed from %s action", env.Signature, missing.Asset, act.Kind)
			return cand, orderedPair(have, missing), ConfidenceMedium, true
		}

		// The missing leg is almost always the native currency routed through
		// a pool or vault account instead of the candidate's own account.
		if have.Asset != c.cfg.WrappedNativeAsset {
			sum := new(big.Int)
			matched := 0
			for _, act := range env.Actions {
				if act.Kind != ActionNativeTransfer {
					continue
				}
				amt := new(big.Int).SetUint64(act.Amount)
				if act.Sender == cand {
					sum.Sub(sum, amt)
					matched++
				}
				if act.Receiver == cand {
					sum.Add(sum, amt)
					matched++
				}
			}
			if sum.Sign() != 0 {
				dbg(ctx, "[fallback] %s: native leg summed from %d transfers, net=%s", env.Signature, matched, sum.String())
				missing := AssetDelta{
					Asset:    c.cfg.WrappedNativeAsset,
					Owner:    cand,
					Decimals: 9,
					Net:      sum,
				}
				return cand, orderedPair(have, missing), ConfidenceLow, true
			}
		}
	}
	return "", nil, "", false
}

func orderedPair(a, b AssetDelta) []AssetDelta {
	if b.Asset < a.Asset {
		return []AssetDelta{b, a}
	}
	return []AssetDelta{a, b}
}
