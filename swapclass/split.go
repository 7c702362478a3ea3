package swapclass

// splitPair represents a non-core to non-core trade as two synthetic
// single-asset legs: a sell of the spent asset and a buy of the received one.
// The quote side of each leg is the configured reference asset with no amount;
// valuing it is a downstream pricing concern. Persistence stores the legs as
// two independent records, never one record with a collapsed "both"
// direction.
func (c *Classifier) splitPair(env *TransactionEnvelope, swapper string, neg, pos AssetDelta, source string, conf Confidence) *SplitSwapPair {
	sellAmt := normalizeAbs(neg.Net, neg.Decimals)
	buyAmt := normalizeAbs(pos.Net, pos.Decimals)

	sell := &SwapRecord{
		Signature:       env.Signature,
		Swapper:         swapper,
		Direction:       DirectionSell,
		QuoteAsset:      c.cfg.SplitQuoteAsset,
		BaseAsset:       neg.Asset,
		BaseAmount:      sellAmt,
		SwapInputAmount: sellAmt,
		Confidence:      conf,
		Source:          source,
	}
	buy := &SwapRecord{
		Signature:        env.Signature,
		Swapper:          swapper,
		Direction:        DirectionBuy,
		QuoteAsset:       c.cfg.SplitQuoteAsset,
		BaseAsset:        pos.Asset,
		BaseAmount:       buyAmt,
		SwapOutputAmount: buyAmt,
		Confidence:       conf,
		Source:           source,
	}

	return &SplitSwapPair{
		Sell:        sell,
		Buy:         buy,
		SplitReason: SplitReasonNonCorePair,
	}
}
