package swapclass

// swapperCandidates returns the ordered, deduplicated accounts that could be
// the economic party to the trade: fee payer first, then signers in order,
// then explicit swapper fields on swap/route actions. The fee payer is often a
// relayer or bot intermediary, which is why the search does not stop there.
func swapperCandidates(env *TransactionEnvelope) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(acct string) {
		if acct == "" {
			return
		}
		if _, ok := seen[acct]; ok {
			return
		}
		seen[acct] = struct{}{}
		out = append(out, acct)
	}

	add(env.FeePayer)
	for _, s := range env.Signers {
		add(s)
	}
	for _, act := range env.Actions {
		if act.Kind == ActionSwap || act.Kind == ActionRoute {
			add(act.Swapper)
		}
	}
	return out
}

// findSwapper picks the first candidate whose filtered delta set has exactly
// two non-zero entries, the shape of a plain two-leg swap.
func findSwapper(env *TransactionEnvelope, deltas map[string][]AssetDelta) (string, []AssetDelta, bool) {
	for _, cand := range swapperCandidates(env) {
		if ds := deltas[cand]; len(ds) == 2 {
			return cand, ds, true
		}
	}
	return "", nil, false
}
