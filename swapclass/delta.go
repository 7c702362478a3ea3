package swapclass

import (
	"math/big"
	"sort"
)

// AssetDelta is the net position change for one (owner, logical asset) pair
// over the whole transaction. Net stays in raw base units.
type AssetDelta struct {
	Asset    string   `json:"asset"`
	Owner    string   `json:"owner"`
	Decimals uint8    `json:"decimals"`
	Net      *big.Int `json:"net"`
}

type deltaKey struct {
	owner string
	asset string
}

// CollectDeltas reduces raw balance-change records into net per-(owner,
// logical asset) deltas. Three things happen here, in order:
//
//  1. All records sharing an (owner, asset) pair are summed. A single logical
//     transfer shows up as several ledger entries when a route touches pool or
//     vault accounts attributed to the same owner; treating each entry as an
//     independent delta double-counts multi-hop routes.
//  2. The native currency and its wrapped representation are merged into one
//     logical asset, since either can denominate a swap.
//  3. Exact-zero nets are dropped: they are transit, not position change.
//
// The per-owner slices are sorted by asset id so debug output is stable.
func CollectDeltas(cfg Config, changes []RawBalanceChange) map[string][]AssetDelta {
	sums := make(map[deltaKey]*AssetDelta)
	for _, bc := range changes {
		key := deltaKey{owner: bc.Owner, asset: cfg.LogicalAsset(bc.Asset)}
		d, ok := sums[key]
		if !ok {
			d = &AssetDelta{
				Asset:    key.asset,
				Owner:    bc.Owner,
				Decimals: bc.Decimals,
				Net:      new(big.Int),
			}
			sums[key] = d
		}
		d.Net.Add(d.Net, bc.Change)
	}

	byOwner := make(map[string][]AssetDelta)
	for _, d := range sums {
		if d.Net.Sign() == 0 {
			continue
		}
		byOwner[d.Owner] = append(byOwner[d.Owner], *d)
	}
	for owner := range byOwner {
		ds := byOwner[owner]
		sort.Slice(ds, func(i, j int) bool { return ds[i].Asset < ds[j].Asset })
		byOwner[owner] = ds
	}
	return byOwner
}
