package swapclass

import (
	"math/big"
	"testing"
)

func TestCollectDeltas_ZeroNetDropped(t *testing.T) {
	cfg := DefaultConfig()
	deltas := CollectDeltas(cfg, []RawBalanceChange{
		bc(testWallet, tokenA, 6, 5_000_000),
		bc(testWallet, tokenA, 6, -5_000_000),
		bc(testWallet, tokenB, 6, 7),
	})

	ds := deltas[testWallet]
	if len(ds) != 1 {
		t.Fatalf("want 1 delta after zero-net drop, got %d: %+v", len(ds), ds)
	}
	if ds[0].Asset != tokenB {
		t.Fatalf("surviving delta should be %s, got %s", tokenB, ds[0].Asset)
	}
}

func TestCollectDeltas_NativeWrappedMerge(t *testing.T) {
	cfg := DefaultConfig()
	deltas := CollectDeltas(cfg, []RawBalanceChange{
		bc(testWallet, NativeSOL, 9, -1_000_000_000),
		bc(testWallet, WrappedSOL, 9, 400_000_000),
	})

	ds := deltas[testWallet]
	if len(ds) != 1 {
		t.Fatalf("native and wrapped must merge into one logical asset, got %d deltas", len(ds))
	}
	if ds[0].Asset != WrappedSOL {
		t.Fatalf("merged asset should be the wrapped id, got %s", ds[0].Asset)
	}
	if want := big.NewInt(-600_000_000); ds[0].Net.Cmp(want) != 0 {
		t.Fatalf("merged net: want %s got %s", want, ds[0].Net)
	}
}

func TestCollectDeltas_MultiHopCollapse(t *testing.T) {
	cfg := DefaultConfig()
	deltas := CollectDeltas(cfg, []RawBalanceChange{
		bc(testWallet, NativeSOL, 9, -733_000),
		bc(testWallet, NativeSOL, 9, -244_406_250),
		bc(testWallet, NativeSOL, 9, -2_321_860),
	})

	ds := deltas[testWallet]
	if len(ds) != 1 {
		t.Fatalf("hops of one logical transfer must collapse, got %d deltas", len(ds))
	}
	if want := big.NewInt(-247_461_110); ds[0].Net.Cmp(want) != 0 {
		t.Fatalf("collapsed net: want %s got %s", want, ds[0].Net)
	}
}

func TestCollectDeltas_PerOwnerIsolationAndOrder(t *testing.T) {
	cfg := DefaultConfig()
	deltas := CollectDeltas(cfg, []RawBalanceChange{
		bc(testWallet, tokenB, 6, 1),
		bc(testWallet, tokenA, 6, 2),
		bc(testPool, tokenA, 6, -2),
	})

	if len(deltas) != 2 {
		t.Fatalf("want 2 owners, got %d", len(deltas))
	}
	ds := deltas[testWallet]
	if len(ds) != 2 || ds[0].Asset > ds[1].Asset {
		t.Fatalf("per-owner deltas must be sorted by asset: %+v", ds)
	}
	if len(deltas[testPool]) != 1 {
		t.Fatalf("pool owner should have 1 delta, got %d", len(deltas[testPool]))
	}
}
