package solanatx

import "github.com/gagliardetto/solana-go"

var (
	JUPITER_PROGRAM_ID     = solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")
	JUPITER_DCA_PROGRAM_ID = solana.MustPublicKeyFromBase58("DCA265Vj8a9CEuX1eb1LWRnDT7uK6q1xMipnNyatn23M")

	PUMP_FUN_PROGRAM_ID    = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	PUMPFUN_AMM_PROGRAM_ID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")

	RAYDIUM_V4_PROGRAM_ID                     = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	RAYDIUM_CPMM_PROGRAM_ID                   = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	RAYDIUM_CONCENTRATED_LIQUIDITY_PROGRAM_ID = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")

	ORCA_PROGRAM_ID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")

	METEORA_DLMM_PROGRAM_ID  = solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")
	METEORA_POOLS_PROGRAM_ID = solana.MustPublicKeyFromBase58("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB")

	OKX_DEX_ROUTER_PROGRAM_ID = solana.MustPublicKeyFromBase58("6m2CDdhRgxpH4WjvdzxAYbGxwdGUz5MziiL5jek2kBma")
)

// isRouterProgram: programs whose outer instruction wraps a whole route.
func isRouterProgram(pk solana.PublicKey) bool {
	return pk.Equals(JUPITER_PROGRAM_ID) || pk.Equals(OKX_DEX_ROUTER_PROGRAM_ID)
}

// isAMMProgram: direct pool programs we recognize.
func isAMMProgram(pk solana.PublicKey) bool {
	switch {
	case pk.Equals(PUMP_FUN_PROGRAM_ID), pk.Equals(PUMPFUN_AMM_PROGRAM_ID):
		return true
	case pk.Equals(RAYDIUM_V4_PROGRAM_ID),
		pk.Equals(RAYDIUM_CPMM_PROGRAM_ID),
		pk.Equals(RAYDIUM_CONCENTRATED_LIQUIDITY_PROGRAM_ID):
		return true
	case pk.Equals(ORCA_PROGRAM_ID):
		return true
	case pk.Equals(METEORA_DLMM_PROGRAM_ID), pk.Equals(METEORA_POOLS_PROGRAM_ID):
		return true
	default:
		return false
	}
}
