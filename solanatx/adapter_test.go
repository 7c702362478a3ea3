package solanatx

import (
	"context"
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franco-bianco/solswap-classifier/swapclass"
)

// pkN returns a deterministic throwaway key (32 bytes of n).
func pkN(n byte) solana.PublicKey {
	b := make([]byte, 32)
	for i := range b {
		b[i] = n
	}
	return solana.PublicKeyFromBytes(b)
}

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func testSignature() solana.Signature {
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = 7
	}
	return solana.SignatureFromBytes(raw)
}

// buyFixture models a plain SOL-for-token buy: an outer System transfer from
// the wallet to the pool authority, and an inner token transfer from the pool
// vault to the wallet's token account.
//
// Account layout:
//
//	0 wallet (fee payer, signer)   3 pool token vault
//	1 wallet token account         4 System program
//	2 pool authority               5 Token program
func buyFixture() (*solana.Transaction, *rpc.TransactionMeta) {
	wallet := pkN(1)
	walletATA := pkN(2)
	poolAuth := pkN(3)
	poolVault := pkN(4)
	mint := pkN(9)

	keys := []solana.PublicKey{wallet, walletATA, poolAuth, poolVault, solana.SystemProgramID, solana.TokenProgramID}

	systemTransferData := append(u32le(2), u64le(300_000_000)...)
	tokenTransferData := append([]byte{3}, u64le(1_000_000)...)

	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature()},
		Message: solana.Message{
			Header:      solana.MessageHeader{NumRequiredSignatures: 1},
			AccountKeys: keys,
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 4, Accounts: []uint16{0, 2}, Data: solana.Base58(systemTransferData)},
			},
		},
	}

	walletPK := wallet
	poolAuthPK := poolAuth
	tokenRow := func(idx uint16, owner *solana.PublicKey, amount string) rpc.TokenBalance {
		return rpc.TokenBalance{
			AccountIndex: idx,
			Mint:         mint,
			Owner:        owner,
			UiTokenAmount: &rpc.UiTokenAmount{
				Amount:   amount,
				Decimals: 6,
			},
		}
	}

	meta := &rpc.TransactionMeta{
		Fee:          5000,
		PreBalances:  []uint64{10_000_000_000, 2_039_280, 1_000_000_000, 2_039_280, 1, 1},
		PostBalances: []uint64{9_699_995_000, 2_039_280, 1_300_000_000, 2_039_280, 1, 1},
		PreTokenBalances: []rpc.TokenBalance{
			tokenRow(1, &walletPK, "0"),
			tokenRow(3, &poolAuthPK, "5000000"),
		},
		PostTokenBalances: []rpc.TokenBalance{
			tokenRow(1, &walletPK, "1000000"),
			tokenRow(3, &poolAuthPK, "4000000"),
		},
		InnerInstructions: []rpc.InnerInstruction{
			{Index: 0, Instructions: []rpc.CompiledInstruction{
				{ProgramIDIndex: 5, Accounts: []uint16{3, 1, 2}, Data: solana.Base58(tokenTransferData)},
			}},
		},
	}
	return tx, meta
}

func findChange(t *testing.T, changes []swapclass.RawBalanceChange, owner, asset string) swapclass.RawBalanceChange {
	t.Helper()
	for _, bc := range changes {
		if bc.Owner == owner && bc.Asset == asset {
			return bc
		}
	}
	t.Fatalf("no balance change for owner=%s asset=%s in %+v", owner, asset, changes)
	return swapclass.RawBalanceChange{}
}

func TestAdapter_EnvelopeBuy(t *testing.T) {
	tx, meta := buyFixture()
	adapter, err := NewAdapterFromTransaction(tx, meta)
	require.NoError(t, err)

	env, err := adapter.Envelope()
	require.NoError(t, err)

	wallet := pkN(1).String()
	poolAuth := pkN(3).String()
	mint := pkN(9).String()

	assert.Equal(t, swapclass.StatusSuccess, env.Status)
	assert.Equal(t, wallet, env.FeePayer)
	assert.Equal(t, []string{wallet}, env.Signers)

	// The fee is backed out: the wallet's native delta reflects only the
	// 0.3 SOL trade leg, not 0.3 SOL + 5000 lamports.
	nativeChange := findChange(t, env.BalanceChanges, wallet, swapclass.NativeSOL)
	assert.Equal(t, int64(-300_000_000), nativeChange.Change.Int64())
	assert.Equal(t, uint8(9), nativeChange.Decimals)

	tokenChange := findChange(t, env.BalanceChanges, wallet, mint)
	assert.Equal(t, int64(1_000_000), tokenChange.Change.Int64())
	assert.Equal(t, uint8(6), tokenChange.Decimals)

	poolTokenChange := findChange(t, env.BalanceChanges, poolAuth, mint)
	assert.Equal(t, int64(-1_000_000), poolTokenChange.Change.Int64())

	// Token accounts with unchanged lamports produce no native rows.
	for _, bc := range env.BalanceChanges {
		if bc.Asset == swapclass.NativeSOL {
			assert.NotZero(t, bc.Change.Sign(), "zero native change leaked: %+v", bc)
		}
	}

	var native, token int
	for _, act := range env.Actions {
		switch act.Kind {
		case swapclass.ActionNativeTransfer:
			native++
			assert.Equal(t, wallet, act.Sender)
			assert.Equal(t, poolAuth, act.Receiver)
			assert.Equal(t, uint64(300_000_000), act.Amount)
		case swapclass.ActionTokenTransfer:
			token++
			assert.Equal(t, poolAuth, act.Sender, "sender must be the vault owner, not the vault")
			assert.Equal(t, wallet, act.Receiver)
			assert.Equal(t, mint, act.Asset)
			assert.Equal(t, uint64(1_000_000), act.Amount)
		}
	}
	assert.Equal(t, 1, native)
	assert.Equal(t, 1, token)
}

func TestAdapter_EnvelopeClassifiesAsBuy(t *testing.T) {
	tx, meta := buyFixture()
	adapter, err := NewAdapterFromTransaction(tx, meta)
	require.NoError(t, err)
	env, err := adapter.Envelope()
	require.NoError(t, err)

	outcome, err := swapclass.New(swapclass.DefaultConfig()).Classify(context.Background(), env)
	require.NoError(t, err)

	rec, ok := outcome.(*swapclass.SwapRecord)
	require.True(t, ok, "expected a swap record, got %T", outcome)
	assert.Equal(t, swapclass.DirectionBuy, rec.Direction)
	assert.Equal(t, swapclass.WrappedSOL, rec.QuoteAsset)
	assert.Equal(t, pkN(9).String(), rec.BaseAsset)
	assert.InDelta(t, 0.3, rec.TotalWalletCost, 1e-9)
	assert.InDelta(t, 1.0, rec.BaseAmount, 1e-9)
}

func TestAdapter_FailedTransactionStatus(t *testing.T) {
	tx, meta := buyFixture()
	meta.Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}

	adapter, err := NewAdapterFromTransaction(tx, meta)
	require.NoError(t, err)
	env, err := adapter.Envelope()
	require.NoError(t, err)
	assert.Equal(t, swapclass.StatusFailed, env.Status)
}

func TestAdapter_RejectsMissingInput(t *testing.T) {
	tx, meta := buyFixture()

	_, err := NewAdapterFromTransaction(nil, meta)
	assert.Error(t, err)

	_, err = NewAdapterFromTransaction(tx, nil)
	assert.Error(t, err)

	tx.Signatures = nil
	_, err = NewAdapterFromTransaction(tx, meta)
	assert.Error(t, err)
}

func TestAdapter_JupiterRouteEventAggregation(t *testing.T) {
	wallet := pkN(1)
	mintOut := pkN(9)
	wsol := solana.MustPublicKeyFromBase58(swapclass.WrappedSOL)

	leg := func(in, out uint64) []byte {
		data := append([]byte{}, JupiterRouteEventDiscriminator[:]...)
		data = append(data, pkN(8).Bytes()...) // amm
		data = append(data, wsol.Bytes()...)
		data = append(data, u64le(in)...)
		data = append(data, mintOut.Bytes()...)
		data = append(data, u64le(out)...)
		return data
	}

	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature()},
		Message: solana.Message{
			Header:      solana.MessageHeader{NumRequiredSignatures: 1},
			AccountKeys: []solana.PublicKey{wallet, JUPITER_PROGRAM_ID},
		},
	}
	meta := &rpc.TransactionMeta{
		InnerInstructions: []rpc.InnerInstruction{
			{Index: 0, Instructions: []rpc.CompiledInstruction{
				{ProgramIDIndex: 1, Data: solana.Base58(leg(300_000_000, 40_000))},
				{ProgramIDIndex: 1, Data: solana.Base58(leg(200_000_000, 25_000))},
			}},
		},
	}

	adapter, err := NewAdapterFromTransaction(tx, meta)
	require.NoError(t, err)

	acts := adapter.routeActions()
	require.Len(t, acts, 1, "legs of one route must aggregate, not duplicate")

	act := acts[0]
	assert.Equal(t, swapclass.ActionRoute, act.Kind)
	assert.Equal(t, wallet.String(), act.Swapper)
	assert.Equal(t, swapclass.WrappedSOL, act.InputAsset)
	assert.Equal(t, uint64(500_000_000), act.InputAmount)
	assert.Equal(t, uint8(9), act.InputDecimals)
	assert.Equal(t, mintOut.String(), act.OutputAsset)
	assert.Equal(t, uint64(65_000), act.OutputAmount)
}

func TestAdapter_PumpfunTradeEvent(t *testing.T) {
	wallet := pkN(1)
	mint := pkN(9)

	data := append([]byte{}, PumpfunTradeEventDiscriminator[:]...)
	data = append(data, mint.Bytes()...)
	data = append(data, u64le(150_000_000)...)   // sol
	data = append(data, u64le(2_500_000_000)...) // tokens
	data = append(data, 1)                       // isBuy
	data = append(data, wallet.Bytes()...)

	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature()},
		Message: solana.Message{
			Header:      solana.MessageHeader{NumRequiredSignatures: 1},
			AccountKeys: []solana.PublicKey{wallet, PUMP_FUN_PROGRAM_ID},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 1, Data: solana.Base58(data)},
			},
		},
	}
	meta := &rpc.TransactionMeta{}

	adapter, err := NewAdapterFromTransaction(tx, meta)
	require.NoError(t, err)

	acts := adapter.swapEventActions()
	require.Len(t, acts, 1)

	act := acts[0]
	assert.Equal(t, swapclass.ActionSwap, act.Kind)
	assert.Equal(t, wallet.String(), act.Swapper)
	assert.Equal(t, swapclass.WrappedSOL, act.InputAsset)
	assert.Equal(t, uint64(150_000_000), act.InputAmount)
	assert.Equal(t, mint.String(), act.OutputAsset)
	assert.Equal(t, uint64(2_500_000_000), act.OutputAmount)
}

func TestAdapter_TokenBalanceParsing(t *testing.T) {
	tx, meta := buyFixture()
	// Amounts beyond int64 must survive the string parse.
	meta.PreTokenBalances[1].UiTokenAmount.Amount = "36893488147419103232" // 2^65
	meta.PostTokenBalances[1].UiTokenAmount.Amount = "36893488147419103232"

	adapter, err := NewAdapterFromTransaction(tx, meta)
	require.NoError(t, err)
	env, err := adapter.Envelope()
	require.NoError(t, err)

	poolAuth := pkN(3).String()
	mint := pkN(9).String()
	change := findChange(t, env.BalanceChanges, poolAuth, mint)
	want, _ := new(big.Int).SetString("36893488147419103232", 10)
	assert.Equal(t, 0, change.Pre.Cmp(want))
	assert.Equal(t, 0, change.Change.Sign())
}
