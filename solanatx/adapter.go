package solanatx

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solswap-classifier/swapclass"
)

// tokenAccountInfo maps a token account to its mint, owner and decimals, built
// from pre+post token balances plus transfer backfill.
type tokenAccountInfo struct {
	Mint     string
	Owner    string
	Decimals uint8
}

// Adapter converts one fetched Solana transaction into the classifier's
// envelope. It owns all RPC-shape knowledge so the classifier never sees a
// wire type.
type Adapter struct {
	txMeta         *rpc.TransactionMeta
	txInfo         *solana.Transaction
	allAccountKeys solana.PublicKeySlice
	tokenAccounts  map[string]tokenAccountInfo
	decimalsByMint map[string]uint8
	Log            *logrus.Logger
}

func NewAdapter(tx *rpc.GetTransactionResult) (*Adapter, error) {
	txInfo, err := tx.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return NewAdapterFromTransaction(txInfo, tx.Meta)
}

func NewAdapterFromTransaction(tx *solana.Transaction, txMeta *rpc.TransactionMeta) (*Adapter, error) {
	if tx == nil || txMeta == nil {
		return nil, fmt.Errorf("transaction and meta are required")
	}
	if len(tx.Signatures) == 0 {
		return nil, fmt.Errorf("transaction has no signatures")
	}

	allAccountKeys := append(solana.PublicKeySlice{}, tx.Message.AccountKeys...)
	allAccountKeys = append(allAccountKeys, txMeta.LoadedAddresses.Writable...)
	allAccountKeys = append(allAccountKeys, txMeta.LoadedAddresses.ReadOnly...)

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	a := &Adapter{
		txMeta:         txMeta,
		txInfo:         tx,
		allAccountKeys: allAccountKeys,
		Log:            log,
	}
	a.indexTokenAccounts()
	a.indexDecimals()
	return a, nil
}

// Envelope builds the classifier input. Raw integer amounts and per-mint
// decimals pass through untouched; the only adjustment is backing the network
// fee out of the fee payer's native delta, since the fee is transaction
// metadata, not an economic leg of a trade.
func (a *Adapter) Envelope() (*swapclass.TransactionEnvelope, error) {
	signers := make([]string, 0, int(a.txInfo.Message.Header.NumRequiredSignatures))
	for i := 0; i < int(a.txInfo.Message.Header.NumRequiredSignatures) && i < len(a.txInfo.Message.AccountKeys); i++ {
		signers = append(signers, a.txInfo.Message.AccountKeys[i].String())
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("transaction has no signer accounts")
	}

	status := swapclass.StatusSuccess
	if a.txMeta.Err != nil {
		status = swapclass.StatusFailed
	}

	env := &swapclass.TransactionEnvelope{
		Signature:      a.txInfo.Signatures[0].String(),
		Status:         status,
		FeePayer:       signers[0],
		Signers:        signers,
		BalanceChanges: a.balanceChanges(),
		Actions:        a.actions(),
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("adapted envelope invalid: %w", err)
	}
	return env, nil
}

func (a *Adapter) balanceChanges() []swapclass.RawBalanceChange {
	var out []swapclass.RawBalanceChange

	// SPL token balances: pre/post rows keyed by account index.
	type row struct {
		mint     string
		owner    string
		decimals uint8
		amt      string
	}
	preByIdx := map[uint16]row{}
	postByIdx := map[uint16]row{}

	pkOrZero := func(p *solana.PublicKey) string {
		if p == nil {
			return ""
		}
		return p.String()
	}

	for _, b := range a.txMeta.PreTokenBalances {
		if b.Mint.IsZero() {
			continue
		}
		preByIdx[b.AccountIndex] = row{
			mint:     b.Mint.String(),
			owner:    pkOrZero(b.Owner),
			decimals: b.UiTokenAmount.Decimals,
			amt:      b.UiTokenAmount.Amount,
		}
	}
	for _, b := range a.txMeta.PostTokenBalances {
		if b.Mint.IsZero() {
			continue
		}
		postByIdx[b.AccountIndex] = row{
			mint:     b.Mint.String(),
			owner:    pkOrZero(b.Owner),
			decimals: b.UiTokenAmount.Decimals,
			amt:      b.UiTokenAmount.Amount,
		}
	}

	seen := map[uint16]struct{}{}
	for k := range preByIdx {
		seen[k] = struct{}{}
	}
	for k := range postByIdx {
		seen[k] = struct{}{}
	}

	parse := func(s string) *big.Int {
		n := new(big.Int)
		if s == "" {
			return n
		}
		if _, ok := n.SetString(s, 10); !ok {
			return big.NewInt(0)
		}
		return n
	}

	for idx := range seen {
		pre, hasPre := preByIdx[idx]
		post, hasPost := postByIdx[idx]

		r := post
		if !hasPost {
			r = pre
		}
		owner := r.owner
		if hasPost && post.owner == "" && hasPre {
			owner = pre.owner
		}
		if owner == "" {
			// Owner not resolvable (lookup-table edge); attribute to the token
			// account itself so the delta is at least visible in debug output.
			if int(idx) < len(a.allAccountKeys) {
				owner = a.allAccountKeys[idx].String()
			} else {
				continue
			}
		}

		preAmt := big.NewInt(0)
		if hasPre {
			preAmt = parse(pre.amt)
		}
		postAmt := big.NewInt(0)
		if hasPost {
			postAmt = parse(post.amt)
		}

		out = append(out, swapclass.RawBalanceChange{
			Owner:    owner,
			Asset:    r.mint,
			Decimals: r.decimals,
			Pre:      preAmt,
			Post:     postAmt,
			Change:   new(big.Int).Sub(postAmt, preAmt),
		})
	}

	// Native lamport balances, fee backed out of the fee payer.
	n := len(a.txMeta.PreBalances)
	if len(a.txMeta.PostBalances) < n {
		n = len(a.txMeta.PostBalances)
	}
	for i := 0; i < n && i < len(a.allAccountKeys); i++ {
		pre := new(big.Int).SetUint64(a.txMeta.PreBalances[i])
		post := new(big.Int).SetUint64(a.txMeta.PostBalances[i])
		if i == 0 {
			// Fee payer: add the fee back so the delta reflects trade legs only.
			post = new(big.Int).Add(post, new(big.Int).SetUint64(a.txMeta.Fee))
		}
		change := new(big.Int).Sub(post, pre)
		if change.Sign() == 0 {
			continue
		}
		out = append(out, swapclass.RawBalanceChange{
			Owner:    a.allAccountKeys[i].String(),
			Asset:    swapclass.NativeSOL,
			Decimals: 9,
			Pre:      pre,
			Post:     post,
			Change:   change,
		})
	}

	return out
}

// indexTokenAccounts builds token-account -> (mint, owner, decimals) from
// pre+post balances, then propagates mints across plain Transfer instructions
// where only one side is known.
func (a *Adapter) indexTokenAccounts() {
	accounts := make(map[string]tokenAccountInfo)

	seed := func(balances []rpc.TokenBalance) {
		for _, b := range balances {
			if b.Mint.IsZero() || int(b.AccountIndex) >= len(a.allAccountKeys) {
				continue
			}
			owner := ""
			if b.Owner != nil {
				owner = b.Owner.String()
			}
			accounts[a.allAccountKeys[b.AccountIndex].String()] = tokenAccountInfo{
				Mint:     b.Mint.String(),
				Owner:    owner,
				Decimals: b.UiTokenAmount.Decimals,
			}
		}
	}
	seed(a.txMeta.PreTokenBalances)
	seed(a.txMeta.PostTokenBalances)

	propagate := func(instr solana.CompiledInstruction) {
		if !a.isTokenProgram(a.allAccountKeys[instr.ProgramIDIndex]) || len(instr.Data) == 0 {
			return
		}
		op := instr.Data[0]
		if op != 3 || len(instr.Accounts) < 2 {
			return
		}
		source := a.allAccountKeys[instr.Accounts[0]].String()
		destination := a.allAccountKeys[instr.Accounts[1]].String()
		sInfo, dInfo := accounts[source], accounts[destination]
		switch {
		case sInfo.Mint != "" && dInfo.Mint == "":
			accounts[destination] = tokenAccountInfo{Mint: sInfo.Mint, Decimals: sInfo.Decimals}
		case dInfo.Mint != "" && sInfo.Mint == "":
			accounts[source] = tokenAccountInfo{Mint: dInfo.Mint, Decimals: dInfo.Decimals}
		}
	}

	a.walkInstructions(func(instr solana.CompiledInstruction) {
		propagate(instr)
	})

	a.tokenAccounts = accounts
}

func (a *Adapter) indexDecimals() {
	byMint := make(map[string]uint8)
	for _, info := range a.tokenAccounts {
		if info.Mint != "" {
			byMint[info.Mint] = info.Decimals
		}
	}
	byMint[swapclass.WrappedSOL] = 9
	a.decimalsByMint = byMint
}

// walkInstructions visits every outer and inner instruction once.
func (a *Adapter) walkInstructions(visit func(solana.CompiledInstruction)) {
	for _, instr := range a.txInfo.Message.Instructions {
		if int(instr.ProgramIDIndex) >= len(a.allAccountKeys) {
			continue
		}
		visit(instr)
	}
	for _, innerSet := range a.txMeta.InnerInstructions {
		for _, ri := range innerSet.Instructions {
			instr := a.convertInstruction(ri)
			if int(instr.ProgramIDIndex) >= len(a.allAccountKeys) {
				continue
			}
			visit(instr)
		}
	}
}

func (a *Adapter) convertInstruction(in rpc.CompiledInstruction) solana.CompiledInstruction {
	return solana.CompiledInstruction{
		ProgramIDIndex: in.ProgramIDIndex,
		Accounts:       in.Accounts,
		Data:           in.Data,
	}
}

func (a *Adapter) isTokenProgram(pk solana.PublicKey) bool {
	return pk.Equals(solana.TokenProgramID) || pk.Equals(solana.Token2022ProgramID)
}
