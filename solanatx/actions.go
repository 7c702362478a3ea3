package solanatx

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/franco-bianco/solswap-classifier/swapclass"
)

// actions itemizes the transaction into the classifier's tagged variants:
// swap/route events first (authoritative where present), then native and
// token transfers, then an opaque record per recognized AMM/router outer
// instruction so debug output shows what was touched.
func (a *Adapter) actions() []swapclass.RawAction {
	var out []swapclass.RawAction

	out = append(out, a.routeActions()...)
	out = append(out, a.swapEventActions()...)

	a.walkInstructions(func(instr solana.CompiledInstruction) {
		progID := a.allAccountKeys[instr.ProgramIDIndex]
		switch {
		case a.isSystemTransfer(instr):
			out = append(out, a.nativeTransferAction(instr))
		case a.isTransfer(instr):
			if act, ok := a.tokenTransferAction(instr); ok {
				out = append(out, act)
			}
		case a.isTransferCheck(instr):
			if act, ok := a.tokenTransferCheckAction(instr); ok {
				out = append(out, act)
			}
		case isAMMProgram(progID) || isRouterProgram(progID):
			out = append(out, swapclass.RawAction{
				Kind:    swapclass.ActionOther,
				Program: progID.String(),
			})
		}
	})

	return out
}

// isSystemTransfer: System Program "Transfer" (u32 tag 2 + u64 lamports).
func (a *Adapter) isSystemTransfer(instr solana.CompiledInstruction) bool {
	progID := a.allAccountKeys[instr.ProgramIDIndex]
	if !progID.Equals(solana.SystemProgramID) {
		return false
	}
	if len(instr.Accounts) < 2 || len(instr.Data) < 12 {
		return false
	}
	if binary.LittleEndian.Uint32(instr.Data[0:4]) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		if int(instr.Accounts[i]) >= len(a.allAccountKeys) {
			return false
		}
	}
	return true
}

// isTransfer: Token Program "Transfer" (3)
func (a *Adapter) isTransfer(instr solana.CompiledInstruction) bool {
	progID := a.allAccountKeys[instr.ProgramIDIndex]
	if !progID.Equals(solana.TokenProgramID) {
		return false
	}
	if len(instr.Accounts) < 3 || len(instr.Data) < 9 {
		return false
	}
	if instr.Data[0] != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if int(instr.Accounts[i]) >= len(a.allAccountKeys) {
			return false
		}
	}
	return true
}

// isTransferCheck: Token or Token-2022 "TransferChecked" (12)
func (a *Adapter) isTransferCheck(instr solana.CompiledInstruction) bool {
	progID := a.allAccountKeys[instr.ProgramIDIndex]
	if !a.isTokenProgram(progID) {
		return false
	}
	if len(instr.Accounts) < 4 || len(instr.Data) < 9 {
		return false
	}
	if instr.Data[0] != 12 {
		return false
	}
	for i := 0; i < 4; i++ {
		if int(instr.Accounts[i]) >= len(a.allAccountKeys) {
			return false
		}
	}
	return true
}

func (a *Adapter) nativeTransferAction(instr solana.CompiledInstruction) swapclass.RawAction {
	lamports := binary.LittleEndian.Uint64(instr.Data[4:12])
	return swapclass.RawAction{
		Kind:     swapclass.ActionNativeTransfer,
		Program:  solana.SystemProgramID.String(),
		Sender:   a.allAccountKeys[instr.Accounts[0]].String(),
		Receiver: a.allAccountKeys[instr.Accounts[1]].String(),
		Asset:    swapclass.NativeSOL,
		Amount:   lamports,
		Decimals: 9,
	}
}

// tokenTransferAction resolves owners so the action names economic parties,
// not token accounts. Unknown owners fall back to the account address.
func (a *Adapter) tokenTransferAction(instr solana.CompiledInstruction) (swapclass.RawAction, bool) {
	amount := binary.LittleEndian.Uint64(instr.Data[1:9])
	srcKey := a.allAccountKeys[instr.Accounts[0]].String()
	dstKey := a.allAccountKeys[instr.Accounts[1]].String()

	// Prefer destination mint (usual case), else the source side.
	mint := a.tokenAccounts[dstKey].Mint
	if mint == "" {
		mint = a.tokenAccounts[srcKey].Mint
	}
	if mint == "" {
		return swapclass.RawAction{}, false
	}

	return swapclass.RawAction{
		Kind:     swapclass.ActionTokenTransfer,
		Program:  solana.TokenProgramID.String(),
		Sender:   a.ownerOrAccount(srcKey),
		Receiver: a.ownerOrAccount(dstKey),
		Asset:    mint,
		Amount:   amount,
		Decimals: a.decimalsByMint[mint],
	}, true
}

func (a *Adapter) tokenTransferCheckAction(instr solana.CompiledInstruction) (swapclass.RawAction, bool) {
	amount := binary.LittleEndian.Uint64(instr.Data[1:9])
	srcKey := a.allAccountKeys[instr.Accounts[0]].String()
	mint := a.allAccountKeys[instr.Accounts[1]].String()
	dstKey := a.allAccountKeys[instr.Accounts[2]].String()

	return swapclass.RawAction{
		Kind:     swapclass.ActionTokenTransfer,
		Program:  a.allAccountKeys[instr.ProgramIDIndex].String(),
		Sender:   a.ownerOrAccount(srcKey),
		Receiver: a.ownerOrAccount(dstKey),
		Asset:    mint,
		Amount:   amount,
		Decimals: a.decimalsByMint[mint],
	}, true
}

func (a *Adapter) ownerOrAccount(tokenAccount string) string {
	if info, ok := a.tokenAccounts[tokenAccount]; ok && info.Owner != "" {
		return info.Owner
	}
	return tokenAccount
}
