package solanatx

import (
	"bytes"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/franco-bianco/solswap-classifier/swapclass"
)

// Anchor event discriminators (16 bytes: anchor event tag + event name hash).
var (
	JupiterRouteEventDiscriminator = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 64, 198, 205, 232, 38, 8, 113, 226}
	PumpfunTradeEventDiscriminator = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 189, 219, 127, 211, 78, 230, 97, 238}
)

// jupiterRouteEvent is the Borsh payload of Jupiter's route event: one leg of
// a routed swap with authoritative amounts.
type jupiterRouteEvent struct {
	Amm          solana.PublicKey
	InputMint    solana.PublicKey
	InputAmount  uint64
	OutputMint   solana.PublicKey
	OutputAmount uint64
}

// pumpfunTradeEvent is the Borsh payload of Pump.fun's trade event. Trailing
// reserve fields are left undecoded.
type pumpfunTradeEvent struct {
	Mint        solana.PublicKey
	SolAmount   uint64
	TokenAmount uint64
	IsBuy       bool
	User        solana.PublicKey
}

// routeActions decodes Jupiter route events into ROUTE actions. All legs of
// one route share the route-level input/output mints, so legs matching those
// mints are aggregated; a multi-leg route must not be double counted.
func (a *Adapter) routeActions() []swapclass.RawAction {
	var legs []jupiterRouteEvent
	a.walkInstructions(func(instr solana.CompiledInstruction) {
		if !a.isJupiterRouteEventInstruction(instr) {
			return
		}
		ev, err := a.decodeJupiterRouteEvent(instr)
		if err != nil {
			a.Log.Errorf("error decoding jupiter route event: %s", err)
			return
		}
		legs = append(legs, *ev)
	})
	if len(legs) == 0 {
		return nil
	}

	inMint, outMint := legs[0].InputMint, legs[0].OutputMint
	var totalIn, totalOut uint64
	for _, leg := range legs {
		if leg.InputMint.Equals(inMint) {
			totalIn += leg.InputAmount
		}
		if leg.OutputMint.Equals(outMint) {
			totalOut += leg.OutputAmount
		}
	}

	return []swapclass.RawAction{{
		Kind:           swapclass.ActionRoute,
		Program:        JUPITER_PROGRAM_ID.String(),
		Swapper:        a.routeSwapper(),
		InputAsset:     inMint.String(),
		InputAmount:    totalIn,
		InputDecimals:  a.decimalsByMint[inMint.String()],
		OutputAsset:    outMint.String(),
		OutputAmount:   totalOut,
		OutputDecimals: a.decimalsByMint[outMint.String()],
	}}
}

// routeSwapper: fee payer by default; Jupiter DCA keeps the user at index 2.
func (a *Adapter) routeSwapper() string {
	for _, key := range a.allAccountKeys {
		if key.Equals(JUPITER_DCA_PROGRAM_ID) {
			if len(a.allAccountKeys) > 2 {
				return a.allAccountKeys[2].String()
			}
			break
		}
	}
	return a.allAccountKeys[0].String()
}

// swapEventActions decodes Pump.fun trade events into SWAP actions.
func (a *Adapter) swapEventActions() []swapclass.RawAction {
	var out []swapclass.RawAction
	a.walkInstructions(func(instr solana.CompiledInstruction) {
		if !a.isPumpfunTradeEventInstruction(instr) {
			return
		}
		ev, err := a.decodePumpfunTradeEvent(instr)
		if err != nil {
			a.Log.Errorf("error decoding pumpfun trade event: %s", err)
			return
		}

		act := swapclass.RawAction{
			Kind:    swapclass.ActionSwap,
			Program: PUMP_FUN_PROGRAM_ID.String(),
			Swapper: ev.User.String(),
		}
		mint := ev.Mint.String()
		if ev.IsBuy {
			act.InputAsset = swapclass.WrappedSOL
			act.InputAmount = ev.SolAmount
			act.InputDecimals = 9
			act.OutputAsset = mint
			act.OutputAmount = ev.TokenAmount
			act.OutputDecimals = a.decimalsByMint[mint]
		} else {
			act.InputAsset = mint
			act.InputAmount = ev.TokenAmount
			act.InputDecimals = a.decimalsByMint[mint]
			act.OutputAsset = swapclass.WrappedSOL
			act.OutputAmount = ev.SolAmount
			act.OutputDecimals = 9
		}
		out = append(out, act)
	})
	return out
}

func (a *Adapter) isJupiterRouteEventInstruction(instr solana.CompiledInstruction) bool {
	return a.isEventInstruction(instr, JUPITER_PROGRAM_ID, JupiterRouteEventDiscriminator)
}

func (a *Adapter) isPumpfunTradeEventInstruction(instr solana.CompiledInstruction) bool {
	return a.isEventInstruction(instr, PUMP_FUN_PROGRAM_ID, PumpfunTradeEventDiscriminator)
}

func (a *Adapter) isEventInstruction(instr solana.CompiledInstruction, program solana.PublicKey, disc [16]byte) bool {
	if !a.allAccountKeys[instr.ProgramIDIndex].Equals(program) || len(instr.Data) == 0 {
		return false
	}
	enc := instr.Data.String()
	if len(enc) == 0 {
		return false
	}
	decoded, err := base58.Decode(enc)
	if err != nil || len(decoded) < 16 {
		return false
	}
	return bytes.Equal(decoded[:16], disc[:])
}

func (a *Adapter) decodeJupiterRouteEvent(instr solana.CompiledInstruction) (*jupiterRouteEvent, error) {
	decoded, err := base58.Decode(instr.Data.String())
	if err != nil {
		return nil, fmt.Errorf("error decoding instruction data: %w", err)
	}
	if len(decoded) < 16 {
		return nil, fmt.Errorf("jupiter event data too short: %d", len(decoded))
	}
	var ev jupiterRouteEvent
	if err := ag_binary.NewBorshDecoder(decoded[16:]).Decode(&ev); err != nil {
		return nil, fmt.Errorf("error unmarshaling jupiter route event: %w", err)
	}
	return &ev, nil
}

func (a *Adapter) decodePumpfunTradeEvent(instr solana.CompiledInstruction) (*pumpfunTradeEvent, error) {
	decoded, err := base58.Decode(instr.Data.String())
	if err != nil {
		return nil, fmt.Errorf("error decoding instruction data: %w", err)
	}
	if len(decoded) < 16 {
		return nil, fmt.Errorf("pumpfun event data too short: %d", len(decoded))
	}
	var ev pumpfunTradeEvent
	if err := ag_binary.NewBorshDecoder(decoded[16:]).Decode(&ev); err != nil {
		return nil, fmt.Errorf("error unmarshaling pumpfun trade event: %w", err)
	}
	return &ev, nil
}
