// Package ptx implements the partially-signed transaction (PTX) format.
//
// A PTX carries a legacy P2PKH transaction through the signing roles
// (Creator, Constructor, IO Finalizer, Signer, Combiner, Spend Finalizer,
// Transaction Extractor) together with the data each role needs that the
// final transaction does not hold: the value and script of every spent
// output, signatures awaiting finalization, and the public keys that
// produced them.
package ptx

import (
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

// PTX is a transaction under construction.
type PTX struct {
	Global  Global   // Transaction-wide fields
	Inputs  []Input  // Coins being spent, in transaction order
	Outputs []Output // Coins being created, in transaction order
}

// Global contains transaction-wide metadata fields.
//
// These fields must be agreed upon by every party that handles the PTX.
type Global struct {
	TxVersion   uint32            // Transaction version (1 for legacy)
	LockTime    uint32            // nLockTime
	Modifiable  uint8             // Bitfield indicating which parts can be modified
	Proprietary map[string][]byte // Reserved for extensions
}

// Modification flags for the Modifiable bitfield.
//
// Signers commit to the whole transaction with SIGHASH_ALL, so both flags
// are cleared by the IO Finalizer before any signature is produced.
const (
	FlagInputsModifiable  uint8 = 1 << 0 // Inputs may be added
	FlagOutputsModifiable uint8 = 1 << 1 // Outputs may be added
)

// Input is a P2PKH coin being spent.
//
// The Constructor fills the required fields, the Signer adds Signature and
// PubKey, and the Spend Finalizer turns those into ScriptSig.
type Input struct {
	// Required fields (set by Constructor)
	PrevoutTxID  [32]byte // Previous transaction id, internal byte order
	PrevoutIndex uint32   // Output index in the previous transaction
	Sequence     uint32   // nSequence (0xFFFFFFFF for final inputs)
	Value        uint64   // Value of the spent output in satoshis
	ScriptPubKey []byte   // Script of the spent output; the signing placeholder
	SighashType  uint8    // Hash type committed by the signature

	// Set by Signer, cleared by Spend Finalizer
	Signature []byte // DER signature ‖ hash type byte
	PubKey    []byte // Public key whose hash160 matches ScriptPubKey

	// Set by Spend Finalizer
	ScriptSig []byte // push(Signature) ‖ push(PubKey)

	Proprietary map[string][]byte // Extension mechanism
}

// Output is a coin being created.
type Output struct {
	Value        uint64            // Value in satoshis
	ScriptPubKey []byte            // Locking script
	UserAddress  *string           // Address the script was built from, for display
	Proprietary  map[string][]byte // Extension mechanism
}

// InputState is the signing progress of one input.
//
//	Built → PreimageReady → Signed → Finalized
type InputState uint8

const (
	// StateBuilt: the input is complete and unsigned.
	StateBuilt InputState = iota
	// StatePreimageReady: a signer has produced the preimage for this input.
	StatePreimageReady
	// StateSigned: Signature and PubKey are set.
	StateSigned
	// StateFinalized: ScriptSig is set; the input is ready for extraction.
	StateFinalized
)

var stateNames = [...]string{"built", "preimage-ready", "signed", "finalized"}

func (s InputState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// State derives the input's state from the data it carries. PreimageReady
// is not stored in the PTX; the Signer reports it while a preimage is
// outstanding.
func (in *Input) State() InputState {
	switch {
	case len(in.ScriptSig) > 0:
		return StateFinalized
	case len(in.Signature) > 0:
		return StateSigned
	default:
		return StateBuilt
	}
}

// Outpoint returns the outpoint this input spends.
func (in *Input) Outpoint() tx.Outpoint {
	return tx.Outpoint{TxID: in.PrevoutTxID, Index: in.PrevoutIndex}
}

// TotalIn sums the values of the spent outputs.
func (p *PTX) TotalIn() uint64 {
	var sum uint64
	for i := range p.Inputs {
		sum += p.Inputs[i].Value
	}
	return sum
}

// TotalOut sums the output values.
func (p *PTX) TotalOut() uint64 {
	var sum uint64
	for i := range p.Outputs {
		sum += p.Outputs[i].Value
	}
	return sum
}

// UnsignedTx returns the transaction with every input script empty.
func (p *PTX) UnsignedTx() *tx.Transaction {
	t := &tx.Transaction{
		Version:  p.Global.TxVersion,
		LockTime: p.Global.LockTime,
		Inputs:   make([]tx.Input, len(p.Inputs)),
		Outputs:  make([]tx.Output, len(p.Outputs)),
	}
	for i := range p.Inputs {
		in := tx.NewInput(p.Inputs[i].Outpoint())
		in.Sequence = p.Inputs[i].Sequence
		t.Inputs[i] = in
	}
	for i := range p.Outputs {
		t.Outputs[i] = tx.Output{Value: p.Outputs[i].Value, Script: p.Outputs[i].ScriptPubKey}
	}
	return t
}

// SignableTx returns the signing copy for input index: that input carries
// its spent output's script, every other input is blank.
func (p *PTX) SignableTx(index int) (*tx.Transaction, error) {
	if index < 0 || index >= len(p.Inputs) {
		return nil, tx.ErrInputIndex
	}
	return p.UnsignedTx().SigningCopy(index, p.Inputs[index].ScriptPubKey)
}

// FinalTx returns the transaction with each input carrying its ScriptSig.
// Scripts are swapped in one input at a time; the PTX is not shared.
func (p *PTX) FinalTx() *tx.Transaction {
	t := p.UnsignedTx()
	for i := range p.Inputs {
		// i is always in range
		t, _ = t.WithInputScript(i, p.Inputs[i].ScriptSig)
	}
	return t
}

// SighashType values.
const (
	SighashAll uint8 = uint8(tx.SighashAll)
)

// TxVersion1 is the only transaction version produced.
const TxVersion1 uint32 = tx.DefaultVersion

// Clone returns a deep copy of p.
func (p *PTX) Clone() *PTX {
	c := &PTX{
		Global: Global{
			TxVersion:   p.Global.TxVersion,
			LockTime:    p.Global.LockTime,
			Modifiable:  p.Global.Modifiable,
			Proprietary: cloneMap(p.Global.Proprietary),
		},
		Inputs:  make([]Input, len(p.Inputs)),
		Outputs: make([]Output, len(p.Outputs)),
	}
	for i, in := range p.Inputs {
		in.ScriptPubKey = cloneBytes(in.ScriptPubKey)
		in.Signature = cloneBytes(in.Signature)
		in.PubKey = cloneBytes(in.PubKey)
		in.ScriptSig = cloneBytes(in.ScriptSig)
		in.Proprietary = cloneMap(in.Proprietary)
		c.Inputs[i] = in
	}
	for i, out := range p.Outputs {
		out.ScriptPubKey = cloneBytes(out.ScriptPubKey)
		if out.UserAddress != nil {
			addr := *out.UserAddress
			out.UserAddress = &addr
		}
		out.Proprietary = cloneMap(out.Proprietary)
		c.Outputs[i] = out
	}
	return c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

func cloneMap(m map[string][]byte) map[string][]byte {
	c := make(map[string][]byte, len(m))
	for k, v := range m {
		c[k] = cloneBytes(v)
	}
	return c
}
