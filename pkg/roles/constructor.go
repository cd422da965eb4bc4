package roles

import (
	"github.com/suffix-labs/btc-p2pkh/pkg/address"
	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
	"github.com/suffix-labs/btc-p2pkh/pkg/script"
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

// Constructor adds inputs and outputs to a PTX.
//
// Inputs must spend standard P2PKH outputs. Outputs may carry any script;
// AddP2PKHOutput builds the script from an address.
type Constructor struct {
	ptx     *ptx.PTX
	network *address.Network
}

// NewConstructor creates a new Constructor from an existing PTX.
//
// The PTX should have been created by the Creator role.
func NewConstructor(p *ptx.PTX) *Constructor {
	return &Constructor{ptx: p}
}

// WithNetwork restricts output addresses to net.
func (c *Constructor) WithNetwork(net address.Network) *Constructor {
	c.network = &net
	return c
}

// AddInput adds a P2PKH output to spend.
//
// Parameters:
//   - outpoint: Previous transaction id and output index
//   - value: Value of the spent output in satoshis
//   - prevScript: Script of the spent output
//   - sequence: Sequence number (nil uses default 0xFFFFFFFF)
//
// The input is added with SIGHASH_ALL. Signatures will be added by the
// Signer role later.
func (c *Constructor) AddInput(
	outpoint tx.Outpoint,
	value uint64,
	prevScript []byte,
	sequence *uint32,
) error {
	if c.ptx.Global.Modifiable&ptx.FlagInputsModifiable == 0 {
		return &ptx.ProposalError{Code: ptx.ErrInvalidPTX, Message: "inputs not modifiable"}
	}

	if !script.IsP2PKHLock(prevScript) {
		return &ptx.ProposalError{
			Code:    ptx.ErrInvalidInput,
			Message: "spent output " + outpoint.String() + " is not P2PKH",
		}
	}

	for i := range c.ptx.Inputs {
		if c.ptx.Inputs[i].Outpoint() == outpoint {
			return &ptx.ProposalError{
				Code:    ptx.ErrInvalidInput,
				Message: "outpoint " + outpoint.String() + " spent twice",
			}
		}
	}

	seq := tx.DefaultSequence
	if sequence != nil {
		seq = *sequence
	}

	c.ptx.Inputs = append(c.ptx.Inputs, ptx.Input{
		PrevoutTxID:  outpoint.TxID,
		PrevoutIndex: outpoint.Index,
		Sequence:     seq,
		Value:        value,
		ScriptPubKey: append([]byte(nil), prevScript...),
		SighashType:  ptx.SighashAll,
		Proprietary:  make(map[string][]byte),
	})
	return nil
}

// AddOutput adds an output locked by scriptPubKey.
func (c *Constructor) AddOutput(
	value uint64,
	scriptPubKey []byte,
	userAddress *string,
) error {
	if c.ptx.Global.Modifiable&ptx.FlagOutputsModifiable == 0 {
		return &ptx.ProposalError{Code: ptx.ErrInvalidPTX, Message: "outputs not modifiable"}
	}

	c.ptx.Outputs = append(c.ptx.Outputs, ptx.Output{
		Value:        value,
		ScriptPubKey: append([]byte(nil), scriptPubKey...),
		UserAddress:  userAddress,
		Proprietary:  make(map[string][]byte),
	})
	return nil
}

// AddP2PKHOutput pays value to a Base58Check P2PKH address.
func (c *Constructor) AddP2PKHOutput(addr string, value uint64) error {
	hash, version, err := address.DecodeP2PKH(addr)
	if err != nil {
		return &ptx.ProposalError{Code: ptx.ErrInvalidAddress, Message: addr, Cause: err}
	}
	if c.network != nil && version != c.network.P2PKHVersion {
		return &ptx.ProposalError{
			Code:    ptx.ErrInvalidAddress,
			Message: addr + " is not a " + c.network.Name + " address",
		}
	}

	return c.AddOutput(value, script.P2PKHLock(hash), &addr)
}

// Finish returns the PTX with its inputs and outputs.
func (c *Constructor) Finish() *ptx.PTX {
	return c.ptx
}
