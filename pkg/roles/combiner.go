package roles

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
)

// Combiner merges multiple PTXs into a single PTX.
//
// The Combiner role enables parallel signing workflows:
//   - Each party signs the inputs it holds keys for in its own copy
//   - The Combiner merges all signatures into one PTX
//
// The Combiner merges:
//   - Signatures and public keys of unsigned inputs
//   - ScriptSigs of finalized inputs
//   - Proprietary fields
//
// The inputs are never modified; Combine works on a copy of the first PTX.
type Combiner struct {
	ptxs []*ptx.PTX
}

// NewCombiner creates a new Combiner.
//
// Parameters:
//   - ptxs: List of PTXs to combine (must all represent the same transaction)
func NewCombiner(ptxs []*ptx.PTX) *Combiner {
	return &Combiner{ptxs: ptxs}
}

// Combine merges all PTXs into a single PTX.
//
// Returns an error if:
//   - PTXs are incompatible (different unsigned transactions)
//   - An input carries different signatures in two PTXs
func (c *Combiner) Combine() (*ptx.PTX, error) {
	if len(c.ptxs) == 0 {
		return nil, &ptx.CombineError{Message: "no PTXs to combine"}
	}

	// Use a copy of the first PTX as base
	result := c.ptxs[0].Clone()

	for i := 1; i < len(c.ptxs); i++ {
		if err := c.mergeInto(result, c.ptxs[i]); err != nil {
			return nil, &ptx.CombineError{Message: fmt.Sprintf("merging PTX %d", i), Cause: err}
		}
	}

	return result, nil
}

// mergeInto merges src into dst.
func (c *Combiner) mergeInto(dst, src *ptx.PTX) error {
	if err := c.validateCompatible(dst, src); err != nil {
		return err
	}

	// A flag stays set only if every party still allows the modification
	dst.Global.Modifiable &= src.Global.Modifiable
	mergeProprietary(dst.Global.Proprietary, src.Global.Proprietary)

	for i := range dst.Inputs {
		if err := mergeInput(i, &dst.Inputs[i], &src.Inputs[i]); err != nil {
			return err
		}
	}
	for i := range dst.Outputs {
		out := &dst.Outputs[i]
		if out.UserAddress == nil && src.Outputs[i].UserAddress != nil {
			addr := *src.Outputs[i].UserAddress
			out.UserAddress = &addr
		}
		mergeProprietary(out.Proprietary, src.Outputs[i].Proprietary)
	}

	return nil
}

// validateCompatible checks if two PTXs represent the same transaction.
//
// PTXs are compatible if they have the same unsigned transaction and agree
// on the value and script of every spent output.
func (c *Combiner) validateCompatible(a, b *ptx.PTX) error {
	if len(a.Inputs) != len(b.Inputs) {
		return fmt.Errorf("incompatible input counts: %d != %d", len(a.Inputs), len(b.Inputs))
	}
	if len(a.Outputs) != len(b.Outputs) {
		return fmt.Errorf("incompatible output counts: %d != %d", len(a.Outputs), len(b.Outputs))
	}

	if a.UnsignedTx().TxID() != b.UnsignedTx().TxID() {
		return errors.New("PTXs describe different transactions")
	}

	for i := range a.Inputs {
		ai, bi := &a.Inputs[i], &b.Inputs[i]
		if ai.Value != bi.Value || !bytes.Equal(ai.ScriptPubKey, bi.ScriptPubKey) || ai.SighashType != bi.SighashType {
			return fmt.Errorf("input %d: spent output differs", i)
		}
	}

	return nil
}

func mergeInput(i int, dst, src *ptx.Input) error {
	if err := mergeField(&dst.ScriptSig, src.ScriptSig); err != nil {
		return conflict(i, "scriptSig", err)
	}

	// Once finalized, signing metadata is no longer carried
	if len(dst.ScriptSig) > 0 {
		dst.Signature = nil
		dst.PubKey = nil
	} else {
		if err := mergeField(&dst.Signature, src.Signature); err != nil {
			return conflict(i, "signature", err)
		}
		if err := mergeField(&dst.PubKey, src.PubKey); err != nil {
			return conflict(i, "public key", err)
		}
	}

	mergeProprietary(dst.Proprietary, src.Proprietary)
	return nil
}

var errDiffers = errors.New("values differ")

func mergeField(dst *[]byte, src []byte) error {
	switch {
	case len(src) == 0:
		return nil
	case len(*dst) == 0:
		*dst = append([]byte(nil), src...)
		return nil
	case !bytes.Equal(*dst, src):
		return errDiffers
	default:
		return nil
	}
}

func conflict(i int, field string, err error) error {
	return fmt.Errorf("%s: input %d: conflicting %s: %w", ptx.ErrConflictingData, i, field, err)
}

func mergeProprietary(dst, src map[string][]byte) {
	for key, value := range src {
		if _, exists := dst[key]; !exists {
			dst[key] = append([]byte(nil), value...)
		}
	}
}
