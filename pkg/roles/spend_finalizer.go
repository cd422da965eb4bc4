package roles

import (
	"errors"

	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
	"github.com/suffix-labs/btc-p2pkh/pkg/script"
)

// SpendFinalizer finalizes P2PKH inputs by constructing scriptSigs.
//
// The Spend Finalizer role:
//   - Takes the signature and public key stored by the Signer role
//   - Constructs the scriptSig <signature> <pubkey> for each input
//   - Clears the signing metadata after finalization
//
// After this role executes, the inputs are ready for extraction into the
// final transaction.
type SpendFinalizer struct {
	ptx *ptx.PTX
}

// NewSpendFinalizer creates a new Spend Finalizer.
func NewSpendFinalizer(p *ptx.PTX) *SpendFinalizer {
	return &SpendFinalizer{ptx: p}
}

// Finalize finalizes every input that is not finalized yet.
//
// Inputs are independent: an input that cannot be finalized does not stop
// the others. The returned error joins one *ptx.FinalizationError per
// failing input.
func (f *SpendFinalizer) Finalize() error {
	var errs []error
	for i := range f.ptx.Inputs {
		if f.ptx.Inputs[i].State() == ptx.StateFinalized {
			continue
		}
		if err := f.FinalizeInput(i); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FinalizeInput builds the scriptSig of input i.
//
// P2PKH scriptSig format: <signature> <pubkey>
func (f *SpendFinalizer) FinalizeInput(i int) error {
	if i < 0 || i >= len(f.ptx.Inputs) {
		return &ptx.FinalizationError{Code: ptx.ErrInvalidInput, InputIndex: i, Message: "no such input"}
	}
	input := &f.ptx.Inputs[i]

	switch input.State() {
	case ptx.StateFinalized:
		return nil
	case ptx.StateBuilt:
		return &ptx.FinalizationError{Code: ptx.ErrIncompletePTX, InputIndex: i, Message: "input is not signed"}
	}

	if len(input.Signature) < 2 || len(input.PubKey) == 0 {
		return &ptx.FinalizationError{Code: ptx.ErrInvalidPTX, InputIndex: i, Message: "signature or public key missing"}
	}
	if !script.MatchesPubKey(input.ScriptPubKey, input.PubKey) {
		return &ptx.FinalizationError{Code: ptx.ErrInvalidSignature, InputIndex: i, Message: "public key does not match spent script"}
	}

	// The hash type travels as the last byte of the stored signature
	der := input.Signature[:len(input.Signature)-1]
	hashType := input.Signature[len(input.Signature)-1]

	scriptSig, err := script.P2PKHUnlock(der, hashType, input.PubKey)
	if err != nil {
		return &ptx.FinalizationError{Code: ptx.ErrInvalidPTX, InputIndex: i, Message: "building scriptSig", Cause: err}
	}

	input.ScriptSig = scriptSig
	f.clearInputMetadata(input)
	return nil
}

// clearInputMetadata clears signing data now held by the scriptSig.
func (f *SpendFinalizer) clearInputMetadata(input *ptx.Input) {
	input.Signature = nil
	input.PubKey = nil
}

// Finish returns the finalized PTX.
//
// The PTX is now ready for the Transaction Extractor to produce the
// final transaction bytes.
func (f *SpendFinalizer) Finish() *ptx.PTX {
	return f.ptx
}
