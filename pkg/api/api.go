// Package api provides the high-level public API for PTX operations.
//
// This is the main entry point for applications using the btc-p2pkh
// library. Every function takes and returns serialized PTX bytes so that
// the roles can run in different processes:
//
//  1. ProposeTransaction - Creates an IO-finalized PTX from inputs and outputs
//  2. VerifyBeforeSigning - Validates a PTX before signing
//  3. GetSighash / GetPreimage - Computes the signature hash of an input
//  4. AppendSignature - Adds an externally produced signature to an input
//  5. SignAll - Signs every input a set of WIF keys can spend
//  6. Combine - Merges multiple PTXs with partial signatures
//  7. FinalizeAndExtract - Finalizes and extracts the final transaction
//  8. VerifyTransaction - Checks every scriptSig of a finalized PTX
//  9. ParsePTX / SerializePTX - Binary encoding/decoding
package api

import (
	"fmt"

	"github.com/suffix-labs/btc-p2pkh/pkg/address"
	"github.com/suffix-labs/btc-p2pkh/pkg/bip21"
	"github.com/suffix-labs/btc-p2pkh/pkg/crypto"
	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
	"github.com/suffix-labs/btc-p2pkh/pkg/roles"
	"github.com/suffix-labs/btc-p2pkh/pkg/script"
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

// EC is the signer used by every API function.
var EC crypto.Signer = crypto.Secp256k1{}

// Input represents a P2PKH output to spend.
type Input struct {
	Outpoint     tx.Outpoint // Previous transaction id and output index
	Value        uint64      // Value in satoshis
	ScriptPubKey []byte      // Locking script of the spent output
	Sequence     *uint32     // Sequence number (nil = 0xFFFFFFFF)
}

// Output represents a payment. Exactly one of Address and ScriptPubKey is
// set.
type Output struct {
	Value        uint64 // Value in satoshis
	Address      string // Base58Check P2PKH address
	ScriptPubKey []byte // Raw locking script
}

// TransactionProposal contains all inputs and outputs for a transaction.
type TransactionProposal struct {
	Inputs  []Input
	Outputs []Output

	// Payments are BIP 21 requests paid after Outputs. Each must carry an
	// amount.
	Payments []*bip21.PaymentRequest

	LockTime *uint32          // Optional nLockTime
	Network  *address.Network // Restricts output addresses when set
}

// ProposeTransaction creates a PTX from a transaction proposal.
//
// This function:
//  1. Creates a new PTX using the Creator role
//  2. Adds all inputs and outputs using the Constructor role
//  3. Finalizes I/O using the IO Finalizer role
//
// The resulting PTX is ready for signing.
func ProposeTransaction(proposal *TransactionProposal) ([]byte, error) {
	creator := roles.NewCreator()
	if proposal.LockTime != nil {
		creator.WithLockTime(*proposal.LockTime)
	}

	constructor := roles.NewConstructor(creator.Create())
	if proposal.Network != nil {
		constructor.WithNetwork(*proposal.Network)
	}

	for i, input := range proposal.Inputs {
		err := constructor.AddInput(input.Outpoint, input.Value, input.ScriptPubKey, input.Sequence)
		if err != nil {
			return nil, fmt.Errorf("failed to add input %d: %w", i, err)
		}
	}

	for i, output := range proposal.Outputs {
		var err error
		switch {
		case output.Address != "" && output.ScriptPubKey != nil:
			err = &ptx.ProposalError{Code: ptx.ErrInvalidInput, Message: "both address and script given"}
		case output.Address != "":
			err = constructor.AddP2PKHOutput(output.Address, output.Value)
		default:
			err = constructor.AddOutput(output.Value, output.ScriptPubKey, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to add output %d: %w", i, err)
		}
	}

	for i, req := range proposal.Payments {
		if req.Amount == nil {
			return nil, fmt.Errorf("payment %d: %w", i,
				&ptx.ProposalError{Code: ptx.ErrInvalidInput, Message: "payment request has no amount"})
		}
		if err := constructor.AddP2PKHOutput(req.Address, *req.Amount); err != nil {
			return nil, fmt.Errorf("payment %d: %w", i, err)
		}
	}

	ioFinalizer := roles.NewIoFinalizer(constructor.Finish())
	if err := ioFinalizer.Finalize(); err != nil {
		return nil, fmt.Errorf("IO finalization failed: %w", err)
	}

	return SerializePTX(ioFinalizer.Finish())
}

// VerifyBeforeSigning validates a PTX before signing.
//
// Wallets should call this before presenting the transaction to the
// user for signing.
func VerifyBeforeSigning(ptxBytes []byte) error {
	p, err := ParsePTX(ptxBytes)
	if err != nil {
		return err
	}
	return roles.NewVerifier(p, EC).VerifyBeforeSigning()
}

// GetSighash computes the SIGHASH_ALL signature hash for an input.
//
// This is the 32-byte hash that should be signed with the private key.
func GetSighash(ptxBytes []byte, inputIndex int) ([32]byte, error) {
	p, err := ParsePTX(ptxBytes)
	if err != nil {
		return [32]byte{}, err
	}
	return roles.NewSigner(p, EC).Sighash(inputIndex)
}

// GetPreimage returns the bytes whose hash256 is GetSighash.
func GetPreimage(ptxBytes []byte, inputIndex int) ([]byte, error) {
	p, err := ParsePTX(ptxBytes)
	if err != nil {
		return nil, err
	}
	return roles.NewSigner(p, EC).Preimage(inputIndex)
}

// AppendSignature adds a signature made outside this library to an input.
//
// signature is DER || SIGHASH type byte; pubkey is the key whose hash the
// input's script commits to.
//
// Multiple parties can call this function independently to add their
// signatures. The Combiner can later merge them.
func AppendSignature(ptxBytes []byte, inputIndex int, signature, pubkey []byte) ([]byte, error) {
	p, err := ParsePTX(ptxBytes)
	if err != nil {
		return nil, err
	}

	signer := roles.NewSigner(p, EC)
	if err := signer.AppendSignature(inputIndex, signature, pubkey); err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}

	return SerializePTX(signer.Finish())
}

// SignAll signs every input whose script pays to one of the WIF keys.
// Inputs no key matches are left unsigned.
//
// The returned slice holds one error per input; the PTX bytes include
// every signature that succeeded.
func SignAll(ptxBytes []byte, wifs []string, workers int) ([]byte, []error, error) {
	p, err := ParsePTX(ptxBytes)
	if err != nil {
		return nil, nil, err
	}

	keys := make(map[string]*address.WIF, len(wifs))
	for i, s := range wifs {
		w, err := address.DecodeWIF(s)
		if err != nil {
			return nil, nil, fmt.Errorf("key %d: %w", i, err)
		}
		defer w.Zero()

		pub, err := w.PublicKey(EC)
		if err != nil {
			return nil, nil, fmt.Errorf("key %d: %w", i, err)
		}
		keys[string(script.P2PKHLockFromPubKey(pub))] = w
	}

	signer := roles.NewSigner(p, EC)
	if workers > 0 {
		signer.WithWorkers(workers)
	}
	errs := signer.SignInputs(func(_ int, in *ptx.Input) ([]byte, bool, error) {
		w, ok := keys[string(in.ScriptPubKey)]
		if !ok {
			return nil, false, nil
		}
		return append([]byte(nil), w.PrivateKey[:]...), w.Compressed, nil
	})

	out, err := SerializePTX(signer.Finish())
	if err != nil {
		return nil, nil, err
	}
	return out, errs, nil
}

// Combine merges multiple PTXs with partial signatures.
//
// All PTXs must represent the same transaction (same inputs/outputs).
func Combine(ptxBytesList [][]byte) ([]byte, error) {
	ptxs := make([]*ptx.PTX, len(ptxBytesList))
	for i, b := range ptxBytesList {
		p, err := ParsePTX(b)
		if err != nil {
			return nil, fmt.Errorf("PTX %d: %w", i, err)
		}
		ptxs[i] = p
	}

	combined, err := roles.NewCombiner(ptxs).Combine()
	if err != nil {
		return nil, err
	}
	return SerializePTX(combined)
}

// FinalizeAndExtract finalizes a PTX and extracts the raw transaction.
//
// This function:
//  1. Finalizes inputs using the Spend Finalizer
//  2. Checks every scriptSig against the script it spends
//  3. Extracts the final transaction using the Transaction Extractor
//
// The resulting transaction bytes are ready to broadcast to the network.
// The txid is returned in display order.
func FinalizeAndExtract(ptxBytes []byte) ([]byte, string, error) {
	p, err := ParsePTX(ptxBytes)
	if err != nil {
		return nil, "", err
	}

	spendFinalizer := roles.NewSpendFinalizer(p)
	if err := spendFinalizer.Finalize(); err != nil {
		return nil, "", fmt.Errorf("spend finalization failed: %w", err)
	}
	p = spendFinalizer.Finish()

	if err := roles.NewVerifier(p, EC).VerifySpends(); err != nil {
		return nil, "", err
	}

	return roles.NewTxExtractor(p).Extract()
}

// VerifyTransaction checks every scriptSig of a finalized PTX against the
// script it spends.
func VerifyTransaction(ptxBytes []byte) error {
	p, err := ParsePTX(ptxBytes)
	if err != nil {
		return err
	}
	return roles.NewVerifier(p, EC).VerifySpends()
}

// ParsePTX deserializes a PTX from bytes.
func ParsePTX(ptxBytes []byte) (*ptx.PTX, error) {
	return ptx.Parse(ptxBytes)
}

// SerializePTX serializes a PTX to bytes.
func SerializePTX(p *ptx.PTX) ([]byte, error) {
	return ptx.Serialize(p)
}

// ParsePaymentRequest parses a BIP 21 payment request URI.
func ParsePaymentRequest(uri string) (*bip21.PaymentRequest, error) {
	return bip21.Parse(uri)
}
