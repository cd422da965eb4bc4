package roles

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/suffix-labs/btc-p2pkh/pkg/crypto"
	"github.com/suffix-labs/btc-p2pkh/pkg/digest"
	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
	"github.com/suffix-labs/btc-p2pkh/pkg/script"
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

// Signer adds signatures to P2PKH inputs.
//
// The Signer role:
//   - Computes the legacy SIGHASH_ALL preimage and signature hash for each input
//   - Signs the sighashes with private keys through a crypto.Signer
//   - Stores the signature and public key in the PTX
//   - Updates modification flags based on SIGHASH types
//
// Multiple signers can operate in parallel on copies of the same PTX, each
// signing their inputs. The Combiner role can then merge the signatures
// together.
type Signer struct {
	ptx     *ptx.PTX
	ec      crypto.Signer
	workers int

	mu       sync.Mutex
	prepared map[int]struct{} // inputs with an outstanding preimage
}

// KeyLookup returns the private key for input i. A nil key with a nil error
// leaves the input unsigned. The Signer zeroes the returned key after use.
type KeyLookup func(i int, in *ptx.Input) (priv []byte, compressed bool, err error)

// NewSigner creates a new Signer using ec for all EC operations.
func NewSigner(p *ptx.PTX, ec crypto.Signer) *Signer {
	return &Signer{
		ptx:      p,
		ec:       ec,
		workers:  runtime.GOMAXPROCS(0),
		prepared: make(map[int]struct{}),
	}
}

// WithWorkers bounds the number of inputs SignInputs signs at once.
func (s *Signer) WithWorkers(n int) *Signer {
	if n < 1 {
		n = 1
	}
	s.workers = n
	return s
}

// Preimage returns the bytes hashed to sign input i: the transaction with
// input i carrying its spent output's script, every other input script
// empty, followed by the 4-byte SIGHASH_ALL word.
//
// The input is reported as PreimageReady until it is signed.
func (s *Signer) Preimage(i int) ([]byte, error) {
	in, err := s.input(i)
	if err != nil {
		return nil, err
	}
	if err := checkSighashType(i, in); err != nil {
		return nil, err
	}

	signing, err := s.ptx.SignableTx(i)
	if err != nil {
		return nil, &ptx.SighashError{InputIndex: i, Message: "building signing copy", Cause: err}
	}
	pre := signing.Serialize(tx.SighashAll)

	s.markPrepared(i)
	return pre, nil
}

// Sighash returns hash256 of Preimage(i), the digest an external signer
// signs.
func (s *Signer) Sighash(i int) ([digest.Hash256Size]byte, error) {
	pre, err := s.Preimage(i)
	if err != nil {
		return [digest.Hash256Size]byte{}, err
	}
	return digest.Hash256(pre), nil
}

// State reports the signing progress of input i.
func (s *Signer) State(i int) (ptx.InputState, error) {
	if err := s.checkIndex(i); err != nil {
		return 0, err
	}

	st := s.ptx.Inputs[i].State()
	if st == ptx.StateBuilt {
		s.mu.Lock()
		_, ok := s.prepared[i]
		s.mu.Unlock()
		if ok {
			return ptx.StatePreimageReady, nil
		}
	}
	return st, nil
}

// SignInput signs input i with priv.
//
// The public key derived from priv must hash to the input's P2PKH script;
// compressed selects which form is committed to. The produced signature is
// verified before it is stored.
//
// The signature format is: DER-encoded ECDSA signature || SIGHASH type byte
func (s *Signer) SignInput(i int, priv []byte, compressed bool) error {
	if _, err := s.input(i); err != nil {
		return err
	}

	sig, err := s.sign(s.ptx.UnsignedTx(), i, priv, compressed)
	if err != nil {
		return err
	}
	s.apply(i, sig)
	return nil
}

// SignInputs signs every input for which keys returns a key, up to the
// configured number of inputs at a time. Finalized inputs are skipped.
//
// The returned slice has one entry per input; a failure on one input does
// not prevent the others from being signed.
func (s *Signer) SignInputs(keys KeyLookup) []error {
	base := s.ptx.UnsignedTx()
	errs := make([]error, len(s.ptx.Inputs))
	sigs := make([]*inputSignature, len(s.ptx.Inputs))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range s.ptx.Inputs {
		if s.ptx.Inputs[i].State() == ptx.StateFinalized {
			continue
		}
		i := i
		g.Go(func() error {
			priv, compressed, err := keys(i, &s.ptx.Inputs[i])
			if err != nil {
				errs[i] = &ptx.SignatureError{InputIndex: i, Message: "key lookup", Cause: err}
				return nil
			}
			if priv == nil {
				return nil
			}
			defer clear(priv)

			sigs[i], errs[i] = s.sign(base, i, priv, compressed)
			return nil
		})
	}
	_ = g.Wait()

	for i, sig := range sigs {
		if sig != nil {
			s.apply(i, sig)
		}
	}
	return errs
}

// AppendSignature stores a signature produced outside this process.
//
// sig is DER || SIGHASH type byte. It must verify against pubkey over the
// input's signature hash, and pubkey must hash to the input's script.
func (s *Signer) AppendSignature(i int, sig, pubkey []byte) error {
	in, err := s.input(i)
	if err != nil {
		return err
	}
	if err := checkSighashType(i, in); err != nil {
		return err
	}
	if len(sig) < 2 {
		return &ptx.SignatureError{InputIndex: i, Message: "signature too short"}
	}
	if sig[len(sig)-1] != in.SighashType {
		return &ptx.SignatureError{
			InputIndex: i,
			Message:    fmt.Sprintf("signature hash type 0x%02x, input requires 0x%02x", sig[len(sig)-1], in.SighashType),
		}
	}
	if !script.MatchesPubKey(in.ScriptPubKey, pubkey) {
		return &ptx.SignatureError{InputIndex: i, Message: "public key does not match spent script"}
	}
	if len(in.Signature) > 0 && !bytes.Equal(in.Signature, sig) {
		return &ptx.SignatureError{InputIndex: i, Message: "input already carries a different signature"}
	}

	h, err := s.ptx.UnsignedTx().SignatureHash(i, in.ScriptPubKey, tx.SighashAll)
	if err != nil {
		return &ptx.SighashError{InputIndex: i, Message: "computing sighash", Cause: err}
	}
	if !s.ec.Verify(h, sig[:len(sig)-1], pubkey) {
		return &ptx.SignatureError{InputIndex: i, Message: "signature does not verify"}
	}

	s.apply(i, &inputSignature{
		sig:    append([]byte(nil), sig...),
		pubkey: append([]byte(nil), pubkey...),
	})
	return nil
}

// Finish returns the signed PTX.
//
// The PTX now contains signatures and can be:
//   - Passed to the Combiner if multiple parties are signing
//   - Passed to the Spend Finalizer to create final scriptSigs
func (s *Signer) Finish() *ptx.PTX {
	return s.ptx
}

type inputSignature struct {
	sig    []byte // DER || hash type
	pubkey []byte
}

// sign produces the signature for input i against base, the unsigned
// transaction. It reads the PTX but never writes to it.
func (s *Signer) sign(base *tx.Transaction, i int, priv []byte, compressed bool) (*inputSignature, error) {
	in := &s.ptx.Inputs[i]
	if err := checkSighashType(i, in); err != nil {
		return nil, err
	}

	pubkey, err := s.ec.DerivePublic(priv, compressed)
	if err != nil {
		return nil, &ptx.SignatureError{InputIndex: i, Message: "deriving public key", Cause: err}
	}
	if !script.MatchesPubKey(in.ScriptPubKey, pubkey) {
		return nil, &ptx.SignatureError{InputIndex: i, Message: "key does not match spent script"}
	}

	h, err := base.SignatureHash(i, in.ScriptPubKey, tx.SighashAll)
	if err != nil {
		return nil, &ptx.SighashError{InputIndex: i, Message: "computing sighash", Cause: err}
	}
	s.markPrepared(i)

	der, err := s.ec.Sign(h, priv)
	if err != nil {
		return nil, &ptx.SignatureError{InputIndex: i, Message: "signing", Cause: err}
	}
	if !s.ec.Verify(h, der, pubkey) {
		return nil, &ptx.SignatureError{InputIndex: i, Message: "produced signature does not verify"}
	}

	sig := make([]byte, 0, len(der)+1)
	sig = append(sig, der...)
	sig = append(sig, in.SighashType)
	return &inputSignature{sig: sig, pubkey: pubkey}, nil
}

func (s *Signer) apply(i int, sig *inputSignature) {
	in := &s.ptx.Inputs[i]
	in.Signature = sig.sig
	in.PubKey = sig.pubkey

	s.mu.Lock()
	delete(s.prepared, i)
	s.mu.Unlock()

	s.updateModifiableFlags(in.SighashType)
}

func (s *Signer) markPrepared(i int) {
	s.mu.Lock()
	s.prepared[i] = struct{}{}
	s.mu.Unlock()
}

func (s *Signer) checkIndex(i int) error {
	if i < 0 || i >= len(s.ptx.Inputs) {
		return &ptx.SighashError{
			InputIndex: i,
			Message:    fmt.Sprintf("input index out of bounds (have %d inputs)", len(s.ptx.Inputs)),
			Cause:      tx.ErrInputIndex,
		}
	}
	return nil
}

// input returns input i if it can still be signed.
func (s *Signer) input(i int) (*ptx.Input, error) {
	if err := s.checkIndex(i); err != nil {
		return nil, err
	}
	in := &s.ptx.Inputs[i]
	if in.State() == ptx.StateFinalized {
		return nil, &ptx.SignatureError{InputIndex: i, Message: "input already finalized"}
	}
	return in, nil
}

func checkSighashType(i int, in *ptx.Input) error {
	if in.SighashType != ptx.SighashAll {
		return &ptx.SighashError{
			InputIndex: i,
			Message:    fmt.Sprintf("unsupported sighash type 0x%02x", in.SighashType),
		}
	}
	return nil
}

// updateModifiableFlags updates Modifiable based on SIGHASH type.
//
// SIGHASH_ALL signs all inputs and outputs, so nothing stays modifiable.
func (s *Signer) updateModifiableFlags(sighashType uint8) {
	if sighashType == ptx.SighashAll {
		s.ptx.Global.Modifiable &^= ptx.FlagInputsModifiable | ptx.FlagOutputsModifiable
	}
}
