package roles

import (
	"fmt"

	"github.com/suffix-labs/btc-p2pkh/pkg/crypto"
	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
	"github.com/suffix-labs/btc-p2pkh/pkg/script"
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

// Verifier checks a PTX before it is signed and after it is finalized.
//
// It does not run a script interpreter. A finalized input is checked the
// way OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG would check it:
// the pushed public key must hash to the spent script and the pushed
// signature must verify over the input's signature hash.
type Verifier struct {
	ptx *ptx.PTX
	ec  crypto.Signer
}

// NewVerifier creates a new Verifier.
func NewVerifier(p *ptx.PTX, ec crypto.Signer) *Verifier {
	return &Verifier{ptx: p, ec: ec}
}

// VerifyBeforeSigning validates a PTX before signing.
//
// This function checks:
//   - Inputs and outputs are no longer modifiable
//   - Every input spends a P2PKH script with SIGHASH_ALL
//   - No value exceeds tx.MaxMoney and the totals do not overflow
//   - Outputs do not exceed inputs
func (v *Verifier) VerifyBeforeSigning() error {
	if v.ptx.Global.Modifiable != 0 {
		return &ptx.VerificationFailure{
			Code:    ptx.ErrIncompletePTX,
			Message: fmt.Sprintf("PTX not IO-finalized (modifiable = 0x%x)", v.ptx.Global.Modifiable),
		}
	}
	if len(v.ptx.Inputs) == 0 || len(v.ptx.Outputs) == 0 {
		return &ptx.VerificationFailure{Code: ptx.ErrIncompletePTX, Message: "PTX needs inputs and outputs"}
	}

	for i := range v.ptx.Inputs {
		in := &v.ptx.Inputs[i]
		if !script.IsP2PKHLock(in.ScriptPubKey) {
			return &ptx.VerificationFailure{
				Code:    ptx.ErrInvalidInput,
				Message: fmt.Sprintf("input %d does not spend a P2PKH script", i),
				Details: map[string]interface{}{"input": i},
			}
		}
		if in.SighashType != ptx.SighashAll {
			return &ptx.VerificationFailure{
				Code:    ptx.ErrInvalidSighash,
				Message: fmt.Sprintf("input %d uses sighash type 0x%02x", i, in.SighashType),
				Details: map[string]interface{}{"input": i},
			}
		}
	}

	in, out, err := valueTotals(v.ptx)
	if err != nil {
		return &ptx.VerificationFailure{Code: ptx.ErrInvalidInput, Message: err.Error()}
	}
	if out > in {
		return &ptx.VerificationFailure{
			Code:    ptx.ErrInsufficientFunds,
			Message: fmt.Sprintf("outputs total %d, inputs total %d", out, in),
			Details: map[string]interface{}{"in": in, "out": out},
		}
	}
	return nil
}

// VerifySpends checks the scriptSig of every input against the script it
// spends. Every input must be finalized.
func (v *Verifier) VerifySpends() error {
	unsigned := v.ptx.UnsignedTx()
	for i := range v.ptx.Inputs {
		if err := v.verifyInput(unsigned, i); err != nil {
			return err
		}
	}
	return nil
}

func (v *Verifier) verifyInput(unsigned *tx.Transaction, i int) error {
	in := &v.ptx.Inputs[i]
	fail := func(code, msg string) error {
		return &ptx.VerificationFailure{
			Code:    code,
			Message: fmt.Sprintf("input %d: %s", i, msg),
			Details: map[string]interface{}{"input": i, "outpoint": in.Outpoint().String()},
		}
	}

	if in.State() != ptx.StateFinalized {
		return fail(ptx.ErrIncompletePTX, "not finalized")
	}

	sig, pubkey, err := script.ParseP2PKHUnlock(in.ScriptSig)
	if err != nil {
		return fail(ptx.ErrInvalidPTX, err.Error())
	}
	if !script.MatchesPubKey(in.ScriptPubKey, pubkey) {
		return fail(ptx.ErrInvalidSignature, "public key does not match spent script")
	}
	if sig[len(sig)-1] != in.SighashType {
		return fail(ptx.ErrInvalidSighash, fmt.Sprintf("signature hash type 0x%02x", sig[len(sig)-1]))
	}

	h, err := unsigned.SignatureHash(i, in.ScriptPubKey, tx.SighashAll)
	if err != nil {
		return fail(ptx.ErrInvalidSighash, err.Error())
	}
	if !v.ec.Verify(h, sig[:len(sig)-1], pubkey) {
		return fail(ptx.ErrInvalidSignature, "signature does not verify")
	}
	return nil
}
