package roles

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btc-p2pkh/pkg/address"
	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

func proposalCode(t *testing.T, err error) string {
	t.Helper()
	var pe *ptx.ProposalError
	require.ErrorAs(t, err, &pe)
	return pe.Code
}

func TestCreatorDefaults(t *testing.T) {
	p := NewCreator().Create()
	assert.Equal(t, tx.DefaultVersion, p.Global.TxVersion)
	assert.Equal(t, uint32(0), p.Global.LockTime)
	assert.Equal(t, ptx.FlagInputsModifiable|ptx.FlagOutputsModifiable, p.Global.Modifiable)
	assert.NotNil(t, p.Global.Proprietary)
	assert.Empty(t, p.Inputs)
	assert.Empty(t, p.Outputs)

	p = NewCreator().WithVersion(2).WithLockTime(500_000_001).Create()
	assert.Equal(t, uint32(2), p.Global.TxVersion)
	assert.Equal(t, uint32(500_000_001), p.Global.LockTime)
}

func TestConstructorInputs(t *testing.T) {
	c := NewConstructor(NewCreator().Create())
	op := tx.Outpoint{Index: 3}
	lock := p2pkhScript(t, fixtureSelf)

	seq := uint32(0xFFFFFFFE)
	require.NoError(t, c.AddInput(op, 1_000, lock, &seq))
	in := c.Finish().Inputs[0]
	assert.Equal(t, seq, in.Sequence)
	assert.Equal(t, ptx.SighashAll, in.SighashType)
	assert.Equal(t, ptx.StateBuilt, in.State())

	err := c.AddInput(op, 1_000, lock, nil)
	assert.Equal(t, ptx.ErrInvalidInput, proposalCode(t, err), "duplicate outpoint")

	err = c.AddInput(tx.Outpoint{Index: 4}, 1_000, []byte{0x51}, nil)
	assert.Equal(t, ptx.ErrInvalidInput, proposalCode(t, err), "non-P2PKH script")

	// The caller's script is copied
	lock[0] = 0x00
	assert.Equal(t, byte(0x76), c.Finish().Inputs[0].ScriptPubKey[0])
}

func TestConstructorOutputs(t *testing.T) {
	c := NewConstructor(NewCreator().Create()).WithNetwork(address.MainNet)

	err := c.AddP2PKHOutput(fixtureDest, 1)
	assert.Equal(t, ptx.ErrInvalidAddress, proposalCode(t, err), "testnet address on mainnet")

	err = c.AddP2PKHOutput("1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAX", 1)
	assert.Equal(t, ptx.ErrInvalidAddress, proposalCode(t, err), "bad checksum")

	require.NoError(t, c.AddP2PKHOutput("1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAJ", 5))
	out := c.Finish().Outputs[0]
	require.NotNil(t, out.UserAddress)
	assert.Equal(t, "1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAJ", *out.UserAddress)
	assert.Equal(t, p2pkhScript(t, "1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAJ"), out.ScriptPubKey)

	require.NoError(t, c.AddOutput(0, []byte{0x6a}, nil))
	assert.Len(t, c.Finish().Outputs, 2)
}

func TestIoFinalizerChecks(t *testing.T) {
	lock := p2pkhScript(t, fixtureSelf)

	f := NewIoFinalizer(NewCreator().Create())
	assert.Equal(t, ptx.ErrInvalidInput, proposalCode(t, f.Finalize()), "no inputs")

	c := NewConstructor(NewCreator().Create())
	require.NoError(t, c.AddInput(tx.Outpoint{}, 100, lock, nil))
	f = NewIoFinalizer(c.Finish())
	assert.Equal(t, ptx.ErrInvalidInput, proposalCode(t, f.Finalize()), "no outputs")

	require.NoError(t, c.AddOutput(101, lock, nil))
	f = NewIoFinalizer(c.Finish())
	assert.Equal(t, ptx.ErrInsufficientFunds, proposalCode(t, f.Finalize()))
	assert.NotZero(t, c.Finish().Global.Modifiable, "failed finalization leaves flags")

	c = NewConstructor(NewCreator().Create())
	require.NoError(t, c.AddInput(tx.Outpoint{}, math.MaxUint64, lock, nil))
	require.NoError(t, c.AddInput(tx.Outpoint{Index: 1}, 1, lock, nil))
	require.NoError(t, c.AddOutput(1, lock, nil))
	f = NewIoFinalizer(c.Finish())
	assert.Equal(t, ptx.ErrInvalidInput, proposalCode(t, f.Finalize()), "overflow")
}

func TestIoFinalizerRejectsValueAboveMaxMoney(t *testing.T) {
	lock := p2pkhScript(t, fixtureSelf)
	c := NewConstructor(NewCreator().Create())
	require.NoError(t, c.AddInput(tx.Outpoint{}, tx.MaxMoney+1, lock, nil))
	require.NoError(t, c.AddOutput(1, lock, nil))

	err := NewIoFinalizer(c.Finish()).Finalize()
	assert.Equal(t, ptx.ErrInvalidInput, proposalCode(t, err))
	assert.Contains(t, err.Error(), "exceeds")
}

func TestVerifierRejectsWrappingOutputs(t *testing.T) {
	p := fixturePTX(t)
	p.Outputs[0].Value = math.MaxUint64
	p.Outputs[1].Value = 2

	b, err := ptx.Serialize(p)
	require.NoError(t, err)
	received, err := ptx.Parse(b)
	require.NoError(t, err)

	err = NewVerifier(received, ec).VerifyBeforeSigning()
	var vf *ptx.VerificationFailure
	require.ErrorAs(t, err, &vf)
	assert.Equal(t, ptx.ErrInvalidInput, vf.Code)

	// Each value in range, outputs still above inputs
	received.Outputs[0].Value = tx.MaxMoney
	received.Outputs[1].Value = 0
	err = NewVerifier(received, ec).VerifyBeforeSigning()
	require.ErrorAs(t, err, &vf)
	assert.Equal(t, ptx.ErrInsufficientFunds, vf.Code)

	require.NoError(t, NewVerifier(fixturePTX(t), ec).VerifyBeforeSigning())
}

func TestStructureLockedAfterIoFinalizer(t *testing.T) {
	p := fixturePTX(t)
	c := NewConstructor(p)

	err := c.AddInput(tx.Outpoint{Index: 9}, 1, p2pkhScript(t, fixtureSelf), nil)
	assert.Equal(t, ptx.ErrInvalidPTX, proposalCode(t, err))
	err = c.AddP2PKHOutput(fixtureDest, 1)
	assert.Equal(t, ptx.ErrInvalidPTX, proposalCode(t, err))
}

func TestSignerErrors(t *testing.T) {
	p := fixturePTX(t)
	s := NewSigner(p, ec)

	var shErr *ptx.SighashError
	_, err := s.Preimage(1)
	require.ErrorAs(t, err, &shErr)
	assert.True(t, errors.Is(err, tx.ErrInputIndex))

	_, err = s.State(-1)
	require.ErrorAs(t, err, &shErr)
	assert.Equal(t, -1, shErr.InputIndex)

	var sigErr *ptx.SignatureError
	err = s.SignInput(0, make([]byte, 32), true)
	require.ErrorAs(t, err, &sigErr, "zero key")

	p.Inputs[0].SighashType = 0x03
	_, err = s.Sighash(0)
	require.ErrorAs(t, err, &shErr)
	p.Inputs[0].SighashType = ptx.SighashAll

	require.NoError(t, s.SignInput(0, mustHex(t, fixturePriv), true))
	require.NoError(t, NewSpendFinalizer(p).Finalize())
	err = s.SignInput(0, mustHex(t, fixturePriv), true)
	require.ErrorAs(t, err, &sigErr, "finalized input")
}

func TestExtractorRequiresFinalizedInputs(t *testing.T) {
	var finErr *ptx.FinalizationError

	_, _, err := NewTxExtractor(NewCreator().Create()).Extract()
	require.ErrorAs(t, err, &finErr)
	assert.Equal(t, -1, finErr.InputIndex)

	p := fixturePTX(t)
	_, err = NewTxExtractor(p).ExtractTx()
	require.ErrorAs(t, err, &finErr)
	assert.Equal(t, 0, finErr.InputIndex)
	assert.Contains(t, err.Error(), "built")

	err = NewSpendFinalizer(p).FinalizeInput(5)
	assert.ErrorAs(t, err, &finErr)
}

func TestSpendFinalizerRejectsMismatchedKey(t *testing.T) {
	p := fixturePTX(t)
	require.NoError(t, NewSigner(p, ec).SignInput(0, mustHex(t, fixturePriv), true))

	// Swap in the uncompressed encoding of the same key
	uncompressed, err := ec.DerivePublic(mustHex(t, fixturePriv), false)
	require.NoError(t, err)
	p.Inputs[0].PubKey = uncompressed

	err = NewSpendFinalizer(p).FinalizeInput(0)
	var finErr *ptx.FinalizationError
	require.ErrorAs(t, err, &finErr)
	assert.Equal(t, ptx.ErrInvalidSignature, finErr.Code)
	assert.Equal(t, ptx.StateSigned, p.Inputs[0].State())
}
