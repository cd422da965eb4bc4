// Package tx implements the legacy Bitcoin transaction model and its byte
// serialization, including the SIGHASH_ALL signing preimage.
//
// Wire format (all integers little-endian):
//
//	version(4) ‖ varint(#in) ‖ inputs ‖ varint(#out) ‖ outputs ‖ locktime(4) [‖ sighash(4)]
//	input:  txid(32) ‖ index(4) ‖ varint(len) ‖ script ‖ sequence(4)
//	output: value(8) ‖ varint(len) ‖ script
//
// The trailing sighash word is present for every flag except SighashNon.
//
// See: https://en.bitcoin.it/wiki/Protocol_documentation#tx
package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
	"github.com/suffix-labs/btc-p2pkh/pkg/digest"
	"github.com/suffix-labs/btc-p2pkh/pkg/script"
	"github.com/suffix-labs/btc-p2pkh/pkg/varint"
)

// SighashType selects the trailing sighash word of a serialization.
type SighashType uint32

const (
	// SighashNon serializes without a sighash word (broadcast form).
	SighashNon SighashType = 0
	// SighashAll commits to every input and output.
	SighashAll SighashType = 1
)

// Byte returns the hash type byte appended to a DER signature.
func (s SighashType) Byte() byte {
	return byte(s)
}

func (s SighashType) String() string {
	switch s {
	case SighashNon:
		return "NON"
	case SighashAll:
		return "ALL"
	default:
		return fmt.Sprintf("SighashType(%d)", uint32(s))
	}
}

// Defaults for new transactions.
const (
	DefaultVersion  uint32 = 1
	DefaultSequence uint32 = 0xFFFFFFFF
)

// MaxMoney is the largest value an output may carry, in satoshis.
const MaxMoney uint64 = 21_000_000 * 100_000_000

// TxIDSize is the length of a transaction id.
const TxIDSize = digest.Hash256Size

// Outpoint references an output of a previous transaction. TxID is stored in
// internal (serialization) byte order, the reverse of its display hex.
type Outpoint struct {
	TxID  [TxIDSize]byte
	Index uint32
}

// NewOutpoint builds an outpoint from a display-order txid hex string.
func NewOutpoint(displayTxID string, index uint32) (Outpoint, error) {
	raw, err := hex.DecodeString(displayTxID)
	if err != nil {
		return Outpoint{}, codecerr.Wrap(codecerr.CodeInvalidCharacter, err, "txid %q", displayTxID)
	}
	var o Outpoint
	if err := o.Fill(raw, index); err != nil {
		return Outpoint{}, err
	}
	return o, nil
}

// Fill sets o from a display-order txid, reversing it into internal order.
func (o *Outpoint) Fill(displayTxID []byte, index uint32) error {
	if len(displayTxID) != TxIDSize {
		return codecerr.New(codecerr.CodeInvalidLength,
			"txid is %d bytes, expected %d", len(displayTxID), TxIDSize)
	}
	for i, b := range displayTxID {
		o.TxID[TxIDSize-1-i] = b
	}
	o.Index = index
	return nil
}

// DisplayTxID returns the txid as conventionally printed.
func (o Outpoint) DisplayTxID() string {
	return displayHex(o.TxID)
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.DisplayTxID(), o.Index)
}

// Output is a value locked by a script.
type Output struct {
	Value  uint64
	Script []byte
}

// NewP2PKHOutput pays value to the public key hash.
func NewP2PKHOutput(value uint64, hash [digest.Hash160Size]byte) Output {
	return Output{Value: value, Script: script.P2PKHLock(hash)}
}

// Size returns the serialized length of o.
func (o Output) Size() int {
	return 8 + varint.EncodedLength(uint64(len(o.Script))) + len(o.Script)
}

// Input spends an outpoint. Script is empty, a signing placeholder, or the
// final scriptSig.
type Input struct {
	Outpoint Outpoint
	Script   []byte
	Sequence uint32
}

// NewInput spends o with an empty script and the final sequence number.
func NewInput(o Outpoint) Input {
	return Input{Outpoint: o, Sequence: DefaultSequence}
}

// FillSignable returns a copy of in carrying the spent output's script.
func (in Input) FillSignable(prevScript []byte) Input {
	in.Script = append([]byte(nil), prevScript...)
	return in
}

// FillTruncated returns a copy of in with its script blanked.
func (in Input) FillTruncated() Input {
	in.Script = nil
	return in
}

// Size returns the serialized length of in.
func (in Input) Size() int {
	return TxIDSize + 4 + varint.EncodedLength(uint64(len(in.Script))) + len(in.Script) + 4
}

// Transaction is a legacy (pre-SegWit) transaction.
type Transaction struct {
	Version  uint32
	Inputs   []Input
	Outputs  []Output
	LockTime uint32
}

// New returns an empty version 1 transaction.
func New() *Transaction {
	return &Transaction{Version: DefaultVersion}
}

// AddInput appends in.
func (t *Transaction) AddInput(in Input) *Transaction {
	t.Inputs = append(t.Inputs, in)
	return t
}

// AddOutput appends out.
func (t *Transaction) AddOutput(out Output) *Transaction {
	t.Outputs = append(t.Outputs, out)
	return t
}

// Clone returns a deep copy of t.
func (t *Transaction) Clone() *Transaction {
	c := &Transaction{
		Version:  t.Version,
		LockTime: t.LockTime,
		Inputs:   make([]Input, len(t.Inputs)),
		Outputs:  make([]Output, len(t.Outputs)),
	}
	for i, in := range t.Inputs {
		c.Inputs[i] = in.FillSignable(in.Script)
	}
	for i, out := range t.Outputs {
		c.Outputs[i] = Output{Value: out.Value, Script: append([]byte(nil), out.Script...)}
	}
	return c
}

// TotalOut sums the output values.
func (t *Transaction) TotalOut() uint64 {
	var sum uint64
	for _, out := range t.Outputs {
		sum += out.Value
	}
	return sum
}

func displayHex(id [TxIDSize]byte) string {
	var rev [TxIDSize]byte
	for i, b := range id {
		rev[TxIDSize-1-i] = b
	}
	return hex.EncodeToString(rev[:])
}
