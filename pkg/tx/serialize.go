package tx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/suffix-labs/btc-p2pkh/pkg/digest"
	"github.com/suffix-labs/btc-p2pkh/pkg/varint"
)

// ErrInputIndex is returned for an input index outside the transaction.
var ErrInputIndex = errors.New("input index out of range")

// Size returns the exact length Serialize(flags) produces.
func (t *Transaction) Size(flags SighashType) int {
	n := 4 + varint.EncodedLength(uint64(len(t.Inputs)))
	for _, in := range t.Inputs {
		n += in.Size()
	}
	n += varint.EncodedLength(uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		n += out.Size()
	}
	n += 4
	if flags != SighashNon {
		n += 4
	}
	return n
}

// Serialize returns the wire bytes of t, followed by the sighash word unless
// flags is SighashNon.
func (t *Transaction) Serialize(flags SighashType) []byte {
	var buf bytes.Buffer
	buf.Grow(t.Size(flags))
	// Writes to a bytes.Buffer cannot fail.
	_ = t.SerializeTo(&buf, flags)
	return buf.Bytes()
}

// SerializeTo writes the wire bytes of t to w.
func (t *Transaction) SerializeTo(w io.Writer, flags SighashType) error {
	if err := binary.Write(w, binary.LittleEndian, t.Version); err != nil {
		return fmt.Errorf("writing version: %w", err)
	}

	if _, err := varint.Write(w, uint64(len(t.Inputs))); err != nil {
		return fmt.Errorf("writing input count: %w", err)
	}
	for i := range t.Inputs {
		if err := writeInput(w, &t.Inputs[i]); err != nil {
			return fmt.Errorf("writing input %d: %w", i, err)
		}
	}

	if _, err := varint.Write(w, uint64(len(t.Outputs))); err != nil {
		return fmt.Errorf("writing output count: %w", err)
	}
	for i := range t.Outputs {
		if err := writeOutput(w, &t.Outputs[i]); err != nil {
			return fmt.Errorf("writing output %d: %w", i, err)
		}
	}

	if err := binary.Write(w, binary.LittleEndian, t.LockTime); err != nil {
		return fmt.Errorf("writing locktime: %w", err)
	}

	if flags != SighashNon {
		if err := binary.Write(w, binary.LittleEndian, uint32(flags)); err != nil {
			return fmt.Errorf("writing sighash type: %w", err)
		}
	}
	return nil
}

func writeInput(w io.Writer, in *Input) error {
	if _, err := w.Write(in.Outpoint.TxID[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, in.Outpoint.Index); err != nil {
		return err
	}
	if err := writeScript(w, in.Script); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, in.Sequence)
}

func writeOutput(w io.Writer, out *Output) error {
	if err := binary.Write(w, binary.LittleEndian, out.Value); err != nil {
		return err
	}
	return writeScript(w, out.Script)
}

func writeScript(w io.Writer, s []byte) error {
	if _, err := varint.Write(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.Write(s)
	return err
}

// SigningCopy returns a copy of t prepared for signing input index: that
// input carries subscript and every other input is blanked. t is not
// modified.
func (t *Transaction) SigningCopy(index int, subscript []byte) (*Transaction, error) {
	if index < 0 || index >= len(t.Inputs) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInputIndex, index, len(t.Inputs))
	}

	c := t.Clone()
	for i := range c.Inputs {
		if i == index {
			c.Inputs[i] = c.Inputs[i].FillSignable(subscript)
		} else {
			c.Inputs[i] = c.Inputs[i].FillTruncated()
		}
	}
	return c, nil
}

// Preimage returns the bytes hashed to sign input index.
func (t *Transaction) Preimage(index int, subscript []byte, flags SighashType) ([]byte, error) {
	c, err := t.SigningCopy(index, subscript)
	if err != nil {
		return nil, err
	}
	return c.Serialize(flags), nil
}

// SignatureHash returns hash256 of the signing preimage of input index.
func (t *Transaction) SignatureHash(index int, subscript []byte, flags SighashType) ([digest.Hash256Size]byte, error) {
	pre, err := t.Preimage(index, subscript, flags)
	if err != nil {
		return [digest.Hash256Size]byte{}, err
	}
	return digest.Hash256(pre), nil
}

// WithInputScript returns a copy of t with input index carrying script.
// Neither t nor any of its inputs or outputs change.
func (t *Transaction) WithInputScript(index int, script []byte) (*Transaction, error) {
	if index < 0 || index >= len(t.Inputs) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInputIndex, index, len(t.Inputs))
	}

	c := t.Clone()
	c.Inputs[index] = c.Inputs[index].FillSignable(script)
	return c, nil
}

// TxID returns hash256 of the broadcast serialization, in internal order.
func (t *Transaction) TxID() [TxIDSize]byte {
	return digest.Hash256(t.Serialize(SighashNon))
}

// TxIDString returns the txid in display order.
func (t *Transaction) TxIDString() string {
	return displayHex(t.TxID())
}
