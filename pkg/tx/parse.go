package tx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
	"github.com/suffix-labs/btc-p2pkh/pkg/varint"
)

// Smallest encodings, used to reject counts the remaining data cannot hold.
const (
	minInputSize  = TxIDSize + 4 + 1 + 4
	minOutputSize = 8 + 1
)

// Parse decodes a broadcast-form transaction (no sighash word). Truncated
// data fails with InsufficientData; unread trailing bytes with InvalidLength.
func Parse(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)
	t := &Transaction{}

	if err := readUint32(r, &t.Version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}

	count, err := readCount(r, minInputSize)
	if err != nil {
		return nil, fmt.Errorf("reading input count: %w", err)
	}
	t.Inputs = make([]Input, count)
	for i := range t.Inputs {
		if err := parseInput(r, &t.Inputs[i]); err != nil {
			return nil, fmt.Errorf("parsing input %d: %w", i, err)
		}
	}

	count, err = readCount(r, minOutputSize)
	if err != nil {
		return nil, fmt.Errorf("reading output count: %w", err)
	}
	t.Outputs = make([]Output, count)
	for i := range t.Outputs {
		if err := parseOutput(r, &t.Outputs[i]); err != nil {
			return nil, fmt.Errorf("parsing output %d: %w", i, err)
		}
	}

	if err := readUint32(r, &t.LockTime); err != nil {
		return nil, fmt.Errorf("reading locktime: %w", err)
	}

	if r.Len() != 0 {
		return nil, codecerr.New(codecerr.CodeInvalidLength, "%d trailing bytes after locktime", r.Len())
	}
	return t, nil
}

func parseInput(r *bytes.Reader, in *Input) error {
	if _, err := io.ReadFull(r, in.Outpoint.TxID[:]); err != nil {
		return fmt.Errorf("reading prevout txid: %w", truncated(err))
	}
	if err := readUint32(r, &in.Outpoint.Index); err != nil {
		return fmt.Errorf("reading prevout index: %w", err)
	}

	script, err := readScript(r)
	if err != nil {
		return fmt.Errorf("reading scriptSig: %w", err)
	}
	in.Script = script

	if err := readUint32(r, &in.Sequence); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}
	return nil
}

func parseOutput(r *bytes.Reader, out *Output) error {
	if err := binary.Read(r, binary.LittleEndian, &out.Value); err != nil {
		return fmt.Errorf("reading value: %w", truncated(err))
	}

	script, err := readScript(r)
	if err != nil {
		return fmt.Errorf("reading scriptPubKey: %w", err)
	}
	out.Script = script
	return nil
}

func readUint32(r io.Reader, v *uint32) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return truncated(err)
	}
	return nil
}

// readCount reads a varint element count and checks that r still holds at
// least count elements of minSize bytes.
func readCount(r *bytes.Reader, minSize int) (int, error) {
	n, err := varint.ReadFrom(r)
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Len()/minSize) {
		return 0, codecerr.New(codecerr.CodeInsufficientData,
			"count %d needs at least %d bytes per element, have %d", n, minSize, r.Len())
	}
	return int(n), nil
}

func readScript(r *bytes.Reader) ([]byte, error) {
	n, err := varint.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("reading length: %w", err)
	}
	if n > uint64(r.Len()) {
		return nil, codecerr.New(codecerr.CodeInsufficientData,
			"script of %d bytes, have %d", n, r.Len())
	}
	if n == 0 {
		return nil, nil
	}

	s := make([]byte, n)
	if _, err := io.ReadFull(r, s); err != nil {
		return nil, truncated(err)
	}
	return s, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return codecerr.Wrap(codecerr.CodeInsufficientData, err, "truncated")
	}
	return err
}
