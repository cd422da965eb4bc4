package ptx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
	"github.com/suffix-labs/btc-p2pkh/pkg/varint"
)

// PTX file format: "BPTX" || version (u32le) || body
//
// The body is a flat sequence of fixed-width little-endian integers and
// CompactSize-prefixed byte strings, in struct field order. Optional values
// use a 0x00/0x01 presence byte, and map entries are written in key order so
// equal PTXs serialize to equal bytes.
const (
	MagicBytes  = "BPTX"
	PTXVersion1 = uint32(1)
)

// Serialize encodes a PTX to bytes
func Serialize(p *PTX) ([]byte, error) {
	buf := new(bytes.Buffer)

	buf.WriteString(MagicBytes)
	if err := binary.Write(buf, binary.LittleEndian, PTXVersion1); err != nil {
		return nil, err
	}

	if err := encodeBody(buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse decodes a PTX from bytes
func Parse(data []byte) (*PTX, error) {
	if len(data) < 8 {
		return nil, &ParseError{Message: "data too short",
			Cause: codecerr.New(codecerr.CodeInsufficientData, "have %d bytes, need 8", len(data))}
	}

	if string(data[0:4]) != MagicBytes {
		return nil, &ParseError{Message: "invalid magic bytes"}
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	if version != PTXVersion1 {
		return nil, &ParseError{Message: fmt.Sprintf("unsupported version: %d", version)}
	}

	r := bytes.NewReader(data[8:])
	p, err := decodeBody(r)
	if err != nil {
		return nil, &ParseError{Message: "body decode failed", Cause: err}
	}
	if r.Len() != 0 {
		return nil, &ParseError{Message: "trailing data",
			Cause: codecerr.New(codecerr.CodeInvalidLength, "%d bytes after body", r.Len())}
	}
	return p, nil
}

// encodeBody writes Global, then inputs, then outputs.
func encodeBody(w io.Writer, p *PTX) error {
	e := &encoder{w: w}

	e.u32(p.Global.TxVersion)
	e.u32(p.Global.LockTime)
	e.u8(p.Global.Modifiable)
	e.strMap(p.Global.Proprietary)

	e.count(len(p.Inputs))
	for i := range p.Inputs {
		in := &p.Inputs[i]
		e.raw(in.PrevoutTxID[:])
		e.u32(in.PrevoutIndex)
		e.u32(in.Sequence)
		e.u64(in.Value)
		e.bytes(in.ScriptPubKey)
		e.u8(in.SighashType)
		e.bytes(in.Signature)
		e.bytes(in.PubKey)
		e.bytes(in.ScriptSig)
		e.strMap(in.Proprietary)
	}

	e.count(len(p.Outputs))
	for i := range p.Outputs {
		out := &p.Outputs[i]
		e.u64(out.Value)
		e.bytes(out.ScriptPubKey)
		e.optString(out.UserAddress)
		e.strMap(out.Proprietary)
	}

	return e.err
}

func decodeBody(r *bytes.Reader) (*PTX, error) {
	d := &decoder{r: r}
	p := &PTX{}

	p.Global.TxVersion = d.u32("tx version")
	p.Global.LockTime = d.u32("locktime")
	p.Global.Modifiable = d.u8("modifiable flags")
	p.Global.Proprietary = d.strMap("global proprietary")

	n := d.count("input count", 32+4+4+8+1+1+1+1+1+1)
	if d.err != nil {
		return nil, d.err
	}
	p.Inputs = make([]Input, n)
	for i := range p.Inputs {
		in := &p.Inputs[i]
		d.raw(in.PrevoutTxID[:], "prevout txid")
		in.PrevoutIndex = d.u32("prevout index")
		in.Sequence = d.u32("sequence")
		in.Value = d.u64("value")
		in.ScriptPubKey = d.bytes("scriptPubKey")
		in.SighashType = d.u8("sighash type")
		in.Signature = d.bytes("signature")
		in.PubKey = d.bytes("pubkey")
		in.ScriptSig = d.bytes("scriptSig")
		in.Proprietary = d.strMap("input proprietary")
		if d.err != nil {
			return nil, fmt.Errorf("input %d: %w", i, d.err)
		}
	}

	n = d.count("output count", 8+1+1+1)
	if d.err != nil {
		return nil, d.err
	}
	p.Outputs = make([]Output, n)
	for i := range p.Outputs {
		out := &p.Outputs[i]
		out.Value = d.u64("value")
		out.ScriptPubKey = d.bytes("scriptPubKey")
		out.UserAddress = d.optString("user address")
		out.Proprietary = d.strMap("output proprietary")
		if d.err != nil {
			return nil, fmt.Errorf("output %d: %w", i, d.err)
		}
	}

	return p, nil
}

// encoder records the first write error and ignores later writes.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) raw(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *encoder) u8(v uint8) { e.raw([]byte{v}) }

func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.raw(b[:])
}

func (e *encoder) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.raw(b[:])
}

func (e *encoder) count(n int) {
	e.raw(varint.Append(nil, uint64(n)))
}

func (e *encoder) bytes(b []byte) {
	e.count(len(b))
	e.raw(b)
}

func (e *encoder) optString(s *string) {
	if s == nil {
		e.u8(0x00)
		return
	}
	e.u8(0x01)
	e.bytes([]byte(*s))
}

func (e *encoder) strMap(m map[string][]byte) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.count(len(keys))
	for _, k := range keys {
		e.bytes([]byte(k))
		e.bytes(m[k])
	}
}

// decoder records the first read error, naming the field, and returns zero
// values afterwards.
type decoder struct {
	r   *bytes.Reader
	err error
}

func (d *decoder) fail(field string, err error) {
	if d.err != nil {
		return
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = codecerr.Wrap(codecerr.CodeInsufficientData, err, "truncated")
	}
	d.err = fmt.Errorf("reading %s: %w", field, err)
}

func (d *decoder) raw(b []byte, field string) {
	if d.err != nil {
		return
	}
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.fail(field, err)
	}
}

func (d *decoder) u8(field string) uint8 {
	var b [1]byte
	d.raw(b[:], field)
	return b[0]
}

func (d *decoder) u32(field string) uint32 {
	var b [4]byte
	d.raw(b[:], field)
	return binary.LittleEndian.Uint32(b[:])
}

func (d *decoder) u64(field string) uint64 {
	var b [8]byte
	d.raw(b[:], field)
	return binary.LittleEndian.Uint64(b[:])
}

// count reads an element count, rejecting counts the remaining data cannot
// hold at minSize bytes each.
func (d *decoder) count(field string, minSize int) int {
	if d.err != nil {
		return 0
	}
	n, err := varint.ReadFrom(d.r)
	if err != nil {
		d.fail(field, err)
		return 0
	}
	if n > uint64(d.r.Len()/minSize) {
		d.fail(field, codecerr.New(codecerr.CodeInsufficientData,
			"%d elements of at least %d bytes, have %d", n, minSize, d.r.Len()))
		return 0
	}
	return int(n)
}

func (d *decoder) bytes(field string) []byte {
	n := d.count(field, 1)
	if d.err != nil || n == 0 {
		return nil
	}
	b := make([]byte, n)
	d.raw(b, field)
	return b
}

func (d *decoder) optString(field string) *string {
	switch flag := d.u8(field); {
	case d.err != nil:
		return nil
	case flag == 0x00:
		return nil
	case flag == 0x01:
		s := string(d.bytes(field))
		return &s
	default:
		d.fail(field, codecerr.New(codecerr.CodeInvalidLength, "presence byte 0x%02x", flag))
		return nil
	}
}

func (d *decoder) strMap(field string) map[string][]byte {
	m := make(map[string][]byte)
	n := d.count(field, 2)
	for i := 0; i < n && d.err == nil; i++ {
		k := string(d.bytes(field))
		m[k] = d.bytes(field)
	}
	return m
}
