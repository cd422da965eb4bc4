// Package varint implements the Bitcoin CompactSize integer encoding.
//
// CompactSize is the variable-length encoding for unsigned integers used for
// every count and length prefix in the legacy transaction format.
//
// Encoding:
//   - < 0xFD: 1 byte (the value itself)
//   - <= 0xFFFF: 0xFD + 2 bytes little-endian
//   - <= 0xFFFFFFFF: 0xFE + 4 bytes little-endian
//   - otherwise: 0xFF + 8 bytes little-endian
//
// Decoding does not reject non-canonical forms: 0xFD 0x0A 0x00 reads as 10.
//
// See: https://en.bitcoin.it/wiki/Protocol_documentation#Variable_length_integer
package varint

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
)

// Width markers.
const (
	Marker16 = 0xFD
	Marker32 = 0xFE
	Marker64 = 0xFF
)

// MaxEncodedLength is the widest CompactSize encoding.
const MaxEncodedLength = 9

// EncodedLength returns the number of bytes Put writes for n.
func EncodedLength(n uint64) int {
	switch {
	case n < Marker16:
		return 1
	case n <= 0xFFFF:
		return 3
	case n <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// Put writes the minimal-width encoding of n into buf and returns the number
// of bytes written. It panics if buf is shorter than EncodedLength(n), like
// binary.PutUvarint.
func Put(buf []byte, n uint64) int {
	switch {
	case n < Marker16:
		buf[0] = byte(n)
		return 1
	case n <= 0xFFFF:
		buf[0] = Marker16
		binary.LittleEndian.PutUint16(buf[1:3], uint16(n))
		return 3
	case n <= 0xFFFFFFFF:
		buf[0] = Marker32
		binary.LittleEndian.PutUint32(buf[1:5], uint32(n))
		return 5
	default:
		buf[0] = Marker64
		binary.LittleEndian.PutUint64(buf[1:9], n)
		return 9
	}
}

// Append appends the encoding of n to buf.
func Append(buf []byte, n uint64) []byte {
	var tmp [MaxEncodedLength]byte
	w := Put(tmp[:], n)
	return append(buf, tmp[:w]...)
}

// Write writes the encoding of n to w.
func Write(w io.Writer, n uint64) (int, error) {
	var tmp [MaxEncodedLength]byte
	return w.Write(tmp[:Put(tmp[:], n)])
}

// widthOf returns the total encoded width implied by a first byte.
func widthOf(first byte) int {
	switch first {
	case Marker16:
		return 3
	case Marker32:
		return 5
	case Marker64:
		return 9
	default:
		return 1
	}
}

// Read decodes a CompactSize integer from the front of buf, returning the
// value and the number of bytes consumed.
func Read(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, codecerr.New(codecerr.CodeInsufficientData, "varint: empty input")
	}

	width := widthOf(buf[0])
	if len(buf) < width {
		return 0, 0, codecerr.New(codecerr.CodeInsufficientData,
			"varint: marker 0x%02x needs %d bytes, have %d", buf[0], width, len(buf))
	}

	switch width {
	case 3:
		return uint64(binary.LittleEndian.Uint16(buf[1:3])), 3, nil
	case 5:
		return uint64(binary.LittleEndian.Uint32(buf[1:5])), 5, nil
	case 9:
		return binary.LittleEndian.Uint64(buf[1:9]), 9, nil
	default:
		return uint64(buf[0]), 1, nil
	}
}

// ReadFrom reads a CompactSize integer from r. A stream that ends before the
// full width has been read fails with an InsufficientData error.
func ReadFrom(r io.Reader) (uint64, error) {
	var tmp [MaxEncodedLength]byte
	if _, err := io.ReadFull(r, tmp[:1]); err != nil {
		return 0, truncated(err, "varint: reading marker")
	}

	width := widthOf(tmp[0])
	if width > 1 {
		if _, err := io.ReadFull(r, tmp[1:width]); err != nil {
			return 0, truncated(err, "varint: reading %d-byte body", width-1)
		}
	}

	v, _, err := Read(tmp[:width])
	return v, err
}

func truncated(err error, format string, args ...interface{}) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return codecerr.Wrap(codecerr.CodeInsufficientData, err, format, args...)
	}
	return err
}
