package varint

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
)

func TestEncodeVectors(t *testing.T) {
	tests := []struct {
		value uint64
		hex   string
	}{
		{0, "00"},
		{0xFC, "fc"},
		{0xFD, "fdfd00"},
		{0xFFFF, "fdffff"},
		{0x10000, "fe00000100"},
		{0xFFFFFFFF, "feffffffff"},
		{0x100000000, "ff0000000001000000"},
		{math.MaxUint64, "ffffffffffffffffff"},
	}

	for _, tt := range tests {
		got := Append(nil, tt.value)
		assert.Equal(t, tt.hex, hex.EncodeToString(got), "value %d", tt.value)
		assert.Equal(t, len(got), EncodedLength(tt.value))

		v, n, err := Read(got)
		require.NoError(t, err)
		assert.Equal(t, tt.value, v)
		assert.Equal(t, len(got), n)
	}
}

func TestRoundTripBoundaries(t *testing.T) {
	values := []uint64{
		0, 1, 0xFC, 0xFD, 0xFE, 0xFF, 0x100, 0xFFFE, 0xFFFF, 0x10000,
		0xFFFFFFFE, 0xFFFFFFFF, 0x100000000, math.MaxUint64 - 1, math.MaxUint64,
	}

	for _, n := range values {
		buf := make([]byte, EncodedLength(n))
		written := Put(buf, n)
		require.Equal(t, len(buf), written)

		v, consumed, err := Read(buf)
		require.NoError(t, err)
		assert.Equal(t, n, v)
		assert.Equal(t, EncodedLength(n), consumed)

		// Streaming form agrees with the slice form.
		var w bytes.Buffer
		_, err = Write(&w, n)
		require.NoError(t, err)
		assert.Equal(t, buf, w.Bytes())

		v, err = ReadFrom(&w)
		require.NoError(t, err)
		assert.Equal(t, n, v)
	}
}

func TestEncodedLengthMonotonic(t *testing.T) {
	prev := 0
	for shift := uint(0); shift < 64; shift++ {
		for _, n := range []uint64{(1 << shift) - 1, 1 << shift, (1 << shift) + 1} {
			l := EncodedLength(n)
			assert.GreaterOrEqual(t, l, 1)
			assert.LessOrEqual(t, l, MaxEncodedLength)
			if n >= 1<<shift {
				assert.GreaterOrEqual(t, l, prev, "n=%d", n)
				prev = l
			}
		}
	}
}

func TestReadNonCanonicalAccepted(t *testing.T) {
	v, n, err := Read([]byte{0xFD, 0x0A, 0x00, 0xE3})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
	assert.Equal(t, 3, n)
}

func TestReadInsufficientData(t *testing.T) {
	inputs := [][]byte{
		{},
		{0xFD},
		{0xFD, 0x01},
		{0xFE, 0x01, 0x02, 0x03},
		{0xFF, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
	}

	for _, in := range inputs {
		_, _, err := Read(in)
		assert.True(t, errors.Is(err, codecerr.ErrInsufficientData), "input %x", in)

		_, err = ReadFrom(bytes.NewReader(in))
		assert.True(t, errors.Is(err, codecerr.ErrInsufficientData), "stream %x", in)
	}
}
