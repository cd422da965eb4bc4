// Package base58 implements the Base58 and Base58Check text encodings used by
// Bitcoin private keys (WIF) and addresses.
//
// Conversion is plain long division over the byte buffer in both directions,
// so no big-integer arithmetic is involved. Leading zero bytes map one-to-one
// to leading '1' characters.
package base58

import (
	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
)

// Alphabet is the Bitcoin Base58 alphabet. 0, O, I and l are excluded.
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// zeroSymbol encodes a leading zero byte.
const zeroSymbol = '1'

// inverse maps an ASCII byte to its digit value, or -1.
var inverse = [128]int8{
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, 0, 1, 2, 3, 4, 5, 6, 7, 8, -1, -1, -1, -1, -1, -1,
	-1, 9, 10, 11, 12, 13, 14, 15, 16, -1, 17, 18, 19, 20, 21, -1,
	22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, -1, -1, -1, -1, -1,
	-1, 33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, -1, 44, 45, 46,
	47, 48, 49, 50, 51, 52, 53, 54, 55, 56, 57, -1, -1, -1, -1, -1,
}

// Encode returns the Base58 text of data. Empty input encodes to "".
func Encode(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	// Working copy of the big-endian number; divided by 58 in place.
	num := make([]byte, len(data)-zeros)
	copy(num, data[zeros:])

	// log(256)/log(58) ~= 1.37, so 138/100 digits per byte is enough.
	digits := make([]byte, 0, len(num)*138/100+1)
	for start := 0; start < len(num); {
		var rem uint32
		for i := start; i < len(num); i++ {
			acc := rem<<8 | uint32(num[i])
			num[i] = byte(acc / 58)
			rem = acc % 58
		}
		digits = append(digits, Alphabet[rem])

		for start < len(num) && num[start] == 0 {
			start++
		}
	}

	out := make([]byte, zeros+len(digits))
	for i := 0; i < zeros; i++ {
		out[i] = zeroSymbol
	}
	// Remainders come out least significant first.
	for i, d := range digits {
		out[len(out)-1-i] = d
	}
	return string(out)
}

// Decode parses Base58 text. Any character outside the alphabet fails with an
// InvalidCharacter error naming its position.
func Decode(s string) ([]byte, error) {
	digits := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 128 || inverse[c] < 0 {
			return nil, codecerr.New(codecerr.CodeInvalidCharacter,
				"base58: invalid character %q at position %d", c, i)
		}
		digits[i] = byte(inverse[c])
	}

	zeros := 0
	for zeros < len(digits) && digits[zeros] == 0 {
		zeros++
	}

	// Base58 digits are divided by 256 in place; each remainder is one output
	// byte, least significant first. The buffer is sized for the worst case
	// (log(58)/log(256) ~= 0.733) plus one, so the result carries extra
	// high-order zero bytes that are trimmed before the zero prefix is
	// restored.
	size := len(digits)*733/1000 + 1
	buf := make([]byte, size)
	pos := size
	for start := zeros; start < len(digits); {
		var rem uint32
		for i := start; i < len(digits); i++ {
			acc := rem*58 + uint32(digits[i])
			digits[i] = byte(acc / 256)
			rem = acc % 256
		}
		pos--
		buf[pos] = byte(rem)

		for start < len(digits) && digits[start] == 0 {
			start++
		}
	}

	// Trim, then prepend.
	for pos < size && buf[pos] == 0 {
		pos++
	}
	out := make([]byte, zeros+size-pos)
	copy(out[zeros:], buf[pos:])
	return out, nil
}
