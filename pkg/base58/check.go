package base58

import (
	"bytes"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
	"github.com/suffix-labs/btc-p2pkh/pkg/digest"
)

// CheckEncode returns the Base58 text of payload followed by its 4-byte
// hash256 checksum.
func CheckEncode(payload []byte) string {
	buf := make([]byte, len(payload), len(payload)+digest.ChecksumSize)
	copy(buf, payload)
	sum := digest.Checksum(payload)
	return Encode(append(buf, sum[:]...))
}

// CheckDecode decodes Base58Check text and returns the payload with the
// checksum stripped.
func CheckDecode(s string) ([]byte, error) {
	raw, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) < digest.ChecksumSize {
		return nil, codecerr.New(codecerr.CodeTooShort,
			"base58check: decoded %d bytes, need at least %d", len(raw), digest.ChecksumSize)
	}

	payload := raw[:len(raw)-digest.ChecksumSize]
	want := digest.Checksum(payload)
	if got := raw[len(payload):]; !bytes.Equal(got, want[:]) {
		return nil, codecerr.New(codecerr.CodeChecksumMismatch,
			"base58check: checksum %x, expected %x", got, want)
	}
	return payload, nil
}
