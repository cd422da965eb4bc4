// Package digest composes the hash chains used by the legacy Bitcoin formats.
//
//   - Hash256 = SHA-256(SHA-256(data)): txids, sighashes, Base58Check checksums
//   - Hash160 = RIPEMD-160(SHA-256(data)): public key hashes in P2PKH
//
// All functions are total and stateless.
package digest

import (
	"crypto/sha256"
	"fmt"
	"strings"

	//nolint:staticcheck // RIPEMD-160 is required by the P2PKH address format.
	"golang.org/x/crypto/ripemd160"
)

// Digest sizes.
const (
	SHA256Size    = sha256.Size
	RIPEMD160Size = ripemd160.Size
	Hash256Size   = SHA256Size
	Hash160Size   = RIPEMD160Size
	ChecksumSize  = 4
)

// SHA256 returns the single SHA-256 digest of data.
func SHA256(data []byte) [SHA256Size]byte {
	return sha256.Sum256(data)
}

// RIPEMD160 returns the RIPEMD-160 digest of data.
func RIPEMD160(data []byte) [RIPEMD160Size]byte {
	h := ripemd160.New()
	h.Write(data)

	var out [RIPEMD160Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hash256 returns SHA-256(SHA-256(data)).
func Hash256(data []byte) [Hash256Size]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Hash160 returns RIPEMD-160(SHA-256(data)).
func Hash160(data []byte) [Hash160Size]byte {
	first := sha256.Sum256(data)
	return RIPEMD160(first[:])
}

// Checksum returns the first four bytes of Hash256(data), the Base58Check
// checksum.
func Checksum(data []byte) [ChecksumSize]byte {
	h := Hash256(data)

	var out [ChecksumSize]byte
	copy(out[:], h[:ChecksumSize])
	return out
}

// Kind selects one of the supported hash functions.
type Kind uint8

// Supported hash kinds.
const (
	KindSHA256 Kind = iota + 1
	KindRIPEMD160
	KindHash256
	KindHash160
)

var kindNames = map[Kind]string{
	KindSHA256:    "sha256",
	KindRIPEMD160: "ripemd160",
	KindHash256:   "hash256",
	KindHash160:   "hash160",
}

// ParseKind maps a name ("sha256", "ripemd160", "hash256", "hash160") to its
// Kind. Matching is case-insensitive.
func ParseKind(name string) (Kind, error) {
	lower := strings.ToLower(name)
	for k, n := range kindNames {
		if n == lower {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown hash kind %q", name)
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Size returns the digest length of k, or 0 for an unknown kind.
func (k Kind) Size() int {
	switch k {
	case KindSHA256, KindHash256:
		return SHA256Size
	case KindRIPEMD160, KindHash160:
		return RIPEMD160Size
	default:
		return 0
	}
}

// Sum hashes data with k. An unknown kind returns nil.
func (k Kind) Sum(data []byte) []byte {
	switch k {
	case KindSHA256:
		h := SHA256(data)
		return h[:]
	case KindRIPEMD160:
		h := RIPEMD160(data)
		return h[:]
	case KindHash256:
		h := Hash256(data)
		return h[:]
	case KindHash160:
		h := Hash160(data)
		return h[:]
	default:
		return nil
	}
}
