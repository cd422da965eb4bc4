// Package crypto implements secp256k1 ECDSA signing for P2PKH inputs.
//
// The rest of the module only needs result bytes from this boundary: public
// key encodings and DER signatures. Key handles are owned by the caller and
// cleared with Zero once signing is done.
//
// Key formats:
//   - Private keys: raw 32 bytes, a scalar in [1, N-1]
//   - Public keys: compressed 33 bytes (0x02/0x03) or uncompressed 65 bytes (0x04)
//   - Signatures: DER, low-S, RFC 6979 deterministic nonces
package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
)

// Key sizes.
const (
	PrivateKeySize            = 32
	CompressedPublicKeySize   = 33
	UncompressedPublicKeySize = 65
)

// PrivateKey wraps secp256k1 private key
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps secp256k1 public key
type PublicKey struct {
	key *secp256k1.PublicKey
}

// GeneratePrivateKey returns a new random private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, codecerr.Wrap(codecerr.CodeSignerFailure, err, "generating private key")
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a private key from raw bytes. The scalar must be
// non-zero and below the group order.
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != PrivateKeySize {
		return nil, codecerr.New(codecerr.CodeSignerFailure,
			"private key must be %d bytes, got %d", PrivateKeySize, len(keyBytes))
	}

	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(keyBytes)
	if overflow || scalar.IsZero() {
		scalar.Zero()
		return nil, codecerr.New(codecerr.CodeSignerFailure, "private key out of range")
	}

	key := secp256k1.NewPrivateKey(&scalar)
	scalar.Zero()
	return &PrivateKey{key: key}, nil
}

// Sign creates a DER-encoded ECDSA signature over hash.
func (pk *PrivateKey) Sign(hash [32]byte) []byte {
	return ecdsa.Sign(pk.key, hash[:]).Serialize()
}

// PublicKey derives the public key
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// Bytes returns the raw 32-byte private key
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// Zero clears the key material.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// SerializeCompressed returns the 33-byte compressed public key
func (pub *PublicKey) SerializeCompressed() [CompressedPublicKeySize]byte {
	var result [CompressedPublicKeySize]byte
	copy(result[:], pub.key.SerializeCompressed())
	return result
}

// Bytes returns the public key in the requested encoding.
func (pub *PublicKey) Bytes(compressed bool) []byte {
	if compressed {
		c := pub.SerializeCompressed()
		return c[:]
	}
	return pub.key.SerializeUncompressed()
}

// ParsePublicKey parses a compressed or uncompressed public key
func ParsePublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	if n := len(pubKeyBytes); n != CompressedPublicKeySize && n != UncompressedPublicKeySize {
		return nil, fmt.Errorf("public key must be %d or %d bytes, got %d",
			CompressedPublicKeySize, UncompressedPublicKeySize, n)
	}

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &PublicKey{key: pubKey}, nil
}

// VerifySignature verifies a DER-encoded ECDSA signature
func VerifySignature(pubkey *PublicKey, hash [32]byte, signature []byte) bool {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}

	return sig.Verify(hash[:], pubkey.key)
}
