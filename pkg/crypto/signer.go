package crypto

// PublicKeyDeriver recomputes a public key from private key bytes.
type PublicKeyDeriver interface {
	DerivePublic(priv []byte, compressed bool) ([]byte, error)
}

// Signer is the EC capability consumed by address derivation and the signing
// roles. Implementations must not retain priv after a call returns.
type Signer interface {
	PublicKeyDeriver
	Sign(digest [32]byte, priv []byte) ([]byte, error)
	Verify(digest [32]byte, sig, pubkey []byte) bool
}

// Secp256k1 is the Signer backed by decred's secp256k1 package.
type Secp256k1 struct{}

var _ Signer = Secp256k1{}

// DerivePublic returns the 33- or 65-byte public key for priv.
func (Secp256k1) DerivePublic(priv []byte, compressed bool) ([]byte, error) {
	key, err := PrivateKeyFromBytes(priv)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	return key.PublicKey().Bytes(compressed), nil
}

// Sign returns the DER signature of digest under priv.
func (Secp256k1) Sign(digest [32]byte, priv []byte) ([]byte, error) {
	key, err := PrivateKeyFromBytes(priv)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	return key.Sign(digest), nil
}

// Verify reports whether sig is a valid DER signature of digest by pubkey.
func (Secp256k1) Verify(digest [32]byte, sig, pubkey []byte) bool {
	pub, err := ParsePublicKey(pubkey)
	if err != nil {
		return false
	}
	return VerifySignature(pub, digest, sig)
}
