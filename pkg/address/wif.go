package address

import (
	"github.com/suffix-labs/btc-p2pkh/pkg/base58"
	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
	"github.com/suffix-labs/btc-p2pkh/pkg/crypto"
)

const (
	privateKeySize = crypto.PrivateKeySize

	// compressedFlag follows the key when the public key is compressed.
	compressedFlag byte = 0x01

	wifUncompressedLen = 1 + privateKeySize
	wifCompressedLen   = wifUncompressedLen + 1
)

// WIF is a decoded Wallet Import Format private key.
type WIF struct {
	PrivateKey [privateKeySize]byte
	Version    byte
	Compressed bool
}

// EncodeWIF returns version ‖ priv [‖ 0x01] as Base58Check text.
func EncodeWIF(priv [privateKeySize]byte, version byte, compressed bool) string {
	payload := make([]byte, 0, wifCompressedLen)
	payload = append(payload, version)
	payload = append(payload, priv[:]...)
	if compressed {
		payload = append(payload, compressedFlag)
	}
	return base58.CheckEncode(payload)
}

// DecodeWIF parses WIF text. The decoded form must be 37 or 38 bytes
// including the checksum, and the version must belong to a known network.
func DecodeWIF(s string) (*WIF, error) {
	payload, err := base58.CheckDecode(s)
	if err != nil {
		return nil, err
	}

	w := &WIF{}
	switch len(payload) {
	case wifUncompressedLen:
	case wifCompressedLen:
		if flag := payload[wifUncompressedLen]; flag != compressedFlag {
			return nil, codecerr.New(codecerr.CodeInvalidLength,
				"wif: compression flag 0x%02x, expected 0x01", flag)
		}
		w.Compressed = true
	default:
		return nil, codecerr.New(codecerr.CodeInvalidLength,
			"wif: %d bytes with checksum, expected 37 or 38", len(payload)+4)
	}

	w.Version = payload[0]
	if _, err := NetworkForWIFVersion(w.Version); err != nil {
		return nil, err
	}

	copy(w.PrivateKey[:], payload[1:wifUncompressedLen])
	return w, nil
}

// String re-encodes w.
func (w *WIF) String() string {
	return EncodeWIF(w.PrivateKey, w.Version, w.Compressed)
}

// Network returns the network of w's version byte.
func (w *WIF) Network() (Network, error) {
	return NetworkForWIFVersion(w.Version)
}

// PublicKey derives w's public key in its own compression form.
func (w *WIF) PublicKey(deriver crypto.PublicKeyDeriver) ([]byte, error) {
	return deriver.DerivePublic(w.PrivateKey[:], w.Compressed)
}

// Address derives the P2PKH address paying to w's public key, using the
// address version of w's network.
func (w *WIF) Address(deriver crypto.PublicKeyDeriver) (string, error) {
	net, err := w.Network()
	if err != nil {
		return "", err
	}
	pub, err := w.PublicKey(deriver)
	if err != nil {
		return "", err
	}
	return EncodeP2PKH(pub, net.P2PKHVersion), nil
}

// Zero clears the private key.
func (w *WIF) Zero() {
	for i := range w.PrivateKey {
		w.PrivateKey[i] = 0
	}
}

// AddressFromWIF decodes a WIF and returns the P2PKH address of its key.
func AddressFromWIF(wif string, deriver crypto.PublicKeyDeriver) (string, error) {
	w, err := DecodeWIF(wif)
	if err != nil {
		return "", err
	}
	defer w.Zero()

	return w.Address(deriver)
}
