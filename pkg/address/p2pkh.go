// Package address encodes and decodes WIF private keys and P2PKH addresses.
//
// Both are Base58Check payloads: version ‖ body ‖ hash256(version ‖ body)[:4].
//
//	WIF:   version(1) ‖ privkey(32) [‖ 0x01]
//	P2PKH: version(1) ‖ hash160(pubkey)(20)
package address

import (
	"github.com/suffix-labs/btc-p2pkh/pkg/base58"
	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
	"github.com/suffix-labs/btc-p2pkh/pkg/digest"
)

const p2pkhPayloadLen = 1 + digest.Hash160Size

// EncodeP2PKH returns the address paying to hash160(pubkey).
func EncodeP2PKH(pubkey []byte, version byte) string {
	return EncodeP2PKHHash(digest.Hash160(pubkey), version)
}

// EncodeP2PKHHash returns the address for an already hashed public key.
func EncodeP2PKHHash(hash [digest.Hash160Size]byte, version byte) string {
	payload := make([]byte, 0, p2pkhPayloadLen)
	payload = append(payload, version)
	payload = append(payload, hash[:]...)
	return base58.CheckEncode(payload)
}

// DecodeCheck returns the checksum-verified payload of any Base58Check text.
// The caller splits version and body.
func DecodeCheck(s string) ([]byte, error) {
	return base58.CheckDecode(s)
}

// DecodeP2PKH returns the public key hash and version of a P2PKH address.
func DecodeP2PKH(s string) ([digest.Hash160Size]byte, byte, error) {
	var hash [digest.Hash160Size]byte

	payload, err := base58.CheckDecode(s)
	if err != nil {
		return hash, 0, err
	}
	if len(payload) != p2pkhPayloadLen {
		return hash, 0, codecerr.New(codecerr.CodeInvalidLength,
			"p2pkh: payload is %d bytes, expected %d", len(payload), p2pkhPayloadLen)
	}
	if _, err := NetworkForP2PKHVersion(payload[0]); err != nil {
		return hash, 0, err
	}

	copy(hash[:], payload[1:])
	return hash, payload[0], nil
}
