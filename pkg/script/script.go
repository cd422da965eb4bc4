// Package script builds and recognises the standard P2PKH script pair.
//
//	scriptPubKey: OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
//	scriptSig:    <sig ‖ hashtype> <pubkey>
//
// Only direct pushes (length byte 0x01..0x4B) are produced or parsed.
package script

import (
	"bytes"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
	"github.com/suffix-labs/btc-p2pkh/pkg/digest"
)

// Opcodes.
const (
	OpDup         byte = 0x76
	OpHash160     byte = 0xA9
	OpEqualVerify byte = 0x88
	OpCheckSig    byte = 0xAC

	// MaxDirectPush is the largest push encoded by its length byte alone.
	MaxDirectPush = 0x4B
)

// P2PKHLockLen is the length of a P2PKH scriptPubKey.
const P2PKHLockLen = 3 + digest.Hash160Size + 2

// Push appends a direct push of data to dst.
func Push(dst, data []byte) ([]byte, error) {
	if len(data) > MaxDirectPush {
		return nil, codecerr.New(codecerr.CodeInvalidLength,
			"script: push of %d bytes exceeds 0x%02x", len(data), MaxDirectPush)
	}
	dst = append(dst, byte(len(data)))
	return append(dst, data...), nil
}

// P2PKHLock returns the scriptPubKey paying to hash.
func P2PKHLock(hash [digest.Hash160Size]byte) []byte {
	s := make([]byte, 0, P2PKHLockLen)
	s = append(s, OpDup, OpHash160, digest.Hash160Size)
	s = append(s, hash[:]...)
	return append(s, OpEqualVerify, OpCheckSig)
}

// P2PKHLockFromPubKey returns the scriptPubKey paying to hash160(pubkey).
func P2PKHLockFromPubKey(pubkey []byte) []byte {
	return P2PKHLock(digest.Hash160(pubkey))
}

// ExtractP2PKHHash returns the public key hash of a P2PKH scriptPubKey.
func ExtractP2PKHHash(s []byte) ([digest.Hash160Size]byte, bool) {
	var hash [digest.Hash160Size]byte
	if len(s) != P2PKHLockLen ||
		s[0] != OpDup || s[1] != OpHash160 || s[2] != digest.Hash160Size ||
		s[23] != OpEqualVerify || s[24] != OpCheckSig {
		return hash, false
	}
	copy(hash[:], s[3:23])
	return hash, true
}

// IsP2PKHLock reports whether s is a standard P2PKH scriptPubKey.
func IsP2PKHLock(s []byte) bool {
	_, ok := ExtractP2PKHHash(s)
	return ok
}

// P2PKHUnlock returns push(derSig ‖ hashType) ‖ push(pubkey).
func P2PKHUnlock(derSig []byte, hashType byte, pubkey []byte) ([]byte, error) {
	sig := make([]byte, 0, len(derSig)+1)
	sig = append(sig, derSig...)
	sig = append(sig, hashType)

	out := make([]byte, 0, 2+len(sig)+len(pubkey))
	out, err := Push(out, sig)
	if err != nil {
		return nil, err
	}
	return Push(out, pubkey)
}

// ParseP2PKHUnlock splits a P2PKH scriptSig into the signature (with its
// trailing hash type byte) and the public key.
func ParseP2PKHUnlock(s []byte) ([]byte, []byte, error) {
	sig, rest, err := readPush(s)
	if err != nil {
		return nil, nil, err
	}
	pubkey, rest, err := readPush(rest)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) != 0 {
		return nil, nil, codecerr.New(codecerr.CodeInvalidLength,
			"script: %d trailing bytes after public key", len(rest))
	}
	if len(sig) == 0 {
		return nil, nil, codecerr.New(codecerr.CodeInvalidLength, "script: empty signature push")
	}
	return sig, pubkey, nil
}

// MatchesPubKey reports whether lock pays to hash160(pubkey).
func MatchesPubKey(lock, pubkey []byte) bool {
	hash, ok := ExtractP2PKHHash(lock)
	if !ok {
		return false
	}
	want := digest.Hash160(pubkey)
	return bytes.Equal(hash[:], want[:])
}

func readPush(s []byte) ([]byte, []byte, error) {
	if len(s) == 0 {
		return nil, nil, codecerr.New(codecerr.CodeInsufficientData, "script: missing push")
	}
	n := int(s[0])
	if n == 0 || n > MaxDirectPush {
		return nil, nil, codecerr.New(codecerr.CodeInvalidLength,
			"script: opcode 0x%02x is not a direct push", s[0])
	}
	if len(s) < 1+n {
		return nil, nil, codecerr.New(codecerr.CodeInsufficientData,
			"script: push of %d bytes, have %d", n, len(s)-1)
	}
	return s[1 : 1+n], s[1+n:], nil
}
