package script

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
)

const (
	testPubHex = "0282006e9398a6986eda61fe91674c3a108c399475bf1e738f19dfc2db11db1d28"
	testSigHex = "3045022100c75cb2fcb64a80d1c4bea001b797671d7c0e5aa3dcd2f3d52006e6ef2cb54d92" +
		"02206093fdee81c3229695c1db3b9630fa229c77aed0665d5260be57584693a142be"
)

func TestP2PKHLock(t *testing.T) {
	pub, err := hex.DecodeString(testPubHex)
	require.NoError(t, err)

	lock := P2PKHLockFromPubKey(pub)
	assert.Equal(t, "76a9146bf19e55f94d986b4640c154d86469934191951188ac", hex.EncodeToString(lock))
	assert.Len(t, lock, P2PKHLockLen)
	assert.True(t, IsP2PKHLock(lock))
	assert.True(t, MatchesPubKey(lock, pub))

	hash, ok := ExtractP2PKHHash(lock)
	require.True(t, ok)
	assert.Equal(t, lock, P2PKHLock(hash))

	other := append([]byte{}, pub...)
	other[0] = 0x03
	assert.False(t, MatchesPubKey(lock, other))

	for _, bad := range [][]byte{
		nil,
		lock[:24],
		append(append([]byte{}, lock...), 0x00),
		append([]byte{0x75}, lock[1:]...),
	} {
		assert.False(t, IsP2PKHLock(bad), "%x", bad)
	}
}

func TestP2PKHUnlockRoundTrip(t *testing.T) {
	pub, _ := hex.DecodeString(testPubHex)
	sig, _ := hex.DecodeString(testSigHex)

	unlock, err := P2PKHUnlock(sig, 0x01, pub)
	require.NoError(t, err)
	assert.Equal(t, "48"+testSigHex+"01"+"21"+testPubHex, hex.EncodeToString(unlock))
	assert.Len(t, unlock, 1+len(sig)+1+1+len(pub))

	gotSig, gotPub, err := ParseP2PKHUnlock(unlock)
	require.NoError(t, err)
	assert.Equal(t, append(sig, 0x01), gotSig)
	assert.Equal(t, pub, gotPub)
}

func TestPushLimit(t *testing.T) {
	out, err := Push(nil, bytes.Repeat([]byte{0xAA}, MaxDirectPush))
	require.NoError(t, err)
	assert.Equal(t, byte(MaxDirectPush), out[0])

	_, err = Push(nil, bytes.Repeat([]byte{0xAA}, MaxDirectPush+1))
	assert.True(t, errors.Is(err, codecerr.ErrInvalidLength))

	_, err = P2PKHUnlock(bytes.Repeat([]byte{0x30}, MaxDirectPush), 0x01, nil)
	assert.True(t, errors.Is(err, codecerr.ErrInvalidLength))
}

func TestParseP2PKHUnlockErrors(t *testing.T) {
	pub, _ := hex.DecodeString(testPubHex)
	sig, _ := hex.DecodeString(testSigHex)
	unlock, err := P2PKHUnlock(sig, 0x01, pub)
	require.NoError(t, err)

	tests := []struct {
		name   string
		script []byte
		want   error
	}{
		{"empty", nil, codecerr.ErrInsufficientData},
		{"truncated pubkey", unlock[:len(unlock)-1], codecerr.ErrInsufficientData},
		{"missing pubkey", unlock[:1+len(sig)+1], codecerr.ErrInsufficientData},
		{"trailing", append(append([]byte{}, unlock...), 0x51), codecerr.ErrInvalidLength},
		{"pushdata1", append([]byte{0x4C, 0x01}, unlock...), codecerr.ErrInvalidLength},
		{"op_0", append([]byte{0x00}, unlock...), codecerr.ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseP2PKHUnlock(tt.script)
			assert.True(t, errors.Is(err, tt.want), "%v", err)
		})
	}
}
