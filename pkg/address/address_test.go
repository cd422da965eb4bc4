package address

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	btcbase58 "github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btc-p2pkh/pkg/base58"
	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
	"github.com/suffix-labs/btc-p2pkh/pkg/crypto"
)

const (
	testPrivHex = "16260783e40b16731673622ac8a5b045fc3ea4af70f727f3f9e92bdd3a1ddc42"
	testPubHex  = "0282006e9398a6986eda61fe91674c3a108c399475bf1e738f19dfc2db11db1d28"
	testHash160 = "6bf19e55f94d986b4640c154d864699341919511"
	testAddress = "mqMi3XYqsPvBWtrJTk8euPWDVmFTZ5jHuK"
	testWIF     = "cNKkmrwHuShs2mvkVEKfXULxXhxRo3yy1cK6sq62uBp2Pc8Lsa76"
)

func testKey(t *testing.T) [32]byte {
	t.Helper()
	var k [32]byte
	b, err := hex.DecodeString(testPrivHex)
	require.NoError(t, err)
	copy(k[:], b)
	return k
}

func TestWIFVectors(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		version    byte
		compressed bool
		want       string
	}{
		{WIFTestNet, true, testWIF},
		{WIFTestNet, false, "91kfvDDkht8u7kFtzbjkAd6t6bew6uLFW912LDi1tFENcYTKJq4"},
		{WIFMainNet, true, "KwxmJwwSUP1bsLTV6pWYA9qtuUf28btGwaAdmQdXQ5A28s7GmqyQ"},
		{WIFMainNet, false, "5Hz3LUQD7f4m9gkcNFqqJ2YvSwJDwjo4AC95FbMWYWVKqYhxYDX"},
	}

	for _, tt := range tests {
		got := EncodeWIF(key, tt.version, tt.compressed)
		assert.Equal(t, tt.want, got)

		w, err := DecodeWIF(got)
		require.NoError(t, err)
		assert.Equal(t, key, w.PrivateKey)
		assert.Equal(t, tt.version, w.Version)
		assert.Equal(t, tt.compressed, w.Compressed)
		assert.Equal(t, tt.want, w.String())
	}
}

func TestWIFRoundTripRandom(t *testing.T) {
	for i := 0; i < 16; i++ {
		var k [32]byte
		_, err := rand.Read(k[:])
		require.NoError(t, err)

		w, err := DecodeWIF(EncodeWIF(k, WIFMainNet, true))
		require.NoError(t, err)
		assert.Equal(t, WIF{PrivateKey: k, Version: WIFMainNet, Compressed: true}, *w)
	}
}

func TestDecodeWIFErrors(t *testing.T) {
	key := testKey(t)

	// 36 bytes with checksum.
	short := base58.CheckEncode(append([]byte{WIFMainNet}, key[:31]...))
	_, err := DecodeWIF(short)
	assert.True(t, errors.Is(err, codecerr.ErrInvalidLength), "%v", err)

	// 39 bytes with checksum.
	long := base58.CheckEncode(append(append([]byte{WIFMainNet}, key[:]...), 0x01, 0x01))
	_, err = DecodeWIF(long)
	assert.True(t, errors.Is(err, codecerr.ErrInvalidLength), "%v", err)

	// Empty payload.
	_, err = DecodeWIF(base58.CheckEncode(nil))
	assert.True(t, errors.Is(err, codecerr.ErrInvalidLength), "%v", err)

	badFlag := base58.CheckEncode(append(append([]byte{WIFMainNet}, key[:]...), 0x02))
	_, err = DecodeWIF(badFlag)
	assert.True(t, errors.Is(err, codecerr.ErrInvalidLength), "%v", err)

	_, err = DecodeWIF(EncodeWIF(key, P2PKHTestNet, true))
	assert.True(t, errors.Is(err, codecerr.ErrInvalidVersion), "%v", err)

	raw := btcbase58.Decode(testWIF)
	raw[5] ^= 0x10
	_, err = DecodeWIF(btcbase58.Encode(raw))
	assert.True(t, errors.Is(err, codecerr.ErrChecksumMismatch), "%v", err)

	_, err = DecodeWIF("0" + testWIF[1:])
	assert.True(t, errors.Is(err, codecerr.ErrInvalidCharacter), "%v", err)
}

func TestP2PKHVectors(t *testing.T) {
	pub, err := hex.DecodeString(testPubHex)
	require.NoError(t, err)

	assert.Equal(t, testAddress, EncodeP2PKH(pub, P2PKHTestNet))
	assert.Equal(t, "1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAJ", EncodeP2PKH(pub, P2PKHMainNet))

	hash, version, err := DecodeP2PKH(testAddress)
	require.NoError(t, err)
	assert.Equal(t, P2PKHTestNet, version)
	assert.Equal(t, testHash160, hex.EncodeToString(hash[:]))
	assert.Equal(t, testAddress, EncodeP2PKHHash(hash, version))

	payload, err := DecodeCheck(testAddress)
	require.NoError(t, err)
	assert.Equal(t, "6f"+testHash160, hex.EncodeToString(payload))

	// btcutil produces the same text.
	assert.Equal(t, testAddress, btcbase58.CheckEncode(hash[:], P2PKHTestNet))
}

func TestDecodeP2PKHErrors(t *testing.T) {
	_, _, err := DecodeP2PKH(testWIF)
	assert.True(t, errors.Is(err, codecerr.ErrInvalidLength), "%v", err)

	var hash [20]byte
	_, _, err = DecodeP2PKH(EncodeP2PKHHash(hash, WIFMainNet))
	assert.True(t, errors.Is(err, codecerr.ErrInvalidVersion), "%v", err)

	_, _, err = DecodeP2PKH(testAddress[:len(testAddress)-1] + "L")
	assert.True(t, errors.Is(err, codecerr.ErrChecksumMismatch), "%v", err)
}

func TestAddressFromWIF(t *testing.T) {
	signer := crypto.Secp256k1{}

	addr, err := AddressFromWIF(testWIF, signer)
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)

	// Uncompressed key hashes the 65-byte encoding.
	addr, err = AddressFromWIF("91kfvDDkht8u7kFtzbjkAd6t6bew6uLFW912LDi1tFENcYTKJq4", signer)
	require.NoError(t, err)
	assert.Equal(t, "msKxGtZDoXeWjnxPNJbvZCBmLVv1fNqQMd", addr)

	// Mainnet key maps onto the mainnet address version.
	addr, err = AddressFromWIF("KwxmJwwSUP1bsLTV6pWYA9qtuUf28btGwaAdmQdXQ5A28s7GmqyQ", signer)
	require.NoError(t, err)
	assert.Equal(t, "1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAJ", addr)

	// A zero key is rejected by the signer.
	_, err = AddressFromWIF(EncodeWIF([32]byte{}, WIFTestNet, true), signer)
	assert.True(t, errors.Is(err, codecerr.ErrSignerFailure), "%v", err)
}

func TestNetworks(t *testing.T) {
	for _, name := range []string{"mainnet", "MainNet", "main"} {
		n, err := NetworkByName(name)
		require.NoError(t, err)
		assert.Equal(t, MainNet, n)
	}
	n, err := NetworkByName("testnet")
	require.NoError(t, err)
	assert.Equal(t, TestNet3, n)
	assert.Equal(t, "testnet3", n.String())

	_, err = NetworkByName("regtest")
	assert.True(t, errors.Is(err, codecerr.ErrInvalidVersion))

	n, err = NetworkForWIFVersion(WIFTestNet)
	require.NoError(t, err)
	assert.Equal(t, P2PKHTestNet, n.P2PKHVersion)

	n, err = NetworkForP2PKHVersion(P2PKHMainNet)
	require.NoError(t, err)
	assert.Equal(t, WIFMainNet, n.WIFVersion)

	_, err = NetworkForP2PKHVersion(0x05)
	assert.True(t, errors.Is(err, codecerr.ErrInvalidVersion))
}
