package tx

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btc-p2pkh/pkg/script"
)

// A one-input, two-output testnet spend: 87,000,000 in, 25,100,000 to
// mnNcaVkC35ezZSgvn8fhXEa9QTHSUtPfzQ and 61,900,000 back to
// mqMi3XYqsPvBWtrJTk8euPWDVmFTZ5jHuK.
const (
	fixtureTxID     = "f34e1c37e736727770fed85d1b129713ef7f300304498c31c833985f487fa2f3"
	fixtureDestHash = "4b3518229b0d3554fe7cd3796ade632aff3069d8"
	fixtureSelfHash = "6bf19e55f94d986b4640c154d864699341919511"
	fixturePubKey   = "0282006e9398a6986eda61fe91674c3a108c399475bf1e738f19dfc2db11db1d28"

	fixturePreimage = "0100000001f3a27f485f9833c8318c490403307fef1397121b5dd8fe70777236e7371c4ef3" +
		"000000001976a9146bf19e55f94d986b4640c154d86469934191951188acffffffff02e0fe7e01" +
		"000000001976a9144b3518229b0d3554fe7cd3796ade632aff3069d888ace084b0030000000019" +
		"76a9146bf19e55f94d986b4640c154d86469934191951188ac0000000001000000"
	fixtureSighash = "77b328b09161e6cdaca600b6ae5fc3fbd27e94edb3a696f73ffb74c47aa79b38"
	fixtureSig     = "3045022100c75cb2fcb64a80d1c4bea001b797671d7c0e5aa3dcd2f3d52006e6ef2cb54d92" +
		"02206093fdee81c3229695c1db3b9630fa229c77aed0665d5260be57584693a142be"
	fixtureSigned = "0100000001f3a27f485f9833c8318c490403307fef1397121b5dd8fe70777236e7371c4ef3" +
		"000000006b483045022100c75cb2fcb64a80d1c4bea001b797671d7c0e5aa3dcd2f3d52006e6ef" +
		"2cb54d9202206093fdee81c3229695c1db3b9630fa229c77aed0665d5260be57584693a142be01" +
		"210282006e9398a6986eda61fe91674c3a108c399475bf1e738f19dfc2db11db1d28ffffffff02" +
		"e0fe7e01000000001976a9144b3518229b0d3554fe7cd3796ade632aff3069d888ace084b00300" +
		"0000001976a9146bf19e55f94d986b4640c154d86469934191951188ac00000000"
	fixtureSignedTxID = "c1626e70318819b4918c7a7f2e96c20023ce3eb5b6fb25b1a7bde5f64436554e"
)

func hash160(t *testing.T, s string) [20]byte {
	t.Helper()
	var h [20]byte
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	copy(h[:], b)
	return h
}

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// fixtureTx returns the unsigned spend and the script of the output it spends.
func fixtureTx(t *testing.T) (*Transaction, []byte) {
	t.Helper()

	op, err := NewOutpoint(fixtureTxID, 0)
	require.NoError(t, err)

	tx := New().
		AddInput(NewInput(op)).
		AddOutput(NewP2PKHOutput(25_100_000, hash160(t, fixtureDestHash))).
		AddOutput(NewP2PKHOutput(61_900_000, hash160(t, fixtureSelfHash)))

	return tx, script.P2PKHLock(hash160(t, fixtureSelfHash))
}
