package bip21

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testnetAddr = "mnNcaVkC35ezZSgvn8fhXEa9QTHSUtPfzQ"
	mainnetAddr = "1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAJ"
)

func TestParse(t *testing.T) {
	req, err := Parse("bitcoin:" + testnetAddr + "?amount=0.251&label=Luke-Jr&message=Donation%20for%20project%20xyz")
	require.NoError(t, err)

	assert.Equal(t, testnetAddr, req.Address)
	require.NotNil(t, req.Amount)
	assert.Equal(t, uint64(25_100_000), *req.Amount)
	require.NotNil(t, req.Label)
	assert.Equal(t, "Luke-Jr", *req.Label)
	require.NotNil(t, req.Message)
	assert.Equal(t, "Donation for project xyz", *req.Message)
	assert.Nil(t, req.Extra)
}

func TestParseAddressOnly(t *testing.T) {
	req, err := Parse("BITCOIN:" + mainnetAddr)
	require.NoError(t, err)
	assert.Equal(t, mainnetAddr, req.Address)
	assert.Nil(t, req.Amount)
	assert.Nil(t, req.Label)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"no scheme", testnetAddr},
		{"wrong scheme", "zcash:" + testnetAddr},
		{"no address", "bitcoin:?amount=1"},
		{"bad address", "bitcoin:1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAX"},
		{"bad amount", "bitcoin:" + testnetAddr + "?amount=abc"},
		{"repeated amount", "bitcoin:" + testnetAddr + "?amount=1&amount=2"},
		{"required parameter", "bitcoin:" + testnetAddr + "?req-somethingyoudontunderstand=50"},
		{"bad escape", "bitcoin:" + testnetAddr + "?label=%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.uri)
			assert.Error(t, err)
		})
	}
}

func TestParseKeepsOptionalParameters(t *testing.T) {
	req, err := Parse("bitcoin:" + testnetAddr + "?somethingyoudontunderstand=50&amount=1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"somethingyoudontunderstand": "50"}, req.Extra)
	assert.Equal(t, "bitcoin:"+testnetAddr+"?amount=1&somethingyoudontunderstand=50", req.Encode())
}

func TestParseAmount(t *testing.T) {
	valid := map[string]uint64{
		"0":                 0,
		"1":                 100_000_000,
		"1.5":               150_000_000,
		".5":                50_000_000,
		"0.00000001":        1,
		"20999999.99999999": 2_099_999_999_999_999,
		"21000000":          MaxMoney,
		"0.1":               10_000_000,
		"00.10000000":       10_000_000,
	}
	for s, want := range valid {
		got, err := ParseAmount(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	invalid := []string{
		"", ".", "1.", "-1", "+1", "1e3", "0.000000001", "21000000.00000001",
		"99999999999999999999", "1,5", " 1",
	}
	for _, s := range invalid {
		_, err := ParseAmount(s)
		assert.Error(t, err, "%q", s)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[uint64]string{
		0:             "0",
		1:             "0.00000001",
		25_100_000:    "0.251",
		100_000_000:   "1",
		150_000_000:   "1.5",
		MaxMoney:      "21000000",
		1_000_000_000: "10",
	}
	for sats, want := range tests {
		assert.Equal(t, want, FormatAmount(sats))

		back, err := ParseAmount(want)
		require.NoError(t, err)
		assert.Equal(t, sats, back)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	amount := uint64(123_456_789)
	label := "Coffee & cake"
	message := "thanks!"

	req := &PaymentRequest{Address: mainnetAddr, Amount: &amount, Label: &label, Message: &message}
	uri := req.Encode()
	assert.Equal(t, "bitcoin:"+mainnetAddr+"?amount=1.23456789&label=Coffee+%26+cake&message=thanks%21", uri)

	parsed, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, req, parsed)

	assert.Equal(t, "bitcoin:"+mainnetAddr, (&PaymentRequest{Address: mainnetAddr}).Encode())
}
