package digest

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownVectors(t *testing.T) {
	sha := SHA256(nil)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hex.EncodeToString(sha[:]))

	rmd := RIPEMD160(nil)
	assert.Equal(t, "9c1185a5c5e9fc54612808977ee8f548b2258d31", hex.EncodeToString(rmd[:]))

	rmd = RIPEMD160([]byte("abc"))
	assert.Equal(t, "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc", hex.EncodeToString(rmd[:]))

	h256 := Hash256(nil)
	assert.Equal(t, "5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456", hex.EncodeToString(h256[:]))

	h256 = Hash256([]byte("hello"))
	assert.Equal(t, "9595c9df90075148eb06860365df33584b75bff782a510c6cd4883a419833d50", hex.EncodeToString(h256[:]))

	h160 := Hash160(nil)
	assert.Equal(t, "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb", hex.EncodeToString(h160[:]))
}

func TestCompositions(t *testing.T) {
	data := []byte("legacy p2pkh")

	first := SHA256(data)
	second := SHA256(first[:])
	assert.Equal(t, second, Hash256(data))

	assert.Equal(t, RIPEMD160(first[:]), Hash160(data))

	h := Hash256(data)
	sum := Checksum(data)
	assert.Equal(t, h[:4], sum[:])
}

func TestKindDispatch(t *testing.T) {
	data := []byte("dispatch")

	for _, name := range []string{"sha256", "RIPEMD160", "hash256", "Hash160"} {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Len(t, k.Sum(data), k.Size(), "kind %s", k)
	}

	h := Hash160(data)
	assert.Equal(t, h[:], KindHash160.Sum(data))

	_, err := ParseKind("blake2b")
	assert.Error(t, err)

	assert.Nil(t, Kind(0).Sum(data))
	assert.Equal(t, 0, Kind(0).Size())
	assert.Equal(t, "Kind(0)", Kind(0).String())
}
