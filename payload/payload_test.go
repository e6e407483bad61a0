package payload

import (
	"crypto/rand"
	"testing"

	"github.com/antmrlt/API64/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	data, err := Decode("aGVsbG8gd29ybGQ=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), data)

	data, err = Decode("")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestDecode_RoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 2, 3, 4095, 4096, 4097, 1 << 16} {
		want := make([]byte, size)
		_, err := rand.Read(want)
		require.NoError(t, err)

		got, err := Decode(Encode(want))
		require.NoError(t, err)
		assert.Equal(t, want, got, "size %d", size)
	}
}

func TestDecode_Malformed(t *testing.T) {
	malformed := []string{
		"not base64!",
		"aGVsbG8",   // missing padding
		"aGVsbG8==", // excess padding
		"aGVs bG8=", // embedded space
		"a",
		"****",
		"aGVsbG9=", // non-canonical trailing bits
	}
	for _, in := range malformed {
		_, err := Decode(in)
		assert.ErrorIs(t, err, core.ErrDecode, "%q", in)
	}
}
