package digest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/antmrlt/API64/artifact"
	"github.com/antmrlt/API64/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hexSum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestSum_KnownVectors(t *testing.T) {
	sum, err := Sum(context.Background(), bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", sum)

	sum, err = Sum(context.Background(), bytes.NewReader([]byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}

// countingReader records the largest single read so the chunk bound can be
// asserted.
type countingReader struct {
	r       io.Reader
	maxRead int
	reads   int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	if len(p) > c.maxRead {
		c.maxRead = len(p)
	}
	return c.r.Read(p)
}

func TestSum_ReadsInChunks(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 5000)
	cr := &countingReader{r: bytes.NewReader(data)}

	sum, err := Sum(context.Background(), cr)
	require.NoError(t, err)
	assert.Equal(t, hexSum(data), sum)
	assert.Equal(t, ChunkSize, cr.maxRead)
	assert.GreaterOrEqual(t, cr.reads, len(data)/ChunkSize)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestSum_ReadError(t *testing.T) {
	_, err := Sum(context.Background(), brokenReader{})
	assert.ErrorContains(t, err, "disk on fire")
}

func TestCompute(t *testing.T) {
	store, err := artifact.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 3000)
	_, err = store.Save(context.Background(), "blob.bin", data)
	require.NoError(t, err)

	sum, err := Compute(context.Background(), store, "blob.bin")
	require.NoError(t, err)
	assert.Equal(t, hexSum(data), sum)
}

func TestCompute_Missing(t *testing.T) {
	_, err := Compute(context.Background(), artifact.NewInMemoryStore(), "gone.bin")
	assert.ErrorIs(t, err, core.ErrDigest)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCompute_Cancelled(t *testing.T) {
	store := artifact.NewInMemoryStore()
	_, err := store.Save(context.Background(), "a.bin", []byte("x"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Compute(ctx, store, "a.bin")
	assert.ErrorIs(t, err, core.ErrDigest)
}
