package artifact

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/antmrlt/API64/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ core.ArtifactStore = (*InMemoryStore)(nil)
	_ core.ArtifactStore = (*DiskStore)(nil)
)

func readAll(t *testing.T, store core.ArtifactStore, name string) []byte {
	t.Helper()
	f, err := store.Open(context.Background(), name)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return data
}

func TestInMemoryStore_SaveOpenIsolation(t *testing.T) {
	svc := NewInMemoryStore()
	data := []byte("hello")
	art, err := svc.Save(context.Background(), "a1.txt", data)
	require.NoError(t, err)
	assert.Equal(t, int64(5), art.Size)
	assert.Equal(t, "txt", art.Extension)

	// mutate original slice
	data[0] = 'H'
	assert.Equal(t, "hello", string(readAll(t, svc, "a1.txt")))

	f, err := svc.Open(context.Background(), "a1.txt")
	require.NoError(t, err)
	assert.Equal(t, "a1.txt", f.Name())
	assert.Equal(t, int64(5), f.Size())
	assert.Equal(t, art.Created, f.ModTime())
	require.NoError(t, f.Close())
}

func TestInMemoryStore_WriteOnce(t *testing.T) {
	svc := NewInMemoryStore()
	_, err := svc.Save(context.Background(), "a1", []byte("1"))
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), "a1", []byte("2"))
	assert.ErrorIs(t, err, core.ErrStorage)
	assert.ErrorIs(t, err, ErrExists)
	assert.Equal(t, "1", string(readAll(t, svc, "a1")))
	assert.Equal(t, 1, svc.Len())
}

func TestInMemoryStore_NotFoundAndInvalid(t *testing.T) {
	svc := NewInMemoryStore()

	_, err := svc.Open(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Open(context.Background(), "../missing.pdf")
	assert.ErrorIs(t, err, core.ErrInvalidName)

	_, err = svc.Save(context.Background(), "a/b", []byte("x"))
	assert.ErrorIs(t, err, core.ErrInvalidName)
	assert.Zero(t, svc.Len())
}

func TestInMemoryStore_CancelledContext(t *testing.T) {
	svc := NewInMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Save(ctx, "a1", []byte("x"))
	assert.ErrorIs(t, err, core.ErrStorage)
	assert.Zero(t, svc.Len())
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	svc := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("a%d", i)
			if _, err := svc.Save(context.Background(), name, []byte(name)); err != nil {
				t.Errorf("save err: %v", err)
				return
			}
			f, err := svc.Open(context.Background(), name)
			if err != nil {
				t.Errorf("open err: %v", err)
				return
			}
			f.Close()
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, svc.Len())
}
