// Package digest computes SHA-256 content digests of stored artifacts.
//
// Artifacts are read back through their store in fixed-size chunks, so the
// whole file never has to be held in memory at once.
package digest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/antmrlt/API64/core"
)

// ChunkSize is the read buffer size used while folding a file into the hash.
const ChunkSize = 4 << 10

// Compute returns the lowercase hex SHA-256 of the artifact stored under name.
// Any failure to open or read the artifact is reported wrapping
// core.ErrDigest.
func Compute(ctx context.Context, store core.ArtifactStore, name string) (string, error) {
	f, err := store.Open(ctx, name)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", core.ErrDigest, name, err)
	}
	defer f.Close()

	sum, err := Sum(ctx, f)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", core.ErrDigest, name, err)
	}
	return sum, nil
}

// Sum folds r into a SHA-256 hash ChunkSize bytes at a time and returns the
// lowercase hex digest. ctx is checked between chunks.
func Sum(ctx context.Context, r io.Reader) (string, error) {
	var (
		h   = sha256.New()
		buf = make([]byte, ChunkSize)
	)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
