package artifact

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/antmrlt/API64/core"
)

// InMemoryStore is a trivial in‑process ArtifactStore implementation useful
// for tests, examples and single‑process prototypes. It keeps all artifacts in
// a map guarded by an RWMutex. Data is copied on save so that callers cannot
// mutate stored bytes; readers get their own bytes.Reader over the stored
// slice, which is never written again.
//
// Like DiskStore it is write-once: saving an existing name fails with
// ErrExists. Nothing survives a process restart.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]memoryEntry
	now       func() time.Time
}

type memoryEntry struct {
	data    []byte
	created time.Time
}

// NewInMemoryStore returns an empty in‑memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		artifacts: make(map[string]memoryEntry),
		now:       time.Now,
	}
}

// Save stores a copy of data under name.
func (a *InMemoryStore) Save(ctx context.Context, name string, data []byte) (*core.Artifact, error) {
	if err := core.ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStorage, err)
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	entry := memoryEntry{data: cp, created: a.now()}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.artifacts[name]; exists {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrStorage, name, ErrExists)
	}
	a.artifacts[name] = entry

	return &core.Artifact{
		Name:      name,
		Extension: extension(name),
		Size:      int64(len(cp)),
		Created:   entry.created,
	}, nil
}

// Open returns a reader over the stored bytes or an error wrapping
// core.ErrNotFound.
func (a *InMemoryStore) Open(ctx context.Context, name string) (core.ArtifactFile, error) {
	if err := core.ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	entry, ok := a.artifacts[name]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}

	return &memoryFile{Reader: bytes.NewReader(entry.data), name: name, created: entry.created}, nil
}

// Len returns the number of stored artifacts.
func (a *InMemoryStore) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.artifacts)
}

// memoryFile gets Size from the embedded bytes.Reader, which reports the
// length of the underlying slice.
type memoryFile struct {
	*bytes.Reader
	name    string
	created time.Time
}

func (f *memoryFile) Name() string       { return f.name }
func (f *memoryFile) ModTime() time.Time { return f.created }
func (f *memoryFile) Close() error       { return nil }
