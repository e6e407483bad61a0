package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/antmrlt/API64/core"
)

const (
	// ReadOnlyMode is the permission every stored artifact ends up with.
	ReadOnlyMode fs.FileMode = 0o444

	pendingPattern = ".pending-*"
	writeChunk     = 1 << 20
)

// DiskStore persists artifacts as read-only files in a single flat directory.
//
// Save writes into a hidden pending file first and publishes it under the
// final name with a hard link, which fails instead of replacing an existing
// entry. A reader therefore never observes a partially written artifact, and
// a failed Save leaves nothing behind under the final name.
type DiskStore struct {
	root string
}

// NewDiskStore returns a DiskStore rooted at root, creating the directory if
// it does not exist yet.
func NewDiskStore(root string) (*DiskStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root %q: %w", abs, err)
	}
	return &DiskStore{root: abs}, nil
}

// Root returns the absolute storage directory.
func (s *DiskStore) Root() string {
	return s.root
}

// Path returns the location name resolves to inside the storage root.
func (s *DiskStore) Path(name string) (string, error) {
	if err := core.ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

// Save writes data under name and marks the file read-only for everybody.
func (s *DiskStore) Save(ctx context.Context, name string, data []byte) (*core.Artifact, error) {
	dest, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.root, pendingPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: creating pending file: %v", core.ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeAll(ctx, tmp, data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: writing %s: %v", core.ErrStorage, name, err)
	}
	if err := tmp.Chmod(ReadOnlyMode); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: marking %s read-only: %v", core.ErrStorage, name, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing %s: %v", core.ErrStorage, name, err)
	}

	if err := os.Link(tmp.Name(), dest); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s: %w", core.ErrStorage, name, ErrExists)
		}
		return nil, fmt.Errorf("%w: publishing %s: %v", core.ErrStorage, name, err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", core.ErrStorage, name, err)
	}

	return &core.Artifact{
		Name:      name,
		Extension: extension(name),
		Size:      info.Size(),
		Created:   info.ModTime(),
	}, nil
}

// Open returns a read handle on the named artifact.
func (s *DiskStore) Open(ctx context.Context, name string) (core.ArtifactFile, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}

	return &diskFile{File: f, name: name, info: info}, nil
}

// writeAll writes data in bounded chunks so that a deadline on ctx can stop
// a large write between chunks.
func writeAll(ctx context.Context, f *os.File, data []byte) error {
	for len(data) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(len(data), writeChunk)
		if _, err := f.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return ctx.Err()
}

func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return ext[1:]
}

type diskFile struct {
	*os.File
	name string
	info fs.FileInfo
}

func (f *diskFile) Name() string       { return f.name }
func (f *diskFile) Size() int64        { return f.info.Size() }
func (f *diskFile) ModTime() time.Time { return f.info.ModTime() }
