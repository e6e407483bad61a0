package core

import "context"

// ArtifactStore defines the interface for artifact persistence. Artifacts are
// write-once: Save never replaces an existing name and there is no update or
// delete operation. Implementations must be safe for concurrent use and must
// reject names that could escape their storage area.
type ArtifactStore interface {
	// Save persists data under name and marks it read-only. Either the full
	// byte sequence is stored or an error wrapping ErrStorage is returned.
	Save(ctx context.Context, name string, data []byte) (*Artifact, error)
	// Open returns a read handle on the named artifact, ErrNotFound if it does
	// not exist or ErrInvalidName if the name is not a plain file name.
	Open(ctx context.Context, name string) (ArtifactFile, error)
}
