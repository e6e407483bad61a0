package core

import (
	"io"
	"time"
)

// Artifact describes a single stored file produced by one ingestion call.
// The bytes themselves are owned by the ArtifactStore; an Artifact only
// carries the metadata callers may hold on to after the write completed.
type Artifact struct {
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
	Size      int64     `json:"size"`
	Created   time.Time `json:"created"`
}

// IngestionRequest is the transient input of a single ingestion call.
type IngestionRequest struct {
	// ContentType is the declared media type, trusted as given.
	ContentType string
	// EncodedPayload is the base64 text carrying the artifact bytes.
	EncodedPayload string
	// WantDigest requests a SHA-256 digest of the stored bytes.
	WantDigest bool
}

// IngestionResult is the transient output of a successful ingestion call.
type IngestionResult struct {
	Name   string
	URL    string
	SHA256 string // empty unless requested
	Size   int64
}

// ArtifactFile is a read handle on a stored artifact. It is seekable so that
// transports can serve ranges and conditional requests.
type ArtifactFile interface {
	io.ReadSeeker
	io.Closer
	Name() string
	Size() int64
	ModTime() time.Time
}
