package testutil

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/antmrlt/API64/artifact"
	"github.com/antmrlt/API64/core"
)

// TestAPIKey is the shared secret used by engine and server tests.
const TestAPIKey = "test-secret"

// FixedTime is a stable clock reading for deterministic names.
var FixedTime = time.Unix(1700000000, 0)

// DiskStore returns a DiskStore rooted in a fresh temporary directory.
func DiskStore(t *testing.T) *artifact.DiskStore {
	t.Helper()
	store, err := artifact.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// FixedEntropy returns a reader yielding the same 16-byte token n times.
func FixedEntropy(b byte, n int) *bytes.Reader {
	return bytes.NewReader(bytes.Repeat([]byte{b}, 16*n))
}

// RequestBuilder provides a fluent helper for constructing ingestion
// requests in tests.
//
//	req := NewRequestBuilder().ContentType("text/plain").Data([]byte("hi")).Digest().Build()
type RequestBuilder struct {
	req core.IngestionRequest
}

// NewRequestBuilder creates a builder for a plain-text payload "hello".
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{req: core.IngestionRequest{
		ContentType:    "text/plain",
		EncodedPayload: base64.StdEncoding.EncodeToString([]byte("hello")),
	}}
}

// ContentType sets the declared media type (chainable).
func (b *RequestBuilder) ContentType(ct string) *RequestBuilder { b.req.ContentType = ct; return b }

// Data sets the payload, base64-encoding it (chainable).
func (b *RequestBuilder) Data(data []byte) *RequestBuilder {
	b.req.EncodedPayload = base64.StdEncoding.EncodeToString(data)
	return b
}

// Encoded sets the raw encoded payload verbatim (chainable).
func (b *RequestBuilder) Encoded(s string) *RequestBuilder { b.req.EncodedPayload = s; return b }

// Digest requests a SHA-256 digest (chainable).
func (b *RequestBuilder) Digest() *RequestBuilder { b.req.WantDigest = true; return b }

// Build returns the request.
func (b *RequestBuilder) Build() core.IngestionRequest { return b.req }
