// Package naming generates unique artifact names.
//
// A name has the shape
//
//	file_<epoch-seconds>_<32 hex chars>.<ext>
//
// The timestamp keeps names sortable and easy to triage; the 128-bit random
// token drawn from crypto/rand is what keeps concurrent calls within the same
// second apart. No lookup against existing names is made: the collision
// probability is negligible at this entropy.
package naming

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPrefix is the literal every generated name starts with.
	DefaultPrefix = "file"
	// TokenBytes is the number of random bytes in a name (128 bits).
	TokenBytes = 16
)

// Options configures a Generator.
type Options struct {
	// Prefix precedes the timestamp. Defaults to DefaultPrefix.
	Prefix string
	// Now supplies the timestamp. Defaults to time.Now.
	Now func() time.Time
	// Entropy supplies the random token. Defaults to crypto/rand.Reader and
	// should only be replaced in tests.
	Entropy io.Reader
}

// Generator produces artifact names. It holds no mutable state and is safe
// for concurrent use as long as its entropy source is.
type Generator struct {
	opts Options
}

// New creates a Generator with optional overrides.
func New(optFns ...func(o *Options)) *Generator {
	opts := Options{
		Prefix:  DefaultPrefix,
		Now:     time.Now,
		Entropy: rand.Reader,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{opts: opts}
}

// Generate returns a fresh name carrying ext. An empty ext produces a name
// ending in a dot, matching what the resolver hands over for an empty media
// type subtype.
func (g *Generator) Generate(ext string) (string, error) {
	token := make([]byte, TokenBytes)
	if _, err := io.ReadFull(g.opts.Entropy, token); err != nil {
		return "", fmt.Errorf("reading random token: %w", err)
	}

	var b strings.Builder
	b.Grow(len(g.opts.Prefix) + 1 + 20 + 1 + 2*TokenBytes + 1 + len(ext))
	b.WriteString(g.opts.Prefix)
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(g.opts.Now().Unix(), 10))
	b.WriteByte('_')
	b.WriteString(hex.EncodeToString(token))
	b.WriteByte('.')
	b.WriteString(ext)
	return b.String(), nil
}
