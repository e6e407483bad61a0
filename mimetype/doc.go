// Package mimetype maps declared media types to file-name extensions.
//
// The mapping table is a plain value built once at startup and injected into
// a Resolver. Lookups never fail: a media type missing from the table falls
// back to the substring after its last "/", so "foo/bar" resolves to "bar"
// and a malformed or empty media type yields a malformed or empty extension.
package mimetype
