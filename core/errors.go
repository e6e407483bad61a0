package core

import "errors"

// Error kinds reported by API64 components. Components wrap them with
// context (fmt.Errorf("%w: ...")) and transports map them with errors.Is.
var (
	// ErrAuth is returned for a missing or mismatching credential.
	ErrAuth = errors.New("invalid API key")
	// ErrValidation is returned when a required field is missing or mistyped.
	ErrValidation = errors.New("invalid request")
	// ErrDecode is returned when the payload is not valid base64 text.
	ErrDecode = errors.New("malformed base64 payload")
	// ErrStorage is returned when an artifact could not be written.
	ErrStorage = errors.New("storing artifact failed")
	// ErrDigest is returned when a stored artifact could not be read back for
	// digesting.
	ErrDigest = errors.New("computing digest failed")
	// ErrNotFound is returned when no artifact exists under a name.
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidName is returned for names containing path separators,
	// parent-directory sequences or other characters that could escape the
	// storage area.
	ErrInvalidName = errors.New("invalid artifact name")
)

// IsClientError reports whether err is caused by the caller's input rather
// than by the service. Storage and digest failures always count as service
// failures, even when they wrap a client kind.
func IsClientError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrStorage), errors.Is(err, ErrDigest):
		return false
	case errors.Is(err, ErrAuth),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrDecode),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidName):
		return true
	}
	return false
}
