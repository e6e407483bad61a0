package core

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateName returns an error wrapping ErrInvalidName unless name is a plain
// file name that resolves inside a flat storage directory. Leading dots are
// refused so that hidden and pending files in the storage area can never be
// addressed.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains a parent-directory sequence", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case name[0] == '.':
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return fmt.Errorf("%w: %q contains a control character", ErrInvalidName, name)
	}
	return nil
}
