package artifact

import "fmt"

var (
	// ErrExists is returned (wrapped in core.ErrStorage) when Save is asked to
	// write a name that is already taken. Generated names make this a
	// practically impossible event; it is reported rather than overwritten.
	ErrExists = fmt.Errorf("artifact already exists")
)
