package resolver

import (
	"errors"
	"fmt"
	"io"
)

// ErrUnreadable marks a failure to open or read a file that resolution
// already located. It is distinct from "not found", which Resolve reports
// through its boolean result.
var ErrUnreadable = errors.New("module file unreadable")

// Load returns the raw bytes of the file at path, usually a
// ResolvedModule.AbsolutePath. Content is returned untouched. Errors wrap
// both ErrUnreadable and the underlying filesystem error.
func (r *Resolver) Load(path string) ([]byte, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrUnreadable, path, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrUnreadable, path, err)
	}
	return content, nil
}
