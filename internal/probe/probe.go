// Package probe contains one reader per OS-level data source. Each probe
// returns raw facts only; classification happens in the engine package.
package probe

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable marks a data source that could not be read at all (missing
// file, missing binary, permission denied, timeout). Empty results are normal
// and never produce this error.
var ErrUnavailable = errors.New("probe source unavailable")

// Probe defines the interface for all data-source readers.
type Probe interface {
	Name() string
	Collect(ctx context.Context) (any, error)
}

// Unavailable wraps a cause into an ErrUnavailable for the given source.
func Unavailable(source string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", source, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w: %v", source, ErrUnavailable, cause)
}

// IsUnavailable reports whether err denotes an unreadable data source.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
