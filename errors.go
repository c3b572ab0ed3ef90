// errors.go
package shed

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRealized indicates a pinned package is absent from the store.
	ErrNotRealized = errors.New("package not realized")

	// ErrFrozen indicates the lockfile is missing a package in frozen mode.
	ErrFrozen = errors.New("lockfile out of date")

	// ErrNoChannel indicates neither the manifest nor the configuration
	// names a channel.
	ErrNoChannel = errors.New("no channel configured")
)

// Error wraps an error with the operation and package it belongs to.
type Error struct {
	Op      string // Operation that failed
	Package string // Package name if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
