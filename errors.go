package compat

import (
	"fmt"

	"github.com/oriumgames/compat/version"
)

// IllegalStateError is returned when a host handle does not have any of the
// shapes the resolved implementation knows.
type IllegalStateError struct {
	// Op is the operation that received the handle.
	Op string
	// Handle is the offending value.
	Handle any
}

// Error implements the error interface.
func (e *IllegalStateError) Error() string {
	if e.Handle == nil {
		return fmt.Sprintf("compat: %s: nil handle", e.Op)
	}
	return fmt.Sprintf("compat: %s: unrecognized handle of type %T", e.Op, e.Handle)
}

func illegalState(op string, h any) error {
	return &IllegalStateError{Op: op, Handle: h}
}

// UnsupportedOperationError is returned when the host release cannot perform
// an operation at all, such as writing the off hand before 1.9.
type UnsupportedOperationError struct {
	Op      string
	Version int
}

// Error implements the error interface.
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("compat: %s is not supported on %s", e.Op, version.Format(e.Version))
}
