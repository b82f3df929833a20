package parser

import (
	"errors"
	"fmt"
)

// ErrStructureMissing signals that the expected top-level board
// structure is absent. This is a layout-drift signal that needs
// operator attention, never a silent partial failure.
var ErrStructureMissing = errors.New("expected board structure missing")

// ParseError is a structural parse failure: the board markup no longer
// matches the configured selectors. Per-row failures are not
// ParseErrors; they are skipped and counted.
type ParseError struct {
	// Selector is the selector that failed to match.
	Selector string
	Err      error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse board: selector %q: %v", e.Selector, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err is a structural ParseError.
func IsStructural(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
