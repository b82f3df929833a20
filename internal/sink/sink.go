// Package sink delivers confirmed-new flights to the external output
// store. Sink failures are retryable the same way transient fetch
// failures are, bounded by the run deadline.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/flightwatch/internal/domain"
)

// SinkError wraps a transport or server failure during emission. Only
// these are retryable; permanent failures (bad input, marshalling)
// surface as plain errors.
type SinkError struct {
	// DocID is the flight identifier that failed to emit, if any.
	DocID string
	Err   error
}

// Error implements the error interface.
func (e *SinkError) Error() string {
	if e.DocID != "" {
		return fmt.Sprintf("sink: doc %s: %v", e.DocID, e.Err)
	}
	return fmt.Sprintf("sink: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *SinkError) Unwrap() error {
	return e.Err
}

// IsSinkError reports whether err is a retryable sink failure.
func IsSinkError(err error) bool {
	var se *SinkError
	return errors.As(err, &se)
}

// Sink accepts extracted flights.
type Sink interface {
	// Emit writes one flight. Emission is idempotent on the flight ID.
	Emit(ctx context.Context, flight domain.Flight) error
	// UpdateActual records the actual time for a previously emitted flight.
	UpdateActual(ctx context.Context, id string, actual time.Time) error
	// Close releases the underlying connection.
	Close() error
}
