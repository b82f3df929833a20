// Package seenstore persists the set of previously emitted flight
// identifiers across runs. The store is loaded once at run start and
// committed incrementally as emissions are confirmed; no other actor
// interleaves reads and writes during a run.
package seenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/flightwatch/internal/config/seenset"
	"github.com/jonesrussell/flightwatch/internal/dedup"
	"github.com/jonesrussell/flightwatch/internal/logger"
)

// Op identifies a store operation for error reporting.
type Op string

const (
	// OpLoad is the run-start read of the full seen set.
	OpLoad Op = "load"
	// OpCommit is the write of confirmed identifiers.
	OpCommit Op = "commit"
)

// StoreError wraps a seen-set store failure. A load failure is fatal
// for the run; a commit failure surfaces as run failure without
// rolling back confirmed emissions.
type StoreError struct {
	Op  Op
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("seen-set %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store is the durable seen-set collaborator.
type Store interface {
	// Load reads the full set of previously emitted identifiers.
	Load(ctx context.Context) (dedup.SeenSet, error)
	// Commit durably records identifiers as emitted.
	Commit(ctx context.Context, ids []string) error
	// Close releases the underlying connection.
	Close() error
}

// ErrUnknownBackend is returned for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown seen-set backend")

// New creates the configured seen-set store backend.
func New(cfg *seenset.Config, log logger.Interface) (Store, error) {
	switch cfg.Backend {
	case seenset.BackendRedis:
		return NewRedisStore(&cfg.Redis, log)
	case seenset.BackendPostgres:
		return NewPostgresStore(&cfg.Postgres, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
