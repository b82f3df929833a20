// Package snapshot archives raw board HTML, one file per day, for
// replay and selector debugging. Snapshot failures are warnings, never
// run failures.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonesrussell/flightwatch/internal/logger"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Archiver writes raw page snapshots to a local directory.
type Archiver struct {
	dir string
	log logger.Interface
}

// New creates an archiver. An empty dir disables snapshotting.
func New(dir string, log logger.Interface) *Archiver {
	return &Archiver{dir: dir, log: log.WithComponent("snapshot")}
}

// Enabled reports whether snapshotting is configured.
func (a *Archiver) Enabled() bool {
	return a.dir != ""
}

// Save writes the raw page for the given board date. Re-running on the
// same day overwrites, keeping one snapshot per day.
func (a *Archiver) Save(boardDate time.Time, content []byte) error {
	if !a.Enabled() {
		return nil
	}

	if err := os.MkdirAll(a.dir, dirPerm); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(a.dir, boardDate.Format("2006-01-02")+".html")
	if err := os.WriteFile(path, content, filePerm); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	a.log.Debug("snapshot saved", "path", path, "bytes", len(content))
	return nil
}
