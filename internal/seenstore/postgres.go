package seenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/flightwatch/internal/config/seenset"
	"github.com/jonesrussell/flightwatch/internal/dedup"
	"github.com/jonesrussell/flightwatch/internal/logger"
)

// Connection pool settings for the short-lived scraper process.
const (
	maxOpenConns    = 5
	maxIdleConns    = 2
	connMaxLifetime = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

// seenSchema holds the seen-flight identifiers, one row per ID.
const seenSchema = `
CREATE TABLE IF NOT EXISTS seen_flights (
	id      TEXT PRIMARY KEY,
	seen_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps seen flight identifiers in a Postgres table.
type PostgresStore struct {
	db  *sqlx.DB
	log logger.Interface
}

// NewPostgresStore connects to Postgres, ensures the schema, and
// returns the store.
func NewPostgresStore(cfg *seenset.PostgresConfig, log logger.Interface) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	if _, execErr := db.Exec(seenSchema); execErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure seen_flights schema: %w", execErr)
	}

	return &PostgresStore{
		db:  db,
		log: log.WithComponent("seenstore"),
	}, nil
}

// Load reads every seen identifier.
func (s *PostgresStore) Load(ctx context.Context) (dedup.SeenSet, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, "SELECT id FROM seen_flights"); err != nil {
		return nil, &StoreError{Op: OpLoad, Err: err}
	}

	s.log.Debug("seen set loaded", "backend", "postgres", "size", len(ids))
	return dedup.NewSeenSet(ids), nil
}

// Commit inserts identifiers, ignoring ones already present so a
// retried commit after a partial failure is safe.
func (s *PostgresStore) Commit(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO seen_flights (id) SELECT unnest($1::text[]) ON CONFLICT (id) DO NOTHING",
		pq.Array(ids),
	)
	if err != nil {
		return &StoreError{Op: OpCommit, Err: err}
	}

	s.log.Debug("seen set committed", "backend", "postgres", "count", len(ids))
	return nil
}

// Close releases the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
