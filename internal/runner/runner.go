// Package runner orchestrates one scraper invocation: fetch, parse,
// dedupe, emit, commit. Each run is stateless; durable state lives in
// the seen-set store and the sink.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/flightwatch/internal/config/scraper"
	"github.com/jonesrussell/flightwatch/internal/dedup"
	"github.com/jonesrussell/flightwatch/internal/domain"
	"github.com/jonesrussell/flightwatch/internal/logger"
	"github.com/jonesrussell/flightwatch/internal/parser"
	"github.com/jonesrussell/flightwatch/internal/retry"
	"github.com/jonesrussell/flightwatch/internal/seenstore"
	"github.com/jonesrussell/flightwatch/internal/sink"
)

// Fetcher retrieves raw page content.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Parser extracts flights from raw page content.
type Parser interface {
	ParseBoard(content []byte, boardDate, observed time.Time, sourceURL string) (*parser.Result, error)
	ParseDelayed(content []byte, boardDate, observed time.Time, sourceURL string) (*parser.Result, error)
}

// Snapshotter archives raw page content. Saving is a no-op when
// snapshotting is not configured.
type Snapshotter interface {
	Save(boardDate time.Time, content []byte) error
}

// Runner executes the pipeline. One instance serializes its runs: an
// invocation arriving while another is in flight is skipped, so the
// seen set is never loaded by two concurrent runs.
type Runner struct {
	cfg     *scraper.Config
	fetcher Fetcher
	parser  Parser
	store   seenstore.Store
	sink    sink.Sink
	snap    Snapshotter
	log     logger.Interface
	now     func() time.Time

	runMu sync.Mutex

	mu   sync.Mutex
	last *domain.RunResult
}

// New creates a runner with all pipeline collaborators injected.
func New(
	cfg *scraper.Config,
	fetcher Fetcher,
	boardParser Parser,
	store seenstore.Store,
	flightSink sink.Sink,
	snap Snapshotter,
	log logger.Interface,
) *Runner {
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		parser:  boardParser,
		store:   store,
		sink:    flightSink,
		snap:    snap,
		log:     log.WithComponent("runner"),
		now:     time.Now,
	}
}

// LastResult returns the most recent run's result, or nil before the
// first run. Used by the daemon's status endpoint.
func (r *Runner) LastResult() *domain.RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Run executes one invocation under the configured run timeout and
// returns a terminal RunResult. When another invocation is still in
// flight the call is skipped and returns nil; the cron chain skips
// overlapping ticks the same way, and this guard extends that to
// invocations arriving outside it.
func (r *Runner) Run(ctx context.Context) *domain.RunResult {
	if !r.runMu.TryLock() {
		r.log.Warn("run already in flight, skipping")
		return nil
	}
	defer r.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	result := &domain.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: r.now().UTC(),
	}
	log := r.log.WithRunID(result.RunID)
	state := domain.StateIdle

	log.Info("run started", "board_url", r.cfg.BoardURL)
	r.execute(ctx, log, &state, result)

	result.State = state
	result.FinishedAt = r.now().UTC()

	if result.Succeeded() {
		log.Info("run finished",
			"emitted", len(result.NewFlights),
			"skipped", result.Skipped,
			"updated", result.Updated,
			"rows_skipped", result.RowsSkipped,
			"duration", result.Duration().String(),
		)
	} else {
		log.Error("run failed",
			"error", result.Err.Error(),
			"emitted", len(result.NewFlights),
			"duration", result.Duration().String(),
		)
	}

	r.mu.Lock()
	r.last = result
	r.mu.Unlock()

	return result
}

// execute advances the pipeline state machine. On return, state is
// either Emitting (caller marks Done) or Failed with result.Err set.
func (r *Runner) execute(ctx context.Context, log logger.Interface, state *domain.RunState, result *domain.RunResult) {
	// The seen set is loaded once at run start and written only as
	// emissions are confirmed.
	seen, err := r.store.Load(ctx)
	if err != nil {
		r.fail(log, state, result, err)
		return
	}

	r.transition(log, state, domain.StateFetching)
	body, err := r.fetcher.Fetch(ctx, r.cfg.BoardURL)
	if err != nil {
		r.fail(log, state, result, err)
		return
	}

	boardDate := r.now().In(r.cfg.Location())
	if snapErr := r.snap.Save(boardDate, body); snapErr != nil {
		log.Warn("snapshot failed", "error", snapErr.Error())
	}

	r.transition(log, state, domain.StateParsing)
	board, err := r.parser.ParseBoard(body, boardDate, result.StartedAt, r.cfg.BoardURL)
	if err != nil {
		r.fail(log, state, result, err)
		return
	}
	result.RowsSkipped += board.RowsSkipped

	delayed, err := r.parser.ParseDelayed(body, boardDate, result.StartedAt, r.cfg.BoardURL)
	if err != nil {
		r.fail(log, state, result, err)
		return
	}
	result.RowsSkipped += delayed.RowsSkipped

	r.transition(log, state, domain.StateDeduplicating)
	fresh, dupes := dedup.Partition(seen, board.Flights)
	result.Skipped = len(dupes)
	log.Debug("board partitioned",
		"parsed", len(board.Flights),
		"fresh", len(fresh),
		"duplicates", len(dupes),
	)

	r.transition(log, state, domain.StateEmitting)
	if err := r.emitAndCommit(ctx, fresh, seen, result); err != nil {
		r.fail(log, state, result, err)
		return
	}

	if err := r.applyDelayed(ctx, log, delayed.Flights, seen, result); err != nil {
		r.fail(log, state, result, err)
		return
	}

	r.transition(log, state, domain.StateDone)
}

// emitAndCommit emits fresh flights in board order, committing each
// identifier to the seen set only after its emission is confirmed. A
// failure after k of n confirmed emissions leaves exactly k committed.
func (r *Runner) emitAndCommit(
	ctx context.Context,
	fresh []domain.Flight,
	seen dedup.SeenSet,
	result *domain.RunResult,
) error {
	retryCfg := r.sinkRetryConfig()

	for _, flight := range fresh {
		emitErr := retry.Do(ctx, retryCfg, func() error {
			return r.sink.Emit(ctx, flight)
		})
		if emitErr != nil {
			return emitErr
		}

		if commitErr := r.store.Commit(ctx, []string{flight.ID}); commitErr != nil {
			// The emission stands; at-least-once over data loss. The
			// next run re-emits idempotently on the flight ID.
			return commitErr
		}

		seen.Add(flight.ID)
		result.NewFlights = append(result.NewFlights, flight)
	}

	return nil
}

// applyDelayed pushes actual-time updates for delayed flights that were
// emitted by this or an earlier run. Unknown identifiers are skipped:
// the flight was never emitted, so there is nothing to update.
func (r *Runner) applyDelayed(
	ctx context.Context,
	log logger.Interface,
	delayed []domain.Flight,
	seen dedup.SeenSet,
	result *domain.RunResult,
) error {
	retryCfg := r.sinkRetryConfig()

	for _, flight := range delayed {
		if !flight.Delayed() {
			continue
		}
		if !seen.Contains(flight.ID) {
			log.Warn("delayed flight never emitted, skipping update",
				"flight_number", flight.FlightNumber,
				"id", flight.ID,
			)
			continue
		}

		updateErr := retry.Do(ctx, retryCfg, func() error {
			return r.sink.UpdateActual(ctx, flight.ID, flight.ActualAt)
		})
		if updateErr != nil {
			return updateErr
		}
		result.Updated++
	}

	return nil
}

// sinkRetryConfig mirrors the fetcher's transient-failure policy for
// sink operations, bounded by the run deadline through ctx.
func (r *Runner) sinkRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  r.cfg.MaxRetries,
		InitialDelay: r.cfg.RetryDelay,
		MaxDelay:     scraper.DefaultMaxRetryDelay,
		IsRetryable:  sink.IsSinkError,
	}
}

// fail moves the state machine to Failed and records the cause.
func (r *Runner) fail(log logger.Interface, state *domain.RunState, result *domain.RunResult, err error) {
	r.transition(log, state, domain.StateFailed)
	result.Err = err
}

// transition validates and applies a state change. An invalid
// transition indicates a pipeline bug and is logged, not swallowed.
func (r *Runner) transition(log logger.Interface, state *domain.RunState, to domain.RunState) {
	if err := domain.ValidateStateTransition(*state, to); err != nil {
		log.Error("invalid run state transition", "error", err.Error())
	}
	*state = to
}
