package domain

import (
	"fmt"
	"time"
)

// RunState represents a pipeline state in the run state machine.
type RunState string

const (
	StateIdle          RunState = "idle"
	StateFetching      RunState = "fetching"
	StateParsing       RunState = "parsing"
	StateDeduplicating RunState = "deduplicating"
	StateEmitting      RunState = "emitting"
	StateDone          RunState = "done"
	StateFailed        RunState = "failed"
)

// ValidateStateTransition checks if a run state transition is valid.
// Every non-terminal state may fail; forward progress is strictly
// fetch -> parse -> dedupe -> emit -> done.
func ValidateStateTransition(from, to RunState) error {
	validTransitions := map[RunState][]RunState{
		StateIdle:          {StateFetching, StateFailed},
		StateFetching:      {StateParsing, StateFailed},
		StateParsing:       {StateDeduplicating, StateFailed},
		StateDeduplicating: {StateEmitting, StateFailed},
		StateEmitting:      {StateDone, StateFailed},
		// Terminal states
		StateDone:   {},
		StateFailed: {},
	}

	allowedStates, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source state: %s", from)
	}

	for _, allowed := range allowedStates {
		if allowed == to {
			return nil
		}
	}

	return fmt.Errorf("invalid state transition from %s to %s", from, to)
}

// IsTerminalState checks if a state is terminal.
func IsTerminalState(state RunState) bool {
	return state == StateDone || state == StateFailed
}

// RunResult is the outcome of one scheduled invocation.
// Created by the runner, logged, then discarded.
type RunResult struct {
	// RunID uniquely identifies the invocation.
	RunID string `json:"run_id"`
	// State is the terminal state the run reached.
	State RunState `json:"state"`
	// NewFlights are the flights emitted this run, in board order.
	NewFlights []Flight `json:"new_flights,omitempty"`
	// Skipped counts flights dropped as already-seen duplicates.
	Skipped int `json:"skipped"`
	// Updated counts delayed flights whose actual time was updated.
	Updated int `json:"updated"`
	// RowsSkipped counts malformed board rows the parser dropped.
	RowsSkipped int `json:"rows_skipped"`
	// StartedAt and FinishedAt bound the run's wall clock.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Err is the cause when State is failed, nil otherwise.
	Err error `json:"-"`
}

// Succeeded reports whether the run reached the done state.
func (r *RunResult) Succeeded() bool {
	return r.State == StateDone
}

// Duration returns the run's wall-clock duration.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
