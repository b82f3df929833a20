// Package domain provides domain models used across the application.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// FlightKind distinguishes arrivals from departures.
type FlightKind string

const (
	// KindArrival marks a flight arriving at the board's airport.
	KindArrival FlightKind = "arrival"
	// KindDeparture marks a flight departing the board's airport.
	KindDeparture FlightKind = "departure"
)

// flightIDLength is the number of hex characters kept from the full digest.
const flightIDLength = 24

// Flight represents one row extracted from the flight board.
// Flights are immutable once produced by the parser.
type Flight struct {
	// ID is a stable identifier derived from kind, flight number and
	// scheduled time. Unique within one run's result set.
	ID string `json:"id" db:"id"`
	// FlightNumber is the carrier flight designator, e.g. "WS197".
	FlightNumber string `json:"flight_number" db:"flight_number"`
	// Airline is the operating carrier's display name.
	Airline string `json:"airline,omitempty" db:"airline"`
	// Gate is the assigned gate, if published.
	Gate string `json:"gate,omitempty" db:"gate"`
	// CityPair is the origin (arrivals) or destination (departures) city.
	CityPair string `json:"city_pair,omitempty" db:"city_pair"`
	// Kind is "arrival" or "departure".
	Kind FlightKind `json:"kind" db:"kind"`
	// ScheduledAt is the published scheduled time in UTC.
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	// ActualAt is the actual time in UTC. Zero unless the board shows
	// a delay bubble for the row.
	ActualAt time.Time `json:"actual_at,omitzero" db:"actual_at"`
	// SourceURL is the board page the row was extracted from.
	SourceURL string `json:"source_url" db:"source_url"`
	// ObservedAt is the invocation timestamp of the run that saw the row.
	ObservedAt time.Time `json:"observed_at" db:"observed_at"`
}

// ErrInvalidFlight is returned when a flight fails validation.
var ErrInvalidFlight = errors.New("invalid flight")

// FlightID derives the stable identifier for a board row.
// The same flight on the same schedule always maps to the same ID,
// which is what the seen-set deduplicates on across runs.
func FlightID(kind FlightKind, flightNumber string, scheduledAt time.Time) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s",
		kind, flightNumber, scheduledAt.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(h[:])[:flightIDLength]
}

// Validate checks that the flight carries the fields every consumer relies on.
func (f *Flight) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidFlight)
	}
	if f.FlightNumber == "" {
		return fmt.Errorf("%w: missing flight number", ErrInvalidFlight)
	}
	if f.Kind != KindArrival && f.Kind != KindDeparture {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidFlight, f.Kind)
	}
	if f.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: missing scheduled time", ErrInvalidFlight)
	}
	return nil
}

// Delayed reports whether the board published an actual time for the row.
func (f *Flight) Delayed() bool {
	return !f.ActualAt.IsZero()
}
