// Package parser extracts flight records from flight-board HTML using
// goquery. Parsing is defensive: a malformed row is skipped with a
// warning, while a missing top-level table is a structural failure that
// aborts the run as a layout-drift signal.
package parser

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/flightwatch/internal/config/scraper"
	"github.com/jonesrussell/flightwatch/internal/domain"
	"github.com/jonesrussell/flightwatch/internal/logger"
)

// boardTimeLayout matches the board's published times prefixed with the
// board date, e.g. "Fri Mar 15 2024 2:30 PM". The page itself prints no
// year; it is taken from the board date.
const boardTimeLayout = "Mon Jan 2 2006 3:04 PM"

// rowClassArrival/rowClassDeparture are the CSS classes distinguishing row kinds.
const (
	rowClassArrival   = "arrival"
	rowClassDeparture = "departure"
)

// Result is the outcome of parsing one table.
type Result struct {
	// Flights holds extracted records in board order. Duplicate IDs are
	// possible here; the deduplicator resolves them first-wins.
	Flights []domain.Flight
	// RowsSkipped counts malformed rows dropped during extraction.
	RowsSkipped int
}

// Parser extracts flights from board markup.
type Parser struct {
	selectors scraper.Selectors
	location  *time.Location
	log       logger.Interface
}

// New creates a parser from the scraper configuration.
func New(cfg *scraper.Config, log logger.Interface) *Parser {
	return &Parser{
		selectors: cfg.Selectors,
		location:  cfg.Location(),
		log:       log.WithComponent("parser"),
	}
}

// ParseBoard extracts the current-day flights from raw page content.
// boardDate is the local date the board's times belong to, observed is
// the run's invocation timestamp. The configured today-table selector
// must match, else a structural ParseError is returned.
func (p *Parser) ParseBoard(content []byte, boardDate, observed time.Time, sourceURL string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Selector: p.selectors.TableToday, Err: err}
	}

	table := doc.Find(p.selectors.TableToday)
	if table.Length() == 0 {
		return nil, &ParseError{Selector: p.selectors.TableToday, Err: ErrStructureMissing}
	}

	return p.parseTable(table, boardDate, observed, sourceURL), nil
}

// ParseDelayed extracts delayed flights from the previous-day table.
// Times in that table belong to the day before boardDate. The table is
// optional: its absence yields an empty result, not an error.
func (p *Parser) ParseDelayed(content []byte, boardDate, observed time.Time, sourceURL string) (*Result, error) {
	if p.selectors.TableYesterday == "" {
		return &Result{}, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Selector: p.selectors.TableYesterday, Err: err}
	}

	table := doc.Find(p.selectors.TableYesterday)
	if table.Length() == 0 {
		return &Result{}, nil
	}

	return p.parseTable(table, boardDate.AddDate(0, 0, -1), observed, sourceURL), nil
}

// parseTable walks flight rows and extracts one record per well-formed row.
func (p *Parser) parseTable(table *goquery.Selection, boardDate, observed time.Time, sourceURL string) *Result {
	result := &Result{}

	table.Find(p.selectors.Row).Each(func(_ int, row *goquery.Selection) {
		flight, ok := p.parseRow(row, boardDate, observed, sourceURL)
		if !ok {
			result.RowsSkipped++
			return
		}
		result.Flights = append(result.Flights, flight)
	})

	return result
}

// parseRow extracts one flight from a board row. Returns ok=false for
// rows missing required cells, which the caller counts as skipped.
func (p *Parser) parseRow(row *goquery.Selection, boardDate, observed time.Time, sourceURL string) (domain.Flight, bool) {
	kind, ok := rowKind(row)
	if !ok {
		p.log.Warn("row has no arrival/departure class, skipping")
		return domain.Flight{}, false
	}

	cells := row.Find("td")
	flightNumber := strings.TrimSpace(cells.Eq(1).Text())
	if flightNumber == "" {
		p.log.Warn("row missing flight number, skipping", "kind", string(kind))
		return domain.Flight{}, false
	}

	scheduledText := strings.TrimSpace(row.Find("div").Not(p.selectors.Bubble).First().Text())
	scheduledAt, err := p.parseBoardTime(scheduledText, boardDate)
	if err != nil {
		p.log.Warn("row has unparsable scheduled time, skipping",
			"flight_number", flightNumber,
			"raw", scheduledText,
			"error", err.Error(),
		)
		return domain.Flight{}, false
	}

	flight := domain.Flight{
		FlightNumber: flightNumber,
		Airline:      strings.TrimSpace(row.Find("span").First().Text()),
		Gate:         strings.TrimSpace(row.Find(p.selectors.Gate).First().Text()),
		CityPair:     strings.TrimSpace(cells.Eq(2).Text()),
		Kind:         kind,
		ScheduledAt:  scheduledAt,
		SourceURL:    sourceURL,
		ObservedAt:   observed.UTC(),
	}
	flight.ID = domain.FlightID(kind, flightNumber, scheduledAt)

	// Only delayed rows carry the bubble with an actual time.
	if bubble := row.Find(p.selectors.Bubble).First(); bubble.Length() > 0 {
		actualText := strings.TrimSpace(bubble.Find("div").Eq(1).Text())
		if actualAt, actualErr := p.parseBoardTime(actualText, boardDate); actualErr == nil {
			flight.ActualAt = actualAt
		} else {
			p.log.Warn("delayed row has unparsable actual time",
				"flight_number", flightNumber,
				"raw", actualText,
			)
		}
	}

	return flight, true
}

// parseBoardTime combines the board's date with a published wall-clock
// time and converts to UTC.
func (p *Parser) parseBoardTime(raw string, boardDate time.Time) (time.Time, error) {
	dated := boardDate.In(p.location).Format("Mon Jan 2 2006") + " " + raw
	parsed, err := time.ParseInLocation(boardTimeLayout, dated, p.location)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

// rowKind reads the arrival/departure class from a board row.
func rowKind(row *goquery.Selection) (domain.FlightKind, bool) {
	if row.HasClass(rowClassArrival) {
		return domain.KindArrival, true
	}
	if row.HasClass(rowClassDeparture) {
		return domain.KindDeparture, true
	}
	return "", false
}
