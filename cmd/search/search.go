// Package search implements the search command for querying indexed
// flights in Elasticsearch.
package search

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/flightwatch/cmd/common"
	"github.com/jonesrussell/flightwatch/internal/domain"
	"github.com/jonesrussell/flightwatch/internal/sink"
)

// DefaultSearchSize defines the default number of search results to
// return when no size is specified via command-line flags.
const DefaultSearchSize = 20

// Command returns the search command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search indexed flights",
		Long: `Search flights previously emitted to Elasticsearch.

Examples:
  # Show the latest flights
  flightwatch search

  # Search by flight number, airline, city, or gate
  flightwatch search -q "WS 3118"
  flightwatch search -q "Air Canada" -s 50
`,
		RunE: runSearch,
	}

	cmd.Flags().StringP("query", "q", "", "query string (flight number, airline, city, gate)")
	cmd.Flags().IntP("size", "s", DefaultSearchSize, "number of results to return")

	return cmd
}

// runSearch executes the search command with the provided parameters.
func runSearch(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	query, _ := cmd.Flags().GetString("query")
	size, _ := cmd.Flags().GetInt("size")

	flightSink, err := sink.NewElasticsearchSink(deps.Config.GetElasticsearchConfig(), deps.Logger)
	if err != nil {
		return fmt.Errorf("failed to create search client: %w", err)
	}
	defer flightSink.Close()

	flights, err := flightSink.Search(cmd.Context(), query, size)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(flights) == 0 {
		fmt.Fprintf(os.Stdout, "No flights found for query: %q\n", query)
		return nil
	}

	renderFlightsTable(flights, query)
	return nil
}

// renderFlightsTable formats and displays flights in a table.
func renderFlightsTable(flights []domain.Flight, query string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.DrawBorder = true

	t.AppendHeader(table.Row{"#", "Flight", "Airline", "Kind", "City", "Gate", "Scheduled", "Actual"})

	for i, f := range flights {
		t.AppendRow(table.Row{
			i + 1,
			f.FlightNumber,
			f.Airline,
			f.Kind,
			f.CityPair,
			f.Gate,
			formatTime(f.ScheduledAt),
			formatTime(f.ActualAt),
		})
	}

	t.AppendFooter(table.Row{"Total", len(flights), "", "", "", "", "Query", query})
	t.Render()
}

// formatTime renders a timestamp for display, blank when unset.
func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2006-01-02 15:04 MST")
}
