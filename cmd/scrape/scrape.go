// Package scrape implements the one-shot scrape command.
package scrape

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/flightwatch/cmd/common"
)

// Command returns the scrape command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape of the flight board",
		Long: `Fetch the flight board once, extract flights, and emit new
records to the output store. Exits non-zero if the run fails.`,
		RunE: runScrape,
	}
}

// runScrape executes a single pipeline run.
func runScrape(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	pipeline, err := common.BuildPipeline(deps)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer pipeline.Close()

	result := pipeline.Runner.Run(cmd.Context())
	if !result.Succeeded() {
		return fmt.Errorf("run %s failed: %w", result.RunID, result.Err)
	}

	return nil
}
