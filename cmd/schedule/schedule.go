// Package schedule implements the daemon command that runs the scraper
// on a cron schedule and serves a small status API.
package schedule

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/flightwatch/cmd/common"
	"github.com/jonesrussell/flightwatch/internal/scheduler"
)

// Command returns the schedule command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the scraper on a schedule",
		Long: `Run the scraper as a daemon. Scrapes execute on the configured
cron schedule; a tick that arrives while a run is still in flight is
skipped. A status API reports health and the last run's outcome.`,
		RunE: runSchedule,
	}
	cmd.Flags().Bool("immediate", false, "run one scrape immediately on startup")
	return cmd
}

// runSchedule starts the scheduler and the status server, then blocks
// until a shutdown signal arrives.
func runSchedule(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	pipeline, err := common.BuildPipeline(deps)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer pipeline.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sched := scheduler.New(deps.Logger)
	spec := deps.Config.GetCronSpec()
	job := scheduler.JobFunc(func(jobCtx context.Context) {
		pipeline.Runner.Run(jobCtx)
	})
	if scheduleErr := sched.Schedule(ctx, spec, job); scheduleErr != nil {
		return fmt.Errorf("failed to schedule scrape: %w", scheduleErr)
	}

	srv := newStatusServer(deps.Config.GetServerConfig(), pipeline.Runner, deps.Logger)
	errCh := srv.StartAsync()

	if immediate, _ := cmd.Flags().GetBool("immediate"); immediate {
		go pipeline.Runner.Run(ctx)
	}

	sched.Start()
	deps.Logger.Info("daemon started", "cron", spec)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case srvErr := <-errCh:
		cancel()
		sched.Stop()
		return fmt.Errorf("status server error: %w", srvErr)
	case sig := <-sigCh:
		deps.Logger.Info("shutdown signal received", "signal", sig.String())
	}

	cancel()
	sched.Stop()

	if shutdownErr := srv.Shutdown(context.Background()); shutdownErr != nil {
		return fmt.Errorf("status server shutdown: %w", shutdownErr)
	}

	deps.Logger.Info("daemon stopped")
	return nil
}
