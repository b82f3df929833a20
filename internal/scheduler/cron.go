// Package scheduler drives repeated runner invocations on a cron
// schedule. A tick that arrives while the previous run is still in
// flight is skipped, never queued.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/flightwatch/internal/logger"
)

// Job is the unit of scheduled work.
type Job interface {
	Run(ctx context.Context)
}

// JobFunc adapts a function to the Job interface.
type JobFunc func(ctx context.Context)

// Run invokes the function.
func (f JobFunc) Run(ctx context.Context) { f(ctx) }

// Scheduler wraps a cron runner with overlap protection.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Interface
}

// New creates a scheduler. Schedules use the standard five-field cron
// syntax plus descriptors like "@every 30m".
func New(log logger.Interface) *Scheduler {
	componentLog := log.WithComponent("scheduler")
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLogger{componentLog}),
		)),
		log: componentLog,
	}
}

// Schedule registers job to run on spec. The job receives ctx, which
// outlives individual ticks and cancels in-flight work on Stop.
func (s *Scheduler) Schedule(ctx context.Context, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		job.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	s.log.Info("job scheduled", "spec", spec)
	return nil
}

// Start begins dispatching ticks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts tick dispatch and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("scheduler stopped")
}

// cronLogger adapts our logger to cron's logging interface so skipped
// ticks are visible in structured output.
type cronLogger struct {
	log logger.Interface
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Info(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := append([]any{"error", err.Error()}, keysAndValues...)
	c.log.Error(msg, fields...)
}
