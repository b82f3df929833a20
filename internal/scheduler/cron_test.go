package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/flightwatch/internal/logger"
	"github.com/jonesrussell/flightwatch/internal/scheduler"
)

func TestScheduleRejectsInvalidSpec(t *testing.T) {
	s := scheduler.New(logger.NewNoOp())
	err := s.Schedule(context.Background(), "not a cron spec", scheduler.JobFunc(func(context.Context) {}))
	require.Error(t, err)
}

func TestScheduleRunsJob(t *testing.T) {
	s := scheduler.New(logger.NewNoOp())

	var mu sync.Mutex
	runs := 0
	err := s.Schedule(context.Background(), "@every 100ms", scheduler.JobFunc(func(context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
	}))
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs >= 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestOverlappingTickIsSkipped(t *testing.T) {
	s := scheduler.New(logger.NewNoOp())

	var mu sync.Mutex
	starts := 0
	release := make(chan struct{})

	err := s.Schedule(context.Background(), "@every 100ms", scheduler.JobFunc(func(context.Context) {
		mu.Lock()
		starts++
		first := starts == 1
		mu.Unlock()
		if first {
			<-release
		}
	}))
	require.NoError(t, err)

	s.Start()

	// The first invocation blocks for several tick intervals. Skipped
	// ticks must not pile up behind it.
	time.Sleep(450 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, starts, "ticks during a running job must be skipped")
	mu.Unlock()

	close(release)
	s.Stop()
}
