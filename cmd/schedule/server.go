package schedule

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/flightwatch/internal/config/server"
	"github.com/jonesrussell/flightwatch/internal/logger"
	"github.com/jonesrussell/flightwatch/internal/runner"
)

const shutdownTimeout = 10 * time.Second

// statusServer exposes the daemon's health and last-run status.
type statusServer struct {
	server *http.Server
	runner *runner.Runner
	log    logger.Interface
}

// newStatusServer builds the HTTP surface for the schedule daemon.
func newStatusServer(cfg *server.Config, run *runner.Runner, log logger.Interface) *statusServer {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &statusServer{
		runner: run,
		log:    log.WithComponent("status_server"),
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}

	router.GET("/health", s.handleHealth)
	router.GET("/runs/last", s.handleLastRun)

	return s
}

// StartAsync starts the server in a goroutine. The returned channel
// receives any server error.
func (s *statusServer) StartAsync() <-chan error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("status server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh
}

// Shutdown drains in-flight requests and stops the server.
func (s *statusServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// handleHealth reports liveness.
func (s *statusServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleLastRun reports the most recent run's outcome.
func (s *statusServer) handleLastRun(c *gin.Context) {
	last := s.runner.LastResult()
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs yet"})
		return
	}

	resp := gin.H{
		"run_id":       last.RunID,
		"state":        last.State,
		"emitted":      len(last.NewFlights),
		"skipped":      last.Skipped,
		"updated":      last.Updated,
		"rows_skipped": last.RowsSkipped,
		"started_at":   last.StartedAt,
		"finished_at":  last.FinishedAt,
	}
	if last.Err != nil {
		resp["error"] = last.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
