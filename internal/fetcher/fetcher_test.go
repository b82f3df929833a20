package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonesrussell/flightwatch/internal/config/scraper"
	"github.com/jonesrussell/flightwatch/internal/fetcher"
	"github.com/jonesrussell/flightwatch/internal/logger"
	"github.com/jonesrussell/flightwatch/internal/retry"
)

// testConfig returns a scraper config tuned for fast tests.
func testConfig(maxRetries int) *scraper.Config {
	cfg := scraper.New()
	cfg.BoardURL = "http://placeholder.invalid"
	cfg.RequestTimeout = 2 * time.Second
	cfg.MaxRetries = maxRetries
	cfg.RetryDelay = 5 * time.Millisecond
	return cfg
}

// flakyServer fails the first failures requests with status, then succeeds.
type flakyServer struct {
	mu       sync.Mutex
	failures int
	status   int
	calls    int
}

func (s *flakyServer) handler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.failures
	s.mu.Unlock()

	if fail {
		w.WriteHeader(s.status)
		return
	}
	_, _ = w.Write([]byte("<html><body>board</body></html>"))
}

func (s *flakyServer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != scraper.DefaultUserAgent {
			t.Errorf("User-Agent = %q, want %q", got, scraper.DefaultUserAgent)
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := fetcher.New(testConfig(3), logger.NewNoOp())
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("Fetch() body = %q", body)
	}
}

func TestFetchRetriesTransientWithinBound(t *testing.T) {
	// Fails twice with 503, succeeds on the third attempt. Bound is 3.
	srv := &flakyServer{failures: 2, status: http.StatusServiceUnavailable}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	f := fetcher.New(testConfig(3), logger.NewNoOp())
	body, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want success on attempt 3", err)
	}
	if len(body) == 0 {
		t.Error("Fetch() returned empty body")
	}
	if got := srv.callCount(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestFetchExhaustsRetryBound(t *testing.T) {
	srv := &flakyServer{failures: 10, status: http.StatusServiceUnavailable}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	f := fetcher.New(testConfig(3), logger.NewNoOp())
	_, err := f.Fetch(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("Fetch() succeeded, want retry-bound failure")
	}
	if !errors.Is(err, retry.ErrMaxAttemptsExceeded) {
		t.Errorf("error = %v, want ErrMaxAttemptsExceeded", err)
	}
	if !fetcher.IsTransient(err) {
		t.Errorf("exhausted error should still classify as transient: %v", err)
	}
	if got := srv.callCount(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

// slowServer stalls the first stalls requests past the client deadline,
// then succeeds.
type slowServer struct {
	mu     sync.Mutex
	stalls int
	calls  int
}

func (s *slowServer) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls++
	stall := s.calls <= s.stalls
	s.mu.Unlock()

	if stall {
		// Wait for the client to give up rather than racing a sleep.
		<-r.Context().Done()
		return
	}
	_, _ = w.Write([]byte("<html><body>board</body></html>"))
}

func (s *slowServer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestFetchRetriesTimeoutWithinBound(t *testing.T) {
	// Times out twice, succeeds on the third attempt. Bound is 3.
	srv := &slowServer{stalls: 2}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	cfg := testConfig(3)
	cfg.RequestTimeout = 100 * time.Millisecond
	f := fetcher.New(cfg, logger.NewNoOp())

	body, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want success on attempt 3", err)
	}
	if len(body) == 0 {
		t.Error("Fetch() returned empty body")
	}
	if got := srv.callCount(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestFetchTimeoutExhaustsRetryBound(t *testing.T) {
	srv := &slowServer{stalls: 10}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	cfg := testConfig(2)
	cfg.RequestTimeout = 100 * time.Millisecond
	f := fetcher.New(cfg, logger.NewNoOp())

	_, err := f.Fetch(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("Fetch() succeeded, want timeout failure")
	}
	if !errors.Is(err, retry.ErrMaxAttemptsExceeded) {
		t.Errorf("error = %v, want ErrMaxAttemptsExceeded", err)
	}

	var fe *fetcher.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Kind != fetcher.KindTimeout {
		t.Errorf("Kind = %s, want timeout", fe.Kind)
	}
	if !fetcher.IsTransient(err) {
		t.Errorf("timeout should classify as transient: %v", err)
	}
	if got := srv.callCount(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestFetchPermanentStatusFailsImmediately(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"forbidden", http.StatusForbidden},
		{"gone", http.StatusGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &flakyServer{failures: 10, status: tt.status}
			ts := httptest.NewServer(http.HandlerFunc(srv.handler))
			defer ts.Close()

			f := fetcher.New(testConfig(3), logger.NewNoOp())
			_, err := f.Fetch(context.Background(), ts.URL)
			if err == nil {
				t.Fatal("Fetch() succeeded, want permanent failure")
			}

			var fe *fetcher.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *FetchError", err)
			}
			if fe.Kind != fetcher.KindHTTPStatus || fe.Status != tt.status {
				t.Errorf("error = %+v, want http_status %d", fe, tt.status)
			}
			if fetcher.IsTransient(err) {
				t.Error("4xx should not classify as transient")
			}
			if got := srv.callCount(); got != 1 {
				t.Errorf("server saw %d calls, want 1 (no retry)", got)
			}
		})
	}
}

func TestFetchRetriesTooManyRequests(t *testing.T) {
	// 429 is the one 4xx class that is retryable.
	srv := &flakyServer{failures: 1, status: http.StatusTooManyRequests}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	f := fetcher.New(testConfig(2), logger.NewNoOp())
	if _, err := f.Fetch(context.Background(), ts.URL); err != nil {
		t.Fatalf("Fetch() error = %v, want retry past 429", err)
	}
	if got := srv.callCount(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	f := fetcher.New(testConfig(2), logger.NewNoOp())
	_, err := f.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("Fetch() succeeded against closed port")
	}

	var fe *fetcher.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Kind != fetcher.KindConnection {
		t.Errorf("Kind = %s, want connection", fe.Kind)
	}
}

func TestFetchBodySizeCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer ts.Close()

	cfg := testConfig(1)
	cfg.MaxBodySize = 1024
	f := fetcher.New(cfg, logger.NewNoOp())

	_, err := f.Fetch(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("Fetch() succeeded, want body-size failure")
	}

	var fe *fetcher.FetchError
	if !errors.As(err, &fe) || fe.Kind != fetcher.KindBody {
		t.Errorf("error = %v, want body-kind FetchError", err)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := fetcher.New(testConfig(3), logger.NewNoOp())
	if _, err := f.Fetch(ctx, ts.URL); err == nil {
		t.Fatal("Fetch() succeeded with cancelled context")
	}
}
