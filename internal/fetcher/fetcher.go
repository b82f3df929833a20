// Package fetcher retrieves the flight-board page over HTTP with a
// bounded timeout per request and bounded retries for transient failures.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/jonesrussell/flightwatch/internal/config/scraper"
	"github.com/jonesrussell/flightwatch/internal/logger"
	"github.com/jonesrussell/flightwatch/internal/retry"
)

// Fetcher fetches raw page content. One instance is safe for reuse
// across runs; it holds no per-run state.
type Fetcher struct {
	client      *http.Client
	log         logger.Interface
	userAgent   string
	maxBodySize int64
	retryCfg    retry.Config
}

// New creates a fetcher from the scraper configuration.
func New(cfg *scraper.Config, log logger.Interface) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: cfg.RequestTimeout},
		log:         log.WithComponent("fetcher"),
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
		retryCfg: retry.Config{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: cfg.RetryDelay,
			MaxDelay:     scraper.DefaultMaxRetryDelay,
			IsRetryable:  IsTransient,
		},
	}
}

// Fetch retrieves the page at url, retrying transient failures with
// exponential backoff. Returns the raw body or a FetchError (possibly
// wrapped with the retry bound) on failure.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	err := retry.Do(ctx, f.retryCfg, func() error {
		var fetchErr error
		body, fetchErr = f.fetchOnce(ctx, url)
		if fetchErr != nil {
			f.log.Warn("fetch attempt failed", "url", url, "error", fetchErr.Error())
		}
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	f.log.Debug("page fetched", "url", url, "bytes", len(body))
	return body, nil
}

// fetchOnce performs a single HTTP GET and classifies any failure.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &FetchError{Kind: KindConnection, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain so the connection can be reused before the retry.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodySize))
		return nil, &FetchError{Kind: KindHTTPStatus, URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{Kind: KindBody, URL: url, Err: err}
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &FetchError{
			Kind: KindBody,
			URL:  url,
			Err:  fmt.Errorf("response body exceeds %d bytes", f.maxBodySize),
		}
	}

	return body, nil
}

// classifyTransportError maps a transport failure to a FetchError kind.
func classifyTransportError(url string, err error) *FetchError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: KindTimeout, URL: url, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, URL: url, Err: err}
	}
	return &FetchError{Kind: KindConnection, URL: url, Err: err}
}
