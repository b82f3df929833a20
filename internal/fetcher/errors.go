package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a fetch failure.
type ErrorKind string

const (
	// KindTimeout covers request deadline and context timeouts.
	KindTimeout ErrorKind = "timeout"
	// KindConnection covers dial and transport failures.
	KindConnection ErrorKind = "connection"
	// KindHTTPStatus covers non-2xx responses.
	KindHTTPStatus ErrorKind = "http_status"
	// KindBody covers failures reading or size-capping the response body.
	KindBody ErrorKind = "body"
)

// FetchError is a classified fetch failure. Transient kinds are retried
// by the fetcher up to its bound; permanent kinds surface immediately.
type FetchError struct {
	Kind   ErrorKind
	URL    string
	Status int
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: %s %d", e.URL, e.Kind, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the fetch may succeed.
// Timeouts, transport failures, 429 and 5xx are transient; any other
// non-2xx status is permanent.
func (e *FetchError) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindConnection:
		return true
	case KindHTTPStatus:
		return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// IsTransient reports whether err is a transient FetchError.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Transient()
	}
	return false
}
