package fetchclient

import (
	"errors"
	"fmt"
)

// ErrMissingIdentity is returned by NewClient when no contact identity is
// configured. This is a configuration error: it must abort startup and is
// never retryable.
var ErrMissingIdentity = errors.New("fetchclient: caller identity (contact string) is required")

// FatalHTTPError is a non-retryable HTTP status. The response body is kept
// for diagnostics since upstreams often explain the refusal in the body.
type FatalHTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *FatalHTTPError) Error() string {
	return fmt.Sprintf("fetch %s: non-retryable status %d: %s", e.URL, e.StatusCode, snippet(e.Body, 200))
}

// RetriesExhaustedError means every allowed attempt hit a transient failure.
// Unlike FatalHTTPError the same request may succeed on a later scheduled run.
type RetriesExhaustedError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastErr    error
}

func (e *RetriesExhaustedError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("fetch %s: gave up after %d attempts: %v", e.URL, e.Attempts, e.LastErr)
	}
	return fmt.Sprintf("fetch %s: gave up after %d attempts, last status %d", e.URL, e.Attempts, e.LastStatus)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.LastErr }

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
