package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/apelleti/depadvisor/internal/npm"
)

var (
	// ErrNotFound is returned when the registry has no such package.
	// Terminal; never retried.
	ErrNotFound = errors.New("package not found")

	// ErrOffline is returned in offline mode when no cached entry, stale
	// or otherwise, can serve the request.
	ErrOffline = errors.New("offline and not cached")

	// ErrCircuitOpen is returned while the registry's circuit breaker is
	// open. Treated as transient.
	ErrCircuitOpen = errors.New("registry circuit open")
)

// NotFoundError wraps ErrNotFound with the package name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("registry: package %s not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// HTTPError represents an unexpected HTTP response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// RateLimitError is returned when the registry answered 429.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// ExhaustedRetriesError is returned when every retry attempt failed.
// The batch continues for other packages.
type ExhaustedRetriesError struct {
	Name     string
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("registry: %s: %d attempts exhausted: %v", e.Name, e.Attempts, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Last }

// ValidationError rejects a malformed input batch before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("registry: invalid input: %s", e.Reason)
}

// retryable reports whether an error should be retried with backoff.
// Not-found, parse, and validation failures are terminal.
func retryable(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return false
	}
	var parseErr *npm.ParseError
	if errors.As(err, &parseErr) {
		return false
	}
	var nameErr *npm.ValidationError
	if errors.As(err, &nameErr) {
		return false
	}
	var inputErr *ValidationError
	if errors.As(err, &inputErr) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	// Rate limits, open circuits, and anything else from the transport
	// (timeout, reset, DNS) are transient.
	return true
}
