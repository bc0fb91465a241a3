package registry

import (
	"context"
	"errors"
	"time"

	"github.com/cenk/backoff"
)

// retryPolicy centralizes retry behavior for every network call: a bounded
// attempt count, exponential backoff capped at a maximum delay, and a
// retryable-error predicate. Rate-limited attempts wait for the server's
// advertised duration instead of the backoff schedule.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

func newRetryPolicy(maxRetries int, base, cap time.Duration) retryPolicy {
	return retryPolicy{
		maxAttempts: maxRetries + 1,
		baseDelay:   base,
		maxDelay:    cap,
	}
}

func (p retryPolicy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.baseDelay
	b.MaxInterval = p.maxDelay
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// do runs fn until it succeeds, fails terminally, or attempts run out.
// A RateLimitError's RetryAfter overrides the backoff schedule for that
// wait; fn itself is responsible for arming the shared gate.
func (p retryPolicy) do(ctx context.Context, fn func() error) error {
	b := p.newBackOff()
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
		if attempt == p.maxAttempts {
			break
		}

		delay := b.NextBackOff()
		var rate *RateLimitError
		if errors.As(err, &rate) && rate.RetryAfter > 0 {
			delay = rate.RetryAfter
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return &ExhaustedRetriesError{Attempts: p.maxAttempts, Last: lastErr}
}
