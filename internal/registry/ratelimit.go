package registry

import (
	"context"
	"sync"
	"time"
)

// rateLimitGate is a process-wide gate armed whenever the registry answers
// 429. Every outbound request, not just the one that tripped it, waits for
// the advertised reset time before dialing again.
type rateLimitGate struct {
	mu    sync.Mutex
	until time.Time
	now   func() time.Time
}

func newRateLimitGate(now func() time.Time) *rateLimitGate {
	if now == nil {
		now = time.Now
	}
	return &rateLimitGate{now: now}
}

// arm blocks all requests for d from now. A later deadline never shrinks
// an earlier one.
func (g *rateLimitGate) arm(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	until := g.now().Add(d)
	if until.After(g.until) {
		g.until = until
	}
}

// wait blocks until the gate is clear or ctx is done.
func (g *rateLimitGate) wait(ctx context.Context) error {
	g.mu.Lock()
	remaining := g.until.Sub(g.now())
	g.mu.Unlock()

	if remaining <= 0 {
		return nil
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
