package registry

import (
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// breakerSet holds one circuit breaker per registry host. A breaker trips
// after consecutive transient failures and reopens on an exponential
// schedule, so a dead registry is not hammered by every package in a batch.
type breakerSet struct {
	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

func newBreakerSet() *breakerSet {
	return &breakerSet{breakers: make(map[string]*circuit.Breaker)}
}

// forURL returns or creates the breaker for the host of rawURL.
func (s *breakerSet) forURL(rawURL string) *circuit.Breaker {
	host := hostOf(rawURL)

	s.mu.RLock()
	b, ok := s.breakers[host]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.breakers[host]; ok {
		return b
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	b = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	s.breakers[host] = b
	return b
}

// call runs fn through the breaker for rawURL. Only errors fn reports are
// counted as failures; terminal outcomes like 404 must be carried
// out-of-band by the caller so they never trip the circuit.
func (s *breakerSet) call(rawURL string, fn func() error) error {
	b := s.forURL(rawURL)
	if !b.Ready() {
		return ErrCircuitOpen
	}
	return b.Call(fn, 0)
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
