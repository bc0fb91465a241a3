// Package cache provides the in-memory metadata store backing the registry
// client: TTL-bounded entries, capacity-bounded eviction, and an explicit
// on-disk snapshot format.
package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/apelleti/depadvisor/internal/npm"
)

// Entry wraps a packument with its fetch time and origin registry. An
// entry is only served while it is younger than the TTL and its registry
// matches the currently configured one.
type Entry struct {
	Metadata  *npm.PackageMetadata `json:"metadata"`
	FetchedAt time.Time            `json:"fetchedAt"`
	Registry  string               `json:"registry"`
}

// Options configures a Store.
type Options struct {
	TTL      time.Duration
	MaxSize  int
	Registry string
	Logger   zerolog.Logger

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// Store is a TTL- and capacity-bounded map of package metadata. It is safe
// for concurrent use; fetch completions write while cache checks read.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	opts    Options
	now     func() time.Time
	logger  zerolog.Logger
}

// New creates an empty Store.
func New(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		entries: make(map[string]*Entry),
		opts:    opts,
		now:     now,
		logger:  opts.Logger,
	}
}

// Get returns the metadata for name if a valid entry exists: younger than
// the TTL and fetched from the configured registry.
func (s *Store) Get(name string) (*npm.PackageMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok || !s.valid(e) {
		return nil, false
	}
	return e.Metadata, true
}

// GetStale returns the metadata for name ignoring the TTL. The registry
// origin check still applies; a foreign-registry entry is never served.
// Used only for explicit offline fallback.
func (s *Store) GetStale(name string) (*npm.PackageMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok || e.Registry != s.opts.Registry {
		return nil, false
	}
	return e.Metadata, true
}

// Set stores metadata for name, overwriting any previous entry and
// refreshing its timestamp. If the store then exceeds MaxSize, the entry
// with the oldest timestamp is evicted.
func (s *Store) Set(name string, meta *npm.PackageMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[name] = &Entry{
		Metadata:  meta,
		FetchedAt: s.now(),
		Registry:  s.opts.Registry,
	}
	s.evictLocked()
}

// evictLocked removes oldest-timestamp entries until the store fits
// MaxSize. Called with the write lock held.
func (s *Store) evictLocked() {
	if s.opts.MaxSize <= 0 {
		return
	}
	for len(s.entries) > s.opts.MaxSize {
		var oldest string
		var oldestAt time.Time
		for name, e := range s.entries {
			if oldest == "" || e.FetchedAt.Before(oldestAt) {
				oldest = name
				oldestAt = e.FetchedAt
			}
		}
		delete(s.entries, oldest)
		s.logger.Debug().Str("package", oldest).Msg("cache entry evicted")
	}
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
}

// Len returns the number of entries currently held, valid or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) valid(e *Entry) bool {
	if e.Registry != s.opts.Registry {
		return false
	}
	if s.opts.TTL <= 0 {
		return true
	}
	return s.now().Sub(e.FetchedAt) < s.opts.TTL
}
