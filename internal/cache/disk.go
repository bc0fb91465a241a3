package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SchemaVersion tags the on-disk snapshot format. A snapshot written by a
// different schema is rejected wholesale rather than half-interpreted.
const SchemaVersion = 1

type snapshot struct {
	Version     int               `json:"version"`
	LastUpdated time.Time         `json:"lastUpdated"`
	Entries     map[string]*Entry `json:"entries"`
}

// PersistTo writes the whole store to path as a versioned JSON snapshot.
// Disk I/O happens only here and in LoadFrom, never mid-analysis.
func (s *Store) PersistTo(path string) error {
	s.mu.RLock()
	snap := snapshot{
		Version:     SchemaVersion,
		LastUpdated: s.now(),
		Entries:     make(map[string]*Entry, len(s.entries)),
	}
	for name, e := range s.entries {
		snap.Entries[name] = e
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encoding snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cache: creating snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cache: writing snapshot: %w", err)
	}
	s.logger.Debug().Str("path", path).Int("entries", len(snap.Entries)).Msg("cache persisted")
	return nil
}

// LoadFrom reads a snapshot from path and admits entries into memory.
// Each entry passes through the same validity check as Get (registry match
// and TTL), so a stale or foreign-registry snapshot is filtered, not
// trusted. A missing file is not an error; an unknown schema version is.
func (s *Store) LoadFrom(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache: reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("cache: decoding snapshot: %w", err)
	}
	if snap.Version != SchemaVersion {
		return fmt.Errorf("cache: snapshot schema version %d, want %d", snap.Version, SchemaVersion)
	}

	admitted, skipped := 0, 0
	s.mu.Lock()
	for name, e := range snap.Entries {
		if e == nil || e.Metadata == nil || !s.valid(e) {
			skipped++
			continue
		}
		s.entries[name] = e
		admitted++
	}
	s.evictLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("path", path).Int("admitted", admitted).Int("skipped", skipped).Msg("cache loaded")
	return nil
}
