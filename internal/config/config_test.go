package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty registry", func(c *Config) { c.Registry = "" }},
		{"relative registry", func(c *Config) { c.Registry = "registry.npmjs.org" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero base delay", func(c *Config) { c.RetryBaseDelay = 0 }},
		{"cap below base", func(c *Config) { c.RetryMaxDelay = c.RetryBaseDelay / 2 }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrent = 0 }},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }},
		{"zero cache size", func(c *Config) { c.CacheMaxSize = 0 }},
		{"persist without path", func(c *Config) { c.CachePersist = true; c.CachePath = "" }},
		{"bad proxy", func(c *Config) { c.Proxy = "not a url" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depadvisor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
registry: https://mirror.example/npm
timeout: 10s
max_concurrent: 3
offline: true
exclude:
  - fsevents
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example/npm", cfg.Registry)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxConcurrent)
	assert.True(t, cfg.Offline)
	assert.Equal(t, []string{"fsevents"}, cfg.Exclude)

	// Unspecified keys keep their defaults.
	assert.Equal(t, Default().MaxRetries, cfg.MaxRetries)
	assert.Equal(t, Default().CacheTTL, cfg.CacheTTL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DEPADVISOR_MAX_RETRIES", "7")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxRetries)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depadvisor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: -3s\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestExcluded(t *testing.T) {
	cfg := Default()
	assert.Nil(t, cfg.Excluded())

	cfg.Exclude = []string{"a", "b"}
	set := cfg.Excluded()
	assert.Len(t, set, 2)
	_, ok := set["a"]
	assert.True(t, ok)
}
