// Package config defines the externally supplied configuration surface of
// the advisor and a viper-backed loader for it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "DEPADVISOR"

// Config is the full configuration surface consumed by the engine. The
// core components take it as plain data; only Load touches viper.
type Config struct {
	// Registry is the base URL packuments are fetched from.
	Registry string `mapstructure:"registry"`

	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay  time.Duration `mapstructure:"retry_max_delay"`
	MaxConcurrent  int           `mapstructure:"max_concurrent"`

	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	CacheMaxSize int           `mapstructure:"cache_max_size"`
	CachePersist bool          `mapstructure:"cache_persist"`
	CachePath    string        `mapstructure:"cache_path"`

	// Proxy is an optional outbound proxy URL. Tunneling across protocols
	// is handled by the transport.
	Proxy string `mapstructure:"proxy"`

	Offline    bool     `mapstructure:"offline"`
	IncludeDev bool     `mapstructure:"include_dev"`
	Exclude    []string `mapstructure:"exclude"`
}

// Default returns the configuration used when nothing is supplied.
func Default() Config {
	return Config{
		Registry:       "https://registry.npmjs.org",
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 500 * time.Millisecond,
		RetryMaxDelay:  30 * time.Second,
		MaxConcurrent:  8,
		CacheTTL:       24 * time.Hour,
		CacheMaxSize:   500,
		CachePath:      ".depadvisor-cache.json",
	}
}

// Load reads configuration from an optional file plus DEPADVISOR_* env
// variables, seeds defaults, and validates the result. An empty path means
// env and defaults only.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("registry", def.Registry)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("max_retries", def.MaxRetries)
	v.SetDefault("retry_base_delay", def.RetryBaseDelay)
	v.SetDefault("retry_max_delay", def.RetryMaxDelay)
	v.SetDefault("max_concurrent", def.MaxConcurrent)
	v.SetDefault("cache_ttl", def.CacheTTL)
	v.SetDefault("cache_max_size", def.CacheMaxSize)
	v.SetDefault("cache_persist", def.CachePersist)
	v.SetDefault("cache_path", def.CachePath)
	v.SetDefault("include_dev", def.IncludeDev)
}

// Validate checks semantic constraints so a bad configuration fails before
// any component is built from it.
func (c Config) Validate() error {
	if c.Registry == "" {
		return errors.New("config: registry must not be empty")
	}
	u, err := url.Parse(c.Registry)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: registry %q is not an absolute URL", c.Registry)
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("config: max_retries must not be negative")
	}
	if c.RetryBaseDelay <= 0 {
		return errors.New("config: retry_base_delay must be positive")
	}
	if c.RetryMaxDelay < c.RetryBaseDelay {
		return errors.New("config: retry_max_delay must be >= retry_base_delay")
	}
	if c.MaxConcurrent <= 0 {
		return errors.New("config: max_concurrent must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.New("config: cache_ttl must be positive")
	}
	if c.CacheMaxSize <= 0 {
		return errors.New("config: cache_max_size must be positive")
	}
	if c.CachePersist && c.CachePath == "" {
		return errors.New("config: cache_path required when cache_persist is set")
	}
	if c.Proxy != "" {
		p, err := url.Parse(c.Proxy)
		if err != nil || p.Scheme == "" || p.Host == "" {
			return fmt.Errorf("config: proxy %q is not an absolute URL", c.Proxy)
		}
	}
	return nil
}

// Excluded returns the exclude list as a set.
func (c Config) Excluded() map[string]struct{} {
	if len(c.Exclude) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(c.Exclude))
	for _, name := range c.Exclude {
		set[name] = struct{}{}
	}
	return set
}
