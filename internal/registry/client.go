// Package registry implements the npm registry client: cached packument
// fetches with bounded concurrency, centralized retries, a process-wide
// rate-limit gate, and per-host circuit breaking.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/apelleti/depadvisor/internal/cache"
	"github.com/apelleti/depadvisor/internal/config"
	"github.com/apelleti/depadvisor/internal/npm"
)

const (
	userAgent = "depadvisor/1.0"

	// defaultRetryAfter is used when a 429 carries no usable Retry-After.
	defaultRetryAfter = time.Second
)

// Client fetches package metadata from a single configured registry,
// using an owned cache store as a read/write side-cache.
type Client struct {
	cfg      config.Config
	cache    *cache.Store
	http     *http.Client
	gate     *rateLimitGate
	breakers *breakerSet
	retry    retryPolicy
	flight   singleflight.Group
	logger   zerolog.Logger
}

// New builds a Client from the supplied configuration and cache store.
// The store must be configured for the same registry.
func New(cfg config.Config, store *cache.Store, logger zerolog.Logger) (*Client, error) {
	httpClient, err := newHTTPClient(cfg.Timeout, cfg.Proxy)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:      cfg,
		cache:    store,
		http:     httpClient,
		gate:     newRateLimitGate(nil),
		breakers: newBreakerSet(),
		retry:    newRetryPolicy(cfg.MaxRetries, cfg.RetryBaseDelay, cfg.RetryMaxDelay),
		logger:   logger,
	}, nil
}

// GetPackageInfo returns the packument for name, from cache when valid,
// otherwise from the registry with write-through caching.
func (c *Client) GetPackageInfo(ctx context.Context, name string) (*npm.PackageMetadata, error) {
	meta, _, err := c.getPackageInfo(ctx, name)
	return meta, err
}

// getPackageInfo additionally reports whether the result came from a stale
// cache entry under offline fallback.
func (c *Client) getPackageInfo(ctx context.Context, name string) (*npm.PackageMetadata, bool, error) {
	if err := npm.ValidateName(name); err != nil {
		return nil, false, err
	}

	if meta, ok := c.cache.Get(name); ok {
		return meta, false, nil
	}

	if c.cfg.Offline {
		if meta, ok := c.cache.GetStale(name); ok {
			c.logger.Warn().Str("package", name).Msg("offline: serving stale cache entry")
			return meta, true, nil
		}
		return nil, false, fmt.Errorf("registry: %s: %w", name, ErrOffline)
	}

	// Concurrent requests for the same key share one fetch; both paths
	// then see the write-through result.
	v, err, _ := c.flight.Do(name, func() (interface{}, error) {
		meta, err := c.fetchPackument(ctx, name)
		if err != nil {
			return nil, err
		}
		c.cache.Set(name, meta)
		return meta, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*npm.PackageMetadata), false, nil
}

func (c *Client) fetchPackument(ctx context.Context, name string) (*npm.PackageMetadata, error) {
	reqURL := strings.TrimSuffix(c.cfg.Registry, "/") + "/" + npm.EscapeName(name)

	var meta *npm.PackageMetadata
	err := c.retry.do(ctx, func() error {
		if err := c.gate.wait(ctx); err != nil {
			return err
		}
		m, err := c.doFetch(ctx, name, reqURL)
		if err != nil {
			var rate *RateLimitError
			if errors.As(err, &rate) {
				c.gate.arm(rate.RetryAfter)
				c.logger.Warn().Str("package", name).Dur("retryAfter", rate.RetryAfter).
					Msg("rate limited; gating all requests")
			}
			return err
		}
		meta = m
		return nil
	})
	if err != nil {
		var exhausted *ExhaustedRetriesError
		if errors.As(err, &exhausted) {
			exhausted.Name = name
		}
		return nil, err
	}
	c.logger.Debug().Str("package", name).Int("versions", len(meta.Versions)).Msg("packument fetched")
	return meta, nil
}

// doFetch performs one HTTP attempt. Only transport failures and 5xx count
// as circuit-breaker failures; terminal and rate-limit outcomes are carried
// out-of-band so they never trip the circuit.
func (c *Client) doFetch(ctx context.Context, name, reqURL string) (*npm.PackageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: creating request for %s: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	var outMeta *npm.PackageMetadata
	var outErr error
	err = c.breakers.call(reqURL, func() error {
		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("registry: fetching %s: %w", name, err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			outErr = &NotFoundError{Name: name}

		case resp.StatusCode == http.StatusTooManyRequests:
			outErr = &RateLimitError{RetryAfter: retryAfter(resp)}

		case resp.StatusCode/100 == 2:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("registry: reading body for %s: %w", name, err)
			}
			m, err := npm.ParsePackument(name, body)
			if err != nil {
				outErr = err
				return nil
			}
			outMeta = m

		case resp.StatusCode >= 500:
			return &HTTPError{StatusCode: resp.StatusCode, URL: reqURL}

		default:
			outErr = &HTTPError{StatusCode: resp.StatusCode, URL: reqURL}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outErr != nil {
		return nil, outErr
	}
	return outMeta, nil
}

// retryAfter reads the Retry-After header in its integer-seconds form.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryAfter
}
