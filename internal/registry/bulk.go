package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/apelleti/depadvisor/internal/npm"
)

// maxBatchSize bounds a single bulk request; a batch beyond it is a
// malformed input, rejected before any network call.
const maxBatchSize = 1000

// BulkResult carries the per-package outcome of a bulk fetch. Failures for
// one package never abort the batch; they land in Errors instead.
type BulkResult struct {
	Packages map[string]*npm.PackageMetadata
	// Stale marks packages served from an expired cache entry under
	// offline fallback.
	Stale  map[string]bool
	Errors map[string]error
	// Incomplete is set when the run was cancelled; the partial result
	// must not be reported as a complete analysis.
	Incomplete bool
}

// GetBulkPackageInfo fans out GetPackageInfo over names through a bounded
// concurrency gate. Each name resolves independently to metadata or an
// explicit failure marker.
func (c *Client) GetBulkPackageInfo(ctx context.Context, names []string) (*BulkResult, error) {
	if len(names) == 0 {
		return nil, &ValidationError{Reason: "empty batch"}
	}
	if len(names) > maxBatchSize {
		return nil, &ValidationError{Reason: fmt.Sprintf("batch of %d exceeds %d", len(names), maxBatchSize)}
	}

	res := &BulkResult{
		Packages: make(map[string]*npm.PackageMetadata),
		Stale:    make(map[string]bool),
		Errors:   make(map[string]error),
	}

	sem := make(chan struct{}, c.cfg.MaxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, name := range dedupe(names) {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				res.Errors[name] = ctx.Err()
				mu.Unlock()
				return
			}

			meta, stale, err := c.getPackageInfo(ctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Errors[name] = err
				return
			}
			res.Packages[name] = meta
			if stale {
				res.Stale[name] = true
			}
		}(name)
	}
	wg.Wait()

	if ctx.Err() != nil {
		res.Incomplete = true
	}
	return res, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
