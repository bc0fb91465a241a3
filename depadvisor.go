// Package depadvisor advises on dependency health for an npm project: it
// fetches package metadata from a registry through a TTL-bounded cache and
// detects missing peers, version conflicts, and deprecations before a
// larger upgrade is attempted.
//
// Basic usage:
//
//	advisor, err := depadvisor.New(depadvisor.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	report, err := advisor.Analyze(ctx, &depadvisor.Project{
//		Dependencies: map[string]string{"react-dom": "^18.0.0"},
//		Installed:    map[string]string{"react-dom": "18.2.0"},
//	})
//
// Reporting, manifest parsing, and CLI concerns live in external
// collaborators; this module only produces structured records.
package depadvisor

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/apelleti/depadvisor/internal/analyze"
	"github.com/apelleti/depadvisor/internal/cache"
	"github.com/apelleti/depadvisor/internal/config"
	"github.com/apelleti/depadvisor/internal/manifest"
	"github.com/apelleti/depadvisor/internal/npm"
	"github.com/apelleti/depadvisor/internal/registry"
)

// Re-exported types from the internal packages.
type (
	// Config is the externally supplied configuration surface.
	Config = config.Config

	// Project is the manifest collaborator's view of the project.
	Project = manifest.Project

	// PackageMetadata is a parsed registry packument.
	PackageMetadata = npm.PackageMetadata

	// VersionInfo describes one published version.
	VersionInfo = npm.VersionInfo

	// Requirement is one peer-dependency requirement edge.
	Requirement = analyze.Requirement

	// MissingPeerRecord reports an absent or mismatched peer.
	MissingPeerRecord = analyze.MissingPeerRecord

	// ConflictRecord reports ranges on one package that may not be
	// simultaneously satisfiable.
	ConflictRecord = analyze.ConflictRecord

	// DeprecationRecord reports an installed version deprecated upstream.
	DeprecationRecord = analyze.DeprecationRecord

	// Severity grades a missing-peer finding.
	Severity = analyze.Severity

	// BulkResult is the per-package outcome of a bulk fetch.
	BulkResult = registry.BulkResult

	// ValidationError rejects malformed top-level input before any I/O.
	ValidationError = registry.ValidationError
)

const (
	SeverityError   = analyze.SeverityError
	SeverityWarning = analyze.SeverityWarning
)

// Re-exported errors.
var (
	ErrNotFound = registry.ErrNotFound
	ErrOffline  = registry.ErrOffline
)

// DefaultConfig returns the configuration used when nothing is supplied.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads configuration from an optional file plus DEPADVISOR_*
// environment variables.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// Report is the full outcome of one analysis run, handed to reporting
// collaborators as plain structured data.
type Report struct {
	MissingPeers []MissingPeerRecord
	Conflicts    []ConflictRecord
	Deprecations []DeprecationRecord

	// Packages holds the resolved metadata per package name.
	Packages map[string]*PackageMetadata
	// Stale lists packages served from an expired cache entry under
	// offline fallback, sorted.
	Stale []string
	// Errors holds per-package fetch failures; they never abort the run.
	Errors map[string]error
	// Incomplete is set when the run was cancelled before all fetches
	// finished. An incomplete report must not be treated as a clean bill.
	Incomplete bool
}

// Advisor owns the cache store and registry client and runs the analysis
// pipeline over a project.
type Advisor struct {
	cfg    Config
	store  *cache.Store
	client *registry.Client
	logger zerolog.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithLogger sets the logger used by the advisor and its components.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Advisor) { a.logger = l }
}

// New validates cfg and builds an Advisor with its owned cache store and
// registry client.
func New(cfg Config, opts ...Option) (*Advisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Advisor{cfg: cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	a.store = cache.New(cache.Options{
		TTL:      cfg.CacheTTL,
		MaxSize:  cfg.CacheMaxSize,
		Registry: cfg.Registry,
		Logger:   a.logger,
	})
	client, err := registry.New(cfg, a.store, a.logger)
	if err != nil {
		return nil, err
	}
	a.client = client
	return a, nil
}

// GetPackageInfo fetches one package's metadata through the cache.
func (a *Advisor) GetPackageInfo(ctx context.Context, name string) (*PackageMetadata, error) {
	return a.client.GetPackageInfo(ctx, name)
}

// GetBulkPackageInfo fetches metadata for several packages with bounded
// concurrency. Per-package failures are reported in the result.
func (a *Advisor) GetBulkPackageInfo(ctx context.Context, names []string) (*BulkResult, error) {
	return a.client.GetBulkPackageInfo(ctx, names)
}

// Analyze resolves metadata for the project's declared packages and their
// peers, then runs the analyzer pipeline. Failures for individual packages
// land in Report.Errors; only malformed top-level input fails fast.
func (a *Advisor) Analyze(ctx context.Context, project *Project) (*Report, error) {
	if project == nil {
		return nil, &ValidationError{Reason: "nil project"}
	}
	exclude := a.cfg.Excluded()

	var names []string
	for _, name := range project.DeclaredNames(a.cfg.IncludeDev) {
		if _, ok := exclude[name]; ok {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, &ValidationError{Reason: "project declares no analyzable dependencies"}
	}

	bulk, err := a.client.GetBulkPackageInfo(ctx, names)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Packages: bulk.Packages,
		Errors:   bulk.Errors,
	}
	stale := bulk.Stale
	incomplete := bulk.Incomplete

	reqs := analyze.ExtractRequirements(project, rep.Packages, a.cfg.IncludeDev)

	// The conflict resolver needs the target packument's version list to
	// propose a resolution; fetch the peers the first round did not cover.
	if extra := missingTargets(reqs, rep.Packages, exclude); len(extra) > 0 && ctx.Err() == nil {
		more, err := a.client.GetBulkPackageInfo(ctx, extra)
		if err == nil {
			for name, meta := range more.Packages {
				rep.Packages[name] = meta
			}
			for name, ferr := range more.Errors {
				rep.Errors[name] = ferr
			}
			for name := range more.Stale {
				stale[name] = true
			}
			incomplete = incomplete || more.Incomplete
		}
	}

	result := analyze.Run(&analyze.Input{
		Project:      project,
		Packages:     rep.Packages,
		Requirements: reqs,
		Exclude:      exclude,
		IncludeDev:   a.cfg.IncludeDev,
	}, analyze.DefaultAnalyzers()...)

	rep.MissingPeers = result.MissingPeers
	rep.Conflicts = result.Conflicts
	rep.Deprecations = result.Deprecations
	rep.Incomplete = incomplete || ctx.Err() != nil
	for name := range stale {
		rep.Stale = append(rep.Stale, name)
	}
	sort.Strings(rep.Stale)

	a.logger.Debug().
		Int("packages", len(rep.Packages)).
		Int("missingPeers", len(rep.MissingPeers)).
		Int("conflicts", len(rep.Conflicts)).
		Bool("incomplete", rep.Incomplete).
		Msg("analysis complete")
	return rep, nil
}

// missingTargets lists requirement targets with no fetched metadata yet.
func missingTargets(reqs []Requirement, packages map[string]*PackageMetadata, exclude map[string]struct{}) []string {
	var extra []string
	seen := make(map[string]struct{})
	for _, req := range reqs {
		if _, ok := packages[req.Target]; ok {
			continue
		}
		if _, ok := exclude[req.Target]; ok {
			continue
		}
		if _, ok := seen[req.Target]; ok {
			continue
		}
		seen[req.Target] = struct{}{}
		extra = append(extra, req.Target)
	}
	sort.Strings(extra)
	return extra
}

// LoadCache reads the persisted snapshot when persistence is enabled.
func (a *Advisor) LoadCache() error {
	if !a.cfg.CachePersist {
		return nil
	}
	return a.store.LoadFrom(a.cfg.CachePath)
}

// SaveCache writes the snapshot when persistence is enabled.
func (a *Advisor) SaveCache() error {
	if !a.cfg.CachePersist {
		return nil
	}
	return a.store.PersistTo(a.cfg.CachePath)
}

// ClearCache drops every cached entry.
func (a *Advisor) ClearCache() {
	a.store.Clear()
}
