package analyze

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apelleti/depadvisor/internal/manifest"
	"github.com/apelleti/depadvisor/internal/npm"
)

func sharedPackument(versions ...string) *npm.PackageMetadata {
	vs := map[string]npm.VersionInfo{}
	for _, v := range versions {
		vs[v] = npm.VersionInfo{Version: v}
	}
	return &npm.PackageMetadata{Name: "shared", Versions: vs}
}

func conflictInput(meta *npm.PackageMetadata, reqs ...Requirement) *Input {
	packages := map[string]*npm.PackageMetadata{}
	if meta != nil {
		packages[meta.Name] = meta
	}
	return &Input{
		Project:      &manifest.Project{},
		Packages:     packages,
		Requirements: reqs,
	}
}

func TestConflictResolverProposesHighestOverlap(t *testing.T) {
	in := conflictInput(sharedPackument("1.2.0", "1.2.5", "1.9.3", "2.0.0"),
		Requirement{Target: "shared", Range: "^1.2.0", RequiredBy: "a"},
		Requirement{Target: "shared", Range: ">=1.2.5 <2.0.0", RequiredBy: "c"},
	)

	rep := Run(in, ConflictResolver{})
	require.Len(t, rep.Conflicts, 1)
	rec := rep.Conflicts[0]
	assert.Equal(t, "shared", rec.Package)
	assert.False(t, rec.Unresolvable)
	assert.Equal(t, "1.9.3", rec.Resolution)
}

func TestConflictResolverUnresolvable(t *testing.T) {
	in := conflictInput(sharedPackument("1.0.0", "1.5.0", "2.0.0", "2.4.0"),
		Requirement{Target: "shared", Range: "^1.0.0", RequiredBy: "a"},
		Requirement{Target: "shared", Range: "^2.0.0", RequiredBy: "c"},
	)

	rep := Run(in, ConflictResolver{})
	require.Len(t, rep.Conflicts, 1)
	rec := rep.Conflicts[0]
	assert.True(t, rec.Unresolvable)
	assert.Empty(t, rec.Resolution)
	// Every (range, requirers) pair is retained for the caller.
	require.Len(t, rec.Requirements, 2)
	assert.Equal(t, RangeBy{Range: "^1.0.0", RequiredBy: []string{"a"}}, rec.Requirements[0])
	assert.Equal(t, RangeBy{Range: "^2.0.0", RequiredBy: []string{"c"}}, rec.Requirements[1])
}

func TestConflictResolverSingleRequirerIsNotAConflict(t *testing.T) {
	in := conflictInput(sharedPackument("1.0.0"),
		Requirement{Target: "shared", Range: "^1.0.0", RequiredBy: "a"},
		Requirement{Target: "shared", Range: ">=1.0.0", RequiredBy: "a"},
	)
	assert.Empty(t, Run(in, ConflictResolver{}).Conflicts)
}

func TestConflictResolverPrefersStableOverPrerelease(t *testing.T) {
	in := conflictInput(sharedPackument("1.4.0", "1.5.0", "1.6.0-rc.1"),
		Requirement{Target: "shared", Range: "^1.0.0", RequiredBy: "a"},
		Requirement{Target: "shared", Range: ">=1.2.0", RequiredBy: "c"},
	)

	rep := Run(in, ConflictResolver{})
	require.Len(t, rep.Conflicts, 1)
	assert.Equal(t, "1.5.0", rep.Conflicts[0].Resolution)
}

func TestConflictResolverMissingMetadataIsBestEffort(t *testing.T) {
	in := conflictInput(nil,
		Requirement{Target: "shared", Range: "^1.0.0", RequiredBy: "a"},
		Requirement{Target: "shared", Range: "^2.0.0", RequiredBy: "c"},
	)

	rep := Run(in, ConflictResolver{})
	require.Len(t, rep.Conflicts, 1)
	rec := rep.Conflicts[0]
	assert.Empty(t, rec.Resolution)
	assert.False(t, rec.Unresolvable, "without a version list the group stays open, not unresolvable")
	assert.Len(t, rec.Requirements, 2)
}

func TestConflictResolverOrderIndependent(t *testing.T) {
	reqs := []Requirement{
		{Target: "shared", Range: "^1.2.0", RequiredBy: "a"},
		{Target: "shared", Range: ">=1.2.5 <2.0.0", RequiredBy: "c"},
		{Target: "shared", Range: "^1.2.0", RequiredBy: "e"},
		{Target: "other", Range: "^3.0.0", RequiredBy: "a"},
		{Target: "other", Range: "^3.1.0", RequiredBy: "b"},
	}
	meta := map[string]*npm.PackageMetadata{
		"shared": sharedPackument("1.2.0", "1.5.0", "2.0.0"),
		"other": {Name: "other", Versions: map[string]npm.VersionInfo{
			"3.0.0": {Version: "3.0.0"}, "3.2.0": {Version: "3.2.0"},
		}},
	}

	baseline := Run(&Input{Project: &manifest.Project{}, Packages: meta, Requirements: reqs}, ConflictResolver{})

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]Requirement, len(reqs))
		copy(shuffled, reqs)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		rep := Run(&Input{Project: &manifest.Project{}, Packages: meta, Requirements: shuffled}, ConflictResolver{})
		assert.Equal(t, baseline, rep, "conflict records must not depend on input ordering")
	}
}

func TestPipelineIdempotent(t *testing.T) {
	project := &manifest.Project{
		Dependencies: map[string]string{"a": "^1.0.0", "c": "^1.0.0"},
		Installed:    map[string]string{"a": "1.0.0", "c": "1.0.0"},
	}
	packages := map[string]*npm.PackageMetadata{
		"shared": sharedPackument("1.0.0", "2.0.0"),
	}
	reqs := []Requirement{
		{Target: "shared", Range: "^1.0.0", RequiredBy: "a"},
		{Target: "shared", Range: "^2.0.0", RequiredBy: "c"},
		{Target: "ghost", Range: "^1.0.0", RequiredBy: "a"},
	}

	in := &Input{Project: project, Packages: packages, Requirements: reqs}
	first := Run(in, DefaultAnalyzers()...)
	second := Run(in, DefaultAnalyzers()...)
	assert.Equal(t, first, second, "re-running analysis on identical inputs must be byte-identical")
}
