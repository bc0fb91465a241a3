package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apelleti/depadvisor/internal/manifest"
)

func TestPeerAnalyzerMissingPeer(t *testing.T) {
	in := &Input{
		Project: &manifest.Project{
			Dependencies: map[string]string{"a": "^1.0.0"},
			Installed:    map[string]string{"a": "1.0.0"},
		},
		Requirements: []Requirement{
			{Target: "b", Range: "^2.0.0", RequiredBy: "a"},
		},
	}

	rep := Run(in, PeerAnalyzer{})
	require.Len(t, rep.MissingPeers, 1)
	assert.Equal(t, MissingPeerRecord{
		Package:       "b",
		RequiredBy:    "a",
		RequiredRange: "^2.0.0",
		Severity:      SeverityError,
	}, rep.MissingPeers[0])
}

func TestPeerAnalyzerOptionalPeerIsWarning(t *testing.T) {
	in := &Input{
		Project: &manifest.Project{
			Dependencies: map[string]string{"a": "^1.0.0"},
			Installed:    map[string]string{"a": "1.0.0"},
		},
		Requirements: []Requirement{
			{Target: "b", Range: "^2.0.0", RequiredBy: "a", Optional: true},
		},
	}

	rep := Run(in, PeerAnalyzer{})
	require.Len(t, rep.MissingPeers, 1)
	assert.Equal(t, SeverityWarning, rep.MissingPeers[0].Severity)
}

func TestPeerAnalyzerVersionMismatch(t *testing.T) {
	in := &Input{
		Project: &manifest.Project{
			Dependencies: map[string]string{"a": "^1.0.0", "b": "^1.0.0"},
			Installed:    map[string]string{"a": "1.0.0", "b": "1.4.0"},
		},
		Requirements: []Requirement{
			{Target: "b", Range: "^2.0.0", RequiredBy: "a"},
		},
	}

	rep := Run(in, PeerAnalyzer{})
	require.Len(t, rep.MissingPeers, 1)
	rec := rep.MissingPeers[0]
	assert.Equal(t, "1.4.0", rec.Installed, "mismatch must report the installed version, not an absence")
	assert.Equal(t, SeverityError, rec.Severity)
}

func TestPeerAnalyzerSatisfiedPeerIsSilent(t *testing.T) {
	in := &Input{
		Project: &manifest.Project{
			Dependencies: map[string]string{"a": "^1.0.0", "b": "^2.0.0"},
			Installed:    map[string]string{"a": "1.0.0", "b": "2.3.1"},
		},
		Requirements: []Requirement{
			{Target: "b", Range: "^2.0.0", RequiredBy: "a"},
		},
	}
	assert.Empty(t, Run(in, PeerAnalyzer{}).MissingPeers)
}

func TestPeerAnalyzerHonorsExcludes(t *testing.T) {
	in := &Input{
		Project: &manifest.Project{
			Dependencies: map[string]string{"a": "^1.0.0"},
			Installed:    map[string]string{"a": "1.0.0"},
		},
		Requirements: []Requirement{
			{Target: "b", Range: "^2.0.0", RequiredBy: "a"},
		},
		Exclude: map[string]struct{}{"b": {}},
	}
	assert.Empty(t, Run(in, PeerAnalyzer{}).MissingPeers)
}

func TestPeerAnalyzerUnparseableRangeIsUnknown(t *testing.T) {
	in := &Input{
		Project: &manifest.Project{
			Dependencies: map[string]string{"a": "^1.0.0", "b": "*"},
			Installed:    map[string]string{"a": "1.0.0", "b": "2.0.0"},
		},
		Requirements: []Requirement{
			{Target: "b", Range: "workspace:*", RequiredBy: "a"},
		},
	}
	assert.Empty(t, Run(in, PeerAnalyzer{}).MissingPeers,
		"a range outside semver grammar is unknown, not a failure")
}
