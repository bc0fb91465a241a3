package analyze

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// Severity grades a missing-peer finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// MissingPeerRecord reports a peer that is absent or installed at a
// version outside the required range.
type MissingPeerRecord struct {
	Package       string
	RequiredBy    string
	RequiredRange string
	// Installed is set when the peer exists but fails the range; empty
	// means the peer is absent entirely.
	Installed string
	Severity  Severity
}

// PeerAnalyzer finds peers that are absent or whose installed version does
// not satisfy the required range.
type PeerAnalyzer struct{}

func (PeerAnalyzer) Name() string { return "missing-peers" }

func (PeerAnalyzer) Analyze(in *Input, rep *Report) {
	var records []MissingPeerRecord
	for _, req := range in.Requirements {
		if in.excluded(req.Target) || in.excluded(req.RequiredBy) {
			continue
		}

		if !in.Project.IsPresent(req.Target) {
			severity := SeverityError
			if req.Optional {
				severity = SeverityWarning
			}
			records = append(records, MissingPeerRecord{
				Package:       req.Target,
				RequiredBy:    req.RequiredBy,
				RequiredRange: req.Range,
				Severity:      severity,
			})
			continue
		}

		installed, ok := in.Project.InstalledVersion(req.Target)
		if !ok {
			// Declared but not yet installed: nothing to check the range
			// against, so treat as unknown rather than missing.
			continue
		}
		v, err := semver.NewVersion(installed)
		if err != nil {
			continue
		}
		c, err := semver.NewConstraint(req.Range)
		if err != nil {
			continue
		}
		if !c.Check(v) {
			records = append(records, MissingPeerRecord{
				Package:       req.Target,
				RequiredBy:    req.RequiredBy,
				RequiredRange: req.Range,
				Installed:     installed,
				Severity:      SeverityError,
			})
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Package != records[j].Package {
			return records[i].Package < records[j].Package
		}
		return records[i].RequiredBy < records[j].RequiredBy
	})
	rep.MissingPeers = append(rep.MissingPeers, records...)
}
