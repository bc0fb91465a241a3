package analyze

import (
	"github.com/apelleti/depadvisor/internal/manifest"
	"github.com/apelleti/depadvisor/internal/npm"
)

// Input is the shared view every analyzer reads. Analyzers never mutate it.
type Input struct {
	Project      *manifest.Project
	Packages     map[string]*npm.PackageMetadata
	Requirements []Requirement
	// Exclude lists packages never evaluated by any analyzer.
	Exclude map[string]struct{}
	// IncludeDev controls whether dev-only packages are evaluated.
	IncludeDev bool
}

func (in *Input) excluded(name string) bool {
	if in.Exclude == nil {
		return false
	}
	_, ok := in.Exclude[name]
	return ok
}

// skip reports whether a package is out of analysis scope entirely.
func (in *Input) skip(name string) bool {
	if in.excluded(name) {
		return true
	}
	return !in.IncludeDev && in.Project.IsDev(name)
}

// Report aggregates analyzer output. Records are ordered deterministically
// so identical inputs yield identical reports.
type Report struct {
	MissingPeers []MissingPeerRecord
	Conflicts    []ConflictRecord
	Deprecations []DeprecationRecord
}

// Analyzer is the capability every check implements. Checks are
// independent and composed by Run; there is no shared base.
type Analyzer interface {
	Name() string
	Analyze(in *Input, rep *Report)
}

// Run executes the analyzers in order over one shared input.
func Run(in *Input, analyzers ...Analyzer) *Report {
	rep := &Report{}
	for _, a := range analyzers {
		a.Analyze(in, rep)
	}
	return rep
}

// DefaultAnalyzers returns the standard pipeline.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		PeerAnalyzer{},
		ConflictResolver{},
		DeprecationCheck{},
	}
}
