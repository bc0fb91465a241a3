// Package analyze turns fetched metadata and the project manifest into
// requirement edges and runs analyzers over them: missing peers, version
// conflicts, and deprecations. Everything here is a pure function over
// already-normalized data; no network or cache access.
package analyze

import (
	"sort"

	"github.com/apelleti/depadvisor/internal/manifest"
	"github.com/apelleti/depadvisor/internal/npm"
)

// Requirement is one "RequiredBy requires Target at Range" edge, derived
// from a package's peerDependencies. Rebuilt on every analysis run.
type Requirement struct {
	Target     string
	Range      string
	RequiredBy string
	Optional   bool
}

// ExtractRequirements emits one Requirement per peer dependency of every
// declared package whose installed version has an entry in its packument.
// Output order is deterministic: by requiring package, then by target.
func ExtractRequirements(project *manifest.Project, packages map[string]*npm.PackageMetadata, includeDev bool) []Requirement {
	var reqs []Requirement
	for _, name := range project.DeclaredNames(includeDev) {
		meta, ok := packages[name]
		if !ok {
			continue
		}
		installed, ok := project.InstalledVersion(name)
		if !ok {
			continue
		}
		vi, ok := meta.Version(installed)
		if !ok {
			continue
		}

		peers := make([]string, 0, len(vi.PeerDependencies))
		for peer := range vi.PeerDependencies {
			peers = append(peers, peer)
		}
		sort.Strings(peers)
		for _, peer := range peers {
			reqs = append(reqs, Requirement{
				Target:     peer,
				Range:      vi.PeerDependencies[peer],
				RequiredBy: name,
				Optional:   vi.IsOptionalPeer(peer),
			})
		}
	}
	return reqs
}
