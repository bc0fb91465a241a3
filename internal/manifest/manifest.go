// Package manifest holds the structured view of a project's dependencies
// that an external manifest loader supplies. This core neither parses
// manifest files nor writes to them.
package manifest

import "sort"

// Project is the advisor's input: declared ranges split into required and
// dev, plus the versions actually installed.
type Project struct {
	// Dependencies maps package name to its declared version range.
	Dependencies map[string]string
	// DevDependencies maps package name to its declared version range.
	DevDependencies map[string]string
	// Installed maps package name to the resolved installed version.
	Installed map[string]string
}

// DeclaredNames returns the declared package names, sorted, optionally
// including dev dependencies.
func (p *Project) DeclaredNames(includeDev bool) []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(p.Dependencies)+len(p.DevDependencies))
	for name := range p.Dependencies {
		seen[name] = struct{}{}
	}
	if includeDev {
		for name := range p.DevDependencies {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeclaredRange returns the declared range for name, checking required
// dependencies first, then dev.
func (p *Project) DeclaredRange(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	if r, ok := p.Dependencies[name]; ok {
		return r, true
	}
	r, ok := p.DevDependencies[name]
	return r, ok
}

// InstalledVersion returns the resolved installed version for name.
func (p *Project) InstalledVersion(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.Installed[name]
	return v, ok
}

// IsPresent reports whether name is installed or declared at all. Peer
// requirements are judged against this, not just the installed map, so a
// freshly declared but not yet installed package is not flagged missing.
func (p *Project) IsPresent(name string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.Installed[name]; ok {
		return true
	}
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	_, ok := p.DevDependencies[name]
	return ok
}

// IsDev reports whether name is declared only as a dev dependency.
func (p *Project) IsDev(name string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.Dependencies[name]; ok {
		return false
	}
	_, ok := p.DevDependencies[name]
	return ok
}
