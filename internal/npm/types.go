// Package npm models npm registry packuments and package names.
package npm

// PackageMetadata is the parsed form of a registry packument. It is
// immutable once parsed; the cache store owns it for its lifetime.
type PackageMetadata struct {
	Name     string                 `json:"name"`
	Versions map[string]VersionInfo `json:"versions"`
	DistTags map[string]string      `json:"dist-tags"`
}

// VersionInfo describes a single published version of a package.
type VersionInfo struct {
	Version              string              `json:"version"`
	Dependencies         map[string]string   `json:"dependencies,omitempty"`
	DevDependencies      map[string]string   `json:"devDependencies,omitempty"`
	PeerDependencies     map[string]string   `json:"peerDependencies,omitempty"`
	PeerDependenciesMeta map[string]PeerMeta `json:"peerDependenciesMeta,omitempty"`
	Engines              map[string]string   `json:"engines,omitempty"`
	Deprecated           string              `json:"deprecated,omitempty"`
	Dist                 DistInfo            `json:"dist,omitempty"`
}

// PeerMeta carries per-peer flags from peerDependenciesMeta.
type PeerMeta struct {
	Optional bool `json:"optional"`
}

// DistInfo describes the distribution descriptor of a version.
type DistInfo struct {
	Tarball   string `json:"tarball,omitempty"`
	Integrity string `json:"integrity,omitempty"`
	Shasum    string `json:"shasum,omitempty"`
}

// Latest returns the version string behind the "latest" dist-tag,
// or "" when the packument carries no such tag.
func (m *PackageMetadata) Latest() string {
	if m == nil {
		return ""
	}
	return m.DistTags["latest"]
}

// Version returns the VersionInfo for an exact version string.
func (m *PackageMetadata) Version(v string) (VersionInfo, bool) {
	if m == nil {
		return VersionInfo{}, false
	}
	vi, ok := m.Versions[v]
	return vi, ok
}

// IsOptionalPeer reports whether peer is flagged optional in v's
// peerDependenciesMeta.
func (v VersionInfo) IsOptionalPeer(peer string) bool {
	return v.PeerDependenciesMeta[peer].Optional
}

// PURL returns the package-url identifier for a name and optional version,
// e.g. pkg:npm/%40scope/name@1.0.0 without the percent-encoding.
func PURL(name, version string) string {
	if version != "" {
		return "pkg:npm/" + name + "@" + version
	}
	return "pkg:npm/" + name
}
