package npm

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// SortedVersions returns the packument's version numbers in ascending
// semver order. Versions that do not parse as semver are dropped; npm
// refuses to publish them, so in practice this only filters corrupt data.
func (m *PackageMetadata) SortedVersions() []*semver.Version {
	if m == nil {
		return nil
	}
	versions := make([]*semver.Version, 0, len(m.Versions))
	for num := range m.Versions {
		if v, err := semver.NewVersion(num); err == nil {
			versions = append(versions, v)
		}
	}
	sort.Sort(semver.Collection(versions))
	return versions
}

// HighestSatisfying returns the highest version in the packument that
// satisfies every constraint, preferring stable releases: a pre-release is
// proposed only when no stable version satisfies all constraints. The
// second return is false when no version qualifies.
func (m *PackageMetadata) HighestSatisfying(constraints []*semver.Constraints) (*semver.Version, bool) {
	versions := m.SortedVersions()

	var best, bestPre *semver.Version
	for _, v := range versions {
		ok := true
		for _, c := range constraints {
			if !c.Check(v) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if v.Prerelease() == "" {
			best = v
		} else {
			bestPre = v
		}
	}
	if best != nil {
		return best, true
	}
	if bestPre != nil {
		return bestPre, true
	}
	return nil, false
}
