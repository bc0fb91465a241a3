package analyze

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// RangeBy pairs one required range with the packages that require it.
type RangeBy struct {
	Range      string
	RequiredBy []string
}

// ConflictRecord reports a package required at several ranges by several
// packages, with either a proposed version satisfying all of them or an
// explicit unresolvable marker retaining every constraint.
type ConflictRecord struct {
	Package      string
	Requirements []RangeBy
	// Resolution is the highest version satisfying every range, empty when
	// none exists or the target's metadata is unavailable.
	Resolution   string
	Unresolvable bool
}

// ConflictResolver groups requirement edges by target package and checks
// whether all ranges can be satisfied at once. Groups with a single
// requiring package are not conflicts and are dropped.
type ConflictResolver struct{}

func (ConflictResolver) Name() string { return "version-conflicts" }

func (ConflictResolver) Analyze(in *Input, rep *Report) {
	// target -> range -> requirer set
	groups := make(map[string]map[string]map[string]struct{})
	for _, req := range in.Requirements {
		if in.excluded(req.Target) || in.excluded(req.RequiredBy) {
			continue
		}
		byRange, ok := groups[req.Target]
		if !ok {
			byRange = make(map[string]map[string]struct{})
			groups[req.Target] = byRange
		}
		requirers, ok := byRange[req.Range]
		if !ok {
			requirers = make(map[string]struct{})
			byRange[req.Range] = requirers
		}
		requirers[req.RequiredBy] = struct{}{}
	}

	targets := make([]string, 0, len(groups))
	for target := range groups {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	var records []ConflictRecord
	for _, target := range targets {
		byRange := groups[target]

		distinct := make(map[string]struct{})
		for _, requirers := range byRange {
			for r := range requirers {
				distinct[r] = struct{}{}
			}
		}
		if len(distinct) < 2 {
			continue
		}

		record := ConflictRecord{Package: target}
		var constraints []*semver.Constraints
		for rng, requirers := range byRange {
			names := make([]string, 0, len(requirers))
			for r := range requirers {
				names = append(names, r)
			}
			sort.Strings(names)
			record.Requirements = append(record.Requirements, RangeBy{Range: rng, RequiredBy: names})

			// An unparseable range contributes no constraint; the check
			// stays best-effort instead of failing the run.
			if c, err := semver.NewConstraint(rng); err == nil {
				constraints = append(constraints, c)
			}
		}
		sort.Slice(record.Requirements, func(i, j int) bool {
			return record.Requirements[i].Range < record.Requirements[j].Range
		})

		// Without the target's packument there is no version list to pick
		// from; report the constraint set and leave the resolution open.
		if meta, ok := in.Packages[target]; ok && meta != nil {
			if v, ok := meta.HighestSatisfying(constraints); ok {
				record.Resolution = v.Original()
			} else {
				record.Unresolvable = true
			}
		}
		records = append(records, record)
	}
	rep.Conflicts = append(rep.Conflicts, records...)
}
