package analyze

// DeprecationRecord reports an installed version whose packument carries a
// deprecation notice.
type DeprecationRecord struct {
	Package string
	Version string
	Notice  string
}

// DeprecationCheck flags declared packages whose installed version is
// deprecated upstream.
type DeprecationCheck struct{}

func (DeprecationCheck) Name() string { return "deprecations" }

func (DeprecationCheck) Analyze(in *Input, rep *Report) {
	for _, name := range in.Project.DeclaredNames(in.IncludeDev) {
		if in.skip(name) {
			continue
		}
		meta, ok := in.Packages[name]
		if !ok {
			continue
		}
		installed, ok := in.Project.InstalledVersion(name)
		if !ok {
			continue
		}
		vi, ok := meta.Version(installed)
		if !ok || vi.Deprecated == "" {
			continue
		}
		rep.Deprecations = append(rep.Deprecations, DeprecationRecord{
			Package: name,
			Version: installed,
			Notice:  vi.Deprecated,
		})
	}
}
