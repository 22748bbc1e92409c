package solve

import (
	"sort"

	"github.com/polytool/polytool/pkg/resolver"
	"github.com/polytool/polytool/pkg/resolver/version"
)

// Solution is a complete assignment of exact versions: every package
// transitively required by the root requirements is pinned, and every
// provider-declared dependency range of every pinned version is satisfied.
type Solution struct {
	versions     map[resolver.Identifier]version.Version
	dependencies map[resolver.Identifier]map[resolver.Identifier]version.Range
}

// Version returns the version selected for a package.
func (s *Solution) Version(pkg resolver.Identifier) (version.Version, bool) {
	v, ok := s.versions[pkg]
	return v, ok
}

// Len returns the number of resolved packages.
func (s *Solution) Len() int {
	return len(s.versions)
}

// Versions returns a copy of the full package-to-version mapping.
func (s *Solution) Versions() map[resolver.Identifier]version.Version {
	out := make(map[resolver.Identifier]version.Version, len(s.versions))
	for pkg, v := range s.versions {
		out[pkg] = v
	}
	return out
}

// All returns the resolved versions sorted by package name, for stable
// rendering and lockfile writers.
func (s *Solution) All() []resolver.ResolvedVersion {
	out := make([]resolver.ResolvedVersion, 0, len(s.versions))
	for pkg, v := range s.versions {
		out = append(out, resolver.ResolvedVersion{Package: pkg, Version: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out
}

// Dependencies returns the dependency ranges the provider reported for the
// selected version of pkg, as used during resolution. Lockfile writers can
// persist these edges alongside the pinned versions.
func (s *Solution) Dependencies(pkg resolver.Identifier) map[resolver.Identifier]version.Range {
	return s.dependencies[pkg]
}
