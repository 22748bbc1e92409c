package input

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/polytool/polytool/pkg/resolver"
	"github.com/polytool/polytool/pkg/resolver/version"
)

// Deps maps dependency names to constraint strings, as declared by one
// version of a package.
type Deps map[string]string

// Static is a deterministic in-memory provider. It backs tests and registry
// snapshots: versions are listed highest first regardless of insertion order,
// and repeated calls always return the same answer.
type Static struct {
	mu       sync.RWMutex
	versions map[resolver.Identifier][]version.Version
	deps     map[resolver.Identifier]map[string]map[resolver.Identifier]version.Range
}

var _ resolver.Provider = &Static{}

func NewStatic() *Static {
	return &Static{
		versions: map[resolver.Identifier][]version.Version{},
		deps:     map[resolver.Identifier]map[string]map[resolver.Identifier]version.Range{},
	}
}

// Add registers one version of a package together with its dependency
// constraints.
func (s *Static) Add(pkg string, ver string, deps Deps) error {
	v, err := version.Parse(ver)
	if err != nil {
		return fmt.Errorf("package %s: %w", pkg, err)
	}
	parsed := map[resolver.Identifier]version.Range{}
	for dep, constraint := range deps {
		r, err := version.ParseRange(constraint)
		if err != nil {
			return fmt.Errorf("package %s@%s dependency %s: %w", pkg, ver, dep, err)
		}
		parsed[resolver.Identifier(dep)] = r
	}

	id := resolver.Identifier(pkg)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[id] = append(s.versions[id], v)
	sort.Slice(s.versions[id], func(i, j int) bool {
		return s.versions[id][i].Compare(s.versions[id][j]) > 0
	})
	if s.deps[id] == nil {
		s.deps[id] = map[string]map[resolver.Identifier]version.Range{}
	}
	s.deps[id][v.String()] = parsed
	return nil
}

// MustAdd is Add for static fixtures; it panics on malformed input.
func (s *Static) MustAdd(pkg string, ver string, deps Deps) *Static {
	if err := s.Add(pkg, ver, deps); err != nil {
		panic(err)
	}
	return s
}

func (s *Static) ListVersions(_ context.Context, pkg resolver.Identifier) ([]version.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs, ok := s.versions[pkg]
	if !ok {
		return nil, fmt.Errorf("%s: %w", pkg, resolver.ErrNotFound)
	}
	out := make([]version.Version, len(vs))
	copy(out, vs)
	return out, nil
}

func (s *Static) GetDependencies(_ context.Context, pkg resolver.Identifier, v version.Version) (map[resolver.Identifier]version.Range, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deps, ok := s.deps[pkg][v.String()]
	if !ok {
		return nil, fmt.Errorf("%s@%s: %w", pkg, v, resolver.ErrNoSuchVersion)
	}
	return deps, nil
}
