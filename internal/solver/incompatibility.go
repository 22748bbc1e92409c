package solver

import (
	"github.com/polytool/polytool/pkg/resolver/version"
)

// causeKind mirrors resolver.CauseKind inside the engine.
type causeKind int

const (
	causeRoot causeKind = iota
	causeDependency
	causeNoVersions
	causeConflict
)

// incompatibility states that its terms cannot all hold in any valid
// assignment. Terms are keyed by package; a package appears at most once.
// Learned incompatibilities reference their two parents by store index, so
// the cause graph is an arena-backed DAG.
type incompatibility struct {
	terms []term

	kind causeKind
	// depender/dependerVersion identify the requiring version for
	// dependency causes, so explanations can cite the original fact.
	depender        pkgRef
	dependerVersion version.Version
	// left/right are parent store indexes for conflict causes.
	left, right int
}

// makeTerms merges raw terms by package, intersecting duplicates, preserving
// first-occurrence order.
func makeTerms(raw []term) []term {
	out := make([]term, 0, len(raw))
	for _, t := range raw {
		merged := false
		for i := range out {
			if out[i].pkg == t.pkg {
				out[i] = out[i].intersect(t)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, t)
		}
	}
	return out
}

// store is the append-only arena of incompatibilities, indexed by package.
// Nothing is ever deleted within one solve; insertion order is the tie-break
// for propagation scanning.
type store struct {
	items []incompatibility
	byPkg map[pkgRef][]int
}

func newStore() *store {
	return &store{byPkg: map[pkgRef][]int{}}
}

func (s *store) add(inc incompatibility) int {
	idx := len(s.items)
	s.items = append(s.items, inc)
	for _, t := range inc.terms {
		s.byPkg[t.pkg] = append(s.byPkg[t.pkg], idx)
	}
	return idx
}

func (s *store) get(idx int) *incompatibility {
	return &s.items[idx]
}

// forPackage returns the indexes of all incompatibilities mentioning p, in
// insertion order.
func (s *store) forPackage(p pkgRef) []int {
	return s.byPkg[p]
}
