package solver

import (
	"github.com/polytool/polytool/pkg/resolver/version"
)

// partialSolution owns the ordered sequence of assignments made so far, plus
// per-package snapshots derived from it: the accumulated term (intersection
// of everything asserted about the package) and the decided version, if any.
// It is created empty at solve start, grows through decide/derive, is
// truncated on backjump and discarded at solve end.
type partialSolution struct {
	assignments []assignment

	// accumulated holds, per package, the intersection of all assignment
	// terms about it. Absence means nothing is known yet.
	accumulated map[pkgRef]term
	decisions   map[pkgRef]version.Version

	decisionLevel int
}

func newPartialSolution() *partialSolution {
	return &partialSolution{
		accumulated: map[pkgRef]term{},
		decisions:   map[pkgRef]version.Version{},
	}
}

// decide opens a new decision level and pins p to exactly v.
func (ps *partialSolution) decide(p pkgRef, v version.Version) {
	ps.decisionLevel++
	ps.append(assignment{
		term:          term{pkg: p, rng: version.Exactly(v), positive: true},
		decisionLevel: ps.decisionLevel,
		cause:         -1,
	})
	ps.decisions[p] = v
}

// derive records a term forced by the incompatibility at store index cause,
// at the current decision level.
func (ps *partialSolution) derive(t term, cause int) {
	ps.append(assignment{
		term:          t,
		decisionLevel: ps.decisionLevel,
		cause:         cause,
	})
}

func (ps *partialSolution) append(a assignment) {
	a.index = len(ps.assignments)
	ps.assignments = append(ps.assignments, a)
	if acc, ok := ps.accumulated[a.term.pkg]; ok {
		ps.accumulated[a.term.pkg] = acc.intersect(a.term)
	} else {
		ps.accumulated[a.term.pkg] = a.term
	}
}

// relation classifies t against the accumulated assignments.
func (ps *partialSolution) relation(t term) termRelation {
	acc, ok := ps.accumulated[t.pkg]
	if !ok {
		return relationInconclusive
	}
	if acc.satisfies(t) {
		return relationSatisfied
	}
	if acc.intersect(t).isImpossible() {
		return relationContradicted
	}
	return relationInconclusive
}

func (ps *partialSolution) satisfies(t term) bool {
	return ps.relation(t) == relationSatisfied
}

// satisfier returns the earliest assignment such that the assignments up to
// and including it collectively satisfy t. It must only be called for terms
// the partial solution satisfies.
func (ps *partialSolution) satisfier(t term) assignment {
	var acc term
	seen := false
	for _, a := range ps.assignments {
		if a.term.pkg != t.pkg {
			continue
		}
		if !seen {
			acc = a.term
			seen = true
		} else {
			acc = acc.intersect(a.term)
		}
		if acc.satisfies(t) {
			return a
		}
	}
	panic("solver: satisfier called for unsatisfied term")
}

// positiveUndecided returns the packages that have an accumulated positive
// term (are required) but no decision yet, along with their allowed ranges.
func (ps *partialSolution) positiveUndecided() map[pkgRef]version.Range {
	out := map[pkgRef]version.Range{}
	for p, acc := range ps.accumulated {
		if !acc.positive {
			continue
		}
		if _, decided := ps.decisions[p]; decided {
			continue
		}
		out[p] = acc.rng
	}
	return out
}

// backtrack truncates the log to the given decision level, undoing every
// assignment made after it, and rebuilds the per-package snapshots by
// replaying the surviving prefix.
func (ps *partialSolution) backtrack(level int) {
	kept := ps.assignments
	for len(kept) > 0 && kept[len(kept)-1].decisionLevel > level {
		kept = kept[:len(kept)-1]
	}
	ps.assignments = ps.assignments[:len(kept)]
	ps.accumulated = map[pkgRef]term{}
	ps.decisions = map[pkgRef]version.Version{}
	ps.decisionLevel = level
	for _, a := range ps.assignments {
		if acc, ok := ps.accumulated[a.term.pkg]; ok {
			ps.accumulated[a.term.pkg] = acc.intersect(a.term)
		} else {
			ps.accumulated[a.term.pkg] = a.term
		}
		if a.isDecision() {
			if v, ok := a.term.rng.AsSingleton(); ok {
				ps.decisions[a.term.pkg] = v
			}
		}
	}
}
