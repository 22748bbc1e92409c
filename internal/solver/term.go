// Package solver implements conflict-driven version solving: unit propagation
// over incompatibilities, backjumping conflict resolution with clause
// learning, and a highest-version-first decision driver. One Solver performs
// one solve; concurrent solves must not share a Solver.
package solver

import (
	"fmt"

	"github.com/polytool/polytool/pkg/resolver/version"
)

// pkgRef is a package identifier interned to a small index for the duration
// of one solve. Human-readable names reappear only in explanations.
type pkgRef int

// term is a statement about the chosen version of one package. A positive
// term asserts the package is selected with a version in rng; a negative term
// asserts it is either not selected or its version lies outside rng.
type term struct {
	pkg      pkgRef
	rng      version.Range
	positive bool
}

func (t term) negate() term {
	return term{pkg: t.pkg, rng: t.rng, positive: !t.positive}
}

// intersect combines two terms about the same package into the weakest term
// implied by both.
func (t term) intersect(o term) term {
	switch {
	case t.positive && o.positive:
		return term{pkg: t.pkg, rng: t.rng.Intersect(o.rng), positive: true}
	case t.positive && !o.positive:
		return term{pkg: t.pkg, rng: t.rng.Intersect(o.rng.Complement()), positive: true}
	case !t.positive && o.positive:
		return term{pkg: t.pkg, rng: o.rng.Intersect(t.rng.Complement()), positive: true}
	default:
		return term{pkg: t.pkg, rng: t.rng.Union(o.rng), positive: false}
	}
}

// difference returns the part of t not covered by o, or false if there is
// none.
func (t term) difference(o term) (term, bool) {
	d := t.intersect(o.negate())
	if d.isImpossible() {
		return term{}, false
	}
	return d, true
}

// satisfies reports whether t being true forces o to be true, i.e. every
// selection state allowed by t is allowed by o.
func (t term) satisfies(o term) bool {
	if t.pkg != o.pkg {
		return false
	}
	switch {
	case t.positive && o.positive:
		return t.rng.SubsetOf(o.rng)
	case t.positive && !o.positive:
		return t.rng.Disjoint(o.rng)
	case !t.positive && o.positive:
		// "possibly absent" never forces a selection.
		return false
	default:
		return o.rng.SubsetOf(t.rng)
	}
}

// isImpossible reports whether no selection state satisfies t. Only a
// positive term over the empty range is impossible; a negative term is always
// satisfiable by leaving the package unselected.
func (t term) isImpossible() bool {
	return t.positive && t.rng.IsEmpty()
}

func (t term) String() string {
	if t.positive {
		return fmt.Sprintf("#%d %s", t.pkg, t.rng)
	}
	return fmt.Sprintf("not #%d %s", t.pkg, t.rng)
}

// termRelation classifies a term against accumulated knowledge.
type termRelation int

const (
	relationSatisfied termRelation = iota
	relationContradicted
	relationInconclusive
)
