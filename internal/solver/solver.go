package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/polytool/polytool/pkg/resolver"
	"github.com/polytool/polytool/pkg/resolver/version"
)

// rootName is the reserved synthetic package carrying the caller's root
// requirements as its dependencies. It never appears in results or
// explanations.
const rootName = resolver.Identifier("$root")

var rootVersion = version.Version{Major: 1}

// Result is a complete assignment of exact versions, together with the
// dependency edges the provider reported for each selected version. It is
// all-or-nothing: every package transitively required by the root
// requirements is present.
type Result struct {
	Versions     map[resolver.Identifier]version.Version
	Dependencies map[resolver.Identifier]map[resolver.Identifier]version.Range
}

// solver holds the state of one solve: the interning table, the
// incompatibility arena, the partial solution and the changed-package
// worklist. It is single-use and not safe for concurrent use.
type solver struct {
	provider     resolver.Provider
	requirements map[resolver.Identifier]version.Range
	tracer       resolver.Tracer

	names   []resolver.Identifier
	refs    map[resolver.Identifier]pkgRef
	rootRef pkgRef

	store *store
	ps    *partialSolution

	queue   []pkgRef
	queued  map[pkgRef]bool
	vsMemo  map[pkgRef][]version.Version
	depMemo map[pkgRef]map[string]map[resolver.Identifier]version.Range
}

// Solve computes one consistent assignment of exact versions satisfying the
// root requirements and every provider-declared dependency, or proves that
// none exists. On failure the returned error is a *resolver.NotSatisfiable
// carrying the derivation, a *resolver.ProviderError if the provider broke,
// or the context error when cancelled between decision steps.
func Solve(ctx context.Context, provider resolver.Provider, requirements map[resolver.Identifier]version.Range, tracer resolver.Tracer) (*Result, error) {
	if tracer == nil {
		tracer = resolver.DefaultTracer{}
	}
	s := &solver{
		provider:     provider,
		requirements: requirements,
		tracer:       tracer,
		refs:         map[resolver.Identifier]pkgRef{},
		store:        newStore(),
		ps:           newPartialSolution(),
		queued:       map[pkgRef]bool{},
		vsMemo:       map[pkgRef][]version.Version{},
		depMemo:      map[pkgRef]map[string]map[resolver.Identifier]version.Range{},
	}
	s.rootRef = s.ref(rootName)
	return s.run(ctx)
}

func (s *solver) run(ctx context.Context) (*Result, error) {
	s.store.add(incompatibility{
		terms: []term{{pkg: s.rootRef, rng: version.Exactly(rootVersion), positive: false}},
		kind:  causeRoot,
	})
	s.markChanged(s.rootRef)

	for {
		// Cancellation is observed between decision-driver steps only;
		// propagation always runs to its fixed point.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("solve cancelled: %w", context.Cause(ctx))
		}
		if err := s.propagate(); err != nil {
			return nil, err
		}
		done, err := s.decide(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			return s.extract(), nil
		}
	}
}

func (s *solver) ref(id resolver.Identifier) pkgRef {
	if p, ok := s.refs[id]; ok {
		return p
	}
	p := pkgRef(len(s.names))
	s.names = append(s.names, id)
	s.refs[id] = p
	return p
}

func (s *solver) name(p pkgRef) resolver.Identifier {
	return s.names[p]
}

func (s *solver) markChanged(p pkgRef) {
	if !s.queued[p] {
		s.queued[p] = true
		s.queue = append(s.queue, p)
	}
}

func (s *solver) clearChanged() {
	s.queue = s.queue[:0]
	s.queued = map[pkgRef]bool{}
}

// incState is the effect of an incompatibility on the partial solution.
type incState int

const (
	// incNone: some term is contradicted or more than one is open.
	incNone incState = iota
	// incUnit: exactly one term open, the rest satisfied.
	incUnit
	// incConflict: every term satisfied, the incompatibility is violated.
	incConflict
)

func (s *solver) classify(inc *incompatibility) (incState, term) {
	var open *term
	for _, t := range inc.terms {
		switch s.ps.relation(t) {
		case relationContradicted:
			return incNone, term{}
		case relationInconclusive:
			if open != nil {
				return incNone, term{}
			}
			t := t
			open = &t
		}
	}
	if open == nil {
		return incConflict, term{}
	}
	return incUnit, *open
}

// propagate performs unit propagation to a fixed point. Whenever an
// incompatibility becomes fully satisfied, conflict resolution backjumps and
// propagation restarts from the derived assignment; a root-level conflict
// surfaces as *resolver.NotSatisfiable.
func (s *solver) propagate() error {
	for len(s.queue) > 0 {
		p := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.queued, p)

	scan:
		// forPackage may grow while scanning as conflicts are learned;
		// indexing by position keeps the walk in insertion order.
		for k := 0; k < len(s.store.forPackage(p)); k++ {
			incIdx := s.store.forPackage(p)[k]
			state, open := s.classify(s.store.get(incIdx))
			switch state {
			case incUnit:
				s.ps.derive(open.negate(), incIdx)
				s.markChanged(open.pkg)
			case incConflict:
				learnedIdx, err := s.resolveConflict(incIdx)
				if err != nil {
					return err
				}
				state, open := s.classify(s.store.get(learnedIdx))
				if state != incUnit {
					return fmt.Errorf("solver: learned incompatibility not unit after backjump")
				}
				s.ps.derive(open.negate(), learnedIdx)
				s.clearChanged()
				s.markChanged(open.pkg)
				break scan
			}
		}
	}
	return nil
}

// terminal reports whether the incompatibility proves the whole problem
// unsatisfiable: it has no terms, or its only term demands the root package.
func (s *solver) terminal(inc *incompatibility) bool {
	if len(inc.terms) == 0 {
		return true
	}
	return len(inc.terms) == 1 && inc.terms[0].positive && inc.terms[0].pkg == s.rootRef
}

// resolveConflict walks backward through the partial solution from a violated
// incompatibility, resolving against the causes of its satisfying
// assignments until the result allows a backjump, learning each resolvent
// along the way. It is an explicit loop: conflict chains must not grow the
// call stack.
func (s *solver) resolveConflict(incIdx int) (int, error) {
	s.traceConflict(incIdx)
	for {
		inc := s.store.get(incIdx)
		if s.terminal(inc) {
			return 0, s.buildNotSatisfiable(incIdx)
		}

		var mostRecentTerm term
		var mostRecentSatisfier assignment
		var difference *term
		haveSatisfier := false
		previousSatisfierLevel := 1

		for _, t := range inc.terms {
			sat := s.ps.satisfier(t)
			updated := false
			if !haveSatisfier || sat.index > mostRecentSatisfier.index {
				if haveSatisfier && mostRecentSatisfier.decisionLevel > previousSatisfierLevel {
					previousSatisfierLevel = mostRecentSatisfier.decisionLevel
				}
				mostRecentTerm = t
				mostRecentSatisfier = sat
				difference = nil
				haveSatisfier = true
				updated = true
			} else if sat.decisionLevel > previousSatisfierLevel {
				previousSatisfierLevel = sat.decisionLevel
			}
			if updated {
				// If the satisfier only partially covers the term,
				// the uncovered remainder was satisfied earlier and
				// its level counts toward the backjump target.
				if d, ok := mostRecentSatisfier.term.difference(mostRecentTerm); ok {
					d := d
					difference = &d
					if dl := s.ps.satisfier(d.negate()).decisionLevel; dl > previousSatisfierLevel {
						previousSatisfierLevel = dl
					}
				}
			}
		}

		if previousSatisfierLevel < mostRecentSatisfier.decisionLevel || mostRecentSatisfier.isDecision() {
			s.ps.backtrack(previousSatisfierLevel)
			return incIdx, nil
		}

		// Resolve: eliminate the satisfier's package between the violated
		// incompatibility and the cause of the satisfying assignment.
		cause := s.store.get(mostRecentSatisfier.cause)
		var raw []term
		for _, t := range inc.terms {
			if t.pkg != mostRecentTerm.pkg {
				raw = append(raw, t)
			}
		}
		for _, t := range cause.terms {
			if t.pkg != mostRecentSatisfier.term.pkg {
				raw = append(raw, t)
			}
		}
		if difference != nil {
			raw = append(raw, difference.negate())
		}
		incIdx = s.store.add(incompatibility{
			terms: makeTerms(raw),
			kind:  causeConflict,
			left:  incIdx,
			right: mostRecentSatisfier.cause,
		})
		s.traceConflict(incIdx)
	}
}

// decide picks the next undecided required package, preferring the one with
// the fewest candidate versions (lexicographic tie-break), and decides its
// highest version still in range. With no candidates left the solve is
// complete.
func (s *solver) decide(ctx context.Context) (bool, error) {
	candidates := s.ps.positiveUndecided()
	if len(candidates) == 0 {
		return true, nil
	}

	chosenPkg := pkgRef(-1)
	var chosenRange version.Range
	bestCount := -1
	for p, rng := range candidates {
		vs, err := s.versions(ctx, p)
		if err != nil {
			return false, err
		}
		count := 0
		for _, v := range vs {
			if rng.Contains(v) {
				count++
			}
		}
		if chosenPkg < 0 || count < bestCount ||
			(count == bestCount && s.name(p) < s.name(chosenPkg)) {
			chosenPkg = p
			chosenRange = rng
			bestCount = count
		}
	}

	vs, err := s.versions(ctx, chosenPkg)
	if err != nil {
		return false, err
	}
	var picked *version.Version
	for i := range vs {
		if chosenRange.Contains(vs[i]) {
			picked = &vs[i]
			break
		}
	}
	if picked == nil {
		s.store.add(incompatibility{
			terms: []term{{pkg: chosenPkg, rng: chosenRange, positive: true}},
			kind:  causeNoVersions,
		})
		s.markChanged(chosenPkg)
		return false, nil
	}

	deps, err := s.dependencies(ctx, chosenPkg, *picked)
	if err != nil {
		return false, err
	}
	depNames := make([]resolver.Identifier, 0, len(deps))
	for dep := range deps {
		depNames = append(depNames, dep)
	}
	sort.Slice(depNames, func(i, j int) bool { return depNames[i] < depNames[j] })

	conflict := false
	for _, dep := range depNames {
		depRef := s.ref(dep)
		// A version satisfying its own declared constraint adds no
		// information; only a self-pin excluding the version matters.
		if depRef == chosenPkg && deps[dep].Contains(*picked) {
			continue
		}
		idx := s.store.add(incompatibility{
			terms: makeTerms([]term{
				{pkg: chosenPkg, rng: version.Exactly(*picked), positive: true},
				{pkg: depRef, rng: deps[dep], positive: false},
			}),
			kind:            causeDependency,
			depender:        chosenPkg,
			dependerVersion: *picked,
		})
		// The decision is withheld when a dependency incompatibility
		// would be violated the moment it was made; propagation then
		// drives conflict resolution instead.
		violated := true
		for _, t := range s.store.get(idx).terms {
			if t.pkg != chosenPkg && !s.ps.satisfies(t) {
				violated = false
				break
			}
		}
		conflict = conflict || violated
	}

	if !conflict {
		s.ps.decide(chosenPkg, *picked)
		s.traceDecision()
	}
	s.markChanged(chosenPkg)
	return false, nil
}

// versions returns the provider's version list for p, most preferred first,
// memoized per solve. An unknown package resolves like one with no versions.
func (s *solver) versions(ctx context.Context, p pkgRef) ([]version.Version, error) {
	if p == s.rootRef {
		return []version.Version{rootVersion}, nil
	}
	if vs, ok := s.vsMemo[p]; ok {
		return vs, nil
	}
	vs, err := s.provider.ListVersions(ctx, s.name(p))
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			vs = nil
		} else {
			return nil, &resolver.ProviderError{Package: s.name(p), Err: err}
		}
	}
	s.vsMemo[p] = vs
	return vs, nil
}

func (s *solver) dependencies(ctx context.Context, p pkgRef, v version.Version) (map[resolver.Identifier]version.Range, error) {
	if p == s.rootRef {
		return s.requirements, nil
	}
	byVersion, ok := s.depMemo[p]
	if !ok {
		byVersion = map[string]map[resolver.Identifier]version.Range{}
		s.depMemo[p] = byVersion
	}
	if deps, ok := byVersion[v.String()]; ok {
		return deps, nil
	}
	deps, err := s.provider.GetDependencies(ctx, s.name(p), v)
	if err != nil {
		return nil, &resolver.ProviderError{Package: s.name(p), Err: err}
	}
	byVersion[v.String()] = deps
	return deps, nil
}

func (s *solver) extract() *Result {
	res := &Result{
		Versions:     map[resolver.Identifier]version.Version{},
		Dependencies: map[resolver.Identifier]map[resolver.Identifier]version.Range{},
	}
	for p, v := range s.ps.decisions {
		if p == s.rootRef {
			continue
		}
		name := s.name(p)
		res.Versions[name] = v
		if deps, ok := s.depMemo[p][v.String()]; ok {
			res.Dependencies[name] = deps
		}
	}
	return res
}

// searchPosition implements resolver.SearchPosition for tracing.
type searchPosition struct {
	decisions []resolver.ResolvedVersion
	conflicts []string
}

func (p searchPosition) Decisions() []resolver.ResolvedVersion { return p.decisions }
func (p searchPosition) Conflicts() []string                   { return p.conflicts }

func (s *solver) decisionList() []resolver.ResolvedVersion {
	var out []resolver.ResolvedVersion
	for _, a := range s.ps.assignments {
		if !a.isDecision() || a.term.pkg == s.rootRef {
			continue
		}
		if v, ok := a.term.rng.AsSingleton(); ok {
			out = append(out, resolver.ResolvedVersion{Package: s.name(a.term.pkg), Version: v})
		}
	}
	return out
}

func (s *solver) traceDecision() {
	s.tracer.Trace(searchPosition{decisions: s.decisionList()})
}

func (s *solver) traceConflict(incIdx int) {
	s.tracer.Trace(searchPosition{
		decisions: s.decisionList(),
		conflicts: []string{s.describe(s.store.get(incIdx))},
	})
}
