package solver

import (
	"fmt"
	"strings"

	"github.com/polytool/polytool/pkg/resolver"
)

// humanTerm renders a term for explanations. The synthetic root package is
// never rendered; callers filter it out first.
func (s *solver) humanTerm(t term) string {
	name := s.name(t.pkg)
	if v, ok := t.rng.AsSingleton(); ok {
		return fmt.Sprintf("%s %s", name, v)
	}
	if t.rng.IsAny() {
		return name.String()
	}
	return fmt.Sprintf("%s %s", name, t.rng)
}

// describe renders an incompatibility as a human-readable fact. Provider and
// root causes state the original fact verbatim; learned causes are rendered
// from their terms, with statements about the synthetic root stripped.
func (s *solver) describe(inc *incompatibility) string {
	switch inc.kind {
	case causeRoot:
		return "the root requirements must be satisfied"
	case causeNoVersions:
		t := inc.terms[0]
		return fmt.Sprintf("no versions of %s satisfy %s", s.name(t.pkg), t.rng)
	case causeDependency:
		var dep *term
		for i := range inc.terms {
			if !inc.terms[i].positive {
				dep = &inc.terms[i]
			}
		}
		if dep == nil {
			// Self-dependency collapsed into a single positive term.
			return fmt.Sprintf("%s %s cannot be used", s.name(inc.depender), inc.dependerVersion)
		}
		if inc.depender == s.rootRef {
			return fmt.Sprintf("you require %s %s", s.name(dep.pkg), dep.rng)
		}
		return fmt.Sprintf("%s %s depends on %s %s",
			s.name(inc.depender), inc.dependerVersion, s.name(dep.pkg), dep.rng)
	}

	var positives, negatives []string
	for _, t := range inc.terms {
		if t.pkg == s.rootRef {
			continue
		}
		if t.positive {
			positives = append(positives, s.humanTerm(t))
		} else {
			negatives = append(negatives, s.humanTerm(t))
		}
	}
	switch {
	case len(positives) == 0 && len(negatives) == 0:
		return "version solving failed"
	case len(positives) == 0:
		if len(negatives) == 1 {
			return fmt.Sprintf("%s is required", negatives[0])
		}
		return fmt.Sprintf("one of %s is required", strings.Join(negatives, " or "))
	case len(negatives) == 0:
		if len(positives) == 1 {
			return fmt.Sprintf("%s is forbidden", positives[0])
		}
		return fmt.Sprintf("%s is incompatible with %s",
			positives[0], strings.Join(positives[1:], " and "))
	default:
		return fmt.Sprintf("%s requires %s",
			strings.Join(positives, " and "), strings.Join(negatives, " or "))
	}
}

// buildNotSatisfiable renders the causal chain of the terminal
// incompatibility as a numbered linear derivation and exports the reachable
// cause graph. Parents are always stated before the facts resolved from
// them; shared parents are stated once and referenced by number.
func (s *solver) buildNotSatisfiable(terminalIdx int) error {
	var lines []string
	lineOf := map[int]int{}
	var causes []resolver.Cause
	causeOf := map[int]int{}

	var walk func(idx int) int
	walk = func(idx int) int {
		if n, ok := lineOf[idx]; ok {
			return n
		}
		inc := s.store.get(idx)
		exported := resolver.Cause{Kind: s.exportKind(inc)}
		for _, t := range inc.terms {
			exported.Terms = append(exported.Terms, resolver.CauseTerm{
				Package:  s.name(t.pkg),
				Range:    t.rng,
				Positive: t.positive,
			})
		}

		var text string
		if inc.kind == causeConflict {
			left := walk(inc.left)
			right := walk(inc.right)
			exported.Parents = []int{causeOf[inc.left], causeOf[inc.right]}
			text = fmt.Sprintf("so %s (from %d and %d)", s.describe(inc), left, right)
		} else {
			text = s.describe(inc)
		}

		n := len(lines) + 1
		lines = append(lines, fmt.Sprintf("%d. %s", n, text))
		lineOf[idx] = n
		causes = append(causes, exported)
		causeOf[idx] = len(causes) - 1
		return n
	}
	walk(terminalIdx)

	return &resolver.NotSatisfiable{
		Explanation: strings.Join(lines, "\n"),
		Causes:      causes,
		Root:        causeOf[terminalIdx],
	}
}

func (s *solver) exportKind(inc *incompatibility) resolver.CauseKind {
	switch inc.kind {
	case causeNoVersions:
		return resolver.CauseNoVersions
	case causeConflict:
		return resolver.CauseConflict
	case causeDependency:
		if inc.depender == s.rootRef {
			return resolver.CauseRoot
		}
		return resolver.CauseDependency
	default:
		return resolver.CauseRoot
	}
}
