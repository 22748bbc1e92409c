package version

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// ParseRange parses a constraint string into a Range.
//
// Within one alternative, comparators are separated by spaces or commas and
// intersected: "=", "!=", ">", ">=", "<", "<=", caret ("^1.2" keeps the same
// major, or the same minor below 1.0.0), tilde ("~1.2.3" keeps the same
// minor), and a bare version meaning exact. "*" or the empty string allow any
// version. Alternatives joined by "||" are unioned.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return Any(), nil
	}
	result := None()
	for _, alt := range strings.Split(s, "||") {
		r, err := parseConjunction(alt)
		if err != nil {
			return Range{}, err
		}
		result = result.Union(r)
	}
	return result, nil
}

// MustParseRange is ParseRange for static inputs; it panics on bad syntax.
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(`version: MustParseRange(` + s + `): ` + err.Error())
	}
	return r
}

func parseConjunction(s string) (Range, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(fields) == 0 {
		return Any(), nil
	}
	result := Any()
	for _, tok := range fields {
		r, err := parseComparator(tok)
		if err != nil {
			return Range{}, err
		}
		result = result.Intersect(r)
	}
	return result, nil
}

func parseComparator(tok string) (Range, error) {
	if tok == "*" {
		return Any(), nil
	}
	op := ""
	rest := tok
	for _, candidate := range []string{">=", "<=", "!=", ">", "<", "=", "^", "~"} {
		if strings.HasPrefix(tok, candidate) {
			op = candidate
			rest = strings.TrimSpace(tok[len(candidate):])
			break
		}
	}
	v, err := Parse(rest)
	if err != nil {
		return Range{}, fmt.Errorf("invalid constraint %q: %w", tok, err)
	}
	switch op {
	case "", "=":
		return Exactly(v), nil
	case "!=":
		return Exactly(v).Complement(), nil
	case ">":
		return Range{intervals: []interval{{lo: &bound{v: v}}}}, nil
	case ">=":
		return Range{intervals: []interval{{lo: &bound{v: v, inclusive: true}}}}, nil
	case "<":
		return Range{intervals: []interval{{hi: &bound{v: v}}}}, nil
	case "<=":
		return Range{intervals: []interval{{hi: &bound{v: v, inclusive: true}}}}, nil
	case "^":
		return caretRange(v), nil
	case "~":
		return tildeRange(v), nil
	}
	return Range{}, fmt.Errorf("invalid constraint %q", tok)
}

// caretRange allows changes that do not touch the leftmost non-zero component.
func caretRange(v Version) Range {
	upper := semver.Version{Major: v.Major + 1}
	if v.Major == 0 {
		upper = semver.Version{Major: 0, Minor: v.Minor + 1}
	}
	return betweenInclusiveExclusive(v, upper)
}

// tildeRange allows patch-level changes.
func tildeRange(v Version) Range {
	upper := semver.Version{Major: v.Major, Minor: v.Minor + 1}
	return betweenInclusiveExclusive(v, upper)
}

func betweenInclusiveExclusive(lo, hi Version) Range {
	return Range{intervals: []interval{{
		lo: &bound{v: lo, inclusive: true},
		hi: &bound{v: hi},
	}}}
}
