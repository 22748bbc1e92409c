package version

import (
	"strings"
)

// bound is one endpoint of an interval. A nil *bound stands for the
// corresponding infinity.
type bound struct {
	v         Version
	inclusive bool
}

// interval is a contiguous span of versions. lo == nil means unbounded below,
// hi == nil unbounded above.
type interval struct {
	lo, hi *bound
}

// Range is a set of versions, kept in canonical form: intervals are sorted,
// pairwise disjoint and non-adjacent, only the first interval may be unbounded
// below and only the last unbounded above. The zero value is the empty range.
type Range struct {
	intervals []interval
}

// Any returns the range containing every version.
func Any() Range {
	return Range{intervals: []interval{{}}}
}

// None returns the empty range. Empty and Any are distinct: an unconstrained
// package is not a forbidden one.
func None() Range {
	return Range{}
}

// Exactly returns the range containing only v.
func Exactly(v Version) Range {
	b := bound{v: v, inclusive: true}
	return Range{intervals: []interval{{lo: &b, hi: &b}}}
}

// IsEmpty reports whether the range contains no versions.
func (r Range) IsEmpty() bool {
	return len(r.intervals) == 0
}

// AllowsAny reports whether the range contains at least one version.
func (r Range) AllowsAny() bool {
	return len(r.intervals) > 0
}

// IsAny reports whether the range contains every version.
func (r Range) IsAny() bool {
	return len(r.intervals) == 1 && r.intervals[0].lo == nil && r.intervals[0].hi == nil
}

// AsSingleton returns the single version in the range, if the range pins
// exactly one.
func (r Range) AsSingleton() (Version, bool) {
	if len(r.intervals) != 1 {
		return Version{}, false
	}
	iv := r.intervals[0]
	if iv.lo == nil || iv.hi == nil || !iv.lo.inclusive || !iv.hi.inclusive {
		return Version{}, false
	}
	if iv.lo.v.Compare(iv.hi.v) != 0 {
		return Version{}, false
	}
	return iv.lo.v, true
}

// Contains reports whether v is in the range.
func (r Range) Contains(v Version) bool {
	for _, iv := range r.intervals {
		if iv.lo != nil {
			c := v.Compare(iv.lo.v)
			if c < 0 || (c == 0 && !iv.lo.inclusive) {
				continue
			}
		}
		if iv.hi != nil {
			c := v.Compare(iv.hi.v)
			if c > 0 || (c == 0 && !iv.hi.inclusive) {
				continue
			}
		}
		return true
	}
	return false
}

// cmpLower orders lower bounds; nil sorts first (unbounded below). At equal
// versions an inclusive lower bound starts earlier than an exclusive one.
func cmpLower(a, b *bound) int {
	if a == nil || b == nil {
		if a == b {
			return 0
		}
		if a == nil {
			return -1
		}
		return 1
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return -1
	default:
		return 1
	}
}

// cmpUpper orders upper bounds; nil sorts last (unbounded above). At equal
// versions an inclusive upper bound extends further than an exclusive one.
func cmpUpper(a, b *bound) int {
	if a == nil || b == nil {
		if a == b {
			return 0
		}
		if a == nil {
			return 1
		}
		return -1
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return 1
	default:
		return -1
	}
}

// nonEmpty reports whether the interval (lo, hi) contains any version.
func nonEmpty(lo, hi *bound) bool {
	if lo == nil || hi == nil {
		return true
	}
	c := lo.v.Compare(hi.v)
	if c != 0 {
		return c < 0
	}
	return lo.inclusive && hi.inclusive
}

// adjacent reports whether two intervals in lo-order touch with no gap, so
// that they can be merged into one.
func adjacent(hi, lo *bound) bool {
	if hi == nil || lo == nil {
		return false
	}
	if hi.v.Compare(lo.v) != 0 {
		return false
	}
	return hi.inclusive || lo.inclusive
}

// canonical merges adjacent intervals in an already sorted, disjoint slice.
func canonical(ivs []interval) Range {
	if len(ivs) == 0 {
		return Range{}
	}
	out := make([]interval, 0, len(ivs))
	cur := ivs[0]
	for _, iv := range ivs[1:] {
		if adjacent(cur.hi, iv.lo) {
			cur.hi = iv.hi
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	out = append(out, cur)
	return Range{intervals: out}
}

// Intersect returns the versions contained in both ranges.
func (r Range) Intersect(o Range) Range {
	var out []interval
	i, j := 0, 0
	for i < len(r.intervals) && j < len(o.intervals) {
		a, b := r.intervals[i], o.intervals[j]
		lo := a.lo
		if cmpLower(b.lo, lo) > 0 {
			lo = b.lo
		}
		hi := a.hi
		if cmpUpper(b.hi, hi) < 0 {
			hi = b.hi
		}
		if nonEmpty(lo, hi) {
			out = append(out, interval{lo: lo, hi: hi})
		}
		switch c := cmpUpper(a.hi, b.hi); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			i++
			j++
		}
	}
	return canonical(out)
}

// Complement returns the versions not contained in the range.
func (r Range) Complement() Range {
	if r.IsEmpty() {
		return Any()
	}
	var out []interval
	first := r.intervals[0]
	if first.lo != nil {
		out = append(out, interval{hi: &bound{v: first.lo.v, inclusive: !first.lo.inclusive}})
	}
	for i := 0; i+1 < len(r.intervals); i++ {
		hi := r.intervals[i].hi
		lo := r.intervals[i+1].lo
		out = append(out, interval{
			lo: &bound{v: hi.v, inclusive: !hi.inclusive},
			hi: &bound{v: lo.v, inclusive: !lo.inclusive},
		})
	}
	last := r.intervals[len(r.intervals)-1]
	if last.hi != nil {
		out = append(out, interval{lo: &bound{v: last.hi.v, inclusive: !last.hi.inclusive}})
	}
	return Range{intervals: out}
}

// Union returns the versions contained in either range, via De Morgan so that
// the result reuses the canonicalizing intersection.
func (r Range) Union(o Range) Range {
	return r.Complement().Intersect(o.Complement()).Complement()
}

// SubsetOf reports whether every version in r is also in o.
func (r Range) SubsetOf(o Range) bool {
	return r.Intersect(o.Complement()).IsEmpty()
}

// Disjoint reports whether the two ranges share no version.
func (r Range) Disjoint(o Range) bool {
	return r.Intersect(o).IsEmpty()
}

// Equal reports whether the two ranges contain exactly the same versions.
func (r Range) Equal(o Range) bool {
	if len(r.intervals) != len(o.intervals) {
		return false
	}
	for i := range r.intervals {
		if cmpLower(r.intervals[i].lo, o.intervals[i].lo) != 0 {
			return false
		}
		if cmpUpper(r.intervals[i].hi, o.intervals[i].hi) != 0 {
			return false
		}
	}
	return true
}

// String renders the range in constraint syntax, e.g. ">=1.0.0 <2.0.0" or
// "1.2.3", with disjoint alternatives joined by "||".
func (r Range) String() string {
	if r.IsEmpty() {
		return "(no versions)"
	}
	if r.IsAny() {
		return "*"
	}
	parts := make([]string, 0, len(r.intervals))
	for _, iv := range r.intervals {
		parts = append(parts, iv.String())
	}
	return strings.Join(parts, " || ")
}

func (iv interval) String() string {
	if iv.lo != nil && iv.hi != nil && iv.lo.inclusive && iv.hi.inclusive && iv.lo.v.Compare(iv.hi.v) == 0 {
		return iv.lo.v.String()
	}
	var parts []string
	if iv.lo != nil {
		op := ">"
		if iv.lo.inclusive {
			op = ">="
		}
		parts = append(parts, op+iv.lo.v.String())
	}
	if iv.hi != nil {
		op := "<"
		if iv.hi.inclusive {
			op = "<="
		}
		parts = append(parts, op+iv.hi.v.String())
	}
	return strings.Join(parts, " ")
}
