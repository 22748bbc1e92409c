package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polytool/polytool/pkg/resolver/version"
)

func TestEmptyAndFullAreDistinct(t *testing.T) {
	assert.True(t, version.None().IsEmpty())
	assert.False(t, version.None().AllowsAny())
	assert.True(t, version.Any().AllowsAny())
	assert.True(t, version.Any().IsAny())
	assert.False(t, version.Any().IsEmpty())
	assert.False(t, version.None().Equal(version.Any()))
}

func TestContains(t *testing.T) {
	r := version.MustParseRange(">=1.0.0 <2.0.0")
	assert.True(t, r.Contains(version.MustParse("1.0.0")))
	assert.True(t, r.Contains(version.MustParse("1.9.9")))
	assert.False(t, r.Contains(version.MustParse("2.0.0")))
	assert.False(t, r.Contains(version.MustParse("0.9.0")))

	open := version.MustParseRange(">1.0.0")
	assert.False(t, open.Contains(version.MustParse("1.0.0")))
	assert.True(t, open.Contains(version.MustParse("1.0.1")))
}

func TestIntersect(t *testing.T) {
	for _, tt := range []struct {
		a, b, want string
	}{
		{">=1.0.0", "<2.0.0", ">=1.0.0 <2.0.0"},
		{">=1.0.0 <2.0.0", ">=1.5.0", ">=1.5.0 <2.0.0"},
		{"<1.0.0", ">=2.0.0", "(no versions)"},
		{"*", ">=3.0.0", ">=3.0.0"},
		{">=1.0.0 <2.0.0 || >=3.0.0", ">=1.5.0 <3.5.0", ">=1.5.0 <2.0.0 || >=3.0.0 <3.5.0"},
		{"<=2.0.0", ">=2.0.0", "2.0.0"},
	} {
		a := version.MustParseRange(tt.a)
		b := version.MustParseRange(tt.b)
		assert.Equal(t, tt.want, a.Intersect(b).String(), "%s ∩ %s", tt.a, tt.b)
		assert.Equal(t, tt.want, b.Intersect(a).String(), "%s ∩ %s", tt.b, tt.a)
	}
}

func TestUnionMergesAdjacentIntervals(t *testing.T) {
	a := version.MustParseRange("<2.0.0")
	b := version.MustParseRange(">=2.0.0")
	assert.True(t, a.Union(b).IsAny())

	c := version.MustParseRange(">=1.0.0 <1.5.0")
	d := version.MustParseRange(">=1.5.0 <2.0.0")
	assert.Equal(t, ">=1.0.0 <2.0.0", c.Union(d).String())

	// Disjoint with a real gap stays two intervals.
	e := version.MustParseRange(">=1.0.0 <1.5.0")
	f := version.MustParseRange(">=1.6.0 <2.0.0")
	assert.Equal(t, ">=1.0.0 <1.5.0 || >=1.6.0 <2.0.0", e.Union(f).String())
}

func TestComplement(t *testing.T) {
	r := version.MustParseRange(">=1.0.0 <2.0.0")
	assert.Equal(t, "<1.0.0 || >=2.0.0", r.Complement().String())
	assert.True(t, r.Complement().Complement().Equal(r))

	assert.True(t, version.Any().Complement().IsEmpty())
	assert.True(t, version.None().Complement().IsAny())

	single := version.Exactly(version.MustParse("1.2.3"))
	comp := single.Complement()
	assert.False(t, comp.Contains(version.MustParse("1.2.3")))
	assert.True(t, comp.Contains(version.MustParse("1.2.4")))
	assert.True(t, comp.Contains(version.MustParse("1.2.2")))
}

func TestSubsetAndDisjoint(t *testing.T) {
	narrow := version.MustParseRange(">=1.2.0 <1.4.0")
	wide := version.MustParseRange(">=1.0.0 <2.0.0")
	assert.True(t, narrow.SubsetOf(wide))
	assert.False(t, wide.SubsetOf(narrow))
	assert.True(t, version.None().SubsetOf(narrow))
	assert.True(t, narrow.SubsetOf(version.Any()))

	other := version.MustParseRange(">=2.0.0")
	assert.True(t, wide.Disjoint(other))
	assert.False(t, wide.Disjoint(narrow))
}

func TestAsSingleton(t *testing.T) {
	v, ok := version.Exactly(version.MustParse("1.2.3")).AsSingleton()
	require.True(t, ok)
	assert.Equal(t, "1.2.3", v.String())

	_, ok = version.MustParseRange(">=1.2.3").AsSingleton()
	assert.False(t, ok)
	_, ok = version.None().AsSingleton()
	assert.False(t, ok)
}

func TestRangeString(t *testing.T) {
	assert.Equal(t, "*", version.Any().String())
	assert.Equal(t, "(no versions)", version.None().String())
	assert.Equal(t, "1.2.3", version.Exactly(version.MustParse("1.2.3")).String())
	assert.Equal(t, ">=1.0.0 <2.0.0", version.MustParseRange(">=1.0.0 <2.0.0").String())
}
