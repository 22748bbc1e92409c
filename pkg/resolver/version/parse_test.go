package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polytool/polytool/pkg/resolver/version"
)

func TestParseTolerant(t *testing.T) {
	for in, want := range map[string]string{
		"1":      "1.0.0",
		"1.2":    "1.2.0",
		"1.2.3":  "1.2.3",
		"v1.2.3": "1.2.3",
	} {
		v, err := version.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v.String())
	}

	_, err := version.Parse("not-a-version")
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	for _, tt := range []struct {
		in       string
		contains []string
		excludes []string
	}{
		{">=1.0", []string{"1.0.0", "2.5.0"}, []string{"0.9.0"}},
		{">1.0 <2.0", []string{"1.0.1", "1.9.9"}, []string{"1.0.0", "2.0.0"}},
		{">=1.0, <2.0", []string{"1.5.0"}, []string{"2.0.0"}},
		{"1.2.3", []string{"1.2.3"}, []string{"1.2.4"}},
		{"=1.2.3", []string{"1.2.3"}, []string{"1.2.2"}},
		{"!=1.2.3", []string{"1.2.2", "1.2.4"}, []string{"1.2.3"}},
		{"^1.2.3", []string{"1.2.3", "1.9.0"}, []string{"2.0.0", "1.2.2"}},
		{"^0.2.3", []string{"0.2.3", "0.2.9"}, []string{"0.3.0"}},
		{"~1.2.3", []string{"1.2.3", "1.2.9"}, []string{"1.3.0"}},
		{"<1.0 || >=2.0", []string{"0.5.0", "2.0.0"}, []string{"1.5.0"}},
		{"*", []string{"0.0.1", "99.0.0"}, nil},
		{"", []string{"1.0.0"}, nil},
		{"<=2.0", []string{"2.0.0", "1.0.0"}, []string{"2.0.1"}},
	} {
		r, err := version.ParseRange(tt.in)
		require.NoError(t, err, tt.in)
		for _, v := range tt.contains {
			assert.True(t, r.Contains(version.MustParse(v)), "%q should contain %s", tt.in, v)
		}
		for _, v := range tt.excludes {
			assert.False(t, r.Contains(version.MustParse(v)), "%q should not contain %s", tt.in, v)
		}
	}
}

func TestParseRangeRejectsBadInput(t *testing.T) {
	for _, in := range []string{">=", ">=abc", "1.junk", "?1.0.0"} {
		_, err := version.ParseRange(in)
		assert.Error(t, err, in)
	}
}

func TestParseRangeConjunctionIsIntersection(t *testing.T) {
	r := version.MustParseRange(">=1.0 <2.0")
	same := version.MustParseRange(">=1.0").Intersect(version.MustParseRange("<2.0"))
	assert.True(t, r.Equal(same))
}
