// Package version models tool versions and version ranges. Versions follow
// semver ordering; ranges are canonical unions of disjoint intervals and are
// closed under intersection, union and complement.
package version

import (
	"github.com/blang/semver/v4"
)

// Version is a single tool version. Ordering and rendering come from semver;
// partial versions such as "1.2" are accepted and zero-filled on parse.
type Version = semver.Version

// Parse parses a version string, tolerating partial versions ("1", "1.2")
// and a leading "v".
func Parse(s string) (Version, error) {
	return semver.ParseTolerant(s)
}

// MustParse is Parse for static inputs; it panics on malformed versions.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(`version: MustParse(` + s + `): ` + err.Error())
	}
	return v
}
