// Package resolver defines the core types shared between the version solver,
// its dependency providers and its callers: package identifiers, the provider
// capability interface, the error taxonomy and the solve tracer.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/polytool/polytool/pkg/resolver/version"
)

// Identifier values uniquely identify particular packages (tools, runtimes,
// plugins) within the input to a single call to Solve.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// IdentifierFromString returns an Identifier based on a provided string.
func IdentifierFromString(s string) Identifier {
	return Identifier(s)
}

// ErrNotFound is returned by ListVersions for a package the provider has
// never heard of. The solver treats it as "no versions" and folds it into the
// failure explanation rather than aborting.
var ErrNotFound = errors.New("package not found")

// ErrNoSuchVersion is returned by GetDependencies for a version the provider
// does not have.
var ErrNoSuchVersion = errors.New("no such version")

// Provider supplies available versions and per-version dependency ranges.
// Both calls must be idempotent and stable for the duration of one solve: the
// solver may issue the same call more than once and relies on getting the
// same answer.
type Provider interface {
	// ListVersions returns the available versions of a package, ordered
	// from most to least preferred. The solver picks the first version
	// that satisfies the accumulated constraints.
	ListVersions(ctx context.Context, pkg Identifier) ([]version.Version, error)

	// GetDependencies returns the dependency ranges declared by one exact
	// version of a package.
	GetDependencies(ctx context.Context, pkg Identifier, v version.Version) (map[Identifier]version.Range, error)
}

// ResolvedVersion is one package pinned to one exact version.
type ResolvedVersion struct {
	Package Identifier
	Version version.Version
}

func (rv ResolvedVersion) String() string {
	return fmt.Sprintf("%s %s", rv.Package, rv.Version)
}

// CauseKind classifies the origin of an incompatibility in the cause graph
// attached to a NotSatisfiable error.
type CauseKind int

const (
	// CauseRoot marks the requirements given by the caller.
	CauseRoot CauseKind = iota
	// CauseDependency marks a provider-reported dependency of one version.
	CauseDependency
	// CauseNoVersions marks a provider-reported absence of versions in a
	// required range.
	CauseNoVersions
	// CauseConflict marks an incompatibility learned by resolving two
	// parent incompatibilities during conflict resolution.
	CauseConflict
)

func (k CauseKind) String() string {
	switch k {
	case CauseRoot:
		return "root"
	case CauseDependency:
		return "dependency"
	case CauseNoVersions:
		return "no-versions"
	case CauseConflict:
		return "conflict"
	}
	return "unknown"
}

// CauseTerm is one term of an incompatibility: a statement about the chosen
// version of one package. A positive term asserts the version lies in Range,
// a negative one that it does not.
type CauseTerm struct {
	Package  Identifier
	Range    version.Range
	Positive bool
}

func (t CauseTerm) String() string {
	if t.Positive {
		return fmt.Sprintf("%s %s", t.Package, t.Range)
	}
	return fmt.Sprintf("not %s %s", t.Package, t.Range)
}

// Cause is one incompatibility in the cause graph: a set of terms that cannot
// all hold. Learned causes reference their two parents by index into the
// Causes slice of the enclosing NotSatisfiable.
type Cause struct {
	Kind    CauseKind
	Terms   []CauseTerm
	Parents []int
}

// NotSatisfiable is returned when the requirements are proven unsatisfiable.
// It carries a rendered derivation of the failure plus the raw cause graph
// for programmatic consumers. Causes form a DAG rooted at Causes[Root]; every
// leaf is a caller requirement or a provider-reported fact.
type NotSatisfiable struct {
	Explanation string
	Causes      []Cause
	Root        int
}

func (e *NotSatisfiable) Error() string {
	const msg = "constraints not satisfiable"
	if e.Explanation == "" {
		return msg
	}
	return fmt.Sprintf("%s:\n%s", msg, e.Explanation)
}

// ProviderError wraps a failure of the provider itself (lookup, transport).
// The solver aborts the solve and propagates it unchanged; retry policy
// belongs to the provider adapter.
type ProviderError struct {
	Package Identifier
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider failed for %s: %v", e.Package, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
