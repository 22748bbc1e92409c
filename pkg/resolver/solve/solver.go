// Package solve exposes the version solver to CLI and orchestrator callers.
package solve

import (
	"context"

	"github.com/polytool/polytool/internal/solver"
	"github.com/polytool/polytool/pkg/resolver"
	"github.com/polytool/polytool/pkg/resolver/version"
)

// Solver resolves root requirements against a dependency provider. A Solver
// is safe to reuse for independent solves; each Solve call owns its own
// internal state, so concurrent solves only share the provider.
type Solver struct {
	provider resolver.Provider
	tracer   resolver.Tracer
}

func New(provider resolver.Provider, options ...Option) (*Solver, error) {
	s := &Solver{provider: provider}
	for _, option := range append(options, defaults...) {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type Option func(s *Solver) error

// WithTracer installs a tracer observing decisions and conflicts.
func WithTracer(t resolver.Tracer) Option {
	return func(s *Solver) error {
		s.tracer = t
		return nil
	}
}

var defaults = []Option{
	func(s *Solver) error {
		if s.tracer == nil {
			s.tracer = resolver.DefaultTracer{}
		}
		return nil
	},
}

// Solve computes one consistent assignment of exact versions for the given
// root requirements, or explains why none exists. Resolution is
// all-or-nothing: on any error the returned Solution is nil. The error is a
// *resolver.NotSatisfiable for proven conflicts, a *resolver.ProviderError
// when the provider fails, or the context error when cancelled.
func (s *Solver) Solve(ctx context.Context, requirements map[resolver.Identifier]version.Range) (*Solution, error) {
	result, err := solver.Solve(ctx, s.provider, requirements, s.tracer)
	if err != nil {
		return nil, err
	}
	return &Solution{
		versions:     result.Versions,
		dependencies: result.Dependencies,
	}, nil
}
