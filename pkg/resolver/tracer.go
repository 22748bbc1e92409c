package resolver

import (
	"fmt"
	"io"
)

// SearchPosition is a snapshot of the solver's progress, passed to a Tracer
// after each decision and each learned conflict.
type SearchPosition interface {
	// Decisions returns the versions decided so far, in decision order.
	Decisions() []ResolvedVersion
	// Conflicts returns human-readable renderings of the incompatibilities
	// involved in the current conflict, if any.
	Conflicts() []string
}

// Tracer observes the progress of a solve.
type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nDecisions:\n")
	for _, d := range p.Decisions() {
		fmt.Fprintf(t.Writer, "- %s\n", d)
	}
	if conflicts := p.Conflicts(); len(conflicts) > 0 {
		fmt.Fprintf(t.Writer, "Conflict:\n")
		for _, c := range conflicts {
			fmt.Fprintf(t.Writer, "- %s\n", c)
		}
	}
}
