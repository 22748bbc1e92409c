package solver

// assignment is one entry in the partial solution's ordered log: a term plus
// its provenance. Decisions pick an exact version and open a new decision
// level; derivations are forced by an incompatibility and inherit the level
// of the decision that enabled them.
type assignment struct {
	term          term
	decisionLevel int
	index         int
	// cause is the store index of the incompatibility that forced a
	// derivation; -1 for decisions.
	cause int
}

func (a assignment) isDecision() bool {
	return a.cause < 0
}
