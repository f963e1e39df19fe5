package solve

import (
	"context"
	"time"
)

// Verdict classifies the outcome of a solve.
type Verdict string

const (
	// VerdictOptimal means the search was exhausted and Values carries the
	// best assignment found.
	VerdictOptimal Verdict = "optimal"
	// VerdictFeasible means the budget ran out after at least one
	// satisfying assignment was found; Values carries the incumbent.
	VerdictFeasible Verdict = "feasible"
	// VerdictInfeasible means the search was exhausted with no satisfying
	// assignment.
	VerdictInfeasible Verdict = "infeasible"
	// VerdictUnknown means the budget ran out before any satisfying
	// assignment was found.
	VerdictUnknown Verdict = "unknown"
)

// Solved reports whether the verdict comes with a usable assignment.
func (v Verdict) Solved() bool {
	return v == VerdictOptimal || v == VerdictFeasible
}

// Stats describes the work a solve performed.
type Stats struct {
	Nodes     int64
	Solutions int
	Duration  time.Duration
}

// Result is a solver's answer. Values is indexed by Var and only populated
// when the verdict is solved.
type Result struct {
	Verdict   Verdict
	Values    []int
	Objective int64
	Stats     Stats
}

// Value returns the assigned value of v, or 0 when no assignment exists.
func (r Result) Value(v Var) int {
	if v < 0 || int(v) >= len(r.Values) {
		return 0
	}
	return r.Values[v]
}

// Solver finds assignments for boolean problems. Implementations honor the
// context deadline and report how far they got through the verdict.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (Result, error)
}
