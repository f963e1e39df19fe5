// Package backtrack is the bundled reference engine: a depth-first search
// over boolean assignments with residual pruning per constraint and an
// objective bound against the incumbent. It is meant for the problem sizes a
// single roster produces; larger deployments plug an external engine into the
// same interface.
package backtrack

import (
	"context"
	"fmt"
	"time"

	"github.com/kingrea/convene/internal/solve"
)

// DefaultMaxNodes caps the search when no explicit budget is set.
const DefaultMaxNodes int64 = 4_000_000

// Option customizes an engine.
type Option func(*Engine)

// WithMaxNodes overrides the node budget.
func WithMaxNodes(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxNodes = n
		}
	}
}

// WithClock overrides the time source used for duration stats.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// Engine is a branch-and-bound depth-first solver.
type Engine struct {
	maxNodes int64
	clock    func() time.Time
}

// New returns an engine with the default budget.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxNodes: DefaultMaxNodes,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// constraintState tracks how much of a constraint is already decided.
type constraintState struct {
	ones     int
	assigned int
}

type search struct {
	problem     *solve.Problem
	constraints []solve.Constraint
	states      []constraintState

	// varConstraints[v] lists constraints with v among their Vars;
	// indicatorConstraints[v] lists constraints where v is the Indicator.
	varConstraints       [][]int
	indicatorConstraints [][]int

	assignment []int
	objCoef    []int64

	currentObj int64
	potential  int64

	incumbent    []int
	incumbentObj int64
	found        bool

	nodes     int64
	maxNodes  int64
	solutions int
	stopped   bool

	ctx context.Context
}

// Solve explores assignments in declaration order, trying 1 before 0. The
// verdict reports whether the search was exhausted or cut short by the node
// budget or the context deadline.
func (e *Engine) Solve(ctx context.Context, p *solve.Problem) (solve.Result, error) {
	if err := p.Validate(); err != nil {
		return solve.Result{}, fmt.Errorf("backtrack: %w", err)
	}
	start := e.clock()

	s := newSearch(ctx, p, e.maxNodes)
	if s.rootFeasible() {
		s.dfs(0)
	}

	result := solve.Result{
		Stats: solve.Stats{
			Nodes:     s.nodes,
			Solutions: s.solutions,
			Duration:  e.clock().Sub(start),
		},
	}
	switch {
	case s.found && !s.stopped:
		result.Verdict = solve.VerdictOptimal
	case s.found:
		result.Verdict = solve.VerdictFeasible
	case s.stopped:
		result.Verdict = solve.VerdictUnknown
	default:
		result.Verdict = solve.VerdictInfeasible
	}
	if s.found {
		result.Values = s.incumbent
		result.Objective = s.incumbentObj
	}
	return result, nil
}

func newSearch(ctx context.Context, p *solve.Problem, maxNodes int64) *search {
	n := p.NumVars()
	s := &search{
		problem:              p,
		constraints:          p.Constraints(),
		varConstraints:       make([][]int, n),
		indicatorConstraints: make([][]int, n),
		assignment:           make([]int, n),
		objCoef:              make([]int64, n),
		maxNodes:             maxNodes,
		ctx:                  ctx,
	}
	for i := range s.assignment {
		s.assignment[i] = -1
	}
	s.states = make([]constraintState, len(s.constraints))
	for ci, c := range s.constraints {
		for _, v := range c.Vars {
			s.varConstraints[v] = append(s.varConstraints[v], ci)
		}
		if c.Kind == solve.KindSumPositiveIff {
			s.indicatorConstraints[c.Indicator] = append(s.indicatorConstraints[c.Indicator], ci)
		}
	}
	for _, term := range p.Objective() {
		s.objCoef[term.Var] += term.Coef
	}
	for _, coef := range s.objCoef {
		if coef > 0 {
			s.potential += coef
		}
	}
	return s
}

// rootFeasible checks every constraint once before branching. Constraints
// over zero vars are only ever checked here.
func (s *search) rootFeasible() bool {
	for ci := range s.constraints {
		if !s.feasible(ci) {
			return false
		}
	}
	return true
}

func (s *search) dfs(v int) {
	if s.stopped {
		return
	}
	if v == len(s.assignment) {
		s.record()
		return
	}
	for _, value := range [2]int{1, 0} {
		if s.budgetExceeded() {
			return
		}
		if s.assign(v, value) {
			s.dfs(v + 1)
		}
		s.unassign(v, value)
		if s.stopped {
			return
		}
	}
}

func (s *search) budgetExceeded() bool {
	if s.nodes >= s.maxNodes {
		s.stopped = true
		return true
	}
	if s.nodes&63 == 0 && s.ctx.Err() != nil {
		s.stopped = true
		return true
	}
	return false
}

// assign commits v=value and reports whether the subtree is still worth
// exploring. It always leaves the state updated so unassign can revert.
func (s *search) assign(v, value int) bool {
	s.nodes++
	s.assignment[v] = value
	coef := s.objCoef[v]
	if value == 1 {
		s.currentObj += coef
	}
	if coef > 0 {
		s.potential -= coef
	}
	ok := true
	for _, ci := range s.varConstraints[v] {
		s.states[ci].assigned++
		if value == 1 {
			s.states[ci].ones++
		}
		if ok && !s.feasible(ci) {
			ok = false
		}
	}
	if ok {
		for _, ci := range s.indicatorConstraints[v] {
			if !s.feasible(ci) {
				ok = false
				break
			}
		}
	}
	if ok && s.found && s.currentObj+s.potential <= s.incumbentObj {
		ok = false
	}
	return ok
}

func (s *search) unassign(v, value int) {
	for _, ci := range s.varConstraints[v] {
		s.states[ci].assigned--
		if value == 1 {
			s.states[ci].ones--
		}
	}
	coef := s.objCoef[v]
	if value == 1 {
		s.currentObj -= coef
	}
	if coef > 0 {
		s.potential += coef
	}
	s.assignment[v] = -1
}

// feasible reports whether the constraint can still be satisfied given the
// partial assignment. When every var is assigned the check is exact.
func (s *search) feasible(ci int) bool {
	c := s.constraints[ci]
	state := s.states[ci]
	remaining := len(c.Vars) - state.assigned
	switch c.Kind {
	case solve.KindAtMostOne:
		return state.ones <= 1
	case solve.KindSumAtLeast:
		return state.ones+remaining >= c.Bound
	case solve.KindSumExactly:
		return state.ones <= c.Bound && state.ones+remaining >= c.Bound
	case solve.KindSumInDomain:
		for _, value := range c.Domain {
			if state.ones <= value && value <= state.ones+remaining {
				return true
			}
		}
		return false
	case solve.KindFixValue:
		if state.assigned == 0 {
			return true
		}
		return state.ones == c.Bound
	case solve.KindSumPositiveIff:
		switch s.assignment[c.Indicator] {
		case 1:
			return state.ones >= 1 || remaining > 0
		case 0:
			return state.ones == 0
		default:
			return true
		}
	}
	return false
}

func (s *search) record() {
	s.solutions++
	if !s.found || s.currentObj > s.incumbentObj {
		if s.incumbent == nil {
			s.incumbent = make([]int, len(s.assignment))
		}
		copy(s.incumbent, s.assignment)
		s.incumbentObj = s.currentObj
		s.found = true
	}
}
