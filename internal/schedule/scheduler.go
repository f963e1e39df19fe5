// Package schedule turns a roster and a day's requirements into a meeting
// plan. Build emits the constraint model, Render reads a solved assignment
// back into roster terms, and Scheduler runs the whole pipeline against a
// solver engine.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kingrea/convene/internal/roster"
	"github.com/kingrea/convene/internal/runlog"
	"github.com/kingrea/convene/internal/solve"
)

// DefaultBudget bounds a single solve when no override is given.
const DefaultBudget = 10 * time.Second

var (
	// ErrInfeasible reports requirements that contradict each other: no
	// schedule can satisfy all of them at once.
	ErrInfeasible = errors.New("schedule: no schedule satisfies every requirement")
	// ErrNoSolution reports that the solve budget ran out before any
	// schedule was found. The requirements may still be satisfiable.
	ErrNoSolution = errors.New("schedule: no schedule found within the solve budget")
)

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithBudget overrides the per-run solve budget.
func WithBudget(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.budget = d
		}
	}
}

// WithRunLog records each run's outcome to the log.
func WithRunLog(log *runlog.Log) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// WithClock overrides the time source used for run durations.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Scheduler runs the pipeline: filter the roster, build the model, solve,
// and read the assignment back as a schedule. It holds no per-run state, so
// one Scheduler serves any number of runs.
type Scheduler struct {
	solver solve.Solver
	budget time.Duration
	log    *runlog.Log
	clock  func() time.Time
}

// New returns a scheduler backed by the given solver engine.
func New(solver solve.Solver, opts ...Option) (*Scheduler, error) {
	if solver == nil {
		return nil, fmt.Errorf("schedule: solver is required")
	}
	s := &Scheduler{
		solver: solver,
		budget: DefaultBudget,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Outcome pairs a rendered schedule with how the solve went.
type Outcome struct {
	Schedule  *Schedule
	Verdict   solve.Verdict
	Objective int64
	Stats     solve.Stats
}

// Run produces the meeting plan for one day. Infeasible requirements map to
// ErrInfeasible and an exhausted budget without any solution maps to
// ErrNoSolution; both leave the schedule nil.
func (s *Scheduler) Run(ctx context.Context, r *roster.Roster, req Request) (*Outcome, error) {
	if r == nil {
		return nil, fmt.Errorf("schedule: roster is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := s.clock()
	norm := roster.Normalize(r, req.Absent)
	problem, table, err := Build(norm, req)
	if err != nil {
		return nil, err
	}

	solveCtx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()
	res, err := s.solver.Solve(solveCtx, problem)
	if err != nil {
		s.log.Error("solve failed: %v", err)
		return nil, fmt.Errorf("schedule: solve: %w", err)
	}
	s.log.Run(string(res.Verdict), req.Blocks, problem.NumVars(), problem.NumConstraints(), s.clock().Sub(start))

	switch res.Verdict {
	case solve.VerdictInfeasible:
		return nil, ErrInfeasible
	case solve.VerdictUnknown:
		return nil, ErrNoSolution
	}
	rendered, err := Render(norm, table, res)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Schedule:  rendered,
		Verdict:   res.Verdict,
		Objective: res.Objective,
		Stats:     res.Stats,
	}, nil
}
