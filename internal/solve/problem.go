// Package solve defines the vocabulary the model builder speaks to a generic
// boolean solver: declared 0/1 variables, a set of hard constraints, and a
// linear maximization objective. The search itself lives behind the Solver
// interface; this package only describes problems and reads back results.
package solve

import (
	"fmt"
	"sort"
)

// Var identifies a declared boolean variable (dense, 0-based).
type Var int

// Kind discriminates the constraint forms a Problem can carry.
type Kind string

const (
	// KindAtMostOne allows at most one of Vars to be 1.
	KindAtMostOne Kind = "at-most-one"
	// KindSumAtLeast requires the sum of Vars to reach Bound. Over an empty
	// Vars list with Bound >= 1 it is unsatisfiable by construction.
	KindSumAtLeast Kind = "sum-at-least"
	// KindSumExactly pins the sum of Vars to Bound.
	KindSumExactly Kind = "sum-exactly"
	// KindSumInDomain restricts the sum of Vars to one of the Domain values.
	KindSumInDomain Kind = "sum-in-domain"
	// KindFixValue pins a single variable to Bound (0 or 1).
	KindFixValue Kind = "fix-value"
	// KindSumPositiveIff links Indicator to the Vars sum in both directions:
	// Indicator = 1 exactly when at least one of Vars is 1.
	KindSumPositiveIff Kind = "sum-positive-iff"
)

// Constraint is one hard requirement over declared variables. Only the
// fields its Kind reads are set; Label carries provenance for logs and
// infeasibility reports.
type Constraint struct {
	Kind      Kind
	Vars      []Var
	Bound     int
	Domain    []int
	Indicator Var
	Label     string
}

// Term is one objective summand: Coef applied to the variable's value.
type Term struct {
	Var  Var
	Coef int64
}

// Problem accumulates variables, constraints, and the objective. Construction
// is deterministic: identical call sequences produce deeply equal problems.
type Problem struct {
	names       []string
	constraints []Constraint
	objective   []Term
}

// NewProblem returns an empty problem.
func NewProblem() *Problem {
	return &Problem{}
}

// AddBool declares a boolean variable and returns its handle.
func (p *Problem) AddBool(name string) Var {
	v := Var(len(p.names))
	p.names = append(p.names, name)
	return v
}

// NumVars returns how many variables are declared.
func (p *Problem) NumVars() int {
	return len(p.names)
}

// NumConstraints returns how many constraints are recorded.
func (p *Problem) NumConstraints() int {
	return len(p.constraints)
}

// VarName returns the declaration name of a variable.
func (p *Problem) VarName(v Var) string {
	if v < 0 || int(v) >= len(p.names) {
		return ""
	}
	return p.names[v]
}

// AtMostOne records that at most one of vars may be 1.
func (p *Problem) AtMostOne(label string, vars []Var) {
	p.constraints = append(p.constraints, Constraint{
		Kind:  KindAtMostOne,
		Vars:  cloneVars(vars),
		Label: label,
	})
}

// SumAtLeast records sum(vars) >= min.
func (p *Problem) SumAtLeast(label string, vars []Var, min int) {
	p.constraints = append(p.constraints, Constraint{
		Kind:  KindSumAtLeast,
		Vars:  cloneVars(vars),
		Bound: min,
		Label: label,
	})
}

// SumExactly records sum(vars) == value.
func (p *Problem) SumExactly(label string, vars []Var, value int) {
	p.constraints = append(p.constraints, Constraint{
		Kind:  KindSumExactly,
		Vars:  cloneVars(vars),
		Bound: value,
		Label: label,
	})
}

// SumInDomain restricts sum(vars) to one of the domain values. The domain is
// canonicalized (sorted, deduplicated) so equal intents compare equal.
func (p *Problem) SumInDomain(label string, vars []Var, domain []int) {
	p.constraints = append(p.constraints, Constraint{
		Kind:   KindSumInDomain,
		Vars:   cloneVars(vars),
		Domain: canonicalDomain(domain),
		Label:  label,
	})
}

// Fix pins a variable to 0 or 1.
func (p *Problem) Fix(label string, v Var, value int) {
	p.constraints = append(p.constraints, Constraint{
		Kind:  KindFixValue,
		Vars:  []Var{v},
		Bound: value,
		Label: label,
	})
}

// SumPositiveIff links indicator = 1 exactly when sum(vars) >= 1.
func (p *Problem) SumPositiveIff(label string, indicator Var, vars []Var) {
	p.constraints = append(p.constraints, Constraint{
		Kind:      KindSumPositiveIff,
		Vars:      cloneVars(vars),
		Indicator: indicator,
		Label:     label,
	})
}

// AddObjective appends a maximization term for the variable.
func (p *Problem) AddObjective(v Var, coef int64) {
	p.objective = append(p.objective, Term{Var: v, Coef: coef})
}

// Constraints returns a copy of the constraint set in emission order.
func (p *Problem) Constraints() []Constraint {
	if len(p.constraints) == 0 {
		return nil
	}
	out := make([]Constraint, len(p.constraints))
	copy(out, p.constraints)
	return out
}

// Objective returns a copy of the maximization terms.
func (p *Problem) Objective() []Term {
	if len(p.objective) == 0 {
		return nil
	}
	out := make([]Term, len(p.objective))
	copy(out, p.objective)
	return out
}

// Validate checks every variable reference and constraint shape.
func (p *Problem) Validate() error {
	if p == nil {
		return fmt.Errorf("solve: problem is nil")
	}
	for i, c := range p.constraints {
		if err := p.validateConstraint(c); err != nil {
			return fmt.Errorf("solve: constraint[%d] %s: %w", i, c.Label, err)
		}
	}
	for _, term := range p.objective {
		if !p.inRange(term.Var) {
			return fmt.Errorf("solve: objective references unknown var %d", term.Var)
		}
	}
	return nil
}

func (p *Problem) validateConstraint(c Constraint) error {
	for _, v := range c.Vars {
		if !p.inRange(v) {
			return fmt.Errorf("references unknown var %d", v)
		}
	}
	switch c.Kind {
	case KindAtMostOne:
	case KindSumAtLeast:
		if c.Bound < 0 {
			return fmt.Errorf("bound %d must be >= 0", c.Bound)
		}
	case KindSumExactly:
		if c.Bound < 0 {
			return fmt.Errorf("bound %d must be >= 0", c.Bound)
		}
	case KindSumInDomain:
		if len(c.Domain) == 0 {
			return fmt.Errorf("domain is empty")
		}
		for _, value := range c.Domain {
			if value < 0 {
				return fmt.Errorf("domain value %d must be >= 0", value)
			}
		}
	case KindFixValue:
		if len(c.Vars) != 1 {
			return fmt.Errorf("expects exactly one var, got %d", len(c.Vars))
		}
		if c.Bound != 0 && c.Bound != 1 {
			return fmt.Errorf("value %d must be 0 or 1", c.Bound)
		}
	case KindSumPositiveIff:
		if !p.inRange(c.Indicator) {
			return fmt.Errorf("indicator references unknown var %d", c.Indicator)
		}
	default:
		return fmt.Errorf("unknown kind %q", c.Kind)
	}
	return nil
}

func (p *Problem) inRange(v Var) bool {
	return v >= 0 && int(v) < len(p.names)
}

func cloneVars(vars []Var) []Var {
	if len(vars) == 0 {
		return nil
	}
	out := make([]Var, len(vars))
	copy(out, vars)
	return out
}

func canonicalDomain(domain []int) []int {
	if len(domain) == 0 {
		return nil
	}
	sorted := make([]int, len(domain))
	copy(sorted, domain)
	sort.Ints(sorted)
	out := sorted[:1]
	for _, value := range sorted[1:] {
		if value != out[len(out)-1] {
			out = append(out, value)
		}
	}
	return out
}
