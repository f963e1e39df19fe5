package solve

import (
	"reflect"
	"strings"
	"testing"
)

func TestProblemAssignsDenseVars(t *testing.T) {
	p := NewProblem()
	a := p.AddBool("a")
	b := p.AddBool("b")
	if a != 0 || b != 1 {
		t.Fatalf("expected dense handles 0 and 1, got %d and %d", a, b)
	}
	if p.NumVars() != 2 {
		t.Fatalf("expected 2 vars, got %d", p.NumVars())
	}
	if p.VarName(b) != "b" {
		t.Fatalf("unexpected name for var %d: %q", b, p.VarName(b))
	}
	if p.VarName(Var(7)) != "" {
		t.Fatalf("out-of-range var should have empty name")
	}
}

func TestProblemCanonicalizesDomains(t *testing.T) {
	p := NewProblem()
	vars := []Var{p.AddBool("a"), p.AddBool("b"), p.AddBool("c")}
	p.SumInDomain("cohesion", vars, []int{3, 0, 2, 2, 0})
	got := p.Constraints()
	if len(got) != 1 {
		t.Fatalf("expected one constraint, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].Domain, []int{0, 2, 3}) {
		t.Fatalf("domain not canonicalized: %v", got[0].Domain)
	}
}

func TestProblemConstraintsAreCopies(t *testing.T) {
	p := NewProblem()
	v := p.AddBool("a")
	p.AtMostOne("solo", []Var{v})
	first := p.Constraints()
	first[0].Label = "tampered"
	if p.Constraints()[0].Label != "solo" {
		t.Fatalf("caller mutation leaked into the problem")
	}
}

func TestValidateRejectsUnknownVarReference(t *testing.T) {
	p := NewProblem()
	p.AddBool("a")
	p.SumAtLeast("rollcall", []Var{0, 3}, 1)
	err := p.Validate()
	if err == nil {
		t.Fatalf("expected error for out-of-range var")
	}
	if !strings.Contains(err.Error(), "unknown var 3") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadFixValue(t *testing.T) {
	p := NewProblem()
	v := p.AddBool("a")
	p.Fix("pin", v, 2)
	err := p.Validate()
	if err == nil {
		t.Fatalf("expected error for fix value outside 0/1")
	}
	if !strings.Contains(err.Error(), "must be 0 or 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsEmptyDomain(t *testing.T) {
	p := NewProblem()
	v := p.AddBool("a")
	p.SumInDomain("cohesion", []Var{v}, nil)
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for empty domain")
	}
}

func TestValidateAllowsEmptySumAtLeast(t *testing.T) {
	// A minimum over zero vars is unsatisfiable but still a well-formed
	// problem; the solver reports infeasible rather than the builder failing.
	p := NewProblem()
	p.SumAtLeast("empty-roll", nil, 1)
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateChecksObjectiveVars(t *testing.T) {
	p := NewProblem()
	p.AddBool("a")
	p.AddObjective(Var(5), 10)
	err := p.Validate()
	if err == nil {
		t.Fatalf("expected error for objective var out of range")
	}
	if !strings.Contains(err.Error(), "objective references unknown var 5") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIdenticalBuildsCompareEqual(t *testing.T) {
	build := func() *Problem {
		p := NewProblem()
		a := p.AddBool("a")
		b := p.AddBool("b")
		p.AtMostOne("pair", []Var{a, b})
		p.SumInDomain("span", []Var{a, b}, []int{2, 0})
		p.AddObjective(a, 10)
		p.AddObjective(b, 10)
		return p
	}
	if !reflect.DeepEqual(build(), build()) {
		t.Fatalf("identical build sequences should produce deeply equal problems")
	}
}

func TestVerdictSolved(t *testing.T) {
	if !VerdictOptimal.Solved() || !VerdictFeasible.Solved() {
		t.Fatalf("optimal and feasible carry assignments")
	}
	if VerdictInfeasible.Solved() || VerdictUnknown.Solved() {
		t.Fatalf("infeasible and unknown carry no assignment")
	}
}

func TestResultValueOutOfRange(t *testing.T) {
	r := Result{Values: []int{1}}
	if r.Value(0) != 1 {
		t.Fatalf("expected assigned value 1")
	}
	if r.Value(3) != 0 {
		t.Fatalf("out-of-range lookup should return 0")
	}
}
