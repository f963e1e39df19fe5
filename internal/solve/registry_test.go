package solve

import (
	"context"
	"strings"
	"testing"
)

type nopSolver struct{}

func (nopSolver) Solve(ctx context.Context, p *Problem) (Result, error) {
	return Result{Verdict: VerdictUnknown}, nil
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	factory := func() (Solver, error) { return nopSolver{}, nil }
	if err := r.Register("stub", factory); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err := r.Register("stub", factory)
	if err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", func() (Solver, error) { return nopSolver{}, nil }); err == nil {
		t.Fatalf("expected error for empty engine name")
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Resolve("missing"); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}

func TestRegistryNamesAreSorted(t *testing.T) {
	r := NewRegistry()
	factory := func() (Solver, error) { return nopSolver{}, nil }
	r.MustRegister("zeta", factory)
	r.MustRegister("alpha", factory)
	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("unexpected names: %v", names)
	}
}
