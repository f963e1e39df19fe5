// cmd/convene/main.go
//
// Command line front door for the scheduler. Loads a roster, assembles a
// day request from flags or a request file, solves it, and prints the
// resulting schedule block by block.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kingrea/convene/internal/report"
	"github.com/kingrea/convene/internal/roster"
	"github.com/kingrea/convene/internal/runlog"
	"github.com/kingrea/convene/internal/schedule"
	"github.com/kingrea/convene/internal/solve"
	"github.com/kingrea/convene/internal/solve/backtrack"
)

const defaultBlocks = 4

const constraintSummary = `The schedule is made under the following rules:
- Each member can only attend one meeting per block.
- A meeting is attended by all present members of its role, or by all but one
  when at least two would remain.
- At least one meeting is scheduled for each role, except when no or only one
  member is present for that role. In that case the role is not scheduled.
- Requested meetings must be attended by every present member of the role.
  Roles marked excluded meet only in blocks where they were requested.
`

func main() {
	rosterPath := flag.String("roster", "", "path to the roster file (JSON or YAML)")
	requestPath := flag.String("request", "", "path to a request file with day parameters (JSON or YAML)")
	blocks := flag.Int("blocks", 0, "number of meeting blocks in the day (default 4)")
	engineName := flag.String("engine", "backtrack", "solver engine to use")
	budget := flag.Duration("budget", schedule.DefaultBudget, "solve time budget")
	plain := flag.Bool("plain", false, "disable styled output")
	runlogPath := flag.String("runlog", "", "append run records to this file")
	showRules := flag.Bool("constraints", false, "print the scheduling rules and exit")
	absent := listFlag{}
	flag.Var(&absent, "absent", "absent member name(s), comma separated (repeatable)")
	exempt := listFlag{}
	flag.Var(&exempt, "exempt", "role exempt from the meet-at-least-once rule (repeatable)")
	excluded := listFlag{}
	flag.Var(&excluded, "excluded", "role that meets only when requested (repeatable)")
	fixes := fixFlag{}
	flag.Var(&fixes, "fix", `request a meeting as BLOCK:ROLE, e.g. "2:Ops" (repeatable)`)
	flag.Parse()

	if *showRules {
		fmt.Print(constraintSummary)
		return
	}
	if strings.TrimSpace(*rosterPath) == "" {
		die("-roster is required")
	}

	r, err := roster.Load(*rosterPath)
	if err != nil {
		die("load roster: %v", err)
	}

	req := schedule.Request{}
	if path := strings.TrimSpace(*requestPath); path != "" {
		req, err = schedule.LoadRequest(path)
		if err != nil {
			die("load request: %v", err)
		}
	}
	if *blocks > 0 {
		req.Blocks = *blocks
	}
	if req.Blocks == 0 {
		req.Blocks = defaultBlocks
	}
	if len(absent) > 0 {
		req.Absent = absent
	}
	if len(exempt) > 0 {
		req.Policy.CoverageExempt = exempt
	}
	if len(excluded) > 0 {
		req.Policy.DefaultExcluded = excluded
	}
	if len(fixes) > 0 {
		fixed := make([][]string, req.Blocks)
		for _, fix := range fixes {
			if fix.block > req.Blocks {
				die("-fix %d:%s names block %d but the day has %d blocks", fix.block, fix.role, fix.block, req.Blocks)
			}
			fixed[fix.block-1] = append(fixed[fix.block-1], fix.role)
		}
		req.Fixed = fixed
	}

	engines := solve.NewRegistry()
	engines.MustRegister("backtrack", func() (solve.Solver, error) {
		return backtrack.New(), nil
	})
	solver, err := engines.Resolve(*engineName)
	if err != nil {
		die("unknown engine %q (available: %s)", *engineName, strings.Join(engines.Names(), ", "))
	}

	opts := []schedule.Option{schedule.WithBudget(*budget)}
	if path := strings.TrimSpace(*runlogPath); path != "" {
		log, err := runlog.Open(path)
		if err != nil {
			die("open run log: %v", err)
		}
		defer log.Close()
		opts = append(opts, schedule.WithRunLog(log))
	}
	scheduler, err := schedule.New(solver, opts...)
	if err != nil {
		die("build scheduler: %v", err)
	}

	outcome, err := scheduler.Run(context.Background(), r, req)
	switch {
	case errors.Is(err, schedule.ErrInfeasible):
		fmt.Fprintln(os.Stderr, "No schedule satisfies every requirement. Please remove one of them and try again.")
		os.Exit(2)
	case errors.Is(err, schedule.ErrNoSolution):
		fmt.Fprintln(os.Stderr, "No schedule found within the solve budget. Try again with a longer -budget.")
		os.Exit(2)
	case err != nil:
		die("schedule: %v", err)
	}

	fmt.Print(report.Format(outcome.Schedule, report.Options{Plain: *plain}))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type listFlag []string

func (l *listFlag) String() string {
	if l == nil || len(*l) == 0 {
		return ""
	}
	return strings.Join(*l, ", ")
}

func (l *listFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if name := strings.TrimSpace(part); name != "" {
			*l = append(*l, name)
		}
	}
	return nil
}

type blockFix struct {
	block int
	role  string
}

type fixFlag []blockFix

func (f *fixFlag) String() string {
	if f == nil || len(*f) == 0 {
		return ""
	}
	parts := make([]string, 0, len(*f))
	for _, fix := range *f {
		parts = append(parts, fmt.Sprintf("%d:%s", fix.block, fix.role))
	}
	return strings.Join(parts, ", ")
}

func (f *fixFlag) Set(value string) error {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected BLOCK:ROLE, got %q", value)
	}
	block, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || block < 1 {
		return fmt.Errorf("block must be a positive number in %q", value)
	}
	role := strings.TrimSpace(parts[1])
	if role == "" {
		return fmt.Errorf("role is empty in %q", value)
	}
	*f = append(*f, blockFix{block: block, role: role})
	return nil
}
