package schedule

import (
	"fmt"

	"github.com/kingrea/convene/internal/roster"
	"github.com/kingrea/convene/internal/solve"
)

// VarTable maps model variables back to roster coordinates: one shift var
// per (block, role, member slot) and one activity var per (block, role)
// holding at least one member.
type VarTable struct {
	blocks int
	shifts [][][]solve.Var
	active [][]solve.Var
}

// Blocks returns how many blocks the table spans.
func (t *VarTable) Blocks() int {
	return t.blocks
}

// Shift returns the var for a member slot of a role in a block.
func (t *VarTable) Shift(block, role, slot int) (solve.Var, bool) {
	if block < 0 || block >= len(t.shifts) {
		return -1, false
	}
	if role < 0 || role >= len(t.shifts[block]) {
		return -1, false
	}
	if slot < 0 || slot >= len(t.shifts[block][role]) {
		return -1, false
	}
	return t.shifts[block][role][slot], true
}

// Active returns the meeting-activity var for a role in a block.
func (t *VarTable) Active(block, role int) (solve.Var, bool) {
	if block < 0 || block >= len(t.active) {
		return -1, false
	}
	if role < 0 || role >= len(t.active[block]) {
		return -1, false
	}
	v := t.active[block][role]
	if v < 0 {
		return -1, false
	}
	return v, true
}

// Build translates a filtered roster and a run request into a boolean
// optimization problem. The emission order is fixed, so identical inputs
// produce deeply equal problems.
//
// The rules, in order:
//  1. a member attends at most one meeting per block
//  2. a role outside the coverage exemption meets at least once across the
//     day when two or more members are present, and never when fewer are
//  3. a role's attendees stick together: none, all, or all but one (with a
//     floor of two)
//  4. a requested meeting is attended by every present member of the role,
//     and default-excluded roles sit out every block that did not request them
//
// The objective rewards every attendance tenfold and charges one point per
// convened (block, role) pair, so spreading people across meetings never
// beats attendance, and empty meetings never pad the score.
func Build(norm *roster.Normalized, req Request) (*solve.Problem, *VarTable, error) {
	if norm == nil {
		return nil, nil, fmt.Errorf("schedule: normalized roster is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	blocks := req.Blocks
	roleCount := norm.RoleCount()
	p := solve.NewProblem()
	table := &VarTable{
		blocks: blocks,
		shifts: make([][][]solve.Var, blocks),
		active: make([][]solve.Var, blocks),
	}

	// slotOf[r][id] locates a member inside a role's filtered list.
	slotOf := make([][]int, roleCount)
	for r := 0; r < roleCount; r++ {
		slotOf[r] = make([]int, norm.PresentCount())
		for i := range slotOf[r] {
			slotOf[r][i] = -1
		}
		for slot, id := range norm.Members(r) {
			slotOf[r][id] = slot
		}
	}

	for t := 0; t < blocks; t++ {
		table.shifts[t] = make([][]solve.Var, roleCount)
		table.active[t] = make([]solve.Var, roleCount)
		for r := 0; r < roleCount; r++ {
			members := norm.Members(r)
			table.shifts[t][r] = make([]solve.Var, len(members))
			table.active[t][r] = -1
			for slot, id := range members {
				table.shifts[t][r][slot] = p.AddBool(fmt.Sprintf("shift_t%dr%de%d", t, r, id))
			}
		}
	}

	// Rule 1.
	for id := 0; id < norm.PresentCount(); id++ {
		for t := 0; t < blocks; t++ {
			roles := norm.RolesOf(id)
			vars := make([]solve.Var, 0, len(roles))
			for _, r := range roles {
				vars = append(vars, table.shifts[t][r][slotOf[r][id]])
			}
			p.AtMostOne(fmt.Sprintf("block %d: %s attends at most one meeting", t+1, norm.MemberName(id)), vars)
		}
	}

	// Rule 2.
	exempt := resolveRoles(req.Policy.CoverageExempt, norm)
	for r := 0; r < roleCount; r++ {
		if exempt[r] {
			continue
		}
		var vars []solve.Var
		for t := 0; t < blocks; t++ {
			vars = append(vars, table.shifts[t][r]...)
		}
		name := norm.RoleName(r)
		if norm.MemberCount(r) > 1 {
			p.SumAtLeast(fmt.Sprintf("%s meets at least once", name), vars, 1)
		} else {
			p.SumExactly(fmt.Sprintf("%s is under-staffed", name), vars, 0)
		}
	}

	// Rule 3. A group of one is skipped: its domain would allow every
	// assignment anyway.
	for r := 0; r < roleCount; r++ {
		count := norm.MemberCount(r)
		if count <= 1 {
			continue
		}
		domain := []int{0, maxInt(2, count-1), count}
		for t := 0; t < blocks; t++ {
			p.SumInDomain(fmt.Sprintf("block %d: %s meets together", t+1, norm.RoleName(r)), table.shifts[t][r], domain)
		}
	}

	// Rule 4.
	excluded := resolveRoles(req.Policy.DefaultExcluded, norm)
	for t := 0; t < blocks; t++ {
		requested := make(map[int]bool)
		if t < len(req.Fixed) {
			for _, name := range req.Fixed[t] {
				r, ok := norm.RoleIndex(name)
				if !ok {
					continue
				}
				requested[r] = true
				label := fmt.Sprintf("block %d: %s requested", t+1, name)
				if norm.MemberCount(r) == 0 {
					// Nobody is left to attend. An unmeetable minimum
					// surfaces the conflict as an infeasible verdict
					// instead of silently dropping the request.
					p.SumAtLeast(label, nil, 1)
					continue
				}
				for _, v := range table.shifts[t][r] {
					p.Fix(label, v, 1)
				}
			}
		}
		for r := 0; r < roleCount; r++ {
			if !excluded[r] || requested[r] {
				continue
			}
			label := fmt.Sprintf("block %d: %s not requested", t+1, norm.RoleName(r))
			for _, v := range table.shifts[t][r] {
				p.Fix(label, v, 0)
			}
		}
	}

	// Objective.
	for t := 0; t < blocks; t++ {
		for r := 0; r < roleCount; r++ {
			for _, v := range table.shifts[t][r] {
				p.AddObjective(v, 10)
			}
		}
	}
	for t := 0; t < blocks; t++ {
		for r := 0; r < roleCount; r++ {
			if norm.MemberCount(r) == 0 {
				continue
			}
			v := p.AddBool(fmt.Sprintf("role_t%dr%d", t, r))
			table.active[t][r] = v
			p.SumPositiveIff(fmt.Sprintf("block %d: %s convened", t+1, norm.RoleName(r)), v, table.shifts[t][r])
			p.AddObjective(v, -1)
		}
	}

	return p, table, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
