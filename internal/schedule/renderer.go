package schedule

import (
	"fmt"

	"github.com/kingrea/convene/internal/roster"
	"github.com/kingrea/convene/internal/solve"
)

// Meeting is one convened role with its attendees, in roster member order.
type Meeting struct {
	Role    string   `json:"role" yaml:"role"`
	Members []string `json:"members" yaml:"members"`
}

// BlockSchedule lists a block's meetings plus everyone present who attends
// none of them.
type BlockSchedule struct {
	Label    string    `json:"label" yaml:"label"`
	Meetings []Meeting `json:"meetings,omitempty" yaml:"meetings,omitempty"`
	Left     []string  `json:"left,omitempty" yaml:"left,omitempty"`
}

// Schedule is the rendered solution for a full day.
type Schedule struct {
	Blocks []BlockSchedule `json:"blocks" yaml:"blocks"`
}

// Render reads a solved assignment back into roster terms. Only optimal and
// feasible results carry an assignment; anything else is an error here, so
// unsatisfiable runs can never leak a half-rendered schedule. Role order and
// member order follow the roster; the leftover list follows first-seen
// member order.
func Render(norm *roster.Normalized, table *VarTable, res solve.Result) (*Schedule, error) {
	if norm == nil || table == nil {
		return nil, fmt.Errorf("schedule: render needs a roster and a variable table")
	}
	if !res.Verdict.Solved() {
		return nil, fmt.Errorf("schedule: cannot render a %s result", res.Verdict)
	}

	out := &Schedule{Blocks: make([]BlockSchedule, table.Blocks())}
	for t := 0; t < table.Blocks(); t++ {
		block := BlockSchedule{Label: fmt.Sprintf("Block %d", t+1)}
		attending := make([]bool, norm.PresentCount())
		for r := 0; r < norm.RoleCount(); r++ {
			var chosen []string
			for slot, id := range norm.Members(r) {
				v, ok := table.Shift(t, r, slot)
				if !ok {
					continue
				}
				if res.Value(v) == 1 {
					chosen = append(chosen, norm.MemberName(id))
					attending[id] = true
				}
			}
			if len(chosen) > 0 {
				block.Meetings = append(block.Meetings, Meeting{
					Role:    norm.RoleName(r),
					Members: chosen,
				})
			}
		}
		for id := 0; id < norm.PresentCount(); id++ {
			if !attending[id] {
				block.Left = append(block.Left, norm.MemberName(id))
			}
		}
		out.Blocks[t] = block
	}
	return out, nil
}
