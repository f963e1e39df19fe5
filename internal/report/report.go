// Package report writes a schedule out for terminals.
package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kingrea/convene/internal/schedule"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	roleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	leftStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

// Options control rendering. Plain drops all styling, for pipes and tests.
type Options struct {
	Plain bool
}

// Format renders a schedule block by block: every convened meeting with its
// attendees, then whoever sits that block out. The layout matches the plain
// text shape regardless of styling.
func Format(sched *schedule.Schedule, opts Options) string {
	if sched == nil {
		return ""
	}
	var b strings.Builder
	for i, block := range sched.Blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(apply(headerStyle, block.Label, opts))
		b.WriteString("\n")
		for _, meeting := range block.Meetings {
			b.WriteString("  ")
			b.WriteString(apply(roleStyle, meeting.Role+":", opts))
			b.WriteString(" ")
			b.WriteString(strings.Join(meeting.Members, ", "))
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(apply(leftStyle, "Employees left:", opts))
		if len(block.Left) > 0 {
			b.WriteString(" ")
			b.WriteString(strings.Join(block.Left, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func apply(style lipgloss.Style, s string, opts Options) string {
	if opts.Plain {
		return s
	}
	return style.Render(s)
}
