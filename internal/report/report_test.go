package report

import (
	"strings"
	"testing"

	"github.com/kingrea/convene/internal/schedule"
)

func sampleSchedule() *schedule.Schedule {
	return &schedule.Schedule{
		Blocks: []schedule.BlockSchedule{
			{
				Label: "Block 1",
				Meetings: []schedule.Meeting{
					{Role: "Design", Members: []string{"Ada", "Mina"}},
					{Role: "Ops", Members: []string{"Cy", "Di"}},
				},
				Left: []string{"Bo"},
			},
			{
				Label: "Block 2",
				Left:  []string{"Ada", "Mina", "Bo", "Cy", "Di"},
			},
		},
	}
}

func TestFormatPlain(t *testing.T) {
	got := Format(sampleSchedule(), Options{Plain: true})
	want := "Block 1\n" +
		"  Design: Ada, Mina\n" +
		"  Ops: Cy, Di\n" +
		"  Employees left: Bo\n" +
		"\n" +
		"Block 2\n" +
		"  Employees left: Ada, Mina, Bo, Cy, Di\n"
	if got != want {
		t.Fatalf("unexpected plain report:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatStyledKeepsContent(t *testing.T) {
	got := Format(sampleSchedule(), Options{})
	for _, fragment := range []string{"Block 1", "Design:", "Ada, Mina", "Employees left:"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("styled report lost %q:\n%s", fragment, got)
		}
	}
}

func TestFormatNilSchedule(t *testing.T) {
	if got := Format(nil, Options{Plain: true}); got != "" {
		t.Fatalf("nil schedule should render nothing, got %q", got)
	}
}
