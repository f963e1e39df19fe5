package schedule

import "github.com/kingrea/convene/internal/roster"

// Policy names the roles the model treats specially. The zero value treats
// every role the same way. Role names that do not appear on the roster are
// ignored.
type Policy struct {
	// CoverageExempt roles skip the meets-at-least-once requirement and the
	// under-staffed lockout that comes with it.
	CoverageExempt []string `yaml:"exempt" json:"exempt"`
	// DefaultExcluded roles are barred from any block that did not
	// explicitly request them.
	DefaultExcluded []string `yaml:"excluded" json:"excluded"`
}

// Normalize trims role names and drops empties and duplicates.
func (p *Policy) Normalize() {
	p.CoverageExempt = cleanNames(p.CoverageExempt)
	p.DefaultExcluded = cleanNames(p.DefaultExcluded)
}

func resolveRoles(names []string, norm *roster.Normalized) map[int]bool {
	set := make(map[int]bool, len(names))
	for _, name := range names {
		if r, ok := norm.RoleIndex(name); ok {
			set[r] = true
		}
	}
	return set
}
