// Package roster models the role-to-members mapping a scheduling run starts
// from and the absentee-filtered view the model builder consumes. Role order
// is the enumeration order of the source mapping and stays stable across the
// whole pipeline; member identity is an integer id assigned once per run.
package roster

import (
	"fmt"
	"strings"
)

// Role is one named group of colleagues who meet together.
type Role struct {
	Name    string
	Members []string
}

// Roster holds the ordered collection of roles. The zero value is an empty
// roster; use New to validate caller-supplied roles.
type Roster struct {
	roles []Role
}

// New builds a roster from the given roles in order. Role names must be
// non-empty and unique; member names are trimmed, empty entries dropped, and
// repeats within one role collapsed to the first occurrence.
func New(roles []Role) (*Roster, error) {
	r := &Roster{roles: make([]Role, 0, len(roles))}
	seen := map[string]struct{}{}
	for i, role := range roles {
		name := strings.TrimSpace(role.Name)
		if name == "" {
			return nil, fmt.Errorf("roster: role[%d]: name is required", i)
		}
		if _, exists := seen[name]; exists {
			return nil, fmt.Errorf("roster: duplicate role %q", name)
		}
		seen[name] = struct{}{}
		r.roles = append(r.roles, Role{Name: name, Members: cleanMembers(role.Members)})
	}
	return r, nil
}

// Len returns the number of roles.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.roles)
}

// Role returns the role at the given enumeration index.
func (r *Roster) Role(i int) Role {
	role := r.roles[i]
	members := make([]string, len(role.Members))
	copy(members, role.Members)
	return Role{Name: role.Name, Members: members}
}

// Roles returns a copy of all roles in enumeration order.
func (r *Roster) Roles() []Role {
	if r == nil || len(r.roles) == 0 {
		return nil
	}
	out := make([]Role, len(r.roles))
	for i := range r.roles {
		out[i] = r.Role(i)
	}
	return out
}

// Names returns the role names in enumeration order.
func (r *Roster) Names() []string {
	if r == nil || len(r.roles) == 0 {
		return nil
	}
	names := make([]string, len(r.roles))
	for i, role := range r.roles {
		names[i] = role.Name
	}
	return names
}

// Index resolves a role name to its enumeration index.
func (r *Roster) Index(name string) (int, bool) {
	if r == nil {
		return 0, false
	}
	target := strings.TrimSpace(name)
	for i, role := range r.roles {
		if role.Name == target {
			return i, true
		}
	}
	return 0, false
}

// MemberNames returns every distinct member in first-seen order across the
// roster enumeration (role order, then member order within each role).
func (r *Roster) MemberNames() []string {
	if r == nil {
		return nil
	}
	var names []string
	seen := map[string]struct{}{}
	for _, role := range r.roles {
		for _, member := range role.Members {
			if _, ok := seen[member]; ok {
				continue
			}
			seen[member] = struct{}{}
			names = append(names, member)
		}
	}
	return names
}

func cleanMembers(members []string) []string {
	out := make([]string, 0, len(members))
	seen := map[string]struct{}{}
	for _, member := range members {
		trimmed := strings.TrimSpace(member)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
