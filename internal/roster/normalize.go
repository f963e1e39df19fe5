package roster

import "strings"

// Normalized is the absentee-filtered roster plus the integer codecs shared
// by the model builder and the solution renderer. Member ids are assigned
// first-seen across the roster enumeration (role order, then member order),
// so identical inputs always produce identical codecs.
type Normalized struct {
	roles       []Role
	memberNames []string
	memberIDs   map[string]int
	roleMembers [][]int
	memberRoles [][]int
}

// Normalize removes absentees from every role and derives the id codecs.
// Absentee names that never appear in the roster are ignored. A role whose
// members are all absent stays present with an empty member list. The input
// roster is not modified.
func Normalize(r *Roster, absent []string) *Normalized {
	gone := map[string]struct{}{}
	for _, name := range absent {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		gone[trimmed] = struct{}{}
	}
	n := &Normalized{memberIDs: map[string]int{}}
	if r == nil {
		return n
	}
	n.roles = make([]Role, 0, len(r.roles))
	n.roleMembers = make([][]int, 0, len(r.roles))
	for _, role := range r.roles {
		kept := make([]string, 0, len(role.Members))
		ids := make([]int, 0, len(role.Members))
		for _, member := range role.Members {
			if _, out := gone[member]; out {
				continue
			}
			kept = append(kept, member)
			ids = append(ids, n.internMember(member))
		}
		n.roles = append(n.roles, Role{Name: role.Name, Members: kept})
		n.roleMembers = append(n.roleMembers, ids)
	}
	n.memberRoles = make([][]int, len(n.memberNames))
	for roleIdx, ids := range n.roleMembers {
		for _, id := range ids {
			n.memberRoles[id] = append(n.memberRoles[id], roleIdx)
		}
	}
	return n
}

func (n *Normalized) internMember(name string) int {
	if id, ok := n.memberIDs[name]; ok {
		return id
	}
	id := len(n.memberNames)
	n.memberIDs[name] = id
	n.memberNames = append(n.memberNames, name)
	return id
}

// RoleCount returns the number of roles (unchanged by filtering).
func (n *Normalized) RoleCount() int {
	return len(n.roles)
}

// RoleName returns the name of the role at the given index.
func (n *Normalized) RoleName(i int) string {
	return n.roles[i].Name
}

// RoleIndex resolves a role name to its enumeration index.
func (n *Normalized) RoleIndex(name string) (int, bool) {
	target := strings.TrimSpace(name)
	for i, role := range n.roles {
		if role.Name == target {
			return i, true
		}
	}
	return 0, false
}

// Members returns the member ids of a role in filtered roster order.
func (n *Normalized) Members(role int) []int {
	ids := n.roleMembers[role]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// MemberCount returns how many members a role retains after filtering.
func (n *Normalized) MemberCount(role int) int {
	return len(n.roleMembers[role])
}

// MemberName maps an id back to the member's name.
func (n *Normalized) MemberName(id int) string {
	return n.memberNames[id]
}

// MemberID resolves a member name to its id.
func (n *Normalized) MemberID(name string) (int, bool) {
	id, ok := n.memberIDs[strings.TrimSpace(name)]
	return id, ok
}

// PresentCount returns how many distinct members remain after filtering.
func (n *Normalized) PresentCount() int {
	return len(n.memberNames)
}

// RolesOf returns the role indexes a member belongs to, in role order.
func (n *Normalized) RolesOf(member int) []int {
	if member < 0 || member >= len(n.memberRoles) {
		return nil
	}
	roles := n.memberRoles[member]
	out := make([]int, len(roles))
	copy(out, roles)
	return out
}
