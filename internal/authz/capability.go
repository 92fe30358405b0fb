// Package authz decides what the authenticated principal may see and do. It
// is pure: every function is a lookup against the principal's resolved
// permission-string set, with no I/O and no stored state.
package authz

import "strings"

// Capability is a named allowed action, e.g. "view contracts" or "edit teams".
// The server resolves roles to a flat set of these strings; the client never
// performs a role→permission join.
type Capability string

// RoleAgent is the role name the self-assign actions additionally require.
const RoleAgent = "Agent"

// Set is a principal's resolved permission strings.
type Set map[Capability]struct{}

// NewSet builds a Set from the permission strings carried on the principal.
func NewSet(perms []string) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		s[Capability(p)] = struct{}{}
	}
	return s
}

// Allows reports exact membership of the capability.
func (s Set) Allows(c Capability) bool {
	_, ok := s[c]
	return ok
}

// CanShowAction gates mutating UI actions (add/edit/delete/assign buttons).
// Mutating capabilities have no "own" variant, so this is exact membership
// only.
func CanShowAction(s Set, c Capability) bool {
	return s.Allows(c)
}

// OwnVariant derives the scoped form of a view capability:
// "view contracts" → "view own contracts". It is defined only for
// capabilities of the "view X" shape; anything else reports ok=false.
func OwnVariant(c Capability) (Capability, bool) {
	const prefix = "view "
	str := string(c)
	if !strings.HasPrefix(str, prefix) {
		return "", false
	}
	rest := str[len(prefix):]
	if rest == "" || strings.HasPrefix(rest, "own ") {
		return "", false
	}
	return Capability(prefix + "own " + rest), true
}

// HasRole reports whether the role list carries the named role.
func HasRole(roles []string, name string) bool {
	for _, r := range roles {
		if r == name {
			return true
		}
	}
	return false
}

// CanSelfAssign gates the "assign to me" action on tickets and projects.
// The product requires the Agent role on top of the assign permission for
// these two actions; no other action couples a role check with a permission
// check, so the coupling lives here rather than at call sites.
func CanSelfAssign(roles []string, s Set, assign Capability) bool {
	return HasRole(roles, RoleAgent) && s.Allows(assign)
}
