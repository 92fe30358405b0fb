package entity

import "opsdeck.io/internal/store"

// Role is a named bundle of permissions.
type Role struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

func (r Role) RecordID() int { return r.ID }

// Permission is one grantable capability string. The catalog is read-only;
// permissions are defined server-side and only listed here.
type Permission struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (p Permission) RecordID() int { return p.ID }

func NewRoles(gw store.Doer) *store.Store[Role] {
	return store.New[Role](gw, store.Config{
		Name:     "roles",
		Path:     "/roles",
		ListKeys: []string{"roles", "data"},
		ItemKeys: []string{"role", "data"},
	})
}

func NewPermissions(gw store.Doer) *store.Store[Permission] {
	return store.New[Permission](gw, store.Config{
		Name:     "permissions",
		Path:     "/permissions",
		ListKeys: []string{"permissions", "data"},
		ItemKeys: []string{"permission", "data"},
	})
}
