package entity

import (
	"context"
	"fmt"
	"net/http"

	"opsdeck.io/internal/store"
)

// User is a console account: roles name what the user is, permissions name
// what the user may do. The two are granted independently.
type User struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Roles       []Ref    `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Company     *Ref     `json:"company,omitempty"`
}

func (u User) RecordID() int { return u.ID }

// RoleNames flattens the role references for membership checks.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Users adds the permission-grant operation on top of plain CRUD.
type Users struct {
	*store.Store[User]
	gw store.Doer

	// afterChange runs after any successful user mutation; the registry uses
	// it to drop agent caches that may now list a stale user.
	afterChange func()
}

func NewUsers(gw store.Doer) *Users {
	return &Users{
		Store: store.New[User](gw, store.Config{
			Name:     "users",
			Path:     "/users",
			ListKeys: []string{"users", "data"},
			ItemKeys: []string{"user", "data"},
		}),
		gw: gw,
	}
}

// UpdatePermissions replaces a user's direct permission grants. The server's
// returned user record flows through the usual update rule so list and
// detail stay in step.
func (u *Users) UpdatePermissions(ctx context.Context, id int, permissions []string) (User, error) {
	raw, err := u.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/users/%d/permissions", id),
		map[string]any{"permissions": permissions})
	if err != nil {
		return User{}, err
	}
	rec, err := store.UnwrapItem[User](raw, []string{"user", "data"})
	if err != nil {
		return User{}, err
	}
	u.ApplyUpdate(rec)
	u.notifyChange()
	return rec, nil
}

func (u *Users) Create(ctx context.Context, payload any) (User, error) {
	rec, err := u.Store.Create(ctx, payload)
	if err == nil {
		u.notifyChange()
	}
	return rec, err
}

func (u *Users) Update(ctx context.Context, id int, payload any) (User, error) {
	rec, err := u.Store.Update(ctx, id, payload)
	if err == nil {
		u.notifyChange()
	}
	return rec, err
}

func (u *Users) Delete(ctx context.Context, id int) error {
	err := u.Store.Delete(ctx, id)
	if err == nil {
		u.notifyChange()
	}
	return err
}

func (u *Users) notifyChange() {
	if u.afterChange != nil {
		u.afterChange()
	}
}
