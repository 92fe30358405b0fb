// Package entity instantiates the generic store for each record type the
// console manages and adds the per-entity operations that go beyond plain
// CRUD: membership updates, assignment, permission grants, and the scoped
// secondary caches that feed selection widgets.
package entity

import (
	"encoding/json"
)

// Ref is the embedded shape of a related record: enough to display and to
// link, nothing more.
type Ref struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Assignee is an assigned user reference. The API is inconsistent here:
// some responses carry the full user object, others just the bare id.
// Both decode into the same shape.
type Assignee struct {
	ID    int    `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (a *Assignee) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*a = Assignee{}
		return nil
	}
	if b[0] == '{' {
		type plain Assignee
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*a = Assignee(p)
		return nil
	}
	var id int
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	*a = Assignee{ID: id}
	return nil
}

// User returns the assignee as a selectable user.
func (a Assignee) User() User {
	return User{ID: a.ID, Name: a.Name, Email: a.Email}
}
