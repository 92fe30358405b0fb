package entity

import (
	"context"
	"fmt"
	"net/http"

	"opsdeck.io/internal/store"
)

// Ticket is a unit of support work inside a project.
type Ticket struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	Status      string    `json:"status,omitempty"`
	Project     *Ref      `json:"project,omitempty"`
	AssignedTo  *Assignee `json:"assigned_to,omitempty"`
}

func (t Ticket) RecordID() int { return t.ID }

// OwnerID scopes a ticket to the user it is assigned to. Projects scope by
// client instead; the difference is deliberate and matches how the product
// routes "own" views.
func (t Ticket) OwnerID() int {
	if t.AssignedTo == nil {
		return 0
	}
	return t.AssignedTo.ID
}

// Tickets adds assignment and the agents-per-project cache.
type Tickets struct {
	*store.Store[Ticket]
	gw store.Doer

	Agents *store.ScopedCache[int, User]
}

func NewTickets(gw store.Doer) *Tickets {
	return &Tickets{
		Store: store.New[Ticket](gw, store.Config{
			Name:     "tickets",
			Path:     "/tickets",
			ListKeys: []string{"tickets", "data"},
			ItemKeys: []string{"ticket", "data"},
		}),
		gw:     gw,
		Agents: store.NewScopedCache[int, User](),
	}
}

// AgentsFor lists the users a ticket in the project can be assigned to.
// There is no dedicated endpoint: the eligible set is the project's own
// assignee, so the list is derived from the project record and holds at
// most one entry.
func (t *Tickets) AgentsFor(ctx context.Context, projectID int) ([]User, error) {
	return t.Agents.Get(projectID, func() ([]User, error) {
		raw, err := t.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", projectID), nil)
		if err != nil {
			return nil, err
		}
		project, err := store.UnwrapItem[Project](raw, []string{"project", "data"})
		if err != nil {
			return nil, err
		}
		if project.AssignedTo == nil || project.AssignedTo.ID == 0 {
			return []User{}, nil
		}
		return []User{project.AssignedTo.User()}, nil
	})
}

// Assign sets the ticket's agent.
func (t *Tickets) Assign(ctx context.Context, ticketID, userID int) (Ticket, error) {
	raw, err := t.gw.Do(ctx, http.MethodPost, fmt.Sprintf("/tickets/%d/assign", ticketID),
		map[string]int{"assigned_to": userID})
	if err != nil {
		return Ticket{}, err
	}
	rec, err := store.UnwrapItem[Ticket](raw, []string{"ticket", "data"})
	if err != nil {
		return Ticket{}, err
	}
	t.ApplyUpdate(rec)
	return rec, nil
}
