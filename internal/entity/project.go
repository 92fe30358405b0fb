package entity

import (
	"context"
	"fmt"
	"net/http"

	"opsdeck.io/internal/store"
)

// Project is a client engagement with at most one assigned agent.
type Project struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Deadline    string    `json:"deadline,omitempty"`
	Client      *Ref      `json:"client,omitempty"`
	AssignedTo  *Assignee `json:"assigned_to,omitempty"`
}

func (p Project) RecordID() int { return p.ID }

// OwnerID scopes a project to the client it belongs to.
func (p Project) OwnerID() int {
	if p.Client == nil {
		return 0
	}
	return p.Client.ID
}

// Projects adds assignment plus two scoped caches: assignable agents per
// company and the company's teams.
type Projects struct {
	*store.Store[Project]
	gw store.Doer

	Agents *store.ScopedCache[int, User]
	Teams  *store.ScopedCache[int, Team]

	// afterAssign runs after a successful assignment; the registry uses it
	// to drop derived caches keyed by this project.
	afterAssign func(projectID int)
}

func NewProjects(gw store.Doer) *Projects {
	return &Projects{
		Store: store.New[Project](gw, store.Config{
			Name:     "projects",
			Path:     "/projects",
			ListKeys: []string{"projects", "data"},
			ItemKeys: []string{"project", "data"},
		}),
		gw:     gw,
		Agents: store.NewScopedCache[int, User](),
		Teams:  store.NewScopedCache[int, Team](),
	}
}

// AgentsFor lists the users assignable within a company, cached per company.
// Unlike the teams variant, this endpoint takes the company in the body.
func (p *Projects) AgentsFor(ctx context.Context, companyID int) ([]User, error) {
	return p.Agents.Get(companyID, func() ([]User, error) {
		raw, err := p.gw.Do(ctx, http.MethodPost, "/agents", map[string]int{"company_id": companyID})
		if err != nil {
			return nil, err
		}
		return store.UnwrapList[User](raw, []string{"data"})
	})
}

// TeamsFor lists a company's teams, cached per company.
func (p *Projects) TeamsFor(ctx context.Context, companyID int) ([]Team, error) {
	return p.Teams.Get(companyID, func() ([]Team, error) {
		raw, err := p.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/teams?company_id=%d", companyID), nil)
		if err != nil {
			return nil, err
		}
		return store.UnwrapList[Team](raw, []string{"teams", "data"})
	})
}

// Assign sets the project's agent. The server's returned project record
// flows through the usual update rule.
func (p *Projects) Assign(ctx context.Context, projectID, userID int) (Project, error) {
	raw, err := p.gw.Do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/assign", projectID),
		map[string]int{"assigned_to": userID})
	if err != nil {
		return Project{}, err
	}
	rec, err := store.UnwrapItem[Project](raw, []string{"project", "data"})
	if err != nil {
		return Project{}, err
	}
	p.ApplyUpdate(rec)
	if p.afterAssign != nil {
		p.afterAssign(projectID)
	}
	return rec, nil
}
