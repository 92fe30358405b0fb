package entity

import (
	"context"
	"fmt"
	"net/http"

	"opsdeck.io/internal/store"
)

// Team groups users inside one company.
type Team struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Company *Ref   `json:"company,omitempty"`
}

func (t Team) RecordID() int { return t.ID }

// Teams carries two scoped caches next to the store: the assignable agents
// of each company (for the member picker) and the resolved members of each
// team. Filling either never touches the store's primary status.
type Teams struct {
	*store.Store[Team]
	gw store.Doer

	Agents  *store.ScopedCache[int, User]
	Members *store.ScopedCache[int, User]
}

func NewTeams(gw store.Doer) *Teams {
	return &Teams{
		Store: store.New[Team](gw, store.Config{
			Name:     "teams",
			Path:     "/teams",
			ListKeys: []string{"teams", "data"},
			ItemKeys: []string{"team", "data"},
		}),
		gw:      gw,
		Agents:  store.NewScopedCache[int, User](),
		Members: store.NewScopedCache[int, User](),
	}
}

// AgentsFor lists the users assignable within a company, cached per company.
// The endpoint is a POST that takes the company in the query string.
func (t *Teams) AgentsFor(ctx context.Context, companyID int) ([]User, error) {
	return t.Agents.Get(companyID, func() ([]User, error) {
		raw, err := t.gw.Do(ctx, http.MethodPost, fmt.Sprintf("/agents?company_id=%d", companyID), nil)
		if err != nil {
			return nil, err
		}
		return store.UnwrapList[User](raw, []string{"data"})
	})
}

// MembersFor lists a team's members, cached per team.
func (t *Teams) MembersFor(ctx context.Context, teamID int) ([]User, error) {
	return t.Members.Get(teamID, func() ([]User, error) {
		raw, err := t.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/teams/%d/members", teamID), nil)
		if err != nil {
			return nil, err
		}
		return store.UnwrapList[User](raw, []string{"members", "data"})
	})
}

// UpdateMembers replaces a team's membership. The server returns the new
// authoritative member list, which overwrites the cached entry directly.
// Membership updates tunnel through POST with a method override field.
func (t *Teams) UpdateMembers(ctx context.Context, teamID int, memberIDs []int) ([]User, error) {
	raw, err := t.gw.Do(ctx, http.MethodPost, fmt.Sprintf("/teams/%d/members", teamID),
		map[string]any{"_method": "PUT", "members": memberIDs})
	if err != nil {
		return nil, err
	}
	members, err := store.UnwrapList[User](raw, []string{"members", "data"})
	if err != nil {
		return nil, err
	}
	t.Members.Put(teamID, members)
	return members, nil
}

// Delete drops the team and its cached member list.
func (t *Teams) Delete(ctx context.Context, id int) error {
	if err := t.Store.Delete(ctx, id); err != nil {
		return err
	}
	t.Members.Invalidate(id)
	return nil
}
