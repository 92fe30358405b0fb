package entity

import (
	"opsdeck.io/internal/store"
)

// Registry wires every store to one gateway and connects the cross-store
// cache hooks: a user mutation drops the agent caches that may list a stale
// user, and reassigning a project drops the ticket assignee list derived
// from it.
type Registry struct {
	Companies   *store.Store[Company]
	Users       *Users
	Roles       *store.Store[Role]
	Permissions *store.Store[Permission]
	Teams       *Teams
	Projects    *Projects
	Tickets     *Tickets
	Contracts   *store.Store[Contract]
	Invoices    *store.Store[Invoice]
	Dashboard   *Dashboard
}

func NewRegistry(gw store.Doer) *Registry {
	r := &Registry{
		Companies:   NewCompanies(gw),
		Users:       NewUsers(gw),
		Roles:       NewRoles(gw),
		Permissions: NewPermissions(gw),
		Teams:       NewTeams(gw),
		Projects:    NewProjects(gw),
		Tickets:     NewTickets(gw),
		Contracts:   NewContracts(gw),
		Invoices:    NewInvoices(gw),
		Dashboard:   NewDashboard(gw),
	}
	r.Users.afterChange = func() {
		r.Teams.Agents.InvalidateAll()
		r.Projects.Agents.InvalidateAll()
		r.Tickets.Agents.InvalidateAll()
	}
	r.Projects.afterAssign = func(projectID int) {
		r.Tickets.Agents.Invalidate(projectID)
	}
	return r
}

// Names lists the entity slugs with a full CRUD store, in sidebar order.
func Names() []string {
	return []string{
		"companies", "users", "roles", "permissions",
		"teams", "projects", "tickets", "contracts", "invoices",
	}
}
