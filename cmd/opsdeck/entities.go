package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"opsdeck.io/internal/authz"
	"opsdeck.io/internal/entity"
	"opsdeck.io/internal/guard"
	"opsdeck.io/internal/session"
)

// row is one printed list line.
type row struct {
	ID    int
	Label string
}

// viewCapability maps an entity slug onto its view permission, preserving
// the server's capitalized roles quirk.
func viewCapability(name string) authz.Capability {
	if name == "roles" {
		return "view Roles"
	}
	return authz.Capability("view " + name)
}

// checkRoute runs the navigation guard for an entity listing and converts
// the decision into command behavior: anonymous users are told to log in,
// authenticated users without the capability get access denied.
func checkRoute(sess *session.Session, caps authz.Set, name string) error {
	d := guard.Evaluate(sess.State(), caps, guard.Route{
		Path:     "/" + name,
		Required: []authz.Capability{viewCapability(name)},
	})
	switch d.Action {
	case guard.RedirectLogin:
		return fmt.Errorf("not logged in; run: opsdeck login <email> (then retry %s)", d.Origin)
	case guard.AccessDenied:
		return fmt.Errorf("access denied: missing %q", viewCapability(name))
	}
	return nil
}

// fetchRows loads and scope-filters one entity's list. The distinction the
// UI cares about survives here: an empty result under ScopeOwn is "no
// records of yours", not "no permission".
func fetchRows(ctx context.Context, a *app, name string, principalID int, scope authz.Scope) ([]row, error) {
	reg := a.registry
	switch name {
	case "companies":
		if err := reg.Companies.FetchAll(ctx); err != nil {
			return nil, err
		}
		return toRows(reg.Companies.Items(), func(c entity.Company) row { return row{c.ID, c.Name} }), nil
	case "users":
		if err := reg.Users.FetchAll(ctx); err != nil {
			return nil, err
		}
		return toRows(reg.Users.Items(), func(u entity.User) row { return row{u.ID, u.Name + " <" + u.Email + ">"} }), nil
	case "roles":
		if err := reg.Roles.FetchAll(ctx); err != nil {
			return nil, err
		}
		return toRows(reg.Roles.Items(), func(r entity.Role) row { return row{r.ID, r.Name} }), nil
	case "permissions":
		if err := reg.Permissions.FetchAll(ctx); err != nil {
			return nil, err
		}
		return toRows(reg.Permissions.Items(), func(p entity.Permission) row { return row{p.ID, p.Name} }), nil
	case "teams":
		if err := reg.Teams.FetchAll(ctx); err != nil {
			return nil, err
		}
		return toRows(reg.Teams.Items(), func(t entity.Team) row { return row{t.ID, t.Name} }), nil
	case "projects":
		if err := reg.Projects.FetchAll(ctx); err != nil {
			return nil, err
		}
		visible := authz.Visible(scope, entity.Project.OwnerID, principalID, reg.Projects.Items())
		return toRows(visible, func(p entity.Project) row { return row{p.ID, p.Title} }), nil
	case "tickets":
		if err := reg.Tickets.FetchAll(ctx); err != nil {
			return nil, err
		}
		visible := authz.Visible(scope, entity.Ticket.OwnerID, principalID, reg.Tickets.Items())
		return toRows(visible, func(t entity.Ticket) row { return row{t.ID, t.Title} }), nil
	case "contracts":
		if err := reg.Contracts.FetchAll(ctx); err != nil {
			return nil, err
		}
		visible := authz.Visible(scope, entity.Contract.OwnerID, principalID, reg.Contracts.Items())
		return toRows(visible, func(c entity.Contract) row { return row{c.ID, c.Name} }), nil
	case "invoices":
		if err := reg.Invoices.FetchAll(ctx); err != nil {
			return nil, err
		}
		visible := authz.Visible(scope, entity.Invoice.OwnerID, principalID, reg.Invoices.Items())
		return toRows(visible, func(i entity.Invoice) row { return row{i.ID, i.Number} }), nil
	}
	return nil, fmt.Errorf("unknown entity %q (one of: %v)", name, entity.Names())
}

func toRows[T any](items []T, f func(T) row) []row {
	out := make([]row, 0, len(items))
	for _, it := range items {
		out = append(out, f(it))
	}
	return out
}

var listCmd = &cobra.Command{
	Use:       "list <entity>",
	Short:     "List records of one entity, filtered to what you may see",
	Args:      cobra.ExactArgs(1),
	ValidArgs: entity.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		name := args[0]
		p, _ := a.session.Principal()
		caps := p.PermissionSet()
		if err := checkRoute(a.session, caps, name); err != nil {
			return err
		}

		scope := authz.ScopeFor(caps, viewCapability(name))
		rows, err := fetchRows(cmd.Context(), a, name, p.ID, scope)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			if scope == authz.ScopeOwn {
				fmt.Printf("No %s assigned to you.\n", name)
			} else {
				fmt.Printf("No %s found.\n", name)
			}
			return nil
		}
		for _, r := range rows {
			fmt.Printf("%6d  %s\n", r.ID, r.Label)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <entity> <id>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		name := args[0]
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		p, _ := a.session.Principal()
		if err := checkRoute(a.session, p.PermissionSet(), name); err != nil {
			return err
		}

		rec, err := fetchOne(cmd.Context(), a, name, id)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func fetchOne(ctx context.Context, a *app, name string, id int) (any, error) {
	reg := a.registry
	switch name {
	case "companies":
		return reg.Companies.FetchOne(ctx, id)
	case "users":
		return reg.Users.FetchOne(ctx, id)
	case "roles":
		return reg.Roles.FetchOne(ctx, id)
	case "permissions":
		return reg.Permissions.FetchOne(ctx, id)
	case "teams":
		return reg.Teams.FetchOne(ctx, id)
	case "projects":
		return reg.Projects.FetchOne(ctx, id)
	case "tickets":
		return reg.Tickets.FetchOne(ctx, id)
	case "contracts":
		return reg.Contracts.FetchOne(ctx, id)
	case "invoices":
		return reg.Invoices.FetchOne(ctx, id)
	}
	return nil, fmt.Errorf("unknown entity %q (one of: %v)", name, entity.Names())
}

var deleteCmd = &cobra.Command{
	Use:   "delete <entity> <id>",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		name := args[0]
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		if err := a.requireAuth(); err != nil {
			return err
		}
		p, _ := a.session.Principal()
		deleteCap := authz.Capability("delete " + name)
		if !authz.CanShowAction(p.PermissionSet(), deleteCap) {
			return fmt.Errorf("access denied: missing %q", deleteCap)
		}

		if err := deleteOne(cmd.Context(), a, name, id); err != nil {
			return err
		}
		fmt.Printf("Deleted %s %d.\n", name, id)
		return nil
	},
}

func deleteOne(ctx context.Context, a *app, name string, id int) error {
	reg := a.registry
	switch name {
	case "companies":
		return reg.Companies.Delete(ctx, id)
	case "users":
		return reg.Users.Delete(ctx, id)
	case "roles":
		return reg.Roles.Delete(ctx, id)
	case "teams":
		return reg.Teams.Delete(ctx, id)
	case "projects":
		return reg.Projects.Delete(ctx, id)
	case "tickets":
		return reg.Tickets.Delete(ctx, id)
	case "contracts":
		return reg.Contracts.Delete(ctx, id)
	case "invoices":
		return reg.Invoices.Delete(ctx, id)
	case "permissions":
		return fmt.Errorf("permissions are a read-only catalog")
	}
	return fmt.Errorf("unknown entity %q (one of: %v)", name, entity.Names())
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the landing-page stats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(); err != nil {
			return err
		}

		data, err := a.registry.Dashboard.Fetch(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s.\n", data.User.Name)
		keys := make([]string, 0, len(data.Stats))
		for k := range data.Stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%-12s %d\n", k, data.Stats[k])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd, deleteCmd, dashboardCmd)
}
