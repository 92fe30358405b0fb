package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"opsdeck.io/internal/authz"
)

// defaultNav is the console sidebar. Dashboard is unrestricted; every other
// entry unlocks with the full capability or its own-scoped variant. The
// roles entry really is spelled with a capital R on the server.
func defaultNav() []authz.NavEntry {
	return []authz.NavEntry{
		{Label: "Dashboard", Path: "/"},
		{Label: "Companies", Path: "/companies", Capabilities: []authz.Capability{"view companies", "view own companies"}},
		{Label: "Users", Path: "/users", Capabilities: []authz.Capability{"view users", "view own users"}},
		{Label: "Roles", Path: "/roles", Capabilities: []authz.Capability{"view Roles", "view own Roles"}},
		{Label: "Permissions", Path: "/permissions", Capabilities: []authz.Capability{"view permissions", "view own permissions"}},
		{Label: "Teams", Path: "/teams", Capabilities: []authz.Capability{"view teams", "view own teams"}},
		{Label: "Projects", Path: "/projects", Capabilities: []authz.Capability{"view projects", "view own projects"}},
		{Label: "Tickets", Path: "/tickets", Capabilities: []authz.Capability{"view tickets", "view own tickets"}},
		{Label: "Contracts", Path: "/contracts", Capabilities: []authz.Capability{"view contracts", "view own contracts"}},
		{Label: "Invoices", Path: "/invoices", Capabilities: []authz.Capability{"view invoices", "view own invoices"}},
	}
}

var navCmd = &cobra.Command{
	Use:   "nav",
	Short: "Show the navigation entries visible to the current user",
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

		p, _ := a.session.Principal()
		for _, e := range authz.VisibleEntries(p.PermissionSet(), defaultNav()) {
			fmt.Printf("%-14s %s\n", e.Label, e.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(navCmd)
}
