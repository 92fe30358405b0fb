package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"opsdeck.io/internal/authz"
	"opsdeck.io/internal/entity"
)

var assignCmd = &cobra.Command{
	Use:   "assign <projects|tickets> <id> [user-id]",
	Short: "Assign a record to an agent; omit user-id to take it yourself",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(); err != nil {
			return err
		}

		name := args[0]
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		p, _ := a.session.Principal()
		caps := p.PermissionSet()
		assignCap := authz.Capability("assign " + name)

		var userID int
		if len(args) == 3 {
			userID, err = strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[2])
			}
			if !authz.CanShowAction(caps, assignCap) {
				return fmt.Errorf("access denied: missing %q", assignCap)
			}
		} else {
			// Self-assignment needs the Agent role on top of the permission.
			if !authz.CanSelfAssign(p.Roles, caps, assignCap) {
				return fmt.Errorf("self-assign requires the %s role and %q", authz.RoleAgent, assignCap)
			}
			userID = p.ID
		}

		switch name {
		case "projects":
			rec, err := a.registry.Projects.Assign(cmd.Context(), id, userID)
			if err != nil {
				return err
			}
			fmt.Printf("Project %d assigned to %s.\n", rec.ID, assigneeName(rec.AssignedTo, userID))
		case "tickets":
			rec, err := a.registry.Tickets.Assign(cmd.Context(), id, userID)
			if err != nil {
				return err
			}
			fmt.Printf("Ticket %d assigned to %s.\n", rec.ID, assigneeName(rec.AssignedTo, userID))
		default:
			return fmt.Errorf("assign works on projects and tickets, not %q", name)
		}
		return nil
	},
}

func assigneeName(a *entity.Assignee, id int) string {
	if a != nil && a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("user %d", id)
}

var membersSet string

var membersCmd = &cobra.Command{
	Use:   "members <team-id>",
	Short: "Show or replace a team's members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(); err != nil {
			return err
		}

		teamID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid team id %q", args[0])
		}

		if membersSet == "" {
			members, err := a.registry.Teams.MembersFor(cmd.Context(), teamID)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Println("No members.")
				return nil
			}
			for _, m := range members {
				fmt.Printf("%6d  %s <%s>\n", m.ID, m.Name, m.Email)
			}
			return nil
		}

		p, _ := a.session.Principal()
		if !authz.CanShowAction(p.PermissionSet(), "edit teams") {
			return fmt.Errorf("access denied: missing %q", authz.Capability("edit teams"))
		}
		var ids []int
		for _, part := range strings.Split(membersSet, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("invalid member id %q", part)
			}
			ids = append(ids, id)
		}
		members, err := a.registry.Teams.UpdateMembers(cmd.Context(), teamID, ids)
		if err != nil {
			return err
		}
		fmt.Printf("Team %d now has %d members.\n", teamID, len(members))
		return nil
	},
}

func init() {
	membersCmd.Flags().StringVar(&membersSet, "set", "", "comma-separated user ids replacing the membership")
	rootCmd.AddCommand(assignCmd, membersCmd)
}
