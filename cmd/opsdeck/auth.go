package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"opsdeck.io/internal/session"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate against the console API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		password := loginPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}

		if err := a.session.Login(cmd.Context(), args[0], password); err != nil {
			return fmt.Errorf("%s", a.session.LastError())
		}
		p, _ := a.session.Principal()
		fmt.Printf("Logged in as %s <%s>\n", p.Name, p.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear local state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		a.session.Logout(cmd.Context())
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated principal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if a.session.State() != session.StateAuthenticated {
			fmt.Println("Not logged in.")
			return nil
		}
		p, _ := a.session.Principal()
		fmt.Printf("%s <%s>\n", p.Name, p.Email)
		if len(p.Roles) > 0 {
			fmt.Printf("roles: %s\n", strings.Join(p.Roles, ", "))
		}
		if len(p.Permissions) > 0 {
			fmt.Printf("permissions: %s\n", strings.Join(p.Permissions, ", "))
		}
		if p.Company != nil {
			fmt.Printf("company: %s\n", p.Company.Name)
		}
		fmt.Printf("locale: %s (%s)\n", a.session.Locale(), a.session.TextDirection())
		return nil
	},
}

var localeCmd = &cobra.Command{
	Use:   "locale [en|ar]",
	Short: "Show or set the interface locale",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			fmt.Printf("%s (%s)\n", a.session.Locale(), a.session.TextDirection())
			return nil
		}
		if err := a.session.SetLocale(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Locale set to %s.\n", args[0])
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, localeCmd)
}
