package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "opsdeck",
	Short: "Opsdeck operations console client",
	Long:  "Opsdeck is a terminal client for the operations console API: companies, users, roles, teams, projects, tickets, contracts and invoices, with the same authorization rules the web console enforces.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.opsdeck/config.yaml)")
}

func main() {
	// Local .env is optional; real environments set variables directly.
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
