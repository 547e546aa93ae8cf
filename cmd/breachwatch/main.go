package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "breachwatch",
	Short: "BreachWatch — exposure reporting and invitation service",
	Long:  "BreachWatch is a companion service for a multi-tenant vault: it accepts exposed-credential reports from vault clients, issues organization invitations for new accounts, and serves per-user onboarding and exposure summaries.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/breachwatch.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
