package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkahn/rundash/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "rundash-configure",
		Short: "Configuration tool for the running dashboard",
		Long:  "CLI tool for inspecting and editing settings, the training plan, and run-type tags",
	}

	rootCmd.AddCommand(commands.NewSettingsCmd())
	rootCmd.AddCommand(commands.NewPlanCmd())
	rootCmd.AddCommand(commands.NewRunTypeCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
