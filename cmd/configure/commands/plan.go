package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkahn/rundash/internal/models"
	"github.com/rkahn/rundash/internal/validation"
)

// NewPlanCmd creates the plan command with list, set, and clear subcommands.
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage the weekly training plan",
		Long:  "List, replace, or clear the remaining-work plan the coach speaks to",
	}
	cmd.AddCommand(newPlanListCmd())
	cmd.AddCommand(newPlanSetCmd())
	cmd.AddCommand(newPlanClearCmd())
	return cmd
}

func newPlanListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the current training plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := openSettings()
			if err != nil {
				return err
			}
			s, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			if len(s.Plan) == 0 {
				fmt.Println("No training plan set. Use 'plan set' to add one.")
				return nil
			}
			fmt.Println("Training plan:")
			for _, item := range s.Plan {
				fmt.Printf("  %s: %d remaining\n", item.Type, item.Count)
				if item.Notes != "" {
					fmt.Printf("    %s\n", item.Notes)
				}
			}
			fmt.Printf("Total remaining: %d\n", models.PlanTotal(s.Plan))
			return nil
		},
	}
}

func newPlanSetCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the training plan from a JSON file",
		Long:  `Replace the plan with the contents of a JSON file: [{"type": "Tempo Run", "count": 1}, ...]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read plan file: %w", err)
			}
			var plan []models.PlanItem
			if err := json.Unmarshal(data, &plan); err != nil {
				return fmt.Errorf("parse plan file: %w", err)
			}
			for _, item := range plan {
				if err := validation.Validate.Struct(item); err != nil {
					return fmt.Errorf("invalid plan item %q: %w", item.Type, err)
				}
			}

			settings, err := openSettings()
			if err != nil {
				return err
			}
			s, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			s.Plan = plan
			if err := settings.Save(s); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			fmt.Printf("Training plan updated (%d items).\n", len(plan))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the plan JSON file (required)")
	return cmd
}

func newPlanClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the training plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := openSettings()
			if err != nil {
				return err
			}
			s, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			s.Plan = nil
			if err := settings.Save(s); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			fmt.Println("Training plan cleared.")
			return nil
		},
	}
}
