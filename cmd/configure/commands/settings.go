package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rkahn/rundash/internal/config"
	"github.com/rkahn/rundash/internal/store"
)

// openSettings loads config and returns the settings store it points at.
func openSettings() (*store.SettingsStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return store.NewSettingsStore(filepath.Join(cfg.DataDir, "settings.json")), nil
}

// NewSettingsCmd creates the settings command with list and set subcommands.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage user settings",
		Long:  "List or update the weekly goal, VO2max estimate, and shoe retirement mileage",
	}
	cmd.AddCommand(newSettingsListCmd())
	cmd.AddCommand(newSettingsSetCmd())
	return cmd
}

func newSettingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := openSettings()
			if err != nil {
				return err
			}
			s, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			fmt.Println("Settings:")
			fmt.Printf("  Weekly goal: %.1f mi\n", s.GoalMi)
			fmt.Printf("  VO2max: %.1f\n", s.VO2)
			if len(s.ShoeMaxMiles) > 0 {
				fmt.Println("  Shoe retirement mileage:")
				for shoe, miles := range s.ShoeMaxMiles {
					fmt.Printf("    %s: %.0f mi\n", shoe, miles)
				}
			}
			if len(s.Plan) > 0 {
				fmt.Println("  Training plan:")
				for _, item := range s.Plan {
					fmt.Printf("    %s: %d remaining\n", item.Type, item.Count)
				}
			}
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var goalMi float64
	var vo2 float64

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update settings",
		Long:  "Update the weekly mileage goal and/or VO2max estimate",
		RunE: func(cmd *cobra.Command, args []string) error {
			if goalMi == 0 && vo2 == 0 {
				return fmt.Errorf("nothing to set; pass --goal and/or --vo2")
			}
			if goalMi < 0 {
				return fmt.Errorf("--goal must be positive")
			}
			if vo2 < 0 {
				return fmt.Errorf("--vo2 must be positive")
			}

			settings, err := openSettings()
			if err != nil {
				return err
			}
			s, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			if goalMi > 0 {
				s.GoalMi = goalMi
			}
			if vo2 > 0 {
				s.VO2 = vo2
			}
			if err := settings.Save(s); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			fmt.Println("Settings updated.")
			return nil
		},
	}

	cmd.Flags().Float64Var(&goalMi, "goal", 0, "Weekly mileage goal in miles")
	cmd.Flags().Float64Var(&vo2, "vo2", 0, "VO2max estimate")
	return cmd
}
