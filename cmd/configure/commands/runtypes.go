package commands

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rkahn/rundash/internal/config"
	"github.com/rkahn/rundash/internal/store"
	"github.com/rkahn/rundash/internal/validation"
)

func openRunTypes() (*store.RunTypeStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return store.NewRunTypeStore(filepath.Join(cfg.DataDir, "runtypes.json")), nil
}

// NewRunTypeCmd creates the runtype command with list and set subcommands.
func NewRunTypeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runtype",
		Short: "Manage saved run-type tags",
		Long:  "List saved activity run-type tags, or tag an activity directly",
	}
	cmd.AddCommand(newRunTypeListCmd())
	cmd.AddCommand(newRunTypeSetCmd())
	return cmd
}

func newRunTypeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved run-type tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			runTypes, err := openRunTypes()
			if err != nil {
				return err
			}
			saved, err := runTypes.Load()
			if err != nil {
				return fmt.Errorf("load run types: %w", err)
			}
			if len(saved) == 0 {
				fmt.Println("No run-type tags saved.")
				return nil
			}

			ids := make([]string, 0, len(saved))
			for id := range saved {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			fmt.Println("Saved run-type tags:")
			for _, id := range ids {
				fmt.Printf("  %s: %s\n", id, saved[id])
			}
			return nil
		},
	}
}

func newRunTypeSetCmd() *cobra.Command {
	var activityID int64
	var label string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Tag an activity with a run type",
		Long:  "Tag a Strava activity with a run type label; an empty label clears the tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			if activityID == 0 {
				return fmt.Errorf("--activity is required")
			}
			label = validation.SanitizeText(label)
			if err := validation.ValidateRunType(label); err != nil {
				return fmt.Errorf("invalid run type: %w (valid: %v)", err, validation.RunTypeNames)
			}

			runTypes, err := openRunTypes()
			if err != nil {
				return err
			}
			if err := runTypes.Set(activityID, label); err != nil {
				return fmt.Errorf("save run type: %w", err)
			}
			if label == "" {
				fmt.Printf("Cleared run type for activity %d.\n", activityID)
			} else {
				fmt.Printf("Tagged activity %d as %q.\n", activityID, label)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&activityID, "activity", 0, "Strava activity ID (required)")
	cmd.Flags().StringVar(&label, "type", "", "Run type label; empty clears the tag")
	return cmd
}
