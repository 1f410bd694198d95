package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"whoseonfirst/internal/domain/override"
)

// OverrideCmd groups shift substitution subcommands.
func OverrideCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Substitute who covers a scheduled shift",
	}
	cmd.AddCommand(overrideCreateCmd(a))
	cmd.AddCommand(overrideCancelCmd(a))
	cmd.AddCommand(overrideListCmd(a))
	return cmd
}

func overrideCreateCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <assignment_id> <member_id>",
		Short: "Put a substitute on an assignment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignmentID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("assignment id must be a number: %w", err)
			}
			memberID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("member id must be a number: %w", err)
			}
			reason, _ := cmd.Flags().GetString("reason")
			createdBy, _ := cmd.Flags().GetString("by")

			created, err := a.Override.Create(a.Ctx, assignmentID, memberID, reason, createdBy)
			if err != nil {
				return err
			}
			fmt.Printf("Override %d created: %s covers for %s on assignment %d\n",
				created.ID, created.OverrideMemberName, created.OriginalMemberName, created.AssignmentID)
			return nil
		},
	}
	cmd.Flags().String("reason", "", "Why the substitution is needed")
	cmd.Flags().String("by", "cli", "Who requested the substitution")
	return cmd
}

func overrideCancelCmd(a *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <override_id>",
		Short: "Cancel an active override, restoring the original assignee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrideID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("override id must be a number: %w", err)
			}
			if err := a.Override.Cancel(a.Ctx, overrideID); err != nil {
				return err
			}
			fmt.Printf("Override %d cancelled\n", overrideID)
			return nil
		},
	}
}

func overrideListCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List overrides for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromRaw, _ := cmd.Flags().GetString("from")
			weeks, _ := cmd.Flags().GetInt("weeks")
			status, _ := cmd.Flags().GetString("status")

			var list []*override.Override
			var err error
			if status != "" {
				list, err = a.Overrides.ListByStatus(a.Ctx, override.Status(status))
			} else {
				var from time.Time
				if from, err = weekOf(fromRaw, a.Cfg.Location()); err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
				list, err = a.Override.ListByDateRange(a.Ctx, from, from.AddDate(0, 0, 7*weeks))
			}
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No overrides in range.")
				return nil
			}
			for _, o := range list {
				fmt.Printf("%6d  assignment %-6d  %-10s  %s covers for %s  (%s)\n",
					o.ID, o.AssignmentID, o.Status, o.OverrideMemberName, o.OriginalMemberName, o.Reason)
			}
			return nil
		},
	}
	cmd.Flags().String("from", "", "Week to start from, YYYY-MM-DD (default: this week)")
	cmd.Flags().Int("weeks", 4, "Number of weeks to list")
	cmd.Flags().String("status", "", "Filter by stored status (active, cancelled) instead of a date range")
	return cmd
}
