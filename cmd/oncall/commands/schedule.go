package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"whoseonfirst/internal/domain/schedule"
)

// GenerateCmd materializes a fresh block of assignments.
func GenerateCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate on-call assignments for the coming weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			cycles, _ := cmd.Flags().GetInt("cycles")
			force, _ := cmd.Flags().GetBool("force")
			if cycles == 0 {
				cycles = a.Cfg.HorizonCycles
			}

			from, err := parseDay(start, a.Cfg.Location())
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}

			created, err := a.Schedule.Generate(a.Ctx, from, cycles, force)
			if err != nil {
				return err
			}
			printAssignments(created)
			return nil
		},
	}
	cmd.Flags().String("start", "", "First week to generate, YYYY-MM-DD (default: this week)")
	cmd.Flags().Int("cycles", 0, "Number of weeks to generate (default: configured horizon)")
	cmd.Flags().Bool("force", false, "Regenerate even if assignments exist, refusing on notified or overridden shifts")
	return cmd
}

// RegenerateCmd rebuilds the schedule from a date forward.
func RegenerateCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate <from>",
		Short: "Rebuild the schedule from a date forward, keeping history intact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cycles, _ := cmd.Flags().GetInt("cycles")
			if cycles == 0 {
				cycles = a.Cfg.HorizonCycles
			}
			from, err := parseDay(args[0], a.Cfg.Location())
			if err != nil {
				return fmt.Errorf("invalid from date: %w", err)
			}

			created, err := a.Schedule.RegenerateFrom(a.Ctx, from, cycles)
			if err != nil {
				return err
			}
			printAssignments(created)
			return nil
		},
	}
	cmd.Flags().Int("cycles", 0, "Number of weeks to generate (default: configured horizon)")
	return cmd
}

// ShowCmd prints the schedule for a date range.
func ShowCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show upcoming assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromRaw, _ := cmd.Flags().GetString("from")
			weeks, _ := cmd.Flags().GetInt("weeks")

			from, err := weekOf(fromRaw, a.Cfg.Location())
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			assignments, err := a.Schedule.Upcoming(a.Ctx, from, from.AddDate(0, 0, 7*weeks))
			if err != nil {
				return err
			}
			if len(assignments) == 0 {
				fmt.Println("No assignments in range.")
				return nil
			}
			for _, assignment := range assignments {
				resolution, err := a.Override.EffectiveAssignee(a.Ctx, assignment.ID)
				if err != nil {
					return err
				}
				marker := ""
				if resolution.Overridden {
					marker = fmt.Sprintf(" (override, originally %s)", assignment.MemberName)
				}
				fmt.Printf("%6d  %s  %2dh  %s%s\n",
					assignment.ID,
					assignment.StartAt.Format("Mon 2006-01-02 15:04"),
					assignment.DurationHours(),
					resolution.MemberName,
					marker,
				)
			}
			return nil
		},
	}
	cmd.Flags().String("from", "", "Week to start from, YYYY-MM-DD (default: this week)")
	cmd.Flags().Int("weeks", 4, "Number of weeks to show")
	return cmd
}

func printAssignments(created []*schedule.Assignment) {
	fmt.Printf("Generated %d assignments:\n", len(created))
	for _, a := range created {
		fmt.Printf("%6d  %s  %2dh  %s\n",
			a.ID, a.StartAt.Format("Mon 2006-01-02 15:04"), a.DurationHours(), a.MemberName)
	}
}
