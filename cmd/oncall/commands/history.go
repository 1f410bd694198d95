package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"whoseonfirst/internal/domain/notification"
	"whoseonfirst/internal/domain/roster"
)

// HistoryCmd inspects the notification audit trail.
func HistoryCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [assignment_id]",
		Short: "Show recorded delivery attempts",
		Long: `With an assignment id, lists every delivery attempt for that
assignment. Without one, lists attempts in a date range, optionally
filtered by outcome (sent, failed, unknown).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var attempts []*notification.Attempt

			if len(args) == 1 {
				assignmentID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("assignment id must be a number: %w", err)
				}
				if attempts, err = a.Attempts.ListByAssignment(a.Ctx, assignmentID); err != nil {
					return err
				}
			} else {
				fromRaw, _ := cmd.Flags().GetString("from")
				weeks, _ := cmd.Flags().GetInt("weeks")
				outcome, _ := cmd.Flags().GetString("outcome")

				from, err := weekOf(fromRaw, a.Cfg.Location())
				if err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
				to := from.AddDate(0, 0, 7*weeks)
				if outcome != "" {
					attempts, err = a.Attempts.ListByOutcome(a.Ctx, notification.Outcome(outcome), from, to)
				} else {
					attempts, err = a.Attempts.ListByDateRange(a.Ctx, from, to)
				}
				if err != nil {
					return err
				}
			}

			if len(attempts) == 0 {
				fmt.Println("No attempts recorded.")
				return nil
			}
			for _, att := range attempts {
				assignment := "-"
				if att.AssignmentID.Valid {
					assignment = strconv.FormatInt(att.AssignmentID.Int64, 10)
				}
				detail := ""
				if att.ErrorDetail.Valid {
					detail = "  " + att.ErrorDetail.String
				}
				fmt.Printf("%6d  %s  %-13s  %-7s  %-7s  %s -> %s%s\n",
					att.ID, att.AttemptedAt.Format("2006-01-02 15:04:05"),
					att.Category, att.Outcome, assignment,
					att.Recipient, roster.MaskPhone(att.Address), detail)
			}
			return nil
		},
	}
	cmd.Flags().String("from", "", "Week to start from, YYYY-MM-DD (default: this week)")
	cmd.Flags().Int("weeks", 1, "Number of weeks to cover")
	cmd.Flags().String("outcome", "", "Filter by outcome (sent, failed, unknown)")
	return cmd
}
