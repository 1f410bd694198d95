package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"whoseonfirst/internal/app"
	"whoseonfirst/internal/domain/notification"
	"whoseonfirst/internal/domain/roster"
)

// NotifyCmd sends a shift alert outside the scheduled jobs.
func NotifyCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify [assignment_id]",
		Short: "Send shift alerts manually",
		Long: `Without arguments, dispatches alerts for every unnotified shift
starting today, exactly like the daily job. With an assignment id, sends
that assignment's alert regardless of prior sends.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				day, _ := cmd.Flags().GetString("date")
				target, err := parseDay(day, a.Cfg.Location())
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				batch, err := a.Dispatch.DispatchPending(a.Ctx, target)
				if err != nil {
					return err
				}
				fmt.Printf("Dispatched %d, skipped %d already notified, %d failed\n",
					len(batch.Reports), batch.Skipped, len(batch.Failed))
				for _, report := range batch.Reports {
					printReport(report)
				}
				return nil
			}

			assignmentID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("assignment id must be a number: %w", err)
			}
			report, err := a.Dispatch.Dispatch(a.Ctx, assignmentID, notification.CategoryManual)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}
	cmd.Flags().String("date", "", "Day to dispatch for, YYYY-MM-DD (default: today)")
	return cmd
}

// DigestCmd sends the weekly schedule summary to the escalation contacts.
func DigestCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the weekly schedule digest now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weekRaw, _ := cmd.Flags().GetString("week")

			var weekStart time.Time
			var err error
			if weekRaw == "" {
				weekStart = app.DigestWeekStart(time.Now().In(a.Cfg.Location()))
			} else if weekStart, err = weekOf(weekRaw, a.Cfg.Location()); err != nil {
				return fmt.Errorf("invalid --week: %w", err)
			}

			results, err := a.Dispatch.DispatchWeeklyDigest(a.Ctx, weekStart)
			if err != nil {
				return err
			}
			fmt.Printf("Digest for week of %s:\n", weekStart.Format("2006-01-02"))
			for _, res := range results {
				printResult(res)
			}
			return nil
		},
	}
	cmd.Flags().String("week", "", "Week to summarize, YYYY-MM-DD (default: computed from today)")
	return cmd
}

func printReport(report app.DeliveryReport) {
	state := "FAILED"
	if report.Delivered() {
		state = "delivered"
	}
	suffix := ""
	if report.Overridden {
		suffix = " (override)"
	}
	fmt.Printf("assignment %d -> %s%s: %s\n", report.AssignmentID, report.Recipient, suffix, state)
	for _, res := range report.Results {
		printResult(res)
	}
}

func printResult(res app.AddressResult) {
	if res.Err != nil {
		fmt.Printf("  %s: %s after %d tries (%v)\n", roster.MaskPhone(res.Address), res.Outcome, res.Tries, res.Err)
		return
	}
	fmt.Printf("  %s: %s after %d tries\n", roster.MaskPhone(res.Address), res.Outcome, res.Tries)
}
