package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"whoseonfirst/internal/app"
	"whoseonfirst/internal/domain/schedule"
	"whoseonfirst/internal/infra/scheduler"
)

const (
	jobDailyNotifications = "daily-shift-notifications"
	jobWeeklyDigest       = "weekly-escalation-digest"
	jobScheduleAutoRenew  = "schedule-auto-renew"
)

// ServeCmd runs the notification orchestrator until interrupted.
func ServeCmd(a *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduled notification jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := a.Cfg.Location()
			orch := scheduler.New(loc, a.Logger)

			err := orch.Register(jobDailyNotifications, a.Cfg.CronSpecDaily, func(ctx context.Context) error {
				batch, err := a.Dispatch.DispatchPending(ctx, time.Now().In(loc))
				if err != nil {
					return err
				}
				a.Logger.WithField("dispatched", len(batch.Reports)).
					WithField("skipped", batch.Skipped).
					Info("Daily notifications complete")
				return nil
			})
			if err != nil {
				return err
			}

			err = orch.Register(jobWeeklyDigest, a.Cfg.CronSpecDigest, func(ctx context.Context) error {
				weekStart := app.DigestWeekStart(time.Now().In(loc))
				_, err := a.Dispatch.DispatchWeeklyDigest(ctx, weekStart)
				return err
			})
			if err != nil {
				return err
			}

			if a.Cfg.AutoRenewEnabled {
				err = orch.Register(jobScheduleAutoRenew, a.Cfg.CronSpecAutoRenew, func(ctx context.Context) error {
					err := a.Schedule.AutoRenew(ctx, time.Now().In(loc))
					if err == app.ErrNothingToRenew {
						a.Logger.Warn("Auto renewal skipped, no schedule exists yet")
						return nil
					}
					return err
				})
				if err != nil {
					return err
				}
			}

			orch.Start()
			a.Logger.WithField("time_zone", a.Cfg.TimeZone).Info("Serving, press Ctrl+C to stop")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			orch.Stop()
			return nil
		},
	}
}

// parseDay parses a YYYY-MM-DD argument in the configured zone, or
// returns now when empty.
func parseDay(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Now().In(loc), nil
	}
	return time.ParseInLocation("2006-01-02", raw, loc)
}

// weekOf is parseDay normalized to the containing Monday.
func weekOf(raw string, loc *time.Location) (time.Time, error) {
	day, err := parseDay(raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.WeekStart(day), nil
}
