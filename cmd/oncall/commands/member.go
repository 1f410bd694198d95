package commands

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"whoseonfirst/internal/domain/roster"
)

// MemberCmd groups roster management subcommands.
func MemberCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage the on-call roster",
	}
	cmd.AddCommand(memberAddCmd(a))
	cmd.AddCommand(memberListCmd(a))
	cmd.AddCommand(memberDeactivateCmd(a))
	cmd.AddCommand(memberActivateCmd(a))
	cmd.AddCommand(memberNextCmd(a))
	cmd.AddCommand(memberShiftsCmd(a))
	return cmd
}

func memberAddCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name> <phone>",
		Short: "Add an active member to the roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			secondary, _ := cmd.Flags().GetString("secondary")

			member := &roster.Member{Name: args[0], Phone: args[1], IsActive: true}
			if secondary != "" {
				member.SecondaryPhone = sql.NullString{String: secondary, Valid: true}
			}
			if err := a.Members.Create(a.Ctx, member); err != nil {
				return err
			}
			fmt.Printf("Member %d added: %s\n", member.ID, member.Name)
			return nil
		},
	}
	cmd.Flags().String("secondary", "", "Optional secondary phone number")
	return cmd
}

func memberListCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List roster members in rotation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")

			var members []roster.Member
			var err error
			if all {
				members, err = a.Members.ListAll(a.Ctx)
			} else {
				members, err = a.Members.ListActive(a.Ctx)
			}
			if err != nil {
				return err
			}
			for _, m := range roster.SortByID(members) {
				state := "active"
				if !m.IsActive {
					state = "inactive"
				}
				fmt.Printf("%4d  %-20s  %-15s  %s\n", m.ID, m.Name, roster.MaskPhone(m.Phone), state)
			}
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "Include deactivated members")
	return cmd
}

func memberDeactivateCmd(a *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Remove a member from rotation without deleting history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setMemberActive(a, args[0], false)
		},
	}
}

func memberActivateCmd(a *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Return a member to the rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setMemberActive(a, args[0], true)
		},
	}
}

func memberNextCmd(a *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next <id>",
		Short: "Show a member's next scheduled shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("member id must be a number: %w", err)
			}
			next, err := a.Assignments.NextForMember(a.Ctx, id, time.Now().In(a.Cfg.Location()))
			if err != nil {
				return err
			}
			fmt.Printf("%6d  %s  %2dh  %s\n",
				next.ID, next.StartAt.Format("Mon 2006-01-02 15:04"), next.DurationHours(), next.MemberName)
			return nil
		},
	}
}

func memberShiftsCmd(a *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shifts <id>",
		Short: "List a member's shifts over a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("member id must be a number: %w", err)
			}
			fromRaw, _ := cmd.Flags().GetString("from")
			weeks, _ := cmd.Flags().GetInt("weeks")
			from, err := weekOf(fromRaw, a.Cfg.Location())
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			shifts, err := a.Assignments.ListByMember(a.Ctx, id, from, from.AddDate(0, 0, 7*weeks))
			if err != nil {
				return err
			}
			if len(shifts) == 0 {
				fmt.Println("No shifts in range.")
				return nil
			}
			for _, s := range shifts {
				fmt.Printf("%6d  %s  %2dh\n", s.ID, s.StartAt.Format("Mon 2006-01-02 15:04"), s.DurationHours())
			}
			return nil
		},
	}
	cmd.Flags().String("from", "", "Week to start from, YYYY-MM-DD (default: this week)")
	cmd.Flags().Int("weeks", 4, "Number of weeks to list")
	return cmd
}

func setMemberActive(a *AppContext, rawID string, active bool) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("member id must be a number: %w", err)
	}
	member, err := a.Members.GetByID(a.Ctx, id)
	if err != nil {
		return err
	}
	member.IsActive = active
	if err := a.Members.Update(a.Ctx, member); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Printf("Member %d (%s) %s\n", member.ID, member.Name, state)
	return nil
}
