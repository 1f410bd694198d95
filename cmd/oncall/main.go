package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"whoseonfirst/cmd/oncall/commands"
)

func main() {
	app := commands.New()

	rootCmd := &cobra.Command{
		Use:   "oncall",
		Short: "WhoseOnFirst - on-call rotation scheduling and SMS notifications",
		Long: `WhoseOnFirst manages a fair on-call rotation: it generates weekly
schedules, handles shift substitutions, and notifies members over SMS
when their shifts begin.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Init(context.Background())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.RegenerateCmd(app))
	rootCmd.AddCommand(commands.ShowCmd(app))
	rootCmd.AddCommand(commands.MemberCmd(app))
	rootCmd.AddCommand(commands.OverrideCmd(app))
	rootCmd.AddCommand(commands.NotifyCmd(app))
	rootCmd.AddCommand(commands.DigestCmd(app))
	rootCmd.AddCommand(commands.HistoryCmd(app))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
