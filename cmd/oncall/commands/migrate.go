package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	idb "whoseonfirst/internal/infra/database"
)

// MigrateCmd applies pending database migrations.
func MigrateCmd(a *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := idb.RunMigrations(a.Ctx, a.DB); err != nil {
				return err
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}
}
