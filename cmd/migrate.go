package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tastetrail/tastetrail/pkg/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply pending database migrations.

Migrations are embedded SQL files applied in filename order, each in its own
transaction, and recorded in the schema_migrations table. Already-applied
migrations are skipped, so migrate is safe to run repeatedly.

Examples:
  tastetrail migrate
  TT_DB_HOST=db.internal tastetrail migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if err := db.Migrate(cmd.Context(), rt.pool); err != nil {
				return fmt.Errorf("applying migrations: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}
