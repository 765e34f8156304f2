package main

import (
	"github.com/diewo77/invoice-manager/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(e *env) *cobra.Command {
	var sql bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date and exit",
		Long: `Bring the database schema up to date. By default the gorm models are
auto-migrated; --sql applies the versioned files in MIGRATIONS_DIR with
golang-migrate instead (postgres only).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := "auto"
			if sql {
				mode = "sql"
			}
			conn, err := db.Open(e.cfg.Database)
			if err != nil {
				return err
			}
			return e.migrate(conn, mode)
		},
	}
	cmd.Flags().BoolVar(&sql, "sql", false, "apply versioned SQL migrations")
	return cmd
}
