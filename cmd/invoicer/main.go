// Command invoicer serves the invoice API and runs maintenance tasks
// against its database.
package main

import (
	"fmt"
	"os"

	"github.com/diewo77/invoice-manager/auth"
	"github.com/diewo77/invoice-manager/internal/config"
	"github.com/diewo77/invoice-manager/internal/db"
	"github.com/diewo77/invoice-manager/internal/export"
	"github.com/diewo77/invoice-manager/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is the configuration shared by every subcommand, loaded once before
// the subcommand runs.
type env struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "invoicer",
		Short:         "Invoice management API and tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load environment variables from .env file
			_ = godotenv.Load()
			e.cfg = config.Load()
			if err := logger.Setup(e.cfg.Log, cmd.ErrOrStderr()); err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			auth.SetSecret(e.cfg.App.SessionSecret)
			return nil
		},
	}
	root.AddCommand(
		newServeCmd(e),
		newMigrateCmd(e),
		newSeedCmd(e),
		newExportCmd(e),
		newInspectCmd(),
	)
	return root
}

// open connects and applies migrations in the configured mode.
func (e *env) open(mode string) (*gorm.DB, error) {
	conn, err := db.Open(e.cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := e.migrate(conn, mode); err != nil {
		return nil, err
	}
	return conn, nil
}

func (e *env) migrate(conn *gorm.DB, mode string) error {
	log := logger.WithComponent("migrate")
	switch mode {
	case "off":
		return nil
	case "sql":
		if e.cfg.Database.Driver == "sqlite" {
			return fmt.Errorf("sql migrations target postgres; use auto with sqlite")
		}
		if err := db.MigrateSQL(e.cfg.Database.ConnString(), e.cfg.App.MigrationsDir); err != nil {
			return err
		}
	case "auto", "":
		if err := db.Migrate(conn); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown migrations mode %q", mode)
	}
	log.Info().Str("mode", mode).Msg("migrations applied")
	return nil
}

// layoutFromConfig applies the configured overrides to the default PDF layout.
func layoutFromConfig(c config.ExportConfig) export.Layout {
	l := export.DefaultLayout()
	if c.PageSize != "" {
		l.PageSize = c.PageSize
	}
	if c.RowHeight > 0 {
		l.RowHeight = c.RowHeight
	}
	return l
}
