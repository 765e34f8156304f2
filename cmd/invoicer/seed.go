package main

import (
	"fmt"
	"time"

	"github.com/diewo77/invoice-manager/internal/services"
	"github.com/spf13/cobra"
)

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := e.open(e.cfg.App.Migrations)
			if err != nil {
				return err
			}
			user, err := services.SeedDemo(cmd.Context(), conn, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "demo user %s (id %d), password %q\n", user.Email, user.ID, services.DemoPassword)
			return nil
		},
	}
}
