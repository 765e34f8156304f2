package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/invoice-manager/auth"
	"github.com/diewo77/invoice-manager/internal/logger"
	"github.com/diewo77/invoice-manager/internal/policy"
	"github.com/diewo77/invoice-manager/internal/services"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON API. Migrations run first according to MIGRATIONS
(auto, sql or off); DB_SEED=1 also loads the demo data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.serve(cmd.Context())
		},
	}
}

func (e *env) serve(ctx context.Context) error {
	log := logger.WithComponent("server")
	conn, err := e.open(e.cfg.App.Migrations)
	if err != nil {
		return err
	}
	if e.cfg.App.Seed {
		if _, err := services.SeedDemo(ctx, conn, time.Now()); err != nil {
			return err
		}
		log.Info().Str("email", services.DemoEmail).Msg("demo data seeded")
	}

	routerCfg := policy.NewRouterConfig(conn, layoutFromConfig(e.cfg.Export))
	// Sessions of deleted users stop working immediately.
	auth.SetUserVerifier(routerCfg.UserService.Exists)

	srv := &http.Server{
		Addr:         ":" + e.cfg.Server.Port,
		Handler:      logger.Middleware(NewApp(conn, routerCfg)),
		ReadTimeout:  time.Duration(e.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(e.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(e.cfg.Server.IdleTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", e.cfg.Server.Port).Bool("dev", e.cfg.App.Dev).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}
