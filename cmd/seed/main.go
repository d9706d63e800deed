// Command seed writes the admin account, the default organization and the
// built-in roles and permissions. It is safe to run repeatedly.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mwm/app/config"
	"github.com/dmitrymomot/mwm/app/migrations"
	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/app/seed"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/db"
	"github.com/dmitrymomot/mwm/pkg/logger"
)

func main() {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Seed the database with the admin account and default RBAC data",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations first")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, skipMigrations bool) error {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", slog.Any("error", err))
		return err
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("connect to database", slog.Any("error", err))
		return err
	}
	defer pool.Close()

	if !skipMigrations {
		if err := db.Migrate(ctx, pool, migrations.FS, db.WithLogger(log)); err != nil {
			log.Error("apply migrations", slog.Any("error", err))
			return err
		}
	}

	// The seeded password always uses the production cost.
	hasher := auth.NewHasher(auth.DefaultParams)
	if err := seed.New(repository.NewPostgres(pool), hasher, log).Run(ctx); err != nil {
		log.Error("seed database", slog.Any("error", err))
		return err
	}

	log.Info("seeding complete",
		slog.String("email", seed.AdminEmail),
		slog.String("password", seed.AdminPassword),
	)
	log.Warn("change the admin password in production")
	return nil
}
