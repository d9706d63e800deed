package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/mwm/pkg/logger"
)

// DefaultMigrationsTable tracks applied goose versions.
const DefaultMigrationsTable = "schema_migrations"

type migrateConfig struct {
	logger *slog.Logger
	table  string
	dir    string
}

// MigrateOption configures Migrate.
type MigrateOption func(*migrateConfig)

// WithLogger routes goose output through l.
func WithLogger(l *slog.Logger) MigrateOption {
	return func(c *migrateConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMigrationsTable overrides DefaultMigrationsTable.
func WithMigrationsTable(name string) MigrateOption {
	return func(c *migrateConfig) {
		if name != "" {
			c.table = name
		}
	}
}

// WithDir reads migrations from a subdirectory of the file system.
func WithDir(dir string) MigrateOption {
	return func(c *migrateConfig) {
		if dir != "" {
			c.dir = dir
		}
	}
}

// Migrate applies every pending migration in fsys. goose keeps package
// level state, so concurrent calls are not supported.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, opts ...MigrateOption) error {
	cfg := &migrateConfig{
		logger: logger.NewNope(),
		table:  DefaultMigrationsTable,
		dir:    ".",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	// Shares the pool's connections; closing it would close the pool.
	sqlDB := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{log: cfg.logger})
	goose.SetTableName(cfg.table)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, sqlDB, cfg.dir); err != nil {
		return errors.Join(ErrApplyMigration, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...), slog.String("component", "migrations"))
}

// Fatalf only logs; goose returns the error to Migrate afterwards.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...), slog.String("component", "migrations"))
}
