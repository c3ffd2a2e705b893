package db

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// Migrate applies every pending goose migration found at the root of
// migrations, recording versions in table.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	if table == "" {
		table = goose.DefaultTablename
	}
	store, err := database.NewStore(database.DialectPostgres, table)
	if err != nil {
		return errors.Join(ErrMigrationSetup, err)
	}

	// Shares the pool's connections; closing it would close the pool.
	sqlDB := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider("", sqlDB, migrations, goose.WithStore(store))
	if err != nil {
		return errors.Join(ErrMigrationSetup, err)
	}

	results, err := provider.Up(ctx)
	logResults(ctx, log, results)
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

func logResults(ctx context.Context, log *slog.Logger, results []*goose.MigrationResult) {
	if log == nil {
		return
	}
	if len(results) == 0 {
		log.DebugContext(ctx, "database schema is up to date")
		return
	}
	for _, r := range results {
		attrs := []any{slog.Duration("duration", r.Duration)}
		if r.Source != nil {
			attrs = append(attrs, slog.Int64("version", r.Source.Version), slog.String("file", r.Source.Path))
		}
		if r.Error != nil {
			log.ErrorContext(ctx, "migration failed", append(attrs, slog.Any("error", r.Error))...)
			continue
		}
		log.InfoContext(ctx, "migration applied", attrs...)
	}
}
