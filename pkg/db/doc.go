// Package db provides PostgreSQL helpers on top of pgxpool.
//
// [Connect] builds a pool from [Config] and retries startup failures.
// [Migrate] applies goose migrations from an embedded filesystem.
// [WithTx] wraps a unit of work in a transaction.
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Configuration is read from DATABASE_URL and the DATABASE_* variables
// documented on [Config].
package db
