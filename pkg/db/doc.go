// Package db provides PostgreSQL connection utilities for the document store.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with startup retries, a
// readiness check, transactions and [github.com/pressly/goose/v3] migrations.
//
// # Configuration
//
// [Config] is filled from environment variables:
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL
//	DATABASE_MIGRATIONS_TABLE   - Migrations table name (default: schema_migrations)
//	DATABASE_AUTO_MIGRATE       - Apply migrations on startup (default: true)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - Pool health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection retry attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, docstore.Migrations(), cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//
// # Transactions
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		_, err := tx.Exec(ctx, "UPDATE documents SET ...")
//		return err
//	})
//
// # Health Checks
//
// [Healthcheck] returns a func(context.Context) error for readiness probes:
//
//	checks := health.Checks{"postgres": db.Healthcheck(pool)}
package db
