// Package db wraps a pgx connection pool with the pieces the application
// needs around it: opening with retries, goose migrations, transactions,
// readiness checks and Postgres error classification.
//
// Opening a pool:
//
//	pool, err := db.Open(ctx, cfg.DatabaseURL,
//		db.WithMaxConns(20),
//		db.WithRetry(5, 2*time.Second),
//	)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
// Migrations are embedded SQL files applied with goose:
//
//	if err := db.Migrate(ctx, pool, migrations.FS, db.WithLogger(log)); err != nil {
//		return err
//	}
//
// Multi-step writes run through [WithTx], which commits when fn returns nil
// and rolls back otherwise:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		if _, err := tx.Exec(ctx, "DELETE FROM role_permissions WHERE role_id = $1", id); err != nil {
//			return err
//		}
//		...
//	})
//
// Repository code maps driver errors with [IsNotFound] and [IsUniqueViolation].
//
// [Healthcheck] and [Shutdown] plug into mwm.WithReadinessCheck and
// mwm.ShutdownHook.
package db
