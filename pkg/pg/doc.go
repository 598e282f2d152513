// Package pg bootstraps the PostgreSQL layer backing the usage ledger:
// connection pooling via pgx/v5, schema migrations via goose/v3, a health
// check closure and error classification helpers.
//
// Config fields are populated from environment variables (see the struct
// tags). Connect retries with a growing backoff so services survive
// database restarts; Migrate guarantees the subscriptions schema is
// up-to-date before the first metering call.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		log.Fatal(err)
//	}
//
// The error helpers (IsNotFoundError, IsDuplicateKeyError,
// IsSerializationError) let the ledger store translate driver errors into
// its own taxonomy without leaking pgx types upward.
package pg
