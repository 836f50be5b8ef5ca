// Package postgresengine is the PostgreSQL implementation of the event store.
//
// It runs on a pgxpool.Pool, a *sql.DB (e.g. lib/pq) or a *sqlx.DB, each optionally
// paired with a replica that serves queries marked with eventstore.WithEventualConsistency.
// SQL is built with goqu. Appends are single conditional INSERT ... SELECT statements,
// so the concurrency check and the write are atomic without explicit transactions.
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithLogger(slog.Default()))
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
package postgresengine
