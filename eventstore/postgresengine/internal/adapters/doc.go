// Package adapters hides the differences between pgxpool.Pool, sql.DB and sqlx.DB
// behind DBAdapter, so the event store builds its SQL once and runs it on any of them.
// Each adapter may carry a replica for reads that tolerate eventual consistency.
package adapters
