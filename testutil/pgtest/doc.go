// Package pgtest opens postgresengine event stores on a real PostgreSQL for integration tests.
//
// Tests are skipped unless FMODEL_TEST_POSTGRES_DSN is set. ADAPTER_TYPE selects the
// driver: pgx.pool (default), sql.db or sqlx.db. Every store gets its own tables, which
// are dropped when the test ends.
package pgtest
