package pgtest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/fmodel-go/eventstore/postgresengine"
)

const (
	EnvDSN         = "FMODEL_TEST_POSTGRES_DSN"
	EnvAdapterType = "ADAPTER_TYPE"

	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"

	cleanupTimeout = 5 * time.Second
)

// execer is what all three drivers offer for the cleanup statements.
type execer func(ctx context.Context, statement string) error

// NewEventStore returns an event store on fresh tables, or skips the test without a database.
func NewEventStore(t testing.TB, options ...postgresengine.Option) postgresengine.EventStore {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s is not set", EnvDSN)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	eventsTable := "events_" + suffix
	snapshotsTable := "snapshots_" + suffix

	options = append(options,
		postgresengine.WithTableName(eventsTable),
		postgresengine.WithSnapshotTableName(snapshotsTable),
	)

	es, exec := open(t, dsn, options)

	require.NoError(t, es.CreateSchema(context.Background()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		statement := fmt.Sprintf("DROP TABLE IF EXISTS %s, %s", eventsTable, snapshotsTable)
		if err := exec(ctx, statement); err != nil {
			t.Logf("dropping test tables failed: %v", err)
		}
	})

	return es
}

func open(t testing.TB, dsn string, options []postgresengine.Option) (postgresengine.EventStore, execer) {
	t.Helper()

	switch adapterType := strings.ToLower(os.Getenv(EnvAdapterType)); adapterType {
	case typePGXPool, "":
		pool, err := pgxpool.New(context.Background(), dsn)
		require.NoError(t, err)
		t.Cleanup(pool.Close)

		es, err := postgresengine.NewEventStoreFromPGXPool(pool, options...)
		require.NoError(t, err)

		return es, func(ctx context.Context, statement string) error {
			_, err := pool.Exec(ctx, statement)
			return err
		}

	case typeSQLDB:
		db, err := sql.Open("postgres", dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		es, err := postgresengine.NewEventStoreFromSQLDB(db, options...)
		require.NoError(t, err)

		return es, func(ctx context.Context, statement string) error {
			_, err := db.ExecContext(ctx, statement)
			return err
		}

	case typeSQLXDB:
		db, err := sqlx.Open("postgres", dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		es, err := postgresengine.NewEventStoreFromSQLX(db, options...)
		require.NoError(t, err)

		return es, func(ctx context.Context, statement string) error {
			_, err := db.ExecContext(ctx, statement)
			return err
		}

	default:
		t.Fatalf("unsupported %s: %s", EnvAdapterType, adapterType)
		return postgresengine.EventStore{}, nil
	}
}
