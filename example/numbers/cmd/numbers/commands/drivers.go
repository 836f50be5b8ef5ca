package commands

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/AntonStoeckl/fmodel-go/eventstore"
	"github.com/AntonStoeckl/fmodel-go/eventstore/memoryengine"
	"github.com/AntonStoeckl/fmodel-go/eventstore/postgresengine"
	fmodel "github.com/AntonStoeckl/fmodel-go/shell"
)

var ErrSchemaNotSupported = errors.New("driver has no schema")

const (
	defaultMinConnections    = int32(2)
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	idleConnectionsDivisor   = 5
)

// eventStore is what the commands need from every driver.
type eventStore interface {
	fmodel.QueriesAndAppendsEvents
	fmodel.SavesAndLoadsSnapshots
}

type createsSchema interface {
	Schema() string
	CreateSchema(ctx context.Context) error
}

// openEventStore returns the store of cfg.Driver and a func that closes its connections.
func openEventStore(
	ctx context.Context,
	cfg Config,
	logger *slog.Logger,
	metrics eventstore.MetricsCollector,
) (eventStore, func(), error) {

	if cfg.Driver == DriverMemory {
		options := []memoryengine.Option{memoryengine.WithLogger(logger)}
		if metrics != nil {
			options = append(options, memoryengine.WithMetrics(metrics))
		}

		store, err := memoryengine.NewEventStore(options...)

		return store, func() {}, err
	}

	options := []postgresengine.Option{
		postgresengine.WithTableName(cfg.TableName),
		postgresengine.WithSnapshotTableName(cfg.SnapshotTableName),
		postgresengine.WithContextualLogger(logger),
	}
	if metrics != nil {
		options = append(options, postgresengine.WithMetrics(metrics))
	}

	switch cfg.Driver {
	case DriverPGX:
		return openPGX(ctx, cfg, options)
	case DriverSQLDB:
		return openSQLDB(ctx, cfg, options)
	default:
		return openSQLX(ctx, cfg, options)
	}
}

func pgxPoolConfig(cfg Config, dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // small config value
	dbConfig.MinConns = min(defaultMinConnections, dbConfig.MaxConns)
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	return dbConfig, nil
}

func openPGX(ctx context.Context, cfg Config, options []postgresengine.Option) (eventStore, func(), error) {
	primaryConfig, err := pgxPoolConfig(cfg, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}

	primary, err := pgxpool.NewWithConfig(ctx, primaryConfig)
	if err != nil {
		return nil, nil, err
	}

	if cfg.PostgresReplicaDSN == "" {
		store, err := postgresengine.NewEventStoreFromPGXPool(primary, options...)
		return store, primary.Close, err
	}

	replicaConfig, err := pgxPoolConfig(cfg, cfg.PostgresReplicaDSN)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	replica, err := pgxpool.NewWithConfig(ctx, replicaConfig)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		replica.Close()
		primary.Close()
	}

	store, err := postgresengine.NewEventStoreFromPGXPoolAndReplica(primary, replica, options...)

	return store, closeAll, err
}

type pooledDB interface {
	SetMaxOpenConns(n int)
	SetMaxIdleConns(n int)
	SetConnMaxLifetime(d time.Duration)
	SetConnMaxIdleTime(d time.Duration)
	PingContext(ctx context.Context) error
	Close() error
}

func configurePool(ctx context.Context, cfg Config, db pooledDB) error {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(max(1, cfg.MaxOpenConns/idleConnectionsDivisor))
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return err
	}

	return nil
}

func openSQLDB(ctx context.Context, cfg Config, options []postgresengine.Option) (eventStore, func(), error) {
	primary, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}

	if err = configurePool(ctx, cfg, primary); err != nil {
		return nil, nil, err
	}

	if cfg.PostgresReplicaDSN == "" {
		store, err := postgresengine.NewEventStoreFromSQLDB(primary, options...)
		return store, func() { _ = primary.Close() }, err
	}

	replica, err := sql.Open("postgres", cfg.PostgresReplicaDSN)
	if err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	if err = configurePool(ctx, cfg, replica); err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		_ = replica.Close()
		_ = primary.Close()
	}

	store, err := postgresengine.NewEventStoreFromSQLDBAndReplica(primary, replica, options...)

	return store, closeAll, err
}

func openSQLX(ctx context.Context, cfg Config, options []postgresengine.Option) (eventStore, func(), error) {
	primary, err := sqlx.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}

	if err = configurePool(ctx, cfg, primary); err != nil {
		return nil, nil, err
	}

	if cfg.PostgresReplicaDSN == "" {
		store, err := postgresengine.NewEventStoreFromSQLX(primary, options...)
		return store, func() { _ = primary.Close() }, err
	}

	replica, err := sqlx.Open("postgres", cfg.PostgresReplicaDSN)
	if err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	if err = configurePool(ctx, cfg, replica); err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		_ = replica.Close()
		_ = primary.Close()
	}

	store, err := postgresengine.NewEventStoreFromSQLXAndReplica(primary, replica, options...)

	return store, closeAll, err
}
