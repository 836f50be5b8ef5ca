package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// cli holds the configuration of one invocation. store is only set by tests.
type cli struct {
	cfg   Config
	store eventStore
}

func Execute() error {
	root, err := NewRootCommand()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return root.ExecuteContext(ctx)
}

// NewRootCommand reads the FMODEL_* environment and builds the command tree.
func NewRootCommand() (*cobra.Command, error) {
	cfg, err := ParseEnv()
	if err != nil {
		return nil, err
	}

	return newRootCommand(&cli{cfg: cfg}), nil
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "numbers",
		Short:        "Add to and multiply event-sourced numbers",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfg.Driver, "driver", c.cfg.Driver, "event store: memory, pgx, sqldb or sqlx")
	flags.StringVar(&c.cfg.PostgresDSN, "postgres-dsn", c.cfg.PostgresDSN, "postgres connection string")
	flags.StringVar(&c.cfg.PostgresReplicaDSN, "postgres-replica-dsn", c.cfg.PostgresReplicaDSN, "read replica connection string")
	flags.StringVar(&c.cfg.TableName, "table", c.cfg.TableName, "events table")
	flags.StringVar(&c.cfg.SnapshotTableName, "snapshot-table", c.cfg.SnapshotTableName, "snapshots table")
	flags.IntVar(&c.cfg.MaxOpenConns, "max-open-conns", c.cfg.MaxOpenConns, "connection pool size")
	flags.DurationVar(&c.cfg.ConnectTimeout, "connect-timeout", c.cfg.ConnectTimeout, "database connect timeout")
	flags.StringVar(&c.cfg.RedisAddr, "redis-addr", c.cfg.RedisAddr, "keep view snapshots in this redis instead of the event store")
	flags.DurationVar(&c.cfg.RedisSnapshotTTL, "redis-snapshot-ttl", c.cfg.RedisSnapshotTTL, "expiry of redis snapshots, 0 keeps them")
	flags.BoolVar(&c.cfg.WithoutSnapshots, "without-snapshots", c.cfg.WithoutSnapshots, "always replay whole streams")
	flags.IntVar(&c.cfg.MaxAttempts, "max-attempts", c.cfg.MaxAttempts, "attempts per command on concurrency conflicts")
	flags.StringVar(&c.cfg.LogFormat, "log-format", c.cfg.LogFormat, "text or json")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "debug, info, warn or error")
	flags.StringVar(&c.cfg.OTLPEndpoint, "otlp-endpoint", c.cfg.OTLPEndpoint, "export metrics to this OTLP gRPC endpoint")
	flags.StringVar(&c.cfg.CloudEventsSource, "cloudevents-source", c.cfg.CloudEventsSource, "source attribute of exported events")

	root.AddCommand(
		addCmd(c),
		multiplyCmd(c),
		showCmd(c),
		exportCmd(c),
		schemaCmd(c),
	)

	return root
}

// run builds the app for one command and releases it afterwards.
func (c *cli) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(c.cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	a, err := newApp(ctx, c.cfg, logger, c.store)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}
