package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
	"github.com/AntonStoeckl/fmodel-go/eventstore/redissnapshots"
	numbers "github.com/AntonStoeckl/fmodel-go/example/numbers/shell"
	fmodel "github.com/AntonStoeckl/fmodel-go/shell"
)

const commandTypeNumber = "number_command"

// app is what one CLI invocation works with.
type app struct {
	cfg       Config
	logger    *slog.Logger
	store     eventStore
	service   *numbers.Service
	telemetry *telemetry
	closers   []func()
	now       func() time.Time
}

func newApp(ctx context.Context, cfg Config, logger *slog.Logger, store eventStore) (*app, error) {
	a := &app{cfg: cfg, logger: logger, now: func() time.Time { return time.Now().UTC() }}

	tel, err := newTelemetry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.telemetry = tel

	var metrics eventstore.MetricsCollector
	if collector := tel.metrics(); collector != nil {
		metrics = collector
	}

	if store == nil {
		opened, closeStore, err := openEventStore(ctx, cfg, logger, metrics)
		if err != nil {
			a.close()
			return nil, err
		}

		store = opened
		a.closers = append(a.closers, closeStore)
	}
	a.store = store

	viewOptions, err := a.viewOptions()
	if err != nil {
		a.close()
		return nil, err
	}

	retryOptions := []fmodel.RetryOption{fmodel.WithMaxAttempts(cfg.MaxAttempts)}
	if metrics != nil {
		retryOptions = append(retryOptions, fmodel.WithRetryMetrics(metrics, commandTypeNumber))
	}

	service, err := numbers.NewService(
		store,
		[]fmodel.AggregateOption{
			fmodel.WithContextualLogger(logger),
			fmodel.WithRetryOptions(retryOptions...),
		},
		viewOptions,
	)
	if err != nil {
		a.close()
		return nil, err
	}
	a.service = service

	return a, nil
}

func (a *app) viewOptions() ([]fmodel.ViewOption, error) {
	options := []fmodel.ViewOption{fmodel.WithViewContextualLogger(a.logger)}

	if a.cfg.WithoutSnapshots {
		return append(options, fmodel.WithoutSnapshots()), nil
	}

	if a.cfg.RedisAddr == "" {
		return options, nil
	}

	client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
	a.closers = append(a.closers, func() { _ = client.Close() })

	snapshots, err := redissnapshots.NewStore(
		client,
		redissnapshots.WithTTL(a.cfg.RedisSnapshotTTL),
		redissnapshots.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	return append(options, fmodel.WithSnapshotStore(snapshots)), nil
}

// close releases connections in reverse order of opening and flushes metrics.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil

	if a.telemetry != nil {
		if err := a.telemetry.shutdown(); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("metrics shutdown failed", "error", err.Error())
		}
	}
}
