package postgresengine

import (
	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

// Option configures an EventStore.
type Option func(*EventStore) error

// WithTableName sets the events table, "events" by default.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithSnapshotTableName sets the snapshots table, "snapshots" by default.
func WithSnapshotTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptySnapshotsTableName
		}

		es.snapshotTableName = tableName

		return nil
	}
}

// WithLogger sets a logger that receives executed SQL at debug level, operation results
// at info level, and failures at error level.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the collector for durations, event counts and concurrency conflicts.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.metricsCollector = collector
		return nil
	}
}
