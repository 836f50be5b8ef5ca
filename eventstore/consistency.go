package eventstore

import "context"

// ConsistencyLevel tells an engine whether a read may be served by a replica.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Command handling needs it: the
	// decision must be taken on the latest events, and the default is therefore strong.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica. Projections that may lag
	// slightly behind use it.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key under which the ConsistencyLevel is stored.
const ConsistencyLevelKey contextKey = "eventstore.consistency_level"

// WithStrongConsistency marks ctx so that Query reads from the primary.
//
//	ctx = eventstore.WithStrongConsistency(ctx)
//	events, maxSeq, err := store.Query(ctx, filter)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency marks ctx so that Query may read from a replica.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel returns the level stored in ctx, StrongConsistency if there is none.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
