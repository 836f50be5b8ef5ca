package shell

import (
	"context"
	"time"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

// Event is what the shell needs from a domain event to store it.
type Event interface {
	EventType() string
	HasOccurredAt() time.Time
}

// DecidesCommands is satisfied by domain.Decider[C, S', E] with S = domain.Option[S'].
type DecidesCommands[C, S, E any] interface {
	Decide(command C, state S) []E
	Evolve(state S, event E) S
	InitialState() S
}

// EvolvesViews is satisfied by domain.View[S, E].
type EvolvesViews[S, E any] interface {
	Evolve(state S, event E) S
	InitialState() S
}

type QueriesEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

type AppendsEvents interface {
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// QueriesAndAppendsEvents is the event store an EventSourcedAggregate works with.
type QueriesAndAppendsEvents interface {
	QueriesEvents
	AppendsEvents
}

// SavesAndLoadsSnapshots is implemented by postgresengine, memoryengine and redissnapshots.
type SavesAndLoadsSnapshots interface {
	SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error
	LoadSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) (*eventstore.Snapshot, error)
}
