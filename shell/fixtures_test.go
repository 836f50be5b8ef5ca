package shell_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/fmodel-go/domain"
	"github.com/AntonStoeckl/fmodel-go/eventstore"
	"github.com/AntonStoeckl/fmodel-go/eventstore/memoryengine"
	"github.com/AntonStoeckl/fmodel-go/shell"
)

var occurredAt = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

/***** a counter with a ceiling *****/

const ceiling = 10

type counterCommand interface {
	counterID() string
}

type increase struct {
	CounterID string
	Amount    int
}

func (c increase) counterID() string { return c.CounterID }

type reset struct {
	CounterID string
}

func (c reset) counterID() string { return c.CounterID }

type unsupported struct{}

func (unsupported) counterID() string { return "c-1" }

type counterEvent interface {
	shell.Event
	isCounterEvent()
}

type increased struct {
	CounterID  string
	Amount     int
	OccurredAt time.Time
}

func (increased) EventType() string          { return "CounterIncreased" }
func (e increased) HasOccurredAt() time.Time { return e.OccurredAt }
func (increased) isCounterEvent()            {}

type wasReset struct {
	CounterID  string
	OccurredAt time.Time
}

func (wasReset) EventType() string          { return "CounterReset" }
func (e wasReset) HasOccurredAt() time.Time { return e.OccurredAt }
func (wasReset) isCounterEvent()            {}

// foreign is an Event, but not a counterEvent.
type foreign struct{}

func (foreign) EventType() string        { return "Foreign" }
func (foreign) HasOccurredAt() time.Time { return time.Time{} }

func counterDecider() domain.Decider[counterCommand, int, counterEvent] {
	return domain.NewDecider(
		func(c counterCommand, s domain.Option[int]) []counterEvent {
			current := s.OrElse(0)

			switch c := c.(type) {
			case increase:
				if c.Amount == 0 || current+c.Amount > ceiling {
					return nil
				}

				return []counterEvent{increased{CounterID: c.CounterID, Amount: c.Amount, OccurredAt: occurredAt}}
			case reset:
				if current == 0 {
					return nil
				}

				return []counterEvent{wasReset{CounterID: c.CounterID, OccurredAt: occurredAt}}
			default:
				panic(domain.UnrecognizedCommand(c))
			}
		},
		func(s domain.Option[int], e counterEvent) domain.Option[int] {
			switch e := e.(type) {
			case increased:
				return domain.Some(s.OrElse(0) + e.Amount)
			case wasReset:
				return domain.Some(0)
			default:
				panic(domain.UnrecognizedEvent(e))
			}
		},
		domain.None[int](),
	)
}

func increaseCountView() domain.View[int, counterEvent] {
	return domain.NewView(
		func(s int, e counterEvent) int {
			if _, ok := e.(increased); ok {
				return s + 1
			}

			return s
		},
		0,
	)
}

func counterCodec(t *testing.T) *shell.EventCodec[counterEvent] {
	t.Helper()

	codec := shell.NewEventCodec[counterEvent]()
	require.NoError(t, shell.Register[counterEvent, increased](codec))
	require.NoError(t, shell.Register[counterEvent, wasReset](codec))

	return codec
}

func counterFilter(id string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("CounterIncreased", "CounterReset").
		AndAnyPredicateOf(eventstore.P("CounterID", id)).
		Finalize()
}

func filterForCommand(c counterCommand) eventstore.Filter {
	return counterFilter(c.counterID())
}

func newMemoryStore(t *testing.T) *memoryengine.EventStore {
	t.Helper()

	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)

	return es
}

func newAggregate(
	t *testing.T,
	store shell.QueriesAndAppendsEvents,
	options ...shell.AggregateOption,
) *shell.EventSourcedAggregate[counterCommand, domain.Option[int], counterEvent] {

	t.Helper()

	aggregate, err := shell.NewEventSourcedAggregate[counterCommand, domain.Option[int], counterEvent](
		counterDecider(),
		store,
		counterCodec(t),
		filterForCommand,
		options...,
	)
	require.NoError(t, err)

	return aggregate
}

/***** event store doubles *****/

// conflictingStore reports a concurrency conflict for the first conflicts appends.
type conflictingStore struct {
	*memoryengine.EventStore
	conflicts int32
	appends   atomic.Int32
}

func (s *conflictingStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expected eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if s.appends.Add(1) <= s.conflicts {
		return eventstore.ErrConcurrencyConflict
	}

	return s.EventStore.Append(ctx, filter, expected, event, additionalEvents...)
}

type failingSnapshots struct {
	saves atomic.Int32
}

func (s *failingSnapshots) SaveSnapshot(context.Context, eventstore.Snapshot) error {
	s.saves.Add(1)
	return eventstore.ErrSavingSnapshotFailed
}

func (s *failingSnapshots) LoadSnapshot(context.Context, string, eventstore.Filter) (*eventstore.Snapshot, error) {
	return nil, eventstore.ErrLoadingSnapshotFailed
}

/***** prices with fractional amounts *****/

type priceSet struct {
	ItemID     string
	Price      float64
	OccurredAt time.Time
}

func (priceSet) EventType() string          { return "PriceSet" }
func (e priceSet) HasOccurredAt() time.Time { return e.OccurredAt }

func priceCodec() *shell.EventCodec[shell.Event] {
	return shell.MustRegister[shell.Event, priceSet](shell.NewEventCodec[shell.Event]())
}

func priceFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().Matching().AnyEventTypeOf("PriceSet").Finalize()
}

// priceTotal sums all prices set.
func priceTotal() domain.View[float64, shell.Event] {
	return domain.NewView(
		func(total float64, e shell.Event) float64 {
			return total + e.(priceSet).Price
		},
		0,
	)
}

func appendPrices(t *testing.T, store *memoryengine.EventStore, prices ...float64) {
	t.Helper()

	ctx := context.Background()
	for _, price := range prices {
		_, maxSequenceNumber, err := store.Query(ctx, priceFilter())
		require.NoError(t, err)

		storable, err := priceCodec().Encode(priceSet{ItemID: "i-1", Price: price, OccurredAt: occurredAt}, shell.EventMetadata{})
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, priceFilter(), maxSequenceNumber, storable))
	}
}
