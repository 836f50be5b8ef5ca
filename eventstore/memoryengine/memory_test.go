package memoryengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
	"github.com/AntonStoeckl/fmodel-go/eventstore/memoryengine"
	"github.com/AntonStoeckl/fmodel-go/testutil/spies"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func numberEvent(t *testing.T, eventType string, numberID string, offset time.Duration) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(
		eventType,
		baseTime.Add(offset),
		[]byte(`{"NumberID":"`+numberID+`","Value":1}`),
	)
	require.NoError(t, err)

	return event
}

func numberFilter(numberID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("NumberAdded", "NumberMultiplied").
		AndAnyPredicateOf(eventstore.P("NumberID", numberID)).
		Finalize()
}

func newStore(t *testing.T) *memoryengine.EventStore {
	t.Helper()

	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)

	return es
}

func Test_Append_Then_Query(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := newStore(t)
	filter := numberFilter("n-1")

	// act
	err := es.Append(ctx, filter, 0,
		numberEvent(t, "NumberAdded", "n-1", 0),
		numberEvent(t, "NumberMultiplied", "n-1", time.Second),
	)
	require.NoError(t, err)

	events, maxSeq, queryErr := es.Query(ctx, filter)

	// assert
	require.NoError(t, queryErr)
	require.Len(t, events, 2)
	assert.Equal(t, "NumberAdded", events[0].EventType)
	assert.Equal(t, "NumberMultiplied", events[1].EventType)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(2), maxSeq)
}

func Test_Query_Empty(t *testing.T) {
	// arrange
	es := newStore(t)

	// act
	events, maxSeq, err := es.Query(context.Background(), numberFilter("n-1"))

	// assert
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(0), maxSeq)
}

func Test_Append_ConcurrencyConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := newStore(t)
	filter := numberFilter("n-1")
	require.NoError(t, es.Append(ctx, filter, 0, numberEvent(t, "NumberAdded", "n-1", 0)))

	// act
	err := es.Append(ctx, filter, 0, numberEvent(t, "NumberAdded", "n-1", time.Second))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)

	events, _, queryErr := es.Query(ctx, filter)
	require.NoError(t, queryErr)
	assert.Len(t, events, 1, "nothing must be appended on conflict")
}

func Test_Append_UnrelatedStreamsDoNotConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := newStore(t)
	require.NoError(t, es.Append(ctx, numberFilter("n-1"), 0, numberEvent(t, "NumberAdded", "n-1", 0)))

	// act
	err := es.Append(ctx, numberFilter("n-2"), 0, numberEvent(t, "NumberAdded", "n-2", 0))

	// assert
	require.NoError(t, err)

	events, maxSeq, queryErr := es.Query(ctx, numberFilter("n-2"))
	require.NoError(t, queryErr)
	assert.Len(t, events, 1)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(2), maxSeq, "sequence numbers are global")
}

func Test_Append_IgnoresSequenceNumberBound(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := newStore(t)
	filter := numberFilter("n-1")
	require.NoError(t, es.Append(ctx, filter, 0, numberEvent(t, "NumberAdded", "n-1", 0)))

	// act
	err := es.Append(ctx, filter.WithSequenceNumberHigherThan(1), 0, numberEvent(t, "NumberAdded", "n-1", time.Second))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}

func Test_Query_WithSequenceNumberHigherThan(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := newStore(t)
	filter := numberFilter("n-1")
	require.NoError(t, es.Append(ctx, filter, 0,
		numberEvent(t, "NumberAdded", "n-1", 0),
		numberEvent(t, "NumberAdded", "n-1", time.Second),
		numberEvent(t, "NumberMultiplied", "n-1", 2*time.Second),
	))

	// act
	events, maxSeq, err := es.Query(ctx, filter.WithSequenceNumberHigherThan(2))
	nothing, unchangedSeq, err2 := es.Query(ctx, filter.WithSequenceNumberHigherThan(3))

	// assert
	require.NoError(t, err)
	require.NoError(t, err2)
	require.Len(t, events, 1)
	assert.Equal(t, "NumberMultiplied", events[0].EventType)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(3), maxSeq)
	assert.Empty(t, nothing)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(3), unchangedSeq)
}

func Test_Query_FilterSemantics(t *testing.T) {
	ctx := context.Background()
	es := newStore(t)
	all := eventstore.BuildEventFilter().MatchingAnyEvent()
	require.NoError(t, es.Append(ctx, all, 0,
		numberEvent(t, "NumberAdded", "n-1", 0),
		numberEvent(t, "NumberMultiplied", "n-1", time.Minute),
		numberEvent(t, "NumberAdded", "n-2", 2*time.Minute),
		numberEvent(t, "NumberReset", "n-2", 3*time.Minute),
	))

	testCases := []struct {
		description string
		filter      eventstore.Filter
		wantCount   int
	}{
		{
			description: "match any event",
			filter:      all,
			wantCount:   4,
		},
		{
			description: "event types only",
			filter:      eventstore.BuildEventFilter().Matching().AnyEventTypeOf("NumberAdded").Finalize(),
			wantCount:   2,
		},
		{
			description: "predicates only",
			filter:      eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("NumberID", "n-2")).Finalize(),
			wantCount:   2,
		},
		{
			description: "or-ed items",
			filter: eventstore.BuildEventFilter().
				Matching().AnyEventTypeOf("NumberMultiplied").
				OrMatching().AnyEventTypeOf("NumberReset").
				Finalize(),
			wantCount: 2,
		},
		{
			description: "all predicates must match",
			filter: eventstore.BuildEventFilter().
				Matching().
				AllPredicatesOf(eventstore.P("NumberID", "n-1"), eventstore.P("Value", "1")).
				Finalize(),
			wantCount: 0,
		},
		{
			description: "time range is inclusive",
			filter: eventstore.BuildEventFilter().
				OccurredFrom(baseTime.Add(time.Minute)).
				AndOccurredUntil(baseTime.Add(2 * time.Minute)).
				Finalize(),
			wantCount: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			events, _, err := es.Query(ctx, tc.filter)

			// assert
			require.NoError(t, err)
			assert.Len(t, events, tc.wantCount)
		})
	}
}

func Test_Append_ConcurrentWritersOnlyOneWins(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := newStore(t)
	filter := numberFilter("n-1")
	writers := 10

	event := numberEvent(t, "NumberAdded", "n-1", 0)

	var wg sync.WaitGroup
	results := make(chan error, writers)

	// act
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- es.Append(ctx, filter, 0, event)
		}()
	}

	wg.Wait()
	close(results)

	// assert
	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	}

	assert.Equal(t, 1, succeeded)
}

func Test_Snapshots(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := newStore(t)
	filter := numberFilter("n-1")

	older, err := eventstore.BuildSnapshot("NumberView", filter.Hash(), 5, []byte(`{"value":5}`))
	require.NoError(t, err)
	newer, err := eventstore.BuildSnapshot("NumberView", filter.Hash(), 9, []byte(`{"value":9}`))
	require.NoError(t, err)

	// act
	missing, loadMissingErr := es.LoadSnapshot(ctx, "NumberView", filter)
	require.NoError(t, es.SaveSnapshot(ctx, newer))
	require.NoError(t, es.SaveSnapshot(ctx, older))
	loaded, loadErr := es.LoadSnapshot(ctx, "NumberView", filter.WithSequenceNumberHigherThan(3))

	// assert
	require.NoError(t, loadMissingErr)
	assert.Nil(t, missing)
	require.NoError(t, loadErr)
	require.NotNil(t, loaded)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(9), loaded.SequenceNumber, "an older snapshot must not replace a newer one")
	assert.JSONEq(t, `{"value":9}`, string(loaded.DataJSON))

	require.NoError(t, es.DeleteSnapshot(ctx, "NumberView", filter))
	deleted, deletedErr := es.LoadSnapshot(ctx, "NumberView", filter)
	require.NoError(t, deletedErr)
	assert.Nil(t, deleted)
}

func Test_SaveSnapshot_Invalid(t *testing.T) {
	// arrange
	es := newStore(t)

	// act
	err := es.SaveSnapshot(context.Background(), eventstore.Snapshot{FilterHash: "h", DataJSON: []byte(`{}`)})

	// assert
	assert.ErrorIs(t, err, eventstore.ErrEmptyProjectionType)
}

func Test_CanceledContext(t *testing.T) {
	// arrange
	es := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, _, queryErr := es.Query(ctx, numberFilter("n-1"))
	appendErr := es.Append(ctx, numberFilter("n-1"), 0, numberEvent(t, "NumberAdded", "n-1", 0))

	// assert
	assert.ErrorIs(t, queryErr, context.Canceled)
	assert.ErrorIs(t, appendErr, context.Canceled)
}

func Test_Metrics_CountsConflicts(t *testing.T) {
	// arrange
	ctx := context.Background()
	metrics := spies.NewMetricsCollectorSpy()
	es, err := memoryengine.NewEventStore(memoryengine.WithMetrics(metrics))
	require.NoError(t, err)
	filter := numberFilter("n-1")
	require.NoError(t, es.Append(ctx, filter, 0, numberEvent(t, "NumberAdded", "n-1", 0)))

	// act
	_ = es.Append(ctx, filter, 0, numberEvent(t, "NumberAdded", "n-1", 0))

	// assert
	assert.Len(t, metrics.Counters(eventstore.MetricConcurrencyConflicts), 1)
	assert.Len(t, metrics.Durations(eventstore.MetricAppendDuration), 1, "only the successful append")
}
