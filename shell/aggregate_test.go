package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/fmodel-go/domain"
	"github.com/AntonStoeckl/fmodel-go/eventstore"
	"github.com/AntonStoeckl/fmodel-go/shell"
	"github.com/AntonStoeckl/fmodel-go/testutil/spies"
)

func Test_Handle_AppendsDecidedEvents(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := newMemoryStore(t)
	aggregate := newAggregate(t, store)

	// act
	first, err := aggregate.Handle(ctx, increase{CounterID: "c-1", Amount: 3})
	require.NoError(t, err)
	second, err := aggregate.Handle(ctx, increase{CounterID: "c-1", Amount: 4})
	require.NoError(t, err)

	// assert
	assert.False(t, first.Idempotent)
	assert.Equal(t, []counterEvent{increased{CounterID: "c-1", Amount: 3, OccurredAt: occurredAt}}, first.Events)
	assert.Equal(t, uint(0), first.SequenceNumber)
	assert.Equal(t, 1, first.RetryAttempts)
	assert.Equal(t, shell.ErrorTypeNone, first.LastErrorType)
	assert.Equal(t, uint(1), second.SequenceNumber)

	stored, maxSeq, queryErr := store.Query(ctx, counterFilter("c-1"))
	require.NoError(t, queryErr)
	assert.Len(t, stored, 2)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(2), maxSeq)
}

func Test_Handle_DecidesOnCurrentState(t *testing.T) {
	// arrange
	ctx := context.Background()
	aggregate := newAggregate(t, newMemoryStore(t))
	_, err := aggregate.Handle(ctx, increase{CounterID: "c-1", Amount: 8})
	require.NoError(t, err)

	// act
	overCeiling, err := aggregate.Handle(ctx, increase{CounterID: "c-1", Amount: 3})
	require.NoError(t, err)
	otherCounter, otherErr := aggregate.Handle(ctx, increase{CounterID: "c-2", Amount: 3})

	// assert
	require.NoError(t, otherErr)
	assert.True(t, overCeiling.Idempotent, "8 + 3 exceeds the ceiling of c-1")
	assert.False(t, otherCounter.Idempotent, "c-2 is a different stream")
}

func Test_Handle_Idempotent(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := newMemoryStore(t)
	aggregate := newAggregate(t, store)

	// act
	result, err := aggregate.Handle(ctx, reset{CounterID: "c-1"})

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Empty(t, result.Events)

	stored, _, queryErr := store.Query(ctx, counterFilter("c-1"))
	require.NoError(t, queryErr)
	assert.Empty(t, stored, "nothing must be appended")
}

func Test_Handle_ContractViolation(t *testing.T) {
	// arrange
	logs := spies.NewLogHandlerSpy()
	aggregate := newAggregate(t, newMemoryStore(t), shell.WithLogger(logs.Logger()))

	// act
	result, err := aggregate.Handle(context.Background(), unsupported{})

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, shell.ErrContractViolation)
	assert.ErrorIs(t, err, domain.ErrUnrecognizedVariant)
	assert.Equal(t, 1, result.RetryAttempts, "contract violations are not retried")
	assert.Equal(t, shell.ErrorTypeContractViolation, result.LastErrorType)
	assert.True(t, logs.HasMessage("domain contract violated"))
}

func Test_Handle_OtherPanicsAreNotSwallowed(t *testing.T) {
	// arrange
	decider := domain.NewDecider(
		func(counterCommand, domain.Option[int]) []counterEvent { panic("boom") },
		func(s domain.Option[int], _ counterEvent) domain.Option[int] { return s },
		domain.None[int](),
	)
	aggregate, err := shell.NewEventSourcedAggregate[counterCommand, domain.Option[int], counterEvent](
		decider, newMemoryStore(t), counterCodec(t), filterForCommand,
	)
	require.NoError(t, err)

	// act + assert
	assert.PanicsWithValue(t, "boom", func() {
		_, _ = aggregate.Handle(context.Background(), increase{CounterID: "c-1", Amount: 1})
	})
}

func Test_Handle_RetriesConcurrencyConflicts(t *testing.T) {
	// arrange
	store := &conflictingStore{EventStore: newMemoryStore(t), conflicts: 2}
	aggregate := newAggregate(t, store, shell.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)))

	// act
	result, err := aggregate.Handle(context.Background(), increase{CounterID: "c-1", Amount: 1})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.Greater(t, result.TotalRetryDelay, time.Duration(0))
	assert.False(t, result.RetriesExhausted)
}

func Test_Handle_RetriesExhausted(t *testing.T) {
	// arrange
	store := &conflictingStore{EventStore: newMemoryStore(t), conflicts: 100}
	aggregate := newAggregate(t, store, shell.WithRetryOptions(shell.WithMaxAttempts(3), shell.WithBaseDelay(0)))

	// act
	result, err := aggregate.Handle(context.Background(), increase{CounterID: "c-1", Amount: 1})

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.True(t, result.RetriesExhausted)
	assert.Equal(t, shell.ErrorTypeConcurrencyConflict, result.LastErrorType)
}

func Test_Handle_UsesMetadataFactory(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := newMemoryStore(t)
	correlationID := uuid.New()
	aggregate := newAggregate(t, store, shell.WithMetadataFactory(func(context.Context) shell.EventMetadata {
		return shell.BuildEventMetadata(uuid.New(), correlationID, correlationID)
	}))

	// act
	_, err := aggregate.Handle(ctx, increase{CounterID: "c-1", Amount: 1})
	require.NoError(t, err)

	// assert
	stored, _, queryErr := store.Query(ctx, counterFilter("c-1"))
	require.NoError(t, queryErr)
	require.Len(t, stored, 1)

	metadata, metadataErr := shell.EventMetadataFrom(stored[0])
	require.NoError(t, metadataErr)
	assert.Equal(t, correlationID.String(), metadata.CorrelationID)
	assert.NotEqual(t, correlationID.String(), metadata.MessageID)
}

type failingQueryStore struct {
	*conflictingStore
}

func (failingQueryStore) Query(context.Context, eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error) {
	return nil, 0, errors.New("connection refused")
}

func Test_Handle_QueryFailure(t *testing.T) {
	// arrange
	store := failingQueryStore{&conflictingStore{EventStore: newMemoryStore(t)}}
	aggregate := newAggregate(t, store)

	// act
	result, err := aggregate.Handle(context.Background(), increase{CounterID: "c-1", Amount: 1})

	// assert
	assert.ErrorIs(t, err, shell.ErrQueryingEventsFailed)
	assert.Equal(t, 1, result.RetryAttempts)
	assert.Equal(t, shell.ErrorTypeOther, result.LastErrorType)
}

func Test_NewEventSourcedAggregate_Validation(t *testing.T) {
	codec := shell.NewEventCodec[counterEvent]()
	store := newMemoryStore(t)

	testCases := []struct {
		name      string
		store     shell.QueriesAndAppendsEvents
		codec     *shell.EventCodec[counterEvent]
		filterFor func(counterCommand) eventstore.Filter
		options   []shell.AggregateOption
		wantErr   error
	}{
		{name: "nil store", store: nil, codec: codec, filterFor: filterForCommand, wantErr: shell.ErrNilEventStore},
		{name: "nil codec", store: store, codec: nil, filterFor: filterForCommand, wantErr: shell.ErrNilEventCodec},
		{name: "nil filter func", store: store, codec: codec, filterFor: nil, wantErr: shell.ErrNilFilterFunc},
		{
			name:      "nil metadata factory",
			store:     store,
			codec:     codec,
			filterFor: filterForCommand,
			options:   []shell.AggregateOption{shell.WithMetadataFactory(nil)},
			wantErr:   shell.ErrNilMetadataFactory,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			aggregate, err := shell.NewEventSourcedAggregate[counterCommand, domain.Option[int], counterEvent](
				counterDecider(), tc.store, tc.codec, tc.filterFor, tc.options...,
			)

			// assert
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, aggregate)
		})
	}
}
