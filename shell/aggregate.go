package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/fmodel-go/domain"
	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

const (
	logMsgCommandHandled    = "command handled"
	logMsgCommandIdempotent = "command handled, no events decided"
	logMsgCommandFailed     = "command handling failed"
	logMsgContractViolation = "domain contract violated"

	logAttrCommandType   = "command_type"
	logAttrEventCount    = "event_count"
	logAttrRetryAttempts = "retry_attempts"
	logAttrDurationMS    = "duration_ms"
	logAttrError         = "error"
)

// AggregateOption configures an EventSourcedAggregate.
type AggregateOption func(*aggregateConfig) error

type aggregateConfig struct {
	retryOptions     []RetryOption
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metadataFactory  MetadataFactory
}

// WithRetryOptions configures retrying on concurrency conflicts.
func WithRetryOptions(options ...RetryOption) AggregateOption {
	return func(c *aggregateConfig) error {
		c.retryOptions = append(c.retryOptions, options...)
		return nil
	}
}

// WithLogger sets a Logger for handling outcomes. Without one nothing is logged.
func WithLogger(logger eventstore.Logger) AggregateOption {
	return func(c *aggregateConfig) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger takes precedence over WithLogger.
func WithContextualLogger(logger eventstore.ContextualLogger) AggregateOption {
	return func(c *aggregateConfig) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetadataFactory replaces NewEventMetadata.
func WithMetadataFactory(factory MetadataFactory) AggregateOption {
	return func(c *aggregateConfig) error {
		if factory == nil {
			return ErrNilMetadataFactory
		}

		c.metadataFactory = factory

		return nil
	}
}

// EventSourcedAggregate handles commands with a Decider over a dynamic event stream:
// the stream of a command is whatever filterFor selects.
type EventSourcedAggregate[C any, S any, E Event] struct {
	decider    DecidesCommands[C, S, E]
	eventStore QueriesAndAppendsEvents
	codec      *EventCodec[E]
	filterFor  func(command C) eventstore.Filter
	config     aggregateConfig
}

// NewEventSourcedAggregate validates its dependencies and options. filterFor maps a
// command to the Filter of the stream it is decided on.
func NewEventSourcedAggregate[C any, S any, E Event](
	decider DecidesCommands[C, S, E],
	eventStore QueriesAndAppendsEvents,
	codec *EventCodec[E],
	filterFor func(command C) eventstore.Filter,
	options ...AggregateOption,
) (*EventSourcedAggregate[C, S, E], error) {

	switch {
	case decider == nil:
		return nil, ErrNilDecider
	case eventStore == nil:
		return nil, ErrNilEventStore
	case codec == nil:
		return nil, ErrNilEventCodec
	case filterFor == nil:
		return nil, ErrNilFilterFunc
	}

	config := aggregateConfig{metadataFactory: NewEventMetadata}
	for _, option := range options {
		if err := option(&config); err != nil {
			return nil, err
		}
	}

	return &EventSourcedAggregate[C, S, E]{
		decider:    decider,
		eventStore: eventStore,
		codec:      codec,
		filterFor:  filterFor,
		config:     config,
	}, nil
}

// Handle decides command on the current state of its stream and appends the decided events.
// A conflicting concurrent append restarts the whole cycle on fresh state.
func (a *EventSourcedAggregate[C, S, E]) Handle(ctx context.Context, command C) (HandlerResult[E], error) {
	start := time.Now()
	commandType := fmt.Sprintf("%T", command)
	filter := a.filterFor(command)

	var (
		decided        []E
		sequenceNumber eventstore.MaxSequenceNumberUint
	)

	retryMetrics, err := RetryWithExponentialBackoff(
		ctx,
		func(ctx context.Context) error {
			var attemptErr error
			decided, sequenceNumber, attemptErr = a.handleOnce(ctx, command, filter)

			return attemptErr
		},
		a.config.retryOptions...,
	)

	if err != nil {
		msg := logMsgCommandFailed
		if errors.Is(err, ErrContractViolation) {
			msg = logMsgContractViolation
		}

		a.logError(ctx, msg,
			logAttrCommandType, commandType,
			logAttrRetryAttempts, retryMetrics.Attempts,
			logAttrError, err.Error(),
		)

		return newErrorResult[E](retryMetrics), err
	}

	result := newHandlerResult(decided, sequenceNumber, retryMetrics)

	msg := logMsgCommandHandled
	if result.Idempotent {
		msg = logMsgCommandIdempotent
	}

	a.logInfo(ctx, msg,
		logAttrCommandType, commandType,
		logAttrEventCount, len(decided),
		logAttrRetryAttempts, retryMetrics.Attempts,
		logAttrDurationMS, time.Since(start).Milliseconds(),
	)

	return result, nil
}

func (a *EventSourcedAggregate[C, S, E]) handleOnce(
	ctx context.Context,
	command C,
	filter eventstore.Filter,
) ([]E, eventstore.MaxSequenceNumberUint, error) {

	storableEvents, maxSequenceNumber, err := a.eventStore.Query(eventstore.WithStrongConsistency(ctx), filter)
	if err != nil {
		return nil, 0, errors.Join(ErrQueryingEventsFailed, err)
	}

	history, err := a.codec.DecodeAll(storableEvents)
	if err != nil {
		return nil, 0, err
	}

	var decided []E

	if err := guardContract(func() {
		state := a.decider.InitialState()
		for _, event := range history {
			state = a.decider.Evolve(state, event)
		}

		decided = a.decider.Decide(command, state)
	}); err != nil {
		return nil, 0, err
	}

	if len(decided) == 0 {
		return nil, maxSequenceNumber, nil
	}

	toAppend, err := a.codec.EncodeAll(decided, func() EventMetadata { return a.config.metadataFactory(ctx) })
	if err != nil {
		return nil, 0, err
	}

	if err := a.eventStore.Append(ctx, filter, maxSequenceNumber, toAppend[0], toAppend[1:]...); err != nil {
		if errors.Is(err, eventstore.ErrConcurrencyConflict) {
			return nil, 0, err
		}

		return nil, 0, errors.Join(ErrAppendingEventsFailed, err)
	}

	return decided, maxSequenceNumber, nil
}

// guardContract turns the fault a leaf Decider or View raises for an unrecognized
// variant into an error. Any other panic is not ours to handle.
func guardContract(fn func()) (err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}

		var violation *domain.UnrecognizedVariantError
		if asErr, ok := recovered.(error); ok && errors.As(asErr, &violation) {
			err = errors.Join(ErrContractViolation, asErr)
			return
		}

		panic(recovered)
	}()

	fn()

	return nil
}

func (a *EventSourcedAggregate[C, S, E]) logInfo(ctx context.Context, msg string, args ...any) {
	logInfo(ctx, a.config.logger, a.config.contextualLogger, msg, args...)
}

func (a *EventSourcedAggregate[C, S, E]) logError(ctx context.Context, msg string, args ...any) {
	logError(ctx, a.config.logger, a.config.contextualLogger, msg, args...)
}
