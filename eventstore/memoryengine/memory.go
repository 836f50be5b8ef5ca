// Package memoryengine is an in-memory event store with the same contract as postgresengine.
// It backs tests and the CLI's memory driver; nothing survives the process.
package memoryengine

import (
	"context"
	"slices"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

const (
	logMsgQueryCompleted      = "events queried"
	logMsgEventsAppended      = "events appended"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgSnapshotSaved       = "snapshot saved"

	logAttrEventCount       = "event_count"
	logAttrExpectedSequence = "expected_sequence"
	logAttrActualSequence   = "actual_sequence"
	logAttrProjectionType   = "projection_type"

	operationQuery  = "query"
	operationAppend = "append"
)

// Option configures an EventStore.
type Option func(*EventStore) error

// WithLogger sets a logger for operation results.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
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

type storedEvent struct {
	sequenceNumber eventstore.MaxSequenceNumberUint
	event          eventstore.StorableEvent
	payload        map[string]any
}

type snapshotKey struct {
	projectionType string
	filterHash     string
}

// EventStore keeps events and snapshots in memory. It is safe for concurrent use.
type EventStore struct {
	mu               sync.RWMutex
	events           []storedEvent
	snapshots        map[snapshotKey]eventstore.Snapshot
	logger           eventstore.Logger
	metricsCollector eventstore.MetricsCollector
}

// NewEventStore returns an empty EventStore.
func NewEventStore(options ...Option) (*EventStore, error) {
	es := &EventStore{
		snapshots: make(map[snapshotKey]eventstore.Snapshot),
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Query returns the events matching filter in sequence order and the highest sequence
// number among them, or the filter's sequence number bound when nothing matches.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	start := time.Now()

	es.mu.RLock()
	defer es.mu.RUnlock()

	events := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := filter.SequenceNumberHigherThan()

	for _, stored := range es.events {
		if !matches(filter, stored) {
			continue
		}

		events = append(events, stored.event)
		maxSequenceNumber = stored.sequenceNumber
	}

	es.recordDuration(eventstore.MetricQueryDuration, operationQuery, eventstore.StatusSuccess, time.Since(start))
	es.recordCount(eventstore.MetricEventsQueried, operationQuery, len(events))

	if es.logger != nil {
		es.logger.Debug(logMsgQueryCompleted, logAttrEventCount, len(events))
	}

	return events, maxSequenceNumber, nil
}

// Append appends the events if the highest sequence number of the events matching filter,
// ignoring its sequence number bound, is still expectedMaxSequenceNumber.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	toStore := make([]storedEvent, 0, len(allEvents))
	for _, e := range allEvents {
		payload, err := decodePayload(e.PayloadJSON)
		if err != nil {
			return err
		}

		toStore = append(toStore, storedEvent{event: cloneEvent(e), payload: payload})
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	streamFilter := filter.WithSequenceNumberHigherThan(0)
	actual := eventstore.MaxSequenceNumberUint(0)

	for _, stored := range es.events {
		if matches(streamFilter, stored) {
			actual = stored.sequenceNumber
		}
	}

	if actual != expectedMaxSequenceNumber {
		es.incrementCounter(eventstore.MetricConcurrencyConflicts, operationAppend, eventstore.StatusError)

		if es.logger != nil {
			es.logger.Info(logMsgConcurrencyConflict,
				logAttrExpectedSequence, expectedMaxSequenceNumber,
				logAttrActualSequence, actual,
			)
		}

		return eventstore.ErrConcurrencyConflict
	}

	next := eventstore.MaxSequenceNumberUint(len(es.events))
	for i := range toStore {
		next++
		toStore[i].sequenceNumber = next
	}

	es.events = append(es.events, toStore...)

	es.recordDuration(eventstore.MetricAppendDuration, operationAppend, eventstore.StatusSuccess, time.Since(start))
	es.recordCount(eventstore.MetricEventsAppended, operationAppend, len(toStore))

	if es.logger != nil {
		es.logger.Info(logMsgEventsAppended, logAttrEventCount, len(toStore))
	}

	return nil
}

// SaveSnapshot stores snapshot unless one with a higher sequence number exists.
func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := snapshot.Validate(); err != nil {
		return err
	}

	key := snapshotKey{projectionType: snapshot.ProjectionType, filterHash: snapshot.FilterHash}

	es.mu.Lock()
	defer es.mu.Unlock()

	if existing, ok := es.snapshots[key]; ok && existing.SequenceNumber >= snapshot.SequenceNumber {
		return nil
	}

	snapshot.DataJSON = slices.Clone(snapshot.DataJSON)
	es.snapshots[key] = snapshot

	if es.logger != nil {
		es.logger.Debug(logMsgSnapshotSaved, logAttrProjectionType, snapshot.ProjectionType)
	}

	return nil
}

// LoadSnapshot returns the snapshot of projectionType built from filter, nil if there is none.
func (es *EventStore) LoadSnapshot(
	ctx context.Context,
	projectionType string,
	filter eventstore.Filter,
) (*eventstore.Snapshot, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	snapshot, ok := es.snapshots[snapshotKey{projectionType: projectionType, filterHash: filter.Hash()}]
	if !ok {
		return nil, nil //nolint:nilnil // not found is not an error
	}

	return &snapshot, nil
}

// DeleteSnapshot removes the snapshot of projectionType built from filter, if any.
func (es *EventStore) DeleteSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	delete(es.snapshots, snapshotKey{projectionType: projectionType, filterHash: filter.Hash()})

	return nil
}

func (es *EventStore) recordDuration(metric string, operation string, status string, duration time.Duration) {
	if es.metricsCollector == nil {
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, map[string]string{
		eventstore.LabelOperation: operation,
		eventstore.LabelStatus:    status,
	})
}

func (es *EventStore) recordCount(metric string, operation string, count int) {
	if es.metricsCollector == nil {
		return
	}

	es.metricsCollector.RecordValue(metric, float64(count), map[string]string{
		eventstore.LabelOperation: operation,
	})
}

func (es *EventStore) incrementCounter(metric string, operation string, status string) {
	if es.metricsCollector == nil {
		return
	}

	es.metricsCollector.IncrementCounter(metric, map[string]string{
		eventstore.LabelOperation: operation,
		eventstore.LabelStatus:    status,
	})
}

func decodePayload(payloadJSON []byte) (map[string]any, error) {
	payload := make(map[string]any)

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, eventstore.ErrInvalidPayloadJSON
	}

	return payload, nil
}

func cloneEvent(e eventstore.StorableEvent) eventstore.StorableEvent {
	e.PayloadJSON = slices.Clone(e.PayloadJSON)
	e.MetadataJSON = slices.Clone(e.MetadataJSON)

	return e
}
