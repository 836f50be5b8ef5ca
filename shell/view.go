package shell

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

const (
	logMsgProjected           = "view projected"
	logMsgSnapshotMiss        = "snapshot miss"
	logMsgSnapshotLoadError   = "snapshot load error, replaying all events"
	logMsgSnapshotDecodeError = "snapshot deserialization error, replaying all events"
	logMsgSnapshotSaved       = "snapshot saved"
	logMsgSnapshotSaveError   = "snapshot save error"

	logAttrProjectionType = "projection_type"
	logAttrSequenceNumber = "sequence_number"
	logAttrFromSnapshot   = "from_snapshot"
)

// Projection is the state of a View after folding all events of a stream.
type Projection[S any] struct {
	State S

	// SequenceNumber is the highest sequence number folded into State, 0 for an empty stream.
	SequenceNumber eventstore.MaxSequenceNumberUint

	// FromSnapshot is true when State was built on top of a stored snapshot.
	FromSnapshot bool
}

// ViewOption configures a MaterializedView.
type ViewOption func(*viewConfig) error

type viewConfig struct {
	snapshots        SavesAndLoadsSnapshots
	withoutSnapshots bool
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
}

// WithSnapshotStore keeps snapshots in store instead of the event store, e.g. in Redis.
func WithSnapshotStore(store SavesAndLoadsSnapshots) ViewOption {
	return func(c *viewConfig) error {
		if store == nil {
			return ErrNilSnapshotStore
		}

		c.snapshots = store

		return nil
	}
}

// WithoutSnapshots always replays the whole stream.
func WithoutSnapshots() ViewOption {
	return func(c *viewConfig) error {
		c.withoutSnapshots = true
		return nil
	}
}

// WithViewLogger sets a Logger for projection and snapshot outcomes.
func WithViewLogger(logger eventstore.Logger) ViewOption {
	return func(c *viewConfig) error {
		c.logger = logger
		return nil
	}
}

// WithViewContextualLogger takes precedence over WithViewLogger.
func WithViewContextualLogger(logger eventstore.ContextualLogger) ViewOption {
	return func(c *viewConfig) error {
		c.contextualLogger = logger
		return nil
	}
}

// MaterializedView projects event streams into the state of a View.
//
// If the event store can persist snapshots (or WithSnapshotStore is given), the state is
// stored as JSON per projectionType and Filter.Hash, and later projections only fold the
// events appended since. S must therefore survive a JSON round trip. Snapshot problems
// never fail a projection; they fall back to a full replay.
type MaterializedView[S any, E Event] struct {
	view           EvolvesViews[S, E]
	eventStore     QueriesEvents
	codec          *EventCodec[E]
	projectionType string
	config         viewConfig
}

// NewMaterializedView validates its dependencies and options. Snapshots go to the event
// store when it implements SavesAndLoadsSnapshots, unless WithSnapshotStore or
// WithoutSnapshots says otherwise.
func NewMaterializedView[S any, E Event](
	view EvolvesViews[S, E],
	eventStore QueriesEvents,
	codec *EventCodec[E],
	projectionType string,
	options ...ViewOption,
) (*MaterializedView[S, E], error) {

	switch {
	case view == nil:
		return nil, ErrNilView
	case eventStore == nil:
		return nil, ErrNilEventStore
	case codec == nil:
		return nil, ErrNilEventCodec
	case projectionType == "":
		return nil, ErrEmptyProjectionType
	}

	var config viewConfig
	for _, option := range options {
		if err := option(&config); err != nil {
			return nil, err
		}
	}

	if config.snapshots == nil {
		if snapshots, ok := eventStore.(SavesAndLoadsSnapshots); ok {
			config.snapshots = snapshots
		}
	}

	if config.withoutSnapshots {
		config.snapshots = nil
	}

	return &MaterializedView[S, E]{
		view:           view,
		eventStore:     eventStore,
		codec:          codec,
		projectionType: projectionType,
		config:         config,
	}, nil
}

// Project folds all events matching filter into the View's state. A sequence number
// bound on filter is ignored; the projection always covers the whole stream.
func (m *MaterializedView[S, E]) Project(ctx context.Context, filter eventstore.Filter) (Projection[S], error) {
	start := time.Now()
	ctx = eventstore.WithEventualConsistency(ctx)
	filter = filter.WithSequenceNumberHigherThan(0)

	base, ok := m.loadSnapshot(ctx, filter)
	if !ok {
		base = Projection[S]{State: m.view.InitialState()}
	}

	storableEvents, maxSequenceNumber, err := m.eventStore.Query(ctx, filter.WithSequenceNumberHigherThan(base.SequenceNumber))
	if err != nil {
		return Projection[S]{}, errors.Join(ErrQueryingEventsFailed, err)
	}

	events, err := m.codec.DecodeAll(storableEvents)
	if err != nil {
		return Projection[S]{}, err
	}

	state := base.State
	if err := guardContract(func() {
		for _, event := range events {
			state = m.view.Evolve(state, event)
		}
	}); err != nil {
		return Projection[S]{}, err
	}

	projection := Projection[S]{
		State:          state,
		SequenceNumber: max(base.SequenceNumber, maxSequenceNumber),
		FromSnapshot:   base.FromSnapshot,
	}

	if len(events) > 0 {
		m.saveSnapshot(ctx, filter, projection)
	}

	logDebug(ctx, m.config.logger, m.config.contextualLogger, logMsgProjected,
		logAttrProjectionType, m.projectionType,
		logAttrSequenceNumber, projection.SequenceNumber,
		logAttrFromSnapshot, projection.FromSnapshot,
		logAttrEventCount, len(events),
		logAttrDurationMS, time.Since(start).Milliseconds(),
	)

	return projection, nil
}

// ProjectionType identifies the View's snapshots.
func (m *MaterializedView[S, E]) ProjectionType() string {
	return m.projectionType
}

func (m *MaterializedView[S, E]) loadSnapshot(ctx context.Context, filter eventstore.Filter) (Projection[S], bool) {
	if m.config.snapshots == nil {
		return Projection[S]{}, false
	}

	snapshot, err := m.config.snapshots.LoadSnapshot(ctx, m.projectionType, filter)
	if err != nil {
		logWarn(ctx, m.config.logger, m.config.contextualLogger, logMsgSnapshotLoadError,
			logAttrProjectionType, m.projectionType,
			logAttrError, err.Error(),
		)

		return Projection[S]{}, false
	}

	if snapshot == nil {
		logDebug(ctx, m.config.logger, m.config.contextualLogger, logMsgSnapshotMiss,
			logAttrProjectionType, m.projectionType,
		)

		return Projection[S]{}, false
	}

	var state S
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(snapshot.DataJSON, &state); err != nil {
		logWarn(ctx, m.config.logger, m.config.contextualLogger, logMsgSnapshotDecodeError,
			logAttrProjectionType, m.projectionType,
			logAttrError, err.Error(),
		)

		return Projection[S]{}, false
	}

	return Projection[S]{State: state, SequenceNumber: snapshot.SequenceNumber, FromSnapshot: true}, true
}

func (m *MaterializedView[S, E]) saveSnapshot(ctx context.Context, filter eventstore.Filter, projection Projection[S]) {
	if m.config.snapshots == nil {
		return
	}

	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(projection.State)
	if err != nil {
		m.logSnapshotSaveError(ctx, err)
		return
	}

	snapshot, err := eventstore.BuildSnapshot(m.projectionType, filter.Hash(), projection.SequenceNumber, data)
	if err != nil {
		m.logSnapshotSaveError(ctx, err)
		return
	}

	if err := m.config.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		m.logSnapshotSaveError(ctx, err)
		return
	}

	logDebug(ctx, m.config.logger, m.config.contextualLogger, logMsgSnapshotSaved,
		logAttrProjectionType, m.projectionType,
		logAttrSequenceNumber, projection.SequenceNumber,
	)
}

func (m *MaterializedView[S, E]) logSnapshotSaveError(ctx context.Context, err error) {
	logError(ctx, m.config.logger, m.config.contextualLogger, logMsgSnapshotSaveError,
		logAttrProjectionType, m.projectionType,
		logAttrError, err.Error(),
	)
}
