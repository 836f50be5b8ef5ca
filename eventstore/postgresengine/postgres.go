package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
	"github.com/AntonStoeckl/fmodel-go/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName    = "events"
	defaultSnapshotTableName = "snapshots"

	dialectPostgres = "postgres"

	colSequenceNumber = "sequence_number"
	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colOrdinal        = "ordinal"

	cteContext  = "context"
	cteVals     = "vals"
	aliasMaxSeq = "max_seq"

	castInt       = "?::integer"
	castText      = "?::text"
	castTimestamp = "?::timestamp with time zone"
	castJsonb     = "?::jsonb"
	jsonContains  = "? @> ?::jsonb"
)

// EventStore is a PostgreSQL backed event store for "dynamic event streams":
// streams are not stored as such but selected by an eventstore.Filter on one events table.
type EventStore struct {
	db                adapters.DBAdapter
	eventTableName    string
	snapshotTableName string
	logger            eventstore.Logger
	contextualLogger  eventstore.ContextualLogger
	metricsCollector  eventstore.MetricsCollector
}

// NewEventStoreFromPGXPool creates an EventStore on a pgx pool.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options)
}

// NewEventStoreFromPGXPoolAndReplica creates an EventStore on a pgx pool that serves
// eventually consistent queries from replica.
func NewEventStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil || replica == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(db, replica), options)
}

// NewEventStoreFromSQLDB creates an EventStore on a database/sql handle.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options)
}

// NewEventStoreFromSQLDBAndReplica is NewEventStoreFromSQLDB with a replica for eventually consistent queries.
func NewEventStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (EventStore, error) {
	if db == nil || replica == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapterWithReplica(db, replica), options)
}

// NewEventStoreFromSQLX creates an EventStore on a sqlx handle.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options)
}

// NewEventStoreFromSQLXAndReplica is NewEventStoreFromSQLX with a replica for eventually consistent queries.
func NewEventStoreFromSQLXAndReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (EventStore, error) {
	if db == nil || replica == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapterWithReplica(db, replica), options)
}

func newEventStore(db adapters.DBAdapter, options []Option) (EventStore, error) {
	es := EventStore{
		db:                db,
		eventTableName:    defaultEventTableName,
		snapshotTableName: defaultSnapshotTableName,
	}

	for _, option := range options {
		if err := option(&es); err != nil {
			return EventStore{}, err
		}
	}

	return es, nil
}

// Query returns the events matching filter in sequence order, together with the highest
// sequence number among them. Without matching events, the filter's sequence number bound is returned.
//
// Queries go to the primary unless ctx carries eventstore.EventualConsistency.
func (es EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	start := time.Now()

	sqlQuery, buildErr := es.buildSelectQuery(filter)
	if buildErr != nil {
		es.logError(ctx, operationQuery, buildErr)
		return nil, 0, buildErr
	}

	consistency := eventstore.GetConsistencyLevel(ctx)

	var rows adapters.DBRows
	var queryErr error

	if consistency == eventstore.EventualConsistency {
		rows, queryErr = es.db.QueryReplica(ctx, sqlQuery)
	} else {
		rows, queryErr = es.db.Query(ctx, sqlQuery)
	}

	es.logSQL(ctx, operationQuery, sqlQuery, time.Since(start))

	if queryErr != nil {
		es.logError(ctx, operationQuery, queryErr, logAttrQuery, sqlQuery)
		es.recordDuration(eventstore.MetricQueryDuration, operationQuery, eventstore.StatusError, time.Since(start))

		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer es.closeRows(ctx, rows)

	events, maxSequenceNumber, scanErr := es.scanEvents(rows, filter.SequenceNumberHigherThan())
	if scanErr != nil {
		es.logError(ctx, operationQuery, scanErr)
		es.recordDuration(eventstore.MetricQueryDuration, operationQuery, eventstore.StatusError, time.Since(start))

		return nil, 0, scanErr
	}

	duration := time.Since(start)
	es.recordDuration(eventstore.MetricQueryDuration, operationQuery, eventstore.StatusSuccess, duration)
	es.recordCount(eventstore.MetricEventsQueried, operationQuery, len(events))
	es.logInfo(ctx, logMsgQueryCompleted,
		logAttrEventCount, len(events),
		logAttrConsistency, consistency.String(),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return events, maxSequenceNumber, nil
}

func (es EventStore) scanEvents(rows adapters.DBRows, sequenceNumberHigherThan eventstore.MaxSequenceNumberUint) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	events := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := sequenceNumberHigherThan

	for rows.Next() {
		var (
			eventType      string
			occurredAt     time.Time
			payload        []byte
			metadata       []byte
			sequenceNumber eventstore.MaxSequenceNumberUint
		)

		if err := rows.Scan(&eventType, &occurredAt, &payload, &metadata, &sequenceNumber); err != nil {
			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
		}

		event, err := eventstore.BuildStorableEvent(eventType, occurredAt, payload, metadata)
		if err != nil {
			return nil, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, err)
		}

		events = append(events, event)
		maxSequenceNumber = sequenceNumber
	}

	if err := rows.Err(); err != nil {
		return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
	}

	return events, maxSequenceNumber, nil
}

func (es EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		es.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

// Append appends the events atomically, but only if the highest sequence number of the
// events matching filter is still expectedMaxSequenceNumber. Otherwise nothing is written
// and eventstore.ErrConcurrencyConflict is returned.
//
// filter should be the one used for the Query the decision was based on. Its sequence
// number bound is ignored: the check always covers the whole stream.
func (es EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	start := time.Now()
	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	sqlQuery, buildErr := es.buildAppendQuery(allEvents, filter, expectedMaxSequenceNumber)
	if buildErr != nil {
		es.logError(ctx, operationAppend, buildErr, logAttrEventCount, len(allEvents))
		return buildErr
	}

	result, execErr := es.db.Exec(ctx, sqlQuery)
	es.logSQL(ctx, operationAppend, sqlQuery, time.Since(start))

	if execErr != nil {
		es.logError(ctx, operationAppend, execErr, logAttrQuery, sqlQuery)
		es.recordDuration(eventstore.MetricAppendDuration, operationAppend, eventstore.StatusError, time.Since(start))

		return errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		es.logError(ctx, operationAppend, rowsErr)
		return errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsErr)
	}

	duration := time.Since(start)

	if rowsAffected < int64(len(allEvents)) {
		es.incrementCounter(eventstore.MetricConcurrencyConflicts, operationAppend, eventstore.StatusError)
		es.recordDuration(eventstore.MetricAppendDuration, operationAppend, eventstore.StatusError, duration)
		es.logInfo(ctx, logMsgConcurrencyConflict,
			logAttrEventCount, len(allEvents),
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
		)

		return eventstore.ErrConcurrencyConflict
	}

	es.recordDuration(eventstore.MetricAppendDuration, operationAppend, eventstore.StatusSuccess, duration)
	es.recordCount(eventstore.MetricEventsAppended, operationAppend, len(allEvents))
	es.logInfo(ctx, logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil
}

func (es EventStore) buildSelectQuery(filter eventstore.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	where, err := filterExpression(filter)
	if err != nil {
		return "", err
	}

	if where != nil {
		selectStmt = selectStmt.Where(where)
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildAppendQuery builds one statement for any number of events:
//
//	WITH context AS (SELECT MAX(sequence_number) AS max_seq FROM events WHERE <filter>),
//	     vals AS (SELECT ... UNION ALL SELECT ...)
//	INSERT INTO events (...) SELECT vals.* FROM context, vals
//	WHERE COALESCE(max_seq, 0) = <expected> ORDER BY vals.ordinal
func (es EventStore) buildAppendQuery(
	events eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, error) {

	if len(events) == 0 {
		return "", eventstore.ErrNoEventsToAppend
	}

	builder := goqu.Dialect(dialectPostgres)

	contextStmt := builder.
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	where, err := filterExpression(filter.WithSequenceNumberHigherThan(0))
	if err != nil {
		return "", err
	}

	if where != nil {
		contextStmt = contextStmt.Where(where)
	}

	var valsStmt *goqu.SelectDataset

	for i, event := range events {
		row := builder.Select(
			goqu.L(castInt, i).As(colOrdinal),
			goqu.L(castText, event.EventType).As(colEventType),
			goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
			goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
		)

		if valsStmt == nil {
			valsStmt = row
			continue
		}

		valsStmt = valsStmt.UnionAll(row)
	}

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, contextStmt).
		With(cteVals, valsStmt).
		FromQuery(
			builder.
				From(cteContext, cteVals).
				Select(
					goqu.I(cteVals+"."+colEventType),
					goqu.I(cteVals+"."+colOccurredAt),
					goqu.I(cteVals+"."+colPayload),
					goqu.I(cteVals+"."+colMetadata),
				).
				Where(goqu.COALESCE(goqu.I(cteContext+"."+aliasMaxSeq), 0).Eq(expectedMaxSequenceNumber)).
				Order(goqu.I(cteVals + "." + colOrdinal).Asc()),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// filterExpression translates filter into a WHERE expression, nil when it matches everything.
func filterExpression(filter eventstore.Filter) (exp.Expression, error) {
	conditions := make([]exp.Expression, 0, 4)
	items := make([]exp.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		itemConditions := make([]exp.Expression, 0, 2)

		if len(item.EventTypes()) > 0 {
			itemConditions = append(itemConditions, goqu.C(colEventType).In(item.EventTypes()))
		}

		if len(item.Predicates()) > 0 {
			predicates := make([]exp.Expression, 0, len(item.Predicates()))

			for _, predicate := range item.Predicates() {
				containment, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(map[string]string{predicate.Key(): predicate.Val()})
				if err != nil {
					return nil, errors.Join(eventstore.ErrBuildingQueryFailed, err)
				}

				predicates = append(predicates, goqu.L(jsonContains, goqu.C(colPayload), string(containment)))
			}

			if item.AllPredicatesMustMatch() {
				itemConditions = append(itemConditions, goqu.And(predicates...))
			} else {
				itemConditions = append(itemConditions, goqu.Or(predicates...))
			}
		}

		items = append(items, goqu.And(itemConditions...))
	}

	if len(items) > 0 {
		conditions = append(conditions, goqu.Or(items...))
	}

	if !filter.OccurredFrom().IsZero() {
		conditions = append(conditions, goqu.C(colOccurredAt).Gte(filter.OccurredFrom()))
	}

	if !filter.OccurredUntil().IsZero() {
		conditions = append(conditions, goqu.C(colOccurredAt).Lte(filter.OccurredUntil()))
	}

	if filter.SequenceNumberHigherThan() > 0 {
		conditions = append(conditions, goqu.C(colSequenceNumber).Gt(filter.SequenceNumberHigherThan()))
	}

	if len(conditions) == 0 {
		return nil, nil
	}

	return goqu.And(conditions...), nil
}
