package eventstore

import (
	"errors"
)

// MaxSequenceNumberUint is the highest sequence number of the events matching a Filter at the time of a Query.
// Append uses it as the expected version of that "dynamic event stream".
type MaxSequenceNumberUint = uint

var (
	// ErrConcurrencyConflict is returned by Append when other events matching the same Filter were appended
	// after the caller's Query. It is the only error worth retrying.
	ErrConcurrencyConflict = errors.New("concurrency conflict, the event stream has changed since it was queried")

	// ErrEmptyEventsTableName is returned when an empty events table name is configured.
	ErrEmptyEventsTableName = errors.New("events table name must not be empty")

	// ErrEmptySnapshotsTableName is returned when an empty snapshots table name is configured.
	ErrEmptySnapshotsTableName = errors.New("snapshots table name must not be empty")

	// ErrNilDatabaseConnection is returned when an engine is created without a database handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrNoEventsToAppend is returned when Append is called without any events.
	ErrNoEventsToAppend = errors.New("no events to append")

	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrAppendingEventFailed        = errors.New("appending the event failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting rows affected failed")
)
