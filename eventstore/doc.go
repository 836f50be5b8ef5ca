// Package eventstore holds what the event store engines and their clients share:
// StorableEvent, the Filter that describes a "dynamic event stream", snapshots,
// the consistency level carried in a context, sentinel errors, and the
// dependency-free observability interfaces.
//
// Engines (postgresengine, memoryengine) implement the same contract:
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	// decide ...
//	err = store.Append(ctx, filter, maxSeq, newEvents...)
//
// Append fails with ErrConcurrencyConflict when events matching filter were appended
// after the Query.
package eventstore
