// Package shell runs Deciders and Views against an event store.
//
// EventSourcedAggregate handles commands: it loads the events of a dynamic event stream,
// folds them into the current state, decides, and appends the new events guarded by the
// stream's highest sequence number, retrying on concurrency conflicts.
//
// MaterializedView projects the events of a stream into a View's state, incrementally
// on top of a snapshot when the store can persist them.
//
// EventCodec maps domain events to and from eventstore.StorableEvent.
package shell
