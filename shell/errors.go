package shell

import "errors"

var (
	// ErrContractViolation marks an error caused by a broken domain contract, e.g. a leaf Decider
	// receiving a variant it does not handle. It is never retried.
	ErrContractViolation = errors.New("domain contract violation")

	ErrNilDecider          = errors.New("decider must not be nil")
	ErrNilView             = errors.New("view must not be nil")
	ErrNilEventStore       = errors.New("event store must not be nil")
	ErrNilEventCodec       = errors.New("event codec must not be nil")
	ErrNilFilterFunc       = errors.New("filter function must not be nil")
	ErrNilMetadataFactory  = errors.New("metadata factory must not be nil")
	ErrNilSnapshotStore    = errors.New("snapshot store must not be nil")
	ErrEmptyProjectionType = errors.New("projection type must not be empty")

	ErrQueryingEventsFailed  = errors.New("querying events failed")
	ErrAppendingEventsFailed = errors.New("appending events failed")
)
