package eventstore

import (
	"errors"
	"time"
)

var (
	ErrEmptyProjectionType    = errors.New("projection type must not be empty")
	ErrEmptyFilterHash        = errors.New("filter hash must not be empty")
	ErrInvalidSnapshotJSON    = errors.New("snapshot json is not valid")
	ErrSavingSnapshotFailed   = errors.New("saving snapshot failed")
	ErrLoadingSnapshotFailed  = errors.New("loading snapshot failed")
	ErrDeletingSnapshotFailed = errors.New("deleting snapshot failed")
)

// Snapshot is the persisted state of a projection together with the sequence number of the
// last event folded into it. A projection is identified by its type and the Hash of the
// Filter it was built from.
type Snapshot struct {
	ProjectionType string
	FilterHash     string
	SequenceNumber MaxSequenceNumberUint
	DataJSON       []byte
	CreatedAt      time.Time
}

// BuildSnapshot validates the input and returns a Snapshot created now.
func BuildSnapshot(
	projectionType string,
	filterHash string,
	sequenceNumber MaxSequenceNumberUint,
	dataJSON []byte,
) (Snapshot, error) {

	snapshot := Snapshot{
		ProjectionType: projectionType,
		FilterHash:     filterHash,
		SequenceNumber: sequenceNumber,
		DataJSON:       dataJSON,
		CreatedAt:      time.Now().UTC(),
	}

	if err := snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}

// Validate checks that s can be stored.
func (s Snapshot) Validate() error {
	switch {
	case s.ProjectionType == "":
		return ErrEmptyProjectionType
	case s.FilterHash == "":
		return ErrEmptyFilterHash
	case !isValidJSON(s.DataJSON):
		return ErrInvalidSnapshotJSON
	default:
		return nil
	}
}
