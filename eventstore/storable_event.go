package eventstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrEmptyEventType      = errors.New("event type must not be empty")
	ErrInvalidPayloadJSON  = errors.New("payload json is not valid")
	ErrInvalidMetadataJSON = errors.New("metadata json is not valid")
)

// StorableEvents is an alias type for a slice of StorableEvent.
type StorableEvents = []StorableEvent

// StorableEvent is the transfer object the event store engines append and query.
//
// It only consists of scalars so that the engines know nothing about the domain events of the client code.
// Build it with BuildStorableEvent or BuildStorableEventWithEmptyMetadata.
type StorableEvent struct {
	EventType    string
	OccurredAt   time.Time
	PayloadJSON  []byte
	MetadataJSON []byte
}

// BuildStorableEvent validates the input and returns a StorableEvent.
func BuildStorableEvent(
	eventType string,
	occurredAt time.Time,
	payloadJSON []byte,
	metadataJSON []byte,
) (StorableEvent, error) {

	if eventType == "" {
		return StorableEvent{}, ErrEmptyEventType
	}

	if !isValidJSON(payloadJSON) {
		return StorableEvent{}, ErrInvalidPayloadJSON
	}

	if !isValidJSON(metadataJSON) {
		return StorableEvent{}, ErrInvalidMetadataJSON
	}

	return StorableEvent{
		EventType:    eventType,
		OccurredAt:   occurredAt,
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// BuildStorableEventWithEmptyMetadata is BuildStorableEvent with "{}" as metadata.
func BuildStorableEventWithEmptyMetadata(eventType string, occurredAt time.Time, payloadJSON []byte) (StorableEvent, error) {
	return BuildStorableEvent(eventType, occurredAt, payloadJSON, []byte("{}"))
}

// isValidJSON reports whether data holds exactly one JSON value, scalars included.
func isValidJSON(data []byte) bool {
	var v any

	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &v) == nil
}
