package shell

import (
	"context"
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

type (
	MessageID     = string
	CausationID   = string
	CorrelationID = string
)

// EventMetadata is stored next to each event's payload.
type EventMetadata struct {
	MessageID     MessageID
	CausationID   CausationID
	CorrelationID CorrelationID
}

// MetadataFactory builds the metadata for an event decided while handling a command.
type MetadataFactory func(ctx context.Context) EventMetadata

// BuildEventMetadata renders the ids in their canonical string form.
func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	return EventMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// NewEventMetadata starts a new correlation: all three IDs are the same fresh UUID.
func NewEventMetadata(_ context.Context) EventMetadata {
	id := uuid.New()

	return BuildEventMetadata(id, id, id)
}

// EventMetadataFrom reads the metadata of a stored event.
func EventMetadataFrom(storableEvent eventstore.StorableEvent) (EventMetadata, error) {
	var metadata EventMetadata

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(storableEvent.MetadataJSON, &metadata); err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return metadata, nil
}
