package shell

import (
	"errors"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

const (
	extensionCausationID   = "causationid"
	extensionCorrelationID = "correlationid"
)

var (
	ErrEmptyCloudEventSource     = errors.New("cloud event source must not be empty")
	ErrMappingToCloudEventFailed = errors.New("mapping to cloud event failed")
)

// ToCloudEvent exports a stored event as a CloudEvent with a JSON payload.
// The message ID becomes the event ID; causation and correlation IDs become extensions.
// Events without metadata get a fresh ID.
func ToCloudEvent(storableEvent eventstore.StorableEvent, source string) (cloudevents.Event, error) {
	if source == "" {
		return cloudevents.Event{}, ErrEmptyCloudEventSource
	}

	metadata, err := EventMetadataFrom(storableEvent)
	if err != nil {
		return cloudevents.Event{}, errors.Join(ErrMappingToCloudEventFailed, err)
	}

	event := cloudevents.NewEvent()
	event.SetType(storableEvent.EventType)
	event.SetSource(source)
	event.SetTime(storableEvent.OccurredAt)

	event.SetID(metadata.MessageID)
	if metadata.MessageID == "" {
		event.SetID(uuid.NewString())
	}

	if metadata.CausationID != "" {
		event.SetExtension(extensionCausationID, metadata.CausationID)
	}

	if metadata.CorrelationID != "" {
		event.SetExtension(extensionCorrelationID, metadata.CorrelationID)
	}

	if err := event.SetData(cloudevents.ApplicationJSON, storableEvent.PayloadJSON); err != nil {
		return cloudevents.Event{}, errors.Join(ErrMappingToCloudEventFailed, err)
	}

	if err := event.Validate(); err != nil {
		return cloudevents.Event{}, errors.Join(ErrMappingToCloudEventFailed, err)
	}

	return event, nil
}

// FromCloudEvent is the inverse of ToCloudEvent.
func FromCloudEvent(event cloudevents.Event) (eventstore.StorableEvent, error) {
	metadata := EventMetadata{MessageID: event.ID()}

	if causationID, ok := event.Extensions()[extensionCausationID].(string); ok {
		metadata.CausationID = causationID
	}

	if correlationID, ok := event.Extensions()[extensionCorrelationID].(string); ok {
		metadata.CorrelationID = correlationID
	}

	metadataJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(metadata)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailed, err)
	}

	storableEvent, err := eventstore.BuildStorableEvent(event.Type(), event.Time(), event.Data(), metadataJSON)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailed, err)
	}

	return storableEvent, nil
}
