package shell

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

var (
	ErrEmptyEventType               = errors.New("event type must not be empty")
	ErrDuplicateEventType           = errors.New("event type is already registered")
	ErrVariantNotAnEvent            = errors.New("variant does not implement the event union")
	ErrUnknownEventType             = errors.New("unknown event type")
	ErrMappingToDomainEventFailed   = errors.New("mapping to domain event failed")
	ErrMappingToStorableEventFailed = errors.New("mapping to storable event failed")
)

type decodeFunc[E any] func(payloadJSON []byte) (E, error)

// EventCodec maps the variants of the event union E to and from StorableEvents.
// Register all variants before first use; after that it is safe for concurrent use.
type EventCodec[E Event] struct {
	decoders map[string]decodeFunc[E]
}

// NewEventCodec returns an empty codec; add variants with Register or MustRegister.
func NewEventCodec[E Event]() *EventCodec[E] {
	return &EventCodec[E]{decoders: make(map[string]decodeFunc[E])}
}

// Register adds the variant V of the union E. Its event type is taken from the zero value of V,
// so EventType must not depend on the fields.
func Register[E Event, V Event](codec *EventCodec[E]) error {
	var zero V

	if _, ok := any(zero).(E); !ok {
		return errors.Join(ErrVariantNotAnEvent, fmt.Errorf("%T", zero))
	}

	eventType := zero.EventType()
	if eventType == "" {
		return ErrEmptyEventType
	}

	if _, exists := codec.decoders[eventType]; exists {
		return errors.Join(ErrDuplicateEventType, fmt.Errorf("%s", eventType))
	}

	codec.decoders[eventType] = func(payloadJSON []byte) (E, error) {
		var variant V

		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(payloadJSON, &variant); err != nil {
			var none E
			return none, err
		}

		return any(variant).(E), nil
	}

	return nil
}

// MustRegister is Register for package-level codec setup.
func MustRegister[E Event, V Event](codec *EventCodec[E]) *EventCodec[E] {
	if err := Register[E, V](codec); err != nil {
		panic(err)
	}

	return codec
}

// Knows reports whether eventType is registered.
func (c *EventCodec[E]) Knows(eventType string) bool {
	_, ok := c.decoders[eventType]

	return ok
}

// EventTypes returns all registered event types, e.g. to build a Filter.
func (c *EventCodec[E]) EventTypes() []string {
	eventTypes := make([]string, 0, len(c.decoders))
	for eventType := range c.decoders {
		eventTypes = append(eventTypes, eventType)
	}

	return eventTypes
}

// Encode serializes event and metadata. Unregistered event types are rejected, so
// everything encoded can be decoded again.
func (c *EventCodec[E]) Encode(event E, metadata EventMetadata) (eventstore.StorableEvent, error) {
	if !c.Knows(event.EventType()) {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailed, ErrUnknownEventType)
	}

	payloadJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(event)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailed, err)
	}

	metadataJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(metadata)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailed, err)
	}

	storableEvent, err := eventstore.BuildStorableEvent(event.EventType(), event.HasOccurredAt(), payloadJSON, metadataJSON)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailed, err)
	}

	return storableEvent, nil
}

// EncodeAll encodes events with one metadata factory call per event.
func (c *EventCodec[E]) EncodeAll(events []E, metadata func() EventMetadata) (eventstore.StorableEvents, error) {
	storableEvents := make(eventstore.StorableEvents, 0, len(events))

	for _, event := range events {
		storableEvent, err := c.Encode(event, metadata())
		if err != nil {
			return nil, err
		}

		storableEvents = append(storableEvents, storableEvent)
	}

	return storableEvents, nil
}

// Decode maps a stored event back to its registered variant.
func (c *EventCodec[E]) Decode(storableEvent eventstore.StorableEvent) (E, error) {
	var none E

	decode, ok := c.decoders[storableEvent.EventType]
	if !ok {
		return none, errors.Join(
			ErrMappingToDomainEventFailed,
			ErrUnknownEventType,
			fmt.Errorf("%s", storableEvent.EventType),
		)
	}

	event, err := decode(storableEvent.PayloadJSON)
	if err != nil {
		return none, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}

// DecodeAll decodes in order and stops at the first failure.
func (c *EventCodec[E]) DecodeAll(storableEvents eventstore.StorableEvents) ([]E, error) {
	events := make([]E, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		event, err := c.Decode(storableEvent)
		if err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	return events, nil
}
