package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

func Test_BuildStorableEvent_ErrorCases(t *testing.T) {
	validPayload := []byte(`{"NumberID": "n-1"}`)
	validMetadata := []byte(`{"MessageID": "m-1"}`)

	tests := []struct {
		name        string
		eventType   string
		payload     []byte
		metadata    []byte
		expectedErr error
	}{
		{name: "empty event type", eventType: "", payload: validPayload, metadata: validMetadata, expectedErr: eventstore.ErrEmptyEventType},
		{name: "invalid payload", eventType: "NumberAdded", payload: []byte(`{"x": y}`), metadata: validMetadata, expectedErr: eventstore.ErrInvalidPayloadJSON},
		{name: "nil payload", eventType: "NumberAdded", payload: nil, metadata: validMetadata, expectedErr: eventstore.ErrInvalidPayloadJSON},
		{name: "invalid metadata", eventType: "NumberAdded", payload: validPayload, metadata: []byte(`{`), expectedErr: eventstore.ErrInvalidMetadataJSON},
		{name: "empty metadata", eventType: "NumberAdded", payload: validPayload, metadata: []byte(``), expectedErr: eventstore.ErrInvalidMetadataJSON},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eventstore.BuildStorableEvent(tc.eventType, time.Now(), tc.payload, tc.metadata)

			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_BuildStorableEvent_Success(t *testing.T) {
	// arrange
	occurredAt := time.Now()
	payload := []byte(`{"NumberID": "n-1", "Value": 2}`)

	// act
	event, err := eventstore.BuildStorableEvent("NumberAdded", occurredAt, payload, []byte(`{"MessageID": "m-1"}`))
	withoutMetadata, errWithout := eventstore.BuildStorableEventWithEmptyMetadata("NumberAdded", occurredAt, payload)

	// assert
	require.NoError(t, err)
	require.NoError(t, errWithout)
	assert.Equal(t, "NumberAdded", event.EventType)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.Equal(t, payload, event.PayloadJSON)
	assert.Equal(t, []byte(`{}`), withoutMetadata.MetadataJSON)
}

func Test_BuildStorableEvent_Accepts_Scalar_Payloads(t *testing.T) {
	for _, payload := range []string{`2`, `12.5`, `"text"`, `true`} {
		t.Run(payload, func(t *testing.T) {
			_, err := eventstore.BuildStorableEvent("NumberAdded", time.Now(), []byte(payload), []byte(`{}`))

			assert.NoError(t, err)
		})
	}
}
