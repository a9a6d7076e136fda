package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"sigillo/entities"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Internal events must never land on the shared external prefix, and
// external ones must never leak onto the service-private one.
func TestBusSplitsTopicsByVisibility(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	bus := NewBus(pubsub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	internal, err := pubsub.Subscribe(ctx, InternalTopic("CardStatusChanged_v1"))
	require.NoError(t, err)
	external, err := pubsub.Subscribe(ctx, ExternalTopic("TransmissionCreated_v1"))
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, entities.CardStatusChanged_v1{
		Header: entities.NewEventHeader(),
		Status: entities.CardStatus{DemoMode: true},
	}))
	require.NoError(t, bus.Publish(ctx, entities.TransmissionCreated_v1{
		Header:         entities.NewEventHeader(),
		TransmissionID: "tm-1",
		Kind:           entities.KindLogTransazioni,
	}))

	select {
	case msg := <-internal:
		var event entities.CardStatusChanged_v1
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.True(t, event.Status.DemoMode)
		msg.Ack()
	case <-time.After(3 * time.Second):
		t.Fatal("no message on the internal topic")
	}

	select {
	case msg := <-external:
		var event entities.TransmissionCreated_v1
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, "tm-1", event.TransmissionID)
		msg.Ack()
	case <-time.After(3 * time.Second):
		t.Fatal("no message on the external topic")
	}
}

func TestTopicPrefixes(t *testing.T) {
	assert.Equal(t, "events.TransmissionCreated_v1", ExternalTopic("TransmissionCreated_v1"))
	assert.Equal(t, "internal-events.svc-sigillo.CardStatusChanged_v1", InternalTopic("CardStatusChanged_v1"))
}
