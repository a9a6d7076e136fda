package event

import (
	"fmt"

	"sigillo/entities"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NewBus routes events by visibility: internal events stay on the
// service-private prefix, everything else rides the shared external prefix
// the delivery transport consumes.
func NewBus(publisher message.Publisher) *cqrs.EventBus {
	eventBus, err := cqrs.NewEventBusWithConfig(publisher, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			event, ok := params.Event.(entities.IEvent)
			if !ok {
				return "", fmt.Errorf("%T does not implement entities.IEvent", params.Event)
			}
			if event.IsInternal() {
				return InternalTopic(params.EventName), nil
			}
			return ExternalTopic(params.EventName), nil
		},
		Marshaler: marshaler,
	})
	if err != nil {
		panic(err)
	}
	return eventBus
}
