package outbox

import (
	"sigillo/db"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"

	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NewForwarder drains the Postgres outbox towards Redis, so a transmission
// event reaches the delivery transport only after its record is committed.
func NewForwarder(
	pgSubscriber message.Subscriber,
	redisPub message.Publisher,
	logger watermill.LoggerAdapter,
	router *message.Router) (*forwarder.Forwarder, error) {

	fwd, err := forwarder.NewForwarder(pgSubscriber, redisPub, logger,
		forwarder.Config{
			ForwarderTopic: db.OutboxTopic,
			Router:         router,
			Middlewares: []message.HandlerMiddleware{
				func(h message.HandlerFunc) message.HandlerFunc {
					return func(msg *message.Message) ([]*message.Message, error) {
						logrus.WithFields(logrus.Fields{
							"message_id": msg.UUID,
							"metadata":   msg.Metadata,
						}).Info("Forwarding message")
						return h(msg)
					}
				},
			},
		})
	if err != nil {
		return nil, err
	}

	return fwd, nil
}
