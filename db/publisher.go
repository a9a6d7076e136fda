package db

import (
	"database/sql"

	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
)

// OutboxTopic is the Postgres-side topic the forwarder drains towards Redis.
const OutboxTopic = "events_to_forward"

// TransmissionCreatedTopic is the Redis stream the delivery transport
// subscribes to. The name mirrors the cqrs topic derived from the event
// struct so in-process processors and external consumers agree.
const TransmissionCreatedTopic = "events.TransmissionCreated_v1"

// PublishInTx writes the message into the outbox table within the caller's
// transaction, wrapped in the forwarder envelope targeting the Redis topic.
func PublishInTx(
	msg *message.Message,
	tx *sql.Tx,
	logger watermill.LoggerAdapter,
) error {
	publisher, err := watermillSQL.NewPublisher(
		tx,
		watermillSQL.PublisherConfig{
			SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
		},
		logger,
	)
	if err != nil {
		return err
	}

	fwdPublisher := forwarder.NewPublisher(publisher, forwarder.PublisherConfig{
		ForwarderTopic: OutboxTopic,
	})

	return fwdPublisher.Publish(TransmissionCreatedTopic, msg)
}
