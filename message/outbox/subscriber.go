package outbox

import (
	"sigillo/db"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
)

func SubscribeForPGMessages(conn *sqlx.DB, logger watermill.LoggerAdapter) message.Subscriber {
	subConfig := sql.SubscriberConfig{
		SchemaAdapter:  sql.DefaultPostgreSQLSchema{},
		OffsetsAdapter: sql.DefaultPostgreSQLOffsetsAdapter{},
	}

	sub, err := sql.NewSubscriber(conn, subConfig, logger)
	if err != nil {
		panic(err)
	}
	err = sub.SubscribeInitialize(db.OutboxTopic)
	if err != nil {
		panic(err)
	}

	return sub
}
