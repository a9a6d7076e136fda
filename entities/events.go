package entities

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

// IEvent is implemented by every bus event; internal events stay on the
// service-private topic prefix.
type IEvent interface {
	IsInternal() bool
}

// TransmissionCreated_v1 is published through the Postgres outbox when the
// orchestrator persists a new pending transmission. The delivery transport
// consumes it to pick up the generated artifact.
type TransmissionCreated_v1 struct {
	Header EventHeader `json:"header"`

	TransmissionID string           `json:"transmission_id"`
	CompanyID      string           `json:"company_id"`
	Kind           TransmissionKind `json:"kind"`
	FileName       string           `json:"file_name"`
	ContentHash    string           `json:"content_hash"`
	Progressivo    int64            `json:"progressivo"`
}

func (e TransmissionCreated_v1) IsInternal() bool {
	return false
}

// CardStatusChanged_v1 is published on every card state transition and
// fanned out to all connected bridge clients.
type CardStatusChanged_v1 struct {
	Header EventHeader `json:"header"`

	Status CardStatus `json:"status"`
}

func (e CardStatusChanged_v1) IsInternal() bool {
	return true
}
