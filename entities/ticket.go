package entities

import "time"

// Ticket statuses as received from the upstream ticketing service.
const (
	TicketStatusActive    = "active"
	TicketStatusCancelled = "cancelled"
	TicketStatusRefunded  = "refunded"
	TicketStatusVoided    = "voided"
)

// CancelledStatuses is the set of ticket statuses that mark a ticket as
// cancelled on their own, independent of reason code or timestamp.
var CancelledStatuses = map[string]bool{
	TicketStatusCancelled: true,
	TicketStatusRefunded:  true,
	TicketStatusVoided:    true,
}

// Ticket is the read model of an emitted ticket. Amounts are decimal euros;
// conversion to integer cents happens only at document-generation time.
type Ticket struct {
	TicketID       string     `json:"ticket_id" db:"ticket_id"`
	SigilloFiscale string     `json:"sigillo_fiscale" db:"sigillo_fiscale"`
	Progressivo    int64      `json:"progressivo" db:"progressivo"`
	CartaCode      string     `json:"carta_code" db:"carta_code"`
	Channel        string     `json:"channel" db:"channel"`
	EmittedAt      *time.Time `json:"emitted_at" db:"emitted_at"`

	TypeCode   string `json:"type_code" db:"type_code"`
	SectorCode string `json:"sector_code" db:"sector_code"`

	Gross             float64 `json:"gross" db:"gross"`
	Net               float64 `json:"net" db:"net"`
	VAT               float64 `json:"vat" db:"vat"`
	Presale           float64 `json:"presale" db:"presale"`
	PresaleVAT        float64 `json:"presale_vat" db:"presale_vat"`
	EntertainmentBase float64 `json:"entertainment_base" db:"entertainment_base"`

	Status             string     `json:"status" db:"status"`
	CancellationReason string     `json:"cancellation_reason" db:"cancellation_reason"`
	CancelledAt        *time.Time `json:"cancelled_at" db:"cancelled_at"`
	Complimentary      bool       `json:"complimentary" db:"complimentary"`

	SeatRow    string `json:"seat_row" db:"seat_row"`
	SeatNumber string `json:"seat_number" db:"seat_number"`
	FirstName  string `json:"first_name" db:"first_name"`
	LastName   string `json:"last_name" db:"last_name"`

	// Cancellation/replacement chain back to the ticket being voided.
	OriginalProgressivo int64  `json:"original_progressivo" db:"original_progressivo"`
	OriginalCarta       string `json:"original_carta" db:"original_carta"`
}

// IsCancelled reports whether any of the three independent cancellation
// signals is present: cancelled-class status, reason code, or timestamp.
func (t Ticket) IsCancelled() bool {
	return CancelledStatuses[t.Status] || t.CancellationReason != "" || t.CancelledAt != nil
}
