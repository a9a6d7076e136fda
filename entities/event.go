package entities

// TaxationKind discriminates how an event is taxed by the authority.
// "S" is a spectacle, "I" is an entertainment activity; the distinction
// drives the ImponibileIntrattenimenti fields of the generated documents.
type TaxationKind string

const (
	TaxationSpettacolo      TaxationKind = "S"
	TaxationIntrattenimento TaxationKind = "I"
)

// Event is the read model of a ticketed event as produced by the upstream
// ticketing service. It is never mutated here.
type Event struct {
	EventID        string       `json:"event_id" db:"event_id"`
	Name           string       `json:"name" db:"name"`
	Date           string       `json:"date" db:"date"`
	Time           string       `json:"time" db:"time"`
	VenueCode      string       `json:"venue_code" db:"venue_code"`
	GenreCode      string       `json:"genre_code" db:"genre_code"`
	OrganizerTaxID string       `json:"organizer_tax_id" db:"organizer_tax_id"`
	TaxationKind   TaxationKind `json:"taxation_kind" db:"taxation_kind"`
	VATPrepaid     bool         `json:"vat_prepaid" db:"vat_prepaid"`
}
