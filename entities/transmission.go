package entities

import "time"

// TransmissionKind selects which document dialect a transmission carries.
type TransmissionKind string

const (
	// KindAccessi is the per-event access-control report (RCA).
	KindAccessi TransmissionKind = "rca"
	// KindGiornaliero is the daily aggregate report (RPG).
	KindGiornaliero TransmissionKind = "rpg"
	// KindMensile is the monthly aggregate report (RPM).
	KindMensile TransmissionKind = "rpm"
	// KindLogTransazioni is the per-ticket transaction log (LTR).
	KindLogTransazioni TransmissionKind = "ltr"
)

// Transmission statuses. Only the creation status is written here; the
// delivery transport owns the rest of the lifecycle.
const (
	TransmissionPending      = "pending"
	TransmissionSent         = "sent"
	TransmissionAcknowledged = "acknowledged"
	TransmissionError        = "error"
)

// Intervention codes: an original submission or a correction of a prior one.
const (
	InterventionOriginale  = "ORD"
	InterventionCorrezione = "COR"
)

// Transmission is a generated fiscal document plus its bookkeeping. It is
// created exactly once by the orchestrator with status pending; a COR
// transmission always references the transmission it corrects.
type Transmission struct {
	TransmissionID string           `json:"transmission_id" db:"transmission_id"`
	CompanyID      string           `json:"company_id" db:"company_id"`
	EventID        *string          `json:"event_id,omitempty" db:"event_id"`
	Kind           TransmissionKind `json:"kind" db:"kind"`
	PeriodDate     time.Time        `json:"period_date" db:"period_date"`

	FileName    string `json:"file_name" db:"file_name"`
	Document    string `json:"document" db:"document"`
	ContentHash string `json:"content_hash" db:"content_hash"`
	SystemCode  string `json:"system_code" db:"system_code"`

	Status           string  `json:"status" db:"status"`
	Progressivo      int64   `json:"progressivo" db:"progressivo"`
	InterventionCode string  `json:"intervention_code" db:"intervention_code"`
	OriginalID       *string `json:"original_id,omitempty" db:"original_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
