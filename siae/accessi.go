package siae

import (
	"fmt"
	"time"

	"sigillo/entities"
)

// AccessiRequest carries the inputs for the per-event access-control report.
type AccessiRequest struct {
	Company     entities.Company
	Event       entities.Event
	GeneratedAt time.Time
	Progressivo int64
}

// GenerateRendicontoAccessi builds the RCA dialect: holder and organizer
// identity plus a single Evento block describing the access-controlled
// event.
func GenerateRendicontoAccessi(req AccessiRequest) (Result, error) {
	if err := validateCompany(req.Company); err != nil {
		return Result{}, err
	}
	if req.Event.EventID == "" {
		return Result{}, fmt.Errorf("access-control report requires an event")
	}

	w := &xmlWriter{}
	w.header("RendicontoAccessi")
	w.open("RendicontoAccessi")
	w.rootAttrs(req.Company, req.GeneratedAt, req.Progressivo)
	w.closeOpen()

	eventDate := ParseData(req.Event.Date)
	w.open("Evento")
	w.attr("CodiceEvento", req.Event.EventID)
	w.attr("Denominazione", req.Event.Name)
	w.attr("DataEvento", FormatData(eventDate))
	w.attr("OraEvento", normalizeOraEvento(req.Event.Time))
	w.attr("CodiceLocale", req.Event.VenueCode)
	w.attr("TipoGenere", req.Event.GenreCode)
	w.attr("CFOrganizzatore", req.Event.OrganizerTaxID)
	w.attr("TipoTassazione", string(req.Event.TaxationKind))
	w.attr("IVAPreassolta", boolFlag(req.Event.VATPrepaid))
	w.closeEmpty()

	w.end("RendicontoAccessi")

	return Result{Document: w.String()}, nil
}

// normalizeOraEvento accepts "HH:MM", "HHMM" or "HH:MM:SS" event times and
// renders HHMM; anything unusable yields the zero sentinel.
func normalizeOraEvento(raw string) string {
	digits := digitsOf(raw)
	if len(digits) >= 4 {
		return digits[:4]
	}
	return ZeroOra
}
