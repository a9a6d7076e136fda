package siae

import (
	"fmt"
	"time"

	"sigillo/entities"
)

// EventTickets pairs an event with the tickets emitted for it inside the
// reporting period.
type EventTickets struct {
	Event   entities.Event
	Tickets []entities.Ticket
}

// RiepilogoRequest carries the inputs for the daily or monthly aggregate
// report. Both variants share the same shape; the monthly one additionally
// rolls up the entertainment taxable base and the VAT excess on
// complimentary tickets, fields that are forbidden in the daily variant.
type RiepilogoRequest struct {
	Company     entities.Company
	Monthly     bool
	PeriodDate  time.Time
	GeneratedAt time.Time
	Progressivo int64
	Events      []EventTickets
}

type tipoRollup struct {
	count        int
	grossCents   int64
	presaleCents int64
}

// GenerateRiepilogo builds the RPG/RPM dialect: N Evento blocks, each
// rolling up ticket counts and amounts by canonical type code.
func GenerateRiepilogo(req RiepilogoRequest) (Result, error) {
	if err := validateCompany(req.Company); err != nil {
		return Result{}, err
	}
	if len(req.Events) == 0 {
		return Result{}, fmt.Errorf("aggregate report requires at least one event")
	}

	root := "RiepilogoGiornaliero"
	if req.Monthly {
		root = "RiepilogoMensile"
	}

	var res Result
	w := &xmlWriter{}
	w.header(root)
	w.open(root)
	w.rootAttrs(req.Company, req.GeneratedAt, req.Progressivo)
	w.attr("DataRiepilogo", FormatData(&req.PeriodDate))
	w.closeOpen()

	for _, et := range req.Events {
		rollups := map[string]*tipoRollup{}
		var entertainmentBaseCents, omaggioVATCents int64
		for _, t := range et.Tickets {
			code := NormalizeTipoTitolo(t.TypeCode, t.Complimentary)
			r := rollups[code]
			if r == nil {
				r = &tipoRollup{}
				rollups[code] = r
			}
			r.count++
			r.grossCents += ToCentesimi(t.Gross)
			r.presaleCents += ToCentesimi(t.Presale)

			res.Stats.Tickets++
			if code == TipoTitoloAbbonamento {
				res.Stats.Subscriptions++
			}
			if t.IsCancelled() {
				res.Stats.Cancelled++
			}
			res.Stats.GrossCents += ToCentesimi(t.Gross)

			if req.Monthly {
				if et.Event.TaxationKind == entities.TaxationIntrattenimento {
					entertainmentBaseCents += ToCentesimi(t.EntertainmentBase)
				}
				if code == TipoTitoloOmaggio {
					omaggioVATCents += ToCentesimi(t.VAT)
				}
			}
		}

		eventDate := ParseData(et.Event.Date)
		w.open("Evento")
		w.attr("CodiceEvento", et.Event.EventID)
		w.attr("DataEvento", FormatData(eventDate))
		w.attr("CodiceLocale", et.Event.VenueCode)
		w.attr("TipoGenere", et.Event.GenreCode)
		w.attr("CFOrganizzatore", et.Event.OrganizerTaxID)
		w.attr("TipoTassazione", string(et.Event.TaxationKind))
		if req.Monthly {
			// Month-only fields; the daily variant must not carry them.
			w.attrInt("ImponibileIntrattenimenti", entertainmentBaseCents)
			w.attrInt("EccedenzaIVAOmaggi", omaggioVATCents)
		}
		w.closeOpen()

		// Fixed emission order over the canonical codes keeps the output
		// deterministic regardless of map iteration.
		for _, code := range []string{TipoTitoloIntero, TipoTitoloRidotto, TipoTitoloOmaggio, TipoTitoloAbbonamento} {
			r := rollups[code]
			if r == nil {
				continue
			}
			w.open("TitoliEmessi")
			w.attr("TipoTitolo", code)
			w.attrInt("Quantita", int64(r.count))
			w.attrInt("ImportoLordo", r.grossCents)
			w.attrInt("ImportoPrevendita", r.presaleCents)
			w.closeEmpty()
		}

		w.end("Evento")
	}

	w.end(root)
	res.Document = w.String()
	return res, nil
}
