package siae

import (
	"fmt"
	"time"

	"sigillo/entities"
)

// LogRequest carries the inputs for the per-ticket transaction log, the
// primary dialect of the pipeline.
type LogRequest struct {
	Company     entities.Company
	Event       entities.Event
	Tickets     []entities.Ticket
	GeneratedAt time.Time
	Progressivo int64

	// CartaOverride, when set, wins over every per-ticket activation-card
	// value.
	CartaOverride string

	// SistemaEmissione overrides the emission-system identifier; empty
	// falls back to the company system code, then to the default constant.
	SistemaEmissione string
}

// GenerateLogTransazioni builds the LTR dialect: one Transazione element per
// ticket, attributes in the documented reference order. Cancelled tickets
// always carry the 3-digit reason attribute and a nested Annullamento block
// referencing the original title; omitting that block is a regulatory
// defect, so it is emitted even when the ticket references only itself.
func GenerateLogTransazioni(req LogRequest) (Result, error) {
	if err := validateCompany(req.Company); err != nil {
		return Result{}, err
	}
	if len(req.Tickets) == 0 {
		return Result{}, fmt.Errorf("transaction log requires at least one ticket")
	}

	sistema := req.SistemaEmissione
	if sistema == "" {
		sistema = req.Company.SystemCode
	}
	if sistema == "" {
		sistema = DefaultSistemaEmissione
	}

	var res Result
	w := &xmlWriter{}
	w.header("LogTransazioni")
	w.open("LogTransazioni")
	w.rootAttrs(req.Company, req.GeneratedAt, req.Progressivo)
	w.closeOpen()

	for i, t := range req.Tickets {
		carta := resolveCarta(req.CartaOverride, t.CartaCode)
		if carta == CartaMancante {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("ticket %s: missing activation card identifier, wrote %s", t.TicketID, CartaMancante))
		}

		progressivo := t.Progressivo
		if progressivo == 0 {
			progressivo = int64(i + 1)
		}

		tipo := NormalizeTipoTitolo(t.TypeCode, t.Complimentary)
		cancelled := t.IsCancelled()

		var entertainmentBase int64
		if req.Event.TaxationKind == entities.TaxationIntrattenimento {
			entertainmentBase = ToCentesimi(t.EntertainmentBase)
		}

		res.Stats.Tickets++
		if tipo == TipoTitoloAbbonamento {
			res.Stats.Subscriptions++
		}
		if cancelled {
			res.Stats.Cancelled++
		}
		res.Stats.GrossCents += ToCentesimi(t.Gross)

		w.open("Transazione")
		w.attr("SistemaEmissione", sistema)
		w.attr("CartaAttivazione", carta)
		w.attrInt("ProgressivoTitolo", progressivo)
		w.attr("SigilloFiscale", t.SigilloFiscale)
		w.attr("DataEmissione", FormatData(t.EmittedAt))
		w.attr("OraEmissione", FormatOraEstesa(t.EmittedAt))
		w.attr("TipoTitolo", tipo)
		w.attr("OrdinePosto", NormalizeOrdinePosto(t.SectorCode))
		w.attr("Posto", formatPosto(t.SeatRow, t.SeatNumber))
		w.attrInt("ImportoLordo", ToCentesimi(t.Gross))
		w.attrInt("ImportoNetto", ToCentesimi(t.Net))
		w.attrInt("ImportoIVA", ToCentesimi(t.VAT))
		w.attrInt("ImportoPrevendita", ToCentesimi(t.Presale))
		w.attrInt("IVAPrevendita", ToCentesimi(t.PresaleVAT))
		w.attrInt("ImponibileIntrattenimenti", entertainmentBase)
		w.attr("Annullato", boolFlag(cancelled))
		if cancelled {
			w.attr("CausaleAnnullamento", NormalizeCausaleAnnullamento(t.CancellationReason))
		}

		hasPartecipante := t.FirstName != "" && t.LastName != ""
		if !cancelled && !hasPartecipante {
			w.closeEmpty()
			continue
		}
		w.closeOpen()

		if cancelled {
			causale := NormalizeCausaleAnnullamento(t.CancellationReason)
			originalProgressivo := t.OriginalProgressivo
			if originalProgressivo == 0 {
				originalProgressivo = progressivo
			}
			originalCarta := t.OriginalCarta
			if originalCarta == "" {
				originalCarta = carta
			}
			w.open("Annullamento")
			w.attrInt("ProgressivoOriginale", originalProgressivo)
			w.attr("CartaOriginale", originalCarta)
			w.attr("Causale", causale)
			w.closeEmpty()
		}

		if hasPartecipante {
			w.open("Partecipante")
			w.attr("Nome", t.FirstName)
			w.attr("Cognome", t.LastName)
			w.closeEmpty()
		}

		w.end("Transazione")
	}

	w.end("LogTransazioni")
	res.Document = w.String()
	return res, nil
}

// resolveCarta applies the activation-card priority: explicit override, then
// the per-ticket value, then the MANCANTE placeholder.
func resolveCarta(override, ticketValue string) string {
	if override != "" {
		return override
	}
	if ticketValue != "" {
		return ticketValue
	}
	return CartaMancante
}

func formatPosto(row, number string) string {
	if row == "" && number == "" {
		return ""
	}
	if row == "" {
		return number
	}
	if number == "" {
		return row
	}
	return row + "-" + number
}
