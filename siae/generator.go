package siae

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"sigillo/entities"
)

// DefaultSistemaEmissione is the emission-system identifier stamped into
// transactions when the company configuration does not carry one.
const DefaultSistemaEmissione = "SGL00001"

// CartaMancante is the placeholder written when no activation-card
// identifier can be resolved for a ticket. It is never emitted silently: a
// warning always accompanies it.
const CartaMancante = "MANCANTE"

// Stats summarizes a generated document for the orchestrator's result.
type Stats struct {
	Tickets       int   `json:"tickets"`
	Subscriptions int   `json:"subscriptions"`
	Cancelled     int   `json:"cancelled"`
	GrossCents    int64 `json:"gross_cents"`
}

// Result is the outcome of one generator run. Warnings are advisory and
// never block the pipeline.
type Result struct {
	Document string
	Warnings []string
	Stats    Stats
}

type xmlWriter struct {
	b strings.Builder
}

func (w *xmlWriter) header(root string) {
	w.b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	w.b.WriteString("<!DOCTYPE " + root + ">\n")
}

func (w *xmlWriter) open(element string) {
	w.b.WriteString("<" + element)
}

// attr emits one attribute; values pass through the single-pass escaper
// exactly once.
func (w *xmlWriter) attr(name, value string) {
	w.b.WriteString(` ` + name + `="` + EscapeXML(value) + `"`)
}

func (w *xmlWriter) attrInt(name string, value int64) {
	w.b.WriteString(` ` + name + `="` + strconv.FormatInt(value, 10) + `"`)
}

func (w *xmlWriter) closeOpen() {
	w.b.WriteString(">\n")
}

func (w *xmlWriter) closeEmpty() {
	w.b.WriteString("/>\n")
}

func (w *xmlWriter) end(element string) {
	w.b.WriteString("</" + element + ">\n")
}

func (w *xmlWriter) String() string {
	return w.b.String()
}

// rootAttrs writes the generation attributes shared by all three dialects,
// in the documented order.
func (w *xmlWriter) rootAttrs(company entities.Company, generatedAt time.Time, progressivo int64) {
	w.attr("DataGenerazione", FormatData(&generatedAt))
	w.attr("OraGenerazione", FormatOraEstesa(&generatedAt))
	w.attrInt("ProgressivoInvio", progressivo)
	w.attr("CFTitolare", company.TaxID)
	w.attr("Denominazione", company.BusinessName)
	w.attr("CodiceSistema", company.SystemCode)
	w.attr("CodiceRichiedente", FormatCodiceRichiedente("", company.SystemCode))
}

func boolFlag(v bool) string {
	if v {
		return "S"
	}
	return "N"
}

func validateCompany(company entities.Company) error {
	if len(company.SystemCode) != 8 {
		return fmt.Errorf("codice sistema %q must be exactly 8 characters", company.SystemCode)
	}
	if company.TaxID == "" {
		return fmt.Errorf("missing holder tax id")
	}
	return nil
}
