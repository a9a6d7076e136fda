package siae

import (
	"testing"
	"time"

	"sigillo/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateValidLog(t *testing.T, tickets []entities.Ticket) string {
	t.Helper()
	res, err := GenerateLogTransazioni(LogRequest{
		Company:     testCompany,
		Event:       testEvent(entities.TaxationSpettacolo),
		GeneratedAt: time.Date(2025, 7, 14, 8, 0, 0, 0, time.UTC),
		Progressivo: 3,
		Tickets:     tickets,
	})
	require.NoError(t, err)
	return res.Document
}

func TestValidateC1ReportAcceptsGeneratedDocument(t *testing.T) {
	doc := generateValidLog(t, []entities.Ticket{
		{TicketID: "a", CartaCode: "C", EmittedAt: emitted(), Status: entities.TicketStatusActive, Gross: 10.50},
		{TicketID: "b", CartaCode: "C", EmittedAt: emitted(), Status: entities.TicketStatusActive, Gross: 4.25},
	})

	res := ValidateC1Report(doc)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, res.Summary.Transactions)
	assert.Equal(t, testCompany.TaxID, res.Summary.CFTitolare)
	assert.Equal(t, testCompany.SystemCode, res.Summary.SistemaEmissione)
	assert.Equal(t, int64(1475), res.Summary.GrossCents)
}

func TestValidateC1ReportZeroTransactions(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<!DOCTYPE LogTransazioni>` + "\n" +
		`<LogTransazioni DataGenerazione="20250714" OraGenerazione="080000" ProgressivoInvio="3" CFTitolare="01234567890" CodiceSistema="SGL00001">` + "\n" +
		`</LogTransazioni>` + "\n"

	res := ValidateC1Report(doc)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "no Transazione")
	assert.Equal(t, 0, res.Summary.Transactions)
}

func TestValidateMissingXMLDeclaration(t *testing.T) {
	res := Validate(entities.KindLogTransazioni, `<LogTransazioni/>`)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "missing XML declaration")
}

func TestValidateWrongEncoding(t *testing.T) {
	res := Validate(entities.KindLogTransazioni,
		`<?xml version="1.0" encoding="ISO-8859-1"?><LogTransazioni/>`)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "XML declaration does not declare UTF-8")
}

func TestValidateWrongRoot(t *testing.T) {
	doc := generateValidLog(t, []entities.Ticket{
		{TicketID: "a", CartaCode: "C", EmittedAt: emitted(), Status: entities.TicketStatusActive},
	})
	res := Validate(entities.KindGiornaliero, doc)
	assert.False(t, res.Valid)
}

func TestValidateDailyForbidsMonthlyFields(t *testing.T) {
	event := testEvent(entities.TaxationIntrattenimento)
	req := RiepilogoRequest{
		Company:     testCompany,
		PeriodDate:  time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Date(2025, 7, 15, 2, 0, 0, 0, time.UTC),
		Progressivo: 9,
		Events: []EventTickets{{
			Event: event,
			Tickets: []entities.Ticket{
				{TicketID: "a", EmittedAt: emitted(), Status: entities.TicketStatusActive, Gross: 12, EntertainmentBase: 10},
			},
		}},
	}

	daily, err := GenerateRiepilogo(req)
	require.NoError(t, err)
	res := Validate(entities.KindGiornaliero, daily.Document)
	assert.True(t, res.Valid, "daily document must not carry monthly fields: %v", res.Errors)

	req.Monthly = true
	monthly, err := GenerateRiepilogo(req)
	require.NoError(t, err)
	res = Validate(entities.KindMensile, monthly.Document)
	assert.True(t, res.Valid)
	assert.Contains(t, monthly.Document, `ImponibileIntrattenimenti="1000"`)

	// a monthly document mislabeled as daily trips the forbidden-field rule
	res = Validate(entities.KindGiornaliero, monthly.Document)
	assert.False(t, res.Valid)
}

func TestValidateControlCharacters(t *testing.T) {
	doc := generateValidLog(t, []entities.Ticket{
		{TicketID: "a", CartaCode: "C", EmittedAt: emitted(), Status: entities.TicketStatusActive},
	})
	res := Validate(entities.KindLogTransazioni, doc[:50]+"\x01"+doc[50:])
	assert.False(t, res.Valid)
}

func TestValidateWarnsOnCartaMancante(t *testing.T) {
	doc := generateValidLog(t, []entities.Ticket{
		{TicketID: "a", EmittedAt: emitted(), Status: entities.TicketStatusActive},
	})
	res := ValidateC1Report(doc)
	assert.True(t, res.Valid)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "MANCANTE")
}

func TestValidateAccessiRequiresEvento(t *testing.T) {
	res, err := GenerateRendicontoAccessi(AccessiRequest{
		Company:     testCompany,
		Event:       testEvent(entities.TaxationSpettacolo),
		GeneratedAt: time.Now(),
		Progressivo: 4,
	})
	require.NoError(t, err)
	assert.True(t, Validate(entities.KindAccessi, res.Document).Valid)

	bare := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<!DOCTYPE RendicontoAccessi>` + "\n" +
		`<RendicontoAccessi DataGenerazione="20250714" OraGenerazione="080000" ProgressivoInvio="4" CFTitolare="X" CodiceSistema="SGL00001"></RendicontoAccessi>`
	assert.False(t, Validate(entities.KindAccessi, bare).Valid)
}
