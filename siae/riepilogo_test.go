package siae

import (
	"strings"
	"testing"
	"time"

	"sigillo/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRiepilogoRollsUpByType(t *testing.T) {
	tickets := []entities.Ticket{
		{TicketID: "a", EmittedAt: emitted(), Status: entities.TicketStatusActive, TypeCode: "intero", Gross: 10, Presale: 1},
		{TicketID: "b", EmittedAt: emitted(), Status: entities.TicketStatusActive, TypeCode: "R1", Gross: 10, Presale: 1},
		{TicketID: "c", EmittedAt: emitted(), Status: entities.TicketStatusActive, TypeCode: "ridotto", Gross: 6},
		{TicketID: "d", EmittedAt: emitted(), Status: entities.TicketStatusActive, TypeCode: "abb", Gross: 50},
		{TicketID: "e", EmittedAt: emitted(), Status: entities.TicketStatusCancelled, TypeCode: "R1", Gross: 10},
	}

	res, err := GenerateRiepilogo(RiepilogoRequest{
		Company:     testCompany,
		PeriodDate:  time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Date(2025, 7, 15, 2, 0, 0, 0, time.UTC),
		Progressivo: 12,
		Events: []EventTickets{{
			Event:   testEvent(entities.TaxationSpettacolo),
			Tickets: tickets,
		}},
	})
	require.NoError(t, err)

	assert.Contains(t, res.Document, "<!DOCTYPE RiepilogoGiornaliero>")
	assert.Contains(t, res.Document, `DataRiepilogo="20250714"`)
	assert.Equal(t, 1, strings.Count(res.Document, "<Evento"))

	// R1: a, b and the cancelled e
	assert.Contains(t, res.Document, `<TitoliEmessi TipoTitolo="R1" Quantita="3" ImportoLordo="3000" ImportoPrevendita="200"/>`)
	assert.Contains(t, res.Document, `<TitoliEmessi TipoTitolo="R2" Quantita="1" ImportoLordo="600" ImportoPrevendita="0"/>`)
	assert.Contains(t, res.Document, `<TitoliEmessi TipoTitolo="ABB" Quantita="1" ImportoLordo="5000" ImportoPrevendita="0"/>`)
	assert.NotContains(t, res.Document, `TipoTitolo="O1"`)

	assert.Equal(t, 5, res.Stats.Tickets)
	assert.Equal(t, 1, res.Stats.Subscriptions)
	assert.Equal(t, 1, res.Stats.Cancelled)
	assert.Equal(t, int64(8600), res.Stats.GrossCents)
}

func TestGenerateRiepilogoMultipleEvents(t *testing.T) {
	eventA := testEvent(entities.TaxationSpettacolo)
	eventB := testEvent(entities.TaxationSpettacolo)
	eventB.EventID = "EV002"

	res, err := GenerateRiepilogo(RiepilogoRequest{
		Company:     testCompany,
		PeriodDate:  time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Now(),
		Progressivo: 1,
		Events: []EventTickets{
			{Event: eventA, Tickets: []entities.Ticket{{TicketID: "a", EmittedAt: emitted(), Status: entities.TicketStatusActive, Gross: 5}}},
			{Event: eventB, Tickets: []entities.Ticket{{TicketID: "b", EmittedAt: emitted(), Status: entities.TicketStatusActive, Gross: 5}}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(res.Document, "<Evento"))
	assert.Contains(t, res.Document, `CodiceEvento="EV001"`)
	assert.Contains(t, res.Document, `CodiceEvento="EV002"`)
}

func TestGenerateRiepilogoMonthlyFields(t *testing.T) {
	res, err := GenerateRiepilogo(RiepilogoRequest{
		Company:     testCompany,
		Monthly:     true,
		PeriodDate:  time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Now(),
		Progressivo: 2,
		Events: []EventTickets{{
			Event: testEvent(entities.TaxationIntrattenimento),
			Tickets: []entities.Ticket{
				{TicketID: "a", EmittedAt: emitted(), Status: entities.TicketStatusActive, Gross: 12, EntertainmentBase: 9.5},
				{TicketID: "b", EmittedAt: emitted(), Status: entities.TicketStatusActive, Complimentary: true, VAT: 2.2},
			},
		}},
	})
	require.NoError(t, err)

	assert.Contains(t, res.Document, "<!DOCTYPE RiepilogoMensile>")
	assert.Contains(t, res.Document, `ImponibileIntrattenimenti="950"`)
	assert.Contains(t, res.Document, `EccedenzaIVAOmaggi="220"`)
	assert.Contains(t, res.Document, `TipoTitolo="O1"`)
}

func TestGenerateRiepilogoRequiresEvents(t *testing.T) {
	_, err := GenerateRiepilogo(RiepilogoRequest{
		Company:     testCompany,
		PeriodDate:  time.Now(),
		GeneratedAt: time.Now(),
	})
	assert.Error(t, err)
}
