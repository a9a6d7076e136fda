package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"sigillo/db"
	"sigillo/entities"
	"sigillo/siae"
	"sigillo/transmission"

	"github.com/labstack/echo/v4"
)

type eventTicketsRequest struct {
	Event   entities.Event    `json:"event"`
	Tickets []entities.Ticket `json:"tickets"`
}

type generateTransmissionRequest struct {
	Kind             string                `json:"kind"`
	PeriodDate       time.Time             `json:"period_date"`
	Progressivo      int64                 `json:"progressivo"`
	Event            entities.Event        `json:"event"`
	Tickets          []entities.Ticket     `json:"tickets"`
	Events           []eventTicketsRequest `json:"events"`
	CartaOverride    string                `json:"carta_override"`
	SistemaEmissione string                `json:"sistema_emissione"`
	IsSubstitution   bool                  `json:"is_substitution"`
	OriginalID       string                `json:"original_id"`
}

type generateTransmissionResponse struct {
	TransmissionID string                `json:"transmission_id,omitempty"`
	FileName       string                `json:"file_name"`
	ContentHash    string                `json:"content_hash"`
	Document       string                `json:"document"`
	Stats          siae.Stats            `json:"stats"`
	Warnings       []string              `json:"warnings,omitempty"`
	Validation     siae.ValidationResult `json:"validation"`
	Error          string                `json:"error,omitempty"`
}

func (h Handler) PostTransmission(c echo.Context) error {
	var request generateTransmissionRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	req := transmission.Request{
		Company:          h.company,
		Kind:             entities.TransmissionKind(request.Kind),
		PeriodDate:       request.PeriodDate,
		Progressivo:      request.Progressivo,
		Event:            request.Event,
		Tickets:          request.Tickets,
		CartaOverride:    request.CartaOverride,
		SistemaEmissione: request.SistemaEmissione,
		IsSubstitution:   request.IsSubstitution,
		OriginalID:       request.OriginalID,
	}
	for _, et := range request.Events {
		req.Events = append(req.Events, siae.EventTickets{Event: et.Event, Tickets: et.Tickets})
	}

	artifact, err := h.orchestrator.Generate(c.Request().Context(), req)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, toResponse(artifact, nil))
	case errors.Is(err, db.ErrDuplicateProgressivo):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case artifact.Document != "":
		// generated but not persisted: hand the document back anyway
		return c.JSON(http.StatusInternalServerError, toResponse(artifact, err))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func toResponse(artifact transmission.Artifact, err error) generateTransmissionResponse {
	resp := generateTransmissionResponse{
		TransmissionID: artifact.Transmission.TransmissionID,
		FileName:       artifact.FileName,
		ContentHash:    artifact.ContentHash,
		Document:       artifact.Document,
		Stats:          artifact.Stats,
		Warnings:       artifact.Warnings,
		Validation:     artifact.Validation,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

func (h Handler) GetTransmissionByID(c echo.Context) error {
	transmissionID := c.Param("transmission_id")
	if transmissionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "transmission id not provided")
	}

	tm, err := h.transmissionRepo.GetByID(c.Request().Context(), transmissionID)
	if err != nil {
		return fmt.Errorf("failed getting transmission: %w", err)
	}
	return c.JSON(http.StatusOK, tm)
}

func (h Handler) GetPendingTransmissions(c echo.Context) error {
	tms, err := h.transmissionRepo.ListPending(c.Request().Context())
	if err != nil {
		return fmt.Errorf("failed listing pending transmissions: %w", err)
	}
	return c.JSON(http.StatusOK, tms)
}
