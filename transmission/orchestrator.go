// Package transmission drives the generation pipeline end to end: build the
// document for the requested dialect, name it, fingerprint it, persist the
// pending record and hand the delivery event to the outbox.
package transmission

import (
	"context"
	"fmt"
	"time"

	"sigillo/db"
	"sigillo/entities"
	"sigillo/metrics"
	"sigillo/siae"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Request describes one document to generate. Progressivo is allocated by
// the caller: the sequence is an external contract with the authority, not
// something this pipeline may invent.
type Request struct {
	Company     entities.Company
	Kind        entities.TransmissionKind
	PeriodDate  time.Time
	Progressivo int64

	// Event and Tickets feed the per-event dialects (rca, ltr).
	Event   entities.Event
	Tickets []entities.Ticket
	// Events feeds the aggregate dialects (rpg, rpm).
	Events []siae.EventTickets

	// CartaOverride and SistemaEmissione are passed through to the
	// transaction log generator.
	CartaOverride    string
	SistemaEmissione string

	// IsSubstitution marks a correction of a previously submitted
	// transmission, which must be referenced by OriginalID.
	IsSubstitution bool
	OriginalID     string

	// GeneratedAt defaults to the current time when zero.
	GeneratedAt time.Time
}

// Artifact is everything Generate produced. It is populated even when
// persistence fails, so the caller can retry or export the document by hand.
type Artifact struct {
	Transmission entities.Transmission
	Document     string
	FileName     string
	ContentHash  string
	Stats        siae.Stats
	Warnings     []string
	Validation   siae.ValidationResult
}

type Orchestrator struct {
	repo    db.ITransmissionRepository
	metrics *metrics.Metrics
}

func NewOrchestrator(repo db.ITransmissionRepository, m *metrics.Metrics) Orchestrator {
	if repo == nil {
		panic("repo is nil")
	}
	return Orchestrator{repo: repo, metrics: m}
}

// Generate runs the full pipeline for one request. Stages fail fast up to
// and including generation; from the structural check onward the pipeline is
// advisory-only, and a persistence failure still returns the finished
// artifact alongside the error.
func (o Orchestrator) Generate(ctx context.Context, req Request) (Artifact, error) {
	if err := validateRequest(req); err != nil {
		o.count(req.Kind, "rejected")
		return Artifact{}, err
	}

	generatedAt := req.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	result, err := generate(req, generatedAt)
	if err != nil {
		o.count(req.Kind, "failed")
		return Artifact{}, err
	}

	artifact := Artifact{
		Document:    result.Document,
		FileName:    siae.FileName(req.Kind, req.PeriodDate, req.Progressivo, req.Company.SignatureFormat),
		ContentHash: siae.Fingerprint(result.Document),
		Stats:       result.Stats,
		Warnings:    result.Warnings,
	}

	// advisory structural check: findings are reported, never blocking,
	// so a validator regression cannot stall the fiscal deadline
	artifact.Validation = siae.Validate(req.Kind, result.Document)
	if !artifact.Validation.Valid {
		logrus.WithFields(logrus.Fields{
			"kind":   req.Kind,
			"errors": artifact.Validation.Errors,
		}).Warn("Generated document failed the structural check")
		artifact.Warnings = append(artifact.Warnings, artifact.Validation.Errors...)
	}
	artifact.Warnings = append(artifact.Warnings, artifact.Validation.Warnings...)

	artifact.Transmission = buildTransmission(req, artifact, generatedAt)

	if err := o.repo.Create(ctx, artifact.Transmission); err != nil {
		o.count(req.Kind, "unsaved")
		return artifact, fmt.Errorf("document generated but not persisted: %w", err)
	}

	o.count(req.Kind, "ok")
	logrus.WithFields(logrus.Fields{
		"transmission_id": artifact.Transmission.TransmissionID,
		"kind":            req.Kind,
		"file_name":       artifact.FileName,
		"tickets":         artifact.Stats.Tickets,
	}).Info("Transmission generated")
	return artifact, nil
}

func validateRequest(req Request) error {
	if req.Progressivo <= 0 {
		return fmt.Errorf("progressivo must be positive, got %d", req.Progressivo)
	}
	if req.IsSubstitution && req.OriginalID == "" {
		return fmt.Errorf("a substitution must reference the original transmission")
	}
	switch req.Kind {
	case entities.KindAccessi, entities.KindGiornaliero, entities.KindMensile, entities.KindLogTransazioni:
		return nil
	default:
		return fmt.Errorf("unknown transmission kind %q", req.Kind)
	}
}

func generate(req Request, generatedAt time.Time) (siae.Result, error) {
	switch req.Kind {
	case entities.KindAccessi:
		return siae.GenerateRendicontoAccessi(siae.AccessiRequest{
			Company:     req.Company,
			Event:       req.Event,
			GeneratedAt: generatedAt,
			Progressivo: req.Progressivo,
		})
	case entities.KindGiornaliero, entities.KindMensile:
		return siae.GenerateRiepilogo(siae.RiepilogoRequest{
			Company:     req.Company,
			Monthly:     req.Kind == entities.KindMensile,
			PeriodDate:  req.PeriodDate,
			GeneratedAt: generatedAt,
			Progressivo: req.Progressivo,
			Events:      req.Events,
		})
	case entities.KindLogTransazioni:
		return siae.GenerateLogTransazioni(siae.LogRequest{
			Company:          req.Company,
			Event:            req.Event,
			Tickets:          req.Tickets,
			GeneratedAt:      generatedAt,
			Progressivo:      req.Progressivo,
			CartaOverride:    req.CartaOverride,
			SistemaEmissione: req.SistemaEmissione,
		})
	default:
		return siae.Result{}, fmt.Errorf("unknown transmission kind %q", req.Kind)
	}
}

func buildTransmission(req Request, artifact Artifact, generatedAt time.Time) entities.Transmission {
	tm := entities.Transmission{
		TransmissionID:   uuid.NewString(),
		CompanyID:        req.Company.CompanyID,
		Kind:             req.Kind,
		PeriodDate:       req.PeriodDate,
		FileName:         artifact.FileName,
		Document:         artifact.Document,
		ContentHash:      artifact.ContentHash,
		SystemCode:       req.Company.SystemCode,
		Status:           entities.TransmissionPending,
		Progressivo:      req.Progressivo,
		InterventionCode: entities.InterventionOriginale,
		CreatedAt:        generatedAt,
	}
	if req.Event.EventID != "" {
		eventID := req.Event.EventID
		tm.EventID = &eventID
	}
	if req.IsSubstitution {
		tm.InterventionCode = entities.InterventionCorrezione
		originalID := req.OriginalID
		tm.OriginalID = &originalID
	}
	return tm
}

func (o Orchestrator) count(kind entities.TransmissionKind, outcome string) {
	if o.metrics != nil {
		o.metrics.TransmissionsGenerated.WithLabelValues(string(kind), outcome).Inc()
	}
}
