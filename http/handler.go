package http

import (
	"context"

	"sigillo/entities"
	"sigillo/transmission"
)

type Orchestrator interface {
	Generate(ctx context.Context, req transmission.Request) (transmission.Artifact, error)
}

type TransmissionRepository interface {
	GetByID(ctx context.Context, transmissionID string) (entities.Transmission, error)
	ListPending(ctx context.Context) ([]entities.Transmission, error)
}

type Handler struct {
	orchestrator     Orchestrator
	transmissionRepo TransmissionRepository
	company          entities.Company
}
