package db

import (
	"context"
	"encoding/json"
	"fmt"

	"sigillo/entities"

	"github.com/ThreeDotsLabs/watermill"
	watermillMessage "github.com/ThreeDotsLabs/watermill/message"
)

type ITransmissionRepository interface {
	Create(ctx context.Context, tm entities.Transmission) error
	GetByID(ctx context.Context, transmissionID string) (entities.Transmission, error)
	ListPending(ctx context.Context) ([]entities.Transmission, error)
	UpdateStatus(ctx context.Context, transmissionID, status string) error
}

type TransmissionRepository struct {
	db     *DB
	logger watermill.LoggerAdapter
}

func NewTransmissionRepository(db *DB, logger watermill.LoggerAdapter) TransmissionRepository {
	if db == nil {
		panic("db is nil")
	}
	return TransmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists the transmission and publishes TransmissionCreated_v1
// through the outbox in the same database transaction, so the delivery
// transport never sees an event for a record that was rolled back.
func (tr TransmissionRepository) Create(ctx context.Context, tm entities.Transmission) error {
	tx, err := tr.db.Conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.NamedExecContext(
		ctx,
		`
		INSERT INTO
			transmissions (transmission_id, company_id, event_id, kind, period_date,
				file_name, document, content_hash, system_code, status,
				progressivo, intervention_code, original_id, created_at)
		VALUES
			(:transmission_id, :company_id, :event_id, :kind, :period_date,
				:file_name, :document, :content_hash, :system_code, :status,
				:progressivo, :intervention_code, :original_id, :created_at)`,
		tm,
	)
	if err != nil {
		if isErrorUniqueViolation(err) {
			return ErrDuplicateProgressivo
		}
		return fmt.Errorf("could not save transmission: %w", err)
	}

	event := entities.TransmissionCreated_v1{
		Header:         entities.NewEventHeader(),
		TransmissionID: tm.TransmissionID,
		CompanyID:      tm.CompanyID,
		Kind:           tm.Kind,
		FileName:       tm.FileName,
		ContentHash:    tm.ContentHash,
		Progressivo:    tm.Progressivo,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal transmission event: %w", err)
	}

	msg := watermillMessage.NewMessage(watermill.NewUUID(), payload)
	if err := PublishInTx(msg, tx.Tx, tr.logger); err != nil {
		return fmt.Errorf("could not publish transmission event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transmission: %w", err)
	}
	return nil
}

func (tr TransmissionRepository) GetByID(ctx context.Context, transmissionID string) (entities.Transmission, error) {
	var tm entities.Transmission
	err := tr.db.Conn.GetContext(ctx, &tm, `
		SELECT * FROM transmissions WHERE transmission_id = $1`, transmissionID)
	if err != nil {
		return entities.Transmission{}, fmt.Errorf("could not get transmission %s: %w", transmissionID, err)
	}
	return tm, nil
}

func (tr TransmissionRepository) ListPending(ctx context.Context) ([]entities.Transmission, error) {
	var tms []entities.Transmission
	err := tr.db.Conn.SelectContext(ctx, &tms, `
		SELECT * FROM transmissions WHERE status = 'pending' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("could not list pending transmissions: %w", err)
	}
	return tms, nil
}

// UpdateStatus is the surface used by the delivery transport; the pipeline
// itself only ever writes the initial pending status.
func (tr TransmissionRepository) UpdateStatus(ctx context.Context, transmissionID, status string) error {
	res, err := tr.db.Conn.ExecContext(ctx, `
		UPDATE transmissions SET status = $2 WHERE transmission_id = $1`, transmissionID, status)
	if err != nil {
		return fmt.Errorf("could not update transmission status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("transmission %s does not exist", transmissionID)
	}
	return nil
}
