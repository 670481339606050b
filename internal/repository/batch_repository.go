package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const batchColumns = `id, owner_id, batch_name, payment_amount, class, subject, days, created_at, updated_at`

type batchRow struct {
	ID            string         `db:"id"`
	OwnerID       string         `db:"owner_id"`
	BatchName     string         `db:"batch_name"`
	PaymentAmount float64        `db:"payment_amount"`
	Class         string         `db:"class"`
	Subject       string         `db:"subject"`
	Days          pq.StringArray `db:"days"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r batchRow) toModel() models.Batch {
	days := []string(r.Days)
	if days == nil {
		days = []string{}
	}
	return models.Batch{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		BatchName:     r.BatchName,
		PaymentAmount: r.PaymentAmount,
		Class:         r.Class,
		Subject:       r.Subject,
		Days:          days,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// BatchRepository stores an owner's teaching batches.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// List returns the owner's batches ordered by name.
func (r *BatchRepository) List(ctx context.Context, ownerID string) ([]models.Batch, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	query := `SELECT ` + batchColumns + ` FROM batches WHERE owner_id = $1 ORDER BY batch_name ASC`
	var rows []batchRow
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	batches := make([]models.Batch, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, row.toModel())
	}
	return batches, nil
}

// FindByID fetches a batch owned by ownerID.
func (r *BatchRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Batch, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1 AND owner_id = $2`
	var row batchRow
	if err := r.db.GetContext(ctx, &row, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find batch: %w", err)
	}
	batch := row.toModel()
	return &batch, nil
}

// Create inserts a batch.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if err := requireOwner(batch.OwnerID); err != nil {
		return err
	}
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.Days == nil {
		batch.Days = []string{}
	}
	now := time.Now().UTC()
	batch.CreatedAt = now
	batch.UpdatedAt = now
	const query = `INSERT INTO batches (id, owner_id, batch_name, payment_amount, class, subject, days, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, batch.ID, batch.OwnerID, batch.BatchName, batch.PaymentAmount, batch.Class, batch.Subject, pq.StringArray(batch.Days), batch.CreatedAt, batch.UpdatedAt); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}
