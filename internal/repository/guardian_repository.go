package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// GuardianRepository stores portal passkeys per owner and phone number.
type GuardianRepository struct {
	db *sqlx.DB
}

// NewGuardianRepository constructs a GuardianRepository.
func NewGuardianRepository(db *sqlx.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

// Upsert creates the access row or replaces its passkey.
func (r *GuardianRepository) Upsert(ctx context.Context, access *models.GuardianAccess) error {
	if err := requireOwner(access.OwnerID); err != nil {
		return err
	}
	if access.ID == "" {
		access.ID = uuid.NewString()
	}
	if access.CreatedAt.IsZero() {
		access.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO guardian_access (id, owner_id, phone_number, passkey_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (owner_id, phone_number) DO UPDATE SET passkey_hash = EXCLUDED.passkey_hash
        RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, access.ID, access.OwnerID, access.PhoneNumber, access.PasskeyHash, access.CreatedAt)
	if err := row.Scan(&access.ID, &access.CreatedAt); err != nil {
		return fmt.Errorf("upsert guardian access: %w", err)
	}
	return nil
}

// ListByPhone returns every access row for a phone number across owners.
func (r *GuardianRepository) ListByPhone(ctx context.Context, phone string) ([]models.GuardianAccess, error) {
	var rows []models.GuardianAccess
	const query = `SELECT id, owner_id, phone_number, passkey_hash, created_at FROM guardian_access
        WHERE phone_number = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, phone); err != nil {
		return nil, fmt.Errorf("list guardian access: %w", err)
	}
	return rows, nil
}
