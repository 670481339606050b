package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// AccountRepository reads owner profiles.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository constructs an AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByID returns the owner's account.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if err := requireOwner(id); err != nil {
		return nil, err
	}
	var account models.Account
	if err := r.db.GetContext(ctx, &account, `SELECT id, name, email, plan FROM accounts WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}
