package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// AccountRepository is the in-memory counterpart of repository.AccountRepository.
type AccountRepository struct {
	db *DB
}

// NewAccountRepository constructs an AccountRepository.
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if err := requireOwner(id); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	account, ok := r.db.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &account, nil
}

// GuardianRepository is the in-memory counterpart of repository.GuardianRepository.
type GuardianRepository struct {
	db *DB
}

// NewGuardianRepository constructs a GuardianRepository.
func NewGuardianRepository(db *DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

func (r *GuardianRepository) Upsert(ctx context.Context, access *models.GuardianAccess) error {
	if err := requireOwner(access.OwnerID); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := access.OwnerID + "|" + access.PhoneNumber
	if existing, ok := r.db.guardians[key]; ok {
		existing.PasskeyHash = access.PasskeyHash
		access.ID = existing.ID
		access.CreatedAt = existing.CreatedAt
		return nil
	}
	if access.ID == "" {
		access.ID = uuid.NewString()
	}
	if access.CreatedAt.IsZero() {
		access.CreatedAt = time.Now().UTC()
	}
	stored := *access
	r.db.guardians[key] = &stored
	return nil
}

func (r *GuardianRepository) ListByPhone(ctx context.Context, phone string) ([]models.GuardianAccess, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.GuardianAccess, 0)
	for _, g := range r.db.guardians {
		if g.PhoneNumber == phone {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
