package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// BatchRepository is the in-memory counterpart of repository.BatchRepository.
type BatchRepository struct {
	db *DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) List(ctx context.Context, ownerID string) ([]models.Batch, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.Batch, 0)
	for _, b := range r.db.batches {
		if b.OwnerID == ownerID {
			cp := *b
			cp.Days = append([]string{}, b.Days...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchName < out[j].BatchName })
	return out, nil
}

func (r *BatchRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Batch, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	b, ok := r.db.batches[id]
	if !ok || b.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	cp := *b
	cp.Days = append([]string{}, b.Days...)
	return &cp, nil
}

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
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := *batch
	stored.Days = append([]string{}, batch.Days...)
	r.db.batches[batch.ID] = &stored
	return nil
}
