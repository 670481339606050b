package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/repository"
)

// RolloverRepository is the in-memory counterpart of repository.RolloverRepository.
type RolloverRepository struct {
	db *DB
}

// NewRolloverRepository constructs a RolloverRepository.
func NewRolloverRepository(db *DB) *RolloverRepository {
	return &RolloverRepository{db: db}
}

func (r *RolloverRepository) Start(ctx context.Context, run *models.RolloverRun) error {
	if err := requireOwner(run.OwnerID); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.rollovers {
		if existing.OwnerID == run.OwnerID && existing.Phase != models.RolloverCompleted {
			return repository.ErrRolloverInProgress
		}
	}
	stored := *run
	r.db.rollovers[run.ID] = &stored
	return nil
}

func (r *RolloverRepository) FindOpen(ctx context.Context, ownerID string) (*models.RolloverRun, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, run := range r.open() {
		if run.OwnerID == ownerID {
			return &run, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *RolloverRepository) ListOpen(ctx context.Context) ([]models.RolloverRun, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.open(), nil
}

func (r *RolloverRepository) open() []models.RolloverRun {
	out := make([]models.RolloverRun, 0)
	for _, run := range r.db.rollovers {
		if run.Phase != models.RolloverCompleted {
			out = append(out, *run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

func (r *RolloverRepository) Claim(ctx context.Context, run *models.RolloverRun, at time.Time) error {
	if err := requireOwner(run.OwnerID); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	marker, ok := r.db.rollovers[run.ID]
	if !ok || marker.Phase == models.RolloverCompleted || !marker.UpdatedAt.Equal(run.UpdatedAt) {
		return repository.ErrRolloverInProgress
	}
	marker.UpdatedAt = at
	run.UpdatedAt = at
	return nil
}

func (r *RolloverRepository) ApplyDues(ctx context.Context, run *models.RolloverRun, at time.Time) (int64, error) {
	if err := requireOwner(run.OwnerID); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	marker, ok := r.db.rollovers[run.ID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	if marker.Phase != models.RolloverStarted {
		*run = *marker
		return 0, nil
	}
	var affected int64
	for _, s := range r.db.students {
		if s.OwnerID != run.OwnerID || s.PaymentStatus || models.ContainsLabel(s.DueMonths, run.PeriodLabel) {
			continue
		}
		s.DueMonths = append(s.DueMonths, run.PeriodLabel)
		s.UpdatedAt = at
		affected++
	}
	marker.Phase = models.RolloverDuesApplied
	marker.UpdatedAt = at
	*run = *marker
	return affected, nil
}

func (r *RolloverRepository) ResetStatuses(ctx context.Context, run *models.RolloverRun, at time.Time) (int64, error) {
	if err := requireOwner(run.OwnerID); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	marker, ok := r.db.rollovers[run.ID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	if marker.Phase != models.RolloverDuesApplied {
		*run = *marker
		return 0, nil
	}
	var affected int64
	for _, s := range r.db.students {
		if s.OwnerID != run.OwnerID || !s.PaymentStatus {
			continue
		}
		s.PaymentStatus = false
		s.UpdatedAt = at
		affected++
	}
	completed := at
	marker.Phase = models.RolloverCompleted
	marker.UpdatedAt = at
	marker.CompletedAt = &completed
	*run = *marker
	return affected, nil
}
