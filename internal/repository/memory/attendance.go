package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// AttendanceRepository is the in-memory counterpart of repository.AttendanceRepository.
type AttendanceRepository struct {
	db *DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	if err := requireOwner(record.OwnerID); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.AbsentStudentIDs == nil {
		record.AbsentStudentIDs = []string{}
	}
	record.CreatedAt = time.Now().UTC()
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := *record
	stored.AbsentStudentIDs = append([]string{}, record.AbsentStudentIDs...)
	r.db.attendance = append(r.db.attendance, stored)
	return nil
}

func (r *AttendanceRepository) List(ctx context.Context, ownerID string, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.AttendanceRecord, 0)
	for _, rec := range r.db.attendance {
		if rec.OwnerID != ownerID {
			continue
		}
		if filter.Date != "" && rec.Date != filter.Date {
			continue
		}
		if filter.BatchID != "" && (rec.BatchID == nil || *rec.BatchID != filter.BatchID) {
			continue
		}
		cp := rec
		cp.AbsentStudentIDs = append([]string{}, rec.AbsentStudentIDs...)
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
