package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// StudentRepository is the in-memory counterpart of repository.StudentRepository.
type StudentRepository struct {
	db *DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) List(ctx context.Context, ownerID string) ([]models.Student, error) {
	return r.filter(ownerID, func(*models.Student) bool { return true })
}

func (r *StudentRepository) ListByPhone(ctx context.Context, ownerID, phone string) ([]models.Student, error) {
	return r.filter(ownerID, func(s *models.Student) bool { return s.PhoneNumber == phone })
}

func (r *StudentRepository) filter(ownerID string, keep func(*models.Student) bool) ([]models.Student, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.Student, 0)
	for _, id := range r.db.order {
		s, ok := r.db.students[id]
		if !ok || s.OwnerID != ownerID || !keep(s) {
			continue
		}
		out = append(out, copyStudent(s))
	}
	return out, nil
}

func (r *StudentRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Student, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	s, err := r.db.ownedStudent(ownerID, id)
	if err != nil {
		return nil, err
	}
	out := copyStudent(s)
	return &out, nil
}

func (r *StudentRepository) CountOwned(ctx context.Context, ownerID string, ids []string) (int, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, err := r.db.ownedStudent(ownerID, id); err == nil {
			seen[id] = struct{}{}
		}
	}
	return len(seen), nil
}

func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if err := requireOwner(student.OwnerID); err != nil {
		return err
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	student.Normalize()

	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := copyStudent(student)
	r.db.students[student.ID] = &stored
	r.db.order = append(r.db.order, student.ID)
	return nil
}

func (r *StudentRepository) UpdateProfile(ctx context.Context, ownerID string, student *models.Student) error {
	return r.mutate(ownerID, student.ID, func(s *models.Student) {
		s.Name = student.Name
		s.PhoneNumber = student.PhoneNumber
		s.BatchID = student.BatchID
		s.PaymentAmount = student.PaymentAmount
		student.UpdatedAt = s.UpdatedAt
	})
}

func (r *StudentRepository) UpdatePayment(ctx context.Context, ownerID string, student *models.Student) error {
	return r.mutate(ownerID, student.ID, func(s *models.Student) {
		s.PaymentStatus = student.PaymentStatus
		s.PaidMonths = append([]models.PeriodLabel{}, student.PaidMonths...)
		s.DueMonths = append([]models.PeriodLabel{}, student.DueMonths...)
		student.UpdatedAt = s.UpdatedAt
	})
}

func (r *StudentRepository) RemoveDueMonths(ctx context.Context, ownerID, id string, months []models.PeriodLabel) (*models.Student, error) {
	var out models.Student
	err := r.mutate(ownerID, id, func(s *models.Student) {
		s.DueMonths = models.WithoutLabels(s.DueMonths, months...)
		out = copyStudent(s)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *StudentRepository) AppendMarks(ctx context.Context, ownerID, id string, marks []models.Mark) error {
	return r.mutate(ownerID, id, func(s *models.Student) {
		s.Marks = append(s.Marks, marks...)
	})
}

func (r *StudentRepository) Delete(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, err := r.db.ownedStudent(ownerID, id); err != nil {
		return err
	}
	delete(r.db.students, id)
	for i, existing := range r.db.order {
		if existing == id {
			r.db.order = append(r.db.order[:i], r.db.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *StudentRepository) mutate(ownerID, id string, apply func(*models.Student)) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, err := r.db.ownedStudent(ownerID, id)
	if err != nil {
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	apply(s)
	return nil
}
