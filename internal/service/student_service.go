package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

type studentRepository interface {
	List(ctx context.Context, ownerID string) ([]models.Student, error)
	ListByPhone(ctx context.Context, ownerID, phone string) ([]models.Student, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateProfile(ctx context.Context, ownerID string, student *models.Student) error
	Delete(ctx context.Context, ownerID, id string) error
}

type batchFinder interface {
	FindByID(ctx context.Context, ownerID, id string) (*models.Batch, error)
}

// CreateStudentRequest is the admission payload.
type CreateStudentRequest struct {
	Name          string   `json:"name" validate:"required,max=120"`
	PhoneNumber   string   `json:"phone_number" validate:"max=32"`
	BatchID       *string  `json:"batch_id" validate:"omitempty,uuid"`
	PaymentAmount *float64 `json:"payment_amount" validate:"omitempty,gte=0"`
	AdmissionDate string   `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	DueMonths     []string `json:"due_months" validate:"omitempty,dive,required"`
}

// UpdateStudentRequest is a partial profile edit; nil fields stay unchanged.
type UpdateStudentRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=120"`
	PhoneNumber   *string  `json:"phone_number" validate:"omitempty,max=32"`
	BatchID       *string  `json:"batch_id" validate:"omitempty,uuid"`
	PaymentAmount *float64 `json:"payment_amount" validate:"omitempty,gte=0"`
}

// StudentService handles student records and the cached owner list.
type StudentService struct {
	repo      studentRepository
	batches   batchFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, batches batchFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, batches: batches, cache: cache, validator: validate, logger: logger}
}

// List returns the owner's students, served from cache when possible. The bool reports a cache hit.
func (s *StudentService) List(ctx context.Context, ownerID string) ([]models.Student, bool, error) {
	var cached []models.Student
	if s.cache.Get(ctx, StudentsKey(ownerID), &cached) {
		return cached, true, nil
	}
	students, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, false, storeError(err, "students not found", "failed to list students")
	}
	s.cache.Set(ctx, StudentsKey(ownerID), students, s.cache.ListTTL())
	return students, false, nil
}

// Unpaid filters the cached list down to students whose current period is unpaid.
func (s *StudentService) Unpaid(ctx context.Context, ownerID string) ([]models.Student, bool, error) {
	students, hit, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	unpaid := make([]models.Student, 0, len(students))
	for _, student := range students {
		if !student.PaymentStatus {
			unpaid = append(unpaid, student)
		}
	}
	return unpaid, hit, nil
}

// Get returns one student of the owner.
func (s *StudentService) Get(ctx context.Context, ownerID, id string) (*models.Student, error) {
	if err := validateID(id, "student"); err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// ListByPhone returns the owner's students registered under phone.
func (s *StudentService) ListByPhone(ctx context.Context, ownerID, phone string) ([]models.Student, error) {
	students, err := s.repo.ListByPhone(ctx, ownerID, phone)
	if err != nil {
		return nil, storeError(err, "students not found", "failed to list students")
	}
	return students, nil
}

// Create admits a student. The fee defaults to the batch fee when not supplied.
func (s *StudentService) Create(ctx context.Context, ownerID string, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student := &models.Student{
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(req.Name),
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		AdmissionDate: req.AdmissionDate,
		DueMonths:     models.LabelsFromStrings(req.DueMonths),
	}
	if req.BatchID != nil && *req.BatchID != "" {
		batch, err := s.batches.FindByID(ctx, ownerID, *req.BatchID)
		if err != nil {
			return nil, storeError(err, "batch not found", "failed to load batch")
		}
		student.BatchID = &batch.ID
		student.PaymentAmount = batch.PaymentAmount
	}
	if req.PaymentAmount != nil {
		student.PaymentAmount = *req.PaymentAmount
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, storeError(err, "student not found", "failed to create student")
	}
	s.cache.InvalidateOwner(ctx, ownerID)
	return student, nil
}

// Update applies a partial profile edit.
func (s *StudentService) Update(ctx context.Context, ownerID, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := validateID(id, "student"); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}
	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.PhoneNumber != nil {
		student.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.BatchID != nil {
		if *req.BatchID == "" {
			student.BatchID = nil
		} else {
			batch, err := s.batches.FindByID(ctx, ownerID, *req.BatchID)
			if err != nil {
				return nil, storeError(err, "batch not found", "failed to load batch")
			}
			student.BatchID = &batch.ID
		}
	}
	if req.PaymentAmount != nil {
		student.PaymentAmount = *req.PaymentAmount
	}
	if err := s.repo.UpdateProfile(ctx, ownerID, student); err != nil {
		return nil, storeError(err, "student not found", "failed to update student")
	}
	s.cache.InvalidateOwner(ctx, ownerID)
	return student, nil
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, ownerID, id string) error {
	if err := validateID(id, "student"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return storeError(err, "student not found", "failed to delete student")
	}
	s.cache.InvalidateOwner(ctx, ownerID)
	s.logger.Info("student deleted", zap.String("owner_id", ownerID), zap.String("student_id", id))
	return nil
}
