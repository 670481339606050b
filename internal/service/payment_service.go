package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type paymentRepository interface {
	FindByID(ctx context.Context, ownerID, id string) (*models.Student, error)
	UpdatePayment(ctx context.Context, ownerID string, student *models.Student) error
	RemoveDueMonths(ctx context.Context, ownerID, id string, months []models.PeriodLabel) (*models.Student, error)
}

// RemoveDueRequest lists the labels to clear from due_months.
type RemoveDueRequest struct {
	Months []string `json:"months"`
}

// PaymentService drives the per-student payment state machine.
type PaymentService struct {
	repo   paymentRepository
	cache  *CacheService
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, cache *CacheService, clock clockwork.Clock, logger *zap.Logger) *PaymentService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, cache: cache, clock: clock, logger: logger}
}

// Toggle flips payment_status. Marking paid records today's label once and clears it from dues.
//
// The read and the write are separate statements, so two concurrent toggles computed
// from the same snapshot resolve last-write-wins.
func (s *PaymentService) Toggle(ctx context.Context, ownerID, id string) (*models.Student, error) {
	if err := validateID(id, "student"); err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}

	applyToggle(student, s.clock.Now())

	if err := s.repo.UpdatePayment(ctx, ownerID, student); err != nil {
		return nil, storeError(err, "student not found", "failed to update payment")
	}
	s.cache.InvalidateOwner(ctx, ownerID)
	s.logger.Info("payment toggled",
		zap.String("owner_id", ownerID),
		zap.String("student_id", id),
		zap.Bool("payment_status", student.PaymentStatus),
	)
	return student, nil
}

func applyToggle(student *models.Student, now time.Time) {
	if student.PaymentStatus {
		student.PaymentStatus = false
		return
	}
	label := models.DailyLabel(now)
	if !models.ContainsLabel(student.PaidMonths, label) {
		student.PaidMonths = append(student.PaidMonths, label)
	}
	student.DueMonths = models.WithoutLabels(student.DueMonths, label)
	student.PaymentStatus = true
}

// RemoveDue clears the given labels from due_months. paid_months and payment_status are untouched.
func (s *PaymentService) RemoveDue(ctx context.Context, ownerID, id string, req RemoveDueRequest) (*models.Student, error) {
	if err := validateID(id, "student"); err != nil {
		return nil, err
	}
	labels := models.LabelsFromStrings(req.Months)
	if len(labels) == 0 || blankLabel(labels) {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "months must be a non-empty list of labels")
	}
	student, err := s.repo.RemoveDueMonths(ctx, ownerID, id, labels)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to remove due months")
	}
	s.cache.InvalidateOwner(ctx, ownerID)
	return student, nil
}

func blankLabel(labels []models.PeriodLabel) bool {
	for _, l := range labels {
		if l.Blank() {
			return true
		}
	}
	return false
}
