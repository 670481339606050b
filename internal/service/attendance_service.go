package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

const attendanceDateLayout = "2006-01-02"

type attendanceRepository interface {
	Create(ctx context.Context, record *models.AttendanceRecord) error
	List(ctx context.Context, ownerID string, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

type studentCounter interface {
	CountOwned(ctx context.Context, ownerID string, ids []string) (int, error)
}

// RecordAttendanceRequest marks one batch-day. Absent students must belong to the owner.
type RecordAttendanceRequest struct {
	Date           string   `json:"date" validate:"required,datetime=2006-01-02"`
	BatchID        *string  `json:"batch_id" validate:"omitempty,uuid"`
	AbsentStudents []string `json:"absent_students" validate:"omitempty,dive,uuid"`
	AllPresent     bool     `json:"all_present"`
}

// AttendanceService records batch-day absence sheets.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentCounter
	batches   batchFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, students studentCounter, batches batchFinder, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, batches: batches, validator: validate, logger: logger}
}

// Record appends an attendance sheet.
func (s *AttendanceService) Record(ctx context.Context, ownerID string, req RecordAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	absent := uniqueIDs(req.AbsentStudents)
	if req.AllPresent && len(absent) > 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "all_present cannot list absent students")
	}

	record := &models.AttendanceRecord{
		OwnerID:          ownerID,
		Date:             req.Date,
		AbsentStudentIDs: absent,
		AllPresent:       req.AllPresent,
	}
	if req.BatchID != nil && *req.BatchID != "" {
		batch, err := s.batches.FindByID(ctx, ownerID, *req.BatchID)
		if err != nil {
			return nil, storeError(err, "batch not found", "failed to load batch")
		}
		record.BatchID = &batch.ID
	}
	if len(absent) > 0 {
		owned, err := s.students.CountOwned(ctx, ownerID, absent)
		if err != nil {
			return nil, storeError(err, "student not found", "failed to verify students")
		}
		if owned != len(absent) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absent student not found")
		}
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, storeError(err, "attendance not found", "failed to record attendance")
	}
	s.logger.Debug("attendance recorded",
		zap.String("owner_id", ownerID),
		zap.String("date", record.Date),
		zap.Int("absent", len(absent)),
	)
	return record, nil
}

// List returns attendance sheets matching the optional date and batch filters.
func (s *AttendanceService) List(ctx context.Context, ownerID string, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	filter.Date = strings.TrimSpace(filter.Date)
	filter.BatchID = strings.TrimSpace(filter.BatchID)
	if filter.Date != "" {
		if _, err := time.Parse(attendanceDateLayout, filter.Date); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "date must be YYYY-MM-DD")
		}
	}
	if filter.BatchID != "" {
		if err := validateID(filter.BatchID, "batch"); err != nil {
			return nil, err
		}
	}
	records, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, storeError(err, "attendance not found", "failed to list attendance")
	}
	return records, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
