package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/notify"
)

type marksRepository interface {
	AppendMarks(ctx context.Context, ownerID, id string, marks []models.Mark) error
}

// SMSSender delivers a text message and returns the gateway response.
type SMSSender interface {
	Send(ctx context.Context, to, message string) (string, error)
}

// ResultEntry is one student's results in a bulk submission.
type ResultEntry struct {
	StudentID   string        `json:"student_id"`
	StudentName string        `json:"student_name"`
	PhoneNumber string        `json:"phone_number"`
	Marks       []models.Mark `json:"marks"`
}

// ResultOutcome reports what happened to one entry.
type ResultOutcome struct {
	StudentID string `json:"student_id"`
	Phone     string `json:"phone"`
	Success   bool   `json:"success"`
	Result    string `json:"result,omitempty"`
	Code      string `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ResultsService appends marks and notifies guardians by SMS.
type ResultsService struct {
	repo    marksRepository
	sms     SMSSender
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewResultsService constructs a ResultsService.
func NewResultsService(repo marksRepository, sms SMSSender, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ResultsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sms == nil {
		sms = notify.NewLogSender(logger)
	}
	return &ResultsService{repo: repo, sms: sms, cache: cache, metrics: metrics, logger: logger}
}

// MarksMessage renders the notification for the first mark of an entry.
func MarksMessage(name string, mark models.Mark) string {
	return fmt.Sprintf("Dear %s,\nYour %s exam results have been published.\nTotal Marks: %s\nObtained Marks: %s\n",
		name, mark.Subject, mark.Total, mark.Obtained)
}

// Submit processes entries in order. Entries without marks or phone are skipped; an unknown
// student, a bad phone or a failed SMS fail only their own entry.
func (s *ResultsService) Submit(ctx context.Context, ownerID string, entries []ResultEntry) ([]ResultOutcome, error) {
	outcomes := make([]ResultOutcome, 0, len(entries))
	appended := false
	defer func() {
		if appended {
			s.cache.InvalidateOwner(ctx, ownerID)
		}
	}()

	for _, entry := range entries {
		if len(entry.Marks) == 0 || strings.TrimSpace(entry.PhoneNumber) == "" {
			continue
		}
		outcome := ResultOutcome{StudentID: entry.StudentID, Phone: entry.PhoneNumber}

		phone, err := notify.FormatPhone(entry.PhoneNumber)
		if err != nil {
			outcomes = append(outcomes, failed(outcome, appErrors.ErrInvalidArgument.Code, "invalid phone number format"))
			continue
		}
		outcome.Phone = phone

		if validateID(entry.StudentID, "student") != nil {
			outcomes = append(outcomes, failed(outcome, appErrors.ErrInvalidArgument.Code, "invalid student id"))
			continue
		}
		if err := s.repo.AppendMarks(ctx, ownerID, entry.StudentID, entry.Marks); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				outcomes = append(outcomes, failed(outcome, appErrors.ErrNotFound.Code, "student not found"))
				continue
			}
			return nil, storeError(err, "student not found", "failed to save marks")
		}
		appended = true

		name := strings.TrimSpace(entry.StudentName)
		if name == "" {
			name = "Student"
		}
		result, err := s.sms.Send(ctx, phone, MarksMessage(name, entry.Marks[0]))
		s.metrics.RecordSMS(err == nil)
		if err != nil {
			s.logger.Warn("results sms failed", zap.String("owner_id", ownerID), zap.String("phone", phone), zap.Error(err))
			outcomes = append(outcomes, failed(outcome, appErrors.ErrDependency.Code, err.Error()))
			continue
		}
		outcome.Success = true
		outcome.Result = result
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func failed(outcome ResultOutcome, code, message string) ResultOutcome {
	outcome.Success = false
	outcome.Code = code
	outcome.Error = message
	return outcome
}
