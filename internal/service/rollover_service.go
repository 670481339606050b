package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/repository"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/jobs"
)

// JobKindResumeRollover identifies queued rollover completions.
const JobKindResumeRollover = "rollover.resume"

// rolloverStaleAfter separates a crashed run from one another request is still driving.
const rolloverStaleAfter = 2 * time.Minute

type rolloverRepository interface {
	Start(ctx context.Context, run *models.RolloverRun) error
	FindOpen(ctx context.Context, ownerID string) (*models.RolloverRun, error)
	ListOpen(ctx context.Context) ([]models.RolloverRun, error)
	Claim(ctx context.Context, run *models.RolloverRun, at time.Time) error
	ApplyDues(ctx context.Context, run *models.RolloverRun, at time.Time) (int64, error)
	ResetStatuses(ctx context.Context, run *models.RolloverRun, at time.Time) (int64, error)
}

// RolloverService closes a billing period for an owner in two committed phases:
// unpaid students gain the period label in due_months, then every student is reset to unpaid.
// The run marker records the last committed phase so an interrupted run resumes where it stopped.
type RolloverService struct {
	repo    rolloverRepository
	cache   *CacheService
	metrics *MetricsService
	clock   clockwork.Clock
	logger  *zap.Logger
}

// NewRolloverService constructs a RolloverService.
func NewRolloverService(repo rolloverRepository, cache *CacheService, metrics *MetricsService, clock clockwork.Clock, logger *zap.Logger) *RolloverService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolloverService{repo: repo, cache: cache, metrics: metrics, clock: clock, logger: logger}
}

// Run rolls the owner's billing period over. A stale unfinished run is claimed and
// completed first; if it belonged to an earlier period a fresh run for the current one follows.
func (s *RolloverService) Run(ctx context.Context, ownerID string) (*models.RolloverResult, error) {
	open, err := s.repo.FindOpen(ctx, ownerID)
	switch {
	case err == nil:
		if s.clock.Since(open.UpdatedAt) < rolloverStaleAfter {
			s.metrics.RecordRollover("conflict")
			return nil, appErrors.Clone(appErrors.ErrConflict, "rollover already in progress")
		}
		if err := s.repo.Claim(ctx, open, s.clock.Now().UTC()); err != nil {
			if errors.Is(err, repository.ErrRolloverInProgress) {
				s.metrics.RecordRollover("conflict")
				return nil, appErrors.Clone(appErrors.ErrConflict, "rollover already in progress")
			}
			return nil, storeError(err, "rollover not found", "failed to claim rollover")
		}
		resumed, err := s.complete(ctx, open, true)
		if err != nil {
			return nil, err
		}
		if open.PeriodLabel == models.BillingPeriodLabel(s.clock.Now()) {
			return resumed, nil
		}
		s.logger.Info("stale rollover belonged to an earlier period",
			zap.String("owner_id", ownerID),
			zap.String("period", open.PeriodLabel.String()))
	case !errors.Is(err, sql.ErrNoRows):
		return nil, storeError(err, "rollover not found", "failed to load rollover state")
	}
	return s.start(ctx, ownerID)
}

func (s *RolloverService) start(ctx context.Context, ownerID string) (*models.RolloverResult, error) {
	now := s.clock.Now()
	run := &models.RolloverRun{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		PeriodLabel: models.BillingPeriodLabel(now),
		Phase:       models.RolloverStarted,
		StartedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := s.repo.Start(ctx, run); err != nil {
		if errors.Is(err, repository.ErrRolloverInProgress) {
			s.metrics.RecordRollover("conflict")
			return nil, appErrors.Clone(appErrors.ErrConflict, "rollover already in progress")
		}
		s.metrics.RecordRollover("failed")
		return nil, storeError(err, "rollover not found", "failed to start rollover")
	}
	return s.complete(ctx, run, false)
}

// Resume drives an open run to completion regardless of its age. Phases the stored
// marker has already passed are skipped, so resuming the same snapshot twice is safe.
func (s *RolloverService) Resume(ctx context.Context, run models.RolloverRun) (*models.RolloverResult, error) {
	return s.complete(ctx, &run, true)
}

func (s *RolloverService) complete(ctx context.Context, run *models.RolloverRun, resumed bool) (*models.RolloverResult, error) {
	result := &models.RolloverResult{Resumed: resumed}
	logger := s.logger.With(
		zap.String("owner_id", run.OwnerID),
		zap.String("run_id", run.ID),
		zap.String("period", run.PeriodLabel.String()),
	)

	committed := false
	defer func() {
		if committed {
			s.cache.InvalidateOwner(ctx, run.OwnerID)
		}
	}()

	if run.Phase == models.RolloverStarted {
		added, err := s.repo.ApplyDues(ctx, run, s.clock.Now().UTC())
		if err != nil {
			s.metrics.RecordRollover("failed")
			logger.Error("rollover dues phase failed", zap.Error(err))
			return nil, appErrors.Internal(err, "failed to apply dues")
		}
		result.DuesAdded = added
		committed = true
	}
	if run.Phase == models.RolloverDuesApplied {
		reset, err := s.repo.ResetStatuses(ctx, run, s.clock.Now().UTC())
		if err != nil {
			s.metrics.RecordRollover("failed")
			logger.Error("rollover reset phase failed", zap.Error(err))
			return nil, appErrors.Internal(err, "failed to reset payment status")
		}
		result.StatusReset = reset
		committed = true
	}
	if run.Phase != models.RolloverCompleted {
		return nil, appErrors.Internal(fmt.Errorf("unexpected rollover phase %q", run.Phase), "rollover did not complete")
	}

	committed = true
	outcome := "completed"
	if resumed {
		outcome = "resumed"
	}
	s.metrics.RecordRollover(outcome)
	logger.Info("rollover completed",
		zap.Bool("resumed", resumed),
		zap.Int64("dues_added", result.DuesAdded),
		zap.Int64("status_reset", result.StatusReset),
	)
	result.Run = *run
	return result, nil
}

// EnqueueOpen schedules every unfinished run on the queue. Used at startup.
func (s *RolloverService) EnqueueOpen(ctx context.Context, queue interface{ Enqueue(jobs.Job) error }) (int, error) {
	runs, err := s.repo.ListOpen(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to list open rollovers")
	}
	queued := 0
	for _, run := range runs {
		job := jobs.Job{ID: run.ID, Kind: JobKindResumeRollover, OwnerID: run.OwnerID}
		if err := queue.Enqueue(job); err != nil {
			return queued, fmt.Errorf("enqueue rollover %s: %w", run.ID, err)
		}
		queued++
	}
	if queued > 0 {
		s.logger.Info("interrupted rollovers queued", zap.Int("count", queued))
	}
	return queued, nil
}

// HandleResumeJob is the queue handler for JobKindResumeRollover. The marker is
// reloaded on every attempt so retries continue from the last committed phase.
func (s *RolloverService) HandleResumeJob(ctx context.Context, job jobs.Job) error {
	run, err := s.repo.FindOpen(ctx, job.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("reload rollover %s: %w", job.ID, err)
	}
	_, err = s.Resume(ctx, *run)
	return err
}
