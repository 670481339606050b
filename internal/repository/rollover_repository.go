package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/pkg/database"
)

// ErrRolloverInProgress is returned when an owner already has an open rollover run.
var ErrRolloverInProgress = errors.New("rollover already in progress")

const rolloverColumns = `id, owner_id, period_label, phase, started_at, updated_at, completed_at`

type rolloverRow struct {
	ID          string       `db:"id"`
	OwnerID     string       `db:"owner_id"`
	PeriodLabel string       `db:"period_label"`
	Phase       string       `db:"phase"`
	StartedAt   time.Time    `db:"started_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
}

func (r rolloverRow) toModel() models.RolloverRun {
	run := models.RolloverRun{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		PeriodLabel: models.PeriodLabel(r.PeriodLabel),
		Phase:       models.RolloverPhase(r.Phase),
		StartedAt:   r.StartedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CompletedAt.Valid {
		completed := r.CompletedAt.Time
		run.CompletedAt = &completed
	}
	return run
}

// RolloverRepository persists rollover markers and applies each phase in a
// transaction together with its marker update.
type RolloverRepository struct {
	db *sqlx.DB
}

// NewRolloverRepository constructs a RolloverRepository.
func NewRolloverRepository(db *sqlx.DB) *RolloverRepository {
	return &RolloverRepository{db: db}
}

// Start records a new STARTED run. A second open run for the owner fails with ErrRolloverInProgress.
func (r *RolloverRepository) Start(ctx context.Context, run *models.RolloverRun) error {
	if err := requireOwner(run.OwnerID); err != nil {
		return err
	}
	const query = `INSERT INTO rollover_runs (id, owner_id, period_label, phase, started_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, run.ID, run.OwnerID, string(run.PeriodLabel), string(run.Phase), run.StartedAt, run.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrRolloverInProgress
		}
		return fmt.Errorf("start rollover: %w", err)
	}
	return nil
}

// FindOpen returns the owner's unfinished run or sql.ErrNoRows.
func (r *RolloverRepository) FindOpen(ctx context.Context, ownerID string) (*models.RolloverRun, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	query := `SELECT ` + rolloverColumns + ` FROM rollover_runs WHERE owner_id = $1 AND phase <> $2 ORDER BY started_at ASC LIMIT 1`
	var row rolloverRow
	if err := r.db.GetContext(ctx, &row, query, ownerID, string(models.RolloverCompleted)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find open rollover: %w", err)
	}
	run := row.toModel()
	return &run, nil
}

// ListOpen returns every unfinished run across owners.
func (r *RolloverRepository) ListOpen(ctx context.Context) ([]models.RolloverRun, error) {
	query := `SELECT ` + rolloverColumns + ` FROM rollover_runs WHERE phase <> $1 ORDER BY started_at ASC`
	var rows []rolloverRow
	if err := r.db.SelectContext(ctx, &rows, query, string(models.RolloverCompleted)); err != nil {
		return nil, fmt.Errorf("list open rollovers: %w", err)
	}
	runs := make([]models.RolloverRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.toModel())
	}
	return runs, nil
}

// Claim takes over a stale run. It succeeds only if the marker is still open and
// unchanged since run was read; otherwise another worker owns it and ErrRolloverInProgress is returned.
func (r *RolloverRepository) Claim(ctx context.Context, run *models.RolloverRun, at time.Time) error {
	if err := requireOwner(run.OwnerID); err != nil {
		return err
	}
	const query = `UPDATE rollover_runs SET updated_at = $3 WHERE id = $1 AND updated_at = $2 AND phase <> $4`
	res, err := r.db.ExecContext(ctx, query, run.ID, run.UpdatedAt, at, string(models.RolloverCompleted))
	if err != nil {
		return fmt.Errorf("claim rollover: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim rollover rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRolloverInProgress
	}
	run.UpdatedAt = at
	return nil
}

// ApplyDues advances the marker from STARTED to DUES_APPLIED and appends the run's
// label to every unpaid student lacking it, in one transaction. If the marker already
// left STARTED the students are untouched and run is refreshed from the stored marker.
func (r *RolloverRepository) ApplyDues(ctx context.Context, run *models.RolloverRun, at time.Time) (int64, error) {
	if err := requireOwner(run.OwnerID); err != nil {
		return 0, err
	}
	var affected int64
	var current *models.RolloverRun
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		moved, err := advance(ctx, tx, run.ID, models.RolloverStarted, models.RolloverDuesApplied, at, false)
		if err != nil {
			return err
		}
		if !moved {
			current, err = loadRun(ctx, tx, run.ID)
			return err
		}
		const dues = `UPDATE students SET due_months = array_append(due_months, $2), updated_at = $3
        WHERE owner_id = $1 AND payment_status = false AND NOT ($2 = ANY(due_months))`
		res, err := tx.ExecContext(ctx, dues, run.OwnerID, string(run.PeriodLabel), at)
		if err != nil {
			return fmt.Errorf("apply dues: %w", err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("apply dues rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if current != nil {
		*run = *current
		return 0, nil
	}
	run.Phase = models.RolloverDuesApplied
	run.UpdatedAt = at
	return affected, nil
}

// ResetStatuses advances the marker from DUES_APPLIED to COMPLETED and marks every
// student of the owner unpaid, in one transaction. An already completed marker is a no-op.
func (r *RolloverRepository) ResetStatuses(ctx context.Context, run *models.RolloverRun, at time.Time) (int64, error) {
	if err := requireOwner(run.OwnerID); err != nil {
		return 0, err
	}
	var affected int64
	var current *models.RolloverRun
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		moved, err := advance(ctx, tx, run.ID, models.RolloverDuesApplied, models.RolloverCompleted, at, true)
		if err != nil {
			return err
		}
		if !moved {
			current, err = loadRun(ctx, tx, run.ID)
			return err
		}
		const reset = `UPDATE students SET payment_status = false, updated_at = $2 WHERE owner_id = $1 AND payment_status = true`
		res, err := tx.ExecContext(ctx, reset, run.OwnerID, at)
		if err != nil {
			return fmt.Errorf("reset payment status: %w", err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("reset payment status rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if current != nil {
		*run = *current
		return 0, nil
	}
	run.Phase = models.RolloverCompleted
	run.UpdatedAt = at
	run.CompletedAt = &at
	return affected, nil
}

// advance moves the marker from one phase to the next. The row lock taken by the
// update serialises concurrent resumers; false means the marker was not in from.
func advance(ctx context.Context, tx *sqlx.Tx, id string, from, to models.RolloverPhase, at time.Time, complete bool) (bool, error) {
	var completedAt interface{}
	if complete {
		completedAt = at
	}
	const query = `UPDATE rollover_runs SET phase = $2, updated_at = $3, completed_at = $4 WHERE id = $1 AND phase = $5`
	res, err := tx.ExecContext(ctx, query, id, string(to), at, completedAt, string(from))
	if err != nil {
		return false, fmt.Errorf("advance rollover: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("advance rollover rows affected: %w", err)
	}
	return affected > 0, nil
}

func loadRun(ctx context.Context, tx *sqlx.Tx, id string) (*models.RolloverRun, error) {
	var row rolloverRow
	if err := tx.GetContext(ctx, &row, `SELECT `+rolloverColumns+` FROM rollover_runs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("load rollover: %w", err)
	}
	run := row.toModel()
	return &run, nil
}

func (r *RolloverRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
