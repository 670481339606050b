package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

func TestRolloverRepositoryStartConflict(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRolloverRepository(db)

	mock.ExpectExec("INSERT INTO rollover_runs").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	now := time.Now()
	err := repo.Start(context.Background(), &models.RolloverRun{ID: "run-1", OwnerID: "owner-1", PeriodLabel: "January_2025", Phase: models.RolloverStarted, StartedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, ErrRolloverInProgress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolloverRepositoryApplyDuesCommitsWithMarker(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRolloverRepository(db)

	at := time.Date(2025, time.January, 31, 18, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rollover_runs SET phase = \$2.*WHERE id = \$1 AND phase = \$5`).
		WithArgs("run-1", "DUES_APPLIED", at, nil, "STARTED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE students SET due_months = array_append\(due_months, \$2\).*payment_status = false AND NOT \(\$2 = ANY\(due_months\)\)`).
		WithArgs("owner-1", "January_2025", at).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	run := &models.RolloverRun{ID: "run-1", OwnerID: "owner-1", PeriodLabel: "January_2025", Phase: models.RolloverStarted}
	affected, err := repo.ApplyDues(context.Background(), run, at)
	require.NoError(t, err)
	assert.EqualValues(t, 3, affected)
	assert.Equal(t, models.RolloverDuesApplied, run.Phase)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolloverRepositoryApplyDuesSkipsAdvancedMarker(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRolloverRepository(db)

	at := time.Date(2025, time.January, 31, 18, 0, 0, 0, time.UTC)
	completed := at.Add(-time.Minute)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rollover_runs SET phase = \$2.*AND phase = \$5`).
		WithArgs("run-1", "DUES_APPLIED", at, nil, "STARTED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM rollover_runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "period_label", "phase", "started_at", "updated_at", "completed_at"}).
			AddRow("run-1", "owner-1", "January_2025", "COMPLETED", completed, completed, completed))
	mock.ExpectCommit()

	run := &models.RolloverRun{ID: "run-1", OwnerID: "owner-1", PeriodLabel: "January_2025", Phase: models.RolloverStarted}
	affected, err := repo.ApplyDues(context.Background(), run, at)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
	assert.Equal(t, models.RolloverCompleted, run.Phase)
	require.NotNil(t, run.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolloverRepositoryResetRollsBackOnMarkerFailure(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRolloverRepository(db)

	at := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rollover_runs SET phase = \$2`).
		WithArgs("run-1", "COMPLETED", at, at, "DUES_APPLIED").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	run := &models.RolloverRun{ID: "run-1", OwnerID: "owner-1", PeriodLabel: "January_2025", Phase: models.RolloverDuesApplied}
	_, err := repo.ResetStatuses(context.Background(), run, at)
	require.Error(t, err)
	assert.Equal(t, models.RolloverDuesApplied, run.Phase)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolloverRepositoryResetCompletesMarker(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRolloverRepository(db)

	at := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE rollover_runs SET phase = \$2`).
		WithArgs("run-1", "COMPLETED", at, at, "DUES_APPLIED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE students SET payment_status = false`).
		WithArgs("owner-1", at).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	run := &models.RolloverRun{ID: "run-1", OwnerID: "owner-1", PeriodLabel: "January_2025", Phase: models.RolloverDuesApplied}
	reset, err := repo.ResetStatuses(context.Background(), run, at)
	require.NoError(t, err)
	assert.EqualValues(t, 5, reset)
	assert.Equal(t, models.RolloverCompleted, run.Phase)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolloverRepositoryClaimRequiresUnchangedMarker(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRolloverRepository(db)

	seen := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	at := seen.Add(10 * time.Minute)
	mock.ExpectExec(`UPDATE rollover_runs SET updated_at = \$3 WHERE id = \$1 AND updated_at = \$2 AND phase <> \$4`).
		WithArgs("run-1", seen, at, "COMPLETED").
		WillReturnResult(sqlmock.NewResult(0, 0))

	run := &models.RolloverRun{ID: "run-1", OwnerID: "owner-1", Phase: models.RolloverStarted, UpdatedAt: seen}
	err := repo.Claim(context.Background(), run, at)
	assert.ErrorIs(t, err, ErrRolloverInProgress)
	assert.Equal(t, seen, run.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolloverRepositoryListOpen(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRolloverRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM rollover_runs WHERE phase <> \$1`).
		WithArgs("COMPLETED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "period_label", "phase", "started_at", "updated_at", "completed_at"}).
			AddRow("run-1", "owner-1", "January_2025", "DUES_APPLIED", now, now, nil))

	runs, err := repo.ListOpen(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RolloverDuesApplied, runs[0].Phase)
	assert.Nil(t, runs[0].CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
