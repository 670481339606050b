package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentRowColumns = []string{"id", "owner_id", "name", "phone_number", "batch_id", "payment_amount", "payment_status",
	"paid_months", "due_months", "marks", "admission_date", "created_at", "updated_at"}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("s1", "owner-1", "Rahim", "01711111111", "b1", 1500.0, false,
			[]byte("{05-01-25}"), []byte("{December_2024,January_2025}"),
			[]byte(`[{"subject":"Physics","total":"100","obtained":"87"}]`), "2024-11-01", now, now).
		AddRow("s2", "owner-1", "Karim", "01722222222", nil, 0.0, true, []byte("{}"), []byte("{}"), []byte("[]"), "", now, now)
	mock.ExpectQuery(`(?s)SELECT id, owner_id, name, .* FROM students WHERE owner_id = \$1 ORDER BY created_at ASC, id ASC`).
		WithArgs("owner-1").
		WillReturnRows(rows)

	students, err := repo.List(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, students, 2)

	assert.Equal(t, "b1", *students[0].BatchID)
	assert.Equal(t, []models.PeriodLabel{"December_2024", "January_2025"}, students[0].DueMonths)
	assert.Equal(t, []models.PeriodLabel{"05-01-25"}, students[0].PaidMonths)
	require.Len(t, students[0].Marks, 1)
	assert.Equal(t, models.MarkValue("87"), students[0].Marks[0].Obtained)

	assert.Nil(t, students[1].BatchID)
	assert.NotNil(t, students[1].DueMonths)
	assert.Empty(t, students[1].Marks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRequiresOwner(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	_, err := repo.List(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = repo.FindByID(context.Background(), "", "s1")
	assert.ErrorIs(t, err, ErrMissingOwner)
	err = repo.Delete(context.Background(), "", "s1")
	assert.ErrorIs(t, err, ErrMissingOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDForeignOwner(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`FROM students WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("s1", "owner-2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "owner-2", "s1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "owner-1", "Rahim", "01711111111", sqlmock.AnyArg(), 1500.0, false,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "2024-11-01", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{OwnerID: "owner-1", Name: "Rahim", PhoneNumber: "01711111111", PaymentAmount: 1500, AdmissionDate: "2024-11-01"}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.NotNil(t, student.PaidMonths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdatePaymentNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(`UPDATE students SET payment_status = \$3, paid_months = \$4, due_months = \$5`).
		WithArgs("s1", "owner-1", true, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePayment(context.Background(), "owner-1", &models.Student{ID: "s1", PaymentStatus: true})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRemoveDueMonths(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(`UPDATE students\s+SET due_months = ARRAY\(SELECT m FROM unnest\(due_months\)`).
		WithArgs("s1", "owner-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(studentRowColumns).
			AddRow("s1", "owner-1", "Rahim", "01711111111", nil, 1500.0, false, []byte("{}"), []byte("{February_2025}"), []byte("[]"), "", now, now))

	student, err := repo.RemoveDueMonths(context.Background(), "owner-1", "s1", []models.PeriodLabel{"January_2025"})
	require.NoError(t, err)
	assert.Equal(t, []models.PeriodLabel{"February_2025"}, student.DueMonths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryAppendMarks(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(`UPDATE students SET marks = COALESCE\(marks, '\[\]'::jsonb\) \|\| \$3::jsonb`).
		WithArgs("s1", "owner-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendMarks(context.Background(), "owner-1", "s1", []models.Mark{{Subject: "Math", Total: "50", Obtained: "41"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkListValueEncodesEmptyArray(t *testing.T) {
	value, err := markList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)

	var marks markList
	require.NoError(t, marks.Scan(nil))
	assert.NotNil(t, marks)
}
