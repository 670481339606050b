package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// ErrMissingOwner guards every owner-scoped query against an empty tenant.
var ErrMissingOwner = errors.New("owner id required")

const studentColumns = `id, owner_id, name, phone_number, batch_id, payment_amount, payment_status,
        paid_months, due_months, marks, admission_date, created_at, updated_at`

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrMissingOwner
	}
	return nil
}

type markList []models.Mark

func (m *markList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = markList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported marks column type %T", src)
	}
	var marks []models.Mark
	if err := json.Unmarshal(raw, &marks); err != nil {
		return fmt.Errorf("decode marks: %w", err)
	}
	*m = marks
	return nil
}

func (m markList) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]models.Mark(m))
}

type studentRow struct {
	ID            string         `db:"id"`
	OwnerID       string         `db:"owner_id"`
	Name          string         `db:"name"`
	PhoneNumber   string         `db:"phone_number"`
	BatchID       sql.NullString `db:"batch_id"`
	PaymentAmount float64        `db:"payment_amount"`
	PaymentStatus bool           `db:"payment_status"`
	PaidMonths    pq.StringArray `db:"paid_months"`
	DueMonths     pq.StringArray `db:"due_months"`
	Marks         markList       `db:"marks"`
	AdmissionDate string         `db:"admission_date"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r studentRow) toModel() models.Student {
	s := models.Student{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Name:          r.Name,
		PhoneNumber:   r.PhoneNumber,
		PaymentAmount: r.PaymentAmount,
		PaymentStatus: r.PaymentStatus,
		PaidMonths:    models.LabelsFromStrings(r.PaidMonths),
		DueMonths:     models.LabelsFromStrings(r.DueMonths),
		Marks:         []models.Mark(r.Marks),
		AdmissionDate: r.AdmissionDate,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.BatchID.Valid {
		id := r.BatchID.String
		s.BatchID = &id
	}
	s.Normalize()
	return s
}

// StudentRepository is the owner-scoped record store for students. Every statement
// filters on owner_id; callers pass the tenant taken from verified claims.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student of the owner ordered by admission.
func (r *StudentRepository) List(ctx context.Context, ownerID string) ([]models.Student, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	query := `SELECT ` + studentColumns + ` FROM students WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return toStudents(rows), nil
}

// ListByPhone returns the owner's students registered under a guardian phone number.
func (r *StudentRepository) ListByPhone(ctx context.Context, ownerID, phone string) ([]models.Student, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	query := `SELECT ` + studentColumns + ` FROM students WHERE owner_id = $1 AND phone_number = $2 ORDER BY created_at ASC`
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, phone); err != nil {
		return nil, fmt.Errorf("list students by phone: %w", err)
	}
	return toStudents(rows), nil
}

// FindByID fetches one student. Foreign students surface as sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Student, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 AND owner_id = $2`
	var row studentRow
	if err := r.db.GetContext(ctx, &row, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	student := row.toModel()
	return &student, nil
}

// CountOwned returns how many of ids belong to the owner.
func (r *StudentRepository) CountOwned(ctx context.Context, ownerID string, ids []string) (int, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	query := `SELECT COUNT(*) FROM students WHERE owner_id = $1 AND id::text = ANY($2)`
	if err := r.db.GetContext(ctx, &count, query, ownerID, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("count owned students: %w", err)
	}
	return count, nil
}

// Create inserts a new student.
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

	const query = `INSERT INTO students (id, owner_id, name, phone_number, batch_id, payment_amount, payment_status,
        paid_months, due_months, marks, admission_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.OwnerID,
		student.Name,
		student.PhoneNumber,
		student.BatchID,
		student.PaymentAmount,
		student.PaymentStatus,
		pq.StringArray(models.LabelStrings(student.PaidMonths)),
		pq.StringArray(models.LabelStrings(student.DueMonths)),
		markList(student.Marks),
		student.AdmissionDate,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateProfile rewrites the editable profile fields.
func (r *StudentRepository) UpdateProfile(ctx context.Context, ownerID string, student *models.Student) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = $3, phone_number = $4, batch_id = $5, payment_amount = $6, updated_at = $7
        WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, student.ID, ownerID, student.Name, student.PhoneNumber, student.BatchID, student.PaymentAmount, student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return expectOneRow(res, "update student")
}

// UpdatePayment writes a payment transition as a single row update.
func (r *StudentRepository) UpdatePayment(ctx context.Context, ownerID string, student *models.Student) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET payment_status = $3, paid_months = $4, due_months = $5, updated_at = $6
        WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query,
		student.ID,
		ownerID,
		student.PaymentStatus,
		pq.StringArray(models.LabelStrings(student.PaidMonths)),
		pq.StringArray(models.LabelStrings(student.DueMonths)),
		student.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return expectOneRow(res, "update payment")
}

// RemoveDueMonths pulls the given labels out of due_months and returns the updated student.
func (r *StudentRepository) RemoveDueMonths(ctx context.Context, ownerID, id string, months []models.PeriodLabel) (*models.Student, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	query := `UPDATE students
        SET due_months = ARRAY(SELECT m FROM unnest(due_months) AS m WHERE NOT (m = ANY($3::text[]))), updated_at = $4
        WHERE id = $1 AND owner_id = $2
        RETURNING ` + studentColumns
	var row studentRow
	if err := r.db.GetContext(ctx, &row, query, id, ownerID, pq.StringArray(models.LabelStrings(months)), time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("remove due months: %w", err)
	}
	student := row.toModel()
	return &student, nil
}

// AppendMarks concatenates marks onto the student's results log.
func (r *StudentRepository) AppendMarks(ctx context.Context, ownerID, id string, marks []models.Mark) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	const query = `UPDATE students SET marks = COALESCE(marks, '[]'::jsonb) || $3::jsonb, updated_at = $4
        WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID, markList(marks), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append marks: %w", err)
	}
	return expectOneRow(res, "append marks")
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return expectOneRow(res, "delete student")
}

func toStudents(rows []studentRow) []models.Student {
	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toModel())
	}
	return students
}

func expectOneRow(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
