package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

type attendanceRow struct {
	ID               string         `db:"id"`
	OwnerID          string         `db:"owner_id"`
	BatchID          sql.NullString `db:"batch_id"`
	Date             string         `db:"date"`
	AbsentStudentIDs pq.StringArray `db:"absent_student_ids"`
	AllPresent       bool           `db:"all_present"`
	CreatedAt        time.Time      `db:"created_at"`
}

// AttendanceRepository appends and lists attendance sheets.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create appends a new attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	if err := requireOwner(record.OwnerID); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.AbsentStudentIDs == nil {
		record.AbsentStudentIDs = []string{}
	}
	record.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO attendance_records (id, owner_id, batch_id, date, absent_student_ids, all_present, created_at)
        VALUES ($1, $2, $3, $4::date, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, record.ID, record.OwnerID, record.BatchID, record.Date, pq.StringArray(record.AbsentStudentIDs), record.AllPresent, record.CreatedAt); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// List returns the owner's attendance records, newest day first.
func (r *AttendanceRepository) List(ctx context.Context, ownerID string, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	conditions := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	if filter.Date != "" {
		args = append(args, filter.Date)
		conditions = append(conditions, fmt.Sprintf("date = $%d::date", len(args)))
	}
	if filter.BatchID != "" {
		args = append(args, filter.BatchID)
		conditions = append(conditions, fmt.Sprintf("batch_id = $%d", len(args)))
	}
	query := `SELECT id, owner_id, batch_id, to_char(date, 'YYYY-MM-DD') AS date, absent_student_ids, all_present, created_at
        FROM attendance_records WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY date DESC, created_at DESC`

	var rows []attendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	records := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		record := models.AttendanceRecord{
			ID:               row.ID,
			OwnerID:          row.OwnerID,
			Date:             row.Date,
			AbsentStudentIDs: []string(row.AbsentStudentIDs),
			AllPresent:       row.AllPresent,
			CreatedAt:        row.CreatedAt,
		}
		if record.AbsentStudentIDs == nil {
			record.AbsentStudentIDs = []string{}
		}
		if row.BatchID.Valid {
			id := row.BatchID.String
			record.BatchID = &id
		}
		records = append(records, record)
	}
	return records, nil
}
