package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// StudentStore is the owner-scoped student table.
type StudentStore interface {
	List(ctx context.Context, ownerID string) ([]models.Student, error)
	ListByPhone(ctx context.Context, ownerID, phone string) ([]models.Student, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Student, error)
	CountOwned(ctx context.Context, ownerID string, ids []string) (int, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateProfile(ctx context.Context, ownerID string, student *models.Student) error
	UpdatePayment(ctx context.Context, ownerID string, student *models.Student) error
	RemoveDueMonths(ctx context.Context, ownerID, id string, months []models.PeriodLabel) (*models.Student, error)
	AppendMarks(ctx context.Context, ownerID, id string, marks []models.Mark) error
	Delete(ctx context.Context, ownerID, id string) error
}

// BatchStore is the owner-scoped batch table.
type BatchStore interface {
	List(ctx context.Context, ownerID string) ([]models.Batch, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Batch, error)
	Create(ctx context.Context, batch *models.Batch) error
}

// AttendanceStore is the append-only attendance log.
type AttendanceStore interface {
	Create(ctx context.Context, record *models.AttendanceRecord) error
	List(ctx context.Context, ownerID string, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

// RolloverStore persists rollover run markers and applies their phases.
type RolloverStore interface {
	Start(ctx context.Context, run *models.RolloverRun) error
	FindOpen(ctx context.Context, ownerID string) (*models.RolloverRun, error)
	ListOpen(ctx context.Context) ([]models.RolloverRun, error)
	Claim(ctx context.Context, run *models.RolloverRun, at time.Time) error
	ApplyDues(ctx context.Context, run *models.RolloverRun, at time.Time) (int64, error)
	ResetStatuses(ctx context.Context, run *models.RolloverRun, at time.Time) (int64, error)
}

// AccountStore reads owner profiles.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// GuardianStore holds guardian portal credentials.
type GuardianStore interface {
	Upsert(ctx context.Context, access *models.GuardianAccess) error
	ListByPhone(ctx context.Context, phone string) ([]models.GuardianAccess, error)
}

// Stores bundles one backend's repositories.
type Stores struct {
	Students   StudentStore
	Batches    BatchStore
	Attendance AttendanceStore
	Rollovers  RolloverStore
	Accounts   AccountStore
	Guardians  GuardianStore
	// Ping reports backend health for readiness probes.
	Ping func(ctx context.Context) error
}

// NewStores wires the Postgres repositories around db.
func NewStores(db *sqlx.DB) Stores {
	return Stores{
		Students:   NewStudentRepository(db),
		Batches:    NewBatchRepository(db),
		Attendance: NewAttendanceRepository(db),
		Rollovers:  NewRolloverRepository(db),
		Accounts:   NewAccountRepository(db),
		Guardians:  NewGuardianRepository(db),
		Ping:       db.PingContext,
	}
}
