package memory

import (
	"context"

	"github.com/noah-isme/coaching-center-api/internal/repository"
)

// NewStores wires the in-memory repositories around db.
func NewStores(db *DB) repository.Stores {
	return repository.Stores{
		Students:   NewStudentRepository(db),
		Batches:    NewBatchRepository(db),
		Attendance: NewAttendanceRepository(db),
		Rollovers:  NewRolloverRepository(db),
		Accounts:   NewAccountRepository(db),
		Guardians:  NewGuardianRepository(db),
		Ping:       func(context.Context) error { return nil },
	}
}
