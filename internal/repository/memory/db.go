// Package memory is a process-local record store used for development and tests.
// It mirrors the owner scoping and atomicity of the Postgres repositories.
package memory

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/repository"
)

// DB holds every table behind a single lock so multi-row statements stay atomic.
type DB struct {
	mu         sync.RWMutex
	students   map[string]*models.Student
	order      []string
	batches    map[string]*models.Batch
	attendance []models.AttendanceRecord
	rollovers  map[string]*models.RolloverRun
	accounts   map[string]models.Account
	guardians  map[string]*models.GuardianAccess
}

// Open returns an empty store.
func Open() *DB {
	return &DB{
		students:  make(map[string]*models.Student),
		batches:   make(map[string]*models.Batch),
		rollovers: make(map[string]*models.RolloverRun),
		accounts:  make(map[string]models.Account),
		guardians: make(map[string]*models.GuardianAccess),
	}
}

// PutAccount seeds an owner profile.
func (db *DB) PutAccount(account models.Account) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.accounts[account.ID] = account
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return repository.ErrMissingOwner
	}
	return nil
}

func copyStudent(s *models.Student) models.Student {
	out := *s
	out.PaidMonths = append([]models.PeriodLabel{}, s.PaidMonths...)
	out.DueMonths = append([]models.PeriodLabel{}, s.DueMonths...)
	out.Marks = append([]models.Mark{}, s.Marks...)
	if s.BatchID != nil {
		id := *s.BatchID
		out.BatchID = &id
	}
	return out
}

func (db *DB) ownedStudent(ownerID, id string) (*models.Student, error) {
	s, ok := db.students[id]
	if !ok || s.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	return s, nil
}
