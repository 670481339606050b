package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/repository/memory"
	"github.com/noah-isme/coaching-center-api/pkg/config"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/jobs"
)

const (
	ownerA = "owner-a"
	ownerB = "owner-b"
)

var errBackend = errors.New("backend unavailable")

type fakeCacheRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	deleted []string
	getErr  error
	setErr  error
	delErr  error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return f.getErr
	}
	raw, ok := f.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCacheRepo) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, keys...)
	if f.delErr != nil {
		return f.delErr
	}
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeCacheRepo) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func (f *fakeCacheRepo) resetDeleted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = nil
}

func (f *fakeCacheRepo) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.deleted...)
}

type sentSMS struct {
	To      string
	Message string
}

type fakeSMS struct {
	sent []sentSMS
	fail map[string]error
}

func (f *fakeSMS) Send(ctx context.Context, to, message string) (string, error) {
	if err := f.fail[to]; err != nil {
		return "", err
	}
	f.sent = append(f.sent, sentSMS{To: to, Message: message})
	return "queued", nil
}

type fakeArchive struct {
	saved map[string][]byte
	err   error
}

func (f *fakeArchive) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[key] = data
	return "mem://" + key, nil
}

type fakeQueue struct {
	jobs []jobs.Job
	err  error
}

func (f *fakeQueue) Enqueue(job jobs.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type testEnv struct {
	db         *memory.DB
	cacheRepo  *fakeCacheRepo
	cache      *CacheService
	clock      clockwork.FakeClock
	sms        *fakeSMS
	studentsDB *memory.StudentRepository
	batchesDB  *memory.BatchRepository
	rollovers  *memory.RolloverRepository

	students   *StudentService
	payments   *PaymentService
	batches    *BatchService
	rollover   *RolloverService
	exports    *ExportService
	results    *ResultsService
	attendance *AttendanceService
	accounts   *AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := memory.Open()
	cacheRepo := newFakeCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, config.CacheConfig{Enabled: true}, zap.NewNop())
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC))
	sms := &fakeSMS{}

	studentsDB := memory.NewStudentRepository(db)
	batchesDB := memory.NewBatchRepository(db)
	rollovers := memory.NewRolloverRepository(db)

	env := &testEnv{
		db:         db,
		cacheRepo:  cacheRepo,
		cache:      cache,
		clock:      clock,
		sms:        sms,
		studentsDB: studentsDB,
		batchesDB:  batchesDB,
		rollovers:  rollovers,
	}
	env.students = NewStudentService(studentsDB, batchesDB, cache, nil, zap.NewNop())
	env.payments = NewPaymentService(studentsDB, cache, clock, zap.NewNop())
	env.batches = NewBatchService(batchesDB, cache, nil, zap.NewNop())
	env.rollover = NewRolloverService(rollovers, cache, metrics, clock, zap.NewNop())
	env.exports = NewExportService(studentsDB, batchesDB, env.rollover, cache, metrics, nil, nil, zap.NewNop())
	env.results = NewResultsService(studentsDB, sms, cache, metrics, zap.NewNop())
	env.attendance = NewAttendanceService(memory.NewAttendanceRepository(db), studentsDB, batchesDB, nil, zap.NewNop())
	env.accounts = NewAccountService(memory.NewAccountRepository(db), cache, zap.NewNop())
	return env
}

func (e *testEnv) admit(t *testing.T, ownerID, name string) *models.Student {
	t.Helper()
	student, err := e.students.Create(context.Background(), ownerID, CreateStudentRequest{Name: name, PhoneNumber: "01712345678"})
	require.NoError(t, err)
	return student
}

func (e *testEnv) reload(t *testing.T, ownerID, id string) *models.Student {
	t.Helper()
	student, err := e.studentsDB.FindByID(context.Background(), ownerID, id)
	require.NoError(t, err)
	return student
}

func assertInvalidated(t *testing.T, repo *fakeCacheRepo, ownerID string) {
	t.Helper()
	deleted := repo.deletedKeys()
	for _, key := range OwnerKeys(ownerID) {
		assert.Contains(t, deleted, key)
	}
}

func assertAppError(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, want)
}

func labels(raw ...string) []models.PeriodLabel {
	return models.LabelsFromStrings(raw)
}
