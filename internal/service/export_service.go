package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/export"
	"github.com/noah-isme/coaching-center-api/pkg/jobs"
)

// JobKindArchiveExport identifies queued export archive uploads.
const JobKindArchiveExport = "export.archive"

// UnassignedSheet collects students without a (resolvable) batch.
const UnassignedSheet = "Unassigned Students"

var exportHeaders = []string{
	"Name", "Phone Number", "Class", "Subject", "Payment Status",
	"Payment Amount", "Paid Months", "Due Months", "Study Days",
}

type exportStudentSource interface {
	List(ctx context.Context, ownerID string) ([]models.Student, error)
}

type exportBatchSource interface {
	List(ctx context.Context, ownerID string) ([]models.Batch, error)
}

type rolloverRunner interface {
	Run(ctx context.Context, ownerID string) (*models.RolloverResult, error)
}

type archiveStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type sheetRenderer interface {
	Render(sheets []export.Sheet) ([]byte, error)
}

type pdfRenderer interface {
	Render(sheets []export.Sheet, title string) ([]byte, error)
}

// ExportResult is a rendered export ready to stream.
type ExportResult struct {
	Filename    string                 `json:"filename"`
	ContentType string                 `json:"content_type"`
	Payload     []byte                 `json:"payload"`
	CacheHit    bool                   `json:"-"`
	Rollover    *models.RolloverResult `json:"-"`
}

type archiveJob struct {
	Key         string
	Payload     []byte
	ContentType string
}

// ExportService renders an owner's students grouped by batch and closes the billing period.
type ExportService struct {
	students exportStudentSource
	batches  exportBatchSource
	rollover rolloverRunner
	cache    *CacheService
	metrics  *MetricsService
	archive  archiveStore
	queue    jobEnqueuer
	xlsx     sheetRenderer
	csv      sheetRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService. archive and queue are optional.
func NewExportService(students exportStudentSource, batches exportBatchSource, rollover rolloverRunner, cache *CacheService, metrics *MetricsService, archive archiveStore, queue jobEnqueuer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		batches:  batches,
		rollover: rollover,
		cache:    cache,
		metrics:  metrics,
		archive:  archive,
		queue:    queue,
		xlsx:     export.NewXLSXExporter(),
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// Export returns the owner's export in format. A cached blob is returned as-is without
// a rollover; otherwise the blob is rendered from the pre-rollover state before the rollover runs.
func (s *ExportService) Export(ctx context.Context, ownerID string, format export.Format) (*ExportResult, error) {
	key := ExportKey(ownerID, format)
	var cached ExportResult
	if s.cache.Get(ctx, key, &cached) {
		cached.CacheHit = true
		s.metrics.RecordExport(string(format), true)
		return &cached, nil
	}

	students, err := s.students.List(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, "students not found", "failed to load students")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no students found")
	}
	batches, err := s.batches.List(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, "batches not found", "failed to load batches")
	}

	payload, err := s.render(format, BuildSheets(students, batches), "Students")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	rollover, err := s.rollover.Run(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	period := rollover.Run.PeriodLabel.String()

	result := &ExportResult{
		Filename:    fmt.Sprintf("students_export_%s.%s", period, format),
		ContentType: format.ContentType(),
		Payload:     payload,
		Rollover:    rollover,
	}
	s.archiveExport(ctx, ownerID, rollover.Run, format, result)
	s.cache.Set(ctx, key, result, s.cache.ExportTTL())
	s.metrics.RecordExport(string(format), false)
	return result, nil
}

func (s *ExportService) render(format export.Format, sheets []export.Sheet, title string) ([]byte, error) {
	switch format {
	case export.FormatCSV:
		return s.csv.Render(sheets)
	case export.FormatPDF:
		return s.pdf.Render(sheets, title)
	default:
		return s.xlsx.Render(sheets)
	}
}

func (s *ExportService) archiveExport(ctx context.Context, ownerID string, run models.RolloverRun, format export.Format, result *ExportResult) {
	if s.archive == nil {
		return
	}
	job := archiveJob{
		Key:         fmt.Sprintf("exports/%s/%s/%s.%s", ownerID, run.PeriodLabel, run.ID, format),
		Payload:     result.Payload,
		ContentType: result.ContentType,
	}
	if s.queue != nil {
		err := s.queue.Enqueue(jobs.Job{ID: run.ID, Kind: JobKindArchiveExport, OwnerID: ownerID, Payload: job})
		if err == nil {
			return
		}
		s.logger.Warn("archive enqueue failed, storing inline", zap.String("owner_id", ownerID), zap.Error(err))
	}
	if err := s.store(ctx, job); err != nil {
		s.logger.Warn("export archive failed", zap.String("owner_id", ownerID), zap.String("key", job.Key), zap.Error(err))
	}
}

// HandleArchiveJob is the queue handler for JobKindArchiveExport.
func (s *ExportService) HandleArchiveJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(archiveJob)
	if !ok {
		return fmt.Errorf("archive job %s: unexpected payload %T", job.ID, job.Payload)
	}
	return s.store(ctx, payload)
}

func (s *ExportService) store(ctx context.Context, job archiveJob) error {
	location, err := s.archive.Save(ctx, job.Key, job.Payload, job.ContentType)
	s.metrics.RecordArchive(err == nil)
	if err != nil {
		return err
	}
	s.logger.Info("export archived", zap.String("location", location))
	return nil
}

// BuildSheets groups students into one sheet per batch, ordered by batch name, followed by
// the unassigned sheet. Students whose batch no longer resolves are treated as unassigned.
func BuildSheets(students []models.Student, batches []models.Batch) []export.Sheet {
	byID := make(map[string]models.Batch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	grouped := make(map[string][]map[string]string)
	var unassigned []map[string]string
	for _, st := range students {
		if st.BatchID != nil {
			if batch, ok := byID[*st.BatchID]; ok {
				grouped[batch.ID] = append(grouped[batch.ID], studentRow(st, &batch))
				continue
			}
		}
		unassigned = append(unassigned, studentRow(st, nil))
	}

	ordered := make([]models.Batch, 0, len(grouped))
	for id := range grouped {
		ordered = append(ordered, byID[id])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].BatchName != ordered[j].BatchName {
			return ordered[i].BatchName < ordered[j].BatchName
		}
		return ordered[i].ID < ordered[j].ID
	})

	sheets := make([]export.Sheet, 0, len(ordered)+1)
	for _, b := range ordered {
		name := b.BatchName
		if strings.TrimSpace(name) == "" {
			name = "Unnamed Batch"
		}
		sheets = append(sheets, export.Sheet{Name: name, Data: export.Dataset{Headers: exportHeaders, Rows: grouped[b.ID]}})
	}
	if len(unassigned) > 0 {
		sheets = append(sheets, export.Sheet{Name: UnassignedSheet, Data: export.Dataset{Headers: exportHeaders, Rows: unassigned}})
	}
	return sheets
}

func studentRow(st models.Student, batch *models.Batch) map[string]string {
	status := "UNPAID"
	if st.PaymentStatus {
		status = "PAID"
	}
	row := map[string]string{
		"Name":           st.Name,
		"Phone Number":   st.PhoneNumber,
		"Payment Status": status,
		"Payment Amount": strconv.FormatFloat(st.PaymentAmount, 'f', -1, 64),
		"Paid Months":    strings.Join(models.LabelStrings(st.PaidMonths), ", "),
		"Due Months":     strings.Join(models.LabelStrings(st.DueMonths), ", "),
	}
	if batch != nil {
		row["Class"] = batch.Class
		row["Subject"] = batch.Subject
		row["Study Days"] = strings.Join(batch.Days, ", ")
	}
	return row
}
