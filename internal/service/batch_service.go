package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

type batchRepository interface {
	List(ctx context.Context, ownerID string) ([]models.Batch, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Batch, error)
	Create(ctx context.Context, batch *models.Batch) error
}

// CreateBatchRequest is the payload for opening a batch.
type CreateBatchRequest struct {
	BatchName     string   `json:"batch_name" validate:"required,max=120"`
	PaymentAmount float64  `json:"payment_amount" validate:"gte=0"`
	Class         string   `json:"class" validate:"max=60"`
	Subject       string   `json:"subject" validate:"max=120"`
	Days          []string `json:"days" validate:"omitempty,dive,oneof=Saturday Sunday Monday Tuesday Wednesday Thursday Friday"`
}

// BatchService manages batches and their cached list.
type BatchService struct {
	repo      batchRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(repo batchRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the owner's batches, served from cache when possible.
func (s *BatchService) List(ctx context.Context, ownerID string) ([]models.Batch, bool, error) {
	var cached []models.Batch
	if s.cache.Get(ctx, BatchesKey(ownerID), &cached) {
		return cached, true, nil
	}
	batches, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, false, storeError(err, "batches not found", "failed to list batches")
	}
	s.cache.Set(ctx, BatchesKey(ownerID), batches, s.cache.ListTTL())
	return batches, false, nil
}

// Create opens a batch.
func (s *BatchService) Create(ctx context.Context, ownerID string, req CreateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid batch payload")
	}
	batch := &models.Batch{
		OwnerID:       ownerID,
		BatchName:     strings.TrimSpace(req.BatchName),
		PaymentAmount: req.PaymentAmount,
		Class:         strings.TrimSpace(req.Class),
		Subject:       strings.TrimSpace(req.Subject),
		Days:          req.Days,
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, storeError(err, "batch not found", "failed to create batch")
	}
	s.cache.InvalidateOwner(ctx, ownerID)
	return batch, nil
}
