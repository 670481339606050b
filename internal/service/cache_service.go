package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/pkg/config"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/export"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// StudentsKey caches an owner's full student list.
func StudentsKey(ownerID string) string { return "students:" + ownerID }

// BatchesKey caches an owner's batch list.
func BatchesKey(ownerID string) string { return "batches:" + ownerID }

// ExportKey caches a rendered export blob.
func ExportKey(ownerID string, format export.Format) string {
	return "students_export:" + ownerID + ":" + string(format)
}

// AccountKey caches the owner's profile.
func AccountKey(ownerID string) string { return "user:" + ownerID }

// OwnerKeys lists every key derived from ownerID. Mutations of an owner's students
// or batches delete all of them.
func OwnerKeys(ownerID string) []string {
	return []string{
		StudentsKey(ownerID),
		BatchesKey(ownerID),
		ExportKey(ownerID, export.FormatXLSX),
		ExportKey(ownerID, export.FormatCSV),
		ExportKey(ownerID, export.FormatPDF),
		AccountKey(ownerID),
	}
}

// CacheService is a best-effort read-through cache: backend failures are logged,
// metered and reported to callers as misses.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     config.CacheConfig
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, cfg config.CacheConfig, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = 24 * time.Hour
	}
	if cfg.ExportTTL <= 0 {
		cfg.ExportTTL = 10 * time.Minute
	}
	if cfg.AccountTTL <= 0 {
		cfg.AccountTTL = 24 * time.Hour
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: cfg, logger: logger, enabled: cfg.Enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// ListTTL is the lifetime of list snapshots.
func (s *CacheService) ListTTL() time.Duration {
	if s == nil {
		return 0
	}
	return s.ttl.ListTTL
}

// ExportTTL is the lifetime of export blobs.
func (s *CacheService) ExportTTL() time.Duration {
	if s == nil {
		return 0
	}
	return s.ttl.ExportTTL
}

// AccountTTL is the lifetime of account profiles.
func (s *CacheService) AccountTTL() time.Duration {
	if s == nil {
		return 0
	}
	return s.ttl.AccountTTL
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(key, err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.metrics.RecordCacheError("get")
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.metrics.RecordCacheError("set")
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateOwner deletes every key derived from ownerID.
func (s *CacheService) InvalidateOwner(ctx context.Context, ownerID string) {
	if !s.Enabled() || ownerID == "" {
		return
	}
	keys := OwnerKeys(ownerID)
	if err := s.repo.Delete(ctx, keys...); err != nil {
		s.metrics.RecordCacheError("delete")
		s.logger.Warn("cache invalidate failed", zap.String("owner_id", ownerID), zap.Strings("keys", keys), zap.Error(err))
	}
}
