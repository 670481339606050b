package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

type accountRepository interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// AccountService serves the owner's profile through the cache.
type AccountService struct {
	repo   accountRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(repo accountRepository, cache *CacheService, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{repo: repo, cache: cache, logger: logger}
}

// Get returns the owner's account and whether it came from cache.
func (s *AccountService) Get(ctx context.Context, ownerID string) (*models.Account, bool, error) {
	var cached models.Account
	if s.cache.Get(ctx, AccountKey(ownerID), &cached) {
		return &cached, true, nil
	}
	account, err := s.repo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, false, storeError(err, "account not found", "failed to load account")
	}
	s.cache.Set(ctx, AccountKey(ownerID), account, s.cache.AccountTTL())
	return account, false, nil
}
