package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type guardianRepository interface {
	Upsert(ctx context.Context, access *models.GuardianAccess) error
	ListByPhone(ctx context.Context, phone string) ([]models.GuardianAccess, error)
}

type guardianStudentSource interface {
	ListByPhone(ctx context.Context, ownerID, phone string) ([]models.Student, error)
}

type guardianTokenIssuer interface {
	IssueGuardianToken(ownerID, phone string) (string, time.Time, error)
}

// GrantGuardianRequest gives a parent portal access.
type GrantGuardianRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,len=11,numeric"`
	Passkey     string `json:"passkey" validate:"required,min=4,max=72"`
}

// GuardianService runs the read-only guardian portal.
type GuardianService struct {
	repo      guardianRepository
	students  guardianStudentSource
	tokens    guardianTokenIssuer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGuardianService constructs a GuardianService.
func NewGuardianService(repo guardianRepository, students guardianStudentSource, tokens guardianTokenIssuer, validate *validator.Validate, logger *zap.Logger) *GuardianService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardianService{repo: repo, students: students, tokens: tokens, validator: validate, logger: logger}
}

// Grant creates or replaces the passkey for a phone number under ownerID. A passkey
// already used for the same phone by another owner is rejected so logins stay unambiguous.
func (s *GuardianService) Grant(ctx context.Context, ownerID string, req GrantGuardianRequest) (*models.GuardianAccess, error) {
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid guardian payload")
	}

	existing, err := s.repo.ListByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, storeError(err, "guardian not found", "failed to load guardian access")
	}
	for _, access := range existing {
		if access.OwnerID == ownerID {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(access.PasskeyHash), []byte(req.Passkey)) == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "passkey already in use for this phone number")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Passkey), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash passkey")
	}
	access := &models.GuardianAccess{OwnerID: ownerID, PhoneNumber: req.PhoneNumber, PasskeyHash: string(hash)}
	if err := s.repo.Upsert(ctx, access); err != nil {
		return nil, storeError(err, "guardian not found", "failed to save guardian access")
	}
	s.logger.Info("guardian access granted", zap.String("owner_id", ownerID), zap.String("phone", access.PhoneNumber))
	return access, nil
}

// Login checks the passkey against every owner that granted this phone and issues a guardian token.
func (s *GuardianService) Login(ctx context.Context, req models.GuardianLoginRequest) (*models.GuardianLoginResponse, error) {
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	candidates, err := s.repo.ListByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, storeError(err, "guardian not found", "failed to load guardian access")
	}
	for _, access := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(access.PasskeyHash), []byte(req.Passkey)) != nil {
			continue
		}
		token, expiresAt, err := s.tokens.IssueGuardianToken(access.OwnerID, access.PhoneNumber)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to create guardian token")
		}
		return &models.GuardianLoginResponse{Token: token, ExpiresAt: expiresAt}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid phone number or passkey")
}

// Students lists the children registered under the guardian's phone.
func (s *GuardianService) Students(ctx context.Context, claims *models.JWTClaims) ([]models.Student, error) {
	if claims == nil || claims.Role != models.RoleGuardian {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "guardian session required")
	}
	students, err := s.students.ListByPhone(ctx, claims.OwnerID, claims.PhoneNumber)
	if err != nil {
		return nil, storeError(err, "students not found", "failed to list students")
	}
	return students, nil
}
