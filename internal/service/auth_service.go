package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

// AuthConfig defines token verification and guardian token issuance settings.
type AuthConfig struct {
	Secret           string
	Issuer           string
	GuardianTokenTTL time.Duration
}

// AuthService verifies owner tokens minted by the dashboard and issues guardian portal tokens.
type AuthService struct {
	config AuthConfig
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(config AuthConfig, clock clockwork.Clock, logger *zap.Logger) *AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.GuardianTokenTTL <= 0 {
		config.GuardianTokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{config: config, clock: clock, logger: logger}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Role == "" {
		claims.Role = models.RoleOwner
	}
	if claims.TenantID() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no owner")
	}
	if claims.Role == models.RoleGuardian && claims.PhoneNumber == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "guardian token carries no phone number")
	}
	return claims, nil
}

// IssueGuardianToken signs a portal token scoped to ownerID and phone.
func (s *AuthService) IssueGuardianToken(ownerID, phone string) (string, time.Time, error) {
	issuedAt := s.clock.Now().UTC()
	expiresAt := issuedAt.Add(s.config.GuardianTokenTTL)
	claims := &models.JWTClaims{
		Role:        models.RoleGuardian,
		OwnerID:     ownerID,
		PhoneNumber: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   phone,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
