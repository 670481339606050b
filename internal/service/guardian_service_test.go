package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/repository/memory"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func newGuardianEnv(t *testing.T) (*testEnv, *GuardianService, *AuthService) {
	t.Helper()
	env := newTestEnv(t)
	auth := NewAuthService(AuthConfig{Secret: "test-secret", Issuer: "test", GuardianTokenTTL: time.Hour}, env.clock, zap.NewNop())
	guardians := NewGuardianService(memory.NewGuardianRepository(env.db), env.studentsDB, auth, nil, zap.NewNop())
	return env, guardians, auth
}

func TestGuardianLoginAndStudents(t *testing.T) {
	env, guardians, auth := newGuardianEnv(t)
	ctx := context.Background()
	child := env.admit(t, ownerA, "Child")
	env.admit(t, ownerB, "Other center child")

	_, err := guardians.Grant(ctx, ownerA, GrantGuardianRequest{PhoneNumber: "01712345678", Passkey: "1234"})
	require.NoError(t, err)
	_, err = guardians.Grant(ctx, ownerB, GrantGuardianRequest{PhoneNumber: "01712345678", Passkey: "9999"})
	require.NoError(t, err)

	resp, err := guardians.Login(ctx, models.GuardianLoginRequest{PhoneNumber: "01712345678", Passkey: "1234"})
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now().UTC().Add(time.Hour), resp.ExpiresAt)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuardian, claims.Role)
	assert.Equal(t, ownerA, claims.TenantID())

	students, err := guardians.Students(ctx, claims)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, child.ID, students[0].ID)
}

func TestGuardianLoginRejectsWrongPasskey(t *testing.T) {
	_, guardians, _ := newGuardianEnv(t)
	ctx := context.Background()
	_, err := guardians.Grant(ctx, ownerA, GrantGuardianRequest{PhoneNumber: "01712345678", Passkey: "1234"})
	require.NoError(t, err)

	_, err = guardians.Login(ctx, models.GuardianLoginRequest{PhoneNumber: "01712345678", Passkey: "4321"})
	assertAppError(t, err, appErrors.ErrUnauthorized)

	_, err = guardians.Login(ctx, models.GuardianLoginRequest{PhoneNumber: "0171", Passkey: "1234"})
	assertAppError(t, err, appErrors.ErrValidation)
}

func TestGuardianGrantConflictsAcrossOwners(t *testing.T) {
	_, guardians, _ := newGuardianEnv(t)
	ctx := context.Background()
	_, err := guardians.Grant(ctx, ownerA, GrantGuardianRequest{PhoneNumber: "01712345678", Passkey: "1234"})
	require.NoError(t, err)

	_, err = guardians.Grant(ctx, ownerA, GrantGuardianRequest{PhoneNumber: "01712345678", Passkey: "1234"})
	require.NoError(t, err, "an owner may reset its own passkey")

	_, err = guardians.Grant(ctx, ownerB, GrantGuardianRequest{PhoneNumber: "01712345678", Passkey: "1234"})
	assertAppError(t, err, appErrors.ErrConflict)
}

func TestGuardianStudentsRequiresGuardianRole(t *testing.T) {
	_, guardians, _ := newGuardianEnv(t)

	_, err := guardians.Students(context.Background(), &models.JWTClaims{UserID: ownerA, Role: models.RoleOwner})
	assertAppError(t, err, appErrors.ErrForbidden)
}

func TestValidateOwnerToken(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC))
	auth := NewAuthService(AuthConfig{Secret: "test-secret"}, clock, nil)

	sign := func(claims jwt.Claims, secret string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	exp := jwt.NewNumericDate(clock.Now().Add(time.Hour))

	claims, err := auth.ValidateToken(sign(&models.JWTClaims{UserID: ownerA, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, "test-secret"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, claims.Role)
	assert.Equal(t, ownerA, claims.TenantID())

	claims, err = auth.ValidateToken(sign(&models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: ownerB, ExpiresAt: exp}}, "test-secret"))
	require.NoError(t, err)
	assert.Equal(t, ownerB, claims.TenantID())

	_, err = auth.ValidateToken(sign(&models.JWTClaims{UserID: ownerA, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, "other-secret"))
	assertAppError(t, err, appErrors.ErrUnauthorized)

	_, err = auth.ValidateToken(sign(&models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, "test-secret"))
	assertAppError(t, err, appErrors.ErrUnauthorized)

	clock.Advance(2 * time.Hour)
	_, err = auth.ValidateToken(sign(&models.JWTClaims{UserID: ownerA, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, "test-secret"))
	assertAppError(t, err, appErrors.ErrUnauthorized)
}
