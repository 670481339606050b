package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/service"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

type accountService interface {
	Get(ctx context.Context, ownerID string) (*models.Account, bool, error)
}

type guardianService interface {
	Grant(ctx context.Context, ownerID string, req service.GrantGuardianRequest) (*models.GuardianAccess, error)
	Login(ctx context.Context, req models.GuardianLoginRequest) (*models.GuardianLoginResponse, error)
	Students(ctx context.Context, claims *models.JWTClaims) ([]models.Student, error)
}

// AuthHandler serves the owner profile and the guardian portal.
type AuthHandler struct {
	accounts  accountService
	guardians guardianService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(accounts accountService, guardians guardianService) *AuthHandler {
	return &AuthHandler{accounts: accounts, guardians: guardians}
}

// Me godoc
// @Summary Current owner profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	owner, err := ownerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	account, hit, err := h.accounts.Get(c.Request.Context(), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, account, responseMeta(c, nil))
}

// GrantGuardian godoc
// @Summary Give a guardian portal access
// @Tags Guardians
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.GrantGuardianRequest true "Phone number and passkey"
// @Success 201 {object} response.Envelope
// @Router /guardians [post]
func (h *AuthHandler) GrantGuardian(c *gin.Context) {
	owner, err := ownerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.GrantGuardianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	access, err := h.guardians.Grant(c.Request.Context(), owner, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, access)
}

// GuardianLogin godoc
// @Summary Guardian portal sign-in
// @Tags Guardians
// @Accept json
// @Produce json
// @Param payload body models.GuardianLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /guardian/login [post]
func (h *AuthHandler) GuardianLogin(c *gin.Context) {
	var req models.GuardianLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	resp, err := h.guardians.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// GuardianStudents godoc
// @Summary Children registered under the guardian's phone
// @Tags Guardians
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /guardian/students [get]
func (h *AuthHandler) GuardianStudents(c *gin.Context) {
	students, err := h.guardians.Students(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}
