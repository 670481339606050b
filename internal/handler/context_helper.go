package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/logger"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// ownerFromContext returns the tenant stored by the JWT middleware.
func ownerFromContext(c *gin.Context) (string, error) {
	owner := c.GetString(logger.OwnerKey)
	if owner == "" {
		if claims := claimsFromContext(c); claims != nil {
			owner = claims.TenantID()
		}
	}
	if owner == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "missing owner scope")
	}
	return owner, nil
}

func invalidBody(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "invalid request body")
}

// responseMeta merges extra into the metadata collected by middleware for this request.
func responseMeta(c *gin.Context, extra map[string]interface{}) map[string]interface{} {
	meta := map[string]interface{}{}
	for k, v := range middleware.ExtractMeta(c) {
		meta[k] = v
	}
	for k, v := range extra {
		meta[k] = v
	}
	return meta
}
