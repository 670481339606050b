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

type batchService interface {
	List(ctx context.Context, ownerID string) ([]models.Batch, bool, error)
	Create(ctx context.Context, ownerID string, req service.CreateBatchRequest) (*models.Batch, error)
}

// BatchHandler exposes batch endpoints.
type BatchHandler struct {
	batches batchService
}

// NewBatchHandler constructs a BatchHandler.
func NewBatchHandler(batches batchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// List godoc
// @Summary List batches
// @Tags Batches
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	owner, err := ownerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	batches, hit, err := h.batches.List(c.Request.Context(), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, batches, responseMeta(c, map[string]interface{}{"total": len(batches)}))
}

// Create godoc
// @Summary Open a batch
// @Tags Batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateBatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Router /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	owner, err := ownerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	batch, err := h.batches.Create(c.Request.Context(), owner, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}
