package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/service"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

type resultsService interface {
	Submit(ctx context.Context, ownerID string, entries []service.ResultEntry) ([]service.ResultOutcome, error)
}

// ResultsHandler accepts bulk marks submissions.
type ResultsHandler struct {
	results resultsService
}

// NewResultsHandler constructs a ResultsHandler.
func NewResultsHandler(results resultsService) *ResultsHandler {
	return &ResultsHandler{results: results}
}

// Submit godoc
// @Summary Append marks and notify guardians by SMS
// @Tags Results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body []service.ResultEntry true "Result entries"
// @Success 200 {object} response.Envelope
// @Router /results [post]
func (h *ResultsHandler) Submit(c *gin.Context) {
	owner, err := ownerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var entries []service.ResultEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	outcomes, err := h.results.Submit(c.Request.Context(), owner, entries)
	if err != nil {
		response.Error(c, err)
		return
	}
	sent := 0
	for _, o := range outcomes {
		if o.Success {
			sent++
		}
	}
	response.JSON(c, http.StatusOK, outcomes, map[string]interface{}{"processed": len(outcomes), "sent": sent})
}
