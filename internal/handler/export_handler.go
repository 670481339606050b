package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/service"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/export"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, ownerID string, format export.Format) (*service.ExportResult, error)
}

// ExportHandler streams student exports.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Download the student export and close the billing period
// @Tags Students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "xlsx (default), csv or pdf"
// @Success 200 {file} file
// @Header 200 {string} X-Cache "HIT or MISS"
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	owner, err := ownerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "format must be xlsx, csv or pdf"))
		return
	}
	result, err := h.exports.Export(c.Request.Context(), owner, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.CacheHit)
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}
