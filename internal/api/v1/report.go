package v1

import (
	"net/http"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service service.ReportService
	logger  *logger.Logger
}

func NewReportHandler(service service.ReportService, logger *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// RevenueByPartner godoc
// @Summary Revenue per partner
// @Description Totals of the final invoices of a month, per partner
// @Tags Reports
// @Produce json
// @Security ApiKeyAuth
// @Param month query string true "Invoice month (YYYY-MM)"
// @Success 200 {object} dto.RevenueReportResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /reports/revenue [get]
func (h *ReportHandler) RevenueByPartner(c *gin.Context) {
	var req dto.RevenueReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RevenueByPartner(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
