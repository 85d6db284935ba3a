package v1

import (
	"io"
	"net/http"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/service"
	"github.com/gin-gonic/gin"
)

// maxUsageFileSize caps CSV uploads at 10 MiB
const maxUsageFileSize = 10 << 20

type UsageHandler struct {
	service service.UsageService
	logger  *logger.Logger
}

func NewUsageHandler(service service.UsageService, logger *logger.Logger) *UsageHandler {
	return &UsageHandler{
		service: service,
		logger:  logger,
	}
}

// ImportUsage godoc
// @Summary Import monthly usage rows
// @Description Replace the usage of the month with the given client rows. Rows of the same client are summed.
// @Tags Usage
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param import body dto.ImportUsageRequest true "Usage rows"
// @Success 200 {object} dto.ImportUsageResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /usage/import [post]
func (h *UsageHandler) ImportUsage(c *gin.Context) {
	var req dto.ImportUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ImportUsage(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ImportUsageCSV godoc
// @Summary Import monthly usage from a CSV file
// @Description Upload the payroll usage export. The month form value must match the month column of every row.
// @Tags Usage
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param month formData string true "Usage month (YYYY-MM)"
// @Param file formData file true "CSV file"
// @Success 200 {object} dto.ImportUsageResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /usage/import/csv [post]
func (h *UsageHandler) ImportUsageCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("A CSV file is required in the file field").
			Mark(ierr.ErrValidation))
		return
	}

	if fileHeader.Size > maxUsageFileSize {
		c.Error(ierr.NewErrorf("file too large: %d bytes", fileHeader.Size).
			WithHint("Usage files must be smaller than 10 MB").
			Mark(ierr.ErrValidation))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read the uploaded file").
			Mark(ierr.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUsageFileSize))
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read the uploaded file").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ImportUsageCSV(c.Request.Context(), c.PostForm("month"), fileHeader.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMonths godoc
// @Summary List imported usage months
// @Tags Usage
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.ListUsageMonthsResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /usage/months [get]
func (h *UsageHandler) ListMonths(c *gin.Context) {
	resp, err := h.service.ListMonths(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetMonth godoc
// @Summary Get the usage of a month
// @Tags Usage
// @Produce json
// @Security ApiKeyAuth
// @Param month path string true "Usage month (YYYY-MM)"
// @Success 200 {object} dto.UsageResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /usage/{month} [get]
func (h *UsageHandler) GetMonth(c *gin.Context) {
	resp, err := h.service.GetMonth(c.Request.Context(), c.Param("month"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPartnerUsage godoc
// @Summary Get the usage of a partner's clients for a month
// @Tags Usage
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner ID"
// @Param month path string true "Usage month (YYYY-MM)"
// @Success 200 {object} dto.UsageResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners/{id}/usage/{month} [get]
func (h *UsageHandler) GetPartnerUsage(c *gin.Context) {
	resp, err := h.service.GetPartnerUsage(c.Request.Context(), c.Param("id"), c.Param("month"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
