package v1

import (
	"net/http"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/service"
	"github.com/gin-gonic/gin"
)

type OneTimeFeeHandler struct {
	service service.OneTimeFeeService
	logger  *logger.Logger
}

func NewOneTimeFeeHandler(service service.OneTimeFeeService, logger *logger.Logger) *OneTimeFeeHandler {
	return &OneTimeFeeHandler{
		service: service,
		logger:  logger,
	}
}

// CreateOneTimeFee godoc
// @Summary Record a one-time fee
// @Tags One-Time Fees
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param fee body dto.CreateOneTimeFeeRequest true "One-time fee"
// @Success 201 {object} dto.OneTimeFeeResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /one-time-fees [post]
func (h *OneTimeFeeHandler) CreateOneTimeFee(c *gin.Context) {
	var req dto.CreateOneTimeFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateOneTimeFee(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// CreateOneTimeFeesBulk godoc
// @Summary Record one-time fees in bulk
// @Description Rows reference partners and items by code. Nothing is created when any row is invalid; the error details list every bad row.
// @Tags One-Time Fees
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param fees body dto.CreateOneTimeFeesBulkRequest true "Rows"
// @Success 201 {object} dto.CreateOneTimeFeesBulkResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /one-time-fees/bulk [post]
func (h *OneTimeFeeHandler) CreateOneTimeFeesBulk(c *gin.Context) {
	var req dto.CreateOneTimeFeesBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateOneTimeFeesBulk(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetOneTimeFee godoc
// @Summary Get a one-time fee
// @Tags One-Time Fees
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "One-time fee ID"
// @Success 200 {object} dto.OneTimeFeeResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /one-time-fees/{id} [get]
func (h *OneTimeFeeHandler) GetOneTimeFee(c *gin.Context) {
	resp, err := h.service.GetOneTimeFee(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteOneTimeFee godoc
// @Summary Delete a one-time fee
// @Description Fees billed on a draft or final invoice cannot be deleted
// @Tags One-Time Fees
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "One-time fee ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /one-time-fees/{id} [delete]
func (h *OneTimeFeeHandler) DeleteOneTimeFee(c *gin.Context) {
	if err := h.service.DeleteOneTimeFee(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "one-time fee deleted successfully"})
}

// ListEligible godoc
// @Summary List the partner's unbilled one-time fees of a month
// @Tags One-Time Fees
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner ID"
// @Param month query string true "Billing month (YYYY-MM)"
// @Success 200 {object} dto.ListOneTimeFeesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners/{id}/one-time-fees/eligible [get]
func (h *OneTimeFeeHandler) ListEligible(c *gin.Context) {
	var req dto.EligibleOneTimeFeesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.ListEligible(c.Request.Context(), c.Param("id"), req.Month)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListOneTimeFees godoc
// @Summary List unbilled one-time fees
// @Description Fees not billed on a live invoice, newest billing date first
// @Tags One-Time Fees
// @Produce json
// @Security ApiKeyAuth
// @Param partner_id query string false "Partner ID"
// @Success 200 {object} dto.ListOneTimeFeesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /one-time-fees [get]
func (h *OneTimeFeeHandler) ListOneTimeFees(c *gin.Context) {
	var req dto.ListOneTimeFeesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListOneTimeFees(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateOneTimeFee godoc
// @Summary Update an unbilled one-time fee
// @Tags One-Time Fees
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "One-time fee ID"
// @Param fee body dto.UpdateOneTimeFeeRequest true "Fields to change"
// @Success 200 {object} dto.OneTimeFeeResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /one-time-fees/{id} [put]
func (h *OneTimeFeeHandler) UpdateOneTimeFee(c *gin.Context) {
	var req dto.UpdateOneTimeFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateOneTimeFee(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
