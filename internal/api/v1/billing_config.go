package v1

import (
	"net/http"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/service"
	"github.com/gin-gonic/gin"
)

// BillingConfigHandler serves partner billing lines, their rate tiers and
// client level recurring charges
type BillingConfigHandler struct {
	service service.BillingConfigService
	logger  *logger.Logger
}

func NewBillingConfigHandler(service service.BillingConfigService, logger *logger.Logger) *BillingConfigHandler {
	return &BillingConfigHandler{
		service: service,
		logger:  logger,
	}
}

// CreatePartnerBilling godoc
// @Summary Add a billing line to a partner
// @Description Base, per employee, monthly minimum or recurring line. Tiers are only accepted on per employee lines.
// @Tags Billing Config
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner ID"
// @Param line body dto.CreatePartnerBillingRequest true "Billing line"
// @Success 201 {object} dto.PartnerBillingResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners/{id}/billings [post]
func (h *BillingConfigHandler) CreatePartnerBilling(c *gin.Context) {
	var req dto.CreatePartnerBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePartnerBilling(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListPartnerBillings godoc
// @Summary List the billing lines of a partner
// @Tags Billing Config
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner ID"
// @Success 200 {object} dto.ListPartnerBillingsResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners/{id}/billings [get]
func (h *BillingConfigHandler) ListPartnerBillings(c *gin.Context) {
	resp, err := h.service.ListPartnerBillings(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdatePartnerBilling godoc
// @Summary Update a billing line
// @Tags Billing Config
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner billing ID"
// @Param line body dto.UpdatePartnerBillingRequest true "Fields to change"
// @Success 200 {object} dto.PartnerBillingResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partner-billings/{id} [put]
func (h *BillingConfigHandler) UpdatePartnerBilling(c *gin.Context) {
	var req dto.UpdatePartnerBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdatePartnerBilling(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeletePartnerBilling godoc
// @Summary Delete a billing line
// @Tags Billing Config
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner billing ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partner-billings/{id} [delete]
func (h *BillingConfigHandler) DeletePartnerBilling(c *gin.Context) {
	if err := h.service.DeletePartnerBilling(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "partner billing deleted successfully"})
}

// ReplaceTiers godoc
// @Summary Replace the rate tiers of a per employee line
// @Description The whole tier set is validated and swapped in one transaction
// @Tags Billing Config
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner billing ID"
// @Param tiers body dto.ReplaceTiersRequest true "Tier set"
// @Success 200 {object} dto.ListRateTiersResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partner-billings/{id}/tiers [put]
func (h *BillingConfigHandler) ReplaceTiers(c *gin.Context) {
	var req dto.ReplaceTiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ReplaceTiers(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListTiers godoc
// @Summary List the rate tiers of a line
// @Tags Billing Config
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner billing ID"
// @Success 200 {object} dto.ListRateTiersResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partner-billings/{id}/tiers [get]
func (h *BillingConfigHandler) ListTiers(c *gin.Context) {
	resp, err := h.service.ListTiers(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateClientBilling godoc
// @Summary Add a recurring charge for one client
// @Tags Billing Config
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner ID"
// @Param charge body dto.CreateClientBillingRequest true "Client charge"
// @Success 201 {object} dto.ClientBillingResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners/{id}/client-billings [post]
func (h *BillingConfigHandler) CreateClientBilling(c *gin.Context) {
	var req dto.CreateClientBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateClientBilling(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListClientBillings godoc
// @Summary List the client level charges of a partner
// @Tags Billing Config
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner ID"
// @Success 200 {object} dto.ListClientBillingsResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners/{id}/client-billings [get]
func (h *BillingConfigHandler) ListClientBillings(c *gin.Context) {
	resp, err := h.service.ListClientBillings(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateClientBilling godoc
// @Summary Update a client level charge
// @Tags Billing Config
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Client billing ID"
// @Param charge body dto.UpdateClientBillingRequest true "Fields to change"
// @Success 200 {object} dto.ClientBillingResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /client-billings/{id} [put]
func (h *BillingConfigHandler) UpdateClientBilling(c *gin.Context) {
	var req dto.UpdateClientBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateClientBilling(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteClientBilling godoc
// @Summary Delete a client level charge
// @Tags Billing Config
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Client billing ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /client-billings/{id} [delete]
func (h *BillingConfigHandler) DeleteClientBilling(c *gin.Context) {
	if err := h.service.DeleteClientBilling(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "client billing deleted successfully"})
}
