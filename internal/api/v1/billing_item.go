package v1

import (
	"net/http"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/service"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/gin-gonic/gin"
)

type BillingItemHandler struct {
	service service.BillingItemService
	logger  *logger.Logger
}

func NewBillingItemHandler(service service.BillingItemService, logger *logger.Logger) *BillingItemHandler {
	return &BillingItemHandler{
		service: service,
		logger:  logger,
	}
}

// CreateBillingItem godoc
// @Summary Create a billing item
// @Description Add a chargeable item to the catalogue
// @Tags Billing Items
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param item body dto.CreateBillingItemRequest true "Billing item"
// @Success 201 {object} dto.BillingItemResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing-items [post]
func (h *BillingItemHandler) CreateBillingItem(c *gin.Context) {
	var req dto.CreateBillingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateBillingItem(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListBillingItems godoc
// @Summary List billing items
// @Tags Billing Items
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.BillingItemFilter false "Filter"
// @Success 200 {object} dto.ListBillingItemsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing-items [get]
func (h *BillingItemHandler) ListBillingItems(c *gin.Context) {
	var filter types.BillingItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListBillingItems(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetBillingItem godoc
// @Summary Get a billing item
// @Tags Billing Items
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Billing item ID"
// @Success 200 {object} dto.BillingItemResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing-items/{id} [get]
func (h *BillingItemHandler) GetBillingItem(c *gin.Context) {
	resp, err := h.service.GetBillingItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateBillingItem godoc
// @Summary Update a billing item
// @Description The billing type can only change while no billing line or fee uses the item
// @Tags Billing Items
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Billing item ID"
// @Param item body dto.UpdateBillingItemRequest true "Fields to change"
// @Success 200 {object} dto.BillingItemResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing-items/{id} [put]
func (h *BillingItemHandler) UpdateBillingItem(c *gin.Context) {
	var req dto.UpdateBillingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateBillingItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteBillingItem godoc
// @Summary Delete a billing item
// @Tags Billing Items
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Billing item ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing-items/{id} [delete]
func (h *BillingItemHandler) DeleteBillingItem(c *gin.Context) {
	if err := h.service.DeleteBillingItem(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "billing item deleted successfully"})
}
