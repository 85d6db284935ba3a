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

type PartnerHandler struct {
	service service.PartnerService
	logger  *logger.Logger
}

func NewPartnerHandler(service service.PartnerService, logger *logger.Logger) *PartnerHandler {
	return &PartnerHandler{
		service: service,
		logger:  logger,
	}
}

// CreatePartner godoc
// @Summary Create a partner
// @Description Register a reseller partner identified by a four character code
// @Tags Partners
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param partner body dto.CreatePartnerRequest true "Partner"
// @Success 201 {object} dto.PartnerResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners [post]
func (h *PartnerHandler) CreatePartner(c *gin.Context) {
	var req dto.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePartner(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPartner godoc
// @Summary Get a partner
// @Tags Partners
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner ID"
// @Success 200 {object} dto.PartnerResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners/{id} [get]
func (h *PartnerHandler) GetPartner(c *gin.Context) {
	resp, err := h.service.GetPartner(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListPartners godoc
// @Summary List partners
// @Description List partners ordered by code, active ones only unless include_inactive is set
// @Tags Partners
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.PartnerFilter false "Filter"
// @Success 200 {object} dto.ListPartnersResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners [get]
func (h *PartnerHandler) ListPartners(c *gin.Context) {
	filter := types.NewPartnerFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPartners(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdatePartner godoc
// @Summary Update a partner
// @Tags Partners
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Partner ID"
// @Param partner body dto.UpdatePartnerRequest true "Fields to change"
// @Success 200 {object} dto.PartnerResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /partners/{id} [put]
func (h *PartnerHandler) UpdatePartner(c *gin.Context) {
	var req dto.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdatePartner(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
