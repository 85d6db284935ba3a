package dto

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/flexprice/partnerbilling/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateOneTimeFeeRequest struct {
	PartnerID     string          `json:"partner_id" validate:"required"`
	ClientName    string          `json:"client_name" validate:"required,max=255"`
	BillingItemID string          `json:"billing_item_id" validate:"required"`
	Description   string          `json:"description" validate:"omitempty,max=1000"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	BillingDate   time.Time       `json:"billing_date" validate:"required"`
}

func (r *CreateOneTimeFeeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateOneTimeFeeRequest) ToOneTimeFee(ctx context.Context) *onetimefee.OneTimeFee {
	return &onetimefee.OneTimeFee{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ONE_TIME_FEE),
		PartnerID:     r.PartnerID,
		ClientName:    strings.TrimSpace(r.ClientName),
		BillingItemID: r.BillingItemID,
		Description:   r.Description,
		Amount:        r.Amount.Round(2),
		BillingDate:   r.BillingDate,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// BulkOneTimeFeeRow references partner and item by their codes, as in spreadsheet uploads
type BulkOneTimeFeeRow struct {
	PartnerCode string `json:"partner_code"`
	ClientName  string `json:"client_name"`
	ItemCode    string `json:"item_code"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	BillingDate string `json:"billing_date"`
}

type CreateOneTimeFeesBulkRequest struct {
	Fees []BulkOneTimeFeeRow `json:"fees" validate:"required,min=1"`
}

func (r *CreateOneTimeFeesBulkRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// UpdateOneTimeFeeRequest changes the provided fields of an unbilled fee
type UpdateOneTimeFeeRequest struct {
	PartnerID     *string          `json:"partner_id,omitempty" validate:"omitempty,min=1"`
	ClientName    *string          `json:"client_name,omitempty" validate:"omitempty,min=1,max=255"`
	BillingItemID *string          `json:"billing_item_id,omitempty" validate:"omitempty,min=1"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Amount        *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`
	BillingDate   *time.Time       `json:"billing_date,omitempty"`
}

func (r *UpdateOneTimeFeeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *UpdateOneTimeFeeRequest) Apply(fee *onetimefee.OneTimeFee) {
	if r.PartnerID != nil {
		fee.PartnerID = *r.PartnerID
	}
	if r.ClientName != nil {
		fee.ClientName = strings.TrimSpace(*r.ClientName)
	}
	if r.BillingItemID != nil {
		fee.BillingItemID = *r.BillingItemID
	}
	if r.Description != nil {
		fee.Description = *r.Description
	}
	if r.Amount != nil {
		fee.Amount = r.Amount.Round(2)
	}
	if r.BillingDate != nil {
		fee.BillingDate = *r.BillingDate
	}
}

// ListOneTimeFeesRequest lists unbilled fees, optionally for one partner
type ListOneTimeFeesRequest struct {
	PartnerID string `form:"partner_id" json:"partner_id,omitempty"`
}

type OneTimeFeeResponse struct {
	*onetimefee.OneTimeFee
}

type CreateOneTimeFeesBulkResponse struct {
	Created int                   `json:"created"`
	Fees    []*OneTimeFeeResponse `json:"fees"`
}

type EligibleOneTimeFeesRequest struct {
	Month string `form:"month" json:"month" validate:"required,yearmonth"`
}

func (r *EligibleOneTimeFeesRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ListOneTimeFeesResponse struct {
	Items []*OneTimeFeeResponse `json:"items"`
}
