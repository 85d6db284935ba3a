package dto

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/flexprice/partnerbilling/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type RateTierRequest struct {
	TierMin         int             `json:"tier_min" validate:"min=0"`
	TierMax         int             `json:"tier_max" validate:"min=1"`
	PerEmployeeRate decimal.Decimal `json:"per_employee_rate" swaggertype:"string"`
}

func (r RateTierRequest) ToRateTier() *billingconfig.RateTier {
	return &billingconfig.RateTier{
		TierMin:         r.TierMin,
		TierMax:         r.TierMax,
		PerEmployeeRate: r.PerEmployeeRate,
	}
}

func toRateTiers(tiers []RateTierRequest) []*billingconfig.RateTier {
	return lo.Map(tiers, func(t RateTierRequest, _ int) *billingconfig.RateTier {
		return t.ToRateTier()
	})
}

type CreatePartnerBillingRequest struct {
	BillingItemID    string                 `json:"billing_item_id" validate:"required"`
	Amount           decimal.Decimal        `json:"amount" swaggertype:"string"`
	BillingFrequency types.BillingFrequency `json:"billing_frequency" validate:"required"`
	StartDate        time.Time              `json:"start_date" validate:"required"`
	EndDate          *time.Time             `json:"end_date,omitempty"`
	IsActive         *bool                  `json:"is_active,omitempty"`
	Description      string                 `json:"description" validate:"omitempty,max=1000"`
	Tiers            []RateTierRequest      `json:"tiers,omitempty" validate:"omitempty,dive"`
}

func (r *CreatePartnerBillingRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreatePartnerBillingRequest) ToPartnerBilling(ctx context.Context, partnerID string) *billingconfig.PartnerBilling {
	return &billingconfig.PartnerBilling{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PARTNER_BILLING),
		PartnerID:     partnerID,
		BillingItemID: r.BillingItemID,
		Amount:        r.Amount,
		Frequency:     r.BillingFrequency,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		IsActive:      lo.FromPtrOr(r.IsActive, true),
		Description:   r.Description,
		Tiers:         toRateTiers(r.Tiers),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// UpdatePartnerBillingRequest changes the provided fields. Tiers, when present,
// replace the whole tier set of the line.
type UpdatePartnerBillingRequest struct {
	Amount           *decimal.Decimal        `json:"amount,omitempty" swaggertype:"string"`
	BillingFrequency *types.BillingFrequency `json:"billing_frequency,omitempty"`
	StartDate        *time.Time              `json:"start_date,omitempty"`
	EndDate          *time.Time              `json:"end_date,omitempty"`
	ClearEndDate     bool                    `json:"clear_end_date,omitempty"`
	IsActive         *bool                   `json:"is_active,omitempty"`
	Description      *string                 `json:"description,omitempty" validate:"omitempty,max=1000"`
	Tiers            *[]RateTierRequest      `json:"tiers,omitempty"`
}

func (r *UpdatePartnerBillingRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Apply copies the provided fields onto line, tiers included
func (r *UpdatePartnerBillingRequest) Apply(line *billingconfig.PartnerBilling) {
	if r.Amount != nil {
		line.Amount = *r.Amount
	}
	if r.BillingFrequency != nil {
		line.Frequency = *r.BillingFrequency
	}
	if r.StartDate != nil {
		line.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		line.EndDate = r.EndDate
	}
	if r.ClearEndDate {
		line.EndDate = nil
	}
	if r.IsActive != nil {
		line.IsActive = *r.IsActive
	}
	if r.Description != nil {
		line.Description = *r.Description
	}
	if r.Tiers != nil {
		line.Tiers = toRateTiers(*r.Tiers)
	}
}

type ReplaceTiersRequest struct {
	Tiers []RateTierRequest `json:"tiers" validate:"dive"`
}

func (r *ReplaceTiersRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *ReplaceTiersRequest) ToRateTiers() []*billingconfig.RateTier {
	return toRateTiers(r.Tiers)
}

type PartnerBillingResponse struct {
	*billingconfig.PartnerBilling
}

type ListPartnerBillingsResponse struct {
	Items []*PartnerBillingResponse `json:"items"`
}

type ListRateTiersResponse struct {
	Items []*billingconfig.RateTier `json:"items"`
}

type CreateClientBillingRequest struct {
	ClientCode        string           `json:"client_code" validate:"required,max=50"`
	ClientName        string           `json:"client_name" validate:"required,max=255"`
	BillingItemID     string           `json:"billing_item_id" validate:"required"`
	BaseAmount        decimal.Decimal  `json:"base_amount" swaggertype:"string"`
	PerEmployeeAmount *decimal.Decimal `json:"per_employee_amount,omitempty" swaggertype:"string"`
	BillingDate       time.Time        `json:"billing_date" validate:"required"`
	EndDate           *time.Time       `json:"end_date,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

func (r *CreateClientBillingRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateClientBillingRequest) ToClientBilling(ctx context.Context, partnerID string) *billingconfig.ClientBilling {
	cb := &billingconfig.ClientBilling{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CLIENT_BILLING),
		PartnerID:     partnerID,
		ClientCode:    strings.ToUpper(strings.TrimSpace(r.ClientCode)),
		ClientName:    strings.TrimSpace(r.ClientName),
		BillingItemID: r.BillingItemID,
		BaseAmount:    r.BaseAmount,
		BillingDate:   r.BillingDate,
		EndDate:       r.EndDate,
		IsActive:      lo.FromPtrOr(r.IsActive, true),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if r.PerEmployeeAmount != nil {
		cb.PerEmployeeAmount = decimal.NewNullDecimal(*r.PerEmployeeAmount)
	}
	return cb
}

// UpdateClientBillingRequest changes the provided fields of a client charge
type UpdateClientBillingRequest struct {
	ClientCode             *string          `json:"client_code,omitempty" validate:"omitempty,min=1,max=50"`
	ClientName             *string          `json:"client_name,omitempty" validate:"omitempty,min=1,max=255"`
	BillingItemID          *string          `json:"billing_item_id,omitempty" validate:"omitempty,min=1"`
	BaseAmount             *decimal.Decimal `json:"base_amount,omitempty" swaggertype:"string"`
	PerEmployeeAmount      *decimal.Decimal `json:"per_employee_amount,omitempty" swaggertype:"string"`
	ClearPerEmployeeAmount bool             `json:"clear_per_employee_amount,omitempty"`
	BillingDate            *time.Time       `json:"billing_date,omitempty"`
	EndDate                *time.Time       `json:"end_date,omitempty"`
	ClearEndDate           bool             `json:"clear_end_date,omitempty"`
	IsActive               *bool            `json:"is_active,omitempty"`
}

func (r *UpdateClientBillingRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Apply copies the provided fields onto cb. A new billing item is only
// referenced by id; the caller refreshes the item code and name.
func (r *UpdateClientBillingRequest) Apply(cb *billingconfig.ClientBilling) {
	if r.ClientCode != nil {
		cb.ClientCode = strings.ToUpper(strings.TrimSpace(*r.ClientCode))
	}
	if r.ClientName != nil {
		cb.ClientName = strings.TrimSpace(*r.ClientName)
	}
	if r.BillingItemID != nil {
		cb.BillingItemID = *r.BillingItemID
	}
	if r.BaseAmount != nil {
		cb.BaseAmount = *r.BaseAmount
	}
	if r.PerEmployeeAmount != nil {
		cb.PerEmployeeAmount = decimal.NewNullDecimal(*r.PerEmployeeAmount)
	}
	if r.ClearPerEmployeeAmount {
		cb.PerEmployeeAmount = decimal.NullDecimal{}
	}
	if r.BillingDate != nil {
		cb.BillingDate = *r.BillingDate
	}
	if r.EndDate != nil {
		cb.EndDate = r.EndDate
	}
	if r.ClearEndDate {
		cb.EndDate = nil
	}
	if r.IsActive != nil {
		cb.IsActive = *r.IsActive
	}
}

type ClientBillingResponse struct {
	*billingconfig.ClientBilling
}

type ListClientBillingsResponse struct {
	Items []*ClientBillingResponse `json:"items"`
}
