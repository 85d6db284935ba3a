package dto

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/partner"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/flexprice/partnerbilling/internal/validator"
)

type CreatePartnerRequest struct {
	PartnerCode         string     `json:"partner_code" validate:"required,len=4,alphanum"`
	PartnerName         string     `json:"partner_name" validate:"required,max=255"`
	ContactName         string     `json:"contact_name" validate:"omitempty,max=255"`
	ContactEmail        string     `json:"contact_email" validate:"omitempty,email"`
	PhoneNumber         string     `json:"phone_number" validate:"omitempty,max=50"`
	ContractStart       *time.Time `json:"contract_start,omitempty"`
	ContractTerm        int        `json:"contract_term" validate:"min=0"`
	AutoRenews          bool       `json:"auto_renews"`
	OverrideRenewalDate *time.Time `json:"override_renewal_date,omitempty"`
}

type UpdatePartnerRequest struct {
	PartnerName         *string    `json:"partner_name" validate:"omitempty,max=255"`
	ContactName         *string    `json:"contact_name" validate:"omitempty,max=255"`
	ContactEmail        *string    `json:"contact_email" validate:"omitempty,email"`
	PhoneNumber         *string    `json:"phone_number" validate:"omitempty,max=50"`
	ContractStart       *time.Time `json:"contract_start,omitempty"`
	ContractTerm        *int       `json:"contract_term" validate:"omitempty,min=0"`
	AutoRenews          *bool      `json:"auto_renews"`
	OverrideRenewalDate *time.Time `json:"override_renewal_date,omitempty"`
	IsActive            *bool      `json:"is_active"`
}

type PartnerResponse struct {
	*partner.Partner
	RenewalDate *time.Time `json:"renewal_date,omitempty"`
}

// ListPartnersResponse represents the response for listing partners
type ListPartnersResponse = types.ListResponse[*PartnerResponse]

func NewPartnerResponse(p *partner.Partner) *PartnerResponse {
	return &PartnerResponse{
		Partner:     p,
		RenewalDate: p.RenewalDate(),
	}
}

func (r *CreatePartnerRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreatePartnerRequest) ToPartner(ctx context.Context) *partner.Partner {
	return &partner.Partner{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PARTNER),
		PartnerCode:         partner.NormalizeCode(r.PartnerCode),
		Name:                r.PartnerName,
		ContactName:         r.ContactName,
		ContactEmail:        r.ContactEmail,
		PhoneNumber:         r.PhoneNumber,
		ContractStart:       r.ContractStart,
		ContractTermMonths:  r.ContractTerm,
		AutoRenews:          r.AutoRenews,
		OverrideRenewalDate: r.OverrideRenewalDate,
		IsActive:            true,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
}

func (r *UpdatePartnerRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Apply copies the provided fields onto p
func (r *UpdatePartnerRequest) Apply(p *partner.Partner) {
	if r.PartnerName != nil {
		p.Name = *r.PartnerName
	}
	if r.ContactName != nil {
		p.ContactName = *r.ContactName
	}
	if r.ContactEmail != nil {
		p.ContactEmail = *r.ContactEmail
	}
	if r.PhoneNumber != nil {
		p.PhoneNumber = *r.PhoneNumber
	}
	if r.ContractStart != nil {
		p.ContractStart = r.ContractStart
	}
	if r.ContractTerm != nil {
		p.ContractTermMonths = *r.ContractTerm
	}
	if r.AutoRenews != nil {
		p.AutoRenews = *r.AutoRenews
	}
	if r.OverrideRenewalDate != nil {
		p.OverrideRenewalDate = r.OverrideRenewalDate
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}
