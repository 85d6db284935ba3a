package dto

import (
	"context"
	"strings"

	"github.com/flexprice/partnerbilling/internal/domain/billingitem"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/flexprice/partnerbilling/internal/validator"
)

type CreateBillingItemRequest struct {
	ItemCode    string            `json:"item_code" validate:"required,max=50"`
	ItemName    string            `json:"item_name" validate:"required,max=255"`
	Description string            `json:"description" validate:"omitempty,max=1000"`
	BillingType types.BillingKind `json:"billing_type" validate:"required"`
}

// UpdateBillingItemRequest changes the provided fields. The item code is fixed.
type UpdateBillingItemRequest struct {
	ItemName    *string            `json:"item_name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string            `json:"description,omitempty" validate:"omitempty,max=1000"`
	BillingType *types.BillingKind `json:"billing_type,omitempty"`
	IsActive    *bool              `json:"is_active,omitempty"`
}

func (r *UpdateBillingItemRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingType != nil {
		return r.BillingType.Validate()
	}
	return nil
}

// Apply copies the provided fields onto item
func (r *UpdateBillingItemRequest) Apply(item *billingitem.BillingItem) {
	if r.ItemName != nil {
		item.Name = strings.TrimSpace(*r.ItemName)
	}
	if r.Description != nil {
		item.Description = *r.Description
	}
	if r.BillingType != nil {
		item.Kind = *r.BillingType
	}
	if r.IsActive != nil {
		item.IsActive = *r.IsActive
	}
}

type BillingItemResponse struct {
	*billingitem.BillingItem
}

type ListBillingItemsResponse = types.ListResponse[*BillingItemResponse]

func (r *CreateBillingItemRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillingType.Validate()
}

func (r *CreateBillingItemRequest) ToBillingItem(ctx context.Context) *billingitem.BillingItem {
	return &billingitem.BillingItem{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_ITEM),
		ItemCode:    strings.TrimSpace(r.ItemCode),
		Name:        strings.TrimSpace(r.ItemName),
		Description: r.Description,
		Kind:        r.BillingType,
		IsActive:    true,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}
