package service

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/domain/billingitem"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
)

type BillingItemService interface {
	CreateBillingItem(ctx context.Context, req dto.CreateBillingItemRequest) (*dto.BillingItemResponse, error)
	GetBillingItem(ctx context.Context, id string) (*dto.BillingItemResponse, error)
	ListBillingItems(ctx context.Context, filter *types.BillingItemFilter) (*dto.ListBillingItemsResponse, error)
	// UpdateBillingItem refuses to change the billing type of an item in use
	UpdateBillingItem(ctx context.Context, id string, req dto.UpdateBillingItemRequest) (*dto.BillingItemResponse, error)
	// DeleteBillingItem refuses to remove an item still referenced by billing lines or fees
	DeleteBillingItem(ctx context.Context, id string) error
}

type billingItemService struct {
	ServiceParams
}

func NewBillingItemService(params ServiceParams) BillingItemService {
	return &billingItemService{
		ServiceParams: params,
	}
}

func (s *billingItemService) CreateBillingItem(ctx context.Context, req dto.CreateBillingItemRequest) (*dto.BillingItemResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item := req.ToBillingItem(ctx)
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.BillingItemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return &dto.BillingItemResponse{BillingItem: item}, nil
}

func (s *billingItemService) GetBillingItem(ctx context.Context, id string) (*dto.BillingItemResponse, error) {
	item, err := s.BillingItemRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BillingItemResponse{BillingItem: item}, nil
}

func (s *billingItemService) ListBillingItems(ctx context.Context, filter *types.BillingItemFilter) (*dto.ListBillingItemsResponse, error) {
	if filter == nil {
		filter = &types.BillingItemFilter{}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.BillingItemRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(
		lo.Map(items, func(item *billingitem.BillingItem, _ int) *dto.BillingItemResponse {
			return &dto.BillingItemResponse{BillingItem: item}
		}),
		len(items), len(items), 0,
	)
	return &resp, nil
}

func (s *billingItemService) UpdateBillingItem(ctx context.Context, id string, req dto.UpdateBillingItemRequest) (*dto.BillingItemResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var item *billingitem.BillingItem
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.BillingItemRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		previousKind := item.Kind
		req.Apply(item)
		if err := item.Validate(); err != nil {
			return err
		}

		if item.Kind != previousKind {
			inUse, err := s.BillingItemRepo.IsInUse(ctx, id)
			if err != nil {
				return err
			}
			if inUse {
				return ierr.NewError("billing item is in use").
					WithHint("The billing type cannot change while billing lines or fees use the item").
					WithReportableDetails(map[string]any{
						"billing_item_id": id,
						"billing_type":    previousKind,
					}).
					Mark(ierr.ErrInvalidOperation)
			}
		}

		item.UpdatedAt = time.Now().UTC()
		item.UpdatedBy = types.GetUserID(ctx)
		return s.BillingItemRepo.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("updated billing item",
		"billing_item_id", id,
		"billing_type", item.Kind,
		"is_active", item.IsActive,
	)
	return &dto.BillingItemResponse{BillingItem: item}, nil
}

func (s *billingItemService) DeleteBillingItem(ctx context.Context, id string) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		item, err := s.BillingItemRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		inUse, err := s.BillingItemRepo.IsInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return ierr.NewError("billing item is in use").
				WithHint("Cannot delete: billing item is in use").
				WithReportableDetails(map[string]any{
					"billing_item_id": id,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if err := s.BillingItemRepo.Delete(ctx, id); err != nil {
			return err
		}
		s.Logger.Infow("deleted billing item",
			"billing_item_id", id,
			"item_code", item.ItemCode,
		)
		return nil
	})
}
