package service

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/domain/billingitem"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
)

// BillingConfigService manages the partner billing lines, their rate tiers and
// the client level recurring charges
type BillingConfigService interface {
	CreatePartnerBilling(ctx context.Context, partnerID string, req dto.CreatePartnerBillingRequest) (*dto.PartnerBillingResponse, error)
	ListPartnerBillings(ctx context.Context, partnerID string) (*dto.ListPartnerBillingsResponse, error)
	UpdatePartnerBilling(ctx context.Context, id string, req dto.UpdatePartnerBillingRequest) (*dto.PartnerBillingResponse, error)
	DeletePartnerBilling(ctx context.Context, id string) error

	ReplaceTiers(ctx context.Context, partnerBillingID string, req dto.ReplaceTiersRequest) (*dto.ListRateTiersResponse, error)
	ListTiers(ctx context.Context, partnerBillingID string) (*dto.ListRateTiersResponse, error)

	CreateClientBilling(ctx context.Context, partnerID string, req dto.CreateClientBillingRequest) (*dto.ClientBillingResponse, error)
	ListClientBillings(ctx context.Context, partnerID string) (*dto.ListClientBillingsResponse, error)
	UpdateClientBilling(ctx context.Context, id string, req dto.UpdateClientBillingRequest) (*dto.ClientBillingResponse, error)
	DeleteClientBilling(ctx context.Context, id string) error

	// GetSnapshot loads the configuration of the partner as it applies to month
	GetSnapshot(ctx context.Context, partnerID string, month types.YearMonth) (*billingconfig.Snapshot, error)
}

type billingConfigService struct {
	ServiceParams
}

func NewBillingConfigService(params ServiceParams) BillingConfigService {
	return &billingConfigService{
		ServiceParams: params,
	}
}

func (s *billingConfigService) CreatePartnerBilling(ctx context.Context, partnerID string, req dto.CreatePartnerBillingRequest) (*dto.PartnerBillingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.PartnerRepo.Get(ctx, partnerID); err != nil {
		return nil, err
	}

	item, err := s.BillingItemRepo.Get(ctx, req.BillingItemID)
	if err != nil {
		return nil, err
	}

	line := req.ToPartnerBilling(ctx, partnerID)
	applyBillingItem(line, item)
	if err := line.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.BillingConfigRepo.ListByPartner(ctx, partnerID)
		if err != nil {
			return err
		}
		if err := billingconfig.ValidateExclusiveKinds(existing, line); err != nil {
			return err
		}
		return s.BillingConfigRepo.Create(ctx, line)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created partner billing line",
		"partner_id", partnerID,
		"partner_billing_id", line.ID,
		"billing_type", line.Kind,
		"tiers", len(line.Tiers),
	)
	return &dto.PartnerBillingResponse{PartnerBilling: line}, nil
}

func (s *billingConfigService) ListPartnerBillings(ctx context.Context, partnerID string) (*dto.ListPartnerBillingsResponse, error) {
	if _, err := s.PartnerRepo.Get(ctx, partnerID); err != nil {
		return nil, err
	}

	lines, err := s.BillingConfigRepo.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	return &dto.ListPartnerBillingsResponse{
		Items: lo.Map(lines, func(l *billingconfig.PartnerBilling, _ int) *dto.PartnerBillingResponse {
			return &dto.PartnerBillingResponse{PartnerBilling: l}
		}),
	}, nil
}

func (s *billingConfigService) UpdatePartnerBilling(ctx context.Context, id string, req dto.UpdatePartnerBillingRequest) (*dto.PartnerBillingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var line *billingconfig.PartnerBilling
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		line, err = s.BillingConfigRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		req.Apply(line)
		if err := line.Validate(); err != nil {
			return err
		}

		existing, err := s.BillingConfigRepo.ListByPartner(ctx, line.PartnerID)
		if err != nil {
			return err
		}
		if err := billingconfig.ValidateExclusiveKinds(existing, line); err != nil {
			return err
		}

		line.UpdatedAt = time.Now().UTC()
		line.UpdatedBy = types.GetUserID(ctx)
		if err := s.BillingConfigRepo.Update(ctx, line); err != nil {
			return err
		}
		if req.Tiers != nil {
			return s.BillingConfigRepo.ReplaceTiers(ctx, line.ID, line.Tiers)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	line, err = s.BillingConfigRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PartnerBillingResponse{PartnerBilling: line}, nil
}

func (s *billingConfigService) DeletePartnerBilling(ctx context.Context, id string) error {
	line, err := s.BillingConfigRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.BillingConfigRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.Logger.Infow("deleted partner billing line",
		"partner_id", line.PartnerID,
		"partner_billing_id", id,
		"billing_type", line.Kind,
	)
	return nil
}

func (s *billingConfigService) ReplaceTiers(ctx context.Context, partnerBillingID string, req dto.ReplaceTiersRequest) (*dto.ListRateTiersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	line, err := s.BillingConfigRepo.Get(ctx, partnerBillingID)
	if err != nil {
		return nil, err
	}
	if line.Kind != types.BillingKindPerEmployee {
		return nil, ierr.NewError("rate tiers are only allowed on per employee lines").
			WithHintf("Billing line %s is %s, tiers can only be set on per employee lines", line.ID, line.Kind).
			Mark(ierr.ErrInvalidOperation)
	}

	tiers := req.ToRateTiers()
	if err := billingconfig.ValidateTiers(tiers); err != nil {
		return nil, err
	}

	if err := s.BillingConfigRepo.ReplaceTiers(ctx, partnerBillingID, billingconfig.SortTiers(tiers)); err != nil {
		return nil, err
	}
	return s.ListTiers(ctx, partnerBillingID)
}

func (s *billingConfigService) ListTiers(ctx context.Context, partnerBillingID string) (*dto.ListRateTiersResponse, error) {
	if _, err := s.BillingConfigRepo.Get(ctx, partnerBillingID); err != nil {
		return nil, err
	}

	tiers, err := s.BillingConfigRepo.ListTiers(ctx, partnerBillingID)
	if err != nil {
		return nil, err
	}
	return &dto.ListRateTiersResponse{Items: billingconfig.SortTiers(tiers)}, nil
}

func (s *billingConfigService) CreateClientBilling(ctx context.Context, partnerID string, req dto.CreateClientBillingRequest) (*dto.ClientBillingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.PartnerRepo.Get(ctx, partnerID); err != nil {
		return nil, err
	}

	item, err := s.BillingItemRepo.Get(ctx, req.BillingItemID)
	if err != nil {
		return nil, err
	}

	cb := req.ToClientBilling(ctx, partnerID)
	cb.ItemCode = item.ItemCode
	cb.ItemName = item.Name
	if err := cb.Validate(); err != nil {
		return nil, err
	}

	if err := s.ClientBillingRepo.Create(ctx, cb); err != nil {
		return nil, err
	}
	return &dto.ClientBillingResponse{ClientBilling: cb}, nil
}

func (s *billingConfigService) ListClientBillings(ctx context.Context, partnerID string) (*dto.ListClientBillingsResponse, error) {
	if _, err := s.PartnerRepo.Get(ctx, partnerID); err != nil {
		return nil, err
	}

	items, err := s.ClientBillingRepo.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	return &dto.ListClientBillingsResponse{
		Items: lo.Map(items, func(cb *billingconfig.ClientBilling, _ int) *dto.ClientBillingResponse {
			return &dto.ClientBillingResponse{ClientBilling: cb}
		}),
	}, nil
}

func (s *billingConfigService) UpdateClientBilling(ctx context.Context, id string, req dto.UpdateClientBillingRequest) (*dto.ClientBillingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var cb *billingconfig.ClientBilling
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		cb, err = s.ClientBillingRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		req.Apply(cb)
		item, err := s.BillingItemRepo.Get(ctx, cb.BillingItemID)
		if err != nil {
			return err
		}
		cb.ItemCode = item.ItemCode
		cb.ItemName = item.Name
		if err := cb.Validate(); err != nil {
			return err
		}

		cb.UpdatedAt = time.Now().UTC()
		cb.UpdatedBy = types.GetUserID(ctx)
		return s.ClientBillingRepo.Update(ctx, cb)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("updated client billing",
		"client_billing_id", id,
		"partner_id", cb.PartnerID,
		"client_code", cb.ClientCode,
	)
	return &dto.ClientBillingResponse{ClientBilling: cb}, nil
}

func (s *billingConfigService) DeleteClientBilling(ctx context.Context, id string) error {
	cb, err := s.ClientBillingRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.ClientBillingRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.Logger.Infow("deleted client billing",
		"client_billing_id", id,
		"partner_id", cb.PartnerID,
		"client_code", cb.ClientCode,
	)
	return nil
}

func (s *billingConfigService) GetSnapshot(ctx context.Context, partnerID string, month types.YearMonth) (*billingconfig.Snapshot, error) {
	lines, err := s.BillingConfigRepo.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	clientBillings, err := s.ClientBillingRepo.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return billingconfig.NewSnapshot(partnerID, month, lines, clientBillings), nil
}

// applyBillingItem copies the catalogue fields a billing line is calculated with
func applyBillingItem(line *billingconfig.PartnerBilling, item *billingitem.BillingItem) {
	line.Kind = item.Kind
	line.ItemCode = item.ItemCode
	line.ItemName = item.Name
}
