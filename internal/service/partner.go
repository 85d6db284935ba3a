package service

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/domain/partner"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
)

type PartnerService interface {
	CreatePartner(ctx context.Context, req dto.CreatePartnerRequest) (*dto.PartnerResponse, error)
	GetPartner(ctx context.Context, id string) (*dto.PartnerResponse, error)
	ListPartners(ctx context.Context, filter *types.PartnerFilter) (*dto.ListPartnersResponse, error)
	UpdatePartner(ctx context.Context, id string, req dto.UpdatePartnerRequest) (*dto.PartnerResponse, error)
}

type partnerService struct {
	ServiceParams
}

func NewPartnerService(params ServiceParams) PartnerService {
	return &partnerService{
		ServiceParams: params,
	}
}

func (s *partnerService) CreatePartner(ctx context.Context, req dto.CreatePartnerRequest) (*dto.PartnerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPartner(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.PartnerRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("created partner",
		"partner_id", p.ID,
		"partner_code", p.PartnerCode,
	)
	return dto.NewPartnerResponse(p), nil
}

func (s *partnerService) GetPartner(ctx context.Context, id string) (*dto.PartnerResponse, error) {
	p, err := s.PartnerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPartnerResponse(p), nil
}

func (s *partnerService) ListPartners(ctx context.Context, filter *types.PartnerFilter) (*dto.ListPartnersResponse, error) {
	if filter == nil {
		filter = types.NewPartnerFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	partners, err := s.PartnerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PartnerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(partners, func(p *partner.Partner, _ int) *dto.PartnerResponse {
		return dto.NewPartnerResponse(p)
	})
	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *partnerService) UpdatePartner(ctx context.Context, id string, req dto.UpdatePartnerRequest) (*dto.PartnerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PartnerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedBy = types.GetUserID(ctx)
	p.UpdatedAt = time.Now().UTC()

	if err := s.PartnerRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return dto.NewPartnerResponse(p), nil
}
