package testutil

import (
	"context"
	"strings"

	"github.com/flexprice/partnerbilling/internal/domain/partner"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
)

// InMemoryPartnerStore implements partner.Repository
type InMemoryPartnerStore struct {
	*InMemoryStore[*partner.Partner]
}

func NewInMemoryPartnerStore() *InMemoryPartnerStore {
	return &InMemoryPartnerStore{
		InMemoryStore: NewInMemoryStore[*partner.Partner](),
	}
}

func copyPartner(p *partner.Partner) *partner.Partner {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (s *InMemoryPartnerStore) Create(ctx context.Context, p *partner.Partner) error {
	if _, err := s.GetByCode(ctx, p.PartnerCode); err == nil {
		return ierr.NewError("partner already exists").
			WithHintf("A partner with code %s already exists", p.PartnerCode).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPartner(p))
}

func (s *InMemoryPartnerStore) Get(ctx context.Context, id string) (*partner.Partner, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !isPublished(p.BaseModel) {
		return nil, ierr.NewError("partner not found").
			WithHintf("Partner %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyPartner(p), nil
}

func (s *InMemoryPartnerStore) GetByCode(ctx context.Context, code string) (*partner.Partner, error) {
	code = partner.NormalizeCode(code)
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, p *partner.Partner, _ interface{}) bool {
		return isPublished(p.BaseModel) && partner.NormalizeCode(p.PartnerCode) == code
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewError("partner not found").
			WithHintf("Partner %s was not found", code).
			Mark(ierr.ErrNotFound)
	}
	return copyPartner(items[0]), nil
}

func (s *InMemoryPartnerStore) List(ctx context.Context, filter *types.PartnerFilter) ([]*partner.Partner, error) {
	items, err := s.InMemoryStore.List(ctx, filter, partnerFilterFn, partnerSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *partner.Partner, _ int) *partner.Partner {
		return copyPartner(p)
	}), nil
}

func (s *InMemoryPartnerStore) Count(ctx context.Context, filter *types.PartnerFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, partnerFilterFn)
}

func (s *InMemoryPartnerStore) Update(ctx context.Context, p *partner.Partner) error {
	if _, err := s.Get(ctx, p.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, p.ID, copyPartner(p))
}

func partnerFilterFn(ctx context.Context, p *partner.Partner, filter interface{}) bool {
	if !isPublished(p.BaseModel) {
		return false
	}
	f, ok := filter.(*types.PartnerFilter)
	if !ok || f == nil {
		return true
	}
	if !f.IncludeInactive && !p.IsActive {
		return false
	}
	if len(f.PartnerCodes) > 0 && !lo.Contains(f.PartnerCodes, p.PartnerCode) {
		return false
	}
	return true
}

func partnerSortFn(i, j *partner.Partner) bool {
	return strings.Compare(i.PartnerCode, j.PartnerCode) < 0
}
