package testutil

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
)

// InMemoryBillingConfigStore implements billingconfig.Repository
type InMemoryBillingConfigStore struct {
	*InMemoryStore[*billingconfig.PartnerBilling]
}

func NewInMemoryBillingConfigStore() *InMemoryBillingConfigStore {
	return &InMemoryBillingConfigStore{
		InMemoryStore: NewInMemoryStore[*billingconfig.PartnerBilling](),
	}
}

func copyTiers(tiers []*billingconfig.RateTier) []*billingconfig.RateTier {
	return lo.Map(tiers, func(t *billingconfig.RateTier, _ int) *billingconfig.RateTier {
		c := *t
		return &c
	})
}

func copyPartnerBilling(b *billingconfig.PartnerBilling) *billingconfig.PartnerBilling {
	if b == nil {
		return nil
	}
	c := *b
	c.Tiers = copyTiers(b.Tiers)
	return &c
}

func stampTiers(lineID string, tiers []*billingconfig.RateTier) {
	now := time.Now().UTC()
	for _, t := range tiers {
		if t.ID == "" {
			t.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_TIER)
		}
		t.PartnerBillingID = lineID
		t.CreatedAt = now
		t.UpdatedAt = now
	}
}

func (s *InMemoryBillingConfigStore) Create(ctx context.Context, line *billingconfig.PartnerBilling) error {
	stampTiers(line.ID, line.Tiers)
	return s.InMemoryStore.Create(ctx, line.ID, copyPartnerBilling(line))
}

func (s *InMemoryBillingConfigStore) Get(ctx context.Context, id string) (*billingconfig.PartnerBilling, error) {
	line, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !isPublished(line.BaseModel) {
		return nil, ierr.NewError("partner billing not found").
			WithHintf("Partner billing %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	out := copyPartnerBilling(line)
	out.Tiers = billingconfig.SortTiers(out.Tiers)
	return out, nil
}

func (s *InMemoryBillingConfigStore) ListByPartner(ctx context.Context, partnerID string) ([]*billingconfig.PartnerBilling, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, b *billingconfig.PartnerBilling, _ interface{}) bool {
		return isPublished(b.BaseModel) && b.PartnerID == partnerID
	}, func(i, j *billingconfig.PartnerBilling) bool {
		if i.StartDate.Equal(j.StartDate) {
			return i.CreatedAt.Before(j.CreatedAt)
		}
		return i.StartDate.Before(j.StartDate)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(b *billingconfig.PartnerBilling, _ int) *billingconfig.PartnerBilling {
		out := copyPartnerBilling(b)
		out.Tiers = billingconfig.SortTiers(out.Tiers)
		return out
	}), nil
}

// Update keeps the stored tiers; they change through ReplaceTiers only
func (s *InMemoryBillingConfigStore) Update(ctx context.Context, line *billingconfig.PartnerBilling) error {
	existing, err := s.Get(ctx, line.ID)
	if err != nil {
		return err
	}
	updated := copyPartnerBilling(line)
	updated.Tiers = existing.Tiers
	return s.InMemoryStore.Update(ctx, line.ID, updated)
}

func (s *InMemoryBillingConfigStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.InMemoryStore.Delete(ctx, id)
}

func (s *InMemoryBillingConfigStore) ReplaceTiers(ctx context.Context, partnerBillingID string, tiers []*billingconfig.RateTier) error {
	existing, err := s.Get(ctx, partnerBillingID)
	if err != nil {
		return err
	}
	stampTiers(partnerBillingID, tiers)
	existing.Tiers = copyTiers(tiers)
	return s.InMemoryStore.Update(ctx, partnerBillingID, existing)
}

func (s *InMemoryBillingConfigStore) ListTiers(ctx context.Context, partnerBillingID string) ([]*billingconfig.RateTier, error) {
	line, err := s.Get(ctx, partnerBillingID)
	if err != nil {
		return nil, err
	}
	return line.Tiers, nil
}

// InMemoryClientBillingStore implements billingconfig.ClientBillingRepository
type InMemoryClientBillingStore struct {
	*InMemoryStore[*billingconfig.ClientBilling]
}

func NewInMemoryClientBillingStore() *InMemoryClientBillingStore {
	return &InMemoryClientBillingStore{
		InMemoryStore: NewInMemoryStore[*billingconfig.ClientBilling](),
	}
}

func copyClientBilling(cb *billingconfig.ClientBilling) *billingconfig.ClientBilling {
	if cb == nil {
		return nil
	}
	c := *cb
	return &c
}

func (s *InMemoryClientBillingStore) Create(ctx context.Context, cb *billingconfig.ClientBilling) error {
	return s.InMemoryStore.Create(ctx, cb.ID, copyClientBilling(cb))
}

func (s *InMemoryClientBillingStore) Get(ctx context.Context, id string) (*billingconfig.ClientBilling, error) {
	cb, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !isPublished(cb.BaseModel) {
		return nil, ierr.NewError("client billing not found").
			WithHintf("Client billing %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyClientBilling(cb), nil
}

func (s *InMemoryClientBillingStore) ListByPartner(ctx context.Context, partnerID string) ([]*billingconfig.ClientBilling, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, cb *billingconfig.ClientBilling, _ interface{}) bool {
		return isPublished(cb.BaseModel) && cb.PartnerID == partnerID
	}, func(i, j *billingconfig.ClientBilling) bool {
		if i.ClientCode == j.ClientCode {
			return i.BillingDate.Before(j.BillingDate)
		}
		return i.ClientCode < j.ClientCode
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(cb *billingconfig.ClientBilling, _ int) *billingconfig.ClientBilling {
		return copyClientBilling(cb)
	}), nil
}

func (s *InMemoryClientBillingStore) Update(ctx context.Context, cb *billingconfig.ClientBilling) error {
	if _, err := s.Get(ctx, cb.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, cb.ID, copyClientBilling(cb))
}

func (s *InMemoryClientBillingStore) Delete(ctx context.Context, id string) error {
	cb, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	cb.Status = types.StatusDeleted
	cb.UpdatedAt = time.Now().UTC()
	cb.UpdatedBy = types.GetUserID(ctx)
	return s.InMemoryStore.Update(ctx, id, cb)
}
