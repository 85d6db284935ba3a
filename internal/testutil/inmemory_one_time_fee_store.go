package testutil

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
)

// InMemoryOneTimeFeeStore implements onetimefee.Repository. Eligibility is
// checked against the invoice store the way the NOT EXISTS subquery does.
type InMemoryOneTimeFeeStore struct {
	*InMemoryStore[*onetimefee.OneTimeFee]
	invoices *InMemoryInvoiceStore
}

func NewInMemoryOneTimeFeeStore(invoices *InMemoryInvoiceStore) *InMemoryOneTimeFeeStore {
	return &InMemoryOneTimeFeeStore{
		InMemoryStore: NewInMemoryStore[*onetimefee.OneTimeFee](),
		invoices:      invoices,
	}
}

func copyOneTimeFee(f *onetimefee.OneTimeFee) *onetimefee.OneTimeFee {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func (s *InMemoryOneTimeFeeStore) Create(ctx context.Context, fee *onetimefee.OneTimeFee) error {
	return s.InMemoryStore.Create(ctx, fee.ID, copyOneTimeFee(fee))
}

func (s *InMemoryOneTimeFeeStore) CreateMany(ctx context.Context, fees []*onetimefee.OneTimeFee) error {
	restore := s.InMemoryStore.Snapshot()
	for _, fee := range fees {
		if err := s.Create(ctx, fee); err != nil {
			restore()
			return err
		}
	}
	return nil
}

func (s *InMemoryOneTimeFeeStore) Get(ctx context.Context, id string) (*onetimefee.OneTimeFee, error) {
	fee, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !isPublished(fee.BaseModel) {
		return nil, ierr.NewError("one-time fee not found").
			WithHintf("One-time fee %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyOneTimeFee(fee), nil
}

func (s *InMemoryOneTimeFeeStore) ListEligible(ctx context.Context, filter *onetimefee.EligibleFilter) ([]*onetimefee.OneTimeFee, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.InMemoryStore.List(ctx, filter, func(ctx context.Context, f *onetimefee.OneTimeFee, _ interface{}) bool {
		if !isPublished(f.BaseModel) || f.PartnerID != filter.PartnerID {
			return false
		}
		if f.BillingDate.Before(filter.From) || f.BillingDate.After(filter.To) {
			return false
		}
		if len(filter.FeeIDs) > 0 && !lo.Contains(filter.FeeIDs, f.ID) {
			return false
		}
		return s.invoices == nil || !s.invoices.hasActiveAttachment(ctx, f.ID, filter.ExcludeInvoiceID)
	}, func(i, j *onetimefee.OneTimeFee) bool {
		if i.BillingDate.Equal(j.BillingDate) {
			return i.CreatedAt.Before(j.CreatedAt)
		}
		return i.BillingDate.Before(j.BillingDate)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(f *onetimefee.OneTimeFee, _ int) *onetimefee.OneTimeFee {
		return copyOneTimeFee(f)
	}), nil
}

func (s *InMemoryOneTimeFeeStore) ListUnbilled(ctx context.Context, filter *onetimefee.UnbilledFilter) ([]*onetimefee.OneTimeFee, error) {
	items, err := s.InMemoryStore.List(ctx, filter, func(ctx context.Context, f *onetimefee.OneTimeFee, _ interface{}) bool {
		if !isPublished(f.BaseModel) {
			return false
		}
		if filter != nil && filter.PartnerID != "" && f.PartnerID != filter.PartnerID {
			return false
		}
		return s.invoices == nil || !s.invoices.hasActiveAttachment(ctx, f.ID, "")
	}, func(i, j *onetimefee.OneTimeFee) bool {
		if i.BillingDate.Equal(j.BillingDate) {
			return i.CreatedAt.After(j.CreatedAt)
		}
		return i.BillingDate.After(j.BillingDate)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(f *onetimefee.OneTimeFee, _ int) *onetimefee.OneTimeFee {
		return copyOneTimeFee(f)
	}), nil
}

func (s *InMemoryOneTimeFeeStore) Update(ctx context.Context, fee *onetimefee.OneTimeFee) error {
	if _, err := s.Get(ctx, fee.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, fee.ID, copyOneTimeFee(fee))
}

func (s *InMemoryOneTimeFeeStore) Delete(ctx context.Context, id string) error {
	fee, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	fee.Status = types.StatusDeleted
	fee.UpdatedAt = time.Now().UTC()
	fee.UpdatedBy = types.GetUserID(ctx)
	return s.InMemoryStore.Update(ctx, id, fee)
}
