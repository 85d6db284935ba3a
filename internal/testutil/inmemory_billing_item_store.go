package testutil

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/domain/billingitem"
	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
)

// InMemoryBillingItemStore implements billingitem.Repository. References are
// looked up in the stores passed to SetReferenceStores.
type InMemoryBillingItemStore struct {
	*InMemoryStore[*billingitem.BillingItem]
	partnerBillings *InMemoryBillingConfigStore
	clientBillings  *InMemoryClientBillingStore
	oneTimeFees     *InMemoryOneTimeFeeStore
}

func NewInMemoryBillingItemStore() *InMemoryBillingItemStore {
	return &InMemoryBillingItemStore{
		InMemoryStore: NewInMemoryStore[*billingitem.BillingItem](),
	}
}

func copyBillingItem(i *billingitem.BillingItem) *billingitem.BillingItem {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

func (s *InMemoryBillingItemStore) Create(ctx context.Context, item *billingitem.BillingItem) error {
	if _, err := s.GetByCode(ctx, item.ItemCode); err == nil {
		return ierr.NewError("billing item already exists").
			WithHintf("A billing item with code %s already exists", item.ItemCode).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, item.ID, copyBillingItem(item))
}

func (s *InMemoryBillingItemStore) Get(ctx context.Context, id string) (*billingitem.BillingItem, error) {
	item, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !isPublished(item.BaseModel) {
		return nil, ierr.NewError("billing item not found").
			WithHintf("Billing item %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyBillingItem(item), nil
}

func (s *InMemoryBillingItemStore) GetByCode(ctx context.Context, code string) (*billingitem.BillingItem, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, i *billingitem.BillingItem, _ interface{}) bool {
		return isPublished(i.BaseModel) && i.ItemCode == code
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewError("billing item not found").
			WithHintf("Billing item %s was not found", code).
			Mark(ierr.ErrNotFound)
	}
	return copyBillingItem(items[0]), nil
}

func (s *InMemoryBillingItemStore) List(ctx context.Context, filter *types.BillingItemFilter) ([]*billingitem.BillingItem, error) {
	items, err := s.InMemoryStore.List(ctx, filter, billingItemFilterFn, func(i, j *billingitem.BillingItem) bool {
		return i.ItemCode < j.ItemCode
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(i *billingitem.BillingItem, _ int) *billingitem.BillingItem {
		return copyBillingItem(i)
	}), nil
}

func (s *InMemoryBillingItemStore) Update(ctx context.Context, item *billingitem.BillingItem) error {
	if _, err := s.Get(ctx, item.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, item.ID, copyBillingItem(item))
}

// SetReferenceStores wires the stores IsInUse checks
func (s *InMemoryBillingItemStore) SetReferenceStores(
	partnerBillings *InMemoryBillingConfigStore,
	clientBillings *InMemoryClientBillingStore,
	oneTimeFees *InMemoryOneTimeFeeStore,
) {
	s.partnerBillings = partnerBillings
	s.clientBillings = clientBillings
	s.oneTimeFees = oneTimeFees
}

func (s *InMemoryBillingItemStore) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	item.Status = types.StatusDeleted
	item.UpdatedAt = time.Now().UTC()
	item.UpdatedBy = types.GetUserID(ctx)
	return s.InMemoryStore.Update(ctx, id, item)
}

func (s *InMemoryBillingItemStore) IsInUse(ctx context.Context, id string) (bool, error) {
	if s.partnerBillings != nil {
		n, err := s.partnerBillings.Count(ctx, nil, func(_ context.Context, b *billingconfig.PartnerBilling, _ interface{}) bool {
			return isPublished(b.BaseModel) && b.BillingItemID == id
		})
		if err != nil || n > 0 {
			return n > 0, err
		}
	}
	if s.clientBillings != nil {
		n, err := s.clientBillings.Count(ctx, nil, func(_ context.Context, cb *billingconfig.ClientBilling, _ interface{}) bool {
			return isPublished(cb.BaseModel) && cb.BillingItemID == id
		})
		if err != nil || n > 0 {
			return n > 0, err
		}
	}
	if s.oneTimeFees != nil {
		n, err := s.oneTimeFees.Count(ctx, nil, func(_ context.Context, f *onetimefee.OneTimeFee, _ interface{}) bool {
			return isPublished(f.BaseModel) && f.BillingItemID == id
		})
		if err != nil || n > 0 {
			return n > 0, err
		}
	}
	return false, nil
}

func billingItemFilterFn(ctx context.Context, i *billingitem.BillingItem, filter interface{}) bool {
	if !isPublished(i.BaseModel) {
		return false
	}
	f, ok := filter.(*types.BillingItemFilter)
	if !ok || f == nil {
		return true
	}
	if !f.IncludeInactive && !i.IsActive {
		return false
	}
	if len(f.Kinds) > 0 && !lo.Contains(f.Kinds, i.Kind) {
		return false
	}
	return true
}
