package testutil

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/usage"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
)

// InMemoryUsageStore implements usage.Repository
type InMemoryUsageStore struct {
	*InMemoryStore[usage.MonthlyUsageRecord]
}

func NewInMemoryUsageStore() *InMemoryUsageStore {
	return &InMemoryUsageStore{
		InMemoryStore: NewInMemoryStore[usage.MonthlyUsageRecord](),
	}
}

func usageSortFn(i, j usage.MonthlyUsageRecord) bool {
	return i.ClientCode < j.ClientCode
}

func (s *InMemoryUsageStore) ReplaceMonth(ctx context.Context, period types.YearMonth, records []usage.MonthlyUsageRecord) error {
	existing, err := s.ListByMonth(ctx, period)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if err := s.InMemoryStore.Delete(ctx, r.ID); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(records))
	now := time.Now().UTC()
	for _, rec := range records {
		if seen[rec.ClientCode] {
			return ierr.NewError("monthly usage already exists").
				WithHintf("Client %s appears more than once for %s", rec.ClientCode, period).
				Mark(ierr.ErrAlreadyExists)
		}
		seen[rec.ClientCode] = true

		rec.Period = period
		if rec.ID == "" {
			rec.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE_RECORD)
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if err := s.InMemoryStore.Create(ctx, rec.ID, rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryUsageStore) ListByMonth(ctx context.Context, period types.YearMonth) ([]usage.MonthlyUsageRecord, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, r usage.MonthlyUsageRecord, _ interface{}) bool {
		return r.Period == period
	}, usageSortFn)
}

func (s *InMemoryUsageStore) ListByPartnerCode(ctx context.Context, partnerCode string, period types.YearMonth) ([]usage.MonthlyUsageRecord, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, r usage.MonthlyUsageRecord, _ interface{}) bool {
		return r.Period == period && strings.HasPrefix(r.ClientCode, partnerCode)
	}, usageSortFn)
}

func (s *InMemoryUsageStore) ListMonths(ctx context.Context) ([]types.YearMonth, error) {
	all, err := s.InMemoryStore.List(ctx, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	months := lo.Uniq(lo.Map(all, func(r usage.MonthlyUsageRecord, _ int) types.YearMonth {
		return r.Period
	}))
	sort.Slice(months, func(i, j int) bool {
		return months[i] > months[j]
	})
	return months, nil
}
