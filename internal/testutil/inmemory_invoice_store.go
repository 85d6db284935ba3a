package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	sequences *InMemoryStore[int]

	mu           sync.Mutex
	createErrors []error
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		sequences:     NewInMemoryStore[int](),
	}
}

// FailNextCreates makes the following Create calls return errs in order
func (s *InMemoryInvoiceStore) FailNextCreates(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErrors = append(s.createErrors, errs...)
}

func (s *InMemoryInvoiceStore) nextCreateError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.createErrors) == 0 {
		return nil
	}
	err := s.createErrors[0]
	s.createErrors = s.createErrors[1:]
	return err
}

// Snapshot captures invoices and sequences together
func (s *InMemoryInvoiceStore) Snapshot() func() {
	restoreInvoices := s.InMemoryStore.Snapshot()
	restoreSequences := s.sequences.Snapshot()
	return func() {
		restoreInvoices()
		restoreSequences()
	}
}

func (s *InMemoryInvoiceStore) Clear() {
	s.InMemoryStore.Clear()
	s.sequences.Clear()
}

// Helper to copy invoice
func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}

	c := *inv
	c.MonthlyFees = lo.Map(inv.MonthlyFees, func(l *invoice.MonthlyFeeLine, _ int) *invoice.MonthlyFeeLine {
		lc := *l
		return &lc
	})
	c.RecurringFees = lo.Map(inv.RecurringFees, func(l *invoice.RecurringFeeLine, _ int) *invoice.RecurringFeeLine {
		lc := *l
		lc.Warnings = nil
		return &lc
	})
	c.OneTimeFees = lo.Map(inv.OneTimeFees, func(l *invoice.OneTimeFeeLine, _ int) *invoice.OneTimeFeeLine {
		lc := *l
		return &lc
	})
	return &c
}

// stampLines assigns ids and timestamps to new lines the way the database does
func stampLines(inv *invoice.Invoice) {
	inv.SetLineInvoiceID()
	now := time.Now().UTC()
	for _, l := range inv.MonthlyFees {
		if l.ID == "" {
			l.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_MONTHLY)
		}
		l.CreatedAt = now
	}
	for _, l := range inv.RecurringFees {
		if l.ID == "" {
			l.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_RECURRING)
		}
		l.CreatedAt = now
	}
	for _, l := range inv.OneTimeFees {
		if l.ID == "" {
			l.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_ONE_TIME)
		}
		l.CreatedAt = now
	}
}

// sortLines mirrors the ordering of the postgres repository
func sortLines(inv *invoice.Invoice) {
	sort.SliceStable(inv.MonthlyFees, func(i, j int) bool {
		return inv.MonthlyFees[i].ClientCode < inv.MonthlyFees[j].ClientCode
	})
	sort.SliceStable(inv.RecurringFees, func(i, j int) bool {
		return inv.RecurringFees[i].SystemGenerated && !inv.RecurringFees[j].SystemGenerated
	})
	sort.SliceStable(inv.OneTimeFees, func(i, j int) bool {
		return inv.OneTimeFees[i].BillingDate.Before(inv.OneTimeFees[j].BillingDate)
	})
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.nextCreateError(); err != nil {
		return err
	}

	existing, err := s.InMemoryStore.List(ctx, nil, nil, nil)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.InvoiceNumber == inv.InvoiceNumber ||
			(other.PartnerCode == inv.PartnerCode && other.InvoiceMonth == inv.InvoiceMonth && other.Sequence == inv.Sequence) {
			return ierr.NewError("invoice number already taken").
				WithHint("Invoice number was taken by a concurrent request, please retry").
				WithReportableDetails(map[string]any{
					"invoice_number": inv.InvoiceNumber,
				}).
				Mark(ierr.ErrVersionConflict)
		}
		if inv.IdempotencyKey != nil && other.IdempotencyKey != nil && *other.IdempotencyKey == *inv.IdempotencyKey {
			return ierr.NewError("invoice already exists").
				WithHint("An invoice was already generated for this request").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	stampLines(inv)
	return s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !isPublished(inv.BaseModel) {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	out := copyInvoice(inv)
	sortLines(out)
	return out, nil
}

func (s *InMemoryInvoiceStore) GetByIdempotencyKey(ctx context.Context, key string) (*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.IdempotencyKey != nil && *inv.IdempotencyKey == key
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewError("invoice not found").
			WithHint("No invoice was generated for this request").
			Mark(ierr.ErrNotFound)
	}
	return s.Get(ctx, items[0].ID)
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	stored, err := s.InMemoryStore.Get(ctx, inv.ID)
	if err != nil {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice %s was not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}

	updated := copyInvoice(stored)
	updated.InvoiceStatus = inv.InvoiceStatus
	updated.InvoiceDate = inv.InvoiceDate
	updated.FinalizedAt = inv.FinalizedAt
	updated.VoidedAt = inv.VoidedAt
	updated.UpdatedAt = inv.UpdatedAt
	updated.UpdatedBy = inv.UpdatedBy
	return s.InMemoryStore.Update(ctx, inv.ID, updated)
}

func (s *InMemoryInvoiceStore) ReplaceLines(ctx context.Context, inv *invoice.Invoice) error {
	stored, err := s.InMemoryStore.Get(ctx, inv.ID)
	if err != nil {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice %s was not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}

	stampLines(inv)
	lines := copyInvoice(inv)
	updated := copyInvoice(stored)
	updated.MonthlyFees = lines.MonthlyFees
	updated.RecurringFees = lines.RecurringFees
	updated.OneTimeFees = lines.OneTimeFees
	return s.InMemoryStore.Update(ctx, inv.ID, updated)
}

func (s *InMemoryInvoiceStore) UpdateRecurringLine(ctx context.Context, line *invoice.RecurringFeeLine) error {
	stored, err := s.Get(ctx, line.InvoiceID)
	if err != nil {
		return err
	}
	target, ok := lo.Find(stored.RecurringFees, func(l *invoice.RecurringFeeLine) bool {
		return l.ID == line.ID
	})
	if !ok {
		return ierr.NewError("invoice line not found").
			WithHintf("Line %s was not found", line.ID).
			Mark(ierr.ErrNotFound)
	}
	target.InvoicedAmount = line.InvoicedAmount
	target.OverrideReason = line.OverrideReason
	return s.InMemoryStore.Update(ctx, stored.ID, stored)
}

func (s *InMemoryInvoiceStore) UpdateOneTimeLine(ctx context.Context, line *invoice.OneTimeFeeLine) error {
	stored, err := s.Get(ctx, line.InvoiceID)
	if err != nil {
		return err
	}
	target, ok := lo.Find(stored.OneTimeFees, func(l *invoice.OneTimeFeeLine) bool {
		return l.ID == line.ID
	})
	if !ok {
		return ierr.NewError("invoice line not found").
			WithHintf("Line %s was not found", line.ID).
			Mark(ierr.ErrNotFound)
	}
	target.InvoicedAmount = line.InvoicedAmount
	target.OverrideReason = line.OverrideReason
	return s.InMemoryStore.Update(ctx, stored.ID, stored)
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		out := copyInvoice(inv)
		if filter != nil && filter.SkipLineItems {
			out.MonthlyFees = []*invoice.MonthlyFeeLine{}
			out.RecurringFees = []*invoice.RecurringFeeLine{}
			out.OneTimeFees = []*invoice.OneTimeFeeLine{}
		}
		sortLines(out)
		return out
	}), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) NextSequence(ctx context.Context, partnerCode string, month types.YearMonth) (int, error) {
	key := fmt.Sprintf("%s:%s", partnerCode, month)
	last, err := s.sequences.Get(ctx, key)
	if err != nil {
		if err := s.sequences.Create(ctx, key, 1); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err := s.sequences.Update(ctx, key, last+1); err != nil {
		return 0, err
	}
	return last + 1, nil
}

func (s *InMemoryInvoiceStore) RevenueByPartner(ctx context.Context, month types.YearMonth) ([]*invoice.PartnerRevenue, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return isPublished(inv.BaseModel) && inv.InvoiceMonth == month && inv.InvoiceStatus == types.InvoiceStatusFinal
	}, nil)
	if err != nil {
		return nil, err
	}

	byPartner := make(map[string]*invoice.PartnerRevenue)
	for _, inv := range items {
		rev, ok := byPartner[inv.PartnerID]
		if !ok {
			rev = &invoice.PartnerRevenue{
				PartnerID:      inv.PartnerID,
				PartnerCode:    inv.PartnerCode,
				PartnerName:    inv.PartnerName,
				MonthlyTotal:   decimal.Zero,
				RecurringTotal: decimal.Zero,
				OneTimeTotal:   decimal.Zero,
				GrandTotal:     decimal.Zero,
			}
			byPartner[inv.PartnerID] = rev
		}
		totals := inv.Totals()
		rev.InvoiceCount++
		rev.MonthlyTotal = rev.MonthlyTotal.Add(totals.Monthly)
		rev.RecurringTotal = rev.RecurringTotal.Add(totals.Recurring)
		rev.OneTimeTotal = rev.OneTimeTotal.Add(totals.OneTime)
		rev.GrandTotal = rev.GrandTotal.Add(totals.Grand)
	}

	out := lo.Values(byPartner)
	sort.Slice(out, func(i, j int) bool {
		return out[i].PartnerCode < out[j].PartnerCode
	})
	return out, nil
}

// hasActiveAttachment reports whether the fee is billed on a non void invoice other than excludeID
func (s *InMemoryInvoiceStore) hasActiveAttachment(ctx context.Context, feeID, excludeID string) bool {
	n, _ := s.InMemoryStore.Count(ctx, nil, func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		if inv.ID == excludeID || inv.InvoiceStatus == types.InvoiceStatusVoid {
			return false
		}
		return lo.Contains(inv.OneTimeFeeIDs(), feeID)
	})
	return n > 0
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if !isPublished(inv.BaseModel) {
		return false
	}
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if f.PartnerID != "" && inv.PartnerID != f.PartnerID {
		return false
	}
	if f.InvoiceMonth != "" && inv.InvoiceMonth != f.InvoiceMonth {
		return false
	}
	if len(f.InvoiceStatus) > 0 && !lo.Contains(f.InvoiceStatus, inv.InvoiceStatus) {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	return i.CreatedAt.After(j.CreatedAt)
}
