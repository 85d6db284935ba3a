package billingconfig

import (
	"time"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Snapshot is the billing configuration of one partner as it applies to one month
type Snapshot struct {
	PartnerID string
	Month     types.YearMonth

	BaseFee        *PartnerBilling
	PerEmployee    *PartnerBilling
	MonthlyMinimum *PartnerBilling

	// Recurring holds partner level lines billed as they are
	Recurring      []*PartnerBilling
	ClientBillings []*ClientBilling
}

// NewSnapshot picks the lines effective in month. Lines are expected to be
// ordered by start date; when several lines of an exclusive kind are effective
// the latest one wins.
func NewSnapshot(partnerID string, month types.YearMonth, lines []*PartnerBilling, clientBillings []*ClientBilling) *Snapshot {
	s := &Snapshot{
		PartnerID:      partnerID,
		Month:          month,
		Recurring:      make([]*PartnerBilling, 0),
		ClientBillings: make([]*ClientBilling, 0),
	}

	for _, line := range lines {
		if !line.EffectiveIn(month) {
			continue
		}
		switch line.Kind {
		case types.BillingKindBaseEIN:
			s.BaseFee = line
		case types.BillingKindPerEmployee:
			s.PerEmployee = line
		case types.BillingKindMonthlyMin:
			s.MonthlyMinimum = line
		default:
			s.Recurring = append(s.Recurring, line)
		}
	}

	s.ClientBillings = lo.Filter(clientBillings, func(cb *ClientBilling, _ int) bool {
		return cb.EffectiveIn(month)
	})
	return s
}

// BaseFeeAmount is the flat base EIN fee, zero when unconfigured
func (s *Snapshot) BaseFeeAmount() decimal.Decimal {
	if s.BaseFee == nil {
		return decimal.Zero
	}
	return s.BaseFee.Amount
}

// PerEmployeeRate is the flat per employee rate used when no tiers exist
func (s *Snapshot) PerEmployeeRate() decimal.Decimal {
	if s.PerEmployee == nil {
		return decimal.Zero
	}
	return s.PerEmployee.Amount
}

// Tiers returns the per employee rate tiers sorted by TierMin
func (s *Snapshot) Tiers() []*RateTier {
	if s.PerEmployee == nil {
		return nil
	}
	return SortTiers(s.PerEmployee.Tiers)
}

// MinimumAmount is the monthly minimum threshold, zero when unconfigured
func (s *Snapshot) MinimumAmount() decimal.Decimal {
	if s.MonthlyMinimum == nil {
		return decimal.Zero
	}
	return s.MonthlyMinimum.Amount
}

// HasMonthlyMinimum reports whether a monthly_min line applies to the month
func (s *Snapshot) HasMonthlyMinimum() bool {
	return s.MonthlyMinimum != nil
}

// exclusiveKinds may have at most one active line per partner at any point in time
var exclusiveKinds = []types.BillingKind{
	types.BillingKindBaseEIN,
	types.BillingKindMonthlyMin,
	types.BillingKindPerEmployee,
}

// ValidateExclusiveKinds rejects candidate when it would make a second active
// base_ein, monthly_min or per_employee line overlap an existing one
func ValidateExclusiveKinds(existing []*PartnerBilling, candidate *PartnerBilling) error {
	if !candidate.IsActive || !lo.Contains(exclusiveKinds, candidate.Kind) {
		return nil
	}

	for _, line := range existing {
		if line.ID == candidate.ID || !line.IsActive || line.Kind != candidate.Kind {
			continue
		}
		if windowsOverlap(line.StartDate, line.EndDate, candidate.StartDate, candidate.EndDate) {
			return ierr.NewErrorf("partner already has an active %s line", candidate.Kind).
				WithHintf("Only one active %s billing line is allowed per partner at a time", candidate.Kind).
				WithReportableDetails(map[string]any{
					"billing_type":        candidate.Kind,
					"conflicting_line_id": line.ID,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func windowsOverlap(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && aEnd.Before(bStart) {
		return false
	}
	if bEnd != nil && bEnd.Before(aStart) {
		return false
	}
	return true
}
