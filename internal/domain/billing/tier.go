package billing

import (
	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/shopspring/decimal"
)

// PerEmployeePricing is everything needed to price a headcount
type PerEmployeePricing struct {
	Tiers    []*billingconfig.RateTier
	FlatRate decimal.Decimal
	Mode     types.TierMode
}

// PricingFromSnapshot builds the per employee pricing of a partner's snapshot
func PricingFromSnapshot(s *billingconfig.Snapshot, mode types.TierMode) PerEmployeePricing {
	return PerEmployeePricing{
		Tiers:    s.Tiers(),
		FlatRate: s.PerEmployeeRate(),
		Mode:     mode,
	}
}

// ResolveRate picks the per employee rate for a headcount by bracket selection.
// Without tiers the flat rate applies. Otherwise the tier with
// TierMin <= employees <= TierMax wins, and when none matches the highest
// tier's rate applies to the whole count.
func ResolveRate(tiers []*billingconfig.RateTier, flatRate decimal.Decimal, employees int) decimal.Decimal {
	if len(tiers) == 0 {
		return flatRate
	}

	sorted := billingconfig.SortTiers(tiers)
	for _, t := range sorted {
		if employees >= t.TierMin && employees <= t.TierMax {
			return t.PerEmployeeRate
		}
	}
	return sorted[len(sorted)-1].PerEmployeeRate
}

// ComputeBracketFee charges every employee at the resolved bracket rate.
// No employees means no rate and no fee.
func ComputeBracketFee(tiers []*billingconfig.RateTier, flatRate decimal.Decimal, employees int) (decimal.Decimal, decimal.Decimal) {
	if employees <= 0 {
		return decimal.Zero, decimal.Zero
	}
	rate := ResolveRate(tiers, flatRate, employees)
	return rate, rate.Mul(decimal.NewFromInt(int64(employees))).Round(2)
}

// ComputeGraduatedFee charges each band of employees at its own tier's rate.
// Employees are counted from 1; a band runs from the end of the previous tier
// to its own TierMax and the last tier is unbounded. The returned rate is the
// rate of the band holding the last employee.
func ComputeGraduatedFee(tiers []*billingconfig.RateTier, flatRate decimal.Decimal, employees int) (decimal.Decimal, decimal.Decimal) {
	if len(tiers) == 0 || employees <= 0 {
		return ComputeBracketFee(tiers, flatRate, employees)
	}

	sorted := billingconfig.SortTiers(tiers)
	fee := decimal.Zero
	rate := sorted[0].PerEmployeeRate
	lower := 1
	for i, t := range sorted {
		upper := t.TierMax
		if i == len(sorted)-1 || upper > employees {
			upper = employees
		}
		if upper >= lower {
			units := decimal.NewFromInt(int64(upper - lower + 1))
			fee = fee.Add(t.PerEmployeeRate.Mul(units))
			rate = t.PerEmployeeRate
		}
		lower = t.TierMax + 1
		if lower > employees {
			break
		}
	}
	return rate, fee.Round(2)
}

// Fee prices a headcount according to the configured tier mode
func (p PerEmployeePricing) Fee(employees int) (rate decimal.Decimal, fee decimal.Decimal) {
	if p.Mode == types.TierModeGraduated {
		return ComputeGraduatedFee(p.Tiers, p.FlatRate, employees)
	}
	return ComputeBracketFee(p.Tiers, p.FlatRate, employees)
}
