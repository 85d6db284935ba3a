package billingconfig

import (
	"sort"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
)

// SortTiers returns a copy of the tiers ordered by TierMin ascending
func SortTiers(tiers []*RateTier) []*RateTier {
	sorted := make([]*RateTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TierMin < sorted[j].TierMin
	})
	return sorted
}

// ValidateTiers checks a tier set as a whole: every tier has min < max and a
// non-negative rate, and no two tiers overlap once sorted by TierMin
func ValidateTiers(tiers []*RateTier) error {
	sorted := SortTiers(tiers)
	for i, t := range sorted {
		if t == nil {
			return ierr.NewError("tier is required").
				WithHint("Tier entries cannot be empty").
				Mark(ierr.ErrValidation)
		}
		if t.TierMin < 0 {
			return ierr.NewError("tier minimum cannot be negative").
				WithHint("Tier minimum must be zero or greater").
				WithReportableDetails(map[string]any{
					"tier_min": t.TierMin,
				}).
				Mark(ierr.ErrValidation)
		}
		if t.TierMin >= t.TierMax {
			return ierr.NewError("tier minimum must be less than tier maximum").
				WithHintf("Tier %d-%d is invalid, minimum must be less than maximum", t.TierMin, t.TierMax).
				WithReportableDetails(map[string]any{
					"tier_min": t.TierMin,
					"tier_max": t.TierMax,
				}).
				Mark(ierr.ErrValidation)
		}
		if t.PerEmployeeRate.IsNegative() {
			return ierr.NewError("tier rate cannot be negative").
				WithHint("Per employee rate must be zero or greater").
				Mark(ierr.ErrValidation)
		}
		if i > 0 && t.TierMin <= sorted[i-1].TierMax {
			prev := sorted[i-1]
			return ierr.NewError("tiers overlap").
				WithHintf("Tier %d-%d overlaps tier %d-%d", t.TierMin, t.TierMax, prev.TierMin, prev.TierMax).
				WithReportableDetails(map[string]any{
					"tier_min":          t.TierMin,
					"tier_max":          t.TierMax,
					"previous_tier_min": prev.TierMin,
					"previous_tier_max": prev.TierMax,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
