package invoice

import (
	"strings"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/shopspring/decimal"
)

// IsOverride is the single predicate deciding whether an invoiced amount is a
// manual override of the computed one. Amounts are compared at cent precision.
func IsOverride(original, invoiced decimal.Decimal) bool {
	return !original.Round(2).Equal(invoiced.Round(2))
}

// ValidateOverride requires a non blank reason whenever invoiced differs from original
func ValidateOverride(lineRef string, original, invoiced decimal.Decimal, reason string) error {
	if invoiced.IsNegative() {
		return ierr.NewError("invoiced amount cannot be negative").
			WithHint("Invoiced amount must be zero or greater").
			WithReportableDetails(map[string]any{
				"line":            lineRef,
				"invoiced_amount": invoiced.StringFixed(2),
			}).
			Mark(ierr.ErrValidation)
	}
	if IsOverride(original, invoiced) && strings.TrimSpace(reason) == "" {
		return ierr.NewError("override reason is required").
			WithHint("Please provide a reason for every overridden amount").
			WithReportableDetails(map[string]any{
				"line":            lineRef,
				"original_amount": original.StringFixed(2),
				"invoiced_amount": invoiced.StringFixed(2),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
