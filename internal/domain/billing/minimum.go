package billing

import (
	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/shopspring/decimal"
)

// ComputeShortfall is how far the base fees of the active selected clients
// fall below the partner minimum. Per employee fees do not count toward the
// minimum. The result is never negative.
func ComputeShortfall(records []usage.MonthlyUsageRecord, baseFee decimal.Decimal, minimum decimal.Decimal) decimal.Decimal {
	base := baseFee.Round(2)
	total := decimal.Zero
	for _, r := range records {
		if r.IsPayGroupActive {
			total = total.Add(base)
		}
	}

	shortfall := minimum.Round(2).Sub(total)
	if shortfall.IsNegative() {
		return decimal.Zero
	}
	return shortfall
}

// MinimumTrueUpLine builds the system generated recurring line billing the
// shortfall. It returns nil when no minimum is configured or nothing is owed.
func MinimumTrueUpLine(minimum *billingconfig.PartnerBilling, shortfall decimal.Decimal, itemName string) *invoice.RecurringFeeLine {
	if minimum == nil || !shortfall.IsPositive() {
		return nil
	}
	return &invoice.RecurringFeeLine{
		Source:          types.RecurringSourceMonthlyMinimum,
		SourceID:        minimum.ID,
		BillingItemID:   minimum.BillingItemID,
		ClientName:      itemName,
		ItemCode:        minimum.ItemCode,
		ItemName:        itemName,
		Frequency:       types.BillingFrequencyMonthly,
		OriginalAmount:  shortfall,
		InvoicedAmount:  shortfall,
		SystemGenerated: true,
	}
}
