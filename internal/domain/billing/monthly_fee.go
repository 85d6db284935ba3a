package billing

import (
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	"github.com/shopspring/decimal"
)

// MonthlyFee is the base and per employee fee of one client for the month
type MonthlyFee struct {
	Base        decimal.Decimal
	PerEmployee decimal.Decimal
	Total       decimal.Decimal
	Rate        decimal.Decimal
}

// ComputeMonthlyFee prices one aggregated usage record. Inactive pay groups
// are never billed, whatever their headcount.
func ComputeMonthlyFee(record usage.MonthlyUsageRecord, baseFee decimal.Decimal, pricing PerEmployeePricing) MonthlyFee {
	if !record.IsPayGroupActive {
		return MonthlyFee{
			Base:        decimal.Zero,
			PerEmployee: decimal.Zero,
			Total:       decimal.Zero,
			Rate:        decimal.Zero,
		}
	}

	employees := record.TotalActiveEmployees
	if employees < 0 {
		employees = 0
	}

	base := baseFee.Round(2)
	rate, perEmployee := pricing.Fee(employees)
	return MonthlyFee{
		Base:        base,
		PerEmployee: perEmployee,
		Total:       base.Add(perEmployee),
		Rate:        rate,
	}
}
