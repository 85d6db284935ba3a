package usage

import (
	"context"

	"github.com/flexprice/partnerbilling/internal/types"
)

// Repository defines the interface for monthly usage data access
type Repository interface {
	// ReplaceMonth deletes every row of the period and inserts records in their place
	ReplaceMonth(ctx context.Context, period types.YearMonth, records []MonthlyUsageRecord) error
	ListByMonth(ctx context.Context, period types.YearMonth) ([]MonthlyUsageRecord, error)
	// ListByPartnerCode returns the rows of the period whose client code starts with partnerCode
	ListByPartnerCode(ctx context.Context, partnerCode string, period types.YearMonth) ([]MonthlyUsageRecord, error)
	// ListMonths returns the distinct imported periods, newest first
	ListMonths(ctx context.Context) ([]types.YearMonth, error)
}
