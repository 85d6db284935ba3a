package invoice

import (
	"context"

	"github.com/flexprice/partnerbilling/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create inserts the invoice together with all of its lines
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID with its lines
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetByIdempotencyKey returns the invoice generated for the key
	GetByIdempotencyKey(ctx context.Context, key string) (*Invoice, error)

	// Update persists status, timestamps and audit fields of the invoice header
	Update(ctx context.Context, invoice *Invoice) error

	// ReplaceLines deletes every line of the invoice and inserts its current lines
	ReplaceLines(ctx context.Context, invoice *Invoice) error

	// UpdateRecurringLine persists the invoiced amount and reason of a recurring line
	UpdateRecurringLine(ctx context.Context, line *RecurringFeeLine) error

	// UpdateOneTimeLine persists the invoiced amount and reason of a one-time line
	UpdateOneTimeLine(ctx context.Context, line *OneTimeFeeLine) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// NextSequence reserves the next invoice sequence for the partner and month
	NextSequence(ctx context.Context, partnerCode string, month types.YearMonth) (int, error)

	// RevenueByPartner sums final invoices of the month per partner
	RevenueByPartner(ctx context.Context, month types.YearMonth) ([]*PartnerRevenue, error)
}
