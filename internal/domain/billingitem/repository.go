package billingitem

import (
	"context"

	"github.com/flexprice/partnerbilling/internal/types"
)

// Repository defines the interface for billing item data access
type Repository interface {
	Create(ctx context.Context, item *BillingItem) error
	Get(ctx context.Context, id string) (*BillingItem, error)
	GetByCode(ctx context.Context, code string) (*BillingItem, error)
	List(ctx context.Context, filter *types.BillingItemFilter) ([]*BillingItem, error)
	Update(ctx context.Context, item *BillingItem) error
	// Delete soft deletes the item
	Delete(ctx context.Context, id string) error
	// IsInUse reports whether a partner billing line, client charge or one-time
	// fee still references the item
	IsInUse(ctx context.Context, id string) (bool, error)
}
