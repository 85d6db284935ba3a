package partner

import (
	"context"

	"github.com/flexprice/partnerbilling/internal/types"
)

// Repository defines the interface for partner data access
type Repository interface {
	Create(ctx context.Context, partner *Partner) error
	Get(ctx context.Context, id string) (*Partner, error)
	GetByCode(ctx context.Context, code string) (*Partner, error)
	List(ctx context.Context, filter *types.PartnerFilter) ([]*Partner, error)
	Count(ctx context.Context, filter *types.PartnerFilter) (int, error)
	Update(ctx context.Context, partner *Partner) error
}
