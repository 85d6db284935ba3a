package billingconfig

import (
	"context"
)

// Repository defines the interface for partner billing lines and their rate tiers
type Repository interface {
	// Create inserts the line together with its tiers
	Create(ctx context.Context, line *PartnerBilling) error
	Get(ctx context.Context, id string) (*PartnerBilling, error)
	// ListByPartner returns every line of the partner ordered by start date, tiers loaded
	ListByPartner(ctx context.Context, partnerID string) ([]*PartnerBilling, error)
	Update(ctx context.Context, line *PartnerBilling) error
	// Delete removes the line; its tiers go with it
	Delete(ctx context.Context, id string) error

	// ReplaceTiers swaps the whole tier set of a line
	ReplaceTiers(ctx context.Context, partnerBillingID string, tiers []*RateTier) error
	ListTiers(ctx context.Context, partnerBillingID string) ([]*RateTier, error)
}

// ClientBillingRepository defines the interface for client level recurring charges
type ClientBillingRepository interface {
	Create(ctx context.Context, cb *ClientBilling) error
	Get(ctx context.Context, id string) (*ClientBilling, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*ClientBilling, error)
	Update(ctx context.Context, cb *ClientBilling) error
	Delete(ctx context.Context, id string) error
}
