package onetimefee

import (
	"context"
)

// Repository defines the interface for one-time fee data access
type Repository interface {
	Create(ctx context.Context, fee *OneTimeFee) error
	// CreateMany inserts all fees or none
	CreateMany(ctx context.Context, fees []*OneTimeFee) error
	Get(ctx context.Context, id string) (*OneTimeFee, error)
	// ListEligible returns fees with a billing date inside the range that are not
	// attached to any invoice whose status is other than void
	ListEligible(ctx context.Context, filter *EligibleFilter) ([]*OneTimeFee, error)
	// ListUnbilled returns every fee not attached to a live invoice, newest billing date first
	ListUnbilled(ctx context.Context, filter *UnbilledFilter) ([]*OneTimeFee, error)
	Update(ctx context.Context, fee *OneTimeFee) error
	Delete(ctx context.Context, id string) error
}
