package types

import (
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/samber/lo"
)

// Role is the access level of an operator of the billing tool
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleBillingManager Role = "billing_manager"
	RoleUser           Role = "user"
)

func (r Role) Validate() error {
	allowed := []Role{RoleAdmin, RoleBillingManager, RoleUser}
	if !lo.Contains(allowed, r) {
		return ierr.NewError("invalid role").
			WithHint("Please provide a valid role").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
