package types

import (
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/samber/lo"
)

// BillingKind classifies a billing item and decides how the invoice engine
// treats lines that reference it
type BillingKind string

const (
	// BillingKindBaseEIN is the flat fee charged per active client/pay group
	BillingKindBaseEIN BillingKind = "base_ein"
	// BillingKindPerEmployee is the per active employee fee, flat or tiered
	BillingKindPerEmployee BillingKind = "per_employee"
	// BillingKindMonthlyMin is the partner level floor on monthly base fee revenue
	BillingKindMonthlyMin BillingKind = "monthly_min"
	// BillingKindStandard is a plain recurring or one-time charge
	BillingKindStandard BillingKind = "standard"
	// BillingKindPartnerBilling is a recurring charge billed to the partner itself
	BillingKindPartnerBilling BillingKind = "partner_billing"
)

func (k BillingKind) String() string {
	return string(k)
}

func (k BillingKind) Validate() error {
	allowed := []BillingKind{
		BillingKindBaseEIN,
		BillingKindPerEmployee,
		BillingKindMonthlyMin,
		BillingKindStandard,
		BillingKindPartnerBilling,
	}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("invalid billing kind").
			WithHint("Please provide a valid billing kind").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsMonthlyComponent reports whether lines of this kind feed the monthly fee
// calculation instead of being billed as recurring lines
func (k BillingKind) IsMonthlyComponent() bool {
	return k == BillingKindBaseEIN || k == BillingKindPerEmployee || k == BillingKindMonthlyMin
}

// BillingFrequency is how often a recurring line is billed
type BillingFrequency string

const (
	BillingFrequencyMonthly   BillingFrequency = "monthly"
	BillingFrequencyQuarterly BillingFrequency = "quarterly"
	BillingFrequencyAnnually  BillingFrequency = "annually"
	BillingFrequencyOneTime   BillingFrequency = "one_time"
)

func (f BillingFrequency) Validate() error {
	allowed := []BillingFrequency{
		BillingFrequencyMonthly,
		BillingFrequencyQuarterly,
		BillingFrequencyAnnually,
		BillingFrequencyOneTime,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid billing frequency").
			WithHint("Please provide a valid billing frequency").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RecurringSource tells where a recurring fee candidate was configured
type RecurringSource string

const (
	RecurringSourcePartnerBilling RecurringSource = "partner_billing"
	RecurringSourceClientBilling  RecurringSource = "client_billing"
	// RecurringSourceMonthlyMinimum marks the line emitted by the minimum true-up
	RecurringSourceMonthlyMinimum RecurringSource = "monthly_minimum"
)

// TierMode selects how rate tiers turn an employee count into a fee
type TierMode string

const (
	// TierModeBracket applies the single matched tier's rate to every employee
	TierModeBracket TierMode = "bracket"
	// TierModeGraduated charges each band of employees at its own tier's rate
	TierModeGraduated TierMode = "graduated"
)

func (m TierMode) Validate() error {
	allowed := []TierMode{TierModeBracket, TierModeGraduated}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid tier mode").
			WithHint("Please provide a valid tier mode").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// WarningCode identifies a non-fatal consistency problem on a fee line
type WarningCode string

const (
	WarningClientNotInUsage       WarningCode = "client_not_in_usage"
	WarningClientPayGroupInactive WarningCode = "client_pay_group_inactive"
)

// FeeWarning is attached to a fee line for operator review before generation
type FeeWarning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
