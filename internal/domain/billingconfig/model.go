package billingconfig

import (
	"strings"
	"time"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/shopspring/decimal"
)

// PartnerBilling is one billing line configured for a partner
type PartnerBilling struct {
	ID            string `db:"id" json:"id"`
	PartnerID     string `db:"partner_id" json:"partner_id"`
	BillingItemID string `db:"billing_item_id" json:"billing_item_id"`

	// denormalized from the billing item on read
	ItemCode string            `db:"item_code" json:"item_code"`
	ItemName string            `db:"item_name" json:"item_name"`
	Kind     types.BillingKind `db:"billing_type" json:"billing_type"`

	// Amount is the flat amount of the line, zero for tiered per employee lines
	Amount      decimal.Decimal        `db:"amount" json:"amount" swaggertype:"string"`
	Frequency   types.BillingFrequency `db:"billing_frequency" json:"billing_frequency"`
	StartDate   time.Time              `db:"start_date" json:"start_date"`
	EndDate     *time.Time             `db:"end_date" json:"end_date,omitempty"`
	IsActive    bool                   `db:"is_active" json:"is_active"`
	Description string                 `db:"description" json:"description"`

	Tiers []*RateTier `db:"-" json:"tiers,omitempty"`

	types.BaseModel
}

// RateTier is a per employee rate band owned by a per_employee line
type RateTier struct {
	ID               string          `db:"id" json:"id"`
	PartnerBillingID string          `db:"partner_billing_id" json:"partner_billing_id"`
	TierMin          int             `db:"tier_min" json:"tier_min"`
	TierMax          int             `db:"tier_max" json:"tier_max"`
	PerEmployeeRate  decimal.Decimal `db:"per_employee_rate" json:"per_employee_rate" swaggertype:"string"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// ClientBilling is a recurring charge configured for a single client of a partner
type ClientBilling struct {
	ID            string `db:"id" json:"id"`
	PartnerID     string `db:"partner_id" json:"partner_id"`
	ClientCode    string `db:"client_code" json:"client_code"`
	ClientName    string `db:"client_name" json:"client_name"`
	BillingItemID string `db:"billing_item_id" json:"billing_item_id"`

	ItemCode string `db:"item_code" json:"item_code"`
	ItemName string `db:"item_name" json:"item_name"`

	BaseAmount decimal.Decimal `db:"base_amount" json:"base_amount" swaggertype:"string"`
	// PerEmployeeAmount is multiplied by the client's active employees for the period when set
	PerEmployeeAmount decimal.NullDecimal `db:"per_employee_amount" json:"per_employee_amount" swaggertype:"string"`

	BillingDate time.Time  `db:"billing_date" json:"billing_date"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`

	types.BaseModel
}

// EffectiveIn reports whether the line is active and its window overlaps the month
func (b *PartnerBilling) EffectiveIn(month types.YearMonth) bool {
	return b.IsActive && windowOverlaps(b.StartDate, b.EndDate, month)
}

// IsTiered reports whether a per employee line is priced through rate tiers
func (b *PartnerBilling) IsTiered() bool {
	return len(b.Tiers) > 0
}

func (b *PartnerBilling) Validate() error {
	if b.PartnerID == "" || b.BillingItemID == "" {
		return ierr.NewError("partner and billing item are required").
			WithHint("Please select a partner and a billing item").
			Mark(ierr.ErrValidation)
	}
	if b.Amount.IsNegative() {
		return ierr.NewError("amount cannot be negative").
			WithHint("Billing amount must be zero or greater").
			WithReportableDetails(map[string]any{
				"amount": b.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if err := b.Frequency.Validate(); err != nil {
		return err
	}
	if b.StartDate.IsZero() {
		return ierr.NewError("start date is required").
			WithHint("Please provide a start date").
			Mark(ierr.ErrValidation)
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return ierr.NewError("end date is before start date").
			WithHint("End date must be on or after the start date").
			Mark(ierr.ErrValidation)
	}
	if len(b.Tiers) > 0 && b.Kind != "" && b.Kind != types.BillingKindPerEmployee {
		return ierr.NewError("rate tiers are only allowed on per employee lines").
			WithHint("Remove the tiers or select a per employee billing item").
			Mark(ierr.ErrValidation)
	}
	return ValidateTiers(b.Tiers)
}

// EffectiveIn reports whether the client charge is active and its window overlaps the month
func (c *ClientBilling) EffectiveIn(month types.YearMonth) bool {
	return c.IsActive && windowOverlaps(c.BillingDate, c.EndDate, month)
}

// HasPerEmployeeAmount reports whether the charge scales with the client's employee count
func (c *ClientBilling) HasPerEmployeeAmount() bool {
	return c.PerEmployeeAmount.Valid && c.PerEmployeeAmount.Decimal.IsPositive()
}

func (c *ClientBilling) Validate() error {
	if strings.TrimSpace(c.ClientCode) == "" || strings.TrimSpace(c.ClientName) == "" {
		return ierr.NewError("client code and client name are required").
			WithHint("Client ID and Client Name are required").
			Mark(ierr.ErrValidation)
	}
	if c.PartnerID == "" || c.BillingItemID == "" {
		return ierr.NewError("partner and billing item are required").
			WithHint("Please select a partner and a billing item").
			Mark(ierr.ErrValidation)
	}
	if c.BaseAmount.IsNegative() || (c.PerEmployeeAmount.Valid && c.PerEmployeeAmount.Decimal.IsNegative()) {
		return ierr.NewError("amounts cannot be negative").
			WithHint("Base and per employee amounts must be zero or greater").
			Mark(ierr.ErrValidation)
	}
	if c.BillingDate.IsZero() {
		return ierr.NewError("billing date is required").
			WithHint("Please provide a billing date").
			Mark(ierr.ErrValidation)
	}
	if c.EndDate != nil && c.EndDate.Before(c.BillingDate) {
		return ierr.NewError("end date is before billing date").
			WithHint("End date must be on or after the billing date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func windowOverlaps(start time.Time, end *time.Time, month types.YearMonth) bool {
	if start.After(month.End()) {
		return false
	}
	if end != nil && end.Before(month.Start()) {
		return false
	}
	return true
}
