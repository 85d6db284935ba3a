package onetimefee

import (
	"strings"
	"time"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/shopspring/decimal"
)

// OneTimeFee is an ad hoc charge for a partner's client tied to a billing date.
// It can be billed once; voiding the invoice it was billed on releases it again.
type OneTimeFee struct {
	ID            string          `db:"id" json:"id"`
	PartnerID     string          `db:"partner_id" json:"partner_id"`
	ClientName    string          `db:"client_name" json:"client_name"`
	BillingItemID string          `db:"billing_item_id" json:"billing_item_id"`
	Description   string          `db:"description" json:"description"`
	Amount        decimal.Decimal `db:"amount" json:"amount" swaggertype:"string"`
	BillingDate   time.Time       `db:"billing_date" json:"billing_date"`

	// denormalized on read
	ItemCode    string `db:"item_code" json:"item_code"`
	ItemName    string `db:"item_name" json:"item_name"`
	PartnerCode string `db:"partner_code" json:"partner_code"`
	PartnerName string `db:"partner_name" json:"partner_name"`

	types.BaseModel
}

func (f *OneTimeFee) Validate() error {
	missing := make([]string, 0)
	if f.PartnerID == "" {
		missing = append(missing, "partner_id")
	}
	if strings.TrimSpace(f.ClientName) == "" {
		missing = append(missing, "client_name")
	}
	if f.BillingItemID == "" {
		missing = append(missing, "billing_item_id")
	}
	if f.Amount.IsZero() {
		missing = append(missing, "amount")
	}
	if f.BillingDate.IsZero() {
		missing = append(missing, "billing_date")
	}
	if len(missing) > 0 {
		return ierr.NewError("missing required fields").
			WithHint("Partner, client name, billing item, amount and billing date are required").
			WithReportableDetails(map[string]any{
				"missing": missing,
			}).
			Mark(ierr.ErrValidation)
	}
	if f.Amount.IsNegative() {
		return ierr.NewError("amount cannot be negative").
			WithHint("One-time fee amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// EligibleFilter selects one-time fees that can still be billed
type EligibleFilter struct {
	PartnerID string
	From      time.Time
	To        time.Time
	// FeeIDs restricts the result to the given fees when not empty
	FeeIDs []string
	// ExcludeInvoiceID ignores attachments to this invoice, used when a draft is regenerated
	ExcludeInvoiceID string
}

func (f *EligibleFilter) Validate() error {
	if f.PartnerID == "" {
		return ierr.NewError("partner id is required").
			WithHint("Please select a partner").
			Mark(ierr.ErrValidation)
	}
	if f.From.IsZero() || f.To.IsZero() {
		return ierr.NewError("date range is required").
			WithHint("Please provide a start and end date").
			Mark(ierr.ErrValidation)
	}
	if f.To.Before(f.From) {
		return ierr.NewError("end date is before start date").
			WithHint("End date must be on or after the start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// UnbilledFilter selects fees not billed on a live invoice across all dates
type UnbilledFilter struct {
	// PartnerID restricts the result to one partner when set
	PartnerID string
}
