package invoice

import (
	"time"

	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/shopspring/decimal"
)

// MonthlyFeeLine is the base plus per employee fee of one client for the month.
// Monthly lines are computed only and carry no override.
type MonthlyFeeLine struct {
	ID                   string          `db:"id" json:"id"`
	InvoiceID            string          `db:"invoice_id" json:"invoice_id"`
	ClientCode           string          `db:"client_code" json:"client_code"`
	ClientName           string          `db:"client_name" json:"client_name"`
	IsPayGroupActive     bool            `db:"is_pay_group_active" json:"is_pay_group_active"`
	TotalActiveEmployees int             `db:"total_active_employees" json:"total_active_employees"`
	BaseFeeAmount        decimal.Decimal `db:"base_fee_amount" json:"base_fee_amount" swaggertype:"string"`
	PerEmployeeRate      decimal.Decimal `db:"per_employee_rate" json:"per_employee_rate" swaggertype:"string"`
	PerEmployeeFeeAmount decimal.Decimal `db:"per_employee_fee_amount" json:"per_employee_fee_amount" swaggertype:"string"`
	OriginalAmount       decimal.Decimal `db:"original_amount" json:"original_amount" swaggertype:"string"`
	InvoicedAmount       decimal.Decimal `db:"invoiced_amount" json:"invoiced_amount" swaggertype:"string"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
}

// RecurringFeeLine is a partner or client level recurring charge, or the
// system generated monthly minimum true-up
type RecurringFeeLine struct {
	ID        string                `db:"id" json:"id"`
	InvoiceID string                `db:"invoice_id" json:"invoice_id"`
	Source    types.RecurringSource `db:"source" json:"source"`
	// SourceID is the partner billing or client billing line the charge came from
	SourceID        string                 `db:"source_id" json:"source_id"`
	BillingItemID   string                 `db:"billing_item_id" json:"billing_item_id"`
	ClientCode      string                 `db:"client_code" json:"client_code"`
	ClientName      string                 `db:"client_name" json:"client_name"`
	ItemCode        string                 `db:"item_code" json:"item_code"`
	ItemName        string                 `db:"item_name" json:"item_name"`
	Frequency       types.BillingFrequency `db:"billing_frequency" json:"billing_frequency"`
	OriginalAmount  decimal.Decimal        `db:"original_amount" json:"original_amount" swaggertype:"string"`
	InvoicedAmount  decimal.Decimal        `db:"invoiced_amount" json:"invoiced_amount" swaggertype:"string"`
	OverrideReason  string                 `db:"override_reason" json:"override_reason,omitempty"`
	SystemGenerated bool                   `db:"system_generated" json:"system_generated"`
	Warnings        []types.FeeWarning     `db:"-" json:"warnings,omitempty"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at"`
}

// OneTimeFeeLine is an ad hoc charge billed on the invoice
type OneTimeFeeLine struct {
	ID             string          `db:"id" json:"id"`
	InvoiceID      string          `db:"invoice_id" json:"invoice_id"`
	OneTimeFeeID   string          `db:"one_time_fee_id" json:"one_time_fee_id"`
	BillingItemID  string          `db:"billing_item_id" json:"billing_item_id"`
	ClientName     string          `db:"client_name" json:"client_name"`
	ItemCode       string          `db:"item_code" json:"item_code"`
	ItemName       string          `db:"item_name" json:"item_name"`
	Description    string          `db:"description" json:"description,omitempty"`
	BillingDate    time.Time       `db:"billing_date" json:"billing_date"`
	OriginalAmount decimal.Decimal `db:"original_amount" json:"original_amount" swaggertype:"string"`
	InvoicedAmount decimal.Decimal `db:"invoiced_amount" json:"invoiced_amount" swaggertype:"string"`
	OverrideReason string          `db:"override_reason" json:"override_reason,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

func (l *RecurringFeeLine) Validate() error {
	if l.SystemGenerated {
		return nil
	}
	return ValidateOverride(l.ID, l.OriginalAmount, l.InvoicedAmount, l.OverrideReason)
}

func (l *OneTimeFeeLine) Validate() error {
	return ValidateOverride(l.ID, l.OriginalAmount, l.InvoicedAmount, l.OverrideReason)
}

// IsOverridden reports whether the invoiced amount differs from the computed one
func (l *RecurringFeeLine) IsOverridden() bool {
	return IsOverride(l.OriginalAmount, l.InvoicedAmount)
}

func (l *OneTimeFeeLine) IsOverridden() bool {
	return IsOverride(l.OriginalAmount, l.InvoicedAmount)
}
