package invoice

import (
	"time"

	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is the persisted result of invoice generation for one partner and month
type Invoice struct {
	ID            string `db:"id" json:"id"`
	InvoiceNumber string `db:"invoice_number" json:"invoice_number"`
	// Sequence is unique per partner and month and is embedded in the invoice number
	Sequence int `db:"sequence" json:"sequence"`

	// partner identity as it was at generation time
	PartnerID   string `db:"partner_id" json:"partner_id"`
	PartnerCode string `db:"partner_code" json:"partner_code"`
	PartnerName string `db:"partner_name" json:"partner_name"`

	InvoiceMonth  types.YearMonth     `db:"invoice_month" json:"invoice_month"`
	InvoiceDate   time.Time           `db:"invoice_date" json:"invoice_date"`
	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	Currency      string              `db:"currency" json:"currency"`

	IdempotencyKey *string    `db:"idempotency_key" json:"idempotency_key,omitempty"`
	FinalizedAt    *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`
	VoidedAt       *time.Time `db:"voided_at" json:"voided_at,omitempty"`

	MonthlyFees   []*MonthlyFeeLine   `db:"-" json:"monthly_fees"`
	RecurringFees []*RecurringFeeLine `db:"-" json:"recurring_fees"`
	OneTimeFees   []*OneTimeFeeLine   `db:"-" json:"one_time_fees"`

	types.BaseModel
}

// Totals are the three group subtotals and their sum
type Totals struct {
	Monthly   decimal.Decimal `json:"monthly" swaggertype:"string"`
	Recurring decimal.Decimal `json:"recurring" swaggertype:"string"`
	OneTime   decimal.Decimal `json:"one_time" swaggertype:"string"`
	Grand     decimal.Decimal `json:"grand" swaggertype:"string"`
}

// Totals sums the invoiced amounts of each line group. The grand total is the
// sum of the rounded subtotals so that it always matches them to the cent.
func (i *Invoice) Totals() Totals {
	t := Totals{
		Monthly:   decimal.Zero,
		Recurring: decimal.Zero,
		OneTime:   decimal.Zero,
	}
	for _, l := range i.MonthlyFees {
		t.Monthly = t.Monthly.Add(l.InvoicedAmount)
	}
	for _, l := range i.RecurringFees {
		t.Recurring = t.Recurring.Add(l.InvoicedAmount)
	}
	for _, l := range i.OneTimeFees {
		t.OneTime = t.OneTime.Add(l.InvoicedAmount)
	}
	t.Monthly = t.Monthly.Round(2)
	t.Recurring = t.Recurring.Round(2)
	t.OneTime = t.OneTime.Round(2)
	t.Grand = t.Monthly.Add(t.Recurring).Add(t.OneTime)
	return t
}

// IsEditable reports whether lines may still be changed
func (i *Invoice) IsEditable() bool {
	return i.InvoiceStatus == types.InvoiceStatusDraft
}

// Validate checks the override invariant on every line
func (i *Invoice) Validate() error {
	for _, l := range i.RecurringFees {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	for _, l := range i.OneTimeFees {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SetLineInvoiceID stamps the invoice id on every line
func (i *Invoice) SetLineInvoiceID() {
	for _, l := range i.MonthlyFees {
		l.InvoiceID = i.ID
	}
	for _, l := range i.RecurringFees {
		l.InvoiceID = i.ID
	}
	for _, l := range i.OneTimeFees {
		l.InvoiceID = i.ID
	}
}

// OneTimeFeeIDs returns the one-time fees billed on this invoice
func (i *Invoice) OneTimeFeeIDs() []string {
	ids := make([]string, 0, len(i.OneTimeFees))
	for _, l := range i.OneTimeFees {
		if l.OneTimeFeeID != "" {
			ids = append(ids, l.OneTimeFeeID)
		}
	}
	return ids
}

// PartnerRevenue is the per partner total of final invoices for a month
type PartnerRevenue struct {
	PartnerID      string          `db:"partner_id" json:"partner_id"`
	PartnerCode    string          `db:"partner_code" json:"partner_code"`
	PartnerName    string          `db:"partner_name" json:"partner_name"`
	InvoiceCount   int             `db:"invoice_count" json:"invoice_count"`
	MonthlyTotal   decimal.Decimal `db:"monthly_total" json:"monthly_total" swaggertype:"string"`
	RecurringTotal decimal.Decimal `db:"recurring_total" json:"recurring_total" swaggertype:"string"`
	OneTimeTotal   decimal.Decimal `db:"one_time_total" json:"one_time_total" swaggertype:"string"`
	GrandTotal     decimal.Decimal `db:"grand_total" json:"grand_total" swaggertype:"string"`
}
