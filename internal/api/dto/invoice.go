package dto

import (
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/billing"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/flexprice/partnerbilling/internal/validator"
	"github.com/shopspring/decimal"
)

// LineOverride replaces the computed amount of a recurring or one-time line
type LineOverride struct {
	// ID is the recurring candidate id or the one-time fee id
	ID             string           `json:"id" validate:"required"`
	InvoicedAmount *decimal.Decimal `json:"invoiced_amount" swaggertype:"string"`
	OverrideReason string           `json:"override_reason"`
}

// InvoiceSelection is what the operator picked on the invoice screen. A nil
// list selects every candidate; an empty list selects none.
type InvoiceSelection struct {
	SelectedClientCodes   []string       `json:"selected_client_codes"`
	SelectedRecurringIDs  []string       `json:"selected_recurring_ids"`
	SelectedOneTimeFeeIDs []string       `json:"selected_one_time_fee_ids"`
	RecurringOverrides    []LineOverride `json:"recurring_overrides,omitempty" validate:"omitempty,dive"`
	OneTimeOverrides      []LineOverride `json:"one_time_overrides,omitempty" validate:"omitempty,dive"`
	// AcknowledgeWarnings confirms generation despite fee warnings
	AcknowledgeWarnings bool `json:"acknowledge_warnings"`
}

// Overrides returns the recurring and one-time overrides keyed by id
func (s InvoiceSelection) Overrides() (map[string]billing.Override, map[string]billing.Override) {
	return toOverrideMap(s.RecurringOverrides), toOverrideMap(s.OneTimeOverrides)
}

func toOverrideMap(overrides []LineOverride) map[string]billing.Override {
	out := make(map[string]billing.Override, len(overrides))
	for _, o := range overrides {
		out[o.ID] = billing.Override{
			Amount: o.InvoicedAmount,
			Reason: o.OverrideReason,
		}
	}
	return out
}

type GenerateInvoiceRequest struct {
	PartnerID    string     `json:"partner_id" validate:"required"`
	InvoiceMonth string     `json:"invoice_month" validate:"required,yearmonth"`
	InvoiceDate  *time.Time `json:"invoice_date,omitempty"`
	InvoiceSelection
	// IdempotencyKey makes retried requests return the invoice of the first one
	IdempotencyKey *string `json:"idempotency_key,omitempty"`
}

func (r *GenerateInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Month returns the parsed invoice month; call after Validate
func (r *GenerateInvoiceRequest) Month() types.YearMonth {
	m, _ := types.ParseYearMonth(r.InvoiceMonth)
	return m
}

type RegenerateInvoiceRequest struct {
	InvoiceSelection
}

func (r *RegenerateInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type InvoiceResponse struct {
	*invoice.Invoice
	Totals invoice.Totals `json:"totals"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice: inv,
		Totals:  inv.Totals(),
	}
}

// ListInvoicesResponse carries the page of invoices and the totals across it
type ListInvoicesResponse struct {
	Items      []*InvoiceResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
	Totals     invoice.Totals           `json:"totals"`
}

type InvoicePreviewResponse struct {
	PartnerID    string          `json:"partner_id"`
	PartnerCode  string          `json:"partner_code"`
	PartnerName  string          `json:"partner_name"`
	InvoiceMonth types.YearMonth `json:"invoice_month"`

	MonthlyFees   []*invoice.MonthlyFeeLine   `json:"monthly_fees"`
	RecurringFees []*invoice.RecurringFeeLine `json:"recurring_fees"`
	OneTimeFees   []*invoice.OneTimeFeeLine   `json:"one_time_fees"`
	Totals        invoice.Totals              `json:"totals"`
	Shortfall     decimal.Decimal             `json:"minimum_shortfall" swaggertype:"string"`
	Warnings      []billing.LineWarning       `json:"warnings"`

	// the full candidate pools the selection was made from
	RecurringCandidates []billing.RecurringCandidate `json:"recurring_candidates"`
	EligibleOneTimeFees []*onetimefee.OneTimeFee     `json:"eligible_one_time_fees"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r *UpdateInvoiceStatusRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type UpdateInvoiceLineRequest struct {
	LineType       types.InvoiceLineType `json:"line_type" validate:"required"`
	InvoicedAmount decimal.Decimal       `json:"invoiced_amount" swaggertype:"string"`
	OverrideReason string                `json:"override_reason"`
}

func (r *UpdateInvoiceLineRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.LineType.Validate()
}
