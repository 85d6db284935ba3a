package billing

import (
	"strings"

	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/shopspring/decimal"
)

const (
	warningClientNotFound   = "Client not found in monthly billing data"
	warningPayGroupInactive = "Client pay group is inactive"
	partnerLevelClientName  = "N/A"
)

// RecurringCandidate is a recurring charge that can be selected for an invoice,
// either a partner level line or a client level charge
type RecurringCandidate struct {
	ID            string                 `json:"id"`
	Source        types.RecurringSource  `json:"source"`
	BillingItemID string                 `json:"billing_item_id"`
	ItemCode      string                 `json:"item_code"`
	ItemName      string                 `json:"item_name"`
	ClientCode    string                 `json:"client_code,omitempty"`
	ClientName    string                 `json:"client_name"`
	Frequency     types.BillingFrequency `json:"billing_frequency"`
	// Amount is the flat amount billed when no per employee calculation applies
	Amount            decimal.Decimal     `json:"amount" swaggertype:"string"`
	BaseAmount        decimal.Decimal     `json:"base_amount" swaggertype:"string"`
	PerEmployeeAmount decimal.NullDecimal `json:"per_employee_amount" swaggertype:"string"`
}

// IsPerEmployee reports whether the candidate scales with the client's headcount
func (c RecurringCandidate) IsPerEmployee() bool {
	return c.Source == types.RecurringSourceClientBilling &&
		c.PerEmployeeAmount.Valid && c.PerEmployeeAmount.Decimal.IsPositive()
}

// RecurringCandidates lists the recurring charges of a snapshot, partner
// level lines first, then client level charges
func RecurringCandidates(s *billingconfig.Snapshot) []RecurringCandidate {
	out := make([]RecurringCandidate, 0, len(s.Recurring)+len(s.ClientBillings))
	for _, pb := range s.Recurring {
		out = append(out, RecurringCandidate{
			ID:            pb.ID,
			Source:        types.RecurringSourcePartnerBilling,
			BillingItemID: pb.BillingItemID,
			ItemCode:      pb.ItemCode,
			ItemName:      pb.ItemName,
			ClientName:    partnerLevelClientName,
			Frequency:     pb.Frequency,
			Amount:        pb.Amount,
			BaseAmount:    decimal.Zero,
		})
	}
	for _, cb := range s.ClientBillings {
		out = append(out, RecurringCandidate{
			ID:                cb.ID,
			Source:            types.RecurringSourceClientBilling,
			BillingItemID:     cb.BillingItemID,
			ItemCode:          cb.ItemCode,
			ItemName:          cb.ItemName,
			ClientCode:        cb.ClientCode,
			ClientName:        cb.ClientName,
			Frequency:         types.BillingFrequencyMonthly,
			Amount:            cb.BaseAmount,
			BaseAmount:        cb.BaseAmount,
			PerEmployeeAmount: cb.PerEmployeeAmount,
		})
	}
	return out
}

// Override is a manual invoiced amount for a line together with its justification
type Override struct {
	Amount *decimal.Decimal
	Reason string
}

// apply returns the invoiced amount for a calculated amount
func (o Override) apply(calculated decimal.Decimal) decimal.Decimal {
	if o.Amount == nil {
		return calculated
	}
	return o.Amount.Round(2)
}

// CalculateRecurringAmount computes the amount of a candidate for the period.
// Client charges with a per employee amount add it per active employee of the
// matching usage record and fall back to the flat amount when there is none.
func CalculateRecurringAmount(c RecurringCandidate, idx UsageIndex) (decimal.Decimal, []types.FeeWarning) {
	if !c.IsPerEmployee() {
		return c.Amount.Round(2), nil
	}

	record, ok := idx.Lookup(c.ClientCode)
	if !ok {
		return c.Amount.Round(2), []types.FeeWarning{{
			Code:    types.WarningClientNotInUsage,
			Message: warningClientNotFound,
		}}
	}

	employees := decimal.NewFromInt(int64(record.TotalActiveEmployees))
	amount := c.BaseAmount.Add(c.PerEmployeeAmount.Decimal.Mul(employees)).Round(2)

	var warnings []types.FeeWarning
	if !record.IsPayGroupActive {
		warnings = append(warnings, types.FeeWarning{
			Code:    types.WarningClientPayGroupInactive,
			Message: warningPayGroupInactive,
		})
	}
	return amount, warnings
}

// ResolveRecurringFee turns a selected candidate into an invoice line. An
// override that differs from the calculated amount needs a reason.
func ResolveRecurringFee(c RecurringCandidate, idx UsageIndex, override Override) (*invoice.RecurringFeeLine, error) {
	calculated, warnings := CalculateRecurringAmount(c, idx)
	invoiced := override.apply(calculated)

	if err := invoice.ValidateOverride(c.ID, calculated, invoiced, override.Reason); err != nil {
		return nil, err
	}

	line := &invoice.RecurringFeeLine{
		Source:         c.Source,
		SourceID:       c.ID,
		BillingItemID:  c.BillingItemID,
		ClientCode:     c.ClientCode,
		ClientName:     c.ClientName,
		ItemCode:       c.ItemCode,
		ItemName:       c.ItemName,
		Frequency:      c.Frequency,
		OriginalAmount: calculated,
		InvoicedAmount: invoiced,
		Warnings:       warnings,
	}
	if invoice.IsOverride(calculated, invoiced) {
		line.OverrideReason = strings.TrimSpace(override.Reason)
	}
	return line, nil
}
