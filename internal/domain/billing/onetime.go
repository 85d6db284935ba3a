package billing

import (
	"strings"

	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
)

// ResolveOneTimeFee turns an eligible one-time fee into an invoice line with
// the same override rules as recurring lines
func ResolveOneTimeFee(fee *onetimefee.OneTimeFee, override Override) (*invoice.OneTimeFeeLine, error) {
	original := fee.Amount.Round(2)
	invoiced := override.apply(original)

	if err := invoice.ValidateOverride(fee.ID, original, invoiced, override.Reason); err != nil {
		return nil, err
	}

	line := &invoice.OneTimeFeeLine{
		OneTimeFeeID:   fee.ID,
		BillingItemID:  fee.BillingItemID,
		ClientName:     fee.ClientName,
		ItemCode:       fee.ItemCode,
		ItemName:       fee.ItemName,
		Description:    fee.Description,
		BillingDate:    fee.BillingDate,
		OriginalAmount: original,
		InvoicedAmount: invoiced,
	}
	if invoice.IsOverride(original, invoiced) {
		line.OverrideReason = strings.TrimSpace(override.Reason)
	}
	return line, nil
}
