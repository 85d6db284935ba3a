package invoice

import (
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
)

// ErrInvalidTransition is returned when the state machine rejects a status change
func ErrInvalidTransition(inv *Invoice, to types.InvoiceStatus) error {
	return ierr.NewErrorf("cannot move invoice from %s to %s", inv.InvoiceStatus, to).
		WithHintf("Invoice %s is %s and cannot be moved to %s", inv.InvoiceNumber, inv.InvoiceStatus, to).
		WithReportableDetails(map[string]any{
			"invoice_id":     inv.ID,
			"current_status": inv.InvoiceStatus,
			"target_status":  to,
		}).
		Mark(ierr.ErrInvalidOperation)
}

// ErrNotEditable is returned when lines of a non draft invoice are changed
func ErrNotEditable(inv *Invoice) error {
	return ierr.NewError("invoice is not a draft").
		WithHintf("Invoice %s is %s, only draft invoices can be changed", inv.InvoiceNumber, inv.InvoiceStatus).
		WithReportableDetails(map[string]any{
			"invoice_id":     inv.ID,
			"current_status": inv.InvoiceStatus,
		}).
		Mark(ierr.ErrInvalidOperation)
}
