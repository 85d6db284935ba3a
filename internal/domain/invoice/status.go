package invoice

import (
	"github.com/flexprice/partnerbilling/internal/types"
)

// transitions lists the allowed moves of the invoice state machine. Reopening
// moves a final or void invoice back to draft.
var transitions = map[types.InvoiceStatus][]types.InvoiceStatus{
	types.InvoiceStatusDraft: {types.InvoiceStatusFinal, types.InvoiceStatusVoid},
	types.InvoiceStatusFinal: {types.InvoiceStatusVoid, types.InvoiceStatusDraft},
	types.InvoiceStatusVoid:  {types.InvoiceStatusDraft},
}

// CanTransition reports whether an invoice in status from may move to status to
func CanTransition(from, to types.InvoiceStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an invalid operation error for disallowed moves
func ValidateTransition(inv *Invoice, to types.InvoiceStatus) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if !CanTransition(inv.InvoiceStatus, to) {
		return ErrInvalidTransition(inv, to)
	}
	return nil
}
