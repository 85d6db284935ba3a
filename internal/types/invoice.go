package types

import (
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusDraft indicates invoice is editable and can be regenerated
	InvoiceStatusDraft InvoiceStatus = "draft"
	// InvoiceStatusFinal indicates invoice is locked for line edits
	InvoiceStatusFinal InvoiceStatus = "final"
	// InvoiceStatusVoid indicates invoice was cancelled; its lines are kept for audit
	InvoiceStatusVoid InvoiceStatus = "void"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusFinal,
		InvoiceStatusVoid,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceLineType identifies which of the three line groups a line belongs to
type InvoiceLineType string

const (
	InvoiceLineTypeMonthly   InvoiceLineType = "monthly"
	InvoiceLineTypeRecurring InvoiceLineType = "recurring"
	InvoiceLineTypeOneTime   InvoiceLineType = "one_time"
)

func (t InvoiceLineType) Validate() error {
	allowed := []InvoiceLineType{
		InvoiceLineTypeMonthly,
		InvoiceLineTypeRecurring,
		InvoiceLineTypeOneTime,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid invoice line type").
			WithHint("Please provide a valid invoice line type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceFilter represents the filter options for listing invoices
type InvoiceFilter struct {
	*QueryFilter

	PartnerID     string          `json:"partner_id,omitempty" form:"partner_id"`
	InvoiceMonth  YearMonth       `json:"invoice_month,omitempty" form:"invoice_month"`
	InvoiceStatus []InvoiceStatus `json:"invoice_status,omitempty" form:"status"`

	// SkipLineItems if true, will not load line items
	SkipLineItems bool `json:"skip_line_items,omitempty" form:"skip_line_items"`
}

// NewInvoiceFilter creates a new invoice filter with default options
func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitInvoiceFilter creates a new invoice filter without pagination
func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *InvoiceFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.InvoiceMonth != "" {
		if err := f.InvoiceMonth.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.InvoiceStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *InvoiceFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *InvoiceFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return 0
	}
	return f.QueryFilter.GetOffset()
}

func (f *InvoiceFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return false
	}
	return f.QueryFilter.IsUnlimited()
}
