package billingitem

import (
	"strings"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
)

// BillingItem is a catalogue entry referenced by partner, client and one-time billing lines.
// Its kind decides whether a line feeds the monthly fee calculation or is billed as is.
type BillingItem struct {
	ID          string            `db:"id" json:"id"`
	ItemCode    string            `db:"item_code" json:"item_code"`
	Name        string            `db:"item_name" json:"item_name"`
	Description string            `db:"description" json:"description"`
	Kind        types.BillingKind `db:"billing_type" json:"billing_type"`
	IsActive    bool              `db:"is_active" json:"is_active"`

	types.BaseModel
}

func (i *BillingItem) Validate() error {
	if strings.TrimSpace(i.ItemCode) == "" {
		return ierr.NewError("item code is required").
			WithHint("Please provide an item code").
			Mark(ierr.ErrValidation)
	}
	if strings.TrimSpace(i.Name) == "" {
		return ierr.NewError("item name is required").
			WithHint("Please provide an item name").
			Mark(ierr.ErrValidation)
	}
	return i.Kind.Validate()
}
