package invoice

import (
	"fmt"
	"time"

	"github.com/flexprice/partnerbilling/internal/types"
)

// InvoiceSequence is the last invoice sequence issued to a partner for a month
type InvoiceSequence struct {
	PartnerCode string          `db:"partner_code"`
	YearMonth   types.YearMonth `db:"invoice_month"`
	LastValue   int             `db:"last_value"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// FormatInvoiceNumber renders INV-<partner code>-<YYYY-MM>-<sequence padded to 3>
func FormatInvoiceNumber(partnerCode string, month types.YearMonth, seq int) string {
	return fmt.Sprintf("INV-%s-%s-%03d", partnerCode, month, seq)
}
