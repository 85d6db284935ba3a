package invoice

import (
	"testing"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIsOverride(t *testing.T) {
	assert.False(t, IsOverride(d("100"), d("100.00")))
	assert.False(t, IsOverride(d("100.001"), d("100")))
	assert.True(t, IsOverride(d("100"), d("120")))
	assert.True(t, IsOverride(d("100"), d("99.99")))
}

func TestValidateOverride(t *testing.T) {
	assert.NoError(t, ValidateOverride("l1", d("100"), d("100"), ""))
	assert.NoError(t, ValidateOverride("l1", d("100"), d("120"), "rate adjustment"))

	err := ValidateOverride("l1", d("100"), d("120"), "   ")
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	err = ValidateOverride("l1", d("100"), d("-1"), "credit")
	assert.True(t, ierr.IsValidation(err))
}

func TestSystemGeneratedLineSkipsOverrideCheck(t *testing.T) {
	l := &RecurringFeeLine{
		OriginalAmount:  d("200"),
		InvoicedAmount:  d("50"),
		SystemGenerated: true,
	}
	assert.NoError(t, l.Validate())

	l.SystemGenerated = false
	assert.True(t, ierr.IsValidation(l.Validate()))
}

func TestTotals(t *testing.T) {
	inv := &Invoice{
		MonthlyFees: []*MonthlyFeeLine{
			{InvoicedAmount: d("70")},
			{InvoicedAmount: d("74")},
			{InvoicedAmount: d("0")},
		},
		RecurringFees: []*RecurringFeeLine{
			{InvoicedAmount: d("50")},
			{InvoicedAmount: d("19.99")},
		},
		OneTimeFees: []*OneTimeFeeLine{
			{InvoicedAmount: d("120")},
			{InvoicedAmount: d("0.01")},
		},
	}

	totals := inv.Totals()
	assert.Equal(t, "144.00", totals.Monthly.StringFixed(2))
	assert.Equal(t, "69.99", totals.Recurring.StringFixed(2))
	assert.Equal(t, "120.01", totals.OneTime.StringFixed(2))
	assert.Equal(t, "334.00", totals.Grand.StringFixed(2))
	assert.True(t, totals.Grand.Equal(totals.Monthly.Add(totals.Recurring).Add(totals.OneTime)))
}

func TestEmptyInvoiceTotals(t *testing.T) {
	totals := (&Invoice{}).Totals()
	assert.True(t, totals.Grand.IsZero())
}

func TestStateMachine(t *testing.T) {
	draft, final, void := types.InvoiceStatusDraft, types.InvoiceStatusFinal, types.InvoiceStatusVoid

	tests := []struct {
		from    types.InvoiceStatus
		to      types.InvoiceStatus
		allowed bool
	}{
		{draft, final, true},
		{draft, void, true},
		{final, void, true},
		{void, draft, true},
		{final, draft, true},
		{void, final, false},
		{draft, draft, false},
		{final, final, false},
		{void, void, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))

			err := ValidateTransition(&Invoice{InvoiceStatus: tt.from}, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, ierr.IsInvalidOperation(err))
			}
		})
	}

	t.Run("unknown status", func(t *testing.T) {
		err := ValidateTransition(&Invoice{InvoiceStatus: draft}, "paid")
		assert.True(t, ierr.IsValidation(err))
	})
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-ACME-2025-03-001", FormatInvoiceNumber("ACME", "2025-03", 1))
	assert.Equal(t, "INV-ACME-2025-03-1234", FormatInvoiceNumber("ACME", "2025-03", 1234))
}
