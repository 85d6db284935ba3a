package billing

import (
	"testing"

	"github.com/flexprice/partnerbilling/internal/domain/usage"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientCandidate(perEmployee string) RecurringCandidate {
	c := RecurringCandidate{
		ID:         "cb_1",
		Source:     types.RecurringSourceClientBilling,
		ClientCode: "ACME0001",
		ClientName: "Widgets Inc",
		ItemName:   "HR Support",
		Frequency:  types.BillingFrequencyMonthly,
		Amount:     dec("25"),
		BaseAmount: dec("25"),
	}
	if perEmployee != "" {
		c.PerEmployeeAmount = decimal.NewNullDecimal(dec(perEmployee))
	}
	return c
}

func TestCalculateRecurringAmount(t *testing.T) {
	idx := NewUsageIndex([]usage.MonthlyUsageRecord{
		{ClientCode: "ACME0001", IsPayGroupActive: true, TotalActiveEmployees: 10},
		{ClientCode: "ACME0002", IsPayGroupActive: false, TotalActiveEmployees: 4},
	})

	t.Run("per employee with usage", func(t *testing.T) {
		amount, warnings := CalculateRecurringAmount(clientCandidate("1.5"), idx)
		assert.Equal(t, "40.00", amount.StringFixed(2))
		assert.Empty(t, warnings)
	})

	t.Run("per employee without usage falls back to flat amount", func(t *testing.T) {
		c := clientCandidate("1.5")
		c.ClientCode = "ACME0099"
		amount, warnings := CalculateRecurringAmount(c, idx)
		assert.Equal(t, "25.00", amount.StringFixed(2))
		require.Len(t, warnings, 1)
		assert.Equal(t, types.WarningClientNotInUsage, warnings[0].Code)
	})

	t.Run("per employee with inactive pay group warns", func(t *testing.T) {
		c := clientCandidate("1.5")
		c.ClientCode = "ACME0002"
		amount, warnings := CalculateRecurringAmount(c, idx)
		assert.Equal(t, "31.00", amount.StringFixed(2))
		require.Len(t, warnings, 1)
		assert.Equal(t, types.WarningClientPayGroupInactive, warnings[0].Code)
	})

	t.Run("flat client charge", func(t *testing.T) {
		c := clientCandidate("")
		c.ClientCode = "ACME0099"
		amount, warnings := CalculateRecurringAmount(c, idx)
		assert.Equal(t, "25.00", amount.StringFixed(2))
		assert.Empty(t, warnings)
	})

	t.Run("partner level charge", func(t *testing.T) {
		c := RecurringCandidate{ID: "pb_1", Source: types.RecurringSourcePartnerBilling, Amount: dec("99.999")}
		amount, _ := CalculateRecurringAmount(c, idx)
		assert.Equal(t, "100.00", amount.StringFixed(2))
	})
}

func TestResolveRecurringFeeOverrides(t *testing.T) {
	idx := NewUsageIndex(nil)
	c := RecurringCandidate{ID: "pb_1", Source: types.RecurringSourcePartnerBilling, Amount: dec("100")}

	line, err := ResolveRecurringFee(c, idx, Override{})
	require.NoError(t, err)
	assert.True(t, line.InvoicedAmount.Equal(dec("100")))
	assert.False(t, line.IsOverridden())

	_, err = ResolveRecurringFee(c, idx, Override{Amount: lo.ToPtr(dec("80"))})
	assert.True(t, ierr.IsValidation(err))

	line, err = ResolveRecurringFee(c, idx, Override{Amount: lo.ToPtr(dec("80")), Reason: "loyalty discount"})
	require.NoError(t, err)
	assert.True(t, line.OriginalAmount.Equal(dec("100")))
	assert.True(t, line.InvoicedAmount.Equal(dec("80")))
	assert.Equal(t, "loyalty discount", line.OverrideReason)

	// an override equal to the calculated amount is not an override
	line, err = ResolveRecurringFee(c, idx, Override{Amount: lo.ToPtr(dec("100.00")), Reason: "noop"})
	require.NoError(t, err)
	assert.Empty(t, line.OverrideReason)
}
