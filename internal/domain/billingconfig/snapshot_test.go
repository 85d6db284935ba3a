package billingconfig

import (
	"testing"
	"time"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func line(id string, kind types.BillingKind, amount string, start time.Time, end *time.Time) *PartnerBilling {
	return &PartnerBilling{
		ID:            id,
		PartnerID:     "ptr_1",
		BillingItemID: "item_" + string(kind),
		Kind:          kind,
		Amount:        decimal.RequireFromString(amount),
		Frequency:     types.BillingFrequencyMonthly,
		StartDate:     start,
		EndDate:       end,
		IsActive:      true,
	}
}

func TestNewSnapshot(t *testing.T) {
	month := types.YearMonth("2025-03")
	lines := []*PartnerBilling{
		line("pb_base", types.BillingKindBaseEIN, "50", date(2024, 1, 1), nil),
		line("pb_emp", types.BillingKindPerEmployee, "2", date(2024, 1, 1), nil),
		line("pb_min", types.BillingKindMonthlyMin, "200", date(2024, 1, 1), nil),
		line("pb_support", types.BillingKindPartnerBilling, "99", date(2025, 3, 31), nil),
		line("pb_expired", types.BillingKindStandard, "10", date(2024, 1, 1), lo.ToPtr(date(2025, 2, 28))),
		line("pb_future", types.BillingKindStandard, "10", date(2025, 4, 1), nil),
	}
	lines[1].Tiers = []*RateTier{
		{TierMin: 6, TierMax: 20, PerEmployeeRate: decimal.NewFromInt(2)},
		{TierMin: 1, TierMax: 5, PerEmployeeRate: decimal.NewFromInt(3)},
	}
	inactive := &ClientBilling{ID: "cb_off", IsActive: false, BillingDate: date(2024, 1, 1)}
	active := &ClientBilling{ID: "cb_on", IsActive: true, BillingDate: date(2025, 3, 15)}

	s := NewSnapshot("ptr_1", month, lines, []*ClientBilling{inactive, active})

	assert.True(t, s.BaseFeeAmount().Equal(decimal.NewFromInt(50)))
	assert.True(t, s.PerEmployeeRate().Equal(decimal.NewFromInt(2)))
	assert.True(t, s.MinimumAmount().Equal(decimal.NewFromInt(200)))
	assert.True(t, s.HasMonthlyMinimum())
	require.Len(t, s.Tiers(), 2)
	assert.Equal(t, 1, s.Tiers()[0].TierMin)
	require.Len(t, s.Recurring, 1)
	assert.Equal(t, "pb_support", s.Recurring[0].ID)
	require.Len(t, s.ClientBillings, 1)
	assert.Equal(t, "cb_on", s.ClientBillings[0].ID)
}

func TestEmptySnapshot(t *testing.T) {
	s := NewSnapshot("ptr_1", "2025-03", nil, nil)
	assert.True(t, s.BaseFeeAmount().IsZero())
	assert.True(t, s.PerEmployeeRate().IsZero())
	assert.True(t, s.MinimumAmount().IsZero())
	assert.False(t, s.HasMonthlyMinimum())
	assert.Empty(t, s.Tiers())
}

func TestValidateExclusiveKinds(t *testing.T) {
	existing := []*PartnerBilling{
		line("pb_base", types.BillingKindBaseEIN, "50", date(2024, 1, 1), lo.ToPtr(date(2024, 12, 31))),
		line("pb_support", types.BillingKindStandard, "99", date(2024, 1, 1), nil),
	}

	t.Run("overlapping base fee rejected", func(t *testing.T) {
		err := ValidateExclusiveKinds(existing, line("", types.BillingKindBaseEIN, "60", date(2024, 6, 1), nil))
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("base fee after previous ends allowed", func(t *testing.T) {
		err := ValidateExclusiveKinds(existing, line("", types.BillingKindBaseEIN, "60", date(2025, 1, 1), nil))
		assert.NoError(t, err)
	})

	t.Run("updating the same line allowed", func(t *testing.T) {
		err := ValidateExclusiveKinds(existing, line("pb_base", types.BillingKindBaseEIN, "55", date(2024, 1, 1), nil))
		assert.NoError(t, err)
	})

	t.Run("standard lines are not exclusive", func(t *testing.T) {
		err := ValidateExclusiveKinds(existing, line("", types.BillingKindStandard, "5", date(2024, 1, 1), nil))
		assert.NoError(t, err)
	})

	t.Run("inactive candidate allowed", func(t *testing.T) {
		candidate := line("", types.BillingKindBaseEIN, "60", date(2024, 6, 1), nil)
		candidate.IsActive = false
		assert.NoError(t, ValidateExclusiveKinds(existing, candidate))
	})
}

func TestValidateTiers(t *testing.T) {
	tier := func(min, max int, rate string) *RateTier {
		return &RateTier{TierMin: min, TierMax: max, PerEmployeeRate: decimal.RequireFromString(rate)}
	}

	tests := []struct {
		name    string
		tiers   []*RateTier
		wantErr bool
	}{
		{name: "empty", tiers: nil},
		{name: "valid unsorted", tiers: []*RateTier{tier(6, 20, "2"), tier(1, 5, "3")}},
		{name: "min equals max", tiers: []*RateTier{tier(5, 5, "3")}, wantErr: true},
		{name: "min above max", tiers: []*RateTier{tier(10, 5, "3")}, wantErr: true},
		{name: "overlap", tiers: []*RateTier{tier(1, 10, "3"), tier(10, 20, "2")}, wantErr: true},
		{name: "negative rate", tiers: []*RateTier{tier(1, 10, "-1")}, wantErr: true},
		{name: "negative min", tiers: []*RateTier{tier(-1, 10, "1")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTiers(tt.tiers)
			if tt.wantErr {
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestClientBillingPerEmployee(t *testing.T) {
	cb := &ClientBilling{}
	assert.False(t, cb.HasPerEmployeeAmount())

	cb.PerEmployeeAmount = decimal.NewNullDecimal(decimal.Zero)
	assert.False(t, cb.HasPerEmployeeAmount())

	cb.PerEmployeeAmount = decimal.NewNullDecimal(decimal.RequireFromString("1.5"))
	assert.True(t, cb.HasPerEmployeeAmount())
}
