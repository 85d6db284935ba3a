package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	raw := MonthlyUsageRecord{
		ClientCode:           "  acme0001 ",
		ClientName:           " Widgets Inc ",
		StateCode:            "tx",
		TotalActiveEmployees: -4,
		TotalEmployeesPaid:   -1,
		IsPayGroupActive:     true,
	}

	got := Normalize(raw)

	assert.Equal(t, "ACME0001", got.ClientCode)
	assert.Equal(t, "Widgets Inc", got.ClientName)
	assert.Equal(t, "TX", got.StateCode)
	assert.Equal(t, 0, got.TotalActiveEmployees)
	assert.Equal(t, 0, got.TotalEmployeesPaid)
	assert.True(t, got.IsPayGroupActive)
	assert.Equal(t, "ACME", got.PartnerCode())

	// idempotent
	assert.Equal(t, got, Normalize(got))
}
