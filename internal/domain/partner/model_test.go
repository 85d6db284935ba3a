package partner

import (
	"testing"
	"time"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeFromClientCode(t *testing.T) {
	assert.Equal(t, "ACME", CodeFromClientCode("acme0012"))
	assert.Equal(t, "ACME", CodeFromClientCode(" ACME-77 "))
	assert.Equal(t, "AB", CodeFromClientCode("ab"))

	p := &Partner{PartnerCode: "acme"}
	assert.True(t, p.OwnsClient("ACME0001"))
	assert.False(t, p.OwnsClient("ACMX0001"))
}

func TestPartnerValidate(t *testing.T) {
	tests := []struct {
		name    string
		partner Partner
		wantErr bool
	}{
		{name: "valid", partner: Partner{PartnerCode: "ACME", Name: "Acme Payroll"}},
		{name: "short code", partner: Partner{PartnerCode: "AC", Name: "Acme"}, wantErr: true},
		{name: "missing name", partner: Partner{PartnerCode: "ACME", Name: "  "}, wantErr: true},
		{name: "negative term", partner: Partner{PartnerCode: "ACME", Name: "Acme", ContractTermMonths: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.partner.Validate()
			if tt.wantErr {
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRenewalDate(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	p := &Partner{ContractStart: &start, ContractTermMonths: 12}
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), *p.RenewalDate())

	override := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	p.OverrideRenewalDate = &override
	assert.Equal(t, override, *p.RenewalDate())

	assert.Nil(t, (&Partner{}).RenewalDate())
}
