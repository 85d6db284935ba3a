package types

import (
	"testing"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestBillingKind(t *testing.T) {
	for _, k := range []BillingKind{BillingKindBaseEIN, BillingKindPerEmployee, BillingKindMonthlyMin} {
		assert.NoError(t, k.Validate())
		assert.True(t, k.IsMonthlyComponent(), k)
	}
	for _, k := range []BillingKind{BillingKindStandard, BillingKindPartnerBilling} {
		assert.NoError(t, k.Validate())
		assert.False(t, k.IsMonthlyComponent(), k)
	}

	err := BillingKind("weekly_fee").Validate()
	assert.True(t, ierr.IsValidation(err))
}

func TestEnumsValidate(t *testing.T) {
	assert.NoError(t, BillingFrequencyQuarterly.Validate())
	assert.Error(t, BillingFrequency("weekly").Validate())

	assert.NoError(t, TierModeGraduated.Validate())
	assert.Error(t, TierMode("stepped").Validate())

	assert.NoError(t, RoleBillingManager.Validate())
	assert.Error(t, Role("owner").Validate())
}
