package onetimefee

import (
	"testing"
	"time"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOneTimeFeeValidate(t *testing.T) {
	valid := OneTimeFee{
		PartnerID:     "ptr_1",
		ClientName:    "Widgets Inc",
		BillingItemID: "item_setup",
		Amount:        decimal.NewFromInt(100),
		BillingDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, valid.Validate())

	missingClient := valid
	missingClient.ClientName = " "
	assert.True(t, ierr.IsValidation(missingClient.Validate()))

	zeroAmount := valid
	zeroAmount.Amount = decimal.Zero
	assert.True(t, ierr.IsValidation(zeroAmount.Validate()))

	negative := valid
	negative.Amount = decimal.NewFromInt(-5)
	assert.True(t, ierr.IsValidation(negative.Validate()))
}

func TestEligibleFilterValidate(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, (&EligibleFilter{PartnerID: "ptr_1", From: from, To: to}).Validate())
	assert.Error(t, (&EligibleFilter{From: from, To: to}).Validate())
	assert.Error(t, (&EligibleFilter{PartnerID: "ptr_1", From: to, To: from}).Validate())
	assert.Error(t, (&EligibleFilter{PartnerID: "ptr_1"}).Validate())
}
