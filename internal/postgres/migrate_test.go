package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrdered(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, "0001_catalog", migrations[0].Version)
	assert.Equal(t, "0003_invoices", migrations[2].Version)
	assert.Contains(t, migrations[2].SQL, constraintInvoiceSequence)
	assert.Contains(t, migrations[2].SQL, constraintInvoiceNumber)
}
