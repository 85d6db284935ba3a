package postgres

import (
	"database/sql"
	"errors"
	"testing"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError(nil, "partner"))
	assert.True(t, ierr.IsNotFound(MapError(sql.ErrNoRows, "partner")))

	dup := &pq.Error{Code: "23505", Constraint: "partners_partner_code_key"}
	assert.True(t, ierr.IsAlreadyExists(MapError(dup, "partner")))

	race := &pq.Error{Code: "23505", Constraint: constraintInvoiceSequence}
	assert.True(t, ierr.IsVersionConflict(MapError(race, "invoice")))

	fk := &pq.Error{Code: "23503"}
	assert.True(t, ierr.IsValidation(MapError(fk, "invoice")))

	assert.True(t, ierr.IsDatabase(MapError(errors.New("connection reset"), "invoice")))
}
