package postgres

import (
	"database/sql"
	"strings"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqSerializationFailure = "40001"

	// invoice numbering constraints; a violation means a concurrent generation won the race
	constraintInvoiceNumber   = "invoices_invoice_number_key"
	constraintInvoiceSequence = "invoices_partner_month_sequence_key"
)

// MapError converts driver errors into the application's error sentinels.
// entity names the resource in the hint shown to callers.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if err == sql.ErrNoRows {
		return ierr.WithError(err).
			WithHintf("%s not found", capitalize(entity)).
			Mark(ierr.ErrNotFound)
	}

	if pqErr, ok := err.(*pq.Error); ok {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			if pqErr.Constraint == constraintInvoiceNumber || pqErr.Constraint == constraintInvoiceSequence {
				return ierr.WithError(err).
					WithHint("Invoice number was taken by a concurrent request").
					WithReportableDetails(map[string]any{
						"constraint": pqErr.Constraint,
					}).
					Mark(ierr.ErrVersionConflict)
			}
			return ierr.WithError(err).
				WithHintf("%s already exists", capitalize(entity)).
				WithReportableDetails(map[string]any{
					"constraint": pqErr.Constraint,
				}).
				Mark(ierr.ErrAlreadyExists)
		case pqForeignKeyViolation:
			return ierr.WithError(err).
				WithHintf("%s references a record that does not exist", capitalize(entity)).
				Mark(ierr.ErrValidation)
		case pqSerializationFailure:
			return ierr.WithError(err).
				WithHint("Concurrent update, please retry").
				Mark(ierr.ErrVersionConflict)
		}
	}

	return ierr.WithError(err).
		WithHintf("Failed to access %s", entity).
		Mark(ierr.ErrDatabase)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
