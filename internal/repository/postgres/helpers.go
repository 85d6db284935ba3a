package postgres

import (
	"database/sql"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/postgres"
)

// requireAffected turns an update or delete that matched no row into a not found error
func requireAffected(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return postgres.MapError(err, entity)
	}
	if n == 0 {
		return ierr.NewErrorf("%s not found", entity).
			WithHintf("The %s does not exist or was removed", entity).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
