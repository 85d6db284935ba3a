package postgres

import (
	"fmt"
	"strings"

	"github.com/flexprice/partnerbilling/internal/postgres"
	"github.com/flexprice/partnerbilling/internal/types"
)

// conditions collects WHERE clauses written with ? placeholders. The final
// query is rebound to the driver's placeholder style.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// orderAndPage renders ORDER BY and pagination for a filter. Sort columns not
// in allowed fall back to the default column.
func orderAndPage(filter types.BaseFilter, allowed map[string]string, fallback string) string {
	column, ok := allowed[filter.GetSort()]
	if !ok {
		column = fallback
	}
	order := "DESC"
	if filter.GetOrder() == types.OrderAsc {
		order = "ASC"
	}

	clause := fmt.Sprintf(" ORDER BY %s %s, id %s", column, order, order)
	if filter.IsUnlimited() {
		return clause
	}
	return clause + fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
}

func rebind(q postgres.Querier, query string) string {
	return q.Rebind(query)
}
