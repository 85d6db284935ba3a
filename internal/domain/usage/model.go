package usage

import (
	"strings"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/partner"
	"github.com/flexprice/partnerbilling/internal/types"
)

// MonthlyUsageRecord is one client pay group row of a monthly usage import
type MonthlyUsageRecord struct {
	ID         string          `db:"id" json:"id"`
	Period     types.YearMonth `db:"month_year" json:"month_year"`
	ClientCode string          `db:"client_code" json:"client_code"`
	ClientName string          `db:"client_name" json:"client_name"`

	LegalName    string `db:"legal_name" json:"legal_name,omitempty"`
	FEIN         string `db:"fein" json:"fein,omitempty"`
	StateCode    string `db:"state_code" json:"state_code,omitempty"`
	PayGroupName string `db:"pay_group_name" json:"pay_group_name,omitempty"`

	IsPayGroupActive     bool `db:"is_pay_group_active" json:"is_pay_group_active"`
	TotalActiveEmployees int  `db:"total_active_employees" json:"total_active_employees"`
	TotalEmployeesPaid   int  `db:"total_employees_paid" json:"total_employees_paid"`

	// ImportReference ties the row to the import batch that produced it
	ImportReference string    `db:"import_reference" json:"import_reference,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// PartnerCode is the partner owning the client, derived from the client code prefix
func (r *MonthlyUsageRecord) PartnerCode() string {
	return partner.CodeFromClientCode(r.ClientCode)
}

// Normalize brings a raw row into calculation ready form. Strings are trimmed,
// the client code is upper cased and negative counts are clamped to zero.
func Normalize(r MonthlyUsageRecord) MonthlyUsageRecord {
	r.ClientCode = strings.ToUpper(strings.TrimSpace(r.ClientCode))
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.LegalName = strings.TrimSpace(r.LegalName)
	r.FEIN = strings.TrimSpace(r.FEIN)
	r.StateCode = strings.ToUpper(strings.TrimSpace(r.StateCode))
	r.PayGroupName = strings.TrimSpace(r.PayGroupName)
	if r.TotalActiveEmployees < 0 {
		r.TotalActiveEmployees = 0
	}
	if r.TotalEmployeesPaid < 0 {
		r.TotalEmployeesPaid = 0
	}
	return r
}

// ImportBatch is one month of parsed usage rows handed over by an importer
type ImportBatch struct {
	Reference string
	Period    types.YearMonth
	Source    string
	Records   []MonthlyUsageRecord
}
