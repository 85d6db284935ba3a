package dto

import (
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/flexprice/partnerbilling/internal/validator"
	"github.com/samber/lo"
)

// UsageRowRequest is one raw row of a monthly usage import. Missing numbers
// count as zero.
type UsageRowRequest struct {
	ClientCode           string `json:"client_code" validate:"required,max=50"`
	ClientName           string `json:"client_name" validate:"max=255"`
	LegalName            string `json:"legal_name,omitempty"`
	FEIN                 string `json:"fein,omitempty"`
	StateCode            string `json:"state_code,omitempty"`
	PayGroupName         string `json:"pay_group_name,omitempty"`
	IsPayGroupActive     *bool  `json:"is_pay_group_active"`
	TotalActiveEmployees *int   `json:"total_active_employees"`
	TotalEmployeesPaid   *int   `json:"total_employees_paid"`
}

// ToRecord normalizes the row into a usage record for the period
func (r UsageRowRequest) ToRecord(period types.YearMonth) usage.MonthlyUsageRecord {
	return usage.Normalize(usage.MonthlyUsageRecord{
		Period:               period,
		ClientCode:           r.ClientCode,
		ClientName:           r.ClientName,
		LegalName:            r.LegalName,
		FEIN:                 r.FEIN,
		StateCode:            r.StateCode,
		PayGroupName:         r.PayGroupName,
		IsPayGroupActive:     lo.FromPtr(r.IsPayGroupActive),
		TotalActiveEmployees: lo.FromPtr(r.TotalActiveEmployees),
		TotalEmployeesPaid:   lo.FromPtr(r.TotalEmployeesPaid),
	})
}

type ImportUsageRequest struct {
	Month string            `json:"month" validate:"required,yearmonth"`
	Rows  []UsageRowRequest `json:"rows" validate:"required,min=1,dive"`
}

func (r *ImportUsageRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ImportUsageResponse struct {
	// Reference identifies the import batch on every stored row
	Reference       string          `json:"reference"`
	Month           types.YearMonth `json:"month"`
	RowsReceived    int             `json:"rows_received"`
	ClientsImported int             `json:"clients_imported"`
	ArchiveKey      string          `json:"archive_key,omitempty"`
}

type UsageSummary struct {
	Clients              int `json:"clients"`
	ActiveClients        int `json:"active_clients"`
	TotalActiveEmployees int `json:"total_active_employees"`
	TotalEmployeesPaid   int `json:"total_employees_paid"`
}

type UsageResponse struct {
	Month   types.YearMonth            `json:"month"`
	Records []usage.MonthlyUsageRecord `json:"records"`
	Summary UsageSummary               `json:"summary"`
}

func NewUsageResponse(month types.YearMonth, records []usage.MonthlyUsageRecord) *UsageResponse {
	resp := &UsageResponse{
		Month:   month,
		Records: records,
	}
	for _, r := range records {
		resp.Summary.Clients++
		if r.IsPayGroupActive {
			resp.Summary.ActiveClients++
		}
		resp.Summary.TotalActiveEmployees += r.TotalActiveEmployees
		resp.Summary.TotalEmployeesPaid += r.TotalEmployeesPaid
	}
	return resp
}

type ListUsageMonthsResponse struct {
	Months []types.YearMonth `json:"months"`
}
