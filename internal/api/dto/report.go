package dto

import (
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/flexprice/partnerbilling/internal/validator"
)

type RevenueReportRequest struct {
	Month string `form:"month" json:"month" validate:"required,yearmonth"`
}

func (r *RevenueReportRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type RevenueReportResponse struct {
	Month    types.YearMonth           `json:"month"`
	Partners []*invoice.PartnerRevenue `json:"partners"`
	Totals   invoice.Totals            `json:"totals"`
}
