package service

import (
	"context"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/shopspring/decimal"
)

type ReportService interface {
	// RevenueByPartner totals the final invoices of the month per partner
	RevenueByPartner(ctx context.Context, req dto.RevenueReportRequest) (*dto.RevenueReportResponse, error)
}

type reportService struct {
	ServiceParams
}

func NewReportService(params ServiceParams) ReportService {
	return &reportService{
		ServiceParams: params,
	}
}

func (s *reportService) RevenueByPartner(ctx context.Context, req dto.RevenueReportRequest) (*dto.RevenueReportResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	month, err := types.ParseYearMonth(req.Month)
	if err != nil {
		return nil, err
	}

	partners, err := s.InvoiceRepo.RevenueByPartner(ctx, month)
	if err != nil {
		return nil, err
	}

	totals := invoice.Totals{
		Monthly:   decimal.Zero,
		Recurring: decimal.Zero,
		OneTime:   decimal.Zero,
		Grand:     decimal.Zero,
	}
	for _, p := range partners {
		totals.Monthly = totals.Monthly.Add(p.MonthlyTotal)
		totals.Recurring = totals.Recurring.Add(p.RecurringTotal)
		totals.OneTime = totals.OneTime.Add(p.OneTimeTotal)
	}
	totals.Grand = totals.Monthly.Add(totals.Recurring).Add(totals.OneTime)

	return &dto.RevenueReportResponse{
		Month:    month,
		Partners: partners,
		Totals:   totals,
	}, nil
}
