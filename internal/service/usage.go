package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/domain/billing"
	"github.com/flexprice/partnerbilling/internal/domain/partner"
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/s3"
	"github.com/flexprice/partnerbilling/internal/types"
)

// UsageService imports and serves the monthly usage data invoices are calculated from
type UsageService interface {
	// ImportUsage replaces the month's usage with the given rows
	ImportUsage(ctx context.Context, req dto.ImportUsageRequest) (*dto.ImportUsageResponse, error)
	// ImportUsageCSV parses an uploaded CSV file and replaces the month's usage with it
	ImportUsageCSV(ctx context.Context, month string, filename string, data []byte) (*dto.ImportUsageResponse, error)
	ListMonths(ctx context.Context) (*dto.ListUsageMonthsResponse, error)
	GetMonth(ctx context.Context, month string) (*dto.UsageResponse, error)
	GetPartnerUsage(ctx context.Context, partnerID string, month string) (*dto.UsageResponse, error)
}

type usageService struct {
	ServiceParams
}

func NewUsageService(params ServiceParams) UsageService {
	return &usageService{
		ServiceParams: params,
	}
}

func (s *usageService) ImportUsage(ctx context.Context, req dto.ImportUsageRequest) (*dto.ImportUsageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	period, err := types.ParseYearMonth(req.Month)
	if err != nil {
		return nil, err
	}

	records := make([]usage.MonthlyUsageRecord, 0, len(req.Rows))
	for i, row := range req.Rows {
		record := row.ToRecord(period)
		if record.ClientCode == "" {
			return nil, rowError(i+1, "client code is required")
		}
		records = append(records, record)
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode usage import").
			Mark(ierr.ErrSystem)
	}

	return s.importBatch(ctx, &usage.ImportBatch{
		Reference: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_USAGE_IMPORT),
		Period:    period,
		Source:    string(s3.DocumentKindJSON),
		Records:   records,
	}, raw)
}

func (s *usageService) ImportUsageCSV(ctx context.Context, month string, filename string, data []byte) (*dto.ImportUsageResponse, error) {
	period, err := types.ParseYearMonth(month)
	if err != nil {
		return nil, err
	}

	parser := NewUsageCSVParser(s.Logger)
	records, err := parser.Parse(period, data)
	if err != nil {
		return nil, err
	}

	s.Logger.Debugw("parsed usage csv",
		"filename", filename,
		"month", period,
		"rows", len(records),
	)

	return s.importBatch(ctx, &usage.ImportBatch{
		Reference: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_USAGE_IMPORT),
		Period:    period,
		Source:    string(s3.DocumentKindCSV),
		Records:   records,
	}, data)
}

// importBatch aggregates the rows per client and swaps them in for the month
// in one transaction. The raw upload is archived afterwards when enabled.
func (s *usageService) importBatch(ctx context.Context, batch *usage.ImportBatch, raw []byte) (*dto.ImportUsageResponse, error) {
	now := time.Now().UTC()
	records := billing.Aggregate(batch.Records)
	for i := range records {
		records[i].ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE_RECORD)
		records[i].Period = batch.Period
		records[i].ImportReference = batch.Reference
		records[i].CreatedAt = now
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		return s.UsageRepo.ReplaceMonth(ctx, batch.Period, records)
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ImportUsageResponse{
		Reference:       batch.Reference,
		Month:           batch.Period,
		RowsReceived:    len(batch.Records),
		ClientsImported: len(records),
	}

	if s.S3 != nil {
		doc := s3.NewUsageImportDocument(batch.Reference, batch.Period, raw, s3.DocumentKind(batch.Source))
		key, err := s.S3.UploadUsageImport(ctx, doc)
		if err != nil {
			// the import itself is committed, a missing archive is only logged
			s.Logger.Errorw("failed to archive usage import",
				"reference", batch.Reference,
				"month", batch.Period,
				"error", err,
			)
		} else {
			resp.ArchiveKey = key
		}
	}

	s.Logger.Infow("imported monthly usage",
		"reference", batch.Reference,
		"month", batch.Period,
		"source", batch.Source,
		"rows_received", resp.RowsReceived,
		"clients_imported", resp.ClientsImported,
	)
	return resp, nil
}

func (s *usageService) ListMonths(ctx context.Context) (*dto.ListUsageMonthsResponse, error) {
	months, err := s.UsageRepo.ListMonths(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ListUsageMonthsResponse{Months: months}, nil
}

func (s *usageService) GetMonth(ctx context.Context, month string) (*dto.UsageResponse, error) {
	period, err := types.ParseYearMonth(month)
	if err != nil {
		return nil, err
	}

	records, err := s.UsageRepo.ListByMonth(ctx, period)
	if err != nil {
		return nil, err
	}
	return dto.NewUsageResponse(period, records), nil
}

func (s *usageService) GetPartnerUsage(ctx context.Context, partnerID string, month string) (*dto.UsageResponse, error) {
	period, err := types.ParseYearMonth(month)
	if err != nil {
		return nil, err
	}

	p, err := s.PartnerRepo.Get(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	records, err := s.UsageRepo.ListByPartnerCode(ctx, partner.NormalizeCode(p.PartnerCode), period)
	if err != nil {
		return nil, err
	}
	return dto.NewUsageResponse(period, records), nil
}

// rowError reports a problem with one import row, rows are numbered from 1
func rowError(row int, msg string) error {
	return ierr.NewErrorf("row %d: %s", row, msg).
		WithHintf("Row %d: %s", row, msg).
		WithReportableDetails(map[string]any{
			"row": row,
		}).
		Mark(ierr.ErrValidation)
}
