package postgres

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/partner"
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
	"github.com/flexprice/partnerbilling/internal/types"
)

type usageRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewUsageRepository(db postgres.IClient, logger *logger.Logger) usage.Repository {
	return &usageRepository{db: db, logger: logger}
}

// ReplaceMonth deletes every row of the period and inserts records in one transaction
func (r *usageRepository) ReplaceMonth(ctx context.Context, period types.YearMonth, records []usage.MonthlyUsageRecord) error {
	query := `
		INSERT INTO monthly_billing (
			id, month_year, client_code, client_name, legal_name, fein, state_code,
			pay_group_name, is_pay_group_active, total_active_employees, total_employees_paid,
			import_reference, created_at
		) VALUES (
			:id, :month_year, :client_code, :client_name, :legal_name, :fein, :state_code,
			:pay_group_name, :is_pay_group_active, :total_active_employees, :total_employees_paid,
			:import_reference, :created_at
		)`

	r.logger.Infow("replacing monthly usage",
		"month", period,
		"records", len(records),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)
		result, err := q.ExecContext(ctx, rebind(q, `DELETE FROM monthly_billing WHERE month_year = ?`), period)
		if err != nil {
			return postgres.MapError(err, "monthly usage")
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			r.logger.Debugw("removed previous usage rows", "month", period, "rows", n)
		}

		now := time.Now().UTC()
		for i := range records {
			rec := records[i]
			rec.Period = period
			if rec.ID == "" {
				rec.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE_RECORD)
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = now
			}
			if _, err := q.NamedExecContext(ctx, query, rec); err != nil {
				return postgres.MapError(err, "monthly usage")
			}
		}
		return nil
	})
}

func (r *usageRepository) ListByMonth(ctx context.Context, period types.YearMonth) ([]usage.MonthlyUsageRecord, error) {
	q := r.db.Querier(ctx)
	out := make([]usage.MonthlyUsageRecord, 0)
	query := `SELECT * FROM monthly_billing WHERE month_year = ? ORDER BY client_code`
	if err := q.SelectContext(ctx, &out, rebind(q, query), period); err != nil {
		return nil, postgres.MapError(err, "monthly usage")
	}
	return out, nil
}

// ListByPartnerCode returns the period's rows whose client code starts with the partner code
func (r *usageRepository) ListByPartnerCode(ctx context.Context, partnerCode string, period types.YearMonth) ([]usage.MonthlyUsageRecord, error) {
	q := r.db.Querier(ctx)
	out := make([]usage.MonthlyUsageRecord, 0)
	query := `SELECT * FROM monthly_billing WHERE month_year = ? AND client_code LIKE ? ORDER BY client_code`
	prefix := partner.NormalizeCode(partnerCode) + "%"
	if err := q.SelectContext(ctx, &out, rebind(q, query), period, prefix); err != nil {
		return nil, postgres.MapError(err, "monthly usage")
	}
	return out, nil
}

func (r *usageRepository) ListMonths(ctx context.Context) ([]types.YearMonth, error) {
	q := r.db.Querier(ctx)
	months := make([]types.YearMonth, 0)
	if err := q.SelectContext(ctx, &months, `SELECT DISTINCT month_year FROM monthly_billing ORDER BY month_year DESC`); err != nil {
		return nil, postgres.MapError(err, "monthly usage")
	}
	return months, nil
}
