package postgres

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type invoiceRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewInvoiceRepository(db postgres.IClient, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

var invoiceSortColumns = map[string]string{
	"created_at":     "created_at",
	"invoice_date":   "invoice_date",
	"invoice_month":  "invoice_month",
	"invoice_number": "invoice_number",
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, invoice_number, sequence, partner_id, partner_code, partner_name,
			invoice_month, invoice_date, invoice_status, currency, idempotency_key,
			finalized_at, voided_at, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :invoice_number, :sequence, :partner_id, :partner_code, :partner_name,
			:invoice_month, :invoice_date, :invoice_status, :currency, :idempotency_key,
			:finalized_at, :voided_at, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"monthly_lines", len(inv.MonthlyFees),
		"recurring_lines", len(inv.RecurringFees),
		"one_time_lines", len(inv.OneTimeFees),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.Querier(ctx).NamedExecContext(ctx, query, inv); err != nil {
			return postgres.MapError(err, "invoice")
		}
		return r.insertLines(ctx, inv)
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	q := r.db.Querier(ctx)
	if err := q.GetContext(ctx, &inv, rebind(q, `SELECT * FROM invoices WHERE id = ? AND status = ?`), id, types.StatusPublished); err != nil {
		return nil, postgres.MapError(err, "invoice")
	}
	if err := r.loadLines(ctx, []*invoice.Invoice{&inv}); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByIdempotencyKey(ctx context.Context, key string) (*invoice.Invoice, error) {
	var id string
	q := r.db.Querier(ctx)
	if err := q.GetContext(ctx, &id, rebind(q, `SELECT id FROM invoices WHERE idempotency_key = ?`), key); err != nil {
		return nil, postgres.MapError(err, "invoice")
	}
	return r.Get(ctx, id)
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices SET
			invoice_status = :invoice_status,
			invoice_date = :invoice_date,
			finalized_at = :finalized_at,
			voided_at = :voided_at,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND status = 'published'`

	r.logger.Debugw("updating invoice",
		"invoice_id", inv.ID,
		"invoice_status", inv.InvoiceStatus,
	)

	result, err := r.db.Querier(ctx).NamedExecContext(ctx, query, inv)
	if err != nil {
		return postgres.MapError(err, "invoice")
	}
	return requireAffected(result, "invoice")
}

func (r *invoiceRepository) ReplaceLines(ctx context.Context, inv *invoice.Invoice) error {
	r.logger.Debugw("replacing invoice lines", "invoice_id", inv.ID)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)
		for _, table := range []string{"invoice_monthly_fees", "invoice_recurring_fees", "invoice_one_time_fees"} {
			if _, err := q.ExecContext(ctx, rebind(q, `DELETE FROM `+table+` WHERE invoice_id = ?`), inv.ID); err != nil {
				return postgres.MapError(err, "invoice line")
			}
		}
		return r.insertLines(ctx, inv)
	})
}

func (r *invoiceRepository) UpdateRecurringLine(ctx context.Context, line *invoice.RecurringFeeLine) error {
	query := `
		UPDATE invoice_recurring_fees SET
			invoiced_amount = :invoiced_amount,
			override_reason = :override_reason
		WHERE id = :id AND invoice_id = :invoice_id`

	result, err := r.db.Querier(ctx).NamedExecContext(ctx, query, line)
	if err != nil {
		return postgres.MapError(err, "invoice line")
	}
	return requireAffected(result, "invoice line")
}

func (r *invoiceRepository) UpdateOneTimeLine(ctx context.Context, line *invoice.OneTimeFeeLine) error {
	query := `
		UPDATE invoice_one_time_fees SET
			invoiced_amount = :invoiced_amount,
			override_reason = :override_reason
		WHERE id = :id AND invoice_id = :invoice_id`

	result, err := r.db.Querier(ctx).NamedExecContext(ctx, query, line)
	if err != nil {
		return postgres.MapError(err, "invoice line")
	}
	return requireAffected(result, "invoice line")
}

func (r *invoiceRepository) filterConditions(filter *types.InvoiceFilter) *conditions {
	c := &conditions{}
	c.add("status = ?", types.StatusPublished)
	if filter == nil {
		return c
	}
	if filter.PartnerID != "" {
		c.add("partner_id = ?", filter.PartnerID)
	}
	if filter.InvoiceMonth != "" {
		c.add("invoice_month = ?", filter.InvoiceMonth)
	}
	if len(filter.InvoiceStatus) > 0 {
		statuses := lo.Map(filter.InvoiceStatus, func(s types.InvoiceStatus, _ int) string { return string(s) })
		c.add("invoice_status = ANY(?)", pq.Array(statuses))
	}
	return c
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	c := r.filterConditions(filter)
	q := r.db.Querier(ctx)
	query := `SELECT * FROM invoices` + c.where() + orderAndPage(filter, invoiceSortColumns, "created_at")

	invoices := make([]*invoice.Invoice, 0)
	if err := q.SelectContext(ctx, &invoices, rebind(q, query), c.args...); err != nil {
		return nil, postgres.MapError(err, "invoice")
	}
	if filter.SkipLineItems || len(invoices) == 0 {
		return invoices, nil
	}
	if err := r.loadLines(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	c := r.filterConditions(filter)
	q := r.db.Querier(ctx)

	var count int
	if err := q.GetContext(ctx, &count, rebind(q, `SELECT COUNT(*) FROM invoices`+c.where()), c.args...); err != nil {
		return 0, postgres.MapError(err, "invoice")
	}
	return count, nil
}

// NextSequence increments the partner's counter for the month, creating it on first use.
// The row lock is held until the surrounding transaction ends.
func (r *invoiceRepository) NextSequence(ctx context.Context, partnerCode string, month types.YearMonth) (int, error) {
	query := `
		INSERT INTO invoice_sequences (partner_code, invoice_month, last_value, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (partner_code, invoice_month) DO UPDATE
		SET last_value = invoice_sequences.last_value + 1,
			updated_at = NOW()
		RETURNING last_value`

	q := r.db.Querier(ctx)
	var seq int
	if err := q.GetContext(ctx, &seq, rebind(q, query), partnerCode, month); err != nil {
		return 0, postgres.MapError(err, "invoice sequence")
	}

	r.logger.Debugw("reserved invoice sequence",
		"partner_code", partnerCode,
		"month", month,
		"sequence", seq,
	)
	return seq, nil
}

func (r *invoiceRepository) RevenueByPartner(ctx context.Context, month types.YearMonth) ([]*invoice.PartnerRevenue, error) {
	query := `
		SELECT
			i.partner_id,
			i.partner_code,
			i.partner_name,
			COUNT(*) AS invoice_count,
			COALESCE(SUM(m.total), 0) AS monthly_total,
			COALESCE(SUM(rf.total), 0) AS recurring_total,
			COALESCE(SUM(o.total), 0) AS one_time_total,
			COALESCE(SUM(m.total), 0) + COALESCE(SUM(rf.total), 0) + COALESCE(SUM(o.total), 0) AS grand_total
		FROM invoices i
		LEFT JOIN (
			SELECT invoice_id, ROUND(SUM(invoiced_amount), 2) AS total FROM invoice_monthly_fees GROUP BY invoice_id
		) m ON m.invoice_id = i.id
		LEFT JOIN (
			SELECT invoice_id, ROUND(SUM(invoiced_amount), 2) AS total FROM invoice_recurring_fees GROUP BY invoice_id
		) rf ON rf.invoice_id = i.id
		LEFT JOIN (
			SELECT invoice_id, ROUND(SUM(invoiced_amount), 2) AS total FROM invoice_one_time_fees GROUP BY invoice_id
		) o ON o.invoice_id = i.id
		WHERE i.invoice_month = ? AND i.invoice_status = ? AND i.status = ?
		GROUP BY i.partner_id, i.partner_code, i.partner_name
		ORDER BY i.partner_code`

	q := r.db.Querier(ctx)
	out := make([]*invoice.PartnerRevenue, 0)
	if err := q.SelectContext(ctx, &out, rebind(q, query), month, types.InvoiceStatusFinal, types.StatusPublished); err != nil {
		return nil, postgres.MapError(err, "invoice")
	}
	return out, nil
}

func (r *invoiceRepository) insertLines(ctx context.Context, inv *invoice.Invoice) error {
	inv.SetLineInvoiceID()
	now := time.Now().UTC()
	q := r.db.Querier(ctx)

	monthly := `
		INSERT INTO invoice_monthly_fees (
			id, invoice_id, client_code, client_name, is_pay_group_active, total_active_employees,
			base_fee_amount, per_employee_rate, per_employee_fee_amount, original_amount, invoiced_amount, created_at
		) VALUES (
			:id, :invoice_id, :client_code, :client_name, :is_pay_group_active, :total_active_employees,
			:base_fee_amount, :per_employee_rate, :per_employee_fee_amount, :original_amount, :invoiced_amount, :created_at
		)`
	for _, l := range inv.MonthlyFees {
		if l.ID == "" {
			l.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_MONTHLY)
		}
		l.CreatedAt = now
		if _, err := q.NamedExecContext(ctx, monthly, l); err != nil {
			return postgres.MapError(err, "invoice line")
		}
	}

	recurring := `
		INSERT INTO invoice_recurring_fees (
			id, invoice_id, source, source_id, billing_item_id, client_code, client_name, item_code, item_name,
			billing_frequency, original_amount, invoiced_amount, override_reason, system_generated, created_at
		) VALUES (
			:id, :invoice_id, :source, :source_id, :billing_item_id, :client_code, :client_name, :item_code, :item_name,
			:billing_frequency, :original_amount, :invoiced_amount, :override_reason, :system_generated, :created_at
		)`
	for _, l := range inv.RecurringFees {
		if l.ID == "" {
			l.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_RECURRING)
		}
		l.CreatedAt = now
		if _, err := q.NamedExecContext(ctx, recurring, l); err != nil {
			return postgres.MapError(err, "invoice line")
		}
	}

	oneTime := `
		INSERT INTO invoice_one_time_fees (
			id, invoice_id, one_time_fee_id, billing_item_id, client_name, item_code, item_name,
			description, billing_date, original_amount, invoiced_amount, override_reason, created_at
		) VALUES (
			:id, :invoice_id, :one_time_fee_id, :billing_item_id, :client_name, :item_code, :item_name,
			:description, :billing_date, :original_amount, :invoiced_amount, :override_reason, :created_at
		)`
	for _, l := range inv.OneTimeFees {
		if l.ID == "" {
			l.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_ONE_TIME)
		}
		l.CreatedAt = now
		if _, err := q.NamedExecContext(ctx, oneTime, l); err != nil {
			return postgres.MapError(err, "invoice line")
		}
	}
	return nil
}

// loadLines fetches the lines of every invoice with one query per line group
func (r *invoiceRepository) loadLines(ctx context.Context, invoices []*invoice.Invoice) error {
	ids := pq.Array(lo.Map(invoices, func(i *invoice.Invoice, _ int) string { return i.ID }))
	q := r.db.Querier(ctx)

	monthly := make([]*invoice.MonthlyFeeLine, 0)
	if err := q.SelectContext(ctx, &monthly,
		rebind(q, `SELECT * FROM invoice_monthly_fees WHERE invoice_id = ANY(?) ORDER BY client_code`), ids); err != nil {
		return postgres.MapError(err, "invoice line")
	}
	recurring := make([]*invoice.RecurringFeeLine, 0)
	if err := q.SelectContext(ctx, &recurring,
		rebind(q, `SELECT * FROM invoice_recurring_fees WHERE invoice_id = ANY(?) ORDER BY system_generated DESC, created_at, id`), ids); err != nil {
		return postgres.MapError(err, "invoice line")
	}
	oneTime := make([]*invoice.OneTimeFeeLine, 0)
	if err := q.SelectContext(ctx, &oneTime,
		rebind(q, `SELECT * FROM invoice_one_time_fees WHERE invoice_id = ANY(?) ORDER BY billing_date, id`), ids); err != nil {
		return postgres.MapError(err, "invoice line")
	}

	monthlyBy := lo.GroupBy(monthly, func(l *invoice.MonthlyFeeLine) string { return l.InvoiceID })
	recurringBy := lo.GroupBy(recurring, func(l *invoice.RecurringFeeLine) string { return l.InvoiceID })
	oneTimeBy := lo.GroupBy(oneTime, func(l *invoice.OneTimeFeeLine) string { return l.InvoiceID })
	for _, inv := range invoices {
		inv.MonthlyFees = lo.Ternary(monthlyBy[inv.ID] != nil, monthlyBy[inv.ID], []*invoice.MonthlyFeeLine{})
		inv.RecurringFees = lo.Ternary(recurringBy[inv.ID] != nil, recurringBy[inv.ID], []*invoice.RecurringFeeLine{})
		inv.OneTimeFees = lo.Ternary(oneTimeBy[inv.ID] != nil, oneTimeBy[inv.ID], []*invoice.OneTimeFeeLine{})
	}
	return nil
}
