package postgres

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/lib/pq"
)

const selectOneTimeFees = `
	SELECT f.*, bi.item_code, bi.item_name, p.partner_code, p.partner_name
	FROM one_time_fees f
	JOIN billing_items bi ON bi.id = f.billing_item_id
	JOIN partners p ON p.id = f.partner_id`

type oneTimeFeeRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewOneTimeFeeRepository(db postgres.IClient, logger *logger.Logger) onetimefee.Repository {
	return &oneTimeFeeRepository{db: db, logger: logger}
}

const insertOneTimeFee = `
	INSERT INTO one_time_fees (
		id, partner_id, client_name, billing_item_id, description, amount, billing_date,
		status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :partner_id, :client_name, :billing_item_id, :description, :amount, :billing_date,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)`

func (r *oneTimeFeeRepository) Create(ctx context.Context, fee *onetimefee.OneTimeFee) error {
	r.logger.Debugw("creating one-time fee",
		"one_time_fee_id", fee.ID,
		"partner_id", fee.PartnerID,
	)

	_, err := r.db.Querier(ctx).NamedExecContext(ctx, insertOneTimeFee, fee)
	return postgres.MapError(err, "one-time fee")
}

// CreateMany inserts all fees or none of them
func (r *oneTimeFeeRepository) CreateMany(ctx context.Context, fees []*onetimefee.OneTimeFee) error {
	r.logger.Debugw("creating one-time fees in bulk", "count", len(fees))

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)
		for _, fee := range fees {
			if _, err := q.NamedExecContext(ctx, insertOneTimeFee, fee); err != nil {
				return postgres.MapError(err, "one-time fee")
			}
		}
		return nil
	})
}

func (r *oneTimeFeeRepository) Get(ctx context.Context, id string) (*onetimefee.OneTimeFee, error) {
	var fee onetimefee.OneTimeFee
	q := r.db.Querier(ctx)
	if err := q.GetContext(ctx, &fee, rebind(q, selectOneTimeFees+` WHERE f.id = ? AND f.status = ?`), id, types.StatusPublished); err != nil {
		return nil, postgres.MapError(err, "one-time fee")
	}
	return &fee, nil
}

// ListEligible returns fees dated within the range that are not attached to
// any invoice other than a void one
func (r *oneTimeFeeRepository) ListEligible(ctx context.Context, filter *onetimefee.EligibleFilter) ([]*onetimefee.OneTimeFee, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	c := &conditions{}
	c.add("f.partner_id = ?", filter.PartnerID)
	c.add("f.status = ?", types.StatusPublished)
	c.add("f.billing_date BETWEEN ? AND ?", filter.From, filter.To)
	if len(filter.FeeIDs) > 0 {
		c.add("f.id = ANY(?)", pq.Array(filter.FeeIDs))
	}
	c.add(`NOT EXISTS (
		SELECT 1 FROM invoice_one_time_fees l
		JOIN invoices i ON i.id = l.invoice_id
		WHERE l.one_time_fee_id = f.id
		  AND i.invoice_status != ?
		  AND i.id != ?
	)`, types.InvoiceStatusVoid, filter.ExcludeInvoiceID)

	q := r.db.Querier(ctx)
	fees := make([]*onetimefee.OneTimeFee, 0)
	query := selectOneTimeFees + c.where() + ` ORDER BY f.billing_date, f.created_at`
	if err := q.SelectContext(ctx, &fees, rebind(q, query), c.args...); err != nil {
		return nil, postgres.MapError(err, "one-time fee")
	}
	return fees, nil
}

func (r *oneTimeFeeRepository) ListUnbilled(ctx context.Context, filter *onetimefee.UnbilledFilter) ([]*onetimefee.OneTimeFee, error) {
	c := &conditions{}
	c.add("f.status = ?", types.StatusPublished)
	if filter != nil && filter.PartnerID != "" {
		c.add("f.partner_id = ?", filter.PartnerID)
	}
	c.add(`NOT EXISTS (
		SELECT 1 FROM invoice_one_time_fees l
		JOIN invoices i ON i.id = l.invoice_id
		WHERE l.one_time_fee_id = f.id
		  AND i.invoice_status != ?
	)`, types.InvoiceStatusVoid)

	q := r.db.Querier(ctx)
	fees := make([]*onetimefee.OneTimeFee, 0)
	query := selectOneTimeFees + c.where() + ` ORDER BY f.billing_date DESC, f.created_at DESC`
	if err := q.SelectContext(ctx, &fees, rebind(q, query), c.args...); err != nil {
		return nil, postgres.MapError(err, "one-time fee")
	}
	return fees, nil
}

func (r *oneTimeFeeRepository) Update(ctx context.Context, fee *onetimefee.OneTimeFee) error {
	r.logger.Debugw("updating one-time fee",
		"one_time_fee_id", fee.ID,
		"partner_id", fee.PartnerID,
	)

	result, err := r.db.Querier(ctx).NamedExecContext(ctx, `
		UPDATE one_time_fees SET
			partner_id = :partner_id,
			client_name = :client_name,
			billing_item_id = :billing_item_id,
			description = :description,
			amount = :amount,
			billing_date = :billing_date,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND status = :status`, fee)
	if err != nil {
		return postgres.MapError(err, "one-time fee")
	}
	return requireAffected(result, "one-time fee")
}

func (r *oneTimeFeeRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting one-time fee", "one_time_fee_id", id)

	q := r.db.Querier(ctx)
	result, err := q.ExecContext(ctx,
		rebind(q, `UPDATE one_time_fees SET status = ?, updated_at = ?, updated_by = ? WHERE id = ? AND status = ?`),
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx), id, types.StatusPublished,
	)
	if err != nil {
		return postgres.MapError(err, "one-time fee")
	}
	return requireAffected(result, "one-time fee")
}
