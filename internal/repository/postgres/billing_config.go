package postgres

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

const selectPartnerBillings = `
	SELECT pb.*, bi.item_code, bi.item_name
	FROM partner_billings pb
	JOIN billing_items bi ON bi.id = pb.billing_item_id`

type billingConfigRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewBillingConfigRepository(db postgres.IClient, logger *logger.Logger) billingconfig.Repository {
	return &billingConfigRepository{db: db, logger: logger}
}

func (r *billingConfigRepository) Create(ctx context.Context, line *billingconfig.PartnerBilling) error {
	query := `
		INSERT INTO partner_billings (
			id, partner_id, billing_item_id, billing_type, amount, billing_frequency,
			start_date, end_date, is_active, description,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :partner_id, :billing_item_id, :billing_type, :amount, :billing_frequency,
			:start_date, :end_date, :is_active, :description,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating partner billing",
		"partner_billing_id", line.ID,
		"partner_id", line.PartnerID,
		"billing_type", line.Kind,
		"tiers", len(line.Tiers),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.Querier(ctx).NamedExecContext(ctx, query, line); err != nil {
			return postgres.MapError(err, "partner billing")
		}
		return r.insertTiers(ctx, line.ID, line.Tiers)
	})
}

func (r *billingConfigRepository) Get(ctx context.Context, id string) (*billingconfig.PartnerBilling, error) {
	var line billingconfig.PartnerBilling
	q := r.db.Querier(ctx)
	if err := q.GetContext(ctx, &line, rebind(q, selectPartnerBillings+` WHERE pb.id = ? AND pb.status = ?`), id, types.StatusPublished); err != nil {
		return nil, postgres.MapError(err, "partner billing")
	}

	tiers, err := r.ListTiers(ctx, id)
	if err != nil {
		return nil, err
	}
	line.Tiers = tiers
	return &line, nil
}

func (r *billingConfigRepository) ListByPartner(ctx context.Context, partnerID string) ([]*billingconfig.PartnerBilling, error) {
	q := r.db.Querier(ctx)
	lines := make([]*billingconfig.PartnerBilling, 0)
	query := selectPartnerBillings + ` WHERE pb.partner_id = ? AND pb.status = ? ORDER BY pb.start_date, pb.created_at`
	if err := q.SelectContext(ctx, &lines, rebind(q, query), partnerID, types.StatusPublished); err != nil {
		return nil, postgres.MapError(err, "partner billing")
	}
	if len(lines) == 0 {
		return lines, nil
	}

	ids := lo.Map(lines, func(l *billingconfig.PartnerBilling, _ int) string { return l.ID })
	tiers := make([]*billingconfig.RateTier, 0)
	tierQuery := `SELECT * FROM billing_tiers WHERE partner_billing_id = ANY(?) ORDER BY tier_min`
	if err := q.SelectContext(ctx, &tiers, rebind(q, tierQuery), pq.Array(ids)); err != nil {
		return nil, postgres.MapError(err, "billing tier")
	}

	byLine := lo.GroupBy(tiers, func(t *billingconfig.RateTier) string { return t.PartnerBillingID })
	for _, l := range lines {
		l.Tiers = byLine[l.ID]
	}
	return lines, nil
}

func (r *billingConfigRepository) Update(ctx context.Context, line *billingconfig.PartnerBilling) error {
	query := `
		UPDATE partner_billings SET
			amount = :amount,
			billing_frequency = :billing_frequency,
			start_date = :start_date,
			end_date = :end_date,
			is_active = :is_active,
			description = :description,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND status = 'published'`

	r.logger.Debugw("updating partner billing", "partner_billing_id", line.ID)

	result, err := r.db.Querier(ctx).NamedExecContext(ctx, query, line)
	if err != nil {
		return postgres.MapError(err, "partner billing")
	}
	return requireAffected(result, "partner billing")
}

// Delete removes the line; its tiers go with it through the foreign key cascade
func (r *billingConfigRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting partner billing", "partner_billing_id", id)

	q := r.db.Querier(ctx)
	result, err := q.ExecContext(ctx, rebind(q, `DELETE FROM partner_billings WHERE id = ?`), id)
	if err != nil {
		return postgres.MapError(err, "partner billing")
	}
	return requireAffected(result, "partner billing")
}

func (r *billingConfigRepository) ReplaceTiers(ctx context.Context, partnerBillingID string, tiers []*billingconfig.RateTier) error {
	r.logger.Debugw("replacing billing tiers",
		"partner_billing_id", partnerBillingID,
		"tiers", len(tiers),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)
		if _, err := q.ExecContext(ctx, rebind(q, `DELETE FROM billing_tiers WHERE partner_billing_id = ?`), partnerBillingID); err != nil {
			return postgres.MapError(err, "billing tier")
		}
		return r.insertTiers(ctx, partnerBillingID, tiers)
	})
}

func (r *billingConfigRepository) ListTiers(ctx context.Context, partnerBillingID string) ([]*billingconfig.RateTier, error) {
	q := r.db.Querier(ctx)
	tiers := make([]*billingconfig.RateTier, 0)
	query := `SELECT * FROM billing_tiers WHERE partner_billing_id = ? ORDER BY tier_min`
	if err := q.SelectContext(ctx, &tiers, rebind(q, query), partnerBillingID); err != nil {
		return nil, postgres.MapError(err, "billing tier")
	}
	return tiers, nil
}

func (r *billingConfigRepository) insertTiers(ctx context.Context, partnerBillingID string, tiers []*billingconfig.RateTier) error {
	if len(tiers) == 0 {
		return nil
	}

	query := `
		INSERT INTO billing_tiers (
			id, partner_billing_id, tier_min, tier_max, per_employee_rate, created_at, updated_at
		) VALUES (
			:id, :partner_billing_id, :tier_min, :tier_max, :per_employee_rate, :created_at, :updated_at
		)`

	now := time.Now().UTC()
	q := r.db.Querier(ctx)
	for _, t := range tiers {
		if t.ID == "" {
			t.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_TIER)
		}
		t.PartnerBillingID = partnerBillingID
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
		if _, err := q.NamedExecContext(ctx, query, t); err != nil {
			return postgres.MapError(err, "billing tier")
		}
	}
	return nil
}

const selectClientBillings = `
	SELECT cb.*, bi.item_code, bi.item_name
	FROM client_billings cb
	JOIN billing_items bi ON bi.id = cb.billing_item_id`

type clientBillingRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewClientBillingRepository(db postgres.IClient, logger *logger.Logger) billingconfig.ClientBillingRepository {
	return &clientBillingRepository{db: db, logger: logger}
}

func (r *clientBillingRepository) Create(ctx context.Context, cb *billingconfig.ClientBilling) error {
	query := `
		INSERT INTO client_billings (
			id, partner_id, client_code, client_name, billing_item_id, base_amount,
			per_employee_amount, billing_date, end_date, is_active,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :partner_id, :client_code, :client_name, :billing_item_id, :base_amount,
			:per_employee_amount, :billing_date, :end_date, :is_active,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating client billing",
		"client_billing_id", cb.ID,
		"partner_id", cb.PartnerID,
		"client_code", cb.ClientCode,
	)

	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, cb)
	return postgres.MapError(err, "client billing")
}

func (r *clientBillingRepository) Get(ctx context.Context, id string) (*billingconfig.ClientBilling, error) {
	var cb billingconfig.ClientBilling
	q := r.db.Querier(ctx)
	if err := q.GetContext(ctx, &cb, rebind(q, selectClientBillings+` WHERE cb.id = ? AND cb.status = ?`), id, types.StatusPublished); err != nil {
		return nil, postgres.MapError(err, "client billing")
	}
	return &cb, nil
}

func (r *clientBillingRepository) ListByPartner(ctx context.Context, partnerID string) ([]*billingconfig.ClientBilling, error) {
	q := r.db.Querier(ctx)
	out := make([]*billingconfig.ClientBilling, 0)
	query := selectClientBillings + ` WHERE cb.partner_id = ? AND cb.status = ? ORDER BY cb.client_code, cb.billing_date`
	if err := q.SelectContext(ctx, &out, rebind(q, query), partnerID, types.StatusPublished); err != nil {
		return nil, postgres.MapError(err, "client billing")
	}
	return out, nil
}

func (r *clientBillingRepository) Update(ctx context.Context, cb *billingconfig.ClientBilling) error {
	query := `
		UPDATE client_billings SET
			client_code = :client_code,
			client_name = :client_name,
			billing_item_id = :billing_item_id,
			base_amount = :base_amount,
			per_employee_amount = :per_employee_amount,
			billing_date = :billing_date,
			end_date = :end_date,
			is_active = :is_active,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND status = 'published'`

	r.logger.Debugw("updating client billing", "client_billing_id", cb.ID)

	result, err := r.db.Querier(ctx).NamedExecContext(ctx, query, cb)
	if err != nil {
		return postgres.MapError(err, "client billing")
	}
	return requireAffected(result, "client billing")
}

func (r *clientBillingRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting client billing", "client_billing_id", id)

	q := r.db.Querier(ctx)
	result, err := q.ExecContext(ctx,
		rebind(q, `UPDATE client_billings SET status = ?, updated_at = ?, updated_by = ? WHERE id = ? AND status = ?`),
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx), id, types.StatusPublished,
	)
	if err != nil {
		return postgres.MapError(err, "client billing")
	}
	return requireAffected(result, "client billing")
}
