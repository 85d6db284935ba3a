package postgres

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/domain/billingitem"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type billingItemRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewBillingItemRepository(db postgres.IClient, logger *logger.Logger) billingitem.Repository {
	return &billingItemRepository{db: db, logger: logger}
}

func (r *billingItemRepository) Create(ctx context.Context, item *billingitem.BillingItem) error {
	query := `
		INSERT INTO billing_items (
			id, item_code, item_name, description, billing_type, is_active,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :item_code, :item_name, :description, :billing_type, :is_active,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating billing item",
		"billing_item_id", item.ID,
		"item_code", item.ItemCode,
	)

	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, item)
	return postgres.MapError(err, "billing item")
}

func (r *billingItemRepository) Get(ctx context.Context, id string) (*billingitem.BillingItem, error) {
	var item billingitem.BillingItem
	q := r.db.Querier(ctx)
	if err := q.GetContext(ctx, &item, rebind(q, `SELECT * FROM billing_items WHERE id = ? AND status = ?`), id, types.StatusPublished); err != nil {
		return nil, postgres.MapError(err, "billing item")
	}
	return &item, nil
}

func (r *billingItemRepository) GetByCode(ctx context.Context, code string) (*billingitem.BillingItem, error) {
	var item billingitem.BillingItem
	q := r.db.Querier(ctx)
	if err := q.GetContext(ctx, &item, rebind(q, `SELECT * FROM billing_items WHERE item_code = ? AND status = ?`), code, types.StatusPublished); err != nil {
		return nil, postgres.MapError(err, "billing item")
	}
	return &item, nil
}

func (r *billingItemRepository) List(ctx context.Context, filter *types.BillingItemFilter) ([]*billingitem.BillingItem, error) {
	c := &conditions{}
	c.add("status = ?", types.StatusPublished)
	if filter != nil {
		if !filter.IncludeInactive {
			c.add("is_active = TRUE")
		}
		if len(filter.Kinds) > 0 {
			kinds := lo.Map(filter.Kinds, func(k types.BillingKind, _ int) string { return string(k) })
			c.add("billing_type = ANY(?)", pq.Array(kinds))
		}
	}

	q := r.db.Querier(ctx)
	items := make([]*billingitem.BillingItem, 0)
	query := `SELECT * FROM billing_items` + c.where() + ` ORDER BY item_code`
	if err := q.SelectContext(ctx, &items, rebind(q, query), c.args...); err != nil {
		return nil, postgres.MapError(err, "billing item")
	}
	return items, nil
}

func (r *billingItemRepository) Update(ctx context.Context, item *billingitem.BillingItem) error {
	query := `
		UPDATE billing_items SET
			item_name = :item_name,
			description = :description,
			billing_type = :billing_type,
			is_active = :is_active,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND status = 'published'`

	r.logger.Debugw("updating billing item", "billing_item_id", item.ID)

	result, err := r.db.Querier(ctx).NamedExecContext(ctx, query, item)
	if err != nil {
		return postgres.MapError(err, "billing item")
	}
	return requireAffected(result, "billing item")
}

func (r *billingItemRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting billing item", "billing_item_id", id)

	q := r.db.Querier(ctx)
	result, err := q.ExecContext(ctx,
		rebind(q, `UPDATE billing_items SET status = ?, updated_at = ?, updated_by = ? WHERE id = ? AND status = ?`),
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx), id, types.StatusPublished,
	)
	if err != nil {
		return postgres.MapError(err, "billing item")
	}
	return requireAffected(result, "billing item")
}

func (r *billingItemRepository) IsInUse(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM partner_billings WHERE billing_item_id = ? AND status = ?)
			OR EXISTS (SELECT 1 FROM client_billings WHERE billing_item_id = ? AND status = ?)
			OR EXISTS (SELECT 1 FROM one_time_fees WHERE billing_item_id = ? AND status = ?)`

	var inUse bool
	q := r.db.Querier(ctx)
	if err := q.GetContext(ctx, &inUse, rebind(q, query),
		id, types.StatusPublished,
		id, types.StatusPublished,
		id, types.StatusPublished,
	); err != nil {
		return false, postgres.MapError(err, "billing item")
	}
	return inUse, nil
}
