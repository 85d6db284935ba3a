package postgres

import (
	"context"

	"github.com/flexprice/partnerbilling/internal/domain/partner"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/lib/pq"
)

type partnerRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewPartnerRepository(db postgres.IClient, logger *logger.Logger) partner.Repository {
	return &partnerRepository{db: db, logger: logger}
}

var partnerSortColumns = map[string]string{
	"created_at":   "created_at",
	"partner_code": "partner_code",
	"partner_name": "partner_name",
}

func (r *partnerRepository) Create(ctx context.Context, p *partner.Partner) error {
	query := `
		INSERT INTO partners (
			id, partner_code, partner_name, contact_name, contact_email, phone_number,
			contract_start, contract_term, auto_renews, override_renewal_date, is_active,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :partner_code, :partner_name, :contact_name, :contact_email, :phone_number,
			:contract_start, :contract_term, :auto_renews, :override_renewal_date, :is_active,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating partner",
		"partner_id", p.ID,
		"partner_code", p.PartnerCode,
	)

	_, err := r.db.Querier(ctx).NamedExecContext(ctx, query, p)
	return postgres.MapError(err, "partner")
}

func (r *partnerRepository) Get(ctx context.Context, id string) (*partner.Partner, error) {
	var p partner.Partner
	q := r.db.Querier(ctx)
	err := q.GetContext(ctx, &p, rebind(q, `SELECT * FROM partners WHERE id = ? AND status = ?`), id, types.StatusPublished)
	if err != nil {
		return nil, postgres.MapError(err, "partner")
	}
	return &p, nil
}

func (r *partnerRepository) GetByCode(ctx context.Context, code string) (*partner.Partner, error) {
	var p partner.Partner
	q := r.db.Querier(ctx)
	err := q.GetContext(ctx, &p,
		rebind(q, `SELECT * FROM partners WHERE partner_code = ? AND status = ?`),
		partner.NormalizeCode(code), types.StatusPublished,
	)
	if err != nil {
		return nil, postgres.MapError(err, "partner")
	}
	return &p, nil
}

func (r *partnerRepository) filterConditions(filter *types.PartnerFilter) *conditions {
	c := &conditions{}
	c.add("status = ?", types.StatusPublished)
	if filter == nil {
		return c
	}
	if !filter.IncludeInactive {
		c.add("is_active = TRUE")
	}
	if len(filter.PartnerCodes) > 0 {
		c.add("partner_code = ANY(?)", pq.Array(filter.PartnerCodes))
	}
	return c
}

func (r *partnerRepository) List(ctx context.Context, filter *types.PartnerFilter) ([]*partner.Partner, error) {
	if filter == nil {
		filter = types.NewNoLimitPartnerFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewNoLimitQueryFilter()
	}

	c := r.filterConditions(filter)
	q := r.db.Querier(ctx)
	query := `SELECT * FROM partners` + c.where() + orderAndPage(filter, partnerSortColumns, "created_at")

	partners := make([]*partner.Partner, 0)
	if err := q.SelectContext(ctx, &partners, rebind(q, query), c.args...); err != nil {
		return nil, postgres.MapError(err, "partner")
	}
	return partners, nil
}

func (r *partnerRepository) Count(ctx context.Context, filter *types.PartnerFilter) (int, error) {
	c := r.filterConditions(filter)
	q := r.db.Querier(ctx)

	var count int
	if err := q.GetContext(ctx, &count, rebind(q, `SELECT COUNT(*) FROM partners`+c.where()), c.args...); err != nil {
		return 0, postgres.MapError(err, "partner")
	}
	return count, nil
}

func (r *partnerRepository) Update(ctx context.Context, p *partner.Partner) error {
	query := `
		UPDATE partners SET
			partner_name = :partner_name,
			contact_name = :contact_name,
			contact_email = :contact_email,
			phone_number = :phone_number,
			contract_start = :contract_start,
			contract_term = :contract_term,
			auto_renews = :auto_renews,
			override_renewal_date = :override_renewal_date,
			is_active = :is_active,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND status = 'published'`

	r.logger.Debugw("updating partner", "partner_id", p.ID)

	result, err := r.db.Querier(ctx).NamedExecContext(ctx, query, p)
	if err != nil {
		return postgres.MapError(err, "partner")
	}
	return requireAffected(result, "partner")
}
