package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/domain/billingitem"
	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	"github.com/flexprice/partnerbilling/internal/domain/partner"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type OneTimeFeeService interface {
	CreateOneTimeFee(ctx context.Context, req dto.CreateOneTimeFeeRequest) (*dto.OneTimeFeeResponse, error)
	// CreateOneTimeFeesBulk creates every row or none; row problems are reported by row number
	CreateOneTimeFeesBulk(ctx context.Context, req dto.CreateOneTimeFeesBulkRequest) (*dto.CreateOneTimeFeesBulkResponse, error)
	GetOneTimeFee(ctx context.Context, id string) (*dto.OneTimeFeeResponse, error)
	// ListEligible returns the partner's fees of the month not billed on a live invoice
	ListEligible(ctx context.Context, partnerID string, month string) (*dto.ListOneTimeFeesResponse, error)
	// ListOneTimeFees returns every unbilled fee, newest billing date first
	ListOneTimeFees(ctx context.Context, req dto.ListOneTimeFeesRequest) (*dto.ListOneTimeFeesResponse, error)
	// UpdateOneTimeFee edits a fee that is not billed on a live invoice
	UpdateOneTimeFee(ctx context.Context, id string, req dto.UpdateOneTimeFeeRequest) (*dto.OneTimeFeeResponse, error)
	DeleteOneTimeFee(ctx context.Context, id string) error
}

type oneTimeFeeService struct {
	ServiceParams
}

func NewOneTimeFeeService(params ServiceParams) OneTimeFeeService {
	return &oneTimeFeeService{
		ServiceParams: params,
	}
}

func (s *oneTimeFeeService) CreateOneTimeFee(ctx context.Context, req dto.CreateOneTimeFeeRequest) (*dto.OneTimeFeeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PartnerRepo.Get(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}
	item, err := s.BillingItemRepo.Get(ctx, req.BillingItemID)
	if err != nil {
		return nil, err
	}

	fee := req.ToOneTimeFee(ctx)
	applyFeeReferences(fee, p, item)
	if err := fee.Validate(); err != nil {
		return nil, err
	}

	if err := s.OneTimeFeeRepo.Create(ctx, fee); err != nil {
		return nil, err
	}

	s.Logger.Infow("created one-time fee",
		"one_time_fee_id", fee.ID,
		"partner_id", fee.PartnerID,
		"amount", fee.Amount.StringFixed(2),
	)
	return &dto.OneTimeFeeResponse{OneTimeFee: fee}, nil
}

func (s *oneTimeFeeService) CreateOneTimeFeesBulk(ctx context.Context, req dto.CreateOneTimeFeesBulkRequest) (*dto.CreateOneTimeFeesBulkResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	partners := make(map[string]*partner.Partner)
	items := make(map[string]*billingitem.BillingItem)
	base := types.GetDefaultBaseModel(ctx)

	fees := make([]*onetimefee.OneTimeFee, 0, len(req.Fees))
	rowErrors := make([]string, 0)
	for i, row := range req.Fees {
		fee, msg := s.bulkRowToFee(ctx, row, partners, items)
		if msg != "" {
			rowErrors = append(rowErrors, rowMessage(i+1, msg))
			continue
		}
		fee.BaseModel = base
		fees = append(fees, fee)
	}

	if len(rowErrors) > 0 {
		return nil, ierr.NewError("one-time fee rows failed validation").
			WithHintf("%d of %d rows are invalid, no fees were created", len(rowErrors), len(req.Fees)).
			WithReportableDetails(map[string]any{
				"errors": rowErrors,
			}).
			Mark(ierr.ErrValidation)
	}

	if err := s.OneTimeFeeRepo.CreateMany(ctx, fees); err != nil {
		return nil, err
	}

	s.Logger.Infow("created one-time fees in bulk", "count", len(fees))
	return &dto.CreateOneTimeFeesBulkResponse{
		Created: len(fees),
		Fees: lo.Map(fees, func(f *onetimefee.OneTimeFee, _ int) *dto.OneTimeFeeResponse {
			return &dto.OneTimeFeeResponse{OneTimeFee: f}
		}),
	}, nil
}

// bulkRowToFee resolves the codes of a row. The returned message is empty
// when the row is valid.
func (s *oneTimeFeeService) bulkRowToFee(
	ctx context.Context,
	row dto.BulkOneTimeFeeRow,
	partners map[string]*partner.Partner,
	items map[string]*billingitem.BillingItem,
) (*onetimefee.OneTimeFee, string) {
	code := partner.NormalizeCode(row.PartnerCode)
	if code == "" || strings.TrimSpace(row.ItemCode) == "" || strings.TrimSpace(row.ClientName) == "" {
		return nil, "partner code, client name and item code are required"
	}

	p, ok := partners[code]
	if !ok {
		found, err := s.PartnerRepo.GetByCode(ctx, code)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil, "partner " + code + " not found"
			}
			return nil, err.Error()
		}
		partners[code] = found
		p = found
	}

	itemCode := strings.TrimSpace(row.ItemCode)
	item, ok := items[itemCode]
	if !ok {
		found, err := s.BillingItemRepo.GetByCode(ctx, itemCode)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil, "billing item " + itemCode + " not found"
			}
			return nil, err.Error()
		}
		items[itemCode] = found
		item = found
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(row.Amount), "$"), ",", "")))
	if err != nil || !amount.IsPositive() {
		return nil, "amount must be a number greater than zero"
	}

	billingDate, err := time.Parse(time.DateOnly, strings.TrimSpace(row.BillingDate))
	if err != nil {
		return nil, "billing date must be in YYYY-MM-DD format"
	}

	fee := &onetimefee.OneTimeFee{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ONE_TIME_FEE),
		PartnerID:     p.ID,
		ClientName:    strings.TrimSpace(row.ClientName),
		BillingItemID: item.ID,
		Description:   strings.TrimSpace(row.Description),
		Amount:        amount.Round(2),
		BillingDate:   billingDate,
	}
	applyFeeReferences(fee, p, item)
	return fee, ""
}

func (s *oneTimeFeeService) GetOneTimeFee(ctx context.Context, id string) (*dto.OneTimeFeeResponse, error) {
	fee, err := s.OneTimeFeeRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.OneTimeFeeResponse{OneTimeFee: fee}, nil
}

func (s *oneTimeFeeService) ListEligible(ctx context.Context, partnerID string, month string) (*dto.ListOneTimeFeesResponse, error) {
	period, err := types.ParseYearMonth(month)
	if err != nil {
		return nil, err
	}
	if _, err := s.PartnerRepo.Get(ctx, partnerID); err != nil {
		return nil, err
	}

	fees, err := s.OneTimeFeeRepo.ListEligible(ctx, &onetimefee.EligibleFilter{
		PartnerID: partnerID,
		From:      period.Start(),
		To:        period.End(),
	})
	if err != nil {
		return nil, err
	}

	return &dto.ListOneTimeFeesResponse{
		Items: lo.Map(fees, func(f *onetimefee.OneTimeFee, _ int) *dto.OneTimeFeeResponse {
			return &dto.OneTimeFeeResponse{OneTimeFee: f}
		}),
	}, nil
}

func (s *oneTimeFeeService) ListOneTimeFees(ctx context.Context, req dto.ListOneTimeFeesRequest) (*dto.ListOneTimeFeesResponse, error) {
	if req.PartnerID != "" {
		if _, err := s.PartnerRepo.Get(ctx, req.PartnerID); err != nil {
			return nil, err
		}
	}

	fees, err := s.OneTimeFeeRepo.ListUnbilled(ctx, &onetimefee.UnbilledFilter{PartnerID: req.PartnerID})
	if err != nil {
		return nil, err
	}

	return &dto.ListOneTimeFeesResponse{
		Items: lo.Map(fees, func(f *onetimefee.OneTimeFee, _ int) *dto.OneTimeFeeResponse {
			return &dto.OneTimeFeeResponse{OneTimeFee: f}
		}),
	}, nil
}

func (s *oneTimeFeeService) UpdateOneTimeFee(ctx context.Context, id string, req dto.UpdateOneTimeFeeRequest) (*dto.OneTimeFeeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var fee *onetimefee.OneTimeFee
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		fee, err = s.OneTimeFeeRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireUnbilled(ctx, fee, "edited"); err != nil {
			return err
		}

		req.Apply(fee)
		p, err := s.PartnerRepo.Get(ctx, fee.PartnerID)
		if err != nil {
			return err
		}
		item, err := s.BillingItemRepo.Get(ctx, fee.BillingItemID)
		if err != nil {
			return err
		}
		applyFeeReferences(fee, p, item)
		if err := fee.Validate(); err != nil {
			return err
		}

		fee.UpdatedAt = time.Now().UTC()
		fee.UpdatedBy = types.GetUserID(ctx)
		return s.OneTimeFeeRepo.Update(ctx, fee)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("updated one-time fee",
		"one_time_fee_id", fee.ID,
		"partner_id", fee.PartnerID,
		"amount", fee.Amount.StringFixed(2),
	)
	return &dto.OneTimeFeeResponse{OneTimeFee: fee}, nil
}

func (s *oneTimeFeeService) DeleteOneTimeFee(ctx context.Context, id string) error {
	fee, err := s.OneTimeFeeRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireUnbilled(ctx, fee, "deleted"); err != nil {
		return err
	}

	return s.OneTimeFeeRepo.Delete(ctx, id)
}

// requireUnbilled fails when the fee is on an invoice that is not void
func (s *oneTimeFeeService) requireUnbilled(ctx context.Context, fee *onetimefee.OneTimeFee, action string) error {
	eligible, err := s.OneTimeFeeRepo.ListEligible(ctx, &onetimefee.EligibleFilter{
		PartnerID: fee.PartnerID,
		From:      fee.BillingDate,
		To:        fee.BillingDate,
		FeeIDs:    []string{fee.ID},
	})
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		return ierr.NewError("one-time fee is billed").
			WithHintf("The fee is on an invoice that is not void and cannot be %s", action).
			WithReportableDetails(map[string]any{
				"one_time_fee_id": fee.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// applyFeeReferences copies the partner and catalogue fields shown on fee lines
func applyFeeReferences(fee *onetimefee.OneTimeFee, p *partner.Partner, item *billingitem.BillingItem) {
	fee.PartnerCode = p.PartnerCode
	fee.PartnerName = p.Name
	fee.ItemCode = item.ItemCode
	fee.ItemName = item.Name
}

func rowMessage(row int, msg string) string {
	return fmt.Sprintf("Row %d: %s", row, msg)
}
