package service

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/domain/billing"
	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	"github.com/flexprice/partnerbilling/internal/domain/partner"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/idempotency"
	"github.com/flexprice/partnerbilling/internal/publisher"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceService calculates, persists and moves partner invoices through their lifecycle
type InvoiceService interface {
	// PreviewInvoice calculates the invoice for the selection without persisting it
	PreviewInvoice(ctx context.Context, req dto.GenerateInvoiceRequest) (*dto.InvoicePreviewResponse, error)
	GenerateInvoice(ctx context.Context, req dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)

	FinalizeInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	VoidInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ReopenInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	UpdateInvoiceStatus(ctx context.Context, id string, req dto.UpdateInvoiceStatusRequest) (*dto.InvoiceResponse, error)

	// RegenerateInvoice recalculates every line of a draft invoice
	RegenerateInvoice(ctx context.Context, id string, req dto.RegenerateInvoiceRequest) (*dto.InvoiceResponse, error)
	UpdateLineOverride(ctx context.Context, invoiceID string, lineID string, req dto.UpdateInvoiceLineRequest) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
	idempGen *idempotency.Generator
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		idempGen:      idempotency.NewGenerator(),
	}
}

// invoiceCalculation is a resolved invoice together with the pools it was selected from
type invoiceCalculation struct {
	partner  *partner.Partner
	snapshot *billingconfig.Snapshot
	eligible []*onetimefee.OneTimeFee
	result   *billing.Result
}

// calculate loads configuration, usage and eligible one-time fees of the
// partner for month and resolves the selected lines
func (s *invoiceService) calculate(
	ctx context.Context,
	p *partner.Partner,
	month types.YearMonth,
	sel dto.InvoiceSelection,
	excludeInvoiceID string,
) (*invoiceCalculation, error) {
	lines, err := s.BillingConfigRepo.ListByPartner(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	clientBillings, err := s.ClientBillingRepo.ListByPartner(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	snapshot := billingconfig.NewSnapshot(p.ID, month, lines, clientBillings)

	records, err := s.UsageRepo.ListByPartnerCode(ctx, partner.NormalizeCode(p.PartnerCode), month)
	if err != nil {
		return nil, err
	}

	eligible, err := s.OneTimeFeeRepo.ListEligible(ctx, &onetimefee.EligibleFilter{
		PartnerID:        p.ID,
		From:             month.Start(),
		To:               month.End(),
		ExcludeInvoiceID: excludeInvoiceID,
	})
	if err != nil {
		return nil, err
	}

	selectedFees, err := selectOneTimeFees(eligible, sel.SelectedOneTimeFeeIDs)
	if err != nil {
		return nil, err
	}

	var clientCodes []string
	if sel.SelectedClientCodes != nil {
		clientCodes = lo.Map(sel.SelectedClientCodes, func(code string, _ int) string {
			return strings.ToUpper(strings.TrimSpace(code))
		})
	}

	recurringOverrides, oneTimeOverrides := sel.Overrides()
	calculator := billing.NewCalculator(billing.Options{
		TierMode:           s.Config.Billing.TierMode,
		MinimumFeeItemName: s.Config.Billing.MinimumFeeItemName,
	})
	result, err := calculator.Calculate(billing.Input{
		Month:                month,
		Snapshot:             snapshot,
		Usage:                records,
		SelectedClientCodes:  clientCodes,
		SelectedRecurringIDs: sel.SelectedRecurringIDs,
		RecurringOverrides:   recurringOverrides,
		OneTimeFees:          selectedFees,
		OneTimeOverrides:     oneTimeOverrides,
	})
	if err != nil {
		return nil, err
	}

	return &invoiceCalculation{
		partner:  p,
		snapshot: snapshot,
		eligible: eligible,
		result:   result,
	}, nil
}

// selectOneTimeFees picks the selected fees from the eligible pool. A nil
// selection takes every eligible fee.
func selectOneTimeFees(eligible []*onetimefee.OneTimeFee, ids []string) ([]*onetimefee.OneTimeFee, error) {
	if ids == nil {
		return eligible, nil
	}

	byID := lo.KeyBy(eligible, func(f *onetimefee.OneTimeFee) string {
		return f.ID
	})
	ineligible := lo.Filter(ids, func(id string, _ int) bool {
		_, ok := byID[id]
		return !ok
	})
	if len(ineligible) > 0 {
		return nil, ierr.NewError("selected one-time fees are not eligible").
			WithHint("Some selected one-time fees are outside the invoice month or already billed on another invoice").
			WithReportableDetails(map[string]any{
				"one_time_fee_ids": ineligible,
			}).
			Mark(ierr.ErrValidation)
	}

	return lo.Map(lo.Uniq(ids), func(id string, _ int) *onetimefee.OneTimeFee {
		return byID[id]
	}), nil
}

// checkWarnings refuses to persist lines carrying fee warnings unless the
// operator confirmed them
func checkWarnings(result *billing.Result, acknowledged bool) error {
	if len(result.Warnings) == 0 || acknowledged {
		return nil
	}
	return ierr.NewError("recurring fees have warnings").
		WithHint("Some recurring fees have warnings, review them and confirm to continue").
		WithReportableDetails(map[string]any{
			"warnings": result.Warnings,
		}).
		Mark(ierr.ErrValidation)
}

func (s *invoiceService) PreviewInvoice(ctx context.Context, req dto.GenerateInvoiceRequest) (*dto.InvoicePreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	month := req.Month()

	p, err := s.PartnerRepo.Get(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}

	calc, err := s.calculate(ctx, p, month, req.InvoiceSelection, "")
	if err != nil {
		return nil, err
	}

	return &dto.InvoicePreviewResponse{
		PartnerID:           p.ID,
		PartnerCode:         p.PartnerCode,
		PartnerName:         p.Name,
		InvoiceMonth:        month,
		MonthlyFees:         calc.result.MonthlyFees,
		RecurringFees:       calc.result.RecurringFees,
		OneTimeFees:         calc.result.OneTimeFees,
		Totals:              calc.result.Totals(),
		Shortfall:           calc.result.Shortfall,
		Warnings:            calc.result.Warnings,
		RecurringCandidates: billing.RecurringCandidates(calc.snapshot),
		EligibleOneTimeFees: calc.eligible,
	}, nil
}

func (s *invoiceService) GenerateInvoice(ctx context.Context, req dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	month := req.Month()

	p, err := s.PartnerRepo.Get(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}

	var idempKey *string
	if req.IdempotencyKey != nil && strings.TrimSpace(*req.IdempotencyKey) != "" {
		key := s.idempGen.GenerateKey(idempotency.ScopePartnerInvoice, map[string]interface{}{
			"partner_id":      p.ID,
			"invoice_month":   month.String(),
			"idempotency_key": strings.TrimSpace(*req.IdempotencyKey),
		})
		idempKey = &key

		existing, err := s.InvoiceRepo.GetByIdempotencyKey(ctx, key)
		if err == nil {
			s.Logger.Infow("returning existing invoice for idempotency key",
				"invoice_id", existing.ID,
				"idempotency_key", key,
			)
			return dto.NewInvoiceResponse(existing), nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	invoiceDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.InvoiceDate != nil {
		invoiceDate = req.InvoiceDate.UTC()
	}

	var inv *invoice.Invoice
	attempt := 0
	operation := func() error {
		attempt++
		err := s.DB.WithTx(ctx, func(ctx context.Context) error {
			calc, err := s.calculate(ctx, p, month, req.InvoiceSelection, "")
			if err != nil {
				return err
			}
			if err := checkWarnings(calc.result, req.AcknowledgeWarnings); err != nil {
				return err
			}

			seq, err := s.InvoiceRepo.NextSequence(ctx, partner.NormalizeCode(p.PartnerCode), month)
			if err != nil {
				return err
			}

			inv = &invoice.Invoice{
				ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
				InvoiceNumber:  invoice.FormatInvoiceNumber(partner.NormalizeCode(p.PartnerCode), month, seq),
				Sequence:       seq,
				PartnerID:      p.ID,
				PartnerCode:    p.PartnerCode,
				PartnerName:    p.Name,
				InvoiceMonth:   month,
				InvoiceDate:    invoiceDate,
				InvoiceStatus:  types.InvoiceStatusDraft,
				Currency:       s.Config.Billing.Currency,
				IdempotencyKey: idempKey,
				MonthlyFees:    calc.result.MonthlyFees,
				RecurringFees:  calc.result.RecurringFees,
				OneTimeFees:    calc.result.OneTimeFees,
				BaseModel:      types.GetDefaultBaseModel(ctx),
			}
			if err := inv.Validate(); err != nil {
				return err
			}
			return s.InvoiceRepo.Create(ctx, inv)
		})
		if err == nil || ierr.IsVersionConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	err = backoff.RetryNotify(operation, s.generationBackOff(ctx), func(err error, next time.Duration) {
		s.Logger.Warnw("invoice number conflict, retrying generation",
			"partner_id", p.ID,
			"invoice_month", month,
			"attempt", attempt,
			"next_retry_in", next,
			"error", err,
		)
	})
	if err != nil {
		// a concurrent request with the same key won the race
		if idempKey != nil && ierr.IsAlreadyExists(err) {
			existing, getErr := s.InvoiceRepo.GetByIdempotencyKey(ctx, *idempKey)
			if getErr == nil {
				return dto.NewInvoiceResponse(existing), nil
			}
		}
		if ierr.IsVersionConflict(err) {
			return nil, ierr.WithError(err).
				WithHintf("Could not assign an invoice number after %d attempts, please retry", attempt).
				WithReportableDetails(map[string]any{
					"partner_id":    p.ID,
					"invoice_month": month,
				}).
				Mark(ierr.ErrVersionConflict)
		}
		return nil, err
	}

	s.Logger.Infow("generated invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"partner_id", p.ID,
		"invoice_month", month,
		"attempts", attempt,
	)

	created, err := s.InvoiceRepo.Get(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, publisher.EventInvoiceGenerated, created, "")
	return dto.NewInvoiceResponse(created), nil
}

// generationBackOff bounds the retries of a generation that lost an invoice number race
func (s *invoiceService) generationBackOff(ctx context.Context) backoff.BackOff {
	cfg := s.Config.Billing.GenerationRetry

	b := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		b.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		b.MaxInterval = cfg.MaxInterval
	}
	b.MaxElapsedTime = 0

	retries := cfg.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListInvoicesResponse{
		Items:      make([]*dto.InvoiceResponse, 0, len(invoices)),
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}
	all := &invoice.Invoice{}
	for _, inv := range invoices {
		resp.Items = append(resp.Items, dto.NewInvoiceResponse(inv))
		all.MonthlyFees = append(all.MonthlyFees, inv.MonthlyFees...)
		all.RecurringFees = append(all.RecurringFees, inv.RecurringFees...)
		all.OneTimeFees = append(all.OneTimeFees, inv.OneTimeFees...)
	}
	resp.Totals = all.Totals()
	return resp, nil
}

func (s *invoiceService) FinalizeInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, types.InvoiceStatusFinal, publisher.EventInvoiceFinalized, nil, func(inv *invoice.Invoice, now time.Time) {
		inv.FinalizedAt = &now
	})
}

func (s *invoiceService) VoidInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, types.InvoiceStatusVoid, publisher.EventInvoiceVoided, nil, func(inv *invoice.Invoice, now time.Time) {
		inv.VoidedAt = &now
	})
}

// ReopenInvoice moves a final or void invoice back to draft. A void invoice
// can only be reopened while none of its one-time fees was billed again.
func (s *invoiceService) ReopenInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	resp, err := s.transition(ctx, id, types.InvoiceStatusDraft, publisher.EventInvoiceReopened, s.checkOneTimeFeesFree, func(inv *invoice.Invoice, _ time.Time) {
		inv.FinalizedAt = nil
		inv.VoidedAt = nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("reopened invoice",
		"invoice_id", resp.ID,
		"invoice_number", resp.InvoiceNumber,
		"actor", actor(ctx),
	)
	return resp, nil
}

// checkOneTimeFeesFree rejects reopening a void invoice whose one-time fees
// are billed on another live invoice
func (s *invoiceService) checkOneTimeFeesFree(ctx context.Context, inv *invoice.Invoice) error {
	if inv.InvoiceStatus != types.InvoiceStatusVoid {
		return nil
	}
	ids := inv.OneTimeFeeIDs()
	if len(ids) == 0 {
		return nil
	}

	from, to := inv.InvoiceMonth.Start(), inv.InvoiceMonth.End()
	for _, l := range inv.OneTimeFees {
		if l.BillingDate.Before(from) {
			from = l.BillingDate
		}
		if l.BillingDate.After(to) {
			to = l.BillingDate
		}
	}

	free, err := s.OneTimeFeeRepo.ListEligible(ctx, &onetimefee.EligibleFilter{
		PartnerID:        inv.PartnerID,
		From:             from,
		To:               to,
		FeeIDs:           ids,
		ExcludeInvoiceID: inv.ID,
	})
	if err != nil {
		return err
	}

	freeIDs := lo.Map(free, func(f *onetimefee.OneTimeFee, _ int) string {
		return f.ID
	})
	taken, _ := lo.Difference(ids, freeIDs)
	if len(taken) > 0 {
		return ierr.NewError("one-time fees were billed again").
			WithHintf("Invoice %s cannot be reopened, some of its one-time fees are on another invoice", inv.InvoiceNumber).
			WithReportableDetails(map[string]any{
				"invoice_id":       inv.ID,
				"one_time_fee_ids": taken,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, id string, req dto.UpdateInvoiceStatusRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := types.InvoiceStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err := status.Validate(); err != nil {
		return nil, err
	}

	switch status {
	case types.InvoiceStatusFinal:
		return s.FinalizeInvoice(ctx, id)
	case types.InvoiceStatusVoid:
		return s.VoidInvoice(ctx, id)
	default:
		return s.ReopenInvoice(ctx, id)
	}
}

// transition applies one state machine move inside a transaction
func (s *invoiceService) transition(
	ctx context.Context,
	id string,
	to types.InvoiceStatus,
	event publisher.InvoiceEventName,
	check func(ctx context.Context, inv *invoice.Invoice) error,
	mutate func(inv *invoice.Invoice, now time.Time),
) (*dto.InvoiceResponse, error) {
	var inv *invoice.Invoice
	var from types.InvoiceStatus

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := invoice.ValidateTransition(inv, to); err != nil {
			return err
		}
		if check != nil {
			if err := check(ctx, inv); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		from = inv.InvoiceStatus
		inv.InvoiceStatus = to
		mutate(inv, now)
		inv.UpdatedAt = now
		inv.UpdatedBy = types.GetUserID(ctx)
		return s.InvoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Debugw("invoice status changed",
		"invoice_id", inv.ID,
		"from_status", from,
		"to_status", to,
	)
	s.publish(ctx, event, inv, from)
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) RegenerateInvoice(ctx context.Context, id string, req dto.RegenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !inv.IsEditable() {
			return invoice.ErrNotEditable(inv)
		}

		p, err := s.PartnerRepo.Get(ctx, inv.PartnerID)
		if err != nil {
			return err
		}

		calc, err := s.calculate(ctx, p, inv.InvoiceMonth, req.InvoiceSelection, inv.ID)
		if err != nil {
			return err
		}
		if err := checkWarnings(calc.result, req.AcknowledgeWarnings); err != nil {
			return err
		}

		inv.MonthlyFees = calc.result.MonthlyFees
		inv.RecurringFees = calc.result.RecurringFees
		inv.OneTimeFees = calc.result.OneTimeFees
		if err := inv.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.ReplaceLines(ctx, inv); err != nil {
			return err
		}

		inv.UpdatedAt = time.Now().UTC()
		inv.UpdatedBy = types.GetUserID(ctx)
		return s.InvoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("regenerated draft invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
	)
	s.publish(ctx, publisher.EventInvoiceRegenerated, inv, "")
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) UpdateLineOverride(ctx context.Context, invoiceID string, lineID string, req dto.UpdateInvoiceLineRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	amount := req.InvoicedAmount.Round(2)
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !inv.IsEditable() {
			return invoice.ErrNotEditable(inv)
		}

		switch req.LineType {
		case types.InvoiceLineTypeRecurring:
			line, ok := lo.Find(inv.RecurringFees, func(l *invoice.RecurringFeeLine) bool {
				return l.ID == lineID
			})
			if !ok {
				return lineNotFound(invoiceID, lineID)
			}
			if line.SystemGenerated {
				return ierr.NewError("system generated lines cannot be overridden").
					WithHint("The monthly minimum true-up is recalculated on regeneration and cannot be edited").
					WithReportableDetails(map[string]any{
						"line_id": lineID,
					}).
					Mark(ierr.ErrInvalidOperation)
			}
			line.InvoicedAmount = amount
			line.OverrideReason = overrideReason(line.OriginalAmount, amount, req.OverrideReason)
			if err := line.Validate(); err != nil {
				return err
			}
			if err := s.InvoiceRepo.UpdateRecurringLine(ctx, line); err != nil {
				return err
			}

		case types.InvoiceLineTypeOneTime:
			line, ok := lo.Find(inv.OneTimeFees, func(l *invoice.OneTimeFeeLine) bool {
				return l.ID == lineID
			})
			if !ok {
				return lineNotFound(invoiceID, lineID)
			}
			line.InvoicedAmount = amount
			line.OverrideReason = overrideReason(line.OriginalAmount, amount, req.OverrideReason)
			if err := line.Validate(); err != nil {
				return err
			}
			if err := s.InvoiceRepo.UpdateOneTimeLine(ctx, line); err != nil {
				return err
			}

		default:
			return ierr.NewError("monthly lines cannot be overridden").
				WithHint("Monthly fees are calculated from usage and cannot be edited").
				WithReportableDetails(map[string]any{
					"line_id":   lineID,
					"line_type": req.LineType,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		inv.UpdatedAt = time.Now().UTC()
		inv.UpdatedBy = types.GetUserID(ctx)
		return s.InvoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("updated invoice line",
		"invoice_id", invoiceID,
		"line_id", lineID,
		"line_type", req.LineType,
		"invoiced_amount", amount.StringFixed(2),
		"actor", actor(ctx),
	)
	s.publish(ctx, publisher.EventInvoiceLineOverride, inv, "")
	return dto.NewInvoiceResponse(inv), nil
}

// overrideReason keeps the reason only while the amount differs from the computed one
func overrideReason(original, invoiced decimal.Decimal, reason string) string {
	if !invoice.IsOverride(original, invoiced) {
		return ""
	}
	return strings.TrimSpace(reason)
}

func lineNotFound(invoiceID, lineID string) error {
	return ierr.NewError("invoice line not found").
		WithHintf("Line %s was not found on the invoice", lineID).
		WithReportableDetails(map[string]any{
			"invoice_id": invoiceID,
			"line_id":    lineID,
		}).
		Mark(ierr.ErrNotFound)
}

// publish emits an invoice event. The change is already committed, so a
// failed publish is logged and not returned.
func (s *invoiceService) publish(ctx context.Context, name publisher.InvoiceEventName, inv *invoice.Invoice, from types.InvoiceStatus) {
	if s.EventPublisher == nil {
		return
	}

	event := &publisher.InvoiceEvent{
		EventName:     name,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		PartnerID:     inv.PartnerID,
		InvoiceMonth:  inv.InvoiceMonth,
		FromStatus:    from,
		ToStatus:      inv.InvoiceStatus,
		Actor:         actor(ctx),
		GrandTotal:    inv.Totals().Grand.StringFixed(2),
	}
	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish invoice event",
			"event_name", name,
			"invoice_id", inv.ID,
			"error", err,
		)
	}
}

// actor names the user behind the request in audit logs and events
func actor(ctx context.Context) string {
	if email := types.GetUserEmail(ctx); email != "" {
		return email
	}
	return types.GetUserID(ctx)
}
