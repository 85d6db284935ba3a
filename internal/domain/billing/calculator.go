package billing

import (
	"sort"

	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Options carries the deployment level settings of the calculation
type Options struct {
	TierMode           types.TierMode
	MinimumFeeItemName string
}

// Input is everything the calculator needs for one partner and month
type Input struct {
	Month    types.YearMonth
	Snapshot *billingconfig.Snapshot
	// Usage holds the partner's raw usage rows for the month, duplicates allowed
	Usage []usage.MonthlyUsageRecord

	// SelectedClientCodes limits the monthly lines; nil selects every client
	SelectedClientCodes []string
	// SelectedRecurringIDs limits the recurring candidates; nil selects all of them
	SelectedRecurringIDs []string
	RecurringOverrides   map[string]Override

	// OneTimeFees are the eligible fees chosen for the invoice
	OneTimeFees      []*onetimefee.OneTimeFee
	OneTimeOverrides map[string]Override
}

// LineWarning is a fee warning with the candidate it belongs to
type LineWarning struct {
	CandidateID string `json:"candidate_id"`
	ClientCode  string `json:"client_code,omitempty"`
	types.FeeWarning
}

// Result is a fully resolved set of invoice lines
type Result struct {
	MonthlyFees   []*invoice.MonthlyFeeLine
	RecurringFees []*invoice.RecurringFeeLine
	OneTimeFees   []*invoice.OneTimeFeeLine
	Shortfall     decimal.Decimal
	Warnings      []LineWarning
}

// Totals sums the result the same way a persisted invoice does
func (r *Result) Totals() invoice.Totals {
	inv := &invoice.Invoice{
		MonthlyFees:   r.MonthlyFees,
		RecurringFees: r.RecurringFees,
		OneTimeFees:   r.OneTimeFees,
	}
	return inv.Totals()
}

// Calculator resolves invoice lines from usage, configuration and selections
type Calculator struct {
	opts Options
}

func NewCalculator(opts Options) *Calculator {
	if opts.TierMode == "" {
		opts.TierMode = types.TierModeBracket
	}
	return &Calculator{opts: opts}
}

// Calculate resolves every line of the invoice. Selection and override
// problems across all lines are reported together as one validation error.
func (c *Calculator) Calculate(in Input) (*Result, error) {
	if in.Snapshot == nil {
		return nil, ierr.NewError("billing configuration is required").
			WithHint("Partner billing configuration could not be loaded").
			Mark(ierr.ErrValidation)
	}

	records := Aggregate(in.Usage)
	selected, err := selectRecords(records, in.SelectedClientCodes)
	if err != nil {
		return nil, err
	}

	result := &Result{
		MonthlyFees:   make([]*invoice.MonthlyFeeLine, 0, len(selected)),
		RecurringFees: make([]*invoice.RecurringFeeLine, 0),
		OneTimeFees:   make([]*invoice.OneTimeFeeLine, 0, len(in.OneTimeFees)),
		Warnings:      make([]LineWarning, 0),
	}

	baseFee := in.Snapshot.BaseFeeAmount()
	pricing := PricingFromSnapshot(in.Snapshot, c.opts.TierMode)
	for _, r := range selected {
		fee := ComputeMonthlyFee(r, baseFee, pricing)
		result.MonthlyFees = append(result.MonthlyFees, &invoice.MonthlyFeeLine{
			ClientCode:           r.ClientCode,
			ClientName:           r.ClientName,
			IsPayGroupActive:     r.IsPayGroupActive,
			TotalActiveEmployees: r.TotalActiveEmployees,
			BaseFeeAmount:        fee.Base,
			PerEmployeeRate:      fee.Rate,
			PerEmployeeFeeAmount: fee.PerEmployee,
			OriginalAmount:       fee.Total,
			InvoicedAmount:       fee.Total,
		})
	}

	result.Shortfall = decimal.Zero
	if in.Snapshot.HasMonthlyMinimum() {
		result.Shortfall = ComputeShortfall(selected, baseFee, in.Snapshot.MinimumAmount())
		if line := MinimumTrueUpLine(in.Snapshot.MonthlyMinimum, result.Shortfall, c.opts.MinimumFeeItemName); line != nil {
			result.RecurringFees = append(result.RecurringFees, line)
		}
	}

	invalid := make([]map[string]any, 0)

	candidates, err := selectCandidates(RecurringCandidates(in.Snapshot), in.SelectedRecurringIDs)
	if err != nil {
		return nil, err
	}
	if err := checkOverrideTargets(in, candidates); err != nil {
		return nil, err
	}
	idx := NewUsageIndex(records)
	for _, cand := range candidates {
		line, err := ResolveRecurringFee(cand, idx, in.RecurringOverrides[cand.ID])
		if err != nil {
			invalid = append(invalid, invalidLine(types.InvoiceLineTypeRecurring, cand.ID, err))
			continue
		}
		for _, w := range line.Warnings {
			result.Warnings = append(result.Warnings, LineWarning{
				CandidateID: cand.ID,
				ClientCode:  cand.ClientCode,
				FeeWarning:  w,
			})
		}
		result.RecurringFees = append(result.RecurringFees, line)
	}

	for _, fee := range in.OneTimeFees {
		line, err := ResolveOneTimeFee(fee, in.OneTimeOverrides[fee.ID])
		if err != nil {
			invalid = append(invalid, invalidLine(types.InvoiceLineTypeOneTime, fee.ID, err))
			continue
		}
		result.OneTimeFees = append(result.OneTimeFees, line)
	}

	if len(invalid) > 0 {
		return nil, ierr.NewError("invoice lines failed validation").
			WithHint("Every overridden amount needs a reason and cannot be negative").
			WithReportableDetails(map[string]any{
				"lines": invalid,
			}).
			Mark(ierr.ErrValidation)
	}

	return result, nil
}

func invalidLine(lineType types.InvoiceLineType, id string, err error) map[string]any {
	return map[string]any{
		"line_type": lineType,
		"id":        id,
		"error":     err.Error(),
	}
}

func selectRecords(records []usage.MonthlyUsageRecord, codes []string) ([]usage.MonthlyUsageRecord, error) {
	if codes == nil {
		return records, nil
	}

	known := lo.SliceToMap(records, func(r usage.MonthlyUsageRecord) (string, bool) {
		return r.ClientCode, true
	})
	unknown := lo.Filter(codes, func(code string, _ int) bool {
		return !known[code]
	})
	if len(unknown) > 0 {
		return nil, ierr.NewError("selected clients have no usage for the month").
			WithHint("Some selected clients were not found in the monthly billing data").
			WithReportableDetails(map[string]any{
				"client_codes": unknown,
			}).
			Mark(ierr.ErrValidation)
	}

	wanted := lo.SliceToMap(codes, func(code string) (string, bool) {
		return code, true
	})
	return lo.Filter(records, func(r usage.MonthlyUsageRecord, _ int) bool {
		return wanted[r.ClientCode]
	}), nil
}

// checkOverrideTargets rejects overrides for lines that are not on the invoice
func checkOverrideTargets(in Input, candidates []RecurringCandidate) error {
	recurring := lo.SliceToMap(candidates, func(c RecurringCandidate) (string, bool) {
		return c.ID, true
	})
	oneTime := lo.SliceToMap(in.OneTimeFees, func(f *onetimefee.OneTimeFee) (string, bool) {
		return f.ID, true
	})

	unknownRecurring := lo.Filter(lo.Keys(in.RecurringOverrides), func(id string, _ int) bool {
		return !recurring[id]
	})
	unknownOneTime := lo.Filter(lo.Keys(in.OneTimeOverrides), func(id string, _ int) bool {
		return !oneTime[id]
	})
	if len(unknownRecurring) == 0 && len(unknownOneTime) == 0 {
		return nil
	}

	sort.Strings(unknownRecurring)
	sort.Strings(unknownOneTime)
	return ierr.NewError("overrides reference fees not on the invoice").
		WithHint("Some overrides do not match a selected recurring or one-time fee").
		WithReportableDetails(map[string]any{
			"recurring_ids": unknownRecurring,
			"one_time_ids":  unknownOneTime,
		}).
		Mark(ierr.ErrValidation)
}

func selectCandidates(candidates []RecurringCandidate, ids []string) ([]RecurringCandidate, error) {
	if ids == nil {
		return candidates, nil
	}

	known := lo.SliceToMap(candidates, func(c RecurringCandidate) (string, bool) {
		return c.ID, true
	})
	unknown := lo.Filter(ids, func(id string, _ int) bool {
		return !known[id]
	})
	if len(unknown) > 0 {
		return nil, ierr.NewError("selected recurring fees are not billable for the month").
			WithHint("Some selected recurring fees are inactive or outside their billing window").
			WithReportableDetails(map[string]any{
				"recurring_ids": unknown,
			}).
			Mark(ierr.ErrValidation)
	}

	wanted := lo.SliceToMap(ids, func(id string) (string, bool) {
		return id, true
	})
	return lo.Filter(candidates, func(c RecurringCandidate, _ int) bool {
		return wanted[c.ID]
	}), nil
}
