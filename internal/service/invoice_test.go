package service

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/publisher"
	"github.com/flexprice/partnerbilling/internal/testutil"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
	builder *fixtureBuilder
	fixture *billingFixture
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(newTestServiceParams(&s.BaseServiceTestSuite))
	s.builder = newFixtureBuilder(&s.BaseServiceTestSuite)
	s.fixture = s.builder.build()
}

func (s *InvoiceServiceSuite) generateRequest() dto.GenerateInvoiceRequest {
	invoiceDate := date(2024, time.April, 1)
	return dto.GenerateInvoiceRequest{
		PartnerID:    s.fixture.partner.ID,
		InvoiceMonth: s.fixture.month.String(),
		InvoiceDate:  &invoiceDate,
	}
}

func (s *InvoiceServiceSuite) generate() *dto.InvoiceResponse {
	resp, err := s.service.GenerateInvoice(s.GetContext(), s.generateRequest())
	s.Require().NoError(err)
	return resp
}

func (s *InvoiceServiceSuite) recurringLineFor(inv *dto.InvoiceResponse, sourceID string) *invoice.RecurringFeeLine {
	line, ok := lo.Find(inv.RecurringFees, func(l *invoice.RecurringFeeLine) bool {
		return l.SourceID == sourceID
	})
	s.Require().True(ok, "no recurring line for %s", sourceID)
	return line
}

func (s *InvoiceServiceSuite) assertAmount(expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	s.True(dec(expected).Equal(actual), append([]interface{}{"expected %s, got %s", expected, actual.StringFixed(2)}, msgAndArgs...)...)
}

func (s *InvoiceServiceSuite) TestGenerateInvoice() {
	inv := s.generate()

	s.Equal("INV-ACME-2024-03-001", inv.InvoiceNumber)
	s.Equal(1, inv.Sequence)
	s.Equal(types.InvoiceStatusDraft, inv.InvoiceStatus)
	s.Equal("USD", inv.Currency)
	s.Equal("ACME", inv.PartnerCode)
	s.Equal(date(2024, time.April, 1), inv.InvoiceDate)

	s.Require().Len(inv.MonthlyFees, 3)
	s.Equal("ACME0001", inv.MonthlyFees[0].ClientCode)
	s.assertAmount("100.00", inv.MonthlyFees[0].InvoicedAmount)
	s.assertAmount("2.50", inv.MonthlyFees[0].PerEmployeeRate)
	s.Equal("ACME0002", inv.MonthlyFees[1].ClientCode)
	s.assertAmount("65.00", inv.MonthlyFees[1].InvoicedAmount)
	s.Equal("ACME0003", inv.MonthlyFees[2].ClientCode)
	s.assertAmount("0", inv.MonthlyFees[2].InvoicedAmount)
	for _, l := range inv.MonthlyFees {
		s.NotEmpty(l.ID)
		s.Equal(inv.ID, l.InvoiceID)
	}

	s.Require().Len(inv.RecurringFees, 2)
	s.assertAmount("75.00", s.recurringLineFor(inv, s.fixture.support.ID).InvoicedAmount)
	clientLine := s.recurringLineFor(inv, s.fixture.clientFee.ID)
	s.assertAmount("20.00", clientLine.InvoicedAmount)
	s.Equal("ACME0001", clientLine.ClientCode)

	s.Require().Len(inv.OneTimeFees, 1)
	s.Equal(s.fixture.setupFee.ID, inv.OneTimeFees[0].OneTimeFeeID)
	s.assertAmount("250.00", inv.OneTimeFees[0].InvoicedAmount)

	s.assertAmount("165.00", inv.Totals.Monthly)
	s.assertAmount("95.00", inv.Totals.Recurring)
	s.assertAmount("250.00", inv.Totals.OneTime)
	s.assertAmount("510.00", inv.Totals.Grand)

	events := s.GetPublisher().GetEvents()
	s.Require().Len(events, 1)
	s.Equal(publisher.EventInvoiceGenerated, events[0].EventName)
	s.Equal(inv.ID, events[0].InvoiceID)
	s.Equal("510.00", events[0].GrandTotal)
	s.Equal("billing@example.com", events[0].Actor)
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceSequence() {
	first := s.generate()
	second := s.generate()

	s.Equal("INV-ACME-2024-03-001", first.InvoiceNumber)
	s.Equal("INV-ACME-2024-03-002", second.InvoiceNumber)
	s.NotEqual(first.ID, second.ID)

	// the setup fee is already billed on the first invoice
	s.Empty(second.OneTimeFees)
	s.assertAmount("260.00", second.Totals.Grand)

	// april has no usage so the per employee client charge warns first
	req := s.generateRequest()
	req.InvoiceMonth = "2024-04"
	_, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))

	req.AcknowledgeWarnings = true
	april, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	s.Equal("INV-ACME-2024-04-001", april.InvoiceNumber)
	s.Empty(april.MonthlyFees)
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceMonthlyMinimum() {
	s.builder.createLine(s.fixture.partner.ID, s.fixture.items["MIN"], "500")

	inv := s.generate()

	s.Require().Len(inv.RecurringFees, 3)
	trueUp, ok := lo.Find(inv.RecurringFees, func(l *invoice.RecurringFeeLine) bool {
		return l.SystemGenerated
	})
	s.Require().True(ok)
	s.Equal(types.RecurringSourceMonthlyMinimum, trueUp.Source)
	s.Equal(s.GetConfig().Billing.MinimumFeeItemName, trueUp.ItemName)
	s.assertAmount("400.00", trueUp.InvoicedAmount)

	s.assertAmount("495.00", inv.Totals.Recurring)
	s.assertAmount("910.00", inv.Totals.Grand)
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceSelection() {
	tests := []struct {
		name          string
		selection     dto.InvoiceSelection
		wantErr       bool
		monthly       string
		recurring     string
		oneTime       string
		monthlyLines  int
		recurringLine int
	}{
		{
			name: "selected clients only",
			selection: dto.InvoiceSelection{
				SelectedClientCodes:   []string{" acme0002 "},
				SelectedRecurringIDs:  []string{},
				SelectedOneTimeFeeIDs: []string{},
			},
			monthly:       "65.00",
			recurring:     "0",
			oneTime:       "0",
			monthlyLines:  1,
			recurringLine: 0,
		},
		{
			name: "partner level recurring only",
			selection: dto.InvoiceSelection{
				SelectedClientCodes:  []string{},
				SelectedRecurringIDs: []string{s.fixture.support.ID},
			},
			monthly:       "0",
			recurring:     "75.00",
			oneTime:       "250.00",
			monthlyLines:  0,
			recurringLine: 1,
		},
		{
			name: "unknown one-time fee",
			selection: dto.InvoiceSelection{
				SelectedOneTimeFeeIDs: []string{"otf_unknown"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.generateRequest()
			req.InvoiceSelection = tt.selection

			preview, err := s.service.PreviewInvoice(s.GetContext(), req)
			if tt.wantErr {
				s.Error(err)
				s.True(ierr.IsValidation(err))
				return
			}
			s.Require().NoError(err)
			s.Len(preview.MonthlyFees, tt.monthlyLines)
			s.Len(preview.RecurringFees, tt.recurringLine)
			s.assertAmount(tt.monthly, preview.Totals.Monthly)
			s.assertAmount(tt.recurring, preview.Totals.Recurring)
			s.assertAmount(tt.oneTime, preview.Totals.OneTime)
		})
	}
}

func (s *InvoiceServiceSuite) TestPreviewInvoice() {
	preview, err := s.service.PreviewInvoice(s.GetContext(), s.generateRequest())
	s.Require().NoError(err)

	s.Equal("ACME", preview.PartnerCode)
	s.assertAmount("510.00", preview.Totals.Grand)
	s.Len(preview.RecurringCandidates, 2)
	s.Len(preview.EligibleOneTimeFees, 1)
	s.Empty(preview.Warnings)

	list, err := s.service.ListInvoices(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Empty(list.Items)
	s.Empty(s.GetPublisher().GetEvents())
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceWarnings() {
	perEmployee := dec("1.00")
	_, err := s.builder.config.CreateClientBilling(s.GetContext(), s.fixture.partner.ID, dto.CreateClientBillingRequest{
		ClientCode:        "ACME0009",
		ClientName:        "Missing Client",
		BillingItemID:     s.fixture.items["HR"].ID,
		BaseAmount:        dec("5"),
		PerEmployeeAmount: &perEmployee,
		BillingDate:       date(2024, time.January, 1),
	})
	s.Require().NoError(err)

	_, err = s.service.GenerateInvoice(s.GetContext(), s.generateRequest())
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))

	list, err := s.service.ListInvoices(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Empty(list.Items)

	req := s.generateRequest()
	req.AcknowledgeWarnings = true
	inv, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	s.assertAmount("100.00", inv.Totals.Recurring)
	s.Equal("INV-ACME-2024-03-001", inv.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceOverrides() {
	tests := []struct {
		name    string
		reason  string
		amount  string
		wantErr bool
	}{
		{
			name:    "override without reason",
			amount:  "60",
			wantErr: true,
		},
		{
			name:    "negative amount",
			amount:  "-1",
			reason:  "credit",
			wantErr: true,
		},
		{
			name:   "override with reason",
			amount: "60",
			reason: "loyalty discount",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			amount := dec(tt.amount)
			req := s.generateRequest()
			req.RecurringOverrides = []dto.LineOverride{{
				ID:             s.fixture.support.ID,
				InvoicedAmount: &amount,
				OverrideReason: tt.reason,
			}}

			inv, err := s.service.GenerateInvoice(s.GetContext(), req)
			if tt.wantErr {
				s.Error(err)
				s.True(ierr.IsValidation(err))
				return
			}
			s.Require().NoError(err)
			line := s.recurringLineFor(inv, s.fixture.support.ID)
			s.assertAmount("75.00", line.OriginalAmount)
			s.assertAmount("60.00", line.InvoicedAmount)
			s.Equal(tt.reason, line.OverrideReason)
			s.assertAmount("80.00", inv.Totals.Recurring)
		})
	}
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceIdempotency() {
	req := s.generateRequest()
	req.IdempotencyKey = lo.ToPtr("march-run")

	first, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	second, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(first.InvoiceNumber, second.InvoiceNumber)

	req.IdempotencyKey = lo.ToPtr("march-rerun")
	third, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	s.NotEqual(first.ID, third.ID)
	s.Equal("INV-ACME-2024-03-002", third.InvoiceNumber)

	s.Equal([]publisher.InvoiceEventName{
		publisher.EventInvoiceGenerated,
		publisher.EventInvoiceGenerated,
	}, s.GetPublisher().EventNames())
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceRetriesNumberConflict() {
	conflict := func() error {
		return ierr.NewError("invoice number already taken").Mark(ierr.ErrVersionConflict)
	}

	s.Run("single conflict is retried", func() {
		s.GetInvoiceStore().FailNextCreates(conflict())
		before := s.GetDB().TxCount()

		inv, err := s.service.GenerateInvoice(s.GetContext(), s.generateRequest())
		s.Require().NoError(err)
		s.Equal("INV-ACME-2024-03-001", inv.InvoiceNumber)
		s.Equal(before+2, s.GetDB().TxCount())
	})

	s.Run("conflicts exhaust the attempts", func() {
		attempts := s.GetConfig().Billing.GenerationRetry.MaxAttempts
		errs := make([]error, attempts)
		for i := range errs {
			errs[i] = conflict()
		}
		s.GetInvoiceStore().FailNextCreates(errs...)

		_, err := s.service.GenerateInvoice(s.GetContext(), s.generateRequest())
		s.Require().Error(err)
		s.True(ierr.IsVersionConflict(err))
	})
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceRollsBack() {
	s.GetDB().FailNextTx = ierr.WithError(errors.New("connection reset")).Mark(ierr.ErrDatabase)
	before := s.GetDB().TxCount()

	_, err := s.service.GenerateInvoice(s.GetContext(), s.generateRequest())
	s.Require().Error(err)
	s.True(ierr.IsDatabase(err))
	s.Equal(before+1, s.GetDB().TxCount())

	// the failed attempt neither kept an invoice nor consumed a number
	inv := s.generate()
	s.Equal("INV-ACME-2024-03-001", inv.InvoiceNumber)
	s.Len(inv.OneTimeFees, 1)
}

func (s *InvoiceServiceSuite) TestOneTimeFeeBilledOnce() {
	first := s.generate()
	s.Require().Len(first.OneTimeFees, 1)

	req := s.generateRequest()
	req.SelectedOneTimeFeeIDs = []string{s.fixture.setupFee.ID}
	_, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.VoidInvoice(s.GetContext(), first.ID)
	s.Require().NoError(err)

	rebill, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	s.Require().Len(rebill.OneTimeFees, 1)
	s.Equal(s.fixture.setupFee.ID, rebill.OneTimeFees[0].OneTimeFeeID)

	// the void invoice cannot come back while its fee is billed again
	_, err = s.service.ReopenInvoice(s.GetContext(), first.ID)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.VoidInvoice(s.GetContext(), rebill.ID)
	s.Require().NoError(err)
	reopened, err := s.service.ReopenInvoice(s.GetContext(), first.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusDraft, reopened.InvoiceStatus)
	s.Nil(reopened.VoidedAt)
}

func (s *InvoiceServiceSuite) TestStatusTransitions() {
	inv := s.generate()
	ctx := s.GetContext()

	final, err := s.service.FinalizeInvoice(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusFinal, final.InvoiceStatus)
	s.NotNil(final.FinalizedAt)

	_, err = s.service.FinalizeInvoice(ctx, inv.ID)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	reopened, err := s.service.UpdateInvoiceStatus(ctx, inv.ID, dto.UpdateInvoiceStatusRequest{Status: " Draft "})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusDraft, reopened.InvoiceStatus)
	s.Nil(reopened.FinalizedAt)

	voided, err := s.service.UpdateInvoiceStatus(ctx, inv.ID, dto.UpdateInvoiceStatusRequest{Status: "void"})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusVoid, voided.InvoiceStatus)
	s.NotNil(voided.VoidedAt)

	_, err = s.service.FinalizeInvoice(ctx, inv.ID)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.UpdateInvoiceStatus(ctx, inv.ID, dto.UpdateInvoiceStatusRequest{Status: "paid"})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.FinalizeInvoice(ctx, "inv_missing")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))

	events := s.GetPublisher().GetEvents()
	s.Equal([]publisher.InvoiceEventName{
		publisher.EventInvoiceGenerated,
		publisher.EventInvoiceFinalized,
		publisher.EventInvoiceReopened,
		publisher.EventInvoiceVoided,
	}, s.GetPublisher().EventNames())
	s.Equal(types.InvoiceStatusFinal, events[2].FromStatus)
	s.Equal(types.InvoiceStatusDraft, events[2].ToStatus)

	// lines are kept on the void invoice
	stored, err := s.service.GetInvoice(ctx, inv.ID)
	s.Require().NoError(err)
	s.Len(stored.MonthlyFees, 3)
	s.assertAmount("510.00", stored.Totals.Grand)
}

func (s *InvoiceServiceSuite) TestRegenerateInvoice() {
	inv := s.generate()

	s.builder.importUsage(s.fixture.month.String(),
		usageRow("ACME0001", "Widgets Inc", true, 20),
		usageRow("ACME0002", "Gadgets LLC", true, 15),
	)

	regenerated, err := s.service.RegenerateInvoice(s.GetContext(), inv.ID, dto.RegenerateInvoiceRequest{})
	s.Require().NoError(err)
	s.Equal(inv.ID, regenerated.ID)
	s.Equal(inv.InvoiceNumber, regenerated.InvoiceNumber)
	s.Require().Len(regenerated.MonthlyFees, 2)
	s.assertAmount("87.50", regenerated.MonthlyFees[1].InvoicedAmount)
	s.assertAmount("187.50", regenerated.Totals.Monthly)

	// its own one-time fee stays eligible
	s.Require().Len(regenerated.OneTimeFees, 1)
	s.assertAmount("532.50", regenerated.Totals.Grand)

	_, err = s.service.FinalizeInvoice(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	_, err = s.service.RegenerateInvoice(s.GetContext(), inv.ID, dto.RegenerateInvoiceRequest{})
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	s.Contains(s.GetPublisher().EventNames(), publisher.EventInvoiceRegenerated)
}

func (s *InvoiceServiceSuite) TestUpdateLineOverride() {
	s.builder.createLine(s.fixture.partner.ID, s.fixture.items["MIN"], "500")
	inv := s.generate()
	ctx := s.GetContext()

	support := s.recurringLineFor(inv, s.fixture.support.ID)
	trueUp, ok := lo.Find(inv.RecurringFees, func(l *invoice.RecurringFeeLine) bool {
		return l.SystemGenerated
	})
	s.Require().True(ok)

	tests := []struct {
		name    string
		lineID  string
		req     dto.UpdateInvoiceLineRequest
		checkFn func(error) bool
	}{
		{
			name:    "reason is required",
			lineID:  support.ID,
			req:     dto.UpdateInvoiceLineRequest{LineType: types.InvoiceLineTypeRecurring, InvoicedAmount: dec("60")},
			checkFn: ierr.IsValidation,
		},
		{
			name:    "system generated line",
			lineID:  trueUp.ID,
			req:     dto.UpdateInvoiceLineRequest{LineType: types.InvoiceLineTypeRecurring, InvoicedAmount: dec("0"), OverrideReason: "waived"},
			checkFn: ierr.IsInvalidOperation,
		},
		{
			name:    "monthly line",
			lineID:  inv.MonthlyFees[0].ID,
			req:     dto.UpdateInvoiceLineRequest{LineType: types.InvoiceLineTypeMonthly, InvoicedAmount: dec("0"), OverrideReason: "waived"},
			checkFn: ierr.IsInvalidOperation,
		},
		{
			name:    "unknown line",
			lineID:  "inrl_missing",
			req:     dto.UpdateInvoiceLineRequest{LineType: types.InvoiceLineTypeOneTime, InvoicedAmount: dec("0"), OverrideReason: "waived"},
			checkFn: ierr.IsNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.UpdateLineOverride(ctx, inv.ID, tt.lineID, tt.req)
			s.Require().Error(err)
			s.True(tt.checkFn(err))
		})
	}

	s.Run("override and restore", func() {
		updated, err := s.service.UpdateLineOverride(ctx, inv.ID, support.ID, dto.UpdateInvoiceLineRequest{
			LineType:       types.InvoiceLineTypeRecurring,
			InvoicedAmount: dec("60.004"),
			OverrideReason: " loyalty discount ",
		})
		s.Require().NoError(err)
		line := s.recurringLineFor(updated, s.fixture.support.ID)
		s.assertAmount("60.00", line.InvoicedAmount)
		s.assertAmount("75.00", line.OriginalAmount)
		s.Equal("loyalty discount", line.OverrideReason)
		s.assertAmount("480.00", updated.Totals.Recurring)

		restored, err := s.service.UpdateLineOverride(ctx, inv.ID, support.ID, dto.UpdateInvoiceLineRequest{
			LineType:       types.InvoiceLineTypeRecurring,
			InvoicedAmount: dec("75"),
			OverrideReason: "stale reason",
		})
		s.Require().NoError(err)
		s.Empty(s.recurringLineFor(restored, s.fixture.support.ID).OverrideReason)
	})

	s.Run("one-time line", func() {
		updated, err := s.service.UpdateLineOverride(ctx, inv.ID, inv.OneTimeFees[0].ID, dto.UpdateInvoiceLineRequest{
			LineType:       types.InvoiceLineTypeOneTime,
			InvoicedAmount: dec("200"),
			OverrideReason: "partial setup",
		})
		s.Require().NoError(err)
		s.assertAmount("200.00", updated.Totals.OneTime)
	})

	s.Run("final invoice is locked", func() {
		_, err := s.service.FinalizeInvoice(ctx, inv.ID)
		s.Require().NoError(err)
		_, err = s.service.UpdateLineOverride(ctx, inv.ID, support.ID, dto.UpdateInvoiceLineRequest{
			LineType:       types.InvoiceLineTypeRecurring,
			InvoicedAmount: dec("10"),
			OverrideReason: "late change",
		})
		s.Require().Error(err)
		s.True(ierr.IsInvalidOperation(err))
	})
}

func (s *InvoiceServiceSuite) TestListInvoices() {
	first := s.generate()
	s.generate()

	other := s.builder.createPartner("BETA", "Beta Payroll")
	_, err := s.service.GenerateInvoice(s.GetContext(), dto.GenerateInvoiceRequest{
		PartnerID:    other.ID,
		InvoiceMonth: "2024-03",
	})
	s.Require().NoError(err)

	filter := types.NewInvoiceFilter()
	filter.PartnerID = s.fixture.partner.ID
	list, err := s.service.ListInvoices(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Len(list.Items, 2)
	s.Equal(2, list.Pagination.Total)
	s.assertAmount("770.00", list.Totals.Grand)

	_, err = s.service.FinalizeInvoice(s.GetContext(), first.ID)
	s.Require().NoError(err)

	filter = types.NewInvoiceFilter()
	filter.InvoiceStatus = []types.InvoiceStatus{types.InvoiceStatusFinal}
	list, err = s.service.ListInvoices(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Require().Len(list.Items, 1)
	s.Equal(first.ID, list.Items[0].ID)

	all, err := s.service.ListInvoices(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Len(all.Items, 3)
}
