package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/flexprice/partnerbilling/internal/api/dto"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type OneTimeFeeServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  OneTimeFeeService
	invoices InvoiceService
	fixture  *billingFixture
}

func TestOneTimeFeeService(t *testing.T) {
	suite.Run(t, new(OneTimeFeeServiceSuite))
}

func (s *OneTimeFeeServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewOneTimeFeeService(params)
	s.invoices = NewInvoiceService(params)
	s.fixture = newFixtureBuilder(&s.BaseServiceTestSuite).build()
}

func (s *OneTimeFeeServiceSuite) TestCreateOneTimeFee() {
	tests := []struct {
		name    string
		req     dto.CreateOneTimeFeeRequest
		checkFn func(error) bool
	}{
		{
			name: "zero amount",
			req: dto.CreateOneTimeFeeRequest{
				PartnerID:     s.fixture.partner.ID,
				ClientName:    "Widgets Inc",
				BillingItemID: s.fixture.items["SETUP"].ID,
				Amount:        dec("0"),
				BillingDate:   date(2024, time.March, 20),
			},
			checkFn: ierr.IsValidation,
		},
		{
			name: "negative amount",
			req: dto.CreateOneTimeFeeRequest{
				PartnerID:     s.fixture.partner.ID,
				ClientName:    "Widgets Inc",
				BillingItemID: s.fixture.items["SETUP"].ID,
				Amount:        dec("-10"),
				BillingDate:   date(2024, time.March, 20),
			},
			checkFn: ierr.IsValidation,
		},
		{
			name: "unknown partner",
			req: dto.CreateOneTimeFeeRequest{
				PartnerID:     "ptnr_missing",
				ClientName:    "Widgets Inc",
				BillingItemID: s.fixture.items["SETUP"].ID,
				Amount:        dec("10"),
				BillingDate:   date(2024, time.March, 20),
			},
			checkFn: ierr.IsNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreateOneTimeFee(s.GetContext(), tt.req)
			s.Require().Error(err)
			s.True(tt.checkFn(err))
		})
	}

	fee, err := s.service.GetOneTimeFee(s.GetContext(), s.fixture.setupFee.ID)
	s.Require().NoError(err)
	s.Equal("ACME", fee.PartnerCode)
	s.Equal("SETUP", fee.ItemCode)
	s.Equal("Setup Fee", fee.ItemName)
}

func (s *OneTimeFeeServiceSuite) TestCreateOneTimeFeesBulk() {
	ctx := s.GetContext()

	s.Run("any invalid row rejects the batch", func() {
		_, err := s.service.CreateOneTimeFeesBulk(ctx, dto.CreateOneTimeFeesBulkRequest{
			Fees: []dto.BulkOneTimeFeeRow{
				{PartnerCode: "acme", ClientName: "Widgets Inc", ItemCode: "SETUP", Amount: "$1,250.00", BillingDate: "2024-03-10"},
				{PartnerCode: "ZZZZ", ClientName: "Widgets Inc", ItemCode: "SETUP", Amount: "10", BillingDate: "2024-03-10"},
				{PartnerCode: "ACME", ClientName: "Widgets Inc", ItemCode: "SETUP", Amount: "free", BillingDate: "2024-03-10"},
				{PartnerCode: "ACME", ClientName: "Widgets Inc", ItemCode: "SETUP", Amount: "10", BillingDate: "03/10/2024"},
			},
		})
		s.Require().Error(err)
		s.True(ierr.IsValidation(err))

		details := errors.GetAllSafeDetails(err)
		encoded, _ := json.Marshal(details)
		s.Contains(string(encoded), "Row 2: partner ZZZZ not found")
		s.Contains(string(encoded), "Row 3: amount must be a number greater than zero")
		s.Contains(string(encoded), "Row 4: billing date must be in YYYY-MM-DD format")

		eligible, err := s.service.ListEligible(ctx, s.fixture.partner.ID, "2024-03")
		s.Require().NoError(err)
		s.Len(eligible.Items, 1)
	})

	s.Run("valid rows are created together", func() {
		resp, err := s.service.CreateOneTimeFeesBulk(ctx, dto.CreateOneTimeFeesBulkRequest{
			Fees: []dto.BulkOneTimeFeeRow{
				{PartnerCode: "acme", ClientName: "Widgets Inc", ItemCode: "SETUP", Amount: "$1,250.00", BillingDate: "2024-03-10"},
				{PartnerCode: "ACME", ClientName: "Gadgets LLC", ItemCode: "HR", Amount: "99.999", BillingDate: "2024-04-02", Description: "Training"},
			},
		})
		s.Require().NoError(err)
		s.Equal(2, resp.Created)
		s.True(dec("1250").Equal(resp.Fees[0].Amount))
		s.True(dec("100").Equal(resp.Fees[1].Amount))
		s.Equal(s.fixture.partner.ID, resp.Fees[0].PartnerID)

		march, err := s.service.ListEligible(ctx, s.fixture.partner.ID, "2024-03")
		s.Require().NoError(err)
		s.Require().Len(march.Items, 2)
		// ordered by billing date
		s.Equal(date(2024, time.March, 10), march.Items[0].BillingDate)

		april, err := s.service.ListEligible(ctx, s.fixture.partner.ID, "2024-04")
		s.Require().NoError(err)
		s.Len(april.Items, 1)
	})
}

func (s *OneTimeFeeServiceSuite) TestDeleteOneTimeFee() {
	ctx := s.GetContext()

	inv, err := s.invoices.GenerateInvoice(ctx, dto.GenerateInvoiceRequest{
		PartnerID:    s.fixture.partner.ID,
		InvoiceMonth: s.fixture.month.String(),
	})
	s.Require().NoError(err)
	s.Require().Len(inv.OneTimeFees, 1)

	eligible, err := s.service.ListEligible(ctx, s.fixture.partner.ID, "2024-03")
	s.Require().NoError(err)
	s.Empty(eligible.Items)

	err = s.service.DeleteOneTimeFee(ctx, s.fixture.setupFee.ID)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.invoices.VoidInvoice(ctx, inv.ID)
	s.Require().NoError(err)

	eligible, err = s.service.ListEligible(ctx, s.fixture.partner.ID, "2024-03")
	s.Require().NoError(err)
	s.Len(eligible.Items, 1)

	s.Require().NoError(s.service.DeleteOneTimeFee(ctx, s.fixture.setupFee.ID))
	_, err = s.service.GetOneTimeFee(ctx, s.fixture.setupFee.ID)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *OneTimeFeeServiceSuite) TestListOneTimeFees() {
	ctx := s.GetContext()
	builder := newFixtureBuilder(&s.BaseServiceTestSuite)
	beta := builder.createPartner("BETA", "Beta Payroll")

	_, err := s.service.CreateOneTimeFeesBulk(ctx, dto.CreateOneTimeFeesBulkRequest{
		Fees: []dto.BulkOneTimeFeeRow{
			{PartnerCode: "ACME", ClientName: "Gadgets LLC", ItemCode: "HR", Amount: "40", BillingDate: "2024-04-02"},
			{PartnerCode: "BETA", ClientName: "Beta Client", ItemCode: "SETUP", Amount: "90", BillingDate: "2024-02-11"},
		},
	})
	s.Require().NoError(err)

	all, err := s.service.ListOneTimeFees(ctx, dto.ListOneTimeFeesRequest{})
	s.Require().NoError(err)
	s.Require().Len(all.Items, 3)
	// newest billing date first
	s.Equal(date(2024, time.April, 2), all.Items[0].BillingDate)
	s.Equal(date(2024, time.March, 15), all.Items[1].BillingDate)
	s.Equal(date(2024, time.February, 11), all.Items[2].BillingDate)
	s.Equal("BETA", all.Items[2].PartnerCode)

	onlyBeta, err := s.service.ListOneTimeFees(ctx, dto.ListOneTimeFeesRequest{PartnerID: beta.ID})
	s.Require().NoError(err)
	s.Require().Len(onlyBeta.Items, 1)
	s.Equal("Beta Client", onlyBeta.Items[0].ClientName)

	_, err = s.service.ListOneTimeFees(ctx, dto.ListOneTimeFeesRequest{PartnerID: "ptnr_missing"})
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))

	// billing the March fee hides it until the invoice is voided
	inv, err := s.invoices.GenerateInvoice(ctx, dto.GenerateInvoiceRequest{
		PartnerID:    s.fixture.partner.ID,
		InvoiceMonth: s.fixture.month.String(),
	})
	s.Require().NoError(err)

	unbilled, err := s.service.ListOneTimeFees(ctx, dto.ListOneTimeFeesRequest{PartnerID: s.fixture.partner.ID})
	s.Require().NoError(err)
	s.Require().Len(unbilled.Items, 1)
	s.Equal("Gadgets LLC", unbilled.Items[0].ClientName)

	_, err = s.invoices.VoidInvoice(ctx, inv.ID)
	s.Require().NoError(err)

	unbilled, err = s.service.ListOneTimeFees(ctx, dto.ListOneTimeFeesRequest{PartnerID: s.fixture.partner.ID})
	s.Require().NoError(err)
	s.Len(unbilled.Items, 2)
}

func (s *OneTimeFeeServiceSuite) TestUpdateOneTimeFee() {
	ctx := s.GetContext()
	id := s.fixture.setupFee.ID

	s.Run("edit an unbilled fee", func() {
		resp, err := s.service.UpdateOneTimeFee(ctx, id, dto.UpdateOneTimeFeeRequest{
			ClientName:    lo.ToPtr(" Gadgets LLC "),
			BillingItemID: lo.ToPtr(s.fixture.items["HR"].ID),
			Amount:        lo.ToPtr(dec("300.005")),
			BillingDate:   lo.ToPtr(date(2024, time.March, 20)),
		})
		s.Require().NoError(err)
		s.Equal("Gadgets LLC", resp.ClientName)
		s.Equal("HR", resp.ItemCode)
		s.Equal("HR Support", resp.ItemName)
		s.Equal("ACME", resp.PartnerCode)
		s.Equal("Implementation", resp.Description)
		s.Equal("300.01", resp.Amount.StringFixed(2))

		fee, err := s.service.GetOneTimeFee(ctx, id)
		s.Require().NoError(err)
		s.Equal(date(2024, time.March, 20), fee.BillingDate)
	})

	s.Run("invalid edits", func() {
		tests := []struct {
			name    string
			req     dto.UpdateOneTimeFeeRequest
			checkFn func(error) bool
		}{
			{name: "zero amount", req: dto.UpdateOneTimeFeeRequest{Amount: lo.ToPtr(dec("0"))}, checkFn: ierr.IsValidation},
			{name: "negative amount", req: dto.UpdateOneTimeFeeRequest{Amount: lo.ToPtr(dec("-5"))}, checkFn: ierr.IsValidation},
			{name: "blank client", req: dto.UpdateOneTimeFeeRequest{ClientName: lo.ToPtr("  ")}, checkFn: ierr.IsValidation},
			{name: "unknown partner", req: dto.UpdateOneTimeFeeRequest{PartnerID: lo.ToPtr("ptnr_missing")}, checkFn: ierr.IsNotFound},
			{name: "unknown item", req: dto.UpdateOneTimeFeeRequest{BillingItemID: lo.ToPtr("bitm_missing")}, checkFn: ierr.IsNotFound},
		}
		for _, tt := range tests {
			s.Run(tt.name, func() {
				_, err := s.service.UpdateOneTimeFee(ctx, id, tt.req)
				s.Require().Error(err)
				s.True(tt.checkFn(err))
			})
		}
	})

	s.Run("billed fee is locked until the invoice is voided", func() {
		inv, err := s.invoices.GenerateInvoice(ctx, dto.GenerateInvoiceRequest{
			PartnerID:    s.fixture.partner.ID,
			InvoiceMonth: s.fixture.month.String(),
		})
		s.Require().NoError(err)
		s.Require().Len(inv.OneTimeFees, 1)

		_, err = s.service.UpdateOneTimeFee(ctx, id, dto.UpdateOneTimeFeeRequest{
			Amount: lo.ToPtr(dec("1")),
		})
		s.Require().Error(err)
		s.True(ierr.IsInvalidOperation(err))

		fee, err := s.service.GetOneTimeFee(ctx, id)
		s.Require().NoError(err)
		s.Equal("300.01", fee.Amount.StringFixed(2))

		_, err = s.invoices.VoidInvoice(ctx, inv.ID)
		s.Require().NoError(err)

		resp, err := s.service.UpdateOneTimeFee(ctx, id, dto.UpdateOneTimeFeeRequest{
			Amount: lo.ToPtr(dec("1")),
		})
		s.Require().NoError(err)
		s.True(dec("1").Equal(resp.Amount))
	})

	s.Run("unknown fee", func() {
		_, err := s.service.UpdateOneTimeFee(ctx, "otf_missing", dto.UpdateOneTimeFeeRequest{
			Amount: lo.ToPtr(dec("1")),
		})
		s.Require().Error(err)
		s.True(ierr.IsNotFound(err))
	})
}
