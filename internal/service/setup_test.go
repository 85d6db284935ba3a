package service

import (
	"time"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/testutil"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		PartnerRepo:       stores.PartnerRepo,
		BillingItemRepo:   stores.BillingItemRepo,
		BillingConfigRepo: stores.BillingConfigRepo,
		ClientBillingRepo: stores.ClientBillingRepo,
		UsageRepo:         stores.UsageRepo,
		OneTimeFeeRepo:    stores.OneTimeFeeRepo,
		InvoiceRepo:       stores.InvoiceRepo,
		EventPublisher:    s.GetPublisher(),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// billingFixture is a partner with a complete billing setup and usage for March 2024:
//
//	ACME0001 active, 20 employees: 50 base + 20 x 2.50 = 100.00
//	ACME0002 active, 5 employees:  50 base + 5 x 3.00  = 65.00
//	ACME0003 inactive, 8 employees: 0.00
//	support line 75.00, client charge on ACME0001 10 + 20 x 0.50 = 20.00
//	setup one-time fee 250.00
type billingFixture struct {
	month types.YearMonth

	partner *dto.PartnerResponse
	items   map[string]*dto.BillingItemResponse

	baseLine    *dto.PartnerBillingResponse
	perEmployee *dto.PartnerBillingResponse
	support     *dto.PartnerBillingResponse
	clientFee   *dto.ClientBillingResponse
	setupFee    *dto.OneTimeFeeResponse
}

// fixtureBuilder wires the services a fixture is created through
type fixtureBuilder struct {
	suite *testutil.BaseServiceTestSuite

	partners   PartnerService
	items      BillingItemService
	config     BillingConfigService
	usage      UsageService
	oneTimeFee OneTimeFeeService
}

func newFixtureBuilder(s *testutil.BaseServiceTestSuite) *fixtureBuilder {
	params := newTestServiceParams(s)
	return &fixtureBuilder{
		suite:      s,
		partners:   NewPartnerService(params),
		items:      NewBillingItemService(params),
		config:     NewBillingConfigService(params),
		usage:      NewUsageService(params),
		oneTimeFee: NewOneTimeFeeService(params),
	}
}

func (b *fixtureBuilder) createPartner(code, name string) *dto.PartnerResponse {
	p, err := b.partners.CreatePartner(b.suite.GetContext(), dto.CreatePartnerRequest{
		PartnerCode: code,
		PartnerName: name,
	})
	b.suite.Require().NoError(err)
	return p
}

func (b *fixtureBuilder) createItem(code, name string, kind types.BillingKind) *dto.BillingItemResponse {
	item, err := b.items.CreateBillingItem(b.suite.GetContext(), dto.CreateBillingItemRequest{
		ItemCode:    code,
		ItemName:    name,
		BillingType: kind,
	})
	b.suite.Require().NoError(err)
	return item
}

func (b *fixtureBuilder) createLine(partnerID string, item *dto.BillingItemResponse, amount string, tiers ...dto.RateTierRequest) *dto.PartnerBillingResponse {
	line, err := b.config.CreatePartnerBilling(b.suite.GetContext(), partnerID, dto.CreatePartnerBillingRequest{
		BillingItemID:    item.ID,
		Amount:           dec(amount),
		BillingFrequency: types.BillingFrequencyMonthly,
		StartDate:        date(2024, time.January, 1),
		Tiers:            tiers,
	})
	b.suite.Require().NoError(err)
	return line
}

func (b *fixtureBuilder) importUsage(month string, rows ...dto.UsageRowRequest) {
	_, err := b.usage.ImportUsage(b.suite.GetContext(), dto.ImportUsageRequest{
		Month: month,
		Rows:  rows,
	})
	b.suite.Require().NoError(err)
}

func usageRow(code, name string, active bool, employees int) dto.UsageRowRequest {
	return dto.UsageRowRequest{
		ClientCode:           code,
		ClientName:           name,
		IsPayGroupActive:     lo.ToPtr(active),
		TotalActiveEmployees: lo.ToPtr(employees),
		TotalEmployeesPaid:   lo.ToPtr(employees),
	}
}

func (b *fixtureBuilder) build() *billingFixture {
	f := &billingFixture{
		month: types.YearMonth("2024-03"),
		items: make(map[string]*dto.BillingItemResponse),
	}

	f.partner = b.createPartner("ACME", "Acme Payroll")
	f.items["BASE"] = b.createItem("BASE", "Base EIN Fee", types.BillingKindBaseEIN)
	f.items["PEPM"] = b.createItem("PEPM", "Per Employee Fee", types.BillingKindPerEmployee)
	f.items["MIN"] = b.createItem("MIN", "Monthly Minimum", types.BillingKindMonthlyMin)
	f.items["SUP"] = b.createItem("SUP", "Support", types.BillingKindPartnerBilling)
	f.items["HR"] = b.createItem("HR", "HR Support", types.BillingKindStandard)
	f.items["SETUP"] = b.createItem("SETUP", "Setup Fee", types.BillingKindStandard)

	f.baseLine = b.createLine(f.partner.ID, f.items["BASE"], "50")
	f.perEmployee = b.createLine(f.partner.ID, f.items["PEPM"], "0",
		dto.RateTierRequest{TierMin: 1, TierMax: 10, PerEmployeeRate: dec("3.00")},
		dto.RateTierRequest{TierMin: 11, TierMax: 50, PerEmployeeRate: dec("2.50")},
		dto.RateTierRequest{TierMin: 51, TierMax: 100, PerEmployeeRate: dec("2.00")},
	)
	f.support = b.createLine(f.partner.ID, f.items["SUP"], "75")

	perEmployee := dec("0.50")
	clientFee, err := b.config.CreateClientBilling(b.suite.GetContext(), f.partner.ID, dto.CreateClientBillingRequest{
		ClientCode:        "ACME0001",
		ClientName:        "Widgets Inc",
		BillingItemID:     f.items["HR"].ID,
		BaseAmount:        dec("10"),
		PerEmployeeAmount: &perEmployee,
		BillingDate:       date(2024, time.January, 1),
	})
	b.suite.Require().NoError(err)
	f.clientFee = clientFee

	b.importUsage(f.month.String(),
		usageRow("ACME0001", "Widgets Inc", true, 20),
		usageRow("ACME0002", "Gadgets LLC", true, 5),
		usageRow("ACME0003", "Dormant Co", false, 8),
		usageRow("BETA0001", "Other Partner Client", true, 40),
	)

	setupFee, err := b.oneTimeFee.CreateOneTimeFee(b.suite.GetContext(), dto.CreateOneTimeFeeRequest{
		PartnerID:     f.partner.ID,
		ClientName:    "Widgets Inc",
		BillingItemID: f.items["SETUP"].ID,
		Description:   "Implementation",
		Amount:        dec("250"),
		BillingDate:   date(2024, time.March, 15),
	})
	b.suite.Require().NoError(err)
	f.setupFee = setupFee

	return f
}
