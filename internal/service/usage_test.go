package service

import (
	"testing"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/testutil"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type UsageServiceSuite struct {
	testutil.BaseServiceTestSuite
	service UsageService
}

func TestUsageService(t *testing.T) {
	suite.Run(t, new(UsageServiceSuite))
}

func (s *UsageServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewUsageService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *UsageServiceSuite) TestImportUsageAggregatesRows() {
	resp, err := s.service.ImportUsage(s.GetContext(), dto.ImportUsageRequest{
		Month: "2024-03",
		Rows: []dto.UsageRowRequest{
			usageRow("acme0001", "Widgets Inc", false, 12),
			usageRow(" ACME0001 ", "Widgets Inc", true, 8),
			usageRow("ACME0002", "Gadgets LLC", true, 5),
			{ClientCode: "BETA0001", ClientName: "No Counts"},
		},
	})
	s.Require().NoError(err)
	s.Equal(4, resp.RowsReceived)
	s.Equal(3, resp.ClientsImported)
	s.Equal(types.YearMonth("2024-03"), resp.Month)
	s.Contains(resp.Reference, types.SHORT_ID_PREFIX_USAGE_IMPORT)
	s.Empty(resp.ArchiveKey)

	month, err := s.service.GetMonth(s.GetContext(), "2024-03")
	s.Require().NoError(err)
	s.Require().Len(month.Records, 3)

	widgets := month.Records[0]
	s.Equal("ACME0001", widgets.ClientCode)
	s.True(widgets.IsPayGroupActive)
	s.Equal(20, widgets.TotalActiveEmployees)
	s.Equal(resp.Reference, widgets.ImportReference)

	s.Equal(dto.UsageSummary{
		Clients:              3,
		ActiveClients:        2,
		TotalActiveEmployees: 25,
		TotalEmployeesPaid:   25,
	}, month.Summary)
}

func (s *UsageServiceSuite) TestImportUsageReplacesMonth() {
	ctx := s.GetContext()
	_, err := s.service.ImportUsage(ctx, dto.ImportUsageRequest{
		Month: "2024-03",
		Rows: []dto.UsageRowRequest{
			usageRow("ACME0001", "Widgets Inc", true, 20),
			usageRow("ACME0002", "Gadgets LLC", true, 5),
		},
	})
	s.Require().NoError(err)
	_, err = s.service.ImportUsage(ctx, dto.ImportUsageRequest{
		Month: "2024-02",
		Rows:  []dto.UsageRowRequest{usageRow("ACME0001", "Widgets Inc", true, 18)},
	})
	s.Require().NoError(err)

	_, err = s.service.ImportUsage(ctx, dto.ImportUsageRequest{
		Month: "2024-03",
		Rows:  []dto.UsageRowRequest{usageRow("ACME0003", "Dormant Co", false, 0)},
	})
	s.Require().NoError(err)

	march, err := s.service.GetMonth(ctx, "2024-03")
	s.Require().NoError(err)
	s.Require().Len(march.Records, 1)
	s.Equal("ACME0003", march.Records[0].ClientCode)

	february, err := s.service.GetMonth(ctx, "2024-02")
	s.Require().NoError(err)
	s.Len(february.Records, 1)

	months, err := s.service.ListMonths(ctx)
	s.Require().NoError(err)
	s.Equal([]types.YearMonth{"2024-03", "2024-02"}, months.Months)
}

func (s *UsageServiceSuite) TestImportUsageValidation() {
	tests := []struct {
		name string
		req  dto.ImportUsageRequest
	}{
		{
			name: "invalid month",
			req: dto.ImportUsageRequest{
				Month: "2024-13",
				Rows:  []dto.UsageRowRequest{usageRow("ACME0001", "Widgets Inc", true, 1)},
			},
		},
		{
			name: "no rows",
			req: dto.ImportUsageRequest{
				Month: "2024-03",
			},
		},
		{
			name: "blank client code",
			req: dto.ImportUsageRequest{
				Month: "2024-03",
				Rows: []dto.UsageRowRequest{
					usageRow("ACME0001", "Widgets Inc", true, 1),
					usageRow("   ", "Nobody", true, 1),
				},
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.ImportUsage(s.GetContext(), tt.req)
			s.Require().Error(err)
			s.True(ierr.IsValidation(err))
		})
	}

	months, err := s.service.ListMonths(s.GetContext())
	s.Require().NoError(err)
	s.Empty(months.Months)
}

func (s *UsageServiceSuite) TestImportUsageCSV() {
	data := []byte("\xEF\xBB\xBFMonth,Client ID,Client Name,State,Pay Group Active,Active Employees,Total Employees Paid in Month,Notes\n" +
		"2024-03,acme0001,Widgets Inc,tx,Yes,\"1,204\",1200,ignored\n" +
		",,,,,,,\n" +
		"2024-03,ACME0001,Widgets Inc,TX,no,6,6,\n" +
		"2024-03,ACME0002,Gadgets LLC,ca,0,5,5,\n")

	resp, err := s.service.ImportUsageCSV(s.GetContext(), "2024-03", "march.csv", data)
	s.Require().NoError(err)
	s.Equal(3, resp.RowsReceived)
	s.Equal(2, resp.ClientsImported)

	month, err := s.service.GetMonth(s.GetContext(), "2024-03")
	s.Require().NoError(err)
	s.Require().Len(month.Records, 2)

	widgets := month.Records[0]
	s.Equal("ACME0001", widgets.ClientCode)
	s.Equal("TX", widgets.StateCode)
	s.True(widgets.IsPayGroupActive)
	s.Equal(1210, widgets.TotalActiveEmployees)
	s.Equal(1206, widgets.TotalEmployeesPaid)
	s.False(month.Records[1].IsPayGroupActive)
}

func (s *UsageServiceSuite) TestImportUsageCSVCounts() {
	data := []byte("Client Code,Client Name,Pay Group Active,Total Active Employees,Total Employees Paid\n" +
		"ACME0001,Widgets Inc,true,10.0,\"1,234\"\n" +
		"ACME0002,Gadgets LLC,true,\"2,000.00\",\n")

	_, err := s.service.ImportUsageCSV(s.GetContext(), "2024-03", "counts.csv", data)
	s.Require().NoError(err)

	month, err := s.service.GetMonth(s.GetContext(), "2024-03")
	s.Require().NoError(err)
	s.Require().Len(month.Records, 2)
	s.Equal(10, month.Records[0].TotalActiveEmployees)
	s.Equal(1234, month.Records[0].TotalEmployeesPaid)
	s.Equal(2000, month.Records[1].TotalActiveEmployees)
	s.Equal(0, month.Records[1].TotalEmployeesPaid)
}

func (s *UsageServiceSuite) TestImportUsageCSVErrors() {
	tests := []struct {
		name  string
		month string
		data  []byte
	}{
		{
			name:  "binary upload",
			month: "2024-03",
			data:  []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
		},
		{
			name:  "empty file",
			month: "2024-03",
			data:  []byte{},
		},
		{
			name:  "missing client code column",
			month: "2024-03",
			data:  []byte("Client Name,Active Employees\nWidgets Inc,4\n"),
		},
		{
			name:  "header only",
			month: "2024-03",
			data:  []byte("Client Code,Client Name\n"),
		},
		{
			name:  "row from another month",
			month: "2024-03",
			data:  []byte("Month Year,Client Code\n2024-03,ACME0001\n2024-04,ACME0002\n"),
		},
		{
			name:  "non numeric count",
			month: "2024-03",
			data:  []byte("Client Code,Active Employees\nACME0001,many\n"),
		},
		{
			name:  "fractional count",
			month: "2024-03",
			data:  []byte("Client Code,Active Employees\nACME0001,10.5\n"),
		},
		{
			name:  "count with unit",
			month: "2024-03",
			data:  []byte("Client Code,Active Employees\nACME0001,12 staff\n"),
		},
		{
			name:  "invalid import month",
			month: "March",
			data:  []byte("Client Code\nACME0001\n"),
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.ImportUsageCSV(s.GetContext(), tt.month, "upload.csv", tt.data)
			s.Require().Error(err)
			s.True(ierr.IsValidation(err), "unexpected error %v", err)
		})
	}
}

func (s *UsageServiceSuite) TestGetPartnerUsage() {
	partners := NewPartnerService(newTestServiceParams(&s.BaseServiceTestSuite))
	p, err := partners.CreatePartner(s.GetContext(), dto.CreatePartnerRequest{
		PartnerCode: "ACME",
		PartnerName: "Acme Payroll",
	})
	s.Require().NoError(err)

	_, err = s.service.ImportUsage(s.GetContext(), dto.ImportUsageRequest{
		Month: "2024-03",
		Rows: []dto.UsageRowRequest{
			usageRow("ACME0001", "Widgets Inc", true, 20),
			usageRow("BETA0001", "Other", true, 7),
			usageRow("ACME0002", "Gadgets LLC", false, 3),
		},
	})
	s.Require().NoError(err)

	resp, err := s.service.GetPartnerUsage(s.GetContext(), p.ID, "2024-03")
	s.Require().NoError(err)
	s.Equal([]string{"ACME0001", "ACME0002"}, lo.Map(resp.Records, func(r usage.MonthlyUsageRecord, _ int) string {
		return r.ClientCode
	}))
	s.Equal(1, resp.Summary.ActiveClients)

	_, err = s.service.GetPartnerUsage(s.GetContext(), "ptnr_missing", "2024-03")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}
