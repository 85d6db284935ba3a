package service

import (
	"testing"
	"time"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/testutil"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type PartnerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PartnerService
}

func TestPartnerService(t *testing.T) {
	suite.Run(t, new(PartnerServiceSuite))
}

func (s *PartnerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPartnerService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *PartnerServiceSuite) TestCreatePartner() {
	start := date(2023, time.July, 1)

	tests := []struct {
		name    string
		req     dto.CreatePartnerRequest
		wantErr bool
		checkFn func(error) bool
	}{
		{
			name: "valid partner",
			req: dto.CreatePartnerRequest{
				PartnerCode:   "acme",
				PartnerName:   "Acme Payroll",
				ContactEmail:  "ops@acme.example",
				ContractStart: &start,
				ContractTerm:  12,
			},
		},
		{
			name: "duplicate code in other case",
			req: dto.CreatePartnerRequest{
				PartnerCode: "ACME",
				PartnerName: "Acme Again",
			},
			wantErr: true,
			checkFn: ierr.IsAlreadyExists,
		},
		{
			name: "code too long",
			req: dto.CreatePartnerRequest{
				PartnerCode: "ACME1",
				PartnerName: "Acme",
			},
			wantErr: true,
			checkFn: ierr.IsValidation,
		},
		{
			name: "invalid email",
			req: dto.CreatePartnerRequest{
				PartnerCode:  "BETA",
				PartnerName:  "Beta",
				ContactEmail: "not-an-email",
			},
			wantErr: true,
			checkFn: ierr.IsValidation,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreatePartner(s.GetContext(), tt.req)
			if tt.wantErr {
				s.Require().Error(err)
				s.True(tt.checkFn(err))
				return
			}
			s.Require().NoError(err)
			s.Equal("ACME", resp.PartnerCode)
			s.True(resp.IsActive)
			s.Require().NotNil(resp.RenewalDate)
			s.Equal(date(2024, time.July, 1), *resp.RenewalDate)
			s.Equal(types.DefaultUserID, resp.CreatedBy)
		})
	}
}

func (s *PartnerServiceSuite) TestListPartners() {
	ctx := s.GetContext()
	for _, code := range []string{"GAMA", "ACME", "BETA"} {
		_, err := s.service.CreatePartner(ctx, dto.CreatePartnerRequest{
			PartnerCode: code,
			PartnerName: code + " Payroll",
		})
		s.Require().NoError(err)
	}

	list, err := s.service.ListPartners(ctx, nil)
	s.Require().NoError(err)
	s.Equal(3, list.Pagination.Total)
	s.Equal([]string{"ACME", "BETA", "GAMA"}, lo.Map(list.Items, func(p *dto.PartnerResponse, _ int) string {
		return p.PartnerCode
	}))

	beta := list.Items[1]
	updated, err := s.service.UpdatePartner(ctx, beta.ID, dto.UpdatePartnerRequest{
		PartnerName: lo.ToPtr("Beta Payroll Services"),
		IsActive:    lo.ToPtr(false),
	})
	s.Require().NoError(err)
	s.Equal("Beta Payroll Services", updated.Name)
	s.False(updated.IsActive)

	list, err = s.service.ListPartners(ctx, types.NewPartnerFilter())
	s.Require().NoError(err)
	s.Len(list.Items, 2)

	filter := types.NewPartnerFilter()
	filter.IncludeInactive = true
	filter.PartnerCodes = []string{"BETA"}
	list, err = s.service.ListPartners(ctx, filter)
	s.Require().NoError(err)
	s.Require().Len(list.Items, 1)
	s.Equal(beta.ID, list.Items[0].ID)
}

func (s *PartnerServiceSuite) TestUpdatePartner() {
	ctx := s.GetContext()
	p, err := s.service.CreatePartner(ctx, dto.CreatePartnerRequest{
		PartnerCode: "ACME",
		PartnerName: "Acme Payroll",
	})
	s.Require().NoError(err)

	renewal := date(2025, time.January, 31)
	updated, err := s.service.UpdatePartner(ctx, p.ID, dto.UpdatePartnerRequest{
		OverrideRenewalDate: &renewal,
	})
	s.Require().NoError(err)
	s.Require().NotNil(updated.RenewalDate)
	s.Equal(renewal, *updated.RenewalDate)

	_, err = s.service.UpdatePartner(ctx, p.ID, dto.UpdatePartnerRequest{
		PartnerName: lo.ToPtr("  "),
	})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.UpdatePartner(ctx, "ptnr_missing", dto.UpdatePartnerRequest{})
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))

	stored, err := s.service.GetPartner(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Acme Payroll", stored.Name)
}
