package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flexprice/partnerbilling/internal/api/dto"
	v1 "github.com/flexprice/partnerbilling/internal/api/v1"
	"github.com/flexprice/partnerbilling/internal/auth"
	"github.com/flexprice/partnerbilling/internal/config"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/rbac"
	"github.com/flexprice/partnerbilling/internal/sentry"
	"github.com/flexprice/partnerbilling/internal/service"
	"github.com/flexprice/partnerbilling/internal/testutil"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
	tokens *auth.TokenProvider
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	cfg := s.GetConfig()
	cfg.Auth.Secret = "router-test-secret"
	cfg.Auth.APIKey.Keys = map[string]config.APIKeyDetails{
		auth.HashAPIKey("manager-key"): {UserID: "svc_billing", Name: "billing job", Role: types.RoleBillingManager, IsActive: true},
	}
	s.tokens = auth.NewTokenProvider(cfg)

	stores := s.GetStores()
	params := service.NewServiceParams(
		s.GetLogger(), cfg, s.GetDB(), nil,
		stores.PartnerRepo, stores.BillingItemRepo, stores.BillingConfigRepo, stores.ClientBillingRepo,
		stores.UsageRepo, stores.OneTimeFeeRepo, stores.InvoiceRepo,
		s.GetPublisher(),
	)
	log := s.GetLogger()

	rbacService, err := rbac.NewRBACService(cfg)
	s.Require().NoError(err)

	s.router = NewRouter(Handlers{
		Health:        v1.NewHealthHandler(log),
		Partner:       v1.NewPartnerHandler(service.NewPartnerService(params), log),
		BillingItem:   v1.NewBillingItemHandler(service.NewBillingItemService(params), log),
		BillingConfig: v1.NewBillingConfigHandler(service.NewBillingConfigService(params), log),
		Usage:         v1.NewUsageHandler(service.NewUsageService(params), log),
		OneTimeFee:    v1.NewOneTimeFeeHandler(service.NewOneTimeFeeService(params), log),
		Invoice:       v1.NewInvoiceHandler(service.NewInvoiceService(params), log),
		Report:        v1.NewReportHandler(service.NewReportService(params), log),
	}, cfg, log, sentry.NewSentryService(cfg, log), rbacService)
}

func (s *RouterSuite) token(role types.Role) string {
	token, err := s.tokens.GenerateToken(auth.Claims{
		UserID: "usr_" + string(role),
		Email:  string(role) + "@example.com",
		Role:   role,
	}, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *RouterSuite) do(method, path string, role types.Role, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+s.token(role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *RouterSuite) errorCode(w *httptest.ResponseRecorder) string {
	var resp ierr.ErrorResponse
	s.decode(w, &resp)
	return resp.Error.Code
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil, types.HeaderRequestID, "req-123")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("req-123", w.Header().Get(types.HeaderRequestID))

	w = s.do(http.MethodGet, "/health", "", nil)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestAuthentication() {
	tests := []struct {
		name    string
		headers []string
		want    int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"bad scheme", []string{types.HeaderAuthorization, "Basic abc"}, http.StatusUnauthorized},
		{"bad token", []string{types.HeaderAuthorization, "Bearer abc"}, http.StatusUnauthorized},
		{"unknown api key", []string{types.HeaderAPIKey, "nope"}, http.StatusUnauthorized},
		{"api key", []string{types.HeaderAPIKey, "manager-key"}, http.StatusOK},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodGet, "/v1/partners", "", nil, tt.headers...)
			s.Equal(tt.want, w.Code, w.Body.String())
		})
	}
}

func (s *RouterSuite) TestPermissions() {
	partner := dto.CreatePartnerRequest{PartnerCode: "ACME", PartnerName: "Acme Payroll"}

	w := s.do(http.MethodPost, "/v1/partners", types.RoleBillingManager, partner)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(ierr.ErrCodePermissionDenied, s.errorCode(w))

	w = s.do(http.MethodPost, "/v1/partners", types.RoleAdmin, partner)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())

	// users record one-time fees but never touch invoices or usage
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/v1/partners", types.RoleUser, nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/v1/invoices", types.RoleUser, nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/v1/usage/months", types.RoleUser, nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/v1/reports/revenue?month=2024-03", types.RoleUser, nil).Code)
}

func (s *RouterSuite) TestErrorResponses() {
	req := httptest.NewRequest(http.MethodPost, "/v1/partners", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(types.HeaderAuthorization, "Bearer "+s.token(types.RoleAdmin))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeValidation, s.errorCode(w))

	w = s.do(http.MethodGet, "/v1/invoices/inv_missing", types.RoleAdmin, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(ierr.ErrCodeNotFound, s.errorCode(w))

	w = s.do(http.MethodGet, "/v1/reports/revenue?month=April", types.RoleAdmin, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	var resp ierr.ErrorResponse
	s.decode(w, &resp)
	s.NotEmpty(resp.Error.Display)
	s.False(resp.Success)
}

func (s *RouterSuite) TestCatalogueEdits() {
	var item struct {
		ID       string `json:"id"`
		ItemName string `json:"item_name"`
	}
	w := s.do(http.MethodPost, "/v1/billing-items", types.RoleAdmin, dto.CreateBillingItemRequest{
		ItemCode: "HR", ItemName: "HR Support", BillingType: types.BillingKindStandard,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.decode(w, &item)

	name := "HR Advisory"
	w = s.do(http.MethodPut, "/v1/billing-items/"+item.ID, types.RoleAdmin, dto.UpdateBillingItemRequest{ItemName: &name})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &item)
	s.Equal("HR Advisory", item.ItemName)

	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/v1/billing-items/"+item.ID, types.RoleBillingManager, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/v1/billing-items/"+item.ID, types.RoleAdmin, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/v1/billing-items/"+item.ID, types.RoleAdmin, nil).Code)

	w = s.do(http.MethodDelete, "/v1/client-billings/cbl_missing", types.RoleBillingManager, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(ierr.ErrCodeNotFound, s.errorCode(w))

	w = s.do(http.MethodGet, "/v1/one-time-fees", types.RoleUser, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var fees dto.ListOneTimeFeesResponse
	s.decode(w, &fees)
	s.Empty(fees.Items)

	w = s.do(http.MethodPut, "/v1/one-time-fees/otf_missing", types.RoleUser, dto.UpdateOneTimeFeeRequest{})
	s.Equal(http.StatusNotFound, w.Code)
}

type invoiceBody struct {
	ID            string              `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	InvoiceStatus types.InvoiceStatus `json:"invoice_status"`
	Totals        struct {
		Monthly decimal.Decimal `json:"monthly"`
		Grand   decimal.Decimal `json:"grand"`
	} `json:"totals"`
}

func (s *RouterSuite) TestBillingCycle() {
	var partner struct {
		ID string `json:"id"`
	}
	w := s.do(http.MethodPost, "/v1/partners", types.RoleAdmin, dto.CreatePartnerRequest{PartnerCode: "ACME", PartnerName: "Acme Payroll"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.decode(w, &partner)

	var item struct {
		ID string `json:"id"`
	}
	w = s.do(http.MethodPost, "/v1/billing-items", types.RoleAdmin, dto.CreateBillingItemRequest{
		ItemCode: "BASE", ItemName: "Base EIN Fee", BillingType: types.BillingKindBaseEIN,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.decode(w, &item)

	w = s.do(http.MethodPost, "/v1/partners/"+partner.ID+"/billings", types.RoleBillingManager, dto.CreatePartnerBillingRequest{
		BillingItemID:    item.ID,
		Amount:           decimal.NewFromInt(40),
		BillingFrequency: types.BillingFrequencyMonthly,
		StartDate:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	// usage arrives as a CSV upload
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	s.Require().NoError(form.WriteField("month", "2024-03"))
	file, err := form.CreateFormFile("file", "march.csv")
	s.Require().NoError(err)
	_, err = file.Write([]byte("Month,Client ID,Client Name,Pay Group Active,Active Employees,Total Employees Paid\n" +
		"2024-03,ACME0001,Widgets Inc,yes,12,12\n" +
		"2024-03,ACME0002,Gadgets LLC,yes,3,3\n"))
	s.Require().NoError(err)
	s.Require().NoError(form.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/usage/import/csv", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(types.HeaderAPIKey, "manager-key")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var imported dto.ImportUsageResponse
	s.decode(w, &imported)
	s.Equal(2, imported.ClientsImported)

	generate := dto.GenerateInvoiceRequest{PartnerID: partner.ID, InvoiceMonth: "2024-03"}

	w = s.do(http.MethodPost, "/v1/invoices/preview", types.RoleBillingManager, generate)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var preview dto.InvoicePreviewResponse
	s.decode(w, &preview)
	s.Len(preview.MonthlyFees, 2)
	s.True(decimal.NewFromInt(80).Equal(preview.Totals.Grand))

	var first, retried invoiceBody
	w = s.do(http.MethodPost, "/v1/invoices", types.RoleBillingManager, generate, types.HeaderIdempotency, "march-acme")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.decode(w, &first)
	s.Equal("INV-ACME-2024-03-001", first.InvoiceNumber)
	s.True(decimal.NewFromInt(80).Equal(first.Totals.Monthly))

	w = s.do(http.MethodPost, "/v1/invoices", types.RoleBillingManager, generate, types.HeaderIdempotency, "march-acme")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.decode(w, &retried)
	s.Equal(first.ID, retried.ID)

	var finalized invoiceBody
	w = s.do(http.MethodPost, "/v1/invoices/"+first.ID+"/finalize", types.RoleBillingManager, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &finalized)
	s.Equal(types.InvoiceStatusFinal, finalized.InvoiceStatus)

	w = s.do(http.MethodPost, "/v1/invoices/"+first.ID+"/regenerate", types.RoleBillingManager, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeInvalidOperation, s.errorCode(w))

	w = s.do(http.MethodPut, "/v1/invoices/"+first.ID+"/status", types.RoleBillingManager, dto.UpdateInvoiceStatusRequest{Status: "paid"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/reports/revenue?month=2024-03", types.RoleBillingManager, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var report dto.RevenueReportResponse
	s.decode(w, &report)
	s.Require().Len(report.Partners, 1)
	s.True(decimal.NewFromInt(80).Equal(report.Totals.Grand))
}
