package testutil

import (
	"context"
	"time"

	"github.com/flexprice/partnerbilling/internal/config"
	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/domain/billingitem"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	"github.com/flexprice/partnerbilling/internal/domain/partner"
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/flexprice/partnerbilling/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	PartnerRepo       partner.Repository
	BillingItemRepo   billingitem.Repository
	BillingConfigRepo billingconfig.Repository
	ClientBillingRepo billingconfig.ClientBillingRepository
	UsageRepo         usage.Repository
	OneTimeFeeRepo    onetimefee.Repository
	InvoiceRepo       invoice.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	publisher *InMemoryEventPublisher
	db        *MockDB
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo

	var err error
	s.logger, err = logger.NewLogger(s.config)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	invoices := NewInMemoryInvoiceStore()
	items := NewInMemoryBillingItemStore()
	partnerBillings := NewInMemoryBillingConfigStore()
	clientBillings := NewInMemoryClientBillingStore()
	fees := NewInMemoryOneTimeFeeStore(invoices)
	items.SetReferenceStores(partnerBillings, clientBillings, fees)

	s.stores = Stores{
		PartnerRepo:       NewInMemoryPartnerStore(),
		BillingItemRepo:   items,
		BillingConfigRepo: partnerBillings,
		ClientBillingRepo: clientBillings,
		UsageRepo:         NewInMemoryUsageStore(),
		OneTimeFeeRepo:    fees,
		InvoiceRepo:       invoices,
	}

	s.db = NewMockDB(s.logger,
		s.stores.PartnerRepo.(*InMemoryPartnerStore),
		s.stores.BillingItemRepo.(*InMemoryBillingItemStore),
		s.stores.BillingConfigRepo.(*InMemoryBillingConfigStore),
		s.stores.ClientBillingRepo.(*InMemoryClientBillingStore),
		s.stores.UsageRepo.(*InMemoryUsageStore),
		s.stores.OneTimeFeeRepo.(*InMemoryOneTimeFeeStore),
		invoices,
	)
	s.publisher = NewInMemoryEventPublisher()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.PartnerRepo.(*InMemoryPartnerStore).Clear()
	s.stores.BillingItemRepo.(*InMemoryBillingItemStore).Clear()
	s.stores.BillingConfigRepo.(*InMemoryBillingConfigStore).Clear()
	s.stores.ClientBillingRepo.(*InMemoryClientBillingStore).Clear()
	s.stores.UsageRepo.(*InMemoryUsageStore).Clear()
	s.stores.OneTimeFeeRepo.(*InMemoryOneTimeFeeStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.publisher.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetInvoiceStore returns the in-memory invoice store for fault injection
func (s *BaseServiceTestSuite) GetInvoiceStore() *InMemoryInvoiceStore {
	return s.stores.InvoiceRepo.(*InMemoryInvoiceStore)
}

// GetPublisher returns the test event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockDB {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
