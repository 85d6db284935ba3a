package service

import (
	"github.com/flexprice/partnerbilling/internal/config"
	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/domain/billingitem"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	"github.com/flexprice/partnerbilling/internal/domain/partner"
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
	"github.com/flexprice/partnerbilling/internal/publisher"
	"github.com/flexprice/partnerbilling/internal/s3"
	"go.uber.org/fx"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	// S3 is nil when usage import archiving is disabled
	S3 s3.Service

	// Repositories
	PartnerRepo       partner.Repository
	BillingItemRepo   billingitem.Repository
	BillingConfigRepo billingconfig.Repository
	ClientBillingRepo billingconfig.ClientBillingRepository
	UsageRepo         usage.Repository
	OneTimeFeeRepo    onetimefee.Repository
	InvoiceRepo       invoice.Repository

	// Publishers
	EventPublisher publisher.EventPublisher
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	s3Service s3.Service,
	partnerRepo partner.Repository,
	billingItemRepo billingitem.Repository,
	billingConfigRepo billingconfig.Repository,
	clientBillingRepo billingconfig.ClientBillingRepository,
	usageRepo usage.Repository,
	oneTimeFeeRepo onetimefee.Repository,
	invoiceRepo invoice.Repository,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:            logger,
		Config:            config,
		DB:                db,
		S3:                s3Service,
		PartnerRepo:       partnerRepo,
		BillingItemRepo:   billingItemRepo,
		BillingConfigRepo: billingConfigRepo,
		ClientBillingRepo: clientBillingRepo,
		UsageRepo:         usageRepo,
		OneTimeFeeRepo:    oneTimeFeeRepo,
		InvoiceRepo:       invoiceRepo,
		EventPublisher:    eventPublisher,
	}
}

// Module provides the service params and every service built from them
func Module() fx.Option {
	return fx.Provide(
		NewServiceParams,
		NewPartnerService,
		NewBillingItemService,
		NewBillingConfigService,
		NewUsageService,
		NewOneTimeFeeService,
		NewInvoiceService,
		NewReportService,
	)
}
