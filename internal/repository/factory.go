package repository

import (
	"github.com/flexprice/partnerbilling/internal/domain/billingconfig"
	"github.com/flexprice/partnerbilling/internal/domain/billingitem"
	"github.com/flexprice/partnerbilling/internal/domain/invoice"
	"github.com/flexprice/partnerbilling/internal/domain/onetimefee"
	"github.com/flexprice/partnerbilling/internal/domain/partner"
	"github.com/flexprice/partnerbilling/internal/domain/usage"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
	postgresRepo "github.com/flexprice/partnerbilling/internal/repository/postgres"
	"go.uber.org/fx"
)

func NewPartnerRepository(db postgres.IClient, logger *logger.Logger) partner.Repository {
	return postgresRepo.NewPartnerRepository(db, logger)
}

func NewBillingItemRepository(db postgres.IClient, logger *logger.Logger) billingitem.Repository {
	return postgresRepo.NewBillingItemRepository(db, logger)
}

func NewBillingConfigRepository(db postgres.IClient, logger *logger.Logger) billingconfig.Repository {
	return postgresRepo.NewBillingConfigRepository(db, logger)
}

func NewClientBillingRepository(db postgres.IClient, logger *logger.Logger) billingconfig.ClientBillingRepository {
	return postgresRepo.NewClientBillingRepository(db, logger)
}

func NewUsageRepository(db postgres.IClient, logger *logger.Logger) usage.Repository {
	return postgresRepo.NewUsageRepository(db, logger)
}

func NewOneTimeFeeRepository(db postgres.IClient, logger *logger.Logger) onetimefee.Repository {
	return postgresRepo.NewOneTimeFeeRepository(db, logger)
}

func NewInvoiceRepository(db postgres.IClient, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

// Module provides every postgres backed repository
func Module() fx.Option {
	return fx.Provide(
		NewPartnerRepository,
		NewBillingItemRepository,
		NewBillingConfigRepository,
		NewClientBillingRepository,
		NewUsageRepository,
		NewOneTimeFeeRepository,
		NewInvoiceRepository,
	)
}
