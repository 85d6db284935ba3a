package main

import (
	"context"
	"time"

	_ "github.com/flexprice/partnerbilling/docs/swagger"
	"github.com/flexprice/partnerbilling/internal/api"
	v1 "github.com/flexprice/partnerbilling/internal/api/v1"
	"github.com/flexprice/partnerbilling/internal/config"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
	"github.com/flexprice/partnerbilling/internal/publisher"
	"github.com/flexprice/partnerbilling/internal/pubsub"
	"github.com/flexprice/partnerbilling/internal/pubsub/memory"
	pubsubRouter "github.com/flexprice/partnerbilling/internal/pubsub/router"
	"github.com/flexprice/partnerbilling/internal/rbac"
	"github.com/flexprice/partnerbilling/internal/repository"
	"github.com/flexprice/partnerbilling/internal/s3"
	"github.com/flexprice/partnerbilling/internal/sentry"
	"github.com/flexprice/partnerbilling/internal/service"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/flexprice/partnerbilling/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Partner Billing API
// @version 1.0
// @description Monthly invoicing of reseller partners
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description Enter your API key in the format *x-api-key &lt;api-key&gt;**

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Object storage
			s3.NewService,

			// Access control
			rbac.NewRBACService,

			// Events
			memory.NewPubSub,
			pubsubRouter.NewRouter,
			publisher.NewEventPublisher,
			publisher.NewAuditLogHandler,
		),
		postgres.Module(),
		repository.Module(),
		service.Module(),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			migrateOnStart,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	partnerService service.PartnerService,
	billingItemService service.BillingItemService,
	billingConfigService service.BillingConfigService,
	usageService service.UsageService,
	oneTimeFeeService service.OneTimeFeeService,
	invoiceService service.InvoiceService,
	reportService service.ReportService,
) api.Handlers {
	return api.Handlers{
		Health:        v1.NewHealthHandler(logger),
		Partner:       v1.NewPartnerHandler(partnerService, logger),
		BillingItem:   v1.NewBillingItemHandler(billingItemService, logger),
		BillingConfig: v1.NewBillingConfigHandler(billingConfigService, logger),
		Usage:         v1.NewUsageHandler(usageService, logger),
		OneTimeFee:    v1.NewOneTimeFeeHandler(oneTimeFeeService, logger),
		Invoice:       v1.NewInvoiceHandler(invoiceService, logger),
		Report:        v1.NewReportHandler(reportService, logger),
	}
}

func provideRouter(
	handlers api.Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	sentryService *sentry.Service,
	rbacService *rbac.RBACService,
) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, sentryService, rbacService)
}

// migrateOnStart applies pending migrations when postgres.auto_migrate is set
func migrateOnStart(lc fx.Lifecycle, cfg *config.Configuration, db *postgres.DB, log *logger.Logger) {
	if !cfg.Postgres.AutoMigrate {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("applying database migrations")
			return db.Migrate(ctx)
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	ps pubsub.PubSub,
	auditHandler *publisher.AuditLogHandler,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, ps, cfg, auditHandler, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	ps pubsub.PubSub,
	cfg *config.Configuration,
	auditHandler *publisher.AuditLogHandler,
	log *logger.Logger,
) {
	// Register handlers before starting the router
	publisher.RegisterAuditLogHandler(router, ps, cfg, auditHandler)

	pubsubRouter.RegisterHooks(lc, router, log)
}
