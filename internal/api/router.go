package api

import (
	v1 "github.com/flexprice/partnerbilling/internal/api/v1"
	"github.com/flexprice/partnerbilling/internal/config"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/rbac"
	"github.com/flexprice/partnerbilling/internal/rest/middleware"
	"github.com/flexprice/partnerbilling/internal/sentry"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health        *v1.HealthHandler
	Partner       *v1.PartnerHandler
	BillingItem   *v1.BillingItemHandler
	BillingConfig *v1.BillingConfigHandler
	Usage         *v1.UsageHandler
	OneTimeFee    *v1.OneTimeFeeHandler
	Invoice       *v1.InvoiceHandler
	Report        *v1.ReportHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	sentryService *sentry.Service,
	rbacService *rbac.RBACService,
) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(sentryService, logger),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.AuthenticateMiddleware(cfg, logger))

	perm := middleware.NewPermissionMiddleware(rbacService, logger)
	registerV1Routes(v1Group, handlers, perm)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers, perm *middleware.PermissionMiddleware) {
	read := func(entity string) gin.HandlerFunc { return perm.RequirePermission(entity, rbac.ActionRead) }
	write := func(entity string) gin.HandlerFunc { return perm.RequirePermission(entity, rbac.ActionWrite) }

	partners := router.Group("/partners")
	{
		partners.POST("", write(rbac.EntityPartner), handlers.Partner.CreatePartner)
		partners.GET("", read(rbac.EntityPartner), handlers.Partner.ListPartners)
		partners.GET("/:id", read(rbac.EntityPartner), handlers.Partner.GetPartner)
		partners.PUT("/:id", write(rbac.EntityPartner), handlers.Partner.UpdatePartner)

		partners.POST("/:id/billings", write(rbac.EntityBillingConfig), handlers.BillingConfig.CreatePartnerBilling)
		partners.GET("/:id/billings", read(rbac.EntityBillingConfig), handlers.BillingConfig.ListPartnerBillings)
		partners.POST("/:id/client-billings", write(rbac.EntityBillingConfig), handlers.BillingConfig.CreateClientBilling)
		partners.GET("/:id/client-billings", read(rbac.EntityBillingConfig), handlers.BillingConfig.ListClientBillings)

		partners.GET("/:id/usage/:month", read(rbac.EntityUsage), handlers.Usage.GetPartnerUsage)
		partners.GET("/:id/one-time-fees/eligible", read(rbac.EntityOneTimeFee), handlers.OneTimeFee.ListEligible)
	}

	billingItems := router.Group("/billing-items")
	{
		billingItems.POST("", write(rbac.EntityBillingItem), handlers.BillingItem.CreateBillingItem)
		billingItems.GET("", read(rbac.EntityBillingItem), handlers.BillingItem.ListBillingItems)
		billingItems.GET("/:id", read(rbac.EntityBillingItem), handlers.BillingItem.GetBillingItem)
		billingItems.PUT("/:id", write(rbac.EntityBillingItem), handlers.BillingItem.UpdateBillingItem)
		billingItems.DELETE("/:id", write(rbac.EntityBillingItem), handlers.BillingItem.DeleteBillingItem)
	}

	partnerBillings := router.Group("/partner-billings")
	{
		partnerBillings.PUT("/:id", write(rbac.EntityBillingConfig), handlers.BillingConfig.UpdatePartnerBilling)
		partnerBillings.DELETE("/:id", write(rbac.EntityBillingConfig), handlers.BillingConfig.DeletePartnerBilling)
		partnerBillings.PUT("/:id/tiers", write(rbac.EntityBillingConfig), handlers.BillingConfig.ReplaceTiers)
		partnerBillings.GET("/:id/tiers", read(rbac.EntityBillingConfig), handlers.BillingConfig.ListTiers)
	}

	clientBillings := router.Group("/client-billings")
	{
		clientBillings.PUT("/:id", write(rbac.EntityBillingConfig), handlers.BillingConfig.UpdateClientBilling)
		clientBillings.DELETE("/:id", write(rbac.EntityBillingConfig), handlers.BillingConfig.DeleteClientBilling)
	}

	usage := router.Group("/usage")
	{
		usage.POST("/import", write(rbac.EntityUsage), handlers.Usage.ImportUsage)
		usage.POST("/import/csv", write(rbac.EntityUsage), handlers.Usage.ImportUsageCSV)
		usage.GET("/months", read(rbac.EntityUsage), handlers.Usage.ListMonths)
		usage.GET("/:month", read(rbac.EntityUsage), handlers.Usage.GetMonth)
	}

	oneTimeFees := router.Group("/one-time-fees")
	{
		oneTimeFees.POST("", write(rbac.EntityOneTimeFee), handlers.OneTimeFee.CreateOneTimeFee)
		oneTimeFees.GET("", read(rbac.EntityOneTimeFee), handlers.OneTimeFee.ListOneTimeFees)
		oneTimeFees.POST("/bulk", write(rbac.EntityOneTimeFee), handlers.OneTimeFee.CreateOneTimeFeesBulk)
		oneTimeFees.GET("/:id", read(rbac.EntityOneTimeFee), handlers.OneTimeFee.GetOneTimeFee)
		oneTimeFees.PUT("/:id", write(rbac.EntityOneTimeFee), handlers.OneTimeFee.UpdateOneTimeFee)
		oneTimeFees.DELETE("/:id", write(rbac.EntityOneTimeFee), handlers.OneTimeFee.DeleteOneTimeFee)
	}

	invoices := router.Group("/invoices")
	{
		invoices.POST("/preview", read(rbac.EntityInvoice), handlers.Invoice.PreviewInvoice)
		invoices.POST("", write(rbac.EntityInvoice), handlers.Invoice.GenerateInvoice)
		invoices.GET("", read(rbac.EntityInvoice), handlers.Invoice.ListInvoices)
		invoices.GET("/:id", read(rbac.EntityInvoice), handlers.Invoice.GetInvoice)
		invoices.PUT("/:id/status", write(rbac.EntityInvoice), handlers.Invoice.UpdateInvoiceStatus)
		invoices.POST("/:id/finalize", write(rbac.EntityInvoice), handlers.Invoice.FinalizeInvoice)
		invoices.POST("/:id/void", write(rbac.EntityInvoice), handlers.Invoice.VoidInvoice)
		invoices.POST("/:id/reopen", write(rbac.EntityInvoice), handlers.Invoice.ReopenInvoice)
		invoices.POST("/:id/regenerate", write(rbac.EntityInvoice), handlers.Invoice.RegenerateInvoice)
		invoices.PUT("/:id/lines/:line_id", write(rbac.EntityInvoice), handlers.Invoice.UpdateInvoiceLine)
	}

	reports := router.Group("/reports")
	{
		reports.GET("/revenue", read(rbac.EntityReport), handlers.Report.RevenueByPartner)
	}
}
