package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-billing-backend/internal/audit"
	"rental-billing-backend/internal/config"
	handler "rental-billing-backend/internal/handlers"
	"rental-billing-backend/internal/repository"
	service "rental-billing-backend/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, log *zap.Logger) {
	invoiceRepo := repository.NewInvoiceRepository()
	paymentRepo := repository.NewPaymentRepository()
	contractRepo := repository.NewContractRepository()

	reconService := service.NewService(
		db,
		invoiceRepo,
		paymentRepo,
		contractRepo,
		audit.NewDBRecorder(log),
		cfg.GatewayServerKey,
		log,
	)

	webhookHandler := handler.NewWebhookHandler(reconService, log)
	billingHandler := handler.NewBillingHandler(reconService, log)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Gateway webhook
	api.POST("/payments/gateway/notification", webhookHandler.HandleNotification)

	// Payment routes
	payments := api.Group("/payments")
	payments.POST("/:id/acknowledge", billingHandler.AcknowledgePayment)
	payments.POST("/:id/void", billingHandler.VoidPayment)

	// Invoice routes
	invoices := api.Group("/invoices")
	{
		invoices.GET("/:id", billingHandler.GetInvoice)
		invoices.POST("/:id/payments", billingHandler.RecordManualPayment)
		invoices.POST("/:id/payments/gateway", billingHandler.CreateGatewayPayment)
		invoices.POST("/:id/cancel", billingHandler.CancelInvoice)
		invoices.POST("/:id/extend-due", billingHandler.ExtendDueDate)
	}

	// Contract routes
	contracts := api.Group("/contracts")
	contracts.POST("/:id/invoices", billingHandler.GenerateInvoice)

	if cfg.PublicSiteEnabled {
		api.GET("/public/invoices/:number", billingHandler.GetPublicInvoice)
	}
}
