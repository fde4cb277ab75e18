package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/paynotehq/paynote-api/docs"
	"github.com/paynotehq/paynote-api/internal/client/notion"
	stripeclient "github.com/paynotehq/paynote-api/internal/client/stripe"
	"github.com/paynotehq/paynote-api/internal/config"
	"github.com/paynotehq/paynote-api/internal/handlers"
	"github.com/paynotehq/paynote-api/internal/logger"
	"github.com/paynotehq/paynote-api/internal/services"
)

// Handler Definitions
var (
	healthHandler   *handlers.HealthHandler
	webhookHandler  *handlers.WebhookHandlers
	whatsappHandler *handlers.WhatsAppHandlers
	paymentHandler  *handlers.PaymentHandlers

	stripeClient *stripeclient.Client
	notionClient *notion.Client
)

func InitializeHandlers() {
	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Unable to load configuration", zap.Error(err))
	}

	if cfg.Stripe.SecretKey == "" {
		logger.Fatal("STRIPE_SECRET_KEY environment variable is required")
	}
	if cfg.Stripe.WebhookSecret == "" {
		logger.Fatal("STRIPE_WEBHOOK_SECRET environment variable is required")
	}
	if cfg.Notion.Secret == "" {
		logger.Fatal("NOTION_SECRET environment variable is required")
	}
	if cfg.Notion.ClientsDatabaseID == "" || cfg.Notion.PaymentsDatabaseID == "" {
		logger.Fatal("NOTION_CLIENTS_DATABASE_ID and NOTION_PAYMENTS_DATABASE_ID environment variables are required")
	}

	stripeClient, err = stripeclient.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, logger.Log)
	if err != nil {
		logger.Fatal("Unable to create Stripe client", zap.Error(err))
	}

	notionClient = notion.NewClient(cfg.Notion.Secret, logger.Log)

	workspaceService := services.NewWorkspaceService(
		notionClient,
		cfg.Notion.ClientsDatabaseID,
		cfg.Notion.PaymentsDatabaseID,
		cfg.Notion.CalendarDatabaseID,
		logger.Log,
	)

	whatsappService := services.NewWhatsAppService(services.WhatsAppSettings{
		TwilioAccountSID:   cfg.WhatsApp.TwilioAccountSID,
		TwilioAuthToken:    cfg.WhatsApp.TwilioAuthToken,
		TwilioFrom:         cfg.WhatsApp.TwilioFrom,
		UseMetaAPI:         cfg.WhatsApp.UseMetaAPI,
		MetaAccessToken:    cfg.WhatsApp.MetaAccessToken,
		MetaPhoneNumberID:  cfg.WhatsApp.MetaPhoneNumberID,
		DefaultCountryCode: cfg.App.DefaultCountryCode,
	}, logger.Log)

	// Best-effort side channels are only wired when configured.
	var notifier services.Notifier
	if cfg.WhatsApp.TwilioAccountSID != "" || cfg.WhatsApp.UseMetaAPI {
		notifier = whatsappService
	}
	var mailer services.ReceiptMailer
	if cfg.Receipt.ResendAPIKey != "" {
		mailer = services.NewReceiptService(
			cfg.Receipt.ResendAPIKey,
			cfg.Receipt.FromEmail,
			cfg.Receipt.FromName,
			logger.Log,
		)
	}

	paymentService := services.NewPaymentService(stripeClient, workspaceService, notifier, mailer, logger.Log)

	healthHandler = handlers.NewHealthHandler()
	webhookHandler = handlers.NewWebhookHandlers(stripeClient, paymentService, logger.Log)
	whatsappHandler = handlers.NewWhatsAppHandlers(whatsappService, logger.Log)
	paymentHandler = handlers.NewPaymentHandlers(stripeClient, logger.Log)
}

func InitializeRoutes(router *gin.Engine) {
	// Initialize logger first
	logger.InitLogger()

	// Configure and apply CORS middleware
	router.Use(configureCORS())
	router.Use(handlers.LogRequest())

	// Add Swagger endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", healthHandler.Health)

	// Webhooks keep their historical top-level paths; the processor is
	// configured with them.
	webhook := router.Group("/webhook")
	{
		webhook.POST("/stripe", webhookHandler.HandleStripeWebhook)
		webhook.POST("/stripe/test", webhookHandler.HandleTestWebhook)
	}

	v1 := router.Group("/api/v1")
	{
		whatsapp := v1.Group("/whatsapp")
		{
			whatsapp.POST("/send", whatsappHandler.SendMessage)
			whatsapp.POST("/send-template", whatsappHandler.SendTemplate)
			whatsapp.POST("/send-welcome", whatsappHandler.SendWelcome)
			whatsapp.POST("/send-payment-confirmation", whatsappHandler.SendPaymentConfirmation)
			whatsapp.POST("/send-shipment", whatsappHandler.SendShipmentNotification)
			whatsapp.POST("/send-promotional", whatsappHandler.SendPromotional)
			whatsapp.GET("/validate-phone/:number", whatsappHandler.ValidatePhone)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/intent", paymentHandler.CreatePaymentIntent)
			payments.GET("/customer/:customer_id", paymentHandler.ListCustomerPayments)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"}
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
