package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paygate-payment-gateway/internal/api_gateway/handler"
	"github.com/paygate-payment-gateway/internal/api_gateway/middleware"
	"github.com/paygate-payment-gateway/internal/domain/merchant"
)

// setupRouter configures API routes and middleware for the application.
// Webhook routes carry no merchant credentials and stay outside APIKeyAuth.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	paymentHandler *handler.PaymentHandler,
	webhookHandler *handler.WebhookHandler,
	merchantRepo merchant.Repository,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// Merchant-facing API v1 endpoints
	v1 := r.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(logger, merchantRepo))
	{
		payments := v1.Group("/payments")
		{
			payments.POST("/initiate", paymentHandler.Initiate)
			payments.GET("/:reference", paymentHandler.Get)
			payments.POST("/:reference/refunds", paymentHandler.CreateRefund)
			payments.GET("/:reference/webhooks", paymentHandler.GetWebhookLogs)
		}
	}

	// Inbound gateway notifications
	webhooks := r.Group("/api/webhooks")
	{
		webhooks.POST("/bkash", webhookHandler.Bkash)
		webhooks.POST("/stripe", webhookHandler.Stripe)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
