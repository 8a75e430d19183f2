package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paygate-payment-gateway/internal/domain/merchant"
)

const (
	// APIKeyHeader is the HTTP header carrying the merchant API key
	APIKeyHeader = "X-API-Key"

	// MerchantIDKey is the key used to store the merchant ID in the context
	MerchantIDKey = "merchant_id"
)

// APIKeyAuth middleware authenticates requests by merchant API key.
// Webhook routes are registered outside this middleware; gateways cannot
// present merchant credentials.
func APIKeyAuth(logger *slog.Logger, merchantRepo merchant.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(APIKeyHeader)
		if apiKey == "" {
			abortUnauthorized(c, "Missing API key")
			return
		}

		m, err := merchantRepo.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if errors.Is(err, merchant.ErrMerchantNotFound{}) {
				abortUnauthorized(c, "Invalid API key")
				return
			}
			logger.Error("Failed to authenticate merchant", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "INTERNAL_SERVER_ERROR",
					"message": "An internal server error occurred",
				},
			})
			return
		}

		if !m.IsActive {
			abortUnauthorized(c, "Merchant account is inactive")
			return
		}

		c.Set(MerchantIDKey, m.ID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetMerchantID retrieves the authenticated merchant ID from the gin context
func GetMerchantID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(MerchantIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
