package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/paygate-payment-gateway/internal/api_gateway/service"
)

// WebhookHandler handles inbound gateway notifications.
//
// Webhook endpoints always answer 200: gateways treat any other status as a
// delivery failure and keep retrying, which turns one transient processing
// error into a duplicate-delivery storm. Failures stay in the logs and in the
// unprocessed webhook record; they are never surfaced to the remote gateway.
type WebhookHandler struct {
	webhookService service.WebhookService
	logger         *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(logger *slog.Logger, webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// Bkash handles bkash notifications, delivered as form-encoded fields
func (h *WebhookHandler) Bkash(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", "gateway", "bkash", "error", err)
		c.Status(http.StatusOK)
		return
	}

	payload := map[string]string{}
	if values, parseErr := url.ParseQuery(string(raw)); parseErr == nil {
		for key := range values {
			payload[key] = values.Get(key)
		}
	} else {
		h.logger.Warn("Unparseable webhook body", "gateway", "bkash", "error", parseErr)
	}

	h.process(c, "bkash", payload, string(raw))
}

// Stripe handles stripe notifications, delivered as a JSON event envelope
func (h *WebhookHandler) Stripe(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", "gateway", "stripe", "error", err)
		c.Status(http.StatusOK)
		return
	}

	h.process(c, "stripe", flattenStripeEvent(raw), string(raw))
}

// flattenStripeEvent pulls the string fields out of a stripe event envelope.
// Both the bare payment intent form and the event form with data.object are
// accepted; nested object fields win over envelope fields of the same name.
func flattenStripeEvent(raw []byte) map[string]string {
	payload := map[string]string{}

	var envelope map[string]interface{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return payload
	}

	collect := func(fields map[string]interface{}) {
		for key, value := range fields {
			if s, ok := value.(string); ok {
				payload[key] = s
			}
		}
	}

	collect(envelope)
	if data, ok := envelope["data"].(map[string]interface{}); ok {
		if object, ok := data["object"].(map[string]interface{}); ok {
			collect(object)
		}
	}

	return payload
}

func (h *WebhookHandler) process(c *gin.Context, gatewayName string, payload map[string]string, rawPayload string) {
	h.webhookService.Process(c.Request.Context(), gatewayName, payload, rawPayload)
	c.Status(http.StatusOK)
}
