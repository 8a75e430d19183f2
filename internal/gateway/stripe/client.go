// Package stripe implements the hosted-checkout redirect gateway variant.
// Authentication uses a static secret key; no per-call token exchange.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paygate-payment-gateway/internal/config"
	"github.com/paygate-payment-gateway/internal/gateway"
)

// GatewayName is the registry key for this variant
const GatewayName = "stripe"

// Client talks to the Stripe payment intents API
type Client struct {
	httpClient *http.Client
	cfg        *config.StripeConfig
	logger     *slog.Logger
}

// NewClient creates a Stripe gateway client with a bounded per-call timeout
func NewClient(logger *slog.Logger, cfg *config.StripeConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Name returns the registry key for this gateway
func (c *Client) Name() string {
	return GatewayName
}

// CreatePayment creates a payment intent. Stripe takes amounts in minor
// units; the conversion is exact or the call is rejected.
func (c *Client) CreatePayment(ctx context.Context, req gateway.CreatePaymentRequest) (*gateway.CreatePaymentResult, error) {
	cents, err := gateway.MinorUnits(req.Amount)
	if err != nil {
		return nil, gateway.NewError(GatewayName, "create payment", "invalid amount", err)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(cents, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("metadata[transaction_id]", req.TransactionRef)
	form.Set("success_url", req.CallbackURL)
	form.Set("cancel_url", req.CallbackURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, gateway.NewError(GatewayName, "create payment", "failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, gateway.NewError(GatewayName, "create payment", "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, gateway.NewError(GatewayName, "create payment", "failed to read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Stripe create payment failed", "status", resp.StatusCode, "response", string(respBody))
		return nil, gateway.NewError(GatewayName, "create payment", fmt.Sprintf("gateway returned status %d", resp.StatusCode), nil)
	}

	var result struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, gateway.NewError(GatewayName, "create payment", "malformed response body", err)
	}
	if result.ID == "" || result.ClientSecret == "" {
		return nil, gateway.NewError(GatewayName, "create payment", "response missing id or client_secret", nil)
	}

	return &gateway.CreatePaymentResult{
		PaymentURL:       "https://checkout.stripe.com/pay/" + result.ClientSecret,
		GatewayReference: result.ID,
	}, nil
}

// VerifyPayment retrieves the payment intent and reports whether it
// succeeded. Auth failures surface as errors; any other non-success status
// means "not paid".
func (c *Client) VerifyPayment(ctx context.Context, gatewayReference string) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/payment_intents/"+gatewayReference, nil)
	if err != nil {
		return false, gateway.NewError(GatewayName, "verify payment", "failed to build request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, gateway.NewError(GatewayName, "verify payment", "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, gateway.NewError(GatewayName, "verify payment", "failed to read response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return false, gateway.NewError(GatewayName, "verify payment", fmt.Sprintf("authentication failed with status %d", resp.StatusCode), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Stripe status query returned non-success", "status", resp.StatusCode, "gateway_reference", gatewayReference)
		return false, nil
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false, gateway.NewError(GatewayName, "verify payment", "malformed response body", err)
	}

	return result.Status == "succeeded", nil
}

// ExtractWebhookReference pulls the payment intent id out of a webhook payload
func (c *Client) ExtractWebhookReference(payload map[string]string) string {
	return payload["id"]
}
