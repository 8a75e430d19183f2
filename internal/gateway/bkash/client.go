// Package bkash implements the wallet-style redirect gateway variant.
// Every create/verify call performs a fresh token grant; tokens are
// short-lived and are not cached across calls.
package bkash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/paygate-payment-gateway/internal/config"
	"github.com/paygate-payment-gateway/internal/gateway"
)

// GatewayName is the registry key for this variant
const GatewayName = "bkash"

// Client talks to the bKash tokenized checkout API
type Client struct {
	httpClient *http.Client
	cfg        *config.BkashConfig
	logger     *slog.Logger
}

// NewClient creates a bKash gateway client with a bounded per-call timeout
func NewClient(logger *slog.Logger, cfg *config.BkashConfig) *Client {
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

type createRequest struct {
	Mode                  string `json:"mode"`
	PayerReference        string `json:"payerReference"`
	CallbackURL           string `json:"callbackURL"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	Intent                string `json:"intent"`
	MerchantInvoiceNumber string `json:"merchantInvoiceNumber"`
}

// CreatePayment initiates a checkout session. The amount is sent as a
// 2-decimal major-unit string, exactly as entered.
func (c *Client) CreatePayment(ctx context.Context, req gateway.CreatePaymentRequest) (*gateway.CreatePaymentResult, error) {
	token, err := c.grantToken(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := gateway.MajorUnitString(req.Amount)
	if err != nil {
		return nil, gateway.NewError(GatewayName, "create payment", "invalid amount", err)
	}

	body := createRequest{
		Mode:                  "0011",
		PayerReference:        " ",
		CallbackURL:           req.CallbackURL,
		Amount:                amount,
		Currency:              req.Currency,
		Intent:                "sale",
		MerchantInvoiceNumber: req.OrderID,
	}

	status, respBody, err := c.doJSON(ctx, http.MethodPost, c.cfg.BaseURL+"/create", token, body)
	if err != nil {
		return nil, gateway.NewError(GatewayName, "create payment", "request failed", err)
	}
	if status < 200 || status >= 300 {
		c.logger.Error("bKash create payment failed", "status", status, "response", string(respBody))
		return nil, gateway.NewError(GatewayName, "create payment", fmt.Sprintf("gateway returned status %d", status), nil)
	}

	var result struct {
		BkashURL  string `json:"bkashURL"`
		PaymentID string `json:"paymentID"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, gateway.NewError(GatewayName, "create payment", "malformed response body", err)
	}
	if result.BkashURL == "" || result.PaymentID == "" {
		return nil, gateway.NewError(GatewayName, "create payment", "response missing bkashURL or paymentID", nil)
	}

	return &gateway.CreatePaymentResult{
		PaymentURL:       result.BkashURL,
		GatewayReference: result.PaymentID,
	}, nil
}

// VerifyPayment checks the payment status. A stale token (401) is refreshed
// transparently and the call retried exactly once; any other non-success
// status means "not paid".
func (c *Client) VerifyPayment(ctx context.Context, gatewayReference string) (bool, error) {
	token, err := c.grantToken(ctx)
	if err != nil {
		return false, err
	}

	status, respBody, err := c.doJSON(ctx, http.MethodGet, c.cfg.BaseURL+"/payment/status/"+gatewayReference, token, nil)
	if err != nil {
		return false, gateway.NewError(GatewayName, "verify payment", "request failed", err)
	}

	if status == http.StatusUnauthorized {
		token, err = c.grantToken(ctx)
		if err != nil {
			return false, err
		}
		status, respBody, err = c.doJSON(ctx, http.MethodGet, c.cfg.BaseURL+"/payment/status/"+gatewayReference, token, nil)
		if err != nil {
			return false, gateway.NewError(GatewayName, "verify payment", "request failed", err)
		}
		if status == http.StatusUnauthorized {
			return false, gateway.NewError(GatewayName, "verify payment", "unauthorized after token refresh", nil)
		}
	}

	if status < 200 || status >= 300 {
		c.logger.Warn("bKash status query returned non-success", "status", status, "gateway_reference", gatewayReference)
		return false, nil
	}

	var result struct {
		TransactionStatus string `json:"transactionStatus"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false, gateway.NewError(GatewayName, "verify payment", "malformed response body", err)
	}

	return strings.EqualFold(result.TransactionStatus, "completed"), nil
}

// ExtractWebhookReference pulls the bKash payment id out of a webhook payload
func (c *Client) ExtractWebhookReference(payload map[string]string) string {
	return payload["paymentID"]
}

// grantToken performs the credential exchange for a short-lived bearer token
func (c *Client) grantToken(ctx context.Context) (string, error) {
	body := map[string]string{
		"app_key":    c.cfg.AppKey,
		"app_secret": c.cfg.AppSecret,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", gateway.NewError(GatewayName, "token grant", "failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/token/grant", bytes.NewReader(payload))
	if err != nil {
		return "", gateway.NewError(GatewayName, "token grant", "failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("username", c.cfg.Username)
	httpReq.Header.Set("password", c.cfg.Password)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", gateway.NewError(GatewayName, "token grant", "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", gateway.NewError(GatewayName, "token grant", "failed to read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("bKash token grant failed", "status", resp.StatusCode)
		return "", gateway.NewError(GatewayName, "token grant", fmt.Sprintf("gateway returned status %d", resp.StatusCode), nil)
	}

	var result struct {
		IDToken string `json:"id_token"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", gateway.NewError(GatewayName, "token grant", "malformed response body", err)
	}
	if result.IDToken == "" {
		return "", gateway.NewError(GatewayName, "token grant", "response missing id_token", nil)
	}

	return result.IDToken, nil
}

// doJSON issues an authenticated request and returns the raw status and body.
// Transport errors are returned as-is for the caller to classify.
func (c *Client) doJSON(ctx context.Context, method, url, token string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("X-APP-Key", c.cfg.AppKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}
