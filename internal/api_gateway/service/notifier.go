package service

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/paygate-payment-gateway/internal/config"
	"github.com/paygate-payment-gateway/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// merchantNotification is the body POSTed to the merchant's webhook URL
type merchantNotification struct {
	TransactionRef string          `json:"transaction_ref"`
	OrderID        string          `json:"order_id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// WebhookNotifier delivers status notifications to merchant endpoints through
// a bounded worker pool. Delivery is fire-and-forget: a slow or dead merchant
// endpoint must never stall webhook processing.
type WebhookNotifier struct {
	pool       *ants.Pool
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookNotifier creates a notifier backed by a worker pool of the
// configured size
func NewWebhookNotifier(logger *slog.Logger, cfg *config.NotifierConfig) (*WebhookNotifier, error) {
	pool, err := ants.NewPool(cfg.WorkerPoolSize)
	if err != nil {
		return nil, err
	}

	return &WebhookNotifier{
		pool:       pool,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// Notify submits a notification for asynchronous delivery to url
func (n *WebhookNotifier) Notify(txn *transaction.Transaction, url string) {
	notification := merchantNotification{
		TransactionRef: txn.Reference,
		OrderID:        txn.OrderID,
		Status:         string(txn.Status),
		Amount:         txn.Amount,
		Currency:       txn.Currency,
		PaidAt:         txn.PaidAt,
	}

	err := n.pool.Submit(func() {
		n.deliver(url, notification)
	})
	if err != nil {
		n.logger.Error("Failed to submit merchant notification to worker pool",
			"reference", notification.TransactionRef,
			"error", err)
	}
}

func (n *WebhookNotifier) deliver(url string, notification merchantNotification) {
	body, err := json.Marshal(notification)
	if err != nil {
		n.logger.Error("Failed to encode merchant notification",
			"reference", notification.TransactionRef,
			"error", err)
		return
	}

	resp, err := n.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		n.logger.Error("Merchant notification delivery failed",
			"reference", notification.TransactionRef,
			"url", url,
			"error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("Merchant endpoint rejected notification",
			"reference", notification.TransactionRef,
			"url", url,
			"status_code", resp.StatusCode)
		return
	}

	n.logger.Info("Merchant notified",
		"reference", notification.TransactionRef,
		"status", notification.Status)
}

// Shutdown releases the worker pool. In-flight deliveries are abandoned.
func (n *WebhookNotifier) Shutdown() {
	n.pool.Release()
}
