package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/paygate-payment-gateway/internal/domain/refund"
	"github.com/paygate-payment-gateway/internal/domain/transaction"
	"github.com/paygate-payment-gateway/internal/domain/webhooklog"
	"github.com/shopspring/decimal"
)

// InitiatePaymentParams carries the merchant's request to start a payment
type InitiatePaymentParams struct {
	MerchantID    uuid.UUID
	Gateway       string
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	CustomerPhone string
	CallbackURL   string
	WebhookURL    string
}

// PaymentService defines the interface for merchant-facing payment operations
type PaymentService interface {
	// InitiatePayment validates the request, stores a pending transaction and
	// dispatches it to the selected gateway.
	// Returns ErrUnsupportedGateway before anything is stored; a gateway
	// failure after storage leaves a failed transaction behind.
	InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*transaction.Transaction, error)

	// GetTransaction retrieves a transaction by reference, scoped to the
	// requesting merchant. Returns ErrTransactionNotFound on a miss.
	GetTransaction(ctx context.Context, reference string, merchantID uuid.UUID) (*transaction.Transaction, error)

	// RequestRefund records a refund request against a successful transaction
	RequestRefund(ctx context.Context, reference string, merchantID uuid.UUID, amount decimal.Decimal, reason string) (*refund.Refund, error)

	// GetWebhookLogs retrieves the paginated webhook audit trail for a
	// merchant's transaction, newest first
	GetWebhookLogs(ctx context.Context, reference string, merchantID uuid.UUID, page, perPage int) ([]*webhooklog.Log, error)
}

// WebhookService defines the interface for inbound gateway notifications
type WebhookService interface {
	// Process logs the raw payload, resolves it to a transaction, re-verifies
	// the status against the gateway, and finalizes the transaction.
	// Processing is fire-and-forget: every failure is logged and absorbed so
	// the remote gateway always gets its receipt acknowledged.
	Process(ctx context.Context, gatewayName string, payload map[string]string, rawPayload string)
}

// Notifier forwards payment status changes to merchant webhook endpoints
type Notifier interface {
	// Notify dispatches a status notification to url asynchronously. Delivery
	// is best effort; failures are logged, never retried.
	Notify(txn *transaction.Transaction, url string)
}
