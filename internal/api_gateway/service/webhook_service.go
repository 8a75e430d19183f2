package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paygate-payment-gateway/internal/domain/merchant"
	"github.com/paygate-payment-gateway/internal/domain/transaction"
	"github.com/paygate-payment-gateway/internal/domain/webhooklog"
	"github.com/paygate-payment-gateway/internal/gateway"
	"github.com/paygate-payment-gateway/internal/platform/messaging/producers"
)

// WebhookServiceImpl implements the WebhookService interface.
//
// Processing order matters: the raw payload is logged before anything else so
// a failure later in the pipeline never loses the notification. Webhooks are
// never trusted on their own; the status is always re-verified directly
// against the gateway before a transaction is finalized.
//
// Processing is fire-and-forget from the caller's perspective. Failures are
// logged and swallowed rather than surfaced to the remote gateway, which
// would treat anything but an acknowledgement as a delivery failure and keep
// redelivering a payload the log already captured. The idempotent status
// transition makes a swallowed failure safe: the transaction stays pending
// until the gateway's own redelivery or a later verification resolves it.
type WebhookServiceImpl struct {
	transactionRepo transaction.Repository
	merchantRepo    merchant.Repository
	webhookLogRepo  webhooklog.Repository
	registry        *gateway.Registry
	publisher       producers.MessagePublisher
	notifier        Notifier
	logger          *slog.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	logger *slog.Logger,
	transactionRepo transaction.Repository,
	merchantRepo merchant.Repository,
	webhookLogRepo webhooklog.Repository,
	registry *gateway.Registry,
	publisher producers.MessagePublisher,
	notifier Notifier,
) WebhookService {
	return &WebhookServiceImpl{
		transactionRepo: transactionRepo,
		merchantRepo:    merchantRepo,
		webhookLogRepo:  webhookLogRepo,
		registry:        registry,
		publisher:       publisher,
		notifier:        notifier,
		logger:          logger,
	}
}

// Process handles one inbound gateway notification end to end
func (s *WebhookServiceImpl) Process(ctx context.Context, gatewayName string, payload map[string]string, rawPayload string) {
	client, err := s.registry.Get(gatewayName)
	if err != nil {
		s.logger.Warn("Webhook received for unknown gateway",
			"gateway", gatewayName,
			"error", err)
		return
	}

	// Log first. Every notification leaves a record, valid or not.
	logEntry := webhooklog.New(gatewayName, rawPayload)
	if err := s.webhookLogRepo.Create(ctx, logEntry); err != nil {
		s.logger.Error("Failed to store webhook log",
			"gateway", gatewayName,
			"error", err)
		return
	}

	gatewayRef := client.ExtractWebhookReference(payload)
	if gatewayRef == "" {
		s.logger.Warn("Webhook payload carries no gateway reference",
			"gateway", gatewayName,
			"log_id", logEntry.ID.String())
		s.markProcessed(ctx, logEntry.ID, nil)
		return
	}

	txn, err := s.transactionRepo.GetByGatewayReference(ctx, gatewayRef)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			s.logger.Warn("Webhook references unknown transaction",
				"gateway", gatewayName,
				"gateway_reference", gatewayRef,
				"log_id", logEntry.ID.String())
			s.markProcessed(ctx, logEntry.ID, nil)
			return
		}
		// Leave the log unprocessed for the gateway's own redelivery.
		s.logger.Error("Failed to resolve webhook transaction",
			"gateway", gatewayName,
			"gateway_reference", gatewayRef,
			"error", err)
		return
	}

	if txn.IsTerminal() {
		// Duplicate delivery. Re-verify for the audit trail but change nothing.
		paid, verifyErr := client.VerifyPayment(ctx, gatewayRef)
		if verifyErr != nil {
			s.logger.Warn("Verification failed for already finalized transaction",
				"reference", txn.Reference,
				"error", verifyErr)
		} else if (txn.Status == transaction.StatusSuccess) != paid {
			s.logger.Warn("Gateway status disagrees with stored terminal status",
				"reference", txn.Reference,
				"stored_status", string(txn.Status),
				"gateway_paid", paid)
		}
		s.markProcessed(ctx, logEntry.ID, &txn.ID)
		return
	}

	paid, err := client.VerifyPayment(ctx, gatewayRef)
	if err != nil {
		// Leave the log unprocessed; the gateway may redeliver.
		s.logger.Error("Payment verification failed",
			"reference", txn.Reference,
			"gateway", gatewayName,
			"error", err)
		return
	}

	status := transaction.StatusFailed
	errorMessage := "payment not completed at gateway"
	var paidAt *time.Time
	if paid {
		status = transaction.StatusSuccess
		errorMessage = ""
		now := time.Now().UTC()
		paidAt = &now
	}

	updated, err := s.transactionRepo.FinalizeStatus(ctx, txn.ID, status, errorMessage, paidAt)
	if err != nil {
		// Same as a verification failure: the unprocessed log keeps the
		// notification recoverable.
		s.logger.Error("Failed to finalize transaction status",
			"reference", txn.Reference,
			"error", err)
		return
	}
	if !updated {
		// Lost the race with a concurrent delivery. The winner already
		// notified; just close out the log.
		s.logger.Info("Transaction already finalized by concurrent delivery",
			"reference", txn.Reference)
		s.markProcessed(ctx, logEntry.ID, &txn.ID)
		return
	}

	txn.Status = status
	txn.ErrorMessage = errorMessage
	txn.PaidAt = paidAt

	s.markProcessed(ctx, logEntry.ID, &txn.ID)

	s.publishEvent(ctx, txn)

	if url := s.notificationURL(ctx, txn); url != "" {
		s.notifier.Notify(txn, url)
	}

	s.logger.Info("Webhook processed",
		"reference", txn.Reference,
		"gateway", gatewayName,
		"status", string(status))
}

func (s *WebhookServiceImpl) markProcessed(ctx context.Context, logID uuid.UUID, transactionID *uuid.UUID) {
	if err := s.webhookLogRepo.MarkProcessed(ctx, logID, transactionID); err != nil {
		s.logger.Error("Failed to mark webhook log processed",
			"log_id", logID.String(),
			"error", err)
	}
}

// notificationURL resolves where to notify the merchant: the URL given at
// initiation wins, the merchant's registered default fills in when the
// transaction carries none.
func (s *WebhookServiceImpl) notificationURL(ctx context.Context, txn *transaction.Transaction) string {
	if txn.WebhookURL != "" {
		return txn.WebhookURL
	}

	mrc, err := s.merchantRepo.GetByID(ctx, txn.MerchantID)
	if err != nil {
		s.logger.Warn("Failed to resolve merchant for notification fallback",
			"reference", txn.Reference,
			"merchant_id", txn.MerchantID.String(),
			"error", err)
		return ""
	}
	return mrc.WebhookURL
}

// publishEvent emits the terminal transition to Kafka. Best effort; a broker
// outage must not fail webhook processing.
func (s *WebhookServiceImpl) publishEvent(ctx context.Context, txn *transaction.Transaction) {
	event := &producers.PaymentEvent{
		TransactionRef: txn.Reference,
		OrderID:        txn.OrderID,
		Gateway:        txn.Gateway,
		Status:         string(txn.Status),
		Amount:         txn.Amount,
		Currency:       txn.Currency,
		PaidAt:         txn.PaidAt,
		OccurredAt:     time.Now().UTC(),
	}

	if err := s.publisher.Publish(ctx, txn.Reference, event); err != nil {
		s.logger.Error("Failed to publish payment event",
			"reference", txn.Reference,
			"error", err)
	}
}
