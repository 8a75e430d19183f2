package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/paygate-payment-gateway/internal/domain/refund"
	"github.com/paygate-payment-gateway/internal/domain/transaction"
	"github.com/paygate-payment-gateway/internal/domain/webhooklog"
	"github.com/paygate-payment-gateway/internal/gateway"
	"github.com/shopspring/decimal"
)

// ErrTransactionNotRefundable indicates a refund request against a
// transaction that never reached the success status
var ErrTransactionNotRefundable = errors.New("only successful transactions can be refunded")

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct {
	transactionRepo transaction.Repository
	refundRepo      refund.Repository
	webhookLogRepo  webhooklog.Repository
	registry        *gateway.Registry
	logger          *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	logger *slog.Logger,
	transactionRepo transaction.Repository,
	refundRepo refund.Repository,
	webhookLogRepo webhooklog.Repository,
	registry *gateway.Registry,
) PaymentService {
	return &PaymentServiceImpl{
		transactionRepo: transactionRepo,
		refundRepo:      refundRepo,
		webhookLogRepo:  webhookLogRepo,
		registry:        registry,
		logger:          logger,
	}
}

// InitiatePayment stores a pending transaction and dispatches it to the
// selected gateway. The pending row is written before the outbound call so a
// gateway failure still leaves a traceable, failed transaction.
func (s *PaymentServiceImpl) InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*transaction.Transaction, error) {
	// Resolve the gateway first; an unsupported name must not create a row
	client, err := s.registry.Get(params.Gateway)
	if err != nil {
		return nil, err
	}

	txn, err := transaction.New(params.MerchantID, params.Gateway, params.OrderID, params.Amount, params.Currency)
	if err != nil {
		return nil, err
	}
	txn.CustomerEmail = params.CustomerEmail
	txn.CustomerPhone = params.CustomerPhone
	txn.CallbackURL = params.CallbackURL
	txn.WebhookURL = params.WebhookURL

	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	result, err := client.CreatePayment(ctx, gateway.CreatePaymentRequest{
		TransactionRef: txn.Reference,
		OrderID:        txn.OrderID,
		Amount:         txn.Amount,
		Currency:       txn.Currency,
		CallbackURL:    txn.CallbackURL,
	})
	if err != nil {
		s.logger.Error("Gateway dispatch failed",
			"reference", txn.Reference,
			"gateway", txn.Gateway,
			"error", err)

		if _, finalizeErr := s.transactionRepo.FinalizeStatus(ctx, txn.ID, transaction.StatusFailed, err.Error(), nil); finalizeErr != nil {
			s.logger.Error("Failed to mark transaction failed after dispatch error",
				"reference", txn.Reference,
				"error", finalizeErr)
		}
		return nil, err
	}

	if err := s.transactionRepo.SetDispatchResult(ctx, txn.ID, result.GatewayReference, result.PaymentURL); err != nil {
		return nil, err
	}
	txn.GatewayReference = result.GatewayReference
	txn.PaymentURL = result.PaymentURL

	s.logger.Info("Payment initiated",
		"reference", txn.Reference,
		"gateway", txn.Gateway,
		"gateway_reference", txn.GatewayReference)

	return txn, nil
}

// GetTransaction retrieves a transaction by reference, scoped to the merchant
func (s *PaymentServiceImpl) GetTransaction(ctx context.Context, reference string, merchantID uuid.UUID) (*transaction.Transaction, error) {
	return s.transactionRepo.GetByReference(ctx, reference, merchantID)
}

// RequestRefund records a refund request against a successful transaction.
// A zero amount means refunding whatever the earlier requests left of the
// transaction amount; requests never exceed that remainder in total.
func (s *PaymentServiceImpl) RequestRefund(ctx context.Context, reference string, merchantID uuid.UUID, amount decimal.Decimal, reason string) (*refund.Refund, error) {
	txn, err := s.transactionRepo.GetByReference(ctx, reference, merchantID)
	if err != nil {
		return nil, err
	}

	if txn.Status != transaction.StatusSuccess {
		return nil, ErrTransactionNotRefundable
	}

	existing, err := s.refundRepo.GetByTransactionID(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	remaining := txn.Amount
	for _, prior := range existing {
		remaining = remaining.Sub(prior.Amount)
	}

	if amount.IsZero() {
		amount = remaining
	}
	if !amount.IsPositive() || amount.GreaterThan(remaining) {
		return nil, refund.ErrInvalidRefundAmount
	}

	rfd := refund.New(txn.ID, amount, reason)
	if err := s.refundRepo.Create(ctx, rfd); err != nil {
		return nil, err
	}

	s.logger.Info("Refund requested",
		"reference", txn.Reference,
		"refund_reference", rfd.Reference,
		"amount", amount.String())

	return rfd, nil
}

// GetWebhookLogs retrieves the webhook audit trail for a merchant's
// transaction. The merchant-scoped lookup runs first so one merchant can
// never read another's audit records.
func (s *PaymentServiceImpl) GetWebhookLogs(ctx context.Context, reference string, merchantID uuid.UUID, page, perPage int) ([]*webhooklog.Log, error) {
	txn, err := s.transactionRepo.GetByReference(ctx, reference, merchantID)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * perPage
	return s.webhookLogRepo.GetByTransactionID(ctx, txn.ID, perPage, offset)
}
