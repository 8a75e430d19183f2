// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining the
// terminal-state invariant and proper error handling for the payment gateway.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/paygate-payment-gateway/internal/domain/transaction"
	"github.com/paygate-payment-gateway/internal/platform/persistence"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

const transactionColumns = `id, merchant_id, reference, gateway, gateway_reference, order_id, amount, currency, status,
		customer_email, customer_phone, payment_url, callback_url, webhook_url, error_message, paid_at, created_at`

// Create stores a new transaction. The row must exist before any outbound
// gateway call is made so a failed dispatch still leaves a traceable record.
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, merchant_id, reference, gateway, gateway_reference, order_id, amount, currency, status,
			customer_email, customer_phone, payment_url, callback_url, webhook_url, error_message, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.MerchantID,
		txn.Reference,
		txn.Gateway,
		txn.GatewayReference,
		txn.OrderID,
		txn.Amount,
		txn.Currency,
		txn.Status,
		txn.CustomerEmail,
		txn.CustomerPhone,
		txn.PaymentURL,
		txn.CallbackURL,
		txn.WebhookURL,
		txn.ErrorMessage,
		txn.PaidAt,
		txn.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "reference", txn.Reference, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByReference retrieves a transaction scoped to its owning merchant.
// A reference owned by another merchant is indistinguishable from a miss.
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string, merchantID uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE reference = $1 AND merchant_id = $2
	`

	txn, err := r.scanOne(r.querier.QueryRow(ctx, query, reference, merchantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{Reference: reference}
		}
		r.logger.Error("Failed to get transaction", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// GetByGatewayReference retrieves a transaction by the gateway-assigned
// reference. Global lookup; reconciliation has no merchant scope.
func (r *TransactionRepository) GetByGatewayReference(ctx context.Context, gatewayReference string) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE gateway_reference = $1
	`

	txn, err := r.scanOne(r.querier.QueryRow(ctx, query, gatewayReference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{Reference: gatewayReference}
		}
		r.logger.Error("Failed to get transaction by gateway reference", "gateway_reference", gatewayReference, "error", err)
		return nil, fmt.Errorf("failed to get transaction by gateway reference: %w", err)
	}

	return txn, nil
}

// SetDispatchResult records the gateway reference and payment URL after a
// successful dispatch. The gateway reference is set at most once.
func (r *TransactionRepository) SetDispatchResult(ctx context.Context, id uuid.UUID, gatewayReference, paymentURL string) error {
	query := `
		UPDATE transactions
		SET gateway_reference = $1, payment_url = $2
		WHERE id = $3 AND gateway_reference = ''
	`

	result, err := r.querier.Exec(ctx, query, gatewayReference, paymentURL, id)
	if err != nil {
		r.logger.Error("Failed to set dispatch result", "id", id.String(), "error", err)
		return fmt.Errorf("failed to set dispatch result: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{Reference: id.String()}
	}

	return nil
}

// FinalizeStatus moves a pending transaction to a terminal status with an
// atomic check-and-set. Returns false when the row was already terminal so
// duplicate reconciliations collapse into no-ops.
func (r *TransactionRepository) FinalizeStatus(ctx context.Context, id uuid.UUID, status transaction.Status, errorMessage string, paidAt *time.Time) (bool, error) {
	query := `
		UPDATE transactions
		SET status = $1, error_message = $2, paid_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.querier.Exec(ctx, query, status, errorMessage, paidAt, id, transaction.StatusPending)
	if err != nil {
		r.logger.Error("Failed to finalize transaction status", "id", id.String(), "status", string(status), "error", err)
		return false, fmt.Errorf("failed to finalize transaction status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// scanOne maps a single row onto a Transaction
func (r *TransactionRepository) scanOne(row pgx.Row) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.MerchantID,
		&txn.Reference,
		&txn.Gateway,
		&txn.GatewayReference,
		&txn.OrderID,
		&txn.Amount,
		&txn.Currency,
		&txn.Status,
		&txn.CustomerEmail,
		&txn.CustomerPhone,
		&txn.PaymentURL,
		&txn.CallbackURL,
		&txn.WebhookURL,
		&txn.ErrorMessage,
		&txn.PaidAt,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
