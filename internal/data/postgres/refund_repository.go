package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/paygate-payment-gateway/internal/domain/refund"
	"github.com/paygate-payment-gateway/internal/platform/persistence"
)

// RefundRepository implements the refund.Repository interface for PostgreSQL
type RefundRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRefundRepository creates a new PostgreSQL refund repository
func NewRefundRepository(logger *slog.Logger, db *persistence.PostgresDB) refund.Repository {
	return &RefundRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new refund request
func (r *RefundRepository) Create(ctx context.Context, rfd *refund.Refund) error {
	query := `
		INSERT INTO refunds (id, transaction_id, reference, gateway_refund_id, amount, status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		rfd.ID,
		rfd.TransactionID,
		rfd.Reference,
		rfd.GatewayRefundID,
		rfd.Amount,
		rfd.Status,
		rfd.Reason,
		rfd.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create refund", "reference", rfd.Reference, "error", err)
		return fmt.Errorf("failed to create refund: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves all refund requests recorded for a transaction,
// newest first
func (r *RefundRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*refund.Refund, error) {
	query := `
		SELECT id, transaction_id, reference, gateway_refund_id, amount, status, reason, created_at
		FROM refunds
		WHERE transaction_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, transactionID)
	if err != nil {
		r.logger.Error("Failed to query refunds", "transaction_id", transactionID.String(), "error", err)
		return nil, fmt.Errorf("failed to query refunds: %w", err)
	}
	defer rows.Close()

	var refunds []*refund.Refund
	for rows.Next() {
		var rfd refund.Refund
		err := rows.Scan(
			&rfd.ID,
			&rfd.TransactionID,
			&rfd.Reference,
			&rfd.GatewayRefundID,
			&rfd.Amount,
			&rfd.Status,
			&rfd.Reason,
			&rfd.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refund: %w", err)
		}
		refunds = append(refunds, &rfd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read refunds: %w", err)
	}

	return refunds, nil
}
