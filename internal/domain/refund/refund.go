package refund

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidRefundAmount = errors.New("refund amount must be positive and not exceed the transaction amount")

// Status defines refund request states. Only pending is produced here;
// processing a refund against a gateway is outside this service.
type Status string

const (
	StatusPending Status = "pending"
)

// Refund records a merchant's request to refund a transaction
type Refund struct {
	ID              uuid.UUID       `json:"id"`
	TransactionID   uuid.UUID       `json:"transaction_id"`
	Reference       string          `json:"reference"`
	GatewayRefundID string          `json:"gateway_refund_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Status          Status          `json:"status"`
	Reason          string          `json:"reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// New creates a pending refund request for the given transaction
func New(transactionID uuid.UUID, amount decimal.Decimal, reason string) *Refund {
	return &Refund{
		ID:            uuid.New(),
		TransactionID: transactionID,
		Reference:     "RFD-" + uuid.New().String(),
		Amount:        amount,
		Status:        StatusPending,
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
	}
}

// Repository defines refund persistence operations
type Repository interface {
	Create(ctx context.Context, rfd *Refund) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*Refund, error)
}
