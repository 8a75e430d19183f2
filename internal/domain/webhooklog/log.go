package webhooklog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Log is an append-only audit record of an inbound gateway notification.
// TransactionID is nil until (and unless) the notification is resolved to a
// stored transaction. Rows are never deleted; the only permitted update is
// flipping Processed and attaching the resolved transaction id.
type Log struct {
	ID            uuid.UUID  `json:"id" bson:"_id"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	Gateway       string     `json:"gateway" bson:"gateway"`
	Payload       string     `json:"payload" bson:"payload"`
	Processed     bool       `json:"processed" bson:"processed"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
}

// New creates an unprocessed log entry for a raw gateway payload
func New(gateway, payload string) *Log {
	return &Log{
		ID:        uuid.New(),
		Gateway:   gateway,
		Payload:   payload,
		Processed: false,
		CreatedAt: time.Now().UTC(),
	}
}

// Repository manages webhook log persistence
type Repository interface {
	Create(ctx context.Context, log *Log) error

	// MarkProcessed flips the processed flag and, when the notification was
	// resolved, attaches the transaction id. transactionID may be nil.
	MarkProcessed(ctx context.Context, id uuid.UUID, transactionID *uuid.UUID) error

	// GetByTransactionID retrieves the audit trail for a transaction,
	// newest first.
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID, limit, offset int) ([]*Log, error)
}

// ErrLogNotFound indicates a missing webhook log entry
type ErrLogNotFound struct {
	ID uuid.UUID
}

func (e ErrLogNotFound) Error() string {
	return "webhook log not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrLogNotFound
func (e ErrLogNotFound) Is(target error) bool {
	t, ok := target.(ErrLogNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
