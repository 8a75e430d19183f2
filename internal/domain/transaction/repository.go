package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines transaction persistence operations
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error

	// GetByReference retrieves a transaction scoped to its owning merchant.
	// A reference owned by a different merchant returns ErrTransactionNotFound.
	GetByReference(ctx context.Context, reference string, merchantID uuid.UUID) (*Transaction, error)

	// GetByGatewayReference is the global reconciliation lookup; gateways have
	// no notion of merchant identity.
	GetByGatewayReference(ctx context.Context, gatewayReference string) (*Transaction, error)

	// SetDispatchResult records the gateway-assigned reference and payment URL
	// after a successful dispatch. The status stays pending.
	SetDispatchResult(ctx context.Context, id uuid.UUID, gatewayReference, paymentURL string) error

	// FinalizeStatus moves a pending transaction to a terminal status using an
	// atomic check-and-set. Returns false when the transaction was already
	// terminal, in which case the stored status is preserved.
	FinalizeStatus(ctx context.Context, id uuid.UUID, status Status, errorMessage string, paidAt *time.Time) (bool, error)
}

// ErrTransactionNotFound indicates a missing transaction, including
// cross-tenant lookups that must not be distinguishable from real misses
type ErrTransactionNotFound struct {
	Reference string
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.Reference
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}
