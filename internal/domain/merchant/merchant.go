package merchant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Merchant represents an API consumer of the payment gateway.
// APIKey authenticates inbound requests; WebhookURL is the default endpoint
// for status notifications when a transaction does not carry its own.
type Merchant struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	APIKey     string    `json:"-"`
	WebhookURL string    `json:"webhook_url,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository defines merchant persistence operations
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Merchant, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*Merchant, error)
}

// ErrMerchantNotFound indicates a missing or unknown merchant
type ErrMerchantNotFound struct {
	APIKey string
}

func (e ErrMerchantNotFound) Error() string {
	return "merchant not found"
}

// Is implements the errors.Is interface for ErrMerchantNotFound
func (e ErrMerchantNotFound) Is(target error) bool {
	_, ok := target.(ErrMerchantNotFound)
	return ok
}
