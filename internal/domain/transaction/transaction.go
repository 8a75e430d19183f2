package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidAmount         = errors.New("amount must be positive with at most 2 decimal places")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrEmptyOrderID          = errors.New("order id cannot be empty")
)

// Status defines the lifecycle states of a transaction
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Transaction represents a single payment attempt through a gateway.
// Reference is the merchant-facing identifier; GatewayReference is assigned
// by the gateway after dispatch and is the join key for webhook reconciliation.
type Transaction struct {
	ID               uuid.UUID       `json:"id"`
	MerchantID       uuid.UUID       `json:"merchant_id"`
	Reference        string          `json:"reference"`
	Gateway          string          `json:"gateway"`
	GatewayReference string          `json:"gateway_reference,omitempty"`
	OrderID          string          `json:"order_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           Status          `json:"status"`
	CustomerEmail    string          `json:"customer_email,omitempty"`
	CustomerPhone    string          `json:"customer_phone,omitempty"`
	PaymentURL       string          `json:"payment_url,omitempty"`
	CallbackURL      string          `json:"callback_url,omitempty"`
	WebhookURL       string          `json:"webhook_url,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// New creates a pending transaction with a freshly generated reference
func New(merchantID uuid.UUID, gateway, orderID string, amount decimal.Decimal, currency string) (*Transaction, error) {
	if orderID == "" {
		return nil, ErrEmptyOrderID
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	return &Transaction{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Reference:  NewReference(),
		Gateway:    strings.ToLower(gateway),
		OrderID:    orderID,
		Amount:     amount,
		Currency:   strings.ToUpper(currency),
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// NewReference generates a merchant-facing transaction reference.
// Format: TXN-<yyyymmdd>-<random hex>, capped at 30 characters.
func NewReference() string {
	ref := "TXN-" + time.Now().UTC().Format("20060102") + "-" + strings.ReplaceAll(uuid.New().String(), "-", "")
	if len(ref) > 30 {
		ref = ref[:30]
	}
	return ref
}

// ValidateAmount rejects non-positive amounts and amounts with more than
// 2 fractional digits; gateways cannot represent sub-cent precision.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return ErrInvalidAmount
	}
	return nil
}

// IsTerminal reports whether the transaction has reached a final state.
// Terminal transactions must never transition again.
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusSuccess || t.Status == StatusFailed
}
