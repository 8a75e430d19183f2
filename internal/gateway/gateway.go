// Package gateway defines the uniform contract over heterogeneous payment
// gateway APIs. Each concrete gateway lives in its own subpackage and is
// registered in a Registry keyed by gateway name; adding a gateway means
// adding a variant, not editing the orchestrator.
package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest carries the generic inputs for initiating a payment
type CreatePaymentRequest struct {
	TransactionRef string
	OrderID        string
	Amount         decimal.Decimal
	Currency       string
	CallbackURL    string
}

// CreatePaymentResult carries the gateway's answer to a successful dispatch
type CreatePaymentResult struct {
	PaymentURL       string
	GatewayReference string
}

// Client is the capability set every gateway variant implements
type Client interface {
	// Name returns the registry key for this gateway
	Name() string

	// CreatePayment initiates a payment attempt. A single failed attempt
	// surfaces immediately as *Error; there are no retries inside this call.
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)

	// VerifyPayment re-checks the payment status directly against the
	// gateway. A "not yet paid" answer is (false, nil); *Error is returned
	// only on transport or auth failure.
	VerifyPayment(ctx context.Context, gatewayReference string) (bool, error)

	// ExtractWebhookReference pulls the gateway's own payment reference out
	// of an inbound webhook payload. Returns "" when the payload does not
	// carry one.
	ExtractWebhookReference(payload map[string]string) string
}

// Registry holds the known gateway variants keyed by name
type Registry struct {
	clients map[string]Client
}

// NewRegistry builds a registry from the given clients
func NewRegistry(clients ...Client) *Registry {
	m := make(map[string]Client, len(clients))
	for _, c := range clients {
		m[c.Name()] = c
	}
	return &Registry{clients: m}
}

// Get returns the client for the given gateway name.
// Returns ErrUnsupportedGateway for unrecognized names.
func (r *Registry) Get(name string) (Client, error) {
	c, ok := r.clients[name]
	if !ok {
		return nil, ErrUnsupportedGateway{Gateway: name}
	}
	return c, nil
}

// Names lists the registered gateway names
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}
