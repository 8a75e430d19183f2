package handler

import (
	"time"

	"github.com/paygate-payment-gateway/internal/domain/refund"
	"github.com/paygate-payment-gateway/internal/domain/transaction"
	"github.com/paygate-payment-gateway/internal/domain/webhooklog"
	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest represents a request to start a payment.
// Amount is bound through decimal's exact JSON decoding so sub-cent inputs
// survive long enough to be rejected instead of being rounded by float64.
type InitiatePaymentRequest struct {
	Gateway       string          `json:"gateway" binding:"required"`
	OrderID       string          `json:"order_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency" binding:"required,len=3"`
	CustomerEmail string          `json:"customer_email,omitempty" binding:"omitempty,email"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	CallbackURL   string          `json:"callback_url,omitempty" binding:"omitempty,url"`
	WebhookURL    string          `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	Reference        string `json:"reference"`
	Gateway          string `json:"gateway"`
	GatewayReference string `json:"gateway_reference,omitempty"`
	OrderID          string `json:"order_id"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	PaymentURL       string `json:"payment_url,omitempty"`
	ErrorMessage     string `json:"error_message,omitempty"`
	PaidAt           string `json:"paid_at,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// RefundRequest represents a request to record a refund.
// A missing amount means a full refund.
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// RefundResponse represents a refund request in API responses
type RefundResponse struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

// WebhookLogResponse represents a webhook audit record in API responses
type WebhookLogResponse struct {
	ID        string `json:"id"`
	Gateway   string `json:"gateway"`
	Payload   string `json:"payload"`
	Processed bool   `json:"processed"`
	CreatedAt string `json:"created_at"`
}

// WebhookLogListResponse represents a page of webhook audit records
type WebhookLogListResponse struct {
	Logs []WebhookLogResponse `json:"logs"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// mapTransactionToResponse maps a transaction entity to a response DTO
func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	resp := TransactionResponse{
		Reference:        txn.Reference,
		Gateway:          txn.Gateway,
		GatewayReference: txn.GatewayReference,
		OrderID:          txn.OrderID,
		Amount:           txn.Amount.StringFixed(2),
		Currency:         txn.Currency,
		Status:           string(txn.Status),
		PaymentURL:       txn.PaymentURL,
		ErrorMessage:     txn.ErrorMessage,
		CreatedAt:        txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.PaidAt != nil {
		resp.PaidAt = txn.PaidAt.Format(time.RFC3339)
	}
	return resp
}

// mapRefundToResponse maps a refund entity to a response DTO
func mapRefundToResponse(rfd *refund.Refund) RefundResponse {
	return RefundResponse{
		Reference: rfd.Reference,
		Amount:    rfd.Amount.StringFixed(2),
		Status:    string(rfd.Status),
		Reason:    rfd.Reason,
		CreatedAt: rfd.CreatedAt.Format(time.RFC3339),
	}
}

// mapWebhookLogsToResponse maps webhook log entities to a list response DTO
func mapWebhookLogsToResponse(logs []*webhooklog.Log) WebhookLogListResponse {
	resp := WebhookLogListResponse{Logs: make([]WebhookLogResponse, 0, len(logs))}
	for _, log := range logs {
		resp.Logs = append(resp.Logs, WebhookLogResponse{
			ID:        log.ID.String(),
			Gateway:   log.Gateway,
			Payload:   log.Payload,
			Processed: log.Processed,
			CreatedAt: log.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
