package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paygate-payment-gateway/internal/api_gateway/middleware"
	"github.com/paygate-payment-gateway/internal/api_gateway/service"
	"github.com/paygate-payment-gateway/internal/domain/refund"
	"github.com/paygate-payment-gateway/internal/domain/transaction"
	"github.com/paygate-payment-gateway/internal/gateway"
)

// PaymentHandler handles HTTP requests for payment operations
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Initiate handles creation of a new payment, dispatching it to the selected
// gateway and returning the redirect URL
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	txn, err := h.paymentService.InitiatePayment(c.Request.Context(), service.InitiatePaymentParams{
		MerchantID:    merchantID,
		Gateway:       req.Gateway,
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CallbackURL:   req.CallbackURL,
		WebhookURL:    req.WebhookURL,
	})
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// Get retrieves a transaction by its reference, returning 404 if it does not
// belong to the authenticated merchant
func (h *PaymentHandler) Get(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	reference := c.Param("reference")
	txn, err := h.paymentService.GetTransaction(c.Request.Context(), reference, merchantID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to get transaction", "reference", reference, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// CreateRefund records a refund request against a successful transaction
func (h *PaymentHandler) CreateRefund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	reference := c.Param("reference")
	rfd, err := h.paymentService.RequestRefund(c.Request.Context(), reference, merchantID, req.Amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrTransactionNotFound{}):
			RespondNotFound(c, "Transaction not found")
		case errors.Is(err, service.ErrTransactionNotRefundable):
			RespondUnprocessable(c, "NOT_REFUNDABLE", "Only successful transactions can be refunded")
		case errors.Is(err, refund.ErrInvalidRefundAmount):
			RespondBadRequest(c, "Refund amount must be positive and not exceed the transaction amount")
		default:
			h.logger.Error("Failed to request refund", "reference", reference, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapRefundToResponse(rfd))
}

// GetWebhookLogs retrieves the paginated webhook audit trail for a transaction
func (h *PaymentHandler) GetWebhookLogs(c *gin.Context) {
	merchantID, ok := middleware.GetMerchantID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	reference := c.Param("reference")
	logs, err := h.paymentService.GetWebhookLogs(c.Request.Context(), reference, merchantID, params.Page, params.PerPage)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to get webhook logs", "reference", reference, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapWebhookLogsToResponse(logs))
}

// respondPaymentError maps payment initiation failures to HTTP responses
func (h *PaymentHandler) respondPaymentError(c *gin.Context, err error) {
	var gatewayErr *gateway.Error
	switch {
	case errors.Is(err, gateway.ErrUnsupportedGateway{}):
		RespondWithError(c, http.StatusBadRequest, "UNSUPPORTED_GATEWAY", err.Error())
	case errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidCurrencyFormat),
		errors.Is(err, transaction.ErrEmptyOrderID):
		RespondBadRequest(c, err.Error())
	case errors.As(err, &gatewayErr):
		h.logger.Error("Gateway error during payment initiation", "error", err)
		RespondBadGateway(c, "Payment gateway rejected the request")
	default:
		h.logger.Error("Failed to initiate payment", "error", err)
		RespondInternalError(c)
	}
}
