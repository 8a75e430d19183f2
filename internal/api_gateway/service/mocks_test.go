package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paygate-payment-gateway/internal/domain/merchant"
	"github.com/paygate-payment-gateway/internal/domain/refund"
	"github.com/paygate-payment-gateway/internal/domain/transaction"
	"github.com/paygate-payment-gateway/internal/domain/webhooklog"
	"github.com/paygate-payment-gateway/internal/gateway"
	"github.com/stretchr/testify/mock"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByReference(ctx context.Context, reference string, merchantID uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, reference, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByGatewayReference(ctx context.Context, gatewayReference string) (*transaction.Transaction, error) {
	args := m.Called(ctx, gatewayReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SetDispatchResult(ctx context.Context, id uuid.UUID, gatewayReference, paymentURL string) error {
	args := m.Called(ctx, id, gatewayReference, paymentURL)
	return args.Error(0)
}

func (m *MockTransactionRepository) FinalizeStatus(ctx context.Context, id uuid.UUID, status transaction.Status, errorMessage string, paidAt *time.Time) (bool, error) {
	args := m.Called(ctx, id, status, errorMessage, paidAt)
	return args.Bool(0), args.Error(1)
}

type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) GetByID(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*merchant.Merchant, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Merchant), args.Error(1)
}

type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) Create(ctx context.Context, rfd *refund.Refund) error {
	args := m.Called(ctx, rfd)
	return args.Error(0)
}

func (m *MockRefundRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*refund.Refund, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*refund.Refund), args.Error(1)
}

type MockWebhookLogRepository struct {
	mock.Mock
}

func (m *MockWebhookLogRepository) Create(ctx context.Context, log *webhooklog.Log) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockWebhookLogRepository) MarkProcessed(ctx context.Context, id uuid.UUID, transactionID *uuid.UUID) error {
	args := m.Called(ctx, id, transactionID)
	return args.Error(0)
}

func (m *MockWebhookLogRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID, limit, offset int) ([]*webhooklog.Log, error) {
	args := m.Called(ctx, transactionID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*webhooklog.Log), args.Error(1)
}

type MockGatewayClient struct {
	mock.Mock
	name string
}

func (m *MockGatewayClient) Name() string {
	return m.name
}

func (m *MockGatewayClient) CreatePayment(ctx context.Context, req gateway.CreatePaymentRequest) (*gateway.CreatePaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CreatePaymentResult), args.Error(1)
}

func (m *MockGatewayClient) VerifyPayment(ctx context.Context, gatewayReference string) (bool, error) {
	args := m.Called(ctx, gatewayReference)
	return args.Bool(0), args.Error(1)
}

func (m *MockGatewayClient) ExtractWebhookReference(payload map[string]string) string {
	args := m.Called(payload)
	return args.String(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(txn *transaction.Transaction, url string) {
	m.Called(txn, url)
}
