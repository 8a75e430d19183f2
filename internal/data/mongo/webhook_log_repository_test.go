package mongo

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/paygate-payment-gateway/internal/domain/webhooklog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
)

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

func TestNewWebhookLogRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewWebhookLogRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &WebhookLogRepository{}, repo)
}

func TestWebhookLogRepository_Create(t *testing.T) {
	entry := webhooklog.New("bkash", `{"paymentID":"TR0011abcdef","status":"Completed"}`)

	tests := []struct {
		name          string
		setupMocks    func(m *MockWebhookLogRepository)
		expectedError error
	}{
		{
			name: "successful creation",
			setupMocks: func(m *MockWebhookLogRepository) {
				m.On("Create", mock.Anything, entry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func(m *MockWebhookLogRepository) {
				m.On("Create", mock.Anything, entry).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockWebhookLogRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			err := mockRepo.Create(ctx, entry)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestWebhookLogRepository_MarkProcessed(t *testing.T) {
	logID := uuid.New()
	txnID := uuid.New()

	tests := []struct {
		name          string
		transactionID *uuid.UUID
		setupMocks    func(m *MockWebhookLogRepository, transactionID *uuid.UUID)
		expectedError error
	}{
		{
			name:          "processed with resolved transaction",
			transactionID: &txnID,
			setupMocks: func(m *MockWebhookLogRepository, transactionID *uuid.UUID) {
				m.On("MarkProcessed", mock.Anything, logID, transactionID).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "processed without a transaction",
			transactionID: nil,
			setupMocks: func(m *MockWebhookLogRepository, transactionID *uuid.UUID) {
				m.On("MarkProcessed", mock.Anything, logID, transactionID).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "log not found",
			transactionID: &txnID,
			setupMocks: func(m *MockWebhookLogRepository, transactionID *uuid.UUID) {
				m.On("MarkProcessed", mock.Anything, logID, transactionID).Return(webhooklog.ErrLogNotFound{ID: logID})
			},
			expectedError: webhooklog.ErrLogNotFound{ID: logID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockWebhookLogRepository{}
			tt.setupMocks(mockRepo, tt.transactionID)

			ctx := context.Background()
			err := mockRepo.MarkProcessed(ctx, logID, tt.transactionID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestWebhookLogRepository_GetByTransactionID(t *testing.T) {
	txnID := uuid.New()
	first := webhooklog.New("stripe", `{"id":"pi_123","status":"succeeded"}`)
	first.TransactionID = &txnID
	first.Processed = true

	tests := []struct {
		name          string
		setupMocks    func(m *MockWebhookLogRepository)
		expectedLogs  []*webhooklog.Log
		expectedError error
	}{
		{
			name: "logs found",
			setupMocks: func(m *MockWebhookLogRepository) {
				m.On("GetByTransactionID", mock.Anything, txnID, 10, 0).Return([]*webhooklog.Log{first}, nil)
			},
			expectedLogs: []*webhooklog.Log{first},
		},
		{
			name: "no logs",
			setupMocks: func(m *MockWebhookLogRepository) {
				m.On("GetByTransactionID", mock.Anything, txnID, 10, 0).Return([]*webhooklog.Log{}, nil)
			},
			expectedLogs: []*webhooklog.Log{},
		},
		{
			name: "database error",
			setupMocks: func(m *MockWebhookLogRepository) {
				m.On("GetByTransactionID", mock.Anything, txnID, 10, 0).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockWebhookLogRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			logs, err := mockRepo.GetByTransactionID(ctx, txnID, 10, 0)

			if tt.expectedError != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedLogs, logs)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
