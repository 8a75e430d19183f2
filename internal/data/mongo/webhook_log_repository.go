// Package mongo provides MongoDB implementations of the audit repositories.
// Webhook logs are append-only: every raw gateway notification is stored
// before any processing happens, so a crash mid-reconciliation still leaves
// a replayable record.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paygate-payment-gateway/internal/domain/webhooklog"
)

const (
	// WebhookLogCollectionName is the name of the webhook log collection in MongoDB
	WebhookLogCollectionName = "webhook_logs"
)

// WebhookLogRepository implements the webhooklog.Repository interface for MongoDB
type WebhookLogRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewWebhookLogRepository creates a new MongoDB webhook log repository
func NewWebhookLogRepository(logger *slog.Logger, db *mongo.Database) webhooklog.Repository {
	return &WebhookLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new webhook log entry
func (r *WebhookLogRepository) Create(ctx context.Context, log *webhooklog.Log) error {
	collection := r.db.Collection(WebhookLogCollectionName)

	_, err := collection.InsertOne(ctx, log)
	if err != nil {
		r.logger.Error("Failed to create webhook log",
			"id", log.ID.String(),
			"gateway", log.Gateway,
			"error", err)
		return fmt.Errorf("failed to create webhook log: %w", err)
	}

	return nil
}

// MarkProcessed flips the processed flag and attaches the resolved transaction
// id when there is one. Returns ErrLogNotFound if the entry doesn't exist.
func (r *WebhookLogRepository) MarkProcessed(ctx context.Context, id uuid.UUID, transactionID *uuid.UUID) error {
	collection := r.db.Collection(WebhookLogCollectionName)

	filter := bson.M{"_id": id}
	set := bson.M{"processed": true}
	if transactionID != nil {
		set["transaction_id"] = *transactionID
	}
	update := bson.M{"$set": set}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to mark webhook log processed",
			"id", id.String(),
			"error", err)
		return fmt.Errorf("failed to mark webhook log processed: %w", err)
	}

	if result.MatchedCount == 0 {
		return webhooklog.ErrLogNotFound{ID: id}
	}

	return nil
}

// GetByTransactionID retrieves paginated webhook logs for a transaction.
// Results are sorted by creation time in descending order (newest first).
func (r *WebhookLogRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID, limit, offset int) ([]*webhooklog.Log, error) {
	collection := r.db.Collection(WebhookLogCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get webhook logs",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get webhook logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*webhooklog.Log
	if err := cursor.All(ctx, &logs); err != nil {
		r.logger.Error("Failed to decode webhook logs",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode webhook logs: %w", err)
	}

	return logs, nil
}
