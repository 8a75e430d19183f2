// Package producers publishes payment lifecycle events for downstream
// consumers (analytics, settlement, alerting). Delivery is best-effort;
// a failed publish never blocks or rolls back a reconciliation.
package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/paygate-payment-gateway/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// PaymentEvent is emitted once per terminal status transition
type PaymentEvent struct {
	TransactionRef string          `json:"transaction_ref"`
	OrderID        string          `json:"order_id"`
	Gateway        string          `json:"gateway"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

type PaymentEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewPaymentEventProducer creates the producer and ensures the topic exists
func NewPaymentEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*PaymentEventProducer, error) {
	if cfg.PaymentEventTopic == "" {
		return nil, fmt.Errorf("kafka payment event topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for payment event producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists: %w", cfg.PaymentEventTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.PaymentEventTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Best-effort stream; reconciliation never waits on acks
		WriteTimeout: cfg.WriteTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write payment events asynchronously", "topic", cfg.PaymentEventTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote payment events asynchronously", "topic", cfg.PaymentEventTopic, "count", len(messages))
			}
		},
	}

	return &PaymentEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.PaymentEventTopic,
	}, nil
}

// Publish sends a payment event keyed by transaction reference so events for
// one transaction land on one partition in order
func (p *PaymentEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish payment event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish payment event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published payment event", "topic", p.topic, "key", key)
	return nil
}

func (p *PaymentEventProducer) Close() error {
	p.logger.Info("Closing payment event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

// ensureTopic creates the payment events topic when the broker does not
// already have it
func ensureTopic(conn *kafka.Conn, cfg *config.KafkaConfig, log *slog.Logger) error {
	partitions, err := conn.ReadPartitions(cfg.PaymentEventTopic)
	if err == nil && len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", cfg.PaymentEventTopic)
		return nil
	}

	topicConfig := kafka.TopicConfig{
		Topic:             cfg.PaymentEventTopic,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if topicConfig.NumPartitions == 0 {
		topicConfig.NumPartitions = 1
	}
	if topicConfig.ReplicationFactor == 0 {
		topicConfig.ReplicationFactor = 1
	}

	if err := conn.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", cfg.PaymentEventTopic, err)
	}
	log.Info("Created Kafka topic", "topic", cfg.PaymentEventTopic)
	return nil
}
