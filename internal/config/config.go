// Package config provides configuration structures and validation for the
// application. It handles environment-based configuration for all major
// components including server settings, database connections, gateway
// credentials, and operational parameters.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all
// components. Each field represents a major subsystem's configuration and is
// validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	Gateways    GatewaysConfig
	Notifier    NotifierConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the webhook audit store
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains configuration for the payment events producer
type KafkaConfig struct {
	Brokers           string
	PaymentEventTopic string
	NumPartitions     int
	ReplicationFactor int
	WriteTimeout      time.Duration
}

// GatewaysConfig groups the per-gateway credentials and endpoints
type GatewaysConfig struct {
	Bkash  BkashConfig
	Stripe StripeConfig
}

// BkashConfig contains wallet gateway credentials. Token grant uses the
// username/password headers plus the app key/secret body.
type BkashConfig struct {
	BaseURL   string
	AppKey    string
	AppSecret string
	Username  string
	Password  string
	Timeout   time.Duration // Per-call HTTP timeout
}

// StripeConfig contains hosted-checkout gateway credentials
type StripeConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration // Per-call HTTP timeout
}

// NotifierConfig contains merchant webhook notification settings
type NotifierConfig struct {
	WorkerPoolSize int           // Maximum concurrent notification deliveries
	Timeout        time.Duration // Per-delivery HTTP timeout
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.PaymentEventTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_PAYMENT_EVENT_TOPIC is required")
	}
	if c.Kafka.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
	}

	// Validate gateway configs
	if c.Gateways.Bkash.BaseURL == "" {
		validationErrors = append(validationErrors, "BKASH_BASE_URL is required")
	}
	if c.Gateways.Bkash.AppKey == "" {
		validationErrors = append(validationErrors, "BKASH_APP_KEY is required")
	}
	if c.Gateways.Bkash.AppSecret == "" {
		validationErrors = append(validationErrors, "BKASH_APP_SECRET is required")
	}
	if c.Gateways.Bkash.Timeout <= 0 {
		validationErrors = append(validationErrors, "BKASH_TIMEOUT must be greater than 0")
	}
	if c.Gateways.Stripe.BaseURL == "" {
		validationErrors = append(validationErrors, "STRIPE_BASE_URL is required")
	}
	if c.Gateways.Stripe.SecretKey == "" {
		validationErrors = append(validationErrors, "STRIPE_SECRET_KEY is required")
	}
	if c.Gateways.Stripe.Timeout <= 0 {
		validationErrors = append(validationErrors, "STRIPE_TIMEOUT must be greater than 0")
	}

	// Validate notifier config
	if c.Notifier.WorkerPoolSize <= 0 {
		validationErrors = append(validationErrors, "NOTIFIER_WORKER_POOL_SIZE must be greater than 0")
	}
	if c.Notifier.Timeout <= 0 {
		validationErrors = append(validationErrors, "NOTIFIER_TIMEOUT must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
