package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/paygate-payment-gateway/internal/api_gateway"
	"github.com/paygate-payment-gateway/internal/api_gateway/service"
	"github.com/paygate-payment-gateway/internal/config"
	"github.com/paygate-payment-gateway/internal/data/mongo"
	"github.com/paygate-payment-gateway/internal/data/postgres"
	"github.com/paygate-payment-gateway/internal/gateway"
	"github.com/paygate-payment-gateway/internal/gateway/bkash"
	"github.com/paygate-payment-gateway/internal/gateway/stripe"
	"github.com/paygate-payment-gateway/internal/logger"
	"github.com/paygate-payment-gateway/internal/platform/messaging/producers"
	"github.com/paygate-payment-gateway/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("paygate")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for terminal payment events
	eventProducer, err := producers.NewPaymentEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka payment event producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	merchantRepo := postgres.NewMerchantRepository(log, postgresDB)
	refundRepo := postgres.NewRefundRepository(log, postgresDB)
	webhookLogRepo := mongo.NewWebhookLogRepository(log, mongoDB.Database())

	// Initialize gateway clients
	registry := gateway.NewRegistry(
		bkash.NewClient(log, &cfg.Gateways.Bkash),
		stripe.NewClient(log, &cfg.Gateways.Stripe),
	)
	log.Info("Gateway registry initialized", "gateways", registry.Names())

	// Initialize merchant notifier
	notifier, err := service.NewWebhookNotifier(log, &cfg.Notifier)
	if err != nil {
		log.Error("Failed to initialize webhook notifier", "error", err)
		os.Exit(1)
	}

	// Initialize services
	paymentService := service.NewPaymentService(log, transactionRepo, refundRepo, webhookLogRepo, registry)
	webhookService := service.NewWebhookService(log, transactionRepo, merchantRepo, webhookLogRepo, registry, eventProducer, notifier)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, paymentService, webhookService, merchantRepo)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new work arrives
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Release the notifier worker pool
	notifier.Shutdown()

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
