package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/paygate-payment-gateway/internal/domain/merchant"
	"github.com/paygate-payment-gateway/internal/platform/persistence"
)

// MerchantRepository implements the merchant.Repository interface for PostgreSQL
type MerchantRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewMerchantRepository creates a new PostgreSQL merchant repository
func NewMerchantRepository(logger *slog.Logger, db *persistence.PostgresDB) merchant.Repository {
	return &MerchantRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetByID retrieves a merchant by ID
func (r *MerchantRepository) GetByID(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	query := `
		SELECT id, name, email, api_key, webhook_url, is_active, created_at
		FROM merchants
		WHERE id = $1
	`

	m, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, merchant.ErrMerchantNotFound{}
		}
		r.logger.Error("Failed to get merchant", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}

	return m, nil
}

// GetByAPIKey retrieves a merchant by its API key. Callers must still check
// IsActive before treating the merchant as authenticated.
func (r *MerchantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*merchant.Merchant, error) {
	query := `
		SELECT id, name, email, api_key, webhook_url, is_active, created_at
		FROM merchants
		WHERE api_key = $1
	`

	m, err := r.scanOne(r.querier.QueryRow(ctx, query, apiKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, merchant.ErrMerchantNotFound{}
		}
		r.logger.Error("Failed to get merchant by API key", "error", err)
		return nil, fmt.Errorf("failed to get merchant by API key: %w", err)
	}

	return m, nil
}

func (r *MerchantRepository) scanOne(row pgx.Row) (*merchant.Merchant, error) {
	var m merchant.Merchant
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.APIKey,
		&m.WebhookURL,
		&m.IsActive,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
