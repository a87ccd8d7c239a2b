package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"petcare-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
)

// BusinessRepository loads per-tenant POS configuration
type BusinessRepository interface {
	FindConfiguration(ctx context.Context, businessID uuid.UUID) (*domain.BusinessConfiguration, error)
}

type businessRepository struct {
	db *sql.DB
}

// NewBusinessRepository creates a new instance of BusinessRepository
func NewBusinessRepository(db *sql.DB) BusinessRepository {
	return &businessRepository{db: db}
}

// FindConfiguration retrieves the tax rate and enabled payment methods for a
// business using parameterized queries
func (r *businessRepository) FindConfiguration(ctx context.Context, businessID uuid.UUID) (*domain.BusinessConfiguration, error) {
	query := `
		SELECT business_id, name, tax_rate_percent, enabled_payment_methods, created_at, updated_at
		FROM businesses
		WHERE business_id = $1
	`

	cfg := &domain.BusinessConfiguration{}
	var methodsJSON []byte
	err := r.db.QueryRowContext(ctx, query, businessID).Scan(
		&cfg.BusinessID,
		&cfg.Name,
		&cfg.TaxRatePercent,
		&methodsJSON,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to find business configuration: %w", err)
	}

	if err := json.Unmarshal(methodsJSON, &cfg.EnabledPaymentMethods); err != nil {
		return nil, fmt.Errorf("failed to decode enabled payment methods: %w", err)
	}

	return cfg, nil
}
