package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemKind distinguishes retail products from billable services
type ItemKind string

const (
	ItemKindProduct ItemKind = "product"
	ItemKindService ItemKind = "service"
)

// Valid reports whether k is one of the closed set of item kinds.
func (k ItemKind) Valid() bool {
	return k == ItemKindProduct || k == ItemKindService
}

// CatalogItem represents a sellable product or service in a business's catalog
type CatalogItem struct {
	ID         string          `json:"id" db:"id"`
	BusinessID uuid.UUID       `json:"business_id" db:"business_id"`
	Name       string          `json:"name" db:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	Kind       ItemKind        `json:"kind" db:"kind"`
	Category   string          `json:"category" db:"category"`
	Active     bool            `json:"active" db:"active"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}
