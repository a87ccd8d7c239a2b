package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BusinessConfiguration is the per-tenant POS configuration read at checkout
// time: the tax rate applied to discounted subtotals and the payment methods
// the business accepts. It is injected explicitly rather than read from
// ambient state.
type BusinessConfiguration struct {
	BusinessID            uuid.UUID       `json:"business_id" db:"business_id"`
	Name                  string          `json:"name" db:"name"`
	TaxRatePercent        decimal.Decimal `json:"tax_rate_percent" db:"tax_rate_percent"`
	EnabledPaymentMethods []string        `json:"enabled_payment_methods" db:"enabled_payment_methods"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// AcceptsPaymentMethod reports whether method is enabled for the business.
func (c BusinessConfiguration) AcceptsPaymentMethod(method string) bool {
	for _, m := range c.EnabledPaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
