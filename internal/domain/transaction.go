package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the final state of a committed sale. Payment capture
// is synchronous in this design, so no pending state is modeled.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// TransactionLine is the immutable snapshot of one cart line taken at commit
// time, independent of any later catalog or cart change.
type TransactionLine struct {
	ItemID          string          `json:"id"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	Kind            ItemKind        `json:"kind"`
	LinkedSubjectID string          `json:"linked_subject_id,omitempty"`
}

// DiscountSnapshot preserves the applied discount on a committed transaction.
type DiscountSnapshot struct {
	Name  string          `json:"name"`
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Transaction is the persistent, immutable record of a completed sale.
// Corrections require a new record, never an edit.
type Transaction struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	TransactionID  string            `json:"transaction_id" db:"transaction_id"`
	BusinessID     uuid.UUID         `json:"business_id" db:"business_id"`
	CustomerID     *uuid.UUID        `json:"customer_id,omitempty" db:"customer_id"`
	IdempotencyKey string            `json:"idempotency_key,omitempty" db:"idempotency_key"`
	Lines          []TransactionLine `json:"items" db:"items"`
	Subtotal       decimal.Decimal   `json:"subtotal" db:"subtotal"`
	DiscountAmount decimal.Decimal   `json:"discount_amount" db:"discount_amount"`
	Discount       *DiscountSnapshot `json:"discount_applied,omitempty" db:"discount_applied"`
	TaxRatePercent decimal.Decimal   `json:"tax_rate" db:"tax_rate"`
	TaxAmount      decimal.Decimal   `json:"tax_amount" db:"tax_amount"`
	TotalAmount    decimal.Decimal   `json:"total_amount" db:"total_amount"`
	Currency       string            `json:"currency" db:"currency"`
	PaymentMethod  string            `json:"payment_method" db:"payment_method"`
	Status         TransactionStatus `json:"status" db:"status"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
}
