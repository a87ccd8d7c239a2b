package domain

import "github.com/shopspring/decimal"

// DiscountKind is the closed set of supported discount strategies
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixedAmount"
)

// Valid reports whether k is a supported discount kind.
func (k DiscountKind) Valid() bool {
	return k == DiscountPercentage || k == DiscountFixed
}

// Discount is a single whole-cart price modifier. At most one discount is
// active on a cart at any time; applying a new one replaces the previous.
type Discount struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// CartLine is one catalog item plus quantity inside an in-progress sale.
// Name and unit price are captured at add time so later catalog edits do not
// retroactively alter an open cart.
type CartLine struct {
	ItemID          string          `json:"item_id"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Kind            ItemKind        `json:"kind"`
	Quantity        int             `json:"quantity"`
	LinkedSubjectID string          `json:"linked_subject_id,omitempty"`
}

// LineTotal returns unit price times quantity for this line.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotals is the derived monetary view of a cart. Values carry full
// precision; rounding to two places happens only at the persistence and
// presentation boundary.
type CartTotals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	Total              decimal.Decimal `json:"total"`
}
