package pos

import (
	"errors"

	"petcare-pos/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidDiscount = errors.New("invalid discount")
)

var oneHundred = decimal.NewFromInt(100)

// Cart holds the mutable state of one in-progress sale: insertion-ordered
// lines keyed by (item id, kind), an optional single discount, and the tax
// rate fixed at construction from the business configuration. A cart is
// owned by exactly one checkout session and is never mutated concurrently.
type Cart struct {
	lines          []domain.CartLine
	discount       *domain.Discount
	taxRatePercent decimal.Decimal
}

// NewCart creates an empty cart for a new sale. A negative tax rate is
// clamped to zero; the rate is not user-editable within the cart.
func NewCart(taxRatePercent decimal.Decimal) *Cart {
	if taxRatePercent.IsNegative() {
		taxRatePercent = decimal.Zero
	}
	return &Cart{taxRatePercent: taxRatePercent}
}

// AddItem merges quantity into an existing line for the same (item id, kind)
// pair or appends a new line capturing the item's name and unit price at
// this instant.
func (c *Cart) AddItem(item domain.CatalogItem, quantity int, linkedSubjectID string) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	for i := range c.lines {
		if c.lines[i].ItemID == item.ID && c.lines[i].Kind == item.Kind {
			c.lines[i].Quantity += quantity
			return nil
		}
	}

	c.lines = append(c.lines, domain.CartLine{
		ItemID:          item.ID,
		Name:            item.Name,
		UnitPrice:       item.UnitPrice,
		Kind:            item.Kind,
		Quantity:        quantity,
		LinkedSubjectID: linkedSubjectID,
	})
	return nil
}

// SetQuantity sets the quantity of the matching line. A quantity of zero or
// below removes the line entirely; a line is never retained at zero.
func (c *Cart) SetQuantity(itemID string, kind domain.ItemKind, quantity int) error {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID && c.lines[i].Kind == kind {
			if quantity <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity = quantity
			}
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveItem removes the matching line. Removing an absent line is a no-op,
// not an error.
func (c *Cart) RemoveItem(itemID string, kind domain.ItemKind) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID && c.lines[i].Kind == kind {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// ApplyDiscount replaces any existing discount; nil clears it. A discount on
// an empty cart is allowed and simply yields a zero discount amount.
func (c *Cart) ApplyDiscount(d *domain.Discount) error {
	if d == nil {
		c.discount = nil
		return nil
	}
	if !d.Kind.Valid() || d.Value.IsNegative() {
		return ErrInvalidDiscount
	}
	if d.Kind == domain.DiscountPercentage && d.Value.GreaterThan(oneHundred) {
		return ErrInvalidDiscount
	}
	copied := *d
	c.discount = &copied
	return nil
}

// Lines returns a deep copy of the current lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Discount returns a copy of the active discount, or nil.
func (c *Cart) Discount() *domain.Discount {
	if c.discount == nil {
		return nil
	}
	copied := *c.discount
	return &copied
}

// TaxRatePercent returns the tax rate fixed at construction.
func (c *Cart) TaxRatePercent() decimal.Decimal {
	return c.taxRatePercent
}

// Empty reports whether the cart holds no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Totals computes the derived monetary view of the cart. It is a pure
// function of current state:
//
//	subtotal           = sum(unitPrice * quantity)
//	discountAmount     = subtotal * value/100          (percentage)
//	                     min(value, subtotal)          (fixedAmount)
//	discountedSubtotal = subtotal - discountAmount
//	taxAmount          = discountedSubtotal * taxRate/100
//	total              = discountedSubtotal + taxAmount
//
// A fixed-amount discount is capped at the subtotal so the discounted
// subtotal can never go negative.
func (c *Cart) Totals() domain.CartTotals {
	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	discountAmount := decimal.Zero
	if c.discount != nil {
		switch c.discount.Kind {
		case domain.DiscountPercentage:
			discountAmount = subtotal.Mul(c.discount.Value).Div(oneHundred)
		case domain.DiscountFixed:
			discountAmount = decimal.Min(c.discount.Value, subtotal)
		}
	}

	discounted := subtotal.Sub(discountAmount)
	taxAmount := discounted.Mul(c.taxRatePercent).Div(oneHundred)

	return domain.CartTotals{
		Subtotal:           subtotal,
		DiscountAmount:     discountAmount,
		DiscountedSubtotal: discounted,
		TaxAmount:          taxAmount,
		Total:              discounted.Add(taxAmount),
	}
}
