package pos

import (
	"testing"

	"petcare-pos/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func groomingItem(t *testing.T) domain.CatalogItem {
	return domain.CatalogItem{
		ID:        "s1",
		Name:      "Basic Grooming",
		UnitPrice: mustDecimal(t, "35.00"),
		Kind:      domain.ItemKindService,
		Category:  "Grooming",
	}
}

func dogFoodItem(t *testing.T) domain.CatalogItem {
	return domain.CatalogItem{
		ID:        "p1",
		Name:      "Dog Food",
		UnitPrice: mustDecimal(t, "45.99"),
		Kind:      domain.ItemKindProduct,
		Category:  "Food",
	}
}

// buildExampleCart assembles the cart shared by the worked examples:
// one grooming service at 35.00 and two bags of dog food at 45.99.
func buildExampleCart(t *testing.T) *Cart {
	cart := NewCart(mustDecimal(t, "8.5"))
	if err := cart.AddItem(groomingItem(t), 1, "pet-42"); err != nil {
		t.Fatalf("add grooming: %v", err)
	}
	if err := cart.AddItem(dogFoodItem(t), 2, ""); err != nil {
		t.Fatalf("add dog food: %v", err)
	}
	return cart
}

func TestTotals_NoDiscount(t *testing.T) {
	cart := buildExampleCart(t)
	totals := cart.Totals()

	if got, want := totals.Subtotal, mustDecimal(t, "126.98"); !got.Equal(want) {
		t.Errorf("subtotal = %s, want %s", got, want)
	}
	if !totals.DiscountAmount.IsZero() {
		t.Errorf("discountAmount = %s, want 0", totals.DiscountAmount)
	}
	if got, want := totals.TaxAmount.Round(2), mustDecimal(t, "10.79"); !got.Equal(want) {
		t.Errorf("taxAmount = %s, want %s", got, want)
	}
	if got, want := totals.Total.Round(2), mustDecimal(t, "137.77"); !got.Equal(want) {
		t.Errorf("total = %s, want %s", got, want)
	}
}

func TestTotals_FixedDiscountExceedingSubtotalIsCapped(t *testing.T) {
	cart := buildExampleCart(t)
	err := cart.ApplyDiscount(&domain.Discount{
		Name:  "Grand Opening",
		Kind:  domain.DiscountFixed,
		Value: mustDecimal(t, "500"),
	})
	if err != nil {
		t.Fatalf("apply discount: %v", err)
	}

	totals := cart.Totals()

	if got, want := totals.DiscountAmount, mustDecimal(t, "126.98"); !got.Equal(want) {
		t.Errorf("discountAmount = %s, want capped %s", got, want)
	}
	if !totals.DiscountedSubtotal.IsZero() {
		t.Errorf("discountedSubtotal = %s, want 0", totals.DiscountedSubtotal)
	}
	if !totals.TaxAmount.IsZero() {
		t.Errorf("taxAmount = %s, want 0", totals.TaxAmount)
	}
	if !totals.Total.IsZero() {
		t.Errorf("total = %s, want 0", totals.Total)
	}
}

func TestTotals_PercentageDiscount(t *testing.T) {
	cart := buildExampleCart(t)
	err := cart.ApplyDiscount(&domain.Discount{
		Name:  "Loyalty 10%",
		Kind:  domain.DiscountPercentage,
		Value: mustDecimal(t, "10"),
	})
	if err != nil {
		t.Fatalf("apply discount: %v", err)
	}

	totals := cart.Totals()

	if got, want := totals.DiscountAmount.Round(2), mustDecimal(t, "12.70"); !got.Equal(want) {
		t.Errorf("discountAmount = %s, want %s", got, want)
	}
	if got, want := totals.DiscountedSubtotal.Round(2), mustDecimal(t, "114.28"); !got.Equal(want) {
		t.Errorf("discountedSubtotal = %s, want %s", got, want)
	}
	if got, want := totals.TaxAmount.Round(2), mustDecimal(t, "9.71"); !got.Equal(want) {
		t.Errorf("taxAmount = %s, want %s", got, want)
	}
}

func TestAddItem_MergesSameItemAndKind(t *testing.T) {
	cart := NewCart(decimal.Zero)
	item := dogFoodItem(t)

	if err := cart.AddItem(item, 2, ""); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := cart.AddItem(item, 3, ""); err != nil {
		t.Fatalf("second add: %v", err)
	}

	lines := cart.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", lines[0].Quantity)
	}
}

func TestAddItem_SameIDDifferentKindStaysSeparate(t *testing.T) {
	cart := NewCart(decimal.Zero)

	product := domain.CatalogItem{ID: "x1", Name: "Nail Trim Kit", UnitPrice: mustDecimal(t, "12.50"), Kind: domain.ItemKindProduct}
	service := domain.CatalogItem{ID: "x1", Name: "Nail Trim", UnitPrice: mustDecimal(t, "15.00"), Kind: domain.ItemKindService}

	if err := cart.AddItem(product, 1, ""); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if err := cart.AddItem(service, 1, "pet-7"); err != nil {
		t.Fatalf("add service: %v", err)
	}

	if got := len(cart.Lines()); got != 2 {
		t.Errorf("lines = %d, want 2 distinct (itemId, kind) pairs", got)
	}
}

func TestAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	cart := NewCart(decimal.Zero)
	for _, qty := range []int{0, -1, -100} {
		if err := cart.AddItem(dogFoodItem(t), qty, ""); err != ErrInvalidQuantity {
			t.Errorf("AddItem(qty=%d) = %v, want ErrInvalidQuantity", qty, err)
		}
	}
	if !cart.Empty() {
		t.Error("cart should remain empty after rejected adds")
	}
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	cart := NewCart(decimal.Zero)
	if err := cart.AddItem(dogFoodItem(t), 2, ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := cart.SetQuantity("p1", domain.ItemKindProduct, 0); err != nil {
		t.Fatalf("SetQuantity(0): %v", err)
	}
	if !cart.Empty() {
		t.Error("line with quantity 0 must be removed, not retained")
	}

	// Removing the now-absent line is a no-op, not an error
	cart.RemoveItem("p1", domain.ItemKindProduct)

	// But SetQuantity on a missing line is NotFound
	if err := cart.SetQuantity("p1", domain.ItemKindProduct, 1); err != ErrLineNotFound {
		t.Errorf("SetQuantity on missing line = %v, want ErrLineNotFound", err)
	}
}

func TestApplyDiscount_ReplacesAndClears(t *testing.T) {
	cart := buildExampleCart(t)

	first := &domain.Discount{Name: "First", Kind: domain.DiscountPercentage, Value: mustDecimal(t, "5")}
	second := &domain.Discount{Name: "Second", Kind: domain.DiscountFixed, Value: mustDecimal(t, "20")}

	if err := cart.ApplyDiscount(first); err != nil {
		t.Fatalf("apply first: %v", err)
	}
	if err := cart.ApplyDiscount(second); err != nil {
		t.Fatalf("apply second: %v", err)
	}
	if got := cart.Discount(); got == nil || got.Name != "Second" {
		t.Errorf("discount = %+v, want the replacing discount", got)
	}

	if err := cart.ApplyDiscount(nil); err != nil {
		t.Fatalf("clear discount: %v", err)
	}
	if cart.Discount() != nil {
		t.Error("nil must clear the discount")
	}
}

func TestApplyDiscount_RejectsInvalid(t *testing.T) {
	cart := NewCart(decimal.Zero)

	cases := []*domain.Discount{
		{Name: "negative", Kind: domain.DiscountFixed, Value: mustDecimal(t, "-1")},
		{Name: "over 100", Kind: domain.DiscountPercentage, Value: mustDecimal(t, "101")},
		{Name: "bad kind", Kind: domain.DiscountKind("bogus"), Value: mustDecimal(t, "10")},
	}

	for _, d := range cases {
		if err := cart.ApplyDiscount(d); err != ErrInvalidDiscount {
			t.Errorf("ApplyDiscount(%s) = %v, want ErrInvalidDiscount", d.Name, err)
		}
	}
}

func TestApplyDiscount_EmptyCartYieldsZeroDiscount(t *testing.T) {
	cart := NewCart(mustDecimal(t, "8.5"))
	err := cart.ApplyDiscount(&domain.Discount{Name: "Promo", Kind: domain.DiscountFixed, Value: mustDecimal(t, "10")})
	if err != nil {
		t.Fatalf("apply on empty cart: %v", err)
	}

	totals := cart.Totals()
	if !totals.DiscountAmount.IsZero() || !totals.Total.IsZero() {
		t.Errorf("empty cart totals = %+v, want all zero", totals)
	}
}

func TestProperty_AddItemQuantitiesAreAdditive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("repeated adds of the same (itemId, kind) merge into one line whose quantity is the sum", prop.ForAll(
		func(quantities []int) bool {
			cart := NewCart(decimal.Zero)
			item := domain.CatalogItem{
				ID:        "item-1",
				Name:      "Chew Toy",
				UnitPrice: decimal.NewFromFloat(9.95),
				Kind:      domain.ItemKindProduct,
			}

			sum := 0
			for _, q := range quantities {
				if err := cart.AddItem(item, q, ""); err != nil {
					t.Logf("FAIL: AddItem(%d): %v", q, err)
					return false
				}
				sum += q
			}

			lines := cart.Lines()
			if len(quantities) == 0 {
				return len(lines) == 0
			}
			if len(lines) != 1 {
				t.Logf("FAIL: %d lines for one (itemId, kind) pair", len(lines))
				return false
			}
			return lines[0].Quantity == sum
		},
		gen.SliceOf(gen.IntRange(1, 50)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SubtotalIsOrderIndependentSum(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("subtotal equals the sum of unitPrice*quantity regardless of insertion order", prop.ForAll(
		func(pricesCents []int, quantities []int) bool {
			n := len(pricesCents)
			if len(quantities) < n {
				n = len(quantities)
			}

			forward := NewCart(decimal.Zero)
			backward := NewCart(decimal.Zero)

			expected := decimal.Zero
			for i := 0; i < n; i++ {
				price := decimal.NewFromInt(int64(pricesCents[i])).Div(decimal.NewFromInt(100))
				expected = expected.Add(price.Mul(decimal.NewFromInt(int64(quantities[i]))))
			}

			for i := 0; i < n; i++ {
				item := domain.CatalogItem{
					ID:        "item-" + string(rune('a'+i)),
					Name:      "Item",
					UnitPrice: decimal.NewFromInt(int64(pricesCents[i])).Div(decimal.NewFromInt(100)),
					Kind:      domain.ItemKindProduct,
				}
				if err := forward.AddItem(item, quantities[i], ""); err != nil {
					return false
				}
			}
			for i := n - 1; i >= 0; i-- {
				item := domain.CatalogItem{
					ID:        "item-" + string(rune('a'+i)),
					Name:      "Item",
					UnitPrice: decimal.NewFromInt(int64(pricesCents[i])).Div(decimal.NewFromInt(100)),
					Kind:      domain.ItemKindProduct,
				}
				if err := backward.AddItem(item, quantities[i], ""); err != nil {
					return false
				}
			}

			return forward.Totals().Subtotal.Equal(expected) &&
				backward.Totals().Subtotal.Equal(expected)
		},
		gen.SliceOfN(8, gen.IntRange(1, 99999)),
		gen.SliceOfN(8, gen.IntRange(1, 20)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_FixedDiscountNeverExceedsSubtotal(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("fixedAmount discount amount is always <= subtotal", prop.ForAll(
		func(priceCents int, quantity int, discountCents int) bool {
			cart := NewCart(decimal.NewFromFloat(8.5))
			item := domain.CatalogItem{
				ID:        "item-1",
				Name:      "Item",
				UnitPrice: decimal.NewFromInt(int64(priceCents)).Div(decimal.NewFromInt(100)),
				Kind:      domain.ItemKindProduct,
			}
			if err := cart.AddItem(item, quantity, ""); err != nil {
				return false
			}

			err := cart.ApplyDiscount(&domain.Discount{
				Name:  "Fixed",
				Kind:  domain.DiscountFixed,
				Value: decimal.NewFromInt(int64(discountCents)).Div(decimal.NewFromInt(100)),
			})
			if err != nil {
				return false
			}

			totals := cart.Totals()
			return totals.DiscountAmount.LessThanOrEqual(totals.Subtotal) &&
				!totals.DiscountedSubtotal.IsNegative()
		},
		gen.IntRange(0, 50000),
		gen.IntRange(1, 20),
		gen.IntRange(0, 10000000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_PercentageDiscountStaysWithinBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("percentage discounts in [0,100] yield 0 <= discountAmount <= subtotal", prop.ForAll(
		func(priceCents int, quantity int, percent int) bool {
			cart := NewCart(decimal.NewFromFloat(8.5))
			item := domain.CatalogItem{
				ID:        "item-1",
				Name:      "Item",
				UnitPrice: decimal.NewFromInt(int64(priceCents)).Div(decimal.NewFromInt(100)),
				Kind:      domain.ItemKindService,
			}
			if err := cart.AddItem(item, quantity, "pet-1"); err != nil {
				return false
			}

			err := cart.ApplyDiscount(&domain.Discount{
				Name:  "Percent",
				Kind:  domain.DiscountPercentage,
				Value: decimal.NewFromInt(int64(percent)),
			})
			if err != nil {
				return false
			}

			totals := cart.Totals()
			return !totals.DiscountAmount.IsNegative() &&
				totals.DiscountAmount.LessThanOrEqual(totals.Subtotal)
		},
		gen.IntRange(0, 50000),
		gen.IntRange(1, 20),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_TotalsAreNeverNegative(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("discountedSubtotal >= 0, taxAmount >= 0, total >= discountedSubtotal", prop.ForAll(
		func(priceCents int, quantity int, discountCents int, taxPercent int, useFixed bool) bool {
			cart := NewCart(decimal.NewFromInt(int64(taxPercent)))
			item := domain.CatalogItem{
				ID:        "item-1",
				Name:      "Item",
				UnitPrice: decimal.NewFromInt(int64(priceCents)).Div(decimal.NewFromInt(100)),
				Kind:      domain.ItemKindProduct,
			}
			if err := cart.AddItem(item, quantity, ""); err != nil {
				return false
			}

			var discount *domain.Discount
			if useFixed {
				discount = &domain.Discount{
					Name:  "Fixed",
					Kind:  domain.DiscountFixed,
					Value: decimal.NewFromInt(int64(discountCents)).Div(decimal.NewFromInt(100)),
				}
			} else {
				percent := discountCents % 101
				discount = &domain.Discount{
					Name:  "Percent",
					Kind:  domain.DiscountPercentage,
					Value: decimal.NewFromInt(int64(percent)),
				}
			}
			if err := cart.ApplyDiscount(discount); err != nil {
				return false
			}

			totals := cart.Totals()
			return !totals.DiscountedSubtotal.IsNegative() &&
				!totals.TaxAmount.IsNegative() &&
				totals.Total.GreaterThanOrEqual(totals.DiscountedSubtotal)
		},
		gen.IntRange(0, 100000),
		gen.IntRange(1, 50),
		gen.IntRange(0, 1000000),
		gen.IntRange(0, 30),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SetQuantityZeroThenRemoveIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("setting quantity to zero removes the line and a later remove is a silent no-op", prop.ForAll(
		func(quantity int) bool {
			cart := NewCart(decimal.Zero)
			item := domain.CatalogItem{
				ID:        "item-1",
				Name:      "Item",
				UnitPrice: decimal.NewFromFloat(5.25),
				Kind:      domain.ItemKindProduct,
			}
			if err := cart.AddItem(item, quantity, ""); err != nil {
				return false
			}

			if err := cart.SetQuantity("item-1", domain.ItemKindProduct, 0); err != nil {
				t.Logf("FAIL: SetQuantity(0): %v", err)
				return false
			}
			if !cart.Empty() {
				t.Logf("FAIL: line retained after SetQuantity(0)")
				return false
			}

			// Must not panic or error
			cart.RemoveItem("item-1", domain.ItemKindProduct)
			return cart.Empty()
		},
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
