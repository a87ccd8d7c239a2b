package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"petcare-pos/internal/domain"
	"petcare-pos/internal/pos"
	"petcare-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// moneyScale is the number of decimal places persisted and displayed.
// Internal cart arithmetic keeps full precision; rounding happens here, at
// the commit boundary, using half-up rounding.
const moneyScale = 2

var (
	ErrEmptyCart            = errors.New("cart has no line items")
	ErrInvalidPaymentMethod = errors.New("payment method not enabled for this business")
	ErrPersistence          = errors.New("failed to persist transaction")
)

// CommitRequest carries everything the committer needs to turn a finalized
// cart into one persisted transaction.
type CommitRequest struct {
	BusinessID     uuid.UUID
	CustomerID     *uuid.UUID
	Cart           *pos.Cart
	PaymentMethod  string
	IdempotencyKey string
}

// CheckoutService converts finalized carts into immutable transactions and
// reads committed receipts back for display.
type CheckoutService interface {
	Commit(ctx context.Context, req CommitRequest) (*domain.Transaction, error)
	GetReceipt(ctx context.Context, businessID, transactionID uuid.UUID) (*domain.Transaction, error)
	ListReceipts(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*domain.Transaction, error)
}

type checkoutService struct {
	transactionRepo repository.TransactionRepository
	businessRepo    repository.BusinessRepository
	currency        string
}

// NewCheckoutService creates a new instance of CheckoutService. Committed
// transactions are stamped with the given ISO 4217 currency code.
func NewCheckoutService(
	transactionRepo repository.TransactionRepository,
	businessRepo repository.BusinessRepository,
	currency string,
) CheckoutService {
	return &checkoutService{
		transactionRepo: transactionRepo,
		businessRepo:    businessRepo,
		currency:        currency,
	}
}

// Commit snapshots the cart, recomputes totals one final time, and persists
// exactly one transaction row. The passed-in cart is never mutated; the
// caller discards it after a successful commit. A repeated idempotency key
// returns the originally committed transaction with no second insert. On
// persistence failure nothing is written and the cart is left for retry.
func (s *checkoutService) Commit(ctx context.Context, req CommitRequest) (*domain.Transaction, error) {
	if req.Cart == nil || req.Cart.Empty() {
		return nil, ErrEmptyCart
	}

	cfg, err := s.businessRepo.FindConfiguration(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if !cfg.AcceptsPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	if req.IdempotencyKey != "" {
		existing, err := s.transactionRepo.FindByIdempotencyKey(ctx, req.BusinessID, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	// Never trust a previously cached total; recompute from current state.
	// The tax rate comes from the business configuration, never from the
	// terminal's request. Rounding is stepwise so the persisted row stays
	// additive: total == subtotal - discount + tax after every field is at
	// 2 places.
	taxRate := cfg.TaxRatePercent
	totals := req.Cart.Totals()
	subtotal := totals.Subtotal.Round(moneyScale)
	discountAmount := totals.DiscountAmount.Round(moneyScale)
	discounted := subtotal.Sub(discountAmount)
	taxAmount := discounted.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(moneyScale)
	total := discounted.Add(taxAmount)

	lines := req.Cart.Lines()
	snapshot := make([]domain.TransactionLine, len(lines))
	for i, line := range lines {
		snapshot[i] = domain.TransactionLine{
			ItemID:          line.ItemID,
			Name:            line.Name,
			UnitPrice:       line.UnitPrice,
			Quantity:        line.Quantity,
			Kind:            line.Kind,
			LinkedSubjectID: line.LinkedSubjectID,
		}
	}

	var discountSnapshot *domain.DiscountSnapshot
	if d := req.Cart.Discount(); d != nil {
		discountSnapshot = &domain.DiscountSnapshot{
			Name:  d.Name,
			Kind:  d.Kind,
			Value: d.Value,
		}
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:             uuid.New(),
		TransactionID:  newTransactionReference(now),
		BusinessID:     req.BusinessID,
		CustomerID:     req.CustomerID,
		IdempotencyKey: req.IdempotencyKey,
		Lines:          snapshot,
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Discount:       discountSnapshot,
		TaxRatePercent: taxRate,
		TaxAmount:      taxAmount,
		TotalAmount:    total,
		Currency:       s.currency,
		PaymentMethod:  req.PaymentMethod,
		Status:         domain.TransactionCompleted,
		CreatedAt:      now,
	}

	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrDuplicateCommit) && req.IdempotencyKey != "" {
			// Lost the race against a concurrent submit of the same key;
			// the first row wins.
			existing, findErr := s.transactionRepo.FindByIdempotencyKey(ctx, req.BusinessID, req.IdempotencyKey)
			if findErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return tx, nil
}

// GetReceipt reads a committed transaction back, scoped to the owning
// business
func (s *checkoutService) GetReceipt(ctx context.Context, businessID, transactionID uuid.UUID) (*domain.Transaction, error) {
	tx, err := s.transactionRepo.FindByID(ctx, businessID, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return tx, nil
}

// ListReceipts retrieves recent transactions for end-of-day review
func (s *checkoutService) ListReceipts(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	transactions, err := s.transactionRepo.List(ctx, businessID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	return transactions, nil
}

// newTransactionReference builds the human-readable receipt reference,
// time-derived with a short random suffix to stay unique within a second.
func newTransactionReference(at time.Time) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("TXN-%s", at.Format("20060102-150405.000"))
	}
	return fmt.Sprintf("TXN-%s-%s", at.Format("20060102-150405"), hex.EncodeToString(buf))
}
