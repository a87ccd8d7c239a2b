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
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateCommit     = errors.New("transaction with this idempotency key already exists")
)

// TransactionRepository persists committed sales. Each Create is a single
// atomic row insert; rows are never updated afterwards.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*domain.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, businessID uuid.UUID, key string) (*domain.Transaction, error)
	List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*domain.Transaction, error)
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, transaction_id, business_id, customer_id, idempotency_key,
	subtotal, discount_amount, discount_applied, tax_rate, tax_amount, total_amount,
	currency, payment_method, status, items, created_at`

// Create inserts the transaction as one atomic row. A duplicate idempotency
// key within the same business trips the partial unique index and surfaces
// as ErrDuplicateCommit so the caller can fetch the original row.
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	itemsJSON, err := json.Marshal(tx.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}

	var discountJSON []byte
	if tx.Discount != nil {
		discountJSON, err = json.Marshal(tx.Discount)
		if err != nil {
			return fmt.Errorf("failed to encode discount snapshot: %w", err)
		}
	}

	var idempotencyKey sql.NullString
	if tx.IdempotencyKey != "" {
		idempotencyKey = sql.NullString{String: tx.IdempotencyKey, Valid: true}
	}

	query := `
		INSERT INTO transactions (id, transaction_id, business_id, customer_id, idempotency_key,
			subtotal, discount_amount, discount_applied, tax_rate, tax_amount, total_amount,
			currency, payment_method, status, items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		tx.ID,
		tx.TransactionID,
		tx.BusinessID,
		tx.CustomerID,
		idempotencyKey,
		tx.Subtotal,
		tx.DiscountAmount,
		discountJSON,
		tx.TaxRatePercent,
		tx.TaxAmount,
		tx.TotalAmount,
		tx.Currency,
		tx.PaymentMethod,
		tx.Status,
		itemsJSON,
		tx.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCommit
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction scoped to the owning business. A row
// owned by another business is reported as not found, never as forbidden.
func (r *transactionRepository) FindByID(ctx context.Context, businessID, id uuid.UUID) (*domain.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE business_id = $1 AND id = $2
	`, transactionColumns)

	tx, err := r.scanTransaction(r.db.QueryRowContext(ctx, query, businessID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID: %w", err)
	}

	return tx, nil
}

// FindByIdempotencyKey retrieves the transaction previously committed under
// the given caller-supplied key, if any.
func (r *transactionRepository) FindByIdempotencyKey(ctx context.Context, businessID uuid.UUID, key string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE business_id = $1 AND idempotency_key = $2
	`, transactionColumns)

	tx, err := r.scanTransaction(r.db.QueryRowContext(ctx, query, businessID, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by idempotency key: %w", err)
	}

	return tx, nil
}

// List retrieves recent transactions for a business, newest first
func (r *transactionRepository) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, transactionColumns)

	rows, err := r.db.QueryContext(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		tx, err := r.scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func (r *transactionRepository) scanTransaction(row interface{ Scan(...any) error }) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	var (
		idempotencyKey sql.NullString
		discountJSON   []byte
		itemsJSON      []byte
	)

	err := row.Scan(
		&tx.ID,
		&tx.TransactionID,
		&tx.BusinessID,
		&tx.CustomerID,
		&idempotencyKey,
		&tx.Subtotal,
		&tx.DiscountAmount,
		&discountJSON,
		&tx.TaxRatePercent,
		&tx.TaxAmount,
		&tx.TotalAmount,
		&tx.Currency,
		&tx.PaymentMethod,
		&tx.Status,
		&itemsJSON,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.IdempotencyKey = idempotencyKey.String

	if len(discountJSON) > 0 {
		snapshot := &domain.DiscountSnapshot{}
		if err := json.Unmarshal(discountJSON, snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode discount snapshot: %w", err)
		}
		tx.Discount = snapshot
	}

	if err := json.Unmarshal(itemsJSON, &tx.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode line items: %w", err)
	}

	return tx, nil
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	type sqlStater interface {
		SQLState() string
	}
	var state sqlStater
	if errors.As(err, &state) {
		return state.SQLState() == "23505"
	}
	return false
}
