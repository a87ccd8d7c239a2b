package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"petcare-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCatalogItemNotFound = errors.New("catalog item not found")
)

// CatalogRepository exposes the sellable items of a business. The cart
// engine depends only on this shape, not on the storage behind it.
type CatalogRepository interface {
	ListItems(ctx context.Context, businessID uuid.UUID, kind *domain.ItemKind) ([]*domain.CatalogItem, error)
	FindByID(ctx context.Context, businessID uuid.UUID, itemID string) (*domain.CatalogItem, error)
	Search(ctx context.Context, businessID uuid.UUID, query string, page, pageSize int) ([]*domain.CatalogItem, int, error)
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

const catalogColumns = `id, business_id, name, unit_price, kind, category, active, created_at, updated_at`

func scanCatalogItem(row interface{ Scan(...any) error }) (*domain.CatalogItem, error) {
	item := &domain.CatalogItem{}
	err := row.Scan(
		&item.ID,
		&item.BusinessID,
		&item.Name,
		&item.UnitPrice,
		&item.Kind,
		&item.Category,
		&item.Active,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems retrieves the active catalog of a business, optionally filtered
// by kind. A business with no catalog yields an empty list, never an error.
func (r *catalogRepository) ListItems(ctx context.Context, businessID uuid.UUID, kind *domain.ItemKind) ([]*domain.CatalogItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM catalog_items
		WHERE business_id = $1 AND active = TRUE
	`, catalogColumns)

	args := []interface{}{businessID}
	if kind != nil {
		query += " AND kind = $2"
		args = append(args, *kind)
	}
	query += " ORDER BY category ASC, name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog items: %w", err)
	}

	return items, nil
}

// FindByID retrieves one catalog item scoped to the owning business
func (r *catalogRepository) FindByID(ctx context.Context, businessID uuid.UUID, itemID string) (*domain.CatalogItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM catalog_items
		WHERE business_id = $1 AND id = $2
	`, catalogColumns)

	item, err := scanCatalogItem(r.db.QueryRowContext(ctx, query, businessID, itemID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCatalogItemNotFound
		}
		return nil, fmt.Errorf("failed to find catalog item by ID: %w", err)
	}

	return item, nil
}

// Search searches active items by name or category with pagination. An empty
// query falls back to the full active catalog.
func (r *catalogRepository) Search(ctx context.Context, businessID uuid.UUID, query string, page, pageSize int) ([]*domain.CatalogItem, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	if strings.TrimSpace(query) == "" {
		items, err := r.ListItems(ctx, businessID, nil)
		if err != nil {
			return nil, 0, err
		}
		total := len(items)
		start := (page - 1) * pageSize
		if start >= total {
			return []*domain.CatalogItem{}, total, nil
		}
		end := start + pageSize
		if end > total {
			end = total
		}
		return items[start:end], total, nil
	}

	searchPattern := "%" + query + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM catalog_items
		WHERE business_id = $1 AND active = TRUE
		  AND (name ILIKE $2 OR category ILIKE $2)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, businessID, searchPattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	offset := (page - 1) * pageSize

	searchQuery := fmt.Sprintf(`
		SELECT %s
		FROM catalog_items
		WHERE business_id = $1 AND active = TRUE
		  AND (name ILIKE $2 OR category ILIKE $2)
		ORDER BY name ASC
		LIMIT $3 OFFSET $4
	`, catalogColumns)

	rows, err := r.db.QueryContext(ctx, searchQuery, businessID, searchPattern, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search catalog items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating search results: %w", err)
	}

	return items, total, nil
}
