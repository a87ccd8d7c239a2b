package service

import (
	"context"
	"fmt"

	"petcare-pos/internal/domain"
	"petcare-pos/internal/repository"

	"github.com/google/uuid"
)

// CatalogService exposes the sellable items of a business, partitioned by
// kind, for the POS item picker.
type CatalogService interface {
	ListItems(ctx context.Context, businessID uuid.UUID, kind *domain.ItemKind) ([]*domain.CatalogItem, error)
	Search(ctx context.Context, businessID uuid.UUID, query string, page, pageSize int) ([]*domain.CatalogItem, int, error)
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogService{catalogRepo: catalogRepo}
}

// ListItems retrieves the active catalog. A business with no items yields an
// empty list; the cart engine treats that as "no items available".
func (s *catalogService) ListItems(ctx context.Context, businessID uuid.UUID, kind *domain.ItemKind) ([]*domain.CatalogItem, error) {
	items, err := s.catalogRepo.ListItems(ctx, businessID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}
	return items, nil
}

// Search retrieves active items matching the query with pagination
func (s *catalogService) Search(ctx context.Context, businessID uuid.UUID, query string, page, pageSize int) ([]*domain.CatalogItem, int, error) {
	items, total, err := s.catalogRepo.Search(ctx, businessID, query, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search catalog: %w", err)
	}
	return items, total, nil
}
