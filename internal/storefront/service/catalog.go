package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/google/uuid"
)

// CatalogService reads categories and products. Authorization happens before
// any of these methods run.
type CatalogService struct {
	Store store.Store
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.Store.Catalog().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// ListProducts returns every product, or only those of category when it is
// non-empty. A category that is not a UUID is ErrInvalidCategory.
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	categoryID := uuid.Nil
	if category = strings.TrimSpace(category); category != "" {
		id, err := uuid.Parse(category)
		if err != nil {
			return nil, ErrInvalidCategory
		}
		categoryID = id
	}

	products, err := s.Store.Catalog().ListProducts(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct returns ErrProductNotFound for unknown and malformed ids alike.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	pid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, ErrProductNotFound
	}

	p, err := s.Store.Catalog().GetProduct(ctx, pid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}
