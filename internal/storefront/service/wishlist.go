package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/google/uuid"
)

// WishlistItem is a wishlist entry with its product loaded.
type WishlistItem struct {
	Entry   domain.WishlistEntry
	Product domain.Product
}

type WishlistService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *WishlistService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Add puts the product on the account's wishlist. Adding a product twice
// returns the existing entry with created false.
func (s *WishlistService) Add(ctx context.Context, accountID, productID string) (WishlistItem, bool, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return WishlistItem{}, false, ErrMissingProduct
	}
	pid, err := uuid.Parse(productID)
	if err != nil {
		return WishlistItem{}, false, ErrInvalidProduct
	}

	product, err := s.Store.Catalog().GetProduct(ctx, pid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return WishlistItem{}, false, ErrProductNotFound
		}
		return WishlistItem{}, false, fmt.Errorf("get product: %w", err)
	}

	existing, err := s.Store.Wishlists().GetWishlistEntry(ctx, accountID, pid)
	if err == nil {
		return WishlistItem{Entry: existing, Product: product}, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return WishlistItem{}, false, fmt.Errorf("get wishlist entry: %w", err)
	}

	entry := domain.WishlistEntry{
		ID:        uuid.New(),
		AccountID: accountID,
		ProductID: pid,
		CreatedAt: s.now(),
	}
	if err := s.Store.Wishlists().CreateWishlistEntry(ctx, entry); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			existing, err := s.Store.Wishlists().GetWishlistEntry(ctx, accountID, pid)
			if err != nil {
				return WishlistItem{}, false, fmt.Errorf("get wishlist entry: %w", err)
			}
			return WishlistItem{Entry: existing, Product: product}, false, nil
		}
		return WishlistItem{}, false, fmt.Errorf("create wishlist entry: %w", err)
	}

	return WishlistItem{Entry: entry, Product: product}, true, nil
}

// List returns the account's wishlist oldest first.
func (s *WishlistService) List(ctx context.Context, accountID string) ([]WishlistItem, error) {
	entries, err := s.Store.Wishlists().ListWishlist(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}

	items := make([]WishlistItem, 0, len(entries))
	for _, e := range entries {
		p, err := s.Store.Catalog().GetProduct(ctx, e.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", e.ProductID, err)
		}
		items = append(items, WishlistItem{Entry: e, Product: p})
	}
	return items, nil
}
