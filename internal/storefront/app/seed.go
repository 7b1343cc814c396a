package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/google/uuid"
)

// CatalogSeed is the JSON layout of CATALOG_SEED_FILE. Prices are in minor
// units.
type CatalogSeed struct {
	Categories []struct {
		ID          uuid.UUID `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Products    []struct {
			ID             uuid.UUID       `json:"id"`
			Name           string          `json:"name"`
			Subtitle       string          `json:"subtitle"`
			Description    json.RawMessage `json:"description"`
			SellingPrice   int64           `json:"selling_price"`
			MaxRetailPrice int64           `json:"max_retail_price"`
			Stock          *domain.Stock   `json:"stock"`
			Images         []string        `json:"images"`
		} `json:"products"`
	} `json:"categories"`
}

// SeedCatalog loads the catalog at path into st. Rows that already exist are
// left untouched, so seeding on every start is safe. Returns the number of
// products inserted.
func SeedCatalog(ctx context.Context, st store.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read catalog seed: %w", err)
	}

	var seed CatalogSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parse catalog seed: %w", err)
	}

	inserted := 0
	now := time.Now().UTC()

	err = st.WithTx(ctx, func(tx store.Tx) error {
		for _, c := range seed.Categories {
			if c.ID == uuid.Nil || c.Name == "" {
				return fmt.Errorf("category %q: id and name are required", c.Name)
			}
			err := tx.Catalog().CreateCategory(ctx, domain.Category{
				ID:          c.ID,
				Name:        c.Name,
				Description: c.Description,
			})
			if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("category %s: %w", c.Name, err)
			}

			for _, p := range c.Products {
				if p.ID == uuid.Nil || p.Name == "" {
					return fmt.Errorf("product %q: id and name are required", p.Name)
				}
				err := tx.Catalog().CreateProduct(ctx, domain.Product{
					ID:             p.ID,
					Name:           p.Name,
					Subtitle:       p.Subtitle,
					Description:    p.Description,
					SellingPrice:   domain.Money(p.SellingPrice),
					MaxRetailPrice: domain.Money(p.MaxRetailPrice),
					CategoryID:     c.ID,
					Stock:          p.Stock,
					CreatedAt:      now,
				})
				if errors.Is(err, store.ErrAlreadyExists) {
					continue
				}
				if err != nil {
					return fmt.Errorf("product %s: %w", p.Name, err)
				}

				for _, url := range p.Images {
					if err := tx.Catalog().AddProductImage(ctx, p.ID, domain.Image{ID: uuid.New(), URL: url}); err != nil {
						return fmt.Errorf("product %s image: %w", p.Name, err)
					}
				}
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
