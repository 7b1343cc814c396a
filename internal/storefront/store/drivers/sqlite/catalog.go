package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type catalogRepo struct {
	q sqlx.ExtContext
}

type categoryRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
}

type productRow struct {
	ID             uuid.UUID      `db:"id"`
	Name           string         `db:"name"`
	Subtitle       string         `db:"subtitle"`
	Description    string         `db:"description"`
	SellingPrice   int64          `db:"selling_price"`
	MaxRetailPrice int64          `db:"max_retail_price"`
	CategoryID     uuid.UUID      `db:"category_id"`
	CreatedAt      time.Time      `db:"created_at"`
	StockQuantity  sql.NullInt64  `db:"stock_quantity"`
	StockUnit      sql.NullString `db:"stock_unit"`
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:             r.ID,
		Name:           r.Name,
		Subtitle:       r.Subtitle,
		Description:    json.RawMessage(r.Description),
		SellingPrice:   domain.Money(r.SellingPrice),
		MaxRetailPrice: domain.Money(r.MaxRetailPrice),
		CategoryID:     r.CategoryID,
		CreatedAt:      r.CreatedAt,
		Images:         []domain.Image{},
		Ratings:        []domain.Rating{},
	}
	if r.StockQuantity.Valid {
		p.Stock = &domain.Stock{Quantity: int(r.StockQuantity.Int64), Unit: r.StockUnit.String}
	}
	return p
}

type imageRow struct {
	ID        uuid.UUID `db:"id"`
	ProductID uuid.UUID `db:"product_id"`
	URL       string    `db:"url"`
}

type ratingRow struct {
	ID        uuid.UUID `db:"id"`
	AccountID string    `db:"account_id"`
	ProductID uuid.UUID `db:"product_id"`
	Rating    float64   `db:"rating"`
	Review    string    `db:"review"`
}

const selectProduct = `
	SELECT p.id, p.name, p.subtitle, p.description, p.selling_price, p.max_retail_price,
	       p.category_id, p.created_at, s.quantity AS stock_quantity, s.unit AS stock_unit
	FROM products p
	LEFT JOIN stocks s ON s.product_id = p.id`

func (r *catalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, `SELECT id, name, description FROM categories ORDER BY name`); err != nil {
		return nil, err
	}

	out := make([]domain.Category, len(rows))
	for i, row := range rows {
		out[i] = domain.Category(row)
	}
	return out, nil
}

func (r *catalogRepo) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := sqlx.NamedExecContext(ctx, r.q,
		`INSERT INTO categories (id, name, description) VALUES (:id, :name, :description)`,
		categoryRow(c))
	return mapConstraint(err)
}

func (r *catalogRepo) ListProducts(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	var rows []productRow
	var err error
	if categoryID == uuid.Nil {
		err = sqlx.SelectContext(ctx, r.q, &rows, selectProduct+` ORDER BY p.name, p.id`)
	} else {
		err = sqlx.SelectContext(ctx, r.q, &rows, selectProduct+` WHERE p.category_id = ? ORDER BY p.name, p.id`, categoryID)
	}
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, len(rows))
	byID := make(map[uuid.UUID]*domain.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
		byID[row.ID] = &products[i]
	}
	if len(products) == 0 {
		return products, nil
	}

	if err := r.attachChildren(ctx, byID); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *catalogRepo) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var row productRow
	if err := sqlx.GetContext(ctx, r.q, &row, selectProduct+` WHERE p.id = ?`, id); err != nil {
		return domain.Product{}, mapNotFound(err)
	}

	p := row.toDomain()
	if err := r.attachChildren(ctx, map[uuid.UUID]*domain.Product{p.ID: &p}); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// attachChildren loads images and ratings for every product in byID with one
// query per table.
func (r *catalogRepo) attachChildren(ctx context.Context, byID map[uuid.UUID]*domain.Product) error {
	ids := make([]uuid.UUID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	query, args, err := sqlx.In(`SELECT id, product_id, url FROM product_images WHERE product_id IN (?) ORDER BY rowid`, ids)
	if err != nil {
		return err
	}
	var images []imageRow
	if err := sqlx.SelectContext(ctx, r.q, &images, r.q.Rebind(query), args...); err != nil {
		return err
	}
	for _, img := range images {
		p := byID[img.ProductID]
		p.Images = append(p.Images, domain.Image{ID: img.ID, URL: img.URL})
	}

	query, args, err = sqlx.In(`SELECT id, account_id, product_id, rating, review FROM ratings WHERE product_id IN (?) ORDER BY rowid`, ids)
	if err != nil {
		return err
	}
	var ratings []ratingRow
	if err := sqlx.SelectContext(ctx, r.q, &ratings, r.q.Rebind(query), args...); err != nil {
		return err
	}
	for _, rt := range ratings {
		p := byID[rt.ProductID]
		p.Ratings = append(p.Ratings, domain.Rating{ID: rt.ID, AccountID: rt.AccountID, Rating: rt.Rating, Review: rt.Review})
	}

	return nil
}

func (r *catalogRepo) CreateProduct(ctx context.Context, p domain.Product) error {
	desc := string(p.Description)
	if desc == "" {
		desc = "{}"
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (id, name, subtitle, description, selling_price, max_retail_price, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Subtitle, desc, int64(p.SellingPrice), int64(p.MaxRetailPrice), p.CategoryID, p.CreatedAt.UTC(),
	)
	if err != nil {
		return mapConstraint(err)
	}

	if p.Stock != nil {
		unit := p.Stock.Unit
		if unit == "" {
			unit = domain.UnitKg
		}
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO stocks (product_id, quantity, unit) VALUES (?, ?, ?)`,
			p.ID, p.Stock.Quantity, unit,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *catalogRepo) AddProductImage(ctx context.Context, productID uuid.UUID, img domain.Image) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO product_images (id, product_id, url) VALUES (?, ?, ?)`,
		img.ID, productID, img.URL,
	)
	return mapConstraint(err)
}

func (r *catalogRepo) AddRating(ctx context.Context, productID uuid.UUID, rt domain.Rating) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO ratings (id, account_id, product_id, rating, review) VALUES (?, ?, ?, ?, ?)`,
		rt.ID, rt.AccountID, productID, rt.Rating, rt.Review,
	)
	return mapConstraint(err)
}
