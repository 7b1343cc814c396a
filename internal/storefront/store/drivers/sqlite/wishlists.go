package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type wishlistsRepo struct {
	q sqlx.ExtContext
}

type wishlistRow struct {
	ID        uuid.UUID `db:"id"`
	AccountID string    `db:"account_id"`
	ProductID uuid.UUID `db:"product_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *wishlistsRepo) GetWishlistEntry(ctx context.Context, accountID string, productID uuid.UUID) (domain.WishlistEntry, error) {
	var row wishlistRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT id, account_id, product_id, created_at FROM wishlist_entries WHERE account_id = ? AND product_id = ?`,
		accountID, productID)
	if err != nil {
		return domain.WishlistEntry{}, mapNotFound(err)
	}
	return domain.WishlistEntry(row), nil
}

func (r *wishlistsRepo) CreateWishlistEntry(ctx context.Context, e domain.WishlistEntry) error {
	e.CreatedAt = e.CreatedAt.UTC()
	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO wishlist_entries (id, account_id, product_id, created_at)
		VALUES (:id, :account_id, :product_id, :created_at)`,
		wishlistRow(e))
	return mapConstraint(err)
}

func (r *wishlistsRepo) ListWishlist(ctx context.Context, accountID string) ([]domain.WishlistEntry, error) {
	var rows []wishlistRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT id, account_id, product_id, created_at FROM wishlist_entries WHERE account_id = ? ORDER BY created_at, id`,
		accountID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.WishlistEntry, len(rows))
	for i, row := range rows {
		out[i] = domain.WishlistEntry(row)
	}
	return out, nil
}
