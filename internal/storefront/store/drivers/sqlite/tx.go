package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/jmoiron/sqlx"
)

type txStore struct {
	tx *sqlx.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the owner commits or rolls back.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Accounts() store.Accounts   { return &accountsRepo{q: t.tx} }
func (t *txStore) Groups() store.Groups       { return &groupsRepo{q: t.tx} }
func (t *txStore) Passcodes() store.Passcodes { return &passcodesRepo{q: t.tx} }
func (t *txStore) Catalog() store.Catalog     { return &catalogRepo{q: t.tx} }
func (t *txStore) Wishlists() store.Wishlists { return &wishlistsRepo{q: t.tx} }

// Migrations run before any transaction is opened.
func (t *txStore) ApplyMigrations() error { return nil }
