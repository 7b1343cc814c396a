package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Sub-repositories are reached
// through accessors so a transaction-scoped Store exposes the same surface.
type Store interface {
	Accounts() Accounts
	Groups() Groups
	Passcodes() Passcodes
	Catalog() Catalog
	Wishlists() Wishlists

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	// Inside fn only tx may be used; touching the outer Store can deadlock
	// a single connection database.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount returns ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	UpdatePasswordHash(ctx context.Context, accountID, hash string, at time.Time) error
}

type Groups interface {
	// GetGroupByName returns the group with its capabilities.
	GetGroupByName(ctx context.Context, name string) (domain.Group, error)

	// CreateGroup inserts the group and its capabilities. ErrAlreadyExists
	// when the name is taken.
	CreateGroup(ctx context.Context, g domain.Group) error

	// GrantCapabilities attaches capabilities to the group, skipping those
	// already present.
	GrantCapabilities(ctx context.Context, groupID string, capabilities []string) error

	// AddAccountToGroup is a no-op when the membership already exists.
	AddAccountToGroup(ctx context.Context, accountID, groupID string) error

	// ListAccountGroups returns every group of the account with capabilities.
	ListAccountGroups(ctx context.Context, accountID string) ([]domain.Group, error)
}

type Passcodes interface {
	IssuePasscode(ctx context.Context, p domain.Passcode) error

	// GetMostRecentPasscode returns the passcode with the latest created_at,
	// breaking ties by the larger id.
	GetMostRecentPasscode(ctx context.Context, accountID string) (domain.Passcode, error)

	// ConsumePasscode marks the passcode used. ErrNotFound when it does not
	// exist or was already consumed.
	ConsumePasscode(ctx context.Context, id string, at time.Time) error

	// DeleteExpiredPasscodes removes passcodes that expired before the cutoff.
	DeleteExpiredPasscodes(ctx context.Context, before time.Time) (int64, error)
}

type Catalog interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) error

	// ListProducts returns products ordered by name, restricted to categoryID
	// when it is not uuid.Nil. Images and ratings are populated.
	ListProducts(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)

	// CreateProduct inserts the product and, when set, its stock row.
	CreateProduct(ctx context.Context, p domain.Product) error
	AddProductImage(ctx context.Context, productID uuid.UUID, img domain.Image) error
	AddRating(ctx context.Context, productID uuid.UUID, r domain.Rating) error
}

type Wishlists interface {
	GetWishlistEntry(ctx context.Context, accountID string, productID uuid.UUID) (domain.WishlistEntry, error)

	// CreateWishlistEntry returns ErrAlreadyExists for a duplicate pair.
	CreateWishlistEntry(ctx context.Context, e domain.WishlistEntry) error

	ListWishlist(ctx context.Context, accountID string) ([]domain.WishlistEntry, error)
}
