package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPermissionGate(t *testing.T) {
	env := newTestEnv(t)
	gate := &PermissionGate{Metrics: env.metrics}

	buyer := &domain.Caller{AccountID: "a", Capabilities: []string{domain.CapViewProduct}}

	require.NoError(t, gate.Require(buyer, domain.CapViewProduct))
	require.ErrorIs(t, gate.Require(buyer, domain.CapAddWishlist), ErrPermissionDenied)
	require.ErrorIs(t, gate.Require(nil, domain.CapViewProduct), ErrPermissionDenied)
	require.ErrorIs(t, gate.Require(buyer, ""), ErrPermissionDenied)

	require.EqualValues(t, 1, testutil.ToFloat64(env.metrics.permissionDenials.WithLabelValues(domain.CapAddWishlist)))
	require.EqualValues(t, 1, testutil.ToFloat64(env.metrics.permissionDenials.WithLabelValues(domain.CapViewProduct)))

	var unmetered *PermissionGate
	require.ErrorIs(t, unmetered.Require(nil, domain.CapViewProduct), ErrPermissionDenied)
}

func TestCallerFromClaims(t *testing.T) {
	claims := jwtx.NewClaims(jwtx.ClaimsParams{
		Subject: "acct",
		Email:   "a@x.com",
		Scopes:  []string{domain.CapViewCategory},
		Groups:  []string{domain.DefaultGroupName},
		TTL:     time.Minute,
		Now:     time.Now(),
	})

	caller := CallerFromClaims(claims)
	require.Equal(t, "acct", caller.AccountID)
	require.True(t, caller.Has(domain.CapViewCategory))
	require.False(t, caller.Has(domain.CapViewProduct))
}

func seedCatalog(t *testing.T, env *testEnv) (domain.Category, domain.Product) {
	t.Helper()
	ctx := context.Background()

	cat := domain.Category{ID: uuid.New(), Name: "Fruit"}
	require.NoError(t, env.store.Catalog().CreateCategory(ctx, cat))

	p := domain.Product{
		ID:             uuid.New(),
		Name:           "Apple",
		SellingPrice:   450,
		MaxRetailPrice: 500,
		CategoryID:     cat.ID,
		Stock:          &domain.Stock{Quantity: 3, Unit: domain.UnitKg},
		CreatedAt:      env.clock.Now(),
	}
	require.NoError(t, env.store.Catalog().CreateProduct(ctx, p))
	return cat, p
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cat, apple := seedCatalog(t, env)
	svc := &CatalogService{Store: env.store}

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Category{cat}, cats)

	products, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 1)

	products, err = svc.ListProducts(ctx, cat.ID.String())
	require.NoError(t, err)
	require.Len(t, products, 1)

	products, err = svc.ListProducts(ctx, uuid.NewString())
	require.NoError(t, err)
	require.Empty(t, products)

	_, err = svc.ListProducts(ctx, "fruit")
	require.ErrorIs(t, err, ErrInvalidCategory)

	got, err := svc.GetProduct(ctx, apple.ID.String())
	require.NoError(t, err)
	require.Equal(t, apple.Name, got.Name)

	_, err = svc.GetProduct(ctx, uuid.NewString())
	require.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.GetProduct(ctx, "not-a-uuid")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestWishlistService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, apple := seedCatalog(t, env)
	svc := &WishlistService{Store: env.store, Now: env.clock.Now}

	account, err := env.directory.ResolveOrCreate(ctx, "a@x.com")
	require.NoError(t, err)

	_, _, err = svc.Add(ctx, account.ID, "")
	require.ErrorIs(t, err, ErrMissingProduct)
	_, _, err = svc.Add(ctx, account.ID, "apple")
	require.ErrorIs(t, err, ErrInvalidProduct)
	_, _, err = svc.Add(ctx, account.ID, uuid.NewString())
	require.ErrorIs(t, err, ErrProductNotFound)

	first, created, err := svc.Add(ctx, account.ID, apple.ID.String())
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, apple.ID, first.Product.ID)

	second, created, err := svc.Add(ctx, account.ID, apple.ID.String())
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.Entry.ID, second.Entry.ID)

	items, err := svc.List(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Apple", items[0].Product.Name)

	items, err = svc.List(ctx, "someone-else")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	account, err := env.directory.ResolveOrCreate(ctx, "a@x.com")
	require.NoError(t, err)

	old := env.clock.Now().Add(-48 * time.Hour)
	stale := domain.NewPasscode(idx.NewAt(old).String(), account.ID, "111111", old)
	fresh := domain.NewPasscode(idx.NewAt(env.clock.Now()).String(), account.ID, "222222", env.clock.Now())
	require.NoError(t, env.store.Passcodes().IssuePasscode(ctx, stale))
	require.NoError(t, env.store.Passcodes().IssuePasscode(ctx, fresh))

	hk := NewHousekeepingService(env.store, slog.New(slog.DiscardHandler), time.Hour, 24*time.Hour)
	hk.Metrics = env.metrics
	hk.Now = env.clock.Now

	require.EqualValues(t, 1, hk.Cleanup(ctx))
	require.EqualValues(t, 0, hk.Cleanup(ctx))
	require.EqualValues(t, 1, testutil.ToFloat64(env.metrics.passcodesPruned))

	hk.Start()
	hk.Stop()
}
