package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// AccountDirectory resolves accounts by email and provisions unseen ones into
// the default group.
type AccountDirectory struct {
	Store   store.Store
	Metrics *Metrics
	Now     func() time.Time
}

func (d *AccountDirectory) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// NormalizeEmail trims surrounding whitespace. Case is preserved, so
// addresses differing only in case are distinct accounts.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// Lookup returns the account registered for email.
func (d *AccountDirectory) Lookup(ctx context.Context, email string) (domain.Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return domain.Account{}, ErrMissingEmail
	}

	a, err := d.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}
	return a, nil
}

// ResolveOrCreate returns the account for email, creating it on first sight.
// A new account joins the default group in the same transaction, and the
// group with its capability set is created if missing.
func (d *AccountDirectory) ResolveOrCreate(ctx context.Context, email string) (domain.Account, error) {
	a, err := d.Lookup(ctx, email)
	if !errors.Is(err, ErrAccountNotFound) {
		return a, err
	}

	now := d.now()
	account := domain.Account{
		ID:        idx.NewAt(now).String(),
		Email:     NormalizeEmail(email),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = d.Store.WithTx(ctx, func(tx store.Tx) error {
		group, err := ensureDefaultGroup(ctx, tx, now)
		if err != nil {
			return err
		}
		if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
			return err
		}
		return tx.Groups().AddAccountToGroup(ctx, account.ID, group.ID)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost a race with a concurrent request for the same email.
		return d.Lookup(ctx, email)
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("provision account: %w", err)
	}

	d.Metrics.accountCreated()
	slogx.FromContext(ctx).Info("account provisioned",
		slog.String("account_id", account.ID),
		slog.String("group", domain.DefaultGroupName),
	)
	return account, nil
}

// ensureDefaultGroup returns the default group, creating it or topping up
// missing capabilities.
func ensureDefaultGroup(ctx context.Context, tx store.Tx, now time.Time) (domain.Group, error) {
	g, err := tx.Groups().GetGroupByName(ctx, domain.DefaultGroupName)
	switch {
	case err == nil:
		var missing []string
		for _, c := range domain.DefaultCapabilities {
			if !slices.Contains(g.Capabilities, c) {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			if err := tx.Groups().GrantCapabilities(ctx, g.ID, missing); err != nil {
				return domain.Group{}, err
			}
			g.Capabilities = append(g.Capabilities, missing...)
		}
		return g, nil

	case errors.Is(err, store.ErrNotFound):
		g = domain.Group{
			ID:           idx.NewAt(now).String(),
			Name:         domain.DefaultGroupName,
			Capabilities: slices.Clone(domain.DefaultCapabilities),
			CreatedAt:    now,
		}
		if err := tx.Groups().CreateGroup(ctx, g); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return tx.Groups().GetGroupByName(ctx, domain.DefaultGroupName)
			}
			return domain.Group{}, err
		}
		return g, nil

	default:
		return domain.Group{}, err
	}
}

// capabilitiesOf flattens the capabilities of groups into a sorted set.
func capabilitiesOf(groups []domain.Group) (caps []string, names []string) {
	for _, g := range groups {
		names = append(names, g.Name)
		caps = append(caps, g.Capabilities...)
	}
	slices.Sort(caps)
	return slices.Compact(caps), names
}
