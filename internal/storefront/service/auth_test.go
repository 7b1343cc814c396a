package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRequestPasscodeProvisionsAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.auth.RequestPasscode(ctx, "a@x.com"))

	account, err := env.store.Accounts().GetAccountByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	groups, err := env.store.Groups().ListAccountGroups(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, domain.DefaultGroupName, groups[0].Name)

	want := slices.Clone(domain.DefaultCapabilities)
	slices.Sort(want)
	require.Equal(t, want, groups[0].Capabilities)

	msgs := env.dispatcher.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "a@x.com", msgs[0].address)

	code := env.dispatcher.lastCode(t)
	passcode, err := env.store.Passcodes().GetMostRecentPasscode(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, code, passcode.Code)
	require.Len(t, passcode.Code, domain.PasscodeLength)
	require.Equal(t, domain.PasscodeTTL, passcode.ExpiresAt.Sub(passcode.CreatedAt))
	require.True(t, passcode.CreatedAt.Equal(env.clock.Now()))

	t.Run("second request reuses the account", func(t *testing.T) {
		env.clock.Advance(time.Second)
		require.NoError(t, env.auth.RequestPasscode(ctx, "  a@x.com "))

		again, err := env.store.Accounts().GetAccountByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.Equal(t, account.ID, again.ID)

		groups, err := env.store.Groups().ListAccountGroups(ctx, account.ID)
		require.NoError(t, err)
		require.Len(t, groups, 1)

		require.EqualValues(t, 1, testutil.ToFloat64(env.metrics.accountsCreated))
		require.EqualValues(t, 2, testutil.ToFloat64(env.metrics.passcodesIssued))
	})
}

func TestRequestPasscodeValidation(t *testing.T) {
	env := newTestEnv(t)

	require.ErrorIs(t, env.auth.RequestPasscode(context.Background(), ""), ErrMissingEmail)
	require.ErrorIs(t, env.auth.RequestPasscode(context.Background(), "   "), ErrMissingEmail)
	require.Empty(t, env.dispatcher.messages())
}

func TestRequestPasscodeDeliveryFailureKeepsPasscode(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.auth.Generator = &sequenceCodes{codes: []string{"123456"}}
	env.dispatcher.err = errors.New("relay down")

	err := env.auth.RequestPasscode(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrDeliveryFailed)
	require.ErrorContains(t, err, "relay down")
	require.EqualValues(t, 1, testutil.ToFloat64(env.metrics.deliveryFailures))

	pair, err := env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
}

func TestVerifyPasscode(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *testEnv {
		env := newTestEnv(t)
		env.auth.Generator = &sequenceCodes{codes: []string{"123456"}}
		require.NoError(t, env.auth.RequestPasscode(ctx, "a@x.com"))
		return env
	}

	t.Run("missing fields", func(t *testing.T) {
		env := setup(t)
		_, err := env.auth.VerifyPasscode(ctx, "", "123456")
		require.ErrorIs(t, err, ErrMissingEmail)
		_, err = env.auth.VerifyPasscode(ctx, "a@x.com", " ")
		require.ErrorIs(t, err, ErrMissingCode)
	})

	t.Run("unknown account", func(t *testing.T) {
		env := setup(t)
		_, err := env.auth.VerifyPasscode(ctx, "nobody@x.com", "123456")
		require.ErrorIs(t, err, ErrAccountNotFound)
		require.EqualValues(t, 1, testutil.ToFloat64(env.metrics.verifications.WithLabelValues(resultUnknownAccount)))
	})

	t.Run("account without passcode", func(t *testing.T) {
		env := setup(t)
		_, err := env.directory.ResolveOrCreate(ctx, "b@x.com")
		require.NoError(t, err)

		_, err = env.auth.VerifyPasscode(ctx, "b@x.com", "123456")
		require.ErrorIs(t, err, ErrInvalidPasscode)
	})

	t.Run("wrong code mints nothing", func(t *testing.T) {
		env := setup(t)
		pair, err := env.auth.VerifyPasscode(ctx, "a@x.com", "000000")
		require.ErrorIs(t, err, ErrInvalidPasscode)
		require.Empty(t, pair.AccessToken)
		require.Empty(t, pair.RefreshToken)
		require.EqualValues(t, 1, testutil.ToFloat64(env.metrics.verifications.WithLabelValues(resultInvalid)))
	})

	t.Run("just before expiry", func(t *testing.T) {
		env := setup(t)
		env.clock.Advance(domain.PasscodeTTL - time.Second)
		_, err := env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
		require.NoError(t, err)
	})

	t.Run("at expiry", func(t *testing.T) {
		env := setup(t)
		env.clock.Advance(domain.PasscodeTTL)
		_, err := env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
		require.ErrorIs(t, err, ErrInvalidPasscode)
	})

	t.Run("one second after expiry", func(t *testing.T) {
		env := setup(t)
		env.clock.Advance(domain.PasscodeTTL + time.Second)
		_, err := env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
		require.ErrorIs(t, err, ErrInvalidPasscode)
	})
}

func TestVerifyPasscodeUsesMostRecent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.auth.Generator = &sequenceCodes{codes: []string{"111111", "222222"}}

	require.NoError(t, env.auth.RequestPasscode(ctx, "a@x.com"))
	env.clock.Advance(time.Second)
	require.NoError(t, env.auth.RequestPasscode(ctx, "a@x.com"))

	_, err := env.auth.VerifyPasscode(ctx, "a@x.com", "111111")
	require.ErrorIs(t, err, ErrInvalidPasscode)

	_, err = env.auth.VerifyPasscode(ctx, "a@x.com", "222222")
	require.NoError(t, err)
}

func TestVerifyPasscodeTokensBindAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.auth.RequestPasscode(ctx, "a@x.com"))
	pair, err := env.auth.VerifyPasscode(ctx, "a@x.com", env.dispatcher.lastCode(t))
	require.NoError(t, err)

	account, err := env.store.Accounts().GetAccountByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	access, err := jwtx.VerifyType(env.keys.Verifier, pair.AccessToken, jwtx.TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, account.ID, access.Subject)
	require.Equal(t, "a@x.com", access.Email)
	require.Equal(t, []string{domain.DefaultGroupName}, access.Groups)
	require.Equal(t, []string{domain.AMRPasscode}, access.AMR)
	require.True(t, access.HasScope(domain.CapViewProduct))
	require.Len(t, access.Scopes, len(domain.DefaultCapabilities))

	refresh, err := jwtx.VerifyType(env.keys.Verifier, pair.RefreshToken, jwtx.TokenTypeRefresh)
	require.NoError(t, err)
	require.Equal(t, account.ID, refresh.Subject)

	require.Equal(t, jwtx.DefaultAccessTokenTTL, pair.AccessExpiresAt.Sub(env.clock.Now()))
	require.Equal(t, jwtx.DefaultRefreshTokenTTL, pair.RefreshExpiresAt.Sub(env.clock.Now()))
}

func TestPasscodeReplay(t *testing.T) {
	ctx := context.Background()

	t.Run("single use by default", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.Generator = &sequenceCodes{codes: []string{"123456"}}
		require.NoError(t, env.auth.RequestPasscode(ctx, "a@x.com"))

		_, err := env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
		require.NoError(t, err)
		_, err = env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
		require.ErrorIs(t, err, ErrInvalidPasscode)
	})

	t.Run("replay allowed within window", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.Generator = &sequenceCodes{codes: []string{"123456"}}
		env.auth.AllowReplay = true
		require.NoError(t, env.auth.RequestPasscode(ctx, "a@x.com"))

		_, err := env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
		require.NoError(t, err)
		_, err = env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
		require.NoError(t, err)

		env.clock.Advance(domain.PasscodeTTL)
		_, err = env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
		require.ErrorIs(t, err, ErrInvalidPasscode)
	})
}

func TestConcurrentVerifyConsumesOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.auth.Generator = &sequenceCodes{codes: []string{"123456"}}
	require.NoError(t, env.auth.RequestPasscode(ctx, "a@x.com"))

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.auth.VerifyPasscode(ctx, "a@x.com", "123456")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidPasscode):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 7, rejected)
}

func TestPasswordLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	account, err := env.directory.ResolveOrCreate(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = env.auth.LoginWithPassword(ctx, "a@x.com", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials, "no password set yet")

	require.ErrorIs(t, env.auth.SetPassword(ctx, account.ID, "short"), ErrWeakPassword)
	require.ErrorIs(t, env.auth.SetPassword(ctx, account.ID, ""), ErrMissingPassword)
	require.ErrorIs(t, env.auth.SetPassword(ctx, "missing", "correct horse"), ErrAccountNotFound)
	require.NoError(t, env.auth.SetPassword(ctx, account.ID, "correct horse"))

	pair, err := env.auth.LoginWithPassword(ctx, "a@x.com", "correct horse")
	require.NoError(t, err)

	claims, err := jwtx.VerifyType(env.keys.Verifier, pair.AccessToken, jwtx.TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, []string{domain.AMRPassword}, claims.AMR)

	_, err = env.auth.LoginWithPassword(ctx, "a@x.com", "wrong horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.LoginWithPassword(ctx, "nobody@x.com", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.LoginWithPassword(ctx, "a@x.com", "")
	require.ErrorIs(t, err, ErrMissingPassword)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.auth.RequestPasscode(ctx, "a@x.com"))
	pair, err := env.auth.VerifyPasscode(ctx, "a@x.com", env.dispatcher.lastCode(t))
	require.NoError(t, err)

	refreshed, err := env.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, refreshed.AccessToken)

	claims, err := jwtx.VerifyType(env.keys.Verifier, refreshed.AccessToken, jwtx.TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, []string{domain.AMRPasscode, domain.AMRRefresh}, claims.AMR)
	require.True(t, claims.HasScope(domain.CapViewWishlist))

	_, err = env.auth.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidRefresh, "access tokens cannot refresh")

	_, err = env.auth.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidRefresh)

	_, err = env.auth.Refresh(ctx, "")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestResolveOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	var wg sync.WaitGroup
	ids := make(chan string, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := env.directory.ResolveOrCreate(ctx, "race@x.com")
			if err == nil {
				ids <- a.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	var seen []string
	for id := range ids {
		seen = append(seen, id)
	}
	require.Len(t, seen, 10)
	require.Len(t, slices.Compact(slices.Sorted(slices.Values(seen))), 1)
}

func TestResolveOrCreateRepairsDefaultGroup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	partial := domain.Group{ID: "01J00000000000000000000000", Name: domain.DefaultGroupName, Capabilities: []string{domain.CapViewProduct}, CreatedAt: env.clock.Now()}
	require.NoError(t, env.store.Groups().CreateGroup(ctx, partial))

	a, err := env.directory.ResolveOrCreate(ctx, "a@x.com")
	require.NoError(t, err)

	groups, err := env.store.Groups().ListAccountGroups(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, partial.ID, groups[0].ID)
	require.Len(t, groups[0].Capabilities, len(domain.DefaultCapabilities))
}

func TestRandomPasscodes(t *testing.T) {
	for range 200 {
		code := RandomPasscodes{}.Generate()
		require.Len(t, code, domain.PasscodeLength)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', code)
		}
	}
}
