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
	"github.com/aussiebroadwan/storefront/internal/storefront/lock"
	"github.com/aussiebroadwan/storefront/internal/storefront/notify"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// MinPasswordLength is the shortest password SetPassword accepts.
const MinPasswordLength = 8

// AuthService runs the passcode lifecycle (issued, valid, then consumed or
// expired) and the password and refresh logins built on the same accounts.
type AuthService struct {
	Store       store.Store
	Directory   *AccountDirectory
	Generator   PasscodeGenerator
	Dispatcher  notify.Dispatcher
	Credentials *CredentialIssuer
	Hasher      cryptox.PasswordHasher

	// Locker serialises issuance and verification per email. Nil disables
	// locking.
	Locker lock.Locker

	// AllowReplay keeps a passcode usable until it expires instead of
	// consuming it on the first successful login.
	AllowReplay bool

	Metrics *Metrics
	Now     func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) lock(ctx context.Context, email string) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	unlock, err := s.Locker.Lock(ctx, "account:"+email)
	if err != nil {
		return nil, fmt.Errorf("acquire account lock: %w", err)
	}
	return unlock, nil
}

// RequestPasscode provisions the account if needed, issues a fresh passcode
// and dispatches it to email. The passcode stays issued when delivery fails;
// the failure is reported as ErrDeliveryFailed.
func (s *AuthService) RequestPasscode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrMissingEmail
	}
	l := slogx.FromContext(ctx)

	unlock, err := s.lock(ctx, email)
	if err != nil {
		return err
	}

	account, err := s.Directory.ResolveOrCreate(ctx, email)
	if err != nil {
		unlock()
		return err
	}

	now := s.now()
	code := s.Generator.Generate()
	passcode := domain.NewPasscode(idx.NewAt(now).String(), account.ID, code, now)

	err = s.Store.Passcodes().IssuePasscode(ctx, passcode)
	unlock()
	if err != nil {
		return fmt.Errorf("issue passcode: %w", err)
	}
	s.Metrics.passcodeIssued()

	if err := s.Dispatcher.Dispatch(ctx, email, notify.PasscodeMessage(code)); err != nil {
		s.Metrics.deliveryFailed()
		l.Warn("passcode delivery failed",
			slog.String("account_id", account.ID),
			slog.String("passcode_id", passcode.ID),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	l.Info("passcode issued",
		slog.String("account_id", account.ID),
		slog.String("passcode_id", passcode.ID),
		slog.Time("expires_at", passcode.ExpiresAt),
	)
	return nil
}

// VerifyPasscode checks code against the most recently issued passcode of
// the account and mints credentials on success. Only the latest passcode
// counts; older ones never authenticate even before they expire.
func (s *AuthService) VerifyPasscode(ctx context.Context, email, code string) (domain.CredentialPair, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" {
		return domain.CredentialPair{}, ErrMissingEmail
	}
	if code == "" {
		return domain.CredentialPair{}, ErrMissingCode
	}
	l := slogx.FromContext(ctx)

	unlock, err := s.lock(ctx, email)
	if err != nil {
		return domain.CredentialPair{}, err
	}
	defer unlock()

	account, err := s.Directory.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.Metrics.verification(resultUnknownAccount)
		}
		return domain.CredentialPair{}, err
	}

	passcode, err := s.Store.Passcodes().GetMostRecentPasscode(ctx, account.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.rejectPasscode(ctx, account.ID, "none issued")
		}
		return domain.CredentialPair{}, fmt.Errorf("load passcode: %w", err)
	}

	now := s.now()
	switch {
	case passcode.ExpiredAt(now):
		return s.rejectPasscode(ctx, account.ID, "expired")
	case !cryptox.EqualStrings(passcode.Code, code):
		return s.rejectPasscode(ctx, account.ID, "mismatch")
	case !s.AllowReplay && passcode.Consumed():
		return s.rejectPasscode(ctx, account.ID, "already used")
	}

	groups, err := s.Store.Groups().ListAccountGroups(ctx, account.ID)
	if err != nil {
		return domain.CredentialPair{}, fmt.Errorf("load groups: %w", err)
	}

	pair, err := s.Credentials.Mint(account, groups, []string{domain.AMRPasscode})
	if err != nil {
		return domain.CredentialPair{}, err
	}

	if !s.AllowReplay {
		if err := s.Store.Passcodes().ConsumePasscode(ctx, passcode.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return s.rejectPasscode(ctx, account.ID, "already used")
			}
			return domain.CredentialPair{}, fmt.Errorf("consume passcode: %w", err)
		}
	}

	s.Metrics.verification(resultSuccess)
	l.Info("passcode login", slog.String("account_id", account.ID))
	return pair, nil
}

func (s *AuthService) rejectPasscode(ctx context.Context, accountID, reason string) (domain.CredentialPair, error) {
	s.Metrics.verification(resultInvalid)
	slogx.FromContext(ctx).Info("passcode rejected",
		slog.String("account_id", accountID),
		slog.String("reason", reason),
	)
	return domain.CredentialPair{}, ErrInvalidPasscode
}

// LoginWithPassword authenticates an account that has set a password. Every
// failure, including an unknown email, is ErrInvalidCredentials.
func (s *AuthService) LoginWithPassword(ctx context.Context, email, password string) (domain.CredentialPair, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return domain.CredentialPair{}, ErrMissingEmail
	}
	if password == "" {
		return domain.CredentialPair{}, ErrMissingPassword
	}

	account, err := s.Directory.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return domain.CredentialPair{}, ErrInvalidCredentials
		}
		return domain.CredentialPair{}, err
	}
	if !account.HasPassword() {
		return domain.CredentialPair{}, ErrInvalidCredentials
	}

	if err := s.Hasher.Verify(password, account.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("stored password hash unreadable",
				slog.String("account_id", account.ID),
				slog.Any("error", err),
			)
		}
		return domain.CredentialPair{}, ErrInvalidCredentials
	}

	groups, err := s.Store.Groups().ListAccountGroups(ctx, account.ID)
	if err != nil {
		return domain.CredentialPair{}, fmt.Errorf("load groups: %w", err)
	}
	return s.Credentials.Mint(account, groups, []string{domain.AMRPassword})
}

// SetPassword enables password login for the account.
func (s *AuthService) SetPassword(ctx context.Context, accountID, password string) error {
	if password == "" {
		return ErrMissingPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Accounts().UpdatePasswordHash(ctx, accountID, hash, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("store password: %w", err)
	}

	slogx.FromContext(ctx).Info("password set", slog.String("account_id", accountID))
	return nil
}

// Refresh exchanges a refresh token for a new pair. Capabilities are reloaded
// so group changes take effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.CredentialPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return domain.CredentialPair{}, ErrInvalidRefresh
	}

	claims, err := s.Credentials.VerifyRefresh(refreshToken)
	if err != nil {
		slogx.FromContext(ctx).Debug("refresh token rejected", slog.Any("error", err))
		return domain.CredentialPair{}, ErrInvalidRefresh
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.CredentialPair{}, ErrInvalidRefresh
		}
		return domain.CredentialPair{}, fmt.Errorf("load account: %w", err)
	}

	groups, err := s.Store.Groups().ListAccountGroups(ctx, account.ID)
	if err != nil {
		return domain.CredentialPair{}, fmt.Errorf("load groups: %w", err)
	}

	amr := slices.Clone(claims.AMR)
	if !slices.Contains(amr, domain.AMRRefresh) {
		amr = append(amr, domain.AMRRefresh)
	}
	return s.Credentials.Mint(account, groups, amr)
}
