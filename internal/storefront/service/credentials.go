package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// CredentialIssuer mints signed access/refresh pairs. Both tokens verify
// against the published key set without a store lookup.
type CredentialIssuer struct {
	Keys       *jwtx.KeyManager
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

func (c *CredentialIssuer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Mint signs credentials bound to account. The access token carries the
// capabilities of groups so the permission gate can run on the token alone.
func (c *CredentialIssuer) Mint(account domain.Account, groups []domain.Group, amr []string) (domain.CredentialPair, error) {
	signer := c.Keys.GetSigner()
	if signer == nil {
		return domain.CredentialPair{}, errors.New("credentials: no signing key available")
	}

	accessTTL := c.AccessTTL
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	refreshTTL := c.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	now := c.now()
	caps, names := capabilitiesOf(groups)

	access := jwtx.NewClaims(jwtx.ClaimsParams{
		Issuer:    c.Issuer,
		Subject:   account.ID,
		TokenType: jwtx.TokenTypeAccess,
		Email:     account.Email,
		Scopes:    caps,
		Groups:    names,
		AMR:       amr,
		TTL:       accessTTL,
		Now:       now,
	})
	accessToken, err := signer.Sign(access)
	if err != nil {
		return domain.CredentialPair{}, fmt.Errorf("credentials: sign access token: %w", err)
	}

	refresh := jwtx.NewClaims(jwtx.ClaimsParams{
		Issuer:    c.Issuer,
		Subject:   account.ID,
		TokenType: jwtx.TokenTypeRefresh,
		AMR:       amr,
		TTL:       refreshTTL,
		Now:       now,
	})
	refreshToken, err := signer.Sign(refresh)
	if err != nil {
		return domain.CredentialPair{}, fmt.Errorf("credentials: sign refresh token: %w", err)
	}

	return domain.CredentialPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  access.ExpiresAt.Time,
		RefreshExpiresAt: refresh.ExpiresAt.Time,
	}, nil
}

// VerifyRefresh checks a refresh token and returns its claims.
func (c *CredentialIssuer) VerifyRefresh(token string) (jwtx.Claims, error) {
	return jwtx.VerifyType(c.Keys.Verifier, token, jwtx.TokenTypeRefresh)
}
