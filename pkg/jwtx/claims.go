package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token types carried in the "typ" claim. A refresh token must never be
// accepted where an access token is expected, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the storefront token claims. Access tokens carry the account's
// capabilities in Scopes so downstream checks need no store lookup.
type Claims struct {
	jwt.RegisteredClaims

	TokenType string `json:"typ"`

	Email string `json:"email,omitempty"`

	// Capability names, e.g. "view_product".
	Scopes []string `json:"scopes,omitempty"`

	Groups []string `json:"groups,omitempty"`

	// Authentication Methods Reference: "otp" or "pwd".
	AMR []string `json:"amr,omitempty"`
}

// ClaimsParams is the input to NewClaims.
type ClaimsParams struct {
	Issuer    string
	Subject   string
	TokenType string
	Email     string
	Scopes    []string
	Groups    []string
	AMR       []string
	TTL       time.Duration
	Now       time.Time
}

// NewClaims builds claims valid from p.Now for p.TTL with a fresh jti.
func NewClaims(p ClaimsParams) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(p.Now),
			NotBefore: jwt.NewNumericDate(p.Now),
			ExpiresAt: jwt.NewNumericDate(p.Now.Add(p.TTL)),
			ID:        NewJTI(),
		},
		TokenType: p.TokenType,
		Email:     p.Email,
		Scopes:    p.Scopes,
		Groups:    p.Groups,
		AMR:       p.AMR,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiryAt checks exp and nbf against now, allowing leeway for skew.
func (c *Claims) ValidateExpiryAt(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
