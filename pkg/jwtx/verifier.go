package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrTokenType   = errors.New("jwtx: unexpected token type")
)

// Verifier checks a token's signature and registered claims and returns the
// claims when they are acceptable.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// KeySetVerifier verifies EdDSA and ES256 tokens against the keys in a KeySet.
type KeySetVerifier struct {
	Keys   *KeySet
	Issuer string
	Leeway time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func NewVerifier(keys *KeySet, issuer string) *KeySetVerifier {
	return &KeySetVerifier{Keys: keys, Issuer: issuer, Leeway: 5 * time.Second}
}

func (v *KeySetVerifier) Verify(tokenStr string) (Claims, error) {
	// exp/nbf are checked below against v.Now so tests can move the clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{AlgorithmEdDSA, AlgorithmES256}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}
		pub, err := v.Keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
		}

		switch pub.(type) {
		case ed25519.PublicKey:
			if t.Method.Alg() != AlgorithmEdDSA {
				return nil, ErrMalformed
			}
		case *ecdsa.PublicKey:
			if t.Method.Alg() != AlgorithmES256 {
				return nil, ErrMalformed
			}
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}
	if !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.Issuer); err != nil {
		return Claims{}, err
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	if err := claims.ValidateExpiryAt(now(), v.Leeway); err != nil {
		return Claims{}, err
	}
	if claims.Subject == "" {
		return Claims{}, ErrMalformed
	}

	return claims, nil
}

// VerifyType is Verify plus a check on the "typ" claim.
func VerifyType(v Verifier, token, typ string) (Claims, error) {
	claims, err := v.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != typ {
		return Claims{}, ErrTokenType
	}
	return claims, nil
}
