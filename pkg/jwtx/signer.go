package jwtx

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AlgorithmES256 = "ES256"
	AlgorithmEdDSA = "EdDSA"
)

// Signer is anything that can sign storefront tokens.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
}

type keySigner struct {
	kid    string
	key    crypto.Signer
	method jwt.SigningMethod
	jwk    JWK
}

// NewSigner wraps an Ed25519 or P-256 private key.
func NewSigner(kid string, key crypto.Signer) (Signer, error) {
	switch k := key.(type) {
	case ed25519.PrivateKey:
		pub, _ := k.Public().(ed25519.PublicKey)
		return &keySigner{
			kid:    kid,
			key:    k,
			method: jwt.SigningMethodEdDSA,
			jwk:    NewEd25519JWK(kid, pub),
		}, nil

	case *ecdsa.PrivateKey:
		if k.Curve != elliptic.P256() {
			return nil, fmt.Errorf("jwtx: expected P-256 curve, got %s", k.Curve.Params().Name)
		}
		return &keySigner{
			kid:    kid,
			key:    k,
			method: jwt.SigningMethodES256,
			jwk:    NewES256JWK(kid, &k.PublicKey),
		}, nil

	default:
		return nil, fmt.Errorf("jwtx: unsupported signing key %T", key)
	}
}

func (s *keySigner) Alg() string    { return s.method.Alg() }
func (s *keySigner) KID() string    { return s.kid }
func (s *keySigner) PublicJWK() JWK { return s.jwk }

func (s *keySigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}
