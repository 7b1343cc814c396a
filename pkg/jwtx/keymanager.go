package jwtx

import (
	"crypto"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/aussiebroadwan/storefront/pkg/cryptox"
)

// KeyManager owns the signing keys of one instance together with the KeySet
// and Verifier built from them.
type KeyManager struct {
	Verifier *KeySetVerifier
	KeySet   *KeySet

	algorithm string

	mu      sync.RWMutex
	signers []Signer
}

type KeyManagerOptions struct {
	// Algorithm is EdDSA or ES256. Ignored when Keys is set.
	Algorithm string

	Issuer string

	// NumKeys ephemeral keys are generated when Keys is empty.
	// Defaults to 3, capped at 10.
	NumKeys int

	// Keys are long lived signing keys, e.g. parsed from a PEM file. Their kid
	// is derived from the public key so it survives restarts.
	Keys []crypto.Signer
}

func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	km := &KeyManager{
		KeySet:    NewKeySet(),
		algorithm: opts.Algorithm,
	}
	km.Verifier = NewVerifier(km.KeySet, opts.Issuer)

	if len(opts.Keys) > 0 {
		for i, key := range opts.Keys {
			probe, err := NewSigner("", key)
			if err != nil {
				return nil, fmt.Errorf("jwtx: key %d: %w", i+1, err)
			}
			signer, err := NewSigner(thumbprintKID(probe.PublicJWK()), key)
			if err != nil {
				return nil, err
			}
			if err := km.AddSigner(signer); err != nil {
				return nil, fmt.Errorf("jwtx: key %d: %w", i+1, err)
			}
			km.algorithm = signer.Alg()
		}
		return km, nil
	}

	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = 3
	}
	if numKeys > 10 {
		numKeys = 10
	}

	for i := range numKeys {
		signer, err := generateSigner(opts.Algorithm)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}
		if err := km.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d: %w", i+1, err)
		}
	}

	return km, nil
}

func generateSigner(algorithm string) (Signer, error) {
	var pemBytes []byte
	var err error

	switch algorithm {
	case AlgorithmEdDSA:
		pemBytes, err = cryptox.GenerateEd25519Key()
	case AlgorithmES256:
		pemBytes, err = cryptox.GenerateES256Key()
	default:
		return nil, fmt.Errorf("unsupported algorithm %q (supported: EdDSA, ES256)", algorithm)
	}
	if err != nil {
		return nil, err
	}

	key, err := cryptox.ParsePrivateKeyPEM(pemBytes)
	if err != nil {
		return nil, err
	}

	kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key ID: %w", err)
	}
	return NewSigner("storefront-"+kid, key)
}

// thumbprintKID derives a stable kid from the public key material.
func thumbprintKID(j JWK) string {
	sum := sha256.Sum256([]byte(j.Kty + "|" + j.Crv + "|" + j.X + "|" + j.Y))
	return "storefront-" + base64.RawURLEncoding.EncodeToString(sum[:12])
}

func (km *KeyManager) Algorithm() string { return km.algorithm }

func (km *KeyManager) IsReady() bool { return km.KeySet.IsReady() }

// GetSigner returns one of the active signers at random.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// AddSigner makes signer available for signing and publishes its public key.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("failed to add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, signer)
	return nil
}
