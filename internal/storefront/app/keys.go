package app

import (
	"crypto"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// InitAuthKeys creates the KeyManager.
//
// Without SigningKeyFile the keys are ephemeral: generated on startup and kept
// only in memory, so every token becomes invalid on restart. With a key file
// the key is read from it (and written on first start), its kid is derived
// from the public key and tokens survive restarts.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	if cfg.SigningKeyFile != "" {
		key, created, err := loadOrCreateSigningKey(cfg.SigningKeyFile, cfg.Algorithm)
		if err != nil {
			return nil, err
		}

		km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
			Issuer: cfg.Issuer,
			Keys:   []crypto.Signer{key},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize key manager: %w", err)
		}

		logger.Info("signing key loaded",
			"algorithm", km.Algorithm(),
			"path", cfg.SigningKeyFile,
			"created", created,
			"issuer", cfg.Issuer,
		)
		return km, nil
	}

	logger.Info("initializing ephemeral key manager",
		"algorithm", cfg.Algorithm,
		"num_keys", cfg.NumKeys,
	)

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		Issuer:    cfg.Issuer,
		NumKeys:   cfg.NumKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing keys",
		"algorithm", km.Algorithm(),
		"num_keys", km.NumSigners(),
		"issuer", cfg.Issuer,
	)
	logger.Warn("all existing tokens are now invalid due to key rotation on startup")

	return km, nil
}

func loadOrCreateSigningKey(path, algorithm string) (crypto.Signer, bool, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, err := cryptox.ParsePrivateKeyPEM(data)
		if err != nil {
			return nil, false, fmt.Errorf("signing key %s: %w", path, err)
		}
		return key, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("read signing key: %w", err)
	}

	var pemBytes []byte
	switch algorithm {
	case jwtx.AlgorithmES256:
		pemBytes, err = cryptox.GenerateES256Key()
	case jwtx.AlgorithmEdDSA, "":
		pemBytes, err = cryptox.GenerateEd25519Key()
	default:
		return nil, false, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if err != nil {
		return nil, false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, false, fmt.Errorf("create signing key dir: %w", err)
	}
	if err := os.WriteFile(path, pemBytes, 0o600); err != nil {
		return nil, false, fmt.Errorf("write signing key: %w", err)
	}

	key, err := cryptox.ParsePrivateKeyPEM(pemBytes)
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}
