package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/usergate/pkg/cryptox"
	"github.com/aussiebroadwan/usergate/pkg/jwtx"
)

// InitKeys builds the KeyManager.
//
//   - No KeyFile: NumKeys ephemeral keys with random kids. Every token dies
//     with the process.
//   - KeyFile: one key loaded from (or created at) KeyFile, sealed with the
//     master key when MasterKeyFile is set. Tokens survive restarts and every
//     replica sharing the file can verify them.
func InitKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		Issuer:    cfg.Issuer,
		RSABits:   cfg.RSABits,
		NumKeys:   cfg.NumKeys,
	}

	if cfg.KeyFile == "" {
		km, err := jwtx.NewEphemeralKeyManager(opts)
		if err != nil {
			return nil, err
		}
		logger.Info("ephemeral signing keys generated",
			"algorithm", km.Algorithm(),
			"keys", km.NumSigners(),
		)
		return km, nil
	}

	var sealer *cryptox.Sealer
	if cfg.MasterKeyFile != "" {
		material, err := cryptox.LoadOrCreateFile(cfg.MasterKeyFile, func() ([]byte, error) {
			tok, err := cryptox.GenerateToken(cryptox.TokenSize256)
			return []byte(tok), err
		})
		if err != nil {
			return nil, fmt.Errorf("load master key: %w", err)
		}
		if sealer, err = cryptox.NewSealer(material); err != nil {
			return nil, err
		}
	}

	km, err := jwtx.NewFileKeyManager(opts, cfg.KeyFile, sealer)
	if err != nil {
		return nil, err
	}
	logger.Info("signing key loaded",
		"algorithm", km.Algorithm(),
		"path", cfg.KeyFile,
		"sealed", sealer != nil,
	)
	return km, nil
}
