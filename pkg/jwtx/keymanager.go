package jwtx

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/aussiebroadwan/usergate/pkg/cryptox"
)

// KeyManager owns the signing keys for an instance along with the KeySet
// and Verifier built from them. Signing picks a key at random.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	algorithm string
	signers   []Signer
}

// KeyManagerOptions configures the KeyManager for a specific use case.
type KeyManagerOptions struct {
	// Algorithm specifies which signing algorithm to use.
	// Supported values: "RS256", "ES256", "EdDSA"
	Algorithm string

	// Issuer is the issuer claim (iss) that will be validated in tokens.
	Issuer string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// RSABits specifies the RSA key size for RS256. Defaults to 4096.
	RSABits int

	// NumKeys specifies how many ephemeral signing keys to generate.
	// Defaults to 3, capped at 10. Ignored for file-backed keys.
	NumKeys int
}

// NewEphemeralKeyManager creates a KeyManager whose keys only ever live in
// memory. Every issued token becomes unverifiable when the process restarts,
// which is fine for tests and single-node development.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = 3
	}
	numKeys = min(numKeys, 10)

	signers := make([]Signer, 0, numKeys)
	for i := range numKeys {
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, err
		}

		pemKey, err := GenerateKey(opts.Algorithm, opts.RSABits)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}

		signer, err := NewSigner(opts.Algorithm, kid, pemKey)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to load signer %d: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	return newKeyManager(opts, signers)
}

// NewFileKeyManager loads a single signing key from path, generating it on
// first start. When sealer is non-nil the file holds the PEM encrypted under
// the sealer's key instead of in the clear. The kid is derived from the key
// itself (RFC 7638 thumbprint) so every replica sharing the file publishes the same JWKS.
func NewFileKeyManager(opts KeyManagerOptions, path string, sealer *cryptox.Sealer) (*KeyManager, error) {
	raw, err := cryptox.LoadOrCreateFile(path, func() ([]byte, error) {
		pemKey, err := GenerateKey(opts.Algorithm, opts.RSABits)
		if err != nil {
			return nil, err
		}
		if sealer == nil {
			return pemKey, nil
		}
		return sealer.Seal(pemKey)
	})
	if err != nil {
		return nil, fmt.Errorf("jwtx: load signing key: %w", err)
	}

	pemKey := raw
	if sealer != nil {
		if pemKey, err = sealer.Open(raw); err != nil {
			return nil, fmt.Errorf("jwtx: unseal signing key: %w", err)
		}
	}

	probe, err := NewSigner(opts.Algorithm, "", pemKey)
	if err != nil {
		return nil, err
	}
	signer, err := NewSigner(opts.Algorithm, Thumbprint(probe.PublicJWK()), pemKey)
	if err != nil {
		return nil, err
	}

	return newKeyManager(opts, []Signer{signer})
}

func newKeyManager(opts KeyManagerOptions, signers []Signer) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	keyset := NewKeySet()
	for i, s := range signers {
		if err := keyset.AddSigner(s); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d to keyset: %w", i+1, err)
		}
	}

	return &KeyManager{
		Verifier:  NewVerifier(keyset, opts.Algorithm, opts.Issuer, opts.Leeway),
		KeySet:    keyset,
		algorithm: opts.Algorithm,
		signers:   signers,
	}, nil
}

// GenerateKey creates a fresh PKCS8 PEM private key for algorithm.
func GenerateKey(algorithm string, rsaBits int) ([]byte, error) {
	switch algorithm {
	case AlgorithmRS256:
		if rsaBits == 0 {
			rsaBits = 4096
		}
		return cryptox.GenerateRSAKey(rsaBits)
	case AlgorithmES256:
		return cryptox.GenerateES256Key()
	case AlgorithmEdDSA:
		return cryptox.GenerateEd25519Key()
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: RS256, ES256, EdDSA)", algorithm)
	}
}

// Algorithm returns the signing algorithm being used.
func (km *KeyManager) Algorithm() string {
	return km.algorithm
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return len(km.signers) > 0 && km.KeySet.IsReady()
}

// GetSigner returns a randomly selected signer.
func (km *KeyManager) GetSigner() Signer {
	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	return len(km.signers)
}

// generateRandomKeyID creates a random key identifier of the form
// "usergate-{128-bit token}".
func generateRandomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to generate key ID: %w", err)
	}
	return "usergate-" + token, nil
}
