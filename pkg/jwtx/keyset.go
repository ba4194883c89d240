package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"
)

var (
	ErrNoKey          = errors.New("jwtx: key not found")
	ErrDuplicateKey   = errors.New("jwtx: duplicate kid")
	ErrUnsupportedKey = errors.New("jwtx: unsupported key")
)

// KeySet is the set of public keys tokens are verified against; it is also
// what /.well-known/jwks.json publishes.
type KeySet struct {
	mu   sync.RWMutex
	jwks []JWK
	pub  map[string]any // kid -> *rsa.PublicKey | ed25519.PublicKey | *ecdsa.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]any)}
}

// AddSigner publishes the signer's public half.
func (k *KeySet) AddSigner(s Signer) error {
	return k.AddJWK(s.PublicJWK())
}

// AddJWK parses j and adds it. A kid may only be added once.
func (k *KeySet) AddJWK(j JWK) error {
	key, err := publicKey(j)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.pub[j.Kid]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, j.Kid)
	}
	k.pub[j.Kid] = key
	k.jwks = append(k.jwks, j)
	return nil
}

func (k *KeySet) Get(kid string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// PublicJWKS returns a copy safe to serialise while keys are being added.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: slices.Clone(k.jwks)}
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}

func publicKey(j JWK) (any, error) {
	b64 := base64.RawURLEncoding

	switch j.Kty {
	case "RSA":
		nb, err := b64.DecodeString(j.N)
		if err != nil {
			return nil, fmt.Errorf("jwtx: rsa modulus: %w", err)
		}
		eb, err := b64.DecodeString(j.E)
		if err != nil {
			return nil, fmt.Errorf("jwtx: rsa exponent: %w", err)
		}
		e := new(big.Int).SetBytes(eb)
		if !e.IsInt64() || e.Int64() < 3 {
			return nil, fmt.Errorf("%w: rsa exponent", ErrUnsupportedKey)
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(e.Int64())}, nil

	case "OKP":
		if j.Crv != "Ed25519" {
			return nil, fmt.Errorf("%w: OKP curve %q", ErrUnsupportedKey, j.Crv)
		}
		xb, err := b64.DecodeString(j.X)
		if err != nil {
			return nil, fmt.Errorf("jwtx: ed25519 key: %w", err)
		}
		if len(xb) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("%w: ed25519 key size %d", ErrUnsupportedKey, len(xb))
		}
		return ed25519.PublicKey(xb), nil

	case "EC":
		if j.Crv != "P-256" {
			return nil, fmt.Errorf("%w: EC curve %q", ErrUnsupportedKey, j.Crv)
		}
		xb, err := b64.DecodeString(j.X)
		if err != nil {
			return nil, fmt.Errorf("jwtx: ec x: %w", err)
		}
		yb, err := b64.DecodeString(j.Y)
		if err != nil {
			return nil, fmt.Errorf("jwtx: ec y: %w", err)
		}
		x, y := new(big.Int).SetBytes(xb), new(big.Int).SetBytes(yb)
		curve := elliptic.P256()
		if !curve.IsOnCurve(x, y) {
			return nil, fmt.Errorf("%w: EC point not on P-256", ErrUnsupportedKey)
		}
		return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil

	default:
		return nil, fmt.Errorf("%w: kty %q", ErrUnsupportedKey, j.Kty)
	}
}
