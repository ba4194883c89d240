package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// JWK is a public key in RFC 7517 form. Only the members needed for RSA,
// Ed25519 and P-256 are modelled.
type JWK struct {
	Kty string `json:"kty"`           // "RSA", "OKP", "EC"
	Use string `json:"use,omitempty"` // always "sig" here
	Alg string `json:"alg,omitempty"`
	Kid string `json:"kid,omitempty"`

	N string `json:"n,omitempty"` // RSA modulus
	E string `json:"e,omitempty"` // RSA exponent

	Crv string `json:"crv,omitempty"` // "Ed25519" or "P-256"
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"` // EC only
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

var b64url = base64.RawURLEncoding

func NewRSAJWK(kid, use, alg string, pub *rsa.PublicKey) JWK {
	return JWK{
		Kty: "RSA", Use: use, Alg: alg, Kid: kid,
		N: b64url.EncodeToString(pub.N.Bytes()),
		E: b64url.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP", Use: use, Alg: alg, Kid: kid,
		Crv: "Ed25519",
		X:   b64url.EncodeToString(pub),
	}
}

// NewES256JWK encodes both coordinates as fixed 32-byte strings; big.Int
// drops leading zeros.
func NewES256JWK(kid, use, alg string, pub *ecdsa.PublicKey) JWK {
	var x, y [32]byte
	pub.X.FillBytes(x[:])
	pub.Y.FillBytes(y[:])
	return JWK{
		Kty: "EC", Use: use, Alg: alg, Kid: kid,
		Crv: "P-256",
		X:   b64url.EncodeToString(x[:]),
		Y:   b64url.EncodeToString(y[:]),
	}
}

// Thumbprint is the RFC 7638 SHA-256 thumbprint of j: a kid that depends
// only on the key material.
func Thumbprint(j JWK) string {
	var canonical string
	switch j.Kty {
	case "RSA":
		canonical = fmt.Sprintf(`{"e":%q,"kty":"RSA","n":%q}`, j.E, j.N)
	case "EC":
		canonical = fmt.Sprintf(`{"crv":%q,"kty":"EC","x":%q,"y":%q}`, j.Crv, j.X, j.Y)
	default:
		canonical = fmt.Sprintf(`{"crv":%q,"kty":%q,"x":%q}`, j.Crv, j.Kty, j.X)
	}
	sum := sha256.Sum256([]byte(canonical))
	return b64url.EncodeToString(sum[:])
}
