package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeySet_ParsesPublishedJWKs(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	edPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	ks := NewKeySet()
	require.False(t, ks.IsReady())

	require.NoError(t, ks.AddJWK(NewRSAJWK("rsa", "sig", AlgorithmRS256, &rsaKey.PublicKey)))
	require.NoError(t, ks.AddJWK(NewEd25519JWK("ed", "sig", AlgorithmEdDSA, edPub)))
	require.NoError(t, ks.AddJWK(NewES256JWK("ec", "sig", AlgorithmES256, &ecKey.PublicKey)))
	require.True(t, ks.IsReady())
	require.Len(t, ks.PublicJWKS().Keys, 3)

	got, err := ks.Get("rsa")
	require.NoError(t, err)
	require.True(t, rsaKey.PublicKey.Equal(got))

	got, err = ks.Get("ed")
	require.NoError(t, err)
	require.True(t, edPub.Equal(got))

	got, err = ks.Get("ec")
	require.NoError(t, err)
	require.True(t, ecKey.PublicKey.Equal(got))

	_, err = ks.Get("missing")
	require.ErrorIs(t, err, ErrNoKey)
}

func TestES256JWK_PadsCoordinates(t *testing.T) {
	for range 20 {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		j := NewES256JWK("ec", "sig", AlgorithmES256, &key.PublicKey)
		require.Len(t, j.X, 43) // 32 bytes base64url
		require.Len(t, j.Y, 43)
	}
}

func TestKeySet_RejectsUnsupported(t *testing.T) {
	ks := NewKeySet()
	require.ErrorIs(t, ks.AddJWK(JWK{Kty: "oct", Kid: "x"}), ErrUnsupportedKey)
	require.ErrorIs(t, ks.AddJWK(JWK{Kty: "OKP", Crv: "X25519", Kid: "x"}), ErrUnsupportedKey)
	require.ErrorIs(t, ks.AddJWK(JWK{Kty: "EC", Crv: "P-384", Kid: "x"}), ErrUnsupportedKey)

	// A point that is not on the curve.
	bogus := JWK{Kty: "EC", Crv: "P-256", Kid: "x", X: "AQ", Y: "AQ"}
	require.ErrorIs(t, ks.AddJWK(bogus), ErrUnsupportedKey)
	require.False(t, ks.IsReady())
}

func TestKeySet_DuplicateKid(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	ks := NewKeySet()
	require.NoError(t, ks.AddJWK(NewEd25519JWK("same", "sig", AlgorithmEdDSA, pub)))
	require.ErrorIs(t, ks.AddJWK(NewEd25519JWK("same", "sig", AlgorithmEdDSA, pub)), ErrDuplicateKey)
	require.Len(t, ks.PublicJWKS().Keys, 1)
}

func TestThumbprint_RFC7638Example(t *testing.T) {
	// RFC 7638 section 3.1.
	j := JWK{
		Kty: "RSA",
		E:   "AQAB",
		N:   "0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw",
	}
	require.Equal(t, "NzbLsXh8uDCcd-6MNwXF4W_7noWXFZAfHkxZsRGC9Xs", Thumbprint(j))
}

func TestThumbprint_IgnoresKidAndAlg(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	a := NewEd25519JWK("one", "sig", AlgorithmEdDSA, pub)
	b := NewEd25519JWK("two", "", "", pub)
	require.Equal(t, Thumbprint(a), Thumbprint(b))
}
