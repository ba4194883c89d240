package jwtx_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/usergate/pkg/cryptox"
	"github.com/aussiebroadwan/usergate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewEphemeralKeyManager_AllAlgorithms(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		rsaBits   int
	}{
		{"RS256 with 2048 bits", jwtx.AlgorithmRS256, 2048},
		{"ES256", jwtx.AlgorithmES256, 0},
		{"EdDSA", jwtx.AlgorithmEdDSA, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
				Algorithm: tt.algorithm,
				Issuer:    exampleIssuer,
				RSABits:   tt.rsaBits,
				NumKeys:   1,
			})
			require.NoError(t, err)
			require.Equal(t, tt.algorithm, km.Algorithm())
			require.True(t, km.IsReady())
			require.Equal(t, 1, km.NumSigners())

			token, err := km.GetSigner().Sign(jwtx.NewClaims(jwtx.ClaimsParams{
				Issuer:   exampleIssuer,
				Subject:  "alice",
				Audience: "web",
				TTL:      time.Minute,
			}))
			require.NoError(t, err)

			claims, err := km.Verifier.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "alice", claims.Subject)
		})
	}
}

func TestNewEphemeralKeyManager_ErrorCases(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
	})
	require.Error(t, err, "issuer is required")

	_, err = jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: "HS256",
		Issuer:    exampleIssuer,
	})
	require.Error(t, err)
}

func TestKeyManager_MultiKeyMode(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		NumKeys:   3,
	})
	require.NoError(t, err)
	require.Equal(t, 3, km.NumSigners())
	require.Len(t, km.KeySet.PublicJWKS().Keys, 3)

	// Every key must verify no matter which one signed.
	kids := make(map[string]bool)
	for range 50 {
		signer := km.GetSigner()
		kids[signer.KID()] = true
		require.True(t, strings.HasPrefix(signer.KID(), "usergate-"))

		token, err := signer.Sign(jwtx.NewClaims(jwtx.ClaimsParams{
			Issuer:   exampleIssuer,
			Subject:  "alice",
			Audience: "web",
		}))
		require.NoError(t, err)

		_, err = km.Verifier.Verify(token)
		require.NoError(t, err)
	}
	require.Greater(t, len(kids), 1, "signing should spread across keys")
}

func TestKeyManager_NumKeysBounds(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		NumKeys:   0,
	})
	require.NoError(t, err)
	require.Equal(t, 3, km.NumSigners())

	km, err = jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		NumKeys:   50,
	})
	require.NoError(t, err)
	require.Equal(t, 10, km.NumSigners())
}

func TestNewFileKeyManager(t *testing.T) {
	opts := jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmES256, Issuer: exampleIssuer}

	t.Run("plain file survives restart", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "signing.pem")

		first, err := jwtx.NewFileKeyManager(opts, path, nil)
		require.NoError(t, err)

		token, err := first.GetSigner().Sign(jwtx.NewClaims(jwtx.ClaimsParams{
			Issuer:   exampleIssuer,
			Subject:  "alice",
			Audience: "web",
		}))
		require.NoError(t, err)

		second, err := jwtx.NewFileKeyManager(opts, path, nil)
		require.NoError(t, err)
		require.Equal(t, first.GetSigner().KID(), second.GetSigner().KID())

		_, err = second.Verifier.Verify(token)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(data), "PRIVATE KEY")
	})

	t.Run("sealed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "signing.sealed")
		sealer, err := cryptox.NewSealer([]byte("master"))
		require.NoError(t, err)

		first, err := jwtx.NewFileKeyManager(opts, path, sealer)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NotContains(t, string(data), "PRIVATE KEY")

		second, err := jwtx.NewFileKeyManager(opts, path, sealer)
		require.NoError(t, err)
		require.Equal(t, first.GetSigner().KID(), second.GetSigner().KID())

		wrong, err := cryptox.NewSealer([]byte("not-master"))
		require.NoError(t, err)
		_, err = jwtx.NewFileKeyManager(opts, path, wrong)
		require.Error(t, err)
	})
}
