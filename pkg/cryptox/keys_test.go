package cryptox

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

func parsePKCS8(t *testing.T, pemBytes []byte) any {
	t.Helper()

	block, _ := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	return key
}

func TestGenerateKeys(t *testing.T) {
	t.Run("Ed25519", func(t *testing.T) {
		pemBytes, err := GenerateEd25519Key()
		require.NoError(t, err)
		_, ok := parsePKCS8(t, pemBytes).(ed25519.PrivateKey)
		require.True(t, ok)
	})

	t.Run("ES256", func(t *testing.T) {
		pemBytes, err := GenerateES256Key()
		require.NoError(t, err)
		key, ok := parsePKCS8(t, pemBytes).(*ecdsa.PrivateKey)
		require.True(t, ok)
		require.Equal(t, "P-256", key.Curve.Params().Name)
	})

	t.Run("RSA", func(t *testing.T) {
		pemBytes, err := GenerateRSAKey(2048)
		require.NoError(t, err)
		key, ok := parsePKCS8(t, pemBytes).(*rsa.PrivateKey)
		require.True(t, ok)
		require.Equal(t, 2048, key.N.BitLen())
	})

	t.Run("RSA rejects small keys", func(t *testing.T) {
		_, err := GenerateRSAKey(1024)
		require.Error(t, err)
	})
}
