package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	SetPepper("test-pepper")
	os.Exit(m.Run())
}

func TestHashPassword_RoundTrip(t *testing.T) {
	for _, pw := range []string{"password123", "P@ssw0rd!#$%^&*()", strings.Repeat("a", 100), "", "пароль🔒密码", "   spaces   "} {
		hash, err := HashPassword(pw)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"), hash)

		require.NoError(t, VerifyPassword(pw, hash))
		require.ErrorIs(t, VerifyPassword(pw+"x", hash), ErrPasswordMismatch)
		require.False(t, NeedsRehash(hash))
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	const key = "c29tZXRoaW5nMTZieXRlc2xvbmc" // 20 bytes
	tests := map[string]string{
		"empty":             "",
		"wrong algorithm":   "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$" + key,
		"missing parts":     "$argon2id$v=19$m=19456",
		"bad parameters":    "$argon2id$v=19$invalid$c2FsdA$" + key,
		"bad salt":          "$argon2id$v=19$m=19456,t=2,p=1$!!!$" + key,
		"bad key":           "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!",
		"short key":         "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"wrong version":     "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$" + key,
		"huge memory":       "$argon2id$v=19$m=4194304,t=2,p=1$c2FsdA$" + key,
		"huge iterations":   "$argon2id$v=19$m=19456,t=1000,p=1$c2FsdA$" + key,
		"zero parallelism":  "$argon2id$v=19$m=19456,t=2,p=0$c2FsdA$" + key,
		"leading character": "x$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$" + key,
	}
	for name, hash := range tests {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, VerifyPassword("pw", hash), ErrInvalidHash)
			require.True(t, NeedsRehash(hash))
		})
	}
}

func TestNeedsRehash_OldParameters(t *testing.T) {
	prev := currentParams
	currentParams = argonParams{memory: 8 * 1024, iterations: 1, parallelism: 1}
	old, err := HashPassword("pw")
	currentParams = prev
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("pw", old))
	require.True(t, NeedsRehash(old))
}

func TestVerifyPassword_PepperChange(t *testing.T) {
	hash, err := HashPassword("peppered")
	require.NoError(t, err)

	SetPepper("another-pepper")
	defer SetPepper("test-pepper")

	require.ErrorIs(t, VerifyPassword("peppered", hash), ErrPasswordMismatch)
}

func TestLoadPepper(t *testing.T) {
	defer SetPepper("test-pepper")

	file := filepath.Join(t.TempDir(), "secrets", "pepper")

	require.NoError(t, LoadPepper(file))
	first := currentPepper()
	require.NotEmpty(t, first)

	// Second load returns the persisted value.
	SetPepper("")
	require.NoError(t, LoadPepper(file))
	require.Equal(t, first, currentPepper())
}
