package cryptox

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken_Sizes(t *testing.T) {
	for size, wantLen := range map[int]int{TokenSize128: 22, TokenSize256: 43, TokenSize512: 86} {
		a, err := GenerateToken(size)
		require.NoError(t, err)
		require.Len(t, a, wantLen)

		b, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	}

	for _, size := range []int{0, -1} {
		tok, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, tok)
	}
}

func TestFingerprintToken(t *testing.T) {
	require.Equal(t, FingerprintToken("a"), FingerprintToken("a"))
	require.NotEqual(t, FingerprintToken("a"), FingerprintToken("b"))
	require.Len(t, FingerprintToken("a"), 43)
	// SHA-256 of the empty string.
	require.Equal(t, "47DEQpj8HBSa-_TImW-5JCeuQeRkm5NMpJWZG3hSuFU", FingerprintToken(""))
}

var recoveryCodePattern = regexp.MustCompile(`^[2-9a-hjkmnp-z]{5}-[2-9a-hjkmnp-z]{5}$`)

func TestGenerateRecoveryCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 200 {
		code, err := GenerateRecoveryCode()
		require.NoError(t, err)
		require.Regexp(t, recoveryCodePattern, code)
		require.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestNormalizeRecoveryCode(t *testing.T) {
	for _, in := range []string{"abcde-fghjk", "ABCDE-FGHJK", " abcde fghjk ", "abcdefghjk", "abc-de-fgh-jk"} {
		require.Equal(t, "abcde-fghjk", NormalizeRecoveryCode(in), in)
	}
	require.Equal(t, "abc", NormalizeRecoveryCode("a-b-c"))
	require.Equal(t, FingerprintToken("abcde-fghjk"), FingerprintToken(NormalizeRecoveryCode("ABCDEFGHJK")))
}
