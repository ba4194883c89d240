package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
	// TokenSize512 provides 512 bits of entropy (86 chars base64url).
	TokenSize512 = 64
)

// GenerateToken creates a cryptographically secure random token of the specified byte length.
// The token is returned as a base64url-encoded string (URL-safe, no padding).
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// Stores keep fingerprints so a leaked table never yields usable codes.
//
// The fingerprint is returned as a base64url-encoded string (43 chars).
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Recovery codes avoid look-alike characters (0/o, 1/l/i) since people type
// them in from paper.
const (
	recoveryAlphabet  = "23456789abcdefghjkmnpqrstuvwxyz"
	recoveryGroupSize = 5
	recoveryGroups    = 2
)

// GenerateRecoveryCode returns a human-typeable code of the form
// "xxxxx-xxxxx" (~49 bits of entropy).
func GenerateRecoveryCode() (string, error) {
	// Largest multiple of the alphabet size that fits in a byte; anything
	// above is rejected so every character is equally likely.
	limit := byte(256 - 256%len(recoveryAlphabet))

	var sb strings.Builder
	buf := make([]byte, 16)
	for n := 0; n < recoveryGroupSize*recoveryGroups; {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate recovery code: %w", err)
		}
		for _, b := range buf {
			if b >= limit || n == recoveryGroupSize*recoveryGroups {
				continue
			}
			if n > 0 && n%recoveryGroupSize == 0 {
				sb.WriteByte('-')
			}
			sb.WriteByte(recoveryAlphabet[int(b)%len(recoveryAlphabet)])
			n++
		}
	}
	return sb.String(), nil
}

// NormalizeRecoveryCode canonicalises user input so "ABCDE-FGHJK",
// " abcde fghjk " and "abcdefghjk" all fingerprint the same.
func NormalizeRecoveryCode(code string) string {
	code = strings.ToLower(code)
	code = strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, code)

	if len(code) != recoveryGroupSize*recoveryGroups {
		return code
	}
	return code[:recoveryGroupSize] + "-" + code[recoveryGroupSize:]
}
