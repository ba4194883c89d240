package domain

import (
	"strings"
	"time"
)

type Account struct {
	Username     string
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
}

// Profile is the public view of an account.
type Profile struct {
	Username   string
	MFAEnabled bool
}

// NormalizeUsername trims surrounding whitespace and lower-cases the name so
// lookups are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
