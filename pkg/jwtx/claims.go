package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is the lifetime of a session token when the service
// doesn't configure one.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Claims are the session-token claims. The "jti" claim doubles as the token's
// pool identifier: it is carried inside the signed payload, so the verifier
// always recovers the exact identifier that was registered at issue time.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated account
	Username string `json:"username,omitempty"`

	// Authentication Methods Reference ["pwd","mfa"]
	//		"pwd": Password-based Authentication
	//		"mfa": Multi-factor Auth was used
	AMR []string `json:"amr,omitempty"`

	// Extra caller-supplied claims. Kept flat and string-valued so they
	// round trip through JSON without type drift.
	Extra map[string]string `json:"ext,omitempty"`
}

// ClaimsParams describes a token to mint.
type ClaimsParams struct {
	Issuer   string
	Subject  string
	Audience string
	AMR      []string
	Extra    map[string]string
	TTL      time.Duration
	Now      time.Time
}

// NewClaims builds minimally-correct claims with a fresh jti.
func NewClaims(p ClaimsParams) Claims {
	if p.TTL <= 0 {
		p.TTL = DefaultSessionTTL
	}
	if p.Now.IsZero() {
		p.Now = time.Now()
	}

	// Second precision so the exp we register in the pool matches the exp
	// a verifier decodes.
	now := p.Now.UTC().Truncate(time.Second)

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			Audience:  jwt.ClaimStrings{p.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.TTL)),
			ID:        NewJTI(),
		},
		Username: p.Subject,
		AMR:      p.AMR,
		Extra:    p.Extra,
	}
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks that the token was issued for audience.
func (c *Claims) ValidateAudience(audience string) error {
	if audience == "" || !slices.Contains(c.Audience, audience) {
		return ErrAudience
	}
	return nil
}

// Expiry returns the expiry, or the zero time when the claim is missing.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
