package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
//
// Errors always wrap exactly one of ErrExpired or ErrMalformed so callers
// can tell "was once good" from "never was".
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// KeySetVerifier checks tokens against every key in a KeySet, picking the key
// by the "kid" header. Audience is left to the caller: the same verifier
// serves every audience.
type KeySetVerifier struct {
	keys      *KeySet
	issuer    string
	parser    *jwt.Parser
	validator *jwt.Validator
}

// NewVerifier returns a verifier that accepts only alg-signed tokens from
// issuer.
func NewVerifier(keys *KeySet, alg, issuer string, leeway time.Duration) *KeySetVerifier {
	return &KeySetVerifier{
		keys:   keys,
		issuer: issuer,
		// Claims are validated separately so a forged token is always
		// reported as forged, even when it is also past its exp.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{alg}),
			jwt.WithoutClaimsValidation(),
		),
		validator: jwt.NewValidator(
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(leeway),
		),
	}
}

// Verify validates signature, structure, issuer and expiry. No I/O.
func (v *KeySetVerifier) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	if err := v.validator.Validate(claims); err != nil {
		return Claims{}, classify(err)
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing jti or sub", ErrMalformed)
	}

	return claims, nil
}

// classify folds the jwt library's error zoo into our two buckets.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %w", ErrMalformed, ErrNotYetValid)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrMalformed, ErrInvalidSig)
	case errors.Is(err, ErrUnknownKID):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrMalformed, ErrAlgMismatch)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
