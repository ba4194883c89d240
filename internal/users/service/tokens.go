package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/internal/users/store"
	"github.com/aussiebroadwan/usergate/pkg/jwtx"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
)

// TokenService is the Token Pool Manager. A token verifies only while its
// jti is in the pool for its (account, audience); revoking removes that one
// entry and leaves the account's other sessions alone.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Issuer     string
	TTL        time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// IssueOptions carries the optional claims of a new token.
type IssueOptions struct {
	AMR   []string
	Extra map[string]string
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue signs a token for (account, audience) and registers its jti in the
// pool. A token whose registration failed is never returned.
func (s *TokenService) Issue(ctx context.Context, account, audience string, opts IssueOptions) (domain.IssuedToken, error) {
	if account == "" || audience == "" {
		return domain.IssuedToken{}, ErrInvalidRequest
	}

	claims := jwtx.NewClaims(jwtx.ClaimsParams{
		Issuer:   s.Issuer,
		Subject:  account,
		Audience: audience,
		AMR:      opts.AMR,
		Extra:    opts.Extra,
		TTL:      s.TTL,
		Now:      s.now(),
	})

	signed, err := s.KeyManager.GetSigner().Sign(claims)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	expiresAt := claims.Expiry()
	if err := s.Store.TokenPools().AddToken(ctx, account, audience, claims.ID, expiresAt); err != nil {
		return domain.IssuedToken{}, storeErr("add token", account, err)
	}

	slogx.FromContext(ctx).Debug("token issued", "account", account, "audience", audience, "exp", expiresAt)

	return domain.IssuedToken{
		Token:     signed,
		ID:        claims.ID,
		Account:   account,
		Audience:  audience,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks signature, structure and expiry locally, then the audience,
// then pool membership. Local failures never touch the store.
func (s *TokenService) Verify(ctx context.Context, token, audience string) (jwtx.Claims, error) {
	claims, err := s.check(ctx, token, audience)
	if err == nil {
		var ok bool
		ok, err = s.Store.TokenPools().HasToken(ctx, claims.Subject, audience, claims.ID, s.now())
		switch {
		case err != nil:
			err = storeErr("has token", claims.Subject, err)
		case !ok:
			err = ErrTokenRevoked
		}
	}

	result := tokenResult(err)
	tokenVerifications.WithLabelValues(result).Inc()
	if err != nil {
		slogx.FromContext(ctx).Info("token rejected", "cause", result, "audience", audience)
		return jwtx.Claims{}, err
	}
	return claims, nil
}

// Revoke removes the token's own jti from its pool. Revoking a token that is
// already gone is a success; a forged or expired token is reported as such.
func (s *TokenService) Revoke(ctx context.Context, token, audience string) error {
	claims, err := s.check(ctx, token, audience)
	if err != nil {
		slogx.FromContext(ctx).Info("revoke rejected", "cause", tokenResult(err), "audience", audience)
		return err
	}

	if err := s.Store.TokenPools().RemoveToken(ctx, claims.Subject, audience, claims.ID); err != nil {
		return storeErr("remove token", claims.Subject, err)
	}

	slogx.FromContext(ctx).Info("token revoked", "account", claims.Subject, "audience", audience)
	return nil
}

// check is the local half of verification: no I/O.
func (s *TokenService) check(ctx context.Context, token, audience string) (jwtx.Claims, error) {
	if token == "" {
		return jwtx.Claims{}, ErrTokenForged
	}

	claims, err := s.KeyManager.Verifier.Verify(token)
	if err != nil {
		slogx.FromContext(ctx).Debug("token failed local verification", "error", err)
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, ErrTokenExpired
		}
		return jwtx.Claims{}, ErrTokenForged
	}

	if err := claims.ValidateAudience(audience); err != nil {
		return jwtx.Claims{}, ErrTokenForged
	}

	return claims, nil
}
