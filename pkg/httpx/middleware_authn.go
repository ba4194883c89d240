package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/usergate/pkg/jwtx"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
)

// AudienceHeader selects the audience a bearer token is checked against.
const AudienceHeader = "X-Auth-Audience"

// TokenVerifier checks a token against its audience's pool, not just its
// signature.
type TokenVerifier interface {
	Verify(ctx context.Context, token, audience string) (jwtx.Claims, error)
}

// AuthnMiddleware authenticates requests carrying "Authorization: Bearer <t>"
// (or the legacy "JWT <t>" scheme). The audience comes from X-Auth-Audience,
// falling back to defaultAudience. Failures are rendered by onError so the
// wire format stays with the caller.
func AuthnMiddleware(v TokenVerifier, defaultAudience string, onError func(http.ResponseWriter, error)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="missing bearer token"`)
				onError(w, nil)
				return
			}

			audience := r.Header.Get(AudienceHeader)
			if audience == "" {
				audience = defaultAudience
			}

			claims, err := v.Verify(ctx, raw, audience)
			if err != nil {
				log.Debug("bearer token rejected", "err", err)
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				onError(w, err)
				return
			}

			ctx = contextWithAuth(ctx, raw, audience, claims)
			ctx = slogx.WithContext(ctx, log.With("account", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	for _, scheme := range []string{"Bearer ", "JWT "} {
		if len(authz) > len(scheme) && strings.EqualFold(authz[:len(scheme)], scheme) {
			tok := strings.TrimSpace(authz[len(scheme):])
			return tok, tok != ""
		}
	}
	return "", false
}
