package httpx

import (
	"context"

	"github.com/aussiebroadwan/usergate/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeyAccount  ctxKey = "account"
	ctxKeyAudience ctxKey = "audience"
	ctxKeyToken    ctxKey = "token"
	ctxKeyClaims   ctxKey = "claims"
)

// WithAccount stores the authenticated account (token subject).
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, ctxKeyAccount, account)
}

// AccountFromContext returns the authenticated account or "".
func AccountFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyAccount).(string)
	return v
}

// AudienceFromContext returns the audience the bearer token was verified for.
func AudienceFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyAudience).(string)
	return v
}

// TokenFromContext returns the raw bearer token that authenticated the request.
func TokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyToken).(string)
	return v
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return c, ok
}

func contextWithAuth(ctx context.Context, token, audience string, c jwtx.Claims) context.Context {
	ctx = WithAccount(ctx, c.Subject)
	ctx = context.WithValue(ctx, ctxKeyAudience, audience)
	ctx = context.WithValue(ctx, ctxKeyToken, token)
	ctx = context.WithValue(ctx, ctxKeyClaims, c)
	return ctx
}
