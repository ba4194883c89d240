package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/usergate/pkg/httpx"
	"github.com/aussiebroadwan/usergate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

type fakeVerifier struct {
	gotToken, gotAudience string
	err                   error
}

func (f *fakeVerifier) Verify(_ context.Context, token, audience string) (jwtx.Claims, error) {
	f.gotToken, f.gotAudience = token, audience
	if f.err != nil {
		return jwtx.Claims{}, f.err
	}
	return jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}, nil
}

func TestAuthnMiddleware(t *testing.T) {
	var rejected error
	onError := func(w http.ResponseWriter, err error) {
		rejected = err
		w.WriteHeader(http.StatusForbidden)
	}

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		_, _ = w.Write([]byte(httpx.AccountFromContext(ctx) + "|" + httpx.AudienceFromContext(ctx) + "|" + httpx.TokenFromContext(ctx)))
	})

	t.Run("bearer with default audience", func(t *testing.T) {
		v := &fakeVerifier{}
		h := httpx.AuthnMiddleware(v, "web", onError)(echo)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice|web|tok123", rec.Body.String())
		require.Equal(t, "web", v.gotAudience)
	})

	t.Run("JWT scheme with audience header", func(t *testing.T) {
		v := &fakeVerifier{}
		h := httpx.AuthnMiddleware(v, "web", onError)(echo)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "JWT tok456")
		req.Header.Set(httpx.AudienceHeader, "mobile")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice|mobile|tok456", rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		rejected = errors.New("sentinel")
		h := httpx.AuthnMiddleware(&fakeVerifier{}, "web", onError)(echo)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.NoError(t, rejected)
		require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer"))
	})

	t.Run("verifier rejects", func(t *testing.T) {
		boom := errors.New("revoked")
		h := httpx.AuthnMiddleware(&fakeVerifier{err: boom}, "web", onError)(echo)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.ErrorIs(t, rejected, boom)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"JWT abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := httpx.BearerToken(req)
		require.Equal(t, tt.ok, ok, tt.header)
		require.Equal(t, tt.want, got, tt.header)
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	var b body
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, httpx.DecodeJSON(req, &b))
	require.Equal(t, "x", b.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	require.Error(t, httpx.DecodeJSON(req, &b))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, httpx.DecodeJSON(req, &b))
}
