package userssdk

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_LoginAndSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/login", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "web", r.Header.Get(HeaderAudience))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch {
		case req.Password != "pw":
			ErrCredentialsInvalid.WriteError(w)
		case r.Header.Get(HeaderTOTP) == "":
			ErrTOTPRequired.WriteError(w)
		default:
			_ = json.NewEncoder(w).Encode(LoginResponse{
				Token:     "tok",
				TokenType: "Bearer",
				Username:  req.Username,
				Audience:  "web",
				ExpiresAt: time.Unix(1_700_000_000, 0).UTC(),
			})
		}
	})
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			ErrTokenInvalid.WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(ProfileResponse{Username: "alice", MFAEnabled: true})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/", "web")
	ctx := t.Context()

	_, err := c.Login(ctx, "alice", "nope", "")
	require.ErrorIs(t, err, ErrCredentialsInvalid)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = c.Login(ctx, "alice", "pw", "")
	require.ErrorIs(t, err, ErrTOTPRequired)
	require.False(t, errors.Is(err, ErrTOTPInvalid))

	session, err := c.Login(ctx, "alice", "pw", "123456")
	require.NoError(t, err)
	require.Equal(t, "tok", session.Token())
	require.Equal(t, "alice", session.Username())

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.MFAEnabled)

	_, err = c.NewSessionFromToken("bad").Me(ctx)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseErrorResponse_NonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "").GetLiveness(t.Context())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, CodeInternal, apiErr.Code)
}

func TestAPIError_WriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrMFADisabled.WriteError(rec)

	require.Equal(t, http.StatusPreconditionFailed, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"code":"E_MFA_DISABLED","message":"MFA disabled"}`, rec.Body.String())
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		in   string
		want FlexString
	}{
		{in: `{"time":1700000000000}`, want: "1700000000000"},
		{in: `{"time":"1700000000000"}`, want: "1700000000000"},
		{in: `{"time":"bubble"}`, want: "bubble"},
		{in: `{"time":null}`, want: ""},
		{in: `{}`, want: ""},
	}
	for _, tt := range tests {
		var req GenerateKeyRequest
		require.NoError(t, json.Unmarshal([]byte(tt.in), &req), tt.in)
		require.Equal(t, tt.want, req.Time, tt.in)
	}
}
