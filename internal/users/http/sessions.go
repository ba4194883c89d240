package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/usergate/internal/users/service"
	"github.com/aussiebroadwan/usergate/pkg/httpx"
	"github.com/aussiebroadwan/usergate/pkg/userssdk"
)

// SessionHandler handles login, token verification and logout.
type SessionHandler struct {
	Login    *service.LoginService
	Tokens   *service.TokenService
	Audience func(*http.Request) string
}

// HandleLogin handles POST /v1/login
//
//	@Summary		Log in
//	@Description	Checks the password and, when the account has MFA enabled, a TOTP or recovery code
//	@Description	from the X-Auth-TOTP header or the totp field. Returns a new session token.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			request			body		userssdk.LoginRequest	true	"Credentials"
//	@Param			X-Auth-Audience	header		string					false	"Token audience"
//	@Param			X-Auth-TOTP		header		string					false	"TOTP or recovery code"
//	@Success		200				{object}	userssdk.LoginResponse
//	@Failure		400				{object}	userssdk.APIError	"Malformed request"
//	@Failure		401				{object}	userssdk.APIError	"Incorrect username or password"
//	@Failure		403				{object}	userssdk.APIError	"TOTP required or invalid"
//	@Failure		429				{object}	userssdk.APIError	"Rate limited"
//	@Router			/v1/login [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req userssdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}

	code := strings.TrimSpace(r.Header.Get(userssdk.HeaderTOTP))
	if code == "" {
		code = strings.TrimSpace(req.TOTP)
	}

	audience := h.Audience(r)
	tok, err := h.Login.Login(r.Context(), service.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		Audience: audience,
		MFACode:  code,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.LoginResponse{
		Token:     tok.Token,
		TokenType: "Bearer",
		Username:  tok.Account,
		Audience:  tok.Audience,
		ExpiresAt: tok.ExpiresAt,
	})
}

// HandleVerify handles POST /v1/verify
//
//	@Summary		Verify a token
//	@Description	Checks signature, expiry, audience and that the token has not been revoked.
//	@Description	The token is read from the body, or from the Authorization header when the body has none.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			request			body		userssdk.VerifyRequest	false	"Token"
//	@Param			X-Auth-Audience	header		string					false	"Expected audience"
//	@Success		200				{object}	userssdk.VerifyResponse
//	@Failure		403				{object}	userssdk.APIError	"Token has expired or was forged"
//	@Router			/v1/verify [post].
func (h *SessionHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req userssdk.VerifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		token, _ = httpx.BearerToken(r)
	}

	audience := h.Audience(r)
	claims, err := h.Tokens.Verify(r.Context(), token, audience)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.VerifyResponse{
		Username:  claims.Subject,
		Audience:  audience,
		AMR:       claims.AMR,
		Extra:     claims.Extra,
		ExpiresAt: claims.Expiry(),
	})
}

// HandleLogout handles POST /v1/logout
//
//	@Summary		Log out
//	@Description	Revokes the bearer token, or the body token when no Authorization header is sent.
//	@Description	Other sessions of the account stay valid. Logging out twice succeeds.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request			body		userssdk.LogoutRequest	false	"Token"
//	@Param			X-Auth-Audience	header		string					false	"Token audience"
//	@Success		200				{object}	userssdk.SuccessResponse
//	@Failure		403				{object}	userssdk.APIError	"Token has expired or was forged"
//	@Router			/v1/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		var req userssdk.LogoutRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			userssdk.ErrInvalidRequest.WriteError(w)
			return
		}
		token = strings.TrimSpace(req.Token)
	}
	if token == "" {
		userssdk.ErrTokenInvalid.WriteError(w)
		return
	}

	if err := h.Tokens.Revoke(r.Context(), token, h.Audience(r)); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.SuccessResponse{Success: true})
}
