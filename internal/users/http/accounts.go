package http

import (
	"net/http"

	"github.com/aussiebroadwan/usergate/internal/users/service"
	"github.com/aussiebroadwan/usergate/pkg/httpx"
	"github.com/aussiebroadwan/usergate/pkg/userssdk"
)

type AccountHandler struct {
	Accounts *service.AccountService
}

// HandleRegister handles POST /v1/register
//
//	@Summary		Register an account
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		userssdk.RegisterRequest	true	"Username and password"
//	@Success		201		{object}	userssdk.RegisterResponse
//	@Failure		400		{object}	userssdk.APIError	"Malformed request"
//	@Failure		409		{object}	userssdk.APIError	"Account already exists"
//	@Router			/v1/register [post].
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req userssdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}

	account, err := h.Accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userssdk.RegisterResponse{Username: account.Username})
}

// HandleMe handles GET /v1/me
//
//	@Summary		Current account
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	userssdk.ProfileResponse
//	@Failure		403	{object}	userssdk.APIError	"Token has expired or was forged"
//	@Failure		404	{object}	userssdk.APIError	"Account not found"
//	@Router			/v1/me [get].
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Accounts.GetProfile(r.Context(), httpx.AccountFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.ProfileResponse{
		Username:   profile.Username,
		MFAEnabled: profile.MFAEnabled,
	})
}

// HandleChangePassword handles POST /v1/me/password
//
//	@Summary		Change password
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		userssdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	userssdk.SuccessResponse
//	@Failure		400		{object}	userssdk.APIError	"New password rejected"
//	@Failure		401		{object}	userssdk.APIError	"Current password incorrect"
//	@Router			/v1/me/password [post].
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req userssdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}

	account := httpx.AccountFromContext(r.Context())
	if err := h.Accounts.ChangePassword(r.Context(), account, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.SuccessResponse{Success: true})
}

// HandleDelete handles DELETE /v1/me
//
//	@Summary		Delete account
//	@Description	Deletes the account, its MFA state and every session token.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		userssdk.DeleteAccountRequest	true	"Password confirmation"
//	@Success		200		{object}	userssdk.SuccessResponse
//	@Failure		401		{object}	userssdk.APIError	"Password incorrect"
//	@Router			/v1/me [delete].
func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req userssdk.DeleteAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}

	account := httpx.AccountFromContext(r.Context())
	if err := h.Accounts.DeleteAccount(r.Context(), account, req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.SuccessResponse{Success: true})
}
