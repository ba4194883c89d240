package http

import (
	"net/http"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/internal/users/service"
	"github.com/aussiebroadwan/usergate/pkg/httpx"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
	"github.com/aussiebroadwan/usergate/pkg/userssdk"
)

// MFAHandler handles the MFA routes. The account is always the bearer
// token's subject.
type MFAHandler struct {
	MFA *service.MFAService
}

// account resolves the account for an MFA request. A username in the body
// must name the token's own account.
func account(w http.ResponseWriter, r *http.Request, username string) (string, bool) {
	subject := httpx.AccountFromContext(r.Context())
	if subject == "" {
		userssdk.ErrTokenInvalid.WriteError(w)
		return "", false
	}
	if username != "" && domain.NormalizeUsername(username) != subject {
		slogx.FromContext(r.Context()).Warn("mfa request for another account")
		userssdk.ErrTokenInvalid.WriteError(w)
		return "", false
	}
	return subject, true
}

// HandleGenerateKey handles POST /v1/mfa/generate-key
//
//	@Summary		Generate a TOTP key
//	@Description	Creates a TOTP secret for the account and a provisioning URI. The secret must be
//	@Description	attached within the pending window. skew is server time minus the supplied time, in ms.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		userssdk.GenerateKeyRequest	true	"Client reference time (unix ms)"
//	@Success		200		{object}	userssdk.GenerateKeyResponse
//	@Failure		400		{object}	userssdk.APIError	"Invalid reference time"
//	@Failure		409		{object}	userssdk.APIError	"MFA already enabled"
//	@Router			/v1/mfa/generate-key [post].
func (h *MFAHandler) HandleGenerateKey(w http.ResponseWriter, r *http.Request) {
	var req userssdk.GenerateKeyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}
	acc, ok := account(w, r, req.Username)
	if !ok {
		return
	}

	raw := string(req.Time)
	if raw == "" {
		raw = r.URL.Query().Get("time")
	}
	ref, err := service.ParseReferenceTime(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key, err := h.MFA.GenerateKey(r.Context(), acc, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.GenerateKeyResponse{
		Secret: key.Secret,
		URI:    key.URI,
		Skew:   key.Skew,
	})
}

// HandleAttach handles POST /v1/mfa/attach
//
//	@Summary		Attach MFA
//	@Description	Enables MFA with the generated secret after checking a TOTP code against it.
//	@Description	Returns ten single-use recovery codes; they are not shown again.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		userssdk.AttachRequest	true	"Secret and TOTP code"
//	@Success		200		{object}	userssdk.AttachResponse
//	@Failure		403		{object}	userssdk.APIError	"TOTP invalid"
//	@Failure		409		{object}	userssdk.APIError	"MFA already enabled"
//	@Router			/v1/mfa/attach [post].
func (h *MFAHandler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	var req userssdk.AttachRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Secret == "" {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}
	acc, ok := account(w, r, req.Username)
	if !ok {
		return
	}

	codes, err := h.MFA.Attach(r.Context(), acc, req.Secret, req.TOTP)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.AttachResponse{Enabled: true, RecoveryCodes: codes})
}

// HandleVerify handles POST /v1/mfa/verify
//
//	@Summary		Verify a second factor
//	@Description	Accepts a TOTP code or a recovery code. A recovery code is consumed.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		userssdk.TOTPRequest	true	"TOTP or recovery code"
//	@Success		200		{object}	userssdk.VerifyMFAResponse
//	@Failure		403		{object}	userssdk.APIError	"TOTP invalid"
//	@Failure		412		{object}	userssdk.APIError	"MFA disabled"
//	@Router			/v1/mfa/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req userssdk.TOTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}
	acc, ok := account(w, r, req.Username)
	if !ok {
		return
	}

	if err := h.MFA.Verify(r.Context(), acc, req.TOTP); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.VerifyMFAResponse{Valid: true})
}

// HandleRegenerateCodes handles POST /v1/mfa/regenerate-codes
//
//	@Summary		Regenerate recovery codes
//	@Description	Replaces every recovery code. Requires a TOTP code; recovery codes are not accepted.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		userssdk.TOTPRequest	true	"TOTP code"
//	@Success		200		{object}	userssdk.RegenerateCodesResponse
//	@Failure		403		{object}	userssdk.APIError	"TOTP invalid"
//	@Failure		412		{object}	userssdk.APIError	"MFA disabled"
//	@Router			/v1/mfa/regenerate-codes [post].
func (h *MFAHandler) HandleRegenerateCodes(w http.ResponseWriter, r *http.Request) {
	var req userssdk.TOTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}
	acc, ok := account(w, r, req.Username)
	if !ok {
		return
	}

	codes, err := h.MFA.RegenerateCodes(r.Context(), acc, req.TOTP)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.RegenerateCodesResponse{Regenerated: true, RecoveryCodes: codes})
}

// HandleDetach handles POST /v1/mfa/detach
//
//	@Summary		Detach MFA
//	@Description	Disables MFA and discards the secret and recovery codes. Requires a TOTP code.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		userssdk.TOTPRequest	true	"TOTP code"
//	@Success		200		{object}	userssdk.DetachResponse
//	@Failure		403		{object}	userssdk.APIError	"TOTP invalid"
//	@Failure		412		{object}	userssdk.APIError	"MFA disabled"
//	@Router			/v1/mfa/detach [post].
func (h *MFAHandler) HandleDetach(w http.ResponseWriter, r *http.Request) {
	var req userssdk.TOTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		userssdk.ErrInvalidRequest.WriteError(w)
		return
	}
	acc, ok := account(w, r, req.Username)
	if !ok {
		return
	}

	if err := h.MFA.Detach(r.Context(), acc, req.TOTP); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userssdk.DetachResponse{Enabled: false})
}
