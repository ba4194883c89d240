package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/usergate/internal/users/service"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
	"github.com/aussiebroadwan/usergate/pkg/userssdk"
)

// apiError maps a service error onto the wire taxonomy. Forged, expired and
// revoked tokens collapse into one response.
func apiError(err error) *userssdk.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return userssdk.ErrInvalidRequest
	case errors.Is(err, service.ErrCredentialsInvalid):
		return userssdk.ErrCredentialsInvalid
	case errors.Is(err, service.ErrAccountExists):
		return userssdk.ErrAccountExists
	case errors.Is(err, service.ErrAccountNotFound):
		return userssdk.ErrAccountNotFound
	case errors.Is(err, service.ErrTOTPRequired):
		return userssdk.ErrTOTPRequired
	case errors.Is(err, service.ErrTOTPInvalid):
		return userssdk.ErrTOTPInvalid
	case service.IsTokenInvalid(err):
		return userssdk.ErrTokenInvalid
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		return userssdk.ErrMFAAlreadyEnabled
	case errors.Is(err, service.ErrMFADisabled):
		return userssdk.ErrMFADisabled
	case errors.Is(err, service.ErrInvalidTime):
		return userssdk.ErrInvalidTime
	default:
		return userssdk.ErrInternal
	}
}

// writeError renders err and logs anything that isn't an expected client
// error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apiError(err)
	if e.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
	}
	e.WriteError(w)
}

// authError renders AuthnMiddleware failures. A missing token is reported
// the same way as a bad one.
func authError(w http.ResponseWriter, err error) {
	if err == nil || service.IsTokenInvalid(err) {
		userssdk.ErrTokenInvalid.WriteError(w)
		return
	}
	apiError(err).WriteError(w)
}
