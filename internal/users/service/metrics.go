package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usergate_token_verifications_total",
			Help: "Token verifications by outcome.",
		},
		[]string{"result"},
	)

	logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usergate_logins_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"result"},
	)

	mfaVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usergate_mfa_verifications_total",
			Help: "Successful second-factor checks by method; method=none counts rejections.",
		},
		[]string{"method"},
	)
)

// tokenResult is the metric label and log cause for a verification outcome.
func tokenResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTokenForged):
		return "forged"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCredentialsInvalid):
		return "credentials_invalid"
	case errors.Is(err, ErrTOTPRequired):
		return "totp_required"
	case errors.Is(err, ErrTOTPInvalid):
		return "totp_invalid"
	default:
		return "error"
	}
}
