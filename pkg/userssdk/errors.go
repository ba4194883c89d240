package userssdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/usergate/pkg/httpx"
)

const (
	CodeInvalidRequest     = "E_INVALID_REQUEST"
	CodeCredentialsInvalid = "E_CREDENTIALS_INVALID"
	CodeAccountExists      = "E_ACCOUNT_EXISTS"
	CodeAccountNotFound    = "E_ACCOUNT_NOT_FOUND"
	CodeTOTPRequired       = "E_TOTP_REQUIRED"
	CodeTOTPInvalid        = "E_TOTP_INVALID"
	CodeTokenInvalid       = "E_TOKEN_INVALID"
	CodeMFAAlreadyEnabled  = "E_MFA_ALREADY_ENABLED"
	CodeMFADisabled        = "E_MFA_DISABLED"
	CodeInvalidTime        = "E_INVALID_TIME"
	CodeRateLimited        = "E_RATE_LIMITED"
	CodeInternal           = "E_INTERNAL"
)

// APIError is the error body of every failed request. The server writes it
// and the client decodes it.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so a decoded response compares equal to the predefined
// error with the same code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes the error as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidRequest,
		Message:    "request is malformed or missing required parameters",
	}

	ErrCredentialsInvalid = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeCredentialsInvalid,
		Message:    "incorrect username or password",
	}

	ErrAccountExists = &APIError{
		StatusCode: http.StatusConflict,
		Code:       CodeAccountExists,
		Message:    "account already exists",
	}

	ErrAccountNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       CodeAccountNotFound,
		Message:    "account not found",
	}

	ErrTOTPRequired = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       CodeTOTPRequired,
		Message:    "TOTP required",
	}

	ErrTOTPInvalid = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       CodeTOTPInvalid,
		Message:    "TOTP invalid",
	}

	// ErrTokenInvalid covers forged, expired and revoked tokens alike.
	ErrTokenInvalid = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       CodeTokenInvalid,
		Message:    "token has expired or was forged",
	}

	ErrMFAAlreadyEnabled = &APIError{
		StatusCode: http.StatusConflict,
		Code:       CodeMFAAlreadyEnabled,
		Message:    "MFA already enabled",
	}

	ErrMFADisabled = &APIError{
		StatusCode: http.StatusPreconditionFailed,
		Code:       CodeMFADisabled,
		Message:    "MFA disabled",
	}

	ErrInvalidTime = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidTime,
		Message:    "invalid reference time",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeRateLimited,
		Message:    "too many requests",
	}

	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    "internal server error",
	}
)

// NewAPIError returns an error with a custom message.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// parseErrorResponse turns a non-2xx response into an *APIError. Returns nil
// for 2xx.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       CodeInternal,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
