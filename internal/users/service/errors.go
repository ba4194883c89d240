package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrCredentialsInvalid = errors.New("incorrect username or password")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")

	ErrTOTPRequired      = errors.New("TOTP required")
	ErrTOTPInvalid       = errors.New("TOTP invalid")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled")
	ErrMFADisabled       = errors.New("MFA disabled")
	ErrInvalidTime       = errors.New("invalid reference time")

	// The three token failures are distinct internally and for logs and
	// metrics; the transport reports all of them as one error.
	ErrTokenForged  = errors.New("token forged")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")

	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// StoreError wraps a failed Credential Store call. It matches
// ErrStoreUnavailable with errors.Is and unwraps to the driver error.
type StoreError struct {
	Op      string
	Account string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Account == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s (account %q): %v", e.Op, e.Account, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

func storeErr(op, account string, err error) error {
	return &StoreError{Op: op, Account: account, Err: err}
}

// IsTokenInvalid reports whether err is any of the token failures.
func IsTokenInvalid(err error) bool {
	return errors.Is(err, ErrTokenForged) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenRevoked)
}
