package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/internal/users/store"
	"github.com/aussiebroadwan/usergate/pkg/cryptox"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod = 30
	totpSkew   = 1 // accept the previous and next step as well

	// DefaultPendingTTL is how long a generated key can be attached.
	DefaultPendingTTL = 10 * time.Minute
)

// MFAService is the MFA Manager: TOTP enrolment, verification and
// single-use recovery codes. It holds no state of its own; every transition
// reads a domain.MFAState snapshot and commits through one conditional store
// call.
type MFAService struct {
	Store  store.Store
	Issuer string // issuer shown in authenticator apps

	// PendingTTL bounds how long a generated key stays attachable.
	PendingTTL time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// State returns the account's MFA state.
func (s *MFAService) State(ctx context.Context, account string) (domain.MFAState, error) {
	state, err := s.Store.MFA().GetMFAState(ctx, account, s.now())
	if err != nil {
		return domain.MFAState{}, storeErr("get mfa state", account, err)
	}
	return state, nil
}

// ParseReferenceTime parses the client's clock reading used to compute skew:
// unix milliseconds, or an RFC 3339 timestamp.
func ParseReferenceTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidTime
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms <= 0 {
			return time.Time{}, ErrInvalidTime
		}
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil || t.UnixMilli() <= 0 {
		return time.Time{}, ErrInvalidTime
	}
	return t, nil
}

// GenerateKey creates a fresh TOTP seed and stores it as the account's
// candidate, replacing any earlier candidate. Skew is the server clock minus
// referenceTime in milliseconds.
func (s *MFAService) GenerateKey(ctx context.Context, account string, referenceTime time.Time) (domain.GeneratedKey, error) {
	if referenceTime.IsZero() || referenceTime.UnixMilli() <= 0 {
		return domain.GeneratedKey{}, ErrInvalidTime
	}

	state, err := s.State(ctx, account)
	if err != nil {
		return domain.GeneratedKey{}, err
	}
	switch state.Status {
	case domain.MFAEnabled:
		return domain.GeneratedKey{}, ErrMFAAlreadyEnabled
	case domain.MFADisabled, domain.MFAPending:
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: account,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.GeneratedKey{}, fmt.Errorf("generate totp key: %w", err)
	}

	now := s.now()
	ttl := s.PendingTTL
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	err = s.Store.MFA().SetCandidateSecret(ctx, account, key.Secret(), now.Add(ttl))
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.GeneratedKey{}, ErrMFAAlreadyEnabled
	}
	if err != nil {
		return domain.GeneratedKey{}, storeErr("set candidate secret", account, err)
	}

	slogx.FromContext(ctx).Info("mfa key generated", "account", account)

	return domain.GeneratedKey{
		Secret: key.Secret(),
		URI:    key.URL(),
		Skew:   now.UnixMilli() - referenceTime.UnixMilli(),
	}, nil
}

// Attach enables MFA with secret once code proves the caller holds it, and
// returns the plaintext recovery codes. secret must be the account's live
// candidate from GenerateKey.
func (s *MFAService) Attach(ctx context.Context, account, secret, code string) ([]string, error) {
	state, err := s.State(ctx, account)
	if err != nil {
		return nil, err
	}
	switch state.Status {
	case domain.MFAEnabled:
		return nil, ErrMFAAlreadyEnabled
	case domain.MFADisabled, domain.MFAPending:
	}

	if !s.validateTOTP(code, secret) {
		mfaVerifications.WithLabelValues("none").Inc()
		return nil, ErrTOTPInvalid
	}

	codes, hashes, err := newRecoveryCodes()
	if err != nil {
		return nil, err
	}

	err = s.Store.MFA().EnableMFA(ctx, account, secret, hashes, s.now())
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return nil, ErrMFAAlreadyEnabled
	case errors.Is(err, store.ErrPrecondition):
		// Not the live candidate: unknown, superseded or expired.
		return nil, ErrTOTPInvalid
	case err != nil:
		return nil, storeErr("enable mfa", account, err)
	}

	slogx.FromContext(ctx).Info("mfa attached", "account", account)
	return codes, nil
}

// Verify accepts a TOTP code or, failing that, consumes a recovery code.
func (s *MFAService) Verify(ctx context.Context, account, code string) error {
	state, err := s.State(ctx, account)
	if err != nil {
		return err
	}
	switch state.Status {
	case domain.MFADisabled, domain.MFAPending:
		return ErrMFADisabled
	case domain.MFAEnabled:
	}

	if s.validateTOTP(code, state.Secret) {
		mfaVerifications.WithLabelValues("totp").Inc()
		return nil
	}

	normalized := cryptox.NormalizeRecoveryCode(code)
	if normalized == "" {
		mfaVerifications.WithLabelValues("none").Inc()
		return ErrTOTPInvalid
	}

	ok, err := s.Store.MFA().ConsumeRecoveryCode(ctx, account, cryptox.FingerprintToken(normalized))
	if err != nil {
		return storeErr("consume recovery code", account, err)
	}
	if !ok {
		mfaVerifications.WithLabelValues("none").Inc()
		return ErrTOTPInvalid
	}

	mfaVerifications.WithLabelValues("recovery_code").Inc()
	slogx.FromContext(ctx).Info("recovery code used", "account", account)
	return nil
}

// RegenerateCodes replaces every recovery code. Only a TOTP code is accepted.
func (s *MFAService) RegenerateCodes(ctx context.Context, account, code string) ([]string, error) {
	secret, err := s.requireTOTP(ctx, account, code)
	if err != nil {
		return nil, err
	}

	codes, hashes, err := newRecoveryCodes()
	if err != nil {
		return nil, err
	}

	err = s.Store.MFA().ReplaceRecoveryCodes(ctx, account, secret, hashes)
	if errors.Is(err, store.ErrPrecondition) {
		// Detached or re-attached since we read the state.
		return nil, ErrMFADisabled
	}
	if err != nil {
		return nil, storeErr("replace recovery codes", account, err)
	}

	slogx.FromContext(ctx).Info("recovery codes regenerated", "account", account)
	return codes, nil
}

// Detach disables MFA. Only a TOTP code is accepted.
func (s *MFAService) Detach(ctx context.Context, account, code string) error {
	secret, err := s.requireTOTP(ctx, account, code)
	if err != nil {
		return err
	}

	err = s.Store.MFA().DisableMFA(ctx, account, secret)
	if errors.Is(err, store.ErrPrecondition) {
		return ErrMFADisabled
	}
	if err != nil {
		return storeErr("disable mfa", account, err)
	}

	slogx.FromContext(ctx).Info("mfa detached", "account", account)
	return nil
}

// requireTOTP returns the active secret once code validates against it.
func (s *MFAService) requireTOTP(ctx context.Context, account, code string) (string, error) {
	state, err := s.State(ctx, account)
	if err != nil {
		return "", err
	}
	switch state.Status {
	case domain.MFADisabled, domain.MFAPending:
		return "", ErrMFADisabled
	case domain.MFAEnabled:
	}

	if !s.validateTOTP(code, state.Secret) {
		mfaVerifications.WithLabelValues("none").Inc()
		return "", ErrTOTPInvalid
	}
	mfaVerifications.WithLabelValues("totp").Inc()
	return state.Secret, nil
}

func (s *MFAService) validateTOTP(code, secret string) bool {
	code = strings.TrimSpace(code)
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, s.now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// newRecoveryCodes returns the plaintext codes for the caller and their
// fingerprints for the store.
func newRecoveryCodes() ([]string, []string, error) {
	codes := make([]string, domain.RecoveryCodeCount)
	hashes := make([]string, domain.RecoveryCodeCount)
	for i := range codes {
		code, err := cryptox.GenerateRecoveryCode()
		if err != nil {
			return nil, nil, fmt.Errorf("generate recovery code: %w", err)
		}
		codes[i] = code
		hashes[i] = cryptox.FingerprintToken(cryptox.NormalizeRecoveryCode(code))
	}
	return codes, hashes, nil
}
