package userssdk

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// Session is an authenticated handle holding one bearer token. Tokens don't
// refresh: when one expires or is revoked, log in again.
type Session struct {
	client    *Client
	token     string
	username  string
	expiresAt time.Time
}

func newSession(c *Client, login LoginResponse) *Session {
	return &Session{
		client:    c,
		token:     login.Token,
		username:  login.Username,
		expiresAt: login.ExpiresAt,
	}
}

func (s *Session) Token() string        { return s.token }
func (s *Session) Username() string     { return s.username }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// Logout revokes this session's token. Other sessions stay valid.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/logout", nil, nil)
	if err != nil {
		return err
	}
	var out SuccessResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

func (s *Session) Me(ctx context.Context) (*ProfileResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/me/password",
		ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
	if err != nil {
		return err
	}
	var out SuccessResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// DeleteAccount removes the account and every session of it.
func (s *Session) DeleteAccount(ctx context.Context, password string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/me",
		DeleteAccountRequest{Password: password}, nil)
	if err != nil {
		return err
	}
	var out SuccessResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// GenerateKey starts MFA enrolment. referenceTime is the caller's clock,
// used by the server to report skew.
func (s *Session) GenerateKey(ctx context.Context, referenceTime time.Time) (*GenerateKeyResponse, error) {
	req := GenerateKeyRequest{Time: FlexString(strconv.FormatInt(referenceTime.UnixMilli(), 10))}

	var out GenerateKeyResponse
	if err := s.postJSON(ctx, "/v1/mfa/generate-key", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Attach(ctx context.Context, secret, totp string) (*AttachResponse, error) {
	var out AttachResponse
	if err := s.postJSON(ctx, "/v1/mfa/attach", AttachRequest{Secret: secret, TOTP: totp}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMFA checks a TOTP or recovery code. Recovery codes are consumed.
func (s *Session) VerifyMFA(ctx context.Context, code string) (*VerifyMFAResponse, error) {
	var out VerifyMFAResponse
	if err := s.postJSON(ctx, "/v1/mfa/verify", TOTPRequest{TOTP: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) RegenerateCodes(ctx context.Context, totp string) (*RegenerateCodesResponse, error) {
	var out RegenerateCodesResponse
	if err := s.postJSON(ctx, "/v1/mfa/regenerate-codes", TOTPRequest{TOTP: totp}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Detach(ctx context.Context, totp string) (*DetachResponse, error) {
	var out DetachResponse
	if err := s.postJSON(ctx, "/v1/mfa/detach", TOTPRequest{TOTP: totp}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, http.StatusOK)
}
