package service

import (
	"context"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
)

// AMR values recorded in issued tokens.
const (
	AMRPassword = "pwd"
	AMRMFA      = "mfa"
)

// PasswordVerifier checks the primary credential and returns the canonical
// account name.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, username, password string) (string, error)
}

// LoginService is the Login Orchestrator: password, then second factor when
// the account requires one, then token issue.
type LoginService struct {
	Passwords PasswordVerifier
	MFA       *MFAService
	Tokens    *TokenService
}

type LoginRequest struct {
	Username string
	Password string
	Audience string

	// MFACode is a TOTP or recovery code. Empty when the client sent none.
	MFACode string
}

// Login never looks at MFA state before the password has been verified, so a
// caller without the password learns nothing about the second factor.
func (s *LoginService) Login(ctx context.Context, req LoginRequest) (domain.IssuedToken, error) {
	token, err := s.login(ctx, req)
	logins.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		slogx.FromContext(ctx).Info("login rejected", "cause", loginResult(err), "audience", req.Audience)
	}
	return token, err
}

func (s *LoginService) login(ctx context.Context, req LoginRequest) (domain.IssuedToken, error) {
	if req.Audience == "" {
		return domain.IssuedToken{}, ErrInvalidRequest
	}

	account, err := s.Passwords.VerifyPassword(ctx, req.Username, req.Password)
	if err != nil {
		return domain.IssuedToken{}, err
	}

	amr := []string{AMRPassword}

	state, err := s.MFA.State(ctx, account)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	switch state.Status {
	case domain.MFAEnabled:
		if req.MFACode == "" {
			return domain.IssuedToken{}, ErrTOTPRequired
		}
		if err := s.MFA.Verify(ctx, account, req.MFACode); err != nil {
			return domain.IssuedToken{}, err
		}
		amr = append(amr, AMRMFA)
	case domain.MFADisabled, domain.MFAPending:
	}

	token, err := s.Tokens.Issue(ctx, account, req.Audience, IssueOptions{AMR: amr})
	if err != nil {
		return domain.IssuedToken{}, err
	}

	slogx.FromContext(ctx).Info("login succeeded", "account", account, "audience", req.Audience, "amr", amr)
	return token, nil
}
