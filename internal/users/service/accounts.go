package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/internal/users/store"
	"github.com/aussiebroadwan/usergate/pkg/cryptox"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
)

const (
	MaxUsernameLength = 128
	MinPasswordLength = 8
	MaxPasswordLength = 1024
)

// AccountService owns the primary credential. It is the PasswordVerifier the
// login flow authenticates against.
type AccountService struct {
	Store store.Store
}

// Register creates an account with an argon2id password hash.
func (s *AccountService) Register(ctx context.Context, username, password string) (domain.Account, error) {
	username = domain.NormalizeUsername(username)
	if err := validateCredentials(username, password); err != nil {
		return domain.Account{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	err = s.Store.Accounts().CreateAccount(ctx, account)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Account{}, ErrAccountExists
	}
	if err != nil {
		return domain.Account{}, storeErr("create account", username, err)
	}

	slogx.FromContext(ctx).Info("account registered", "account", username)
	return account, nil
}

// VerifyPassword checks the primary credential and returns the normalised
// username. Unknown accounts and wrong passwords are indistinguishable.
func (s *AccountService) VerifyPassword(ctx context.Context, username, password string) (string, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		return "", ErrCredentialsInvalid
	}

	account, err := s.Store.Accounts().GetAccount(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same argon2 time as a real check.
		_ = cryptox.VerifyPassword(password, dummyHash())
		return "", ErrCredentialsInvalid
	}
	if err != nil {
		return "", storeErr("get account", username, err)
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return "", ErrCredentialsInvalid
		}
		return "", fmt.Errorf("verify password: %w", err)
	}

	if cryptox.NeedsRehash(account.PasswordHash) {
		s.rehash(ctx, username, password)
	}
	return username, nil
}

// rehash upgrades a hash made with older cost parameters. Failure only
// costs another attempt at the next login.
func (s *AccountService) rehash(ctx context.Context, username, password string) {
	hash, err := cryptox.HashPassword(password)
	if err == nil {
		err = s.Store.Accounts().UpdatePasswordHash(ctx, username, hash)
	}
	if err != nil {
		slogx.FromContext(ctx).Warn("password rehash failed", "account", username, "error", err)
		return
	}
	slogx.FromContext(ctx).Info("password hash upgraded", "account", username)
}

// ChangePassword replaces the password after checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, username, current, next string) error {
	username, err := s.VerifyPassword(ctx, username, current)
	if err != nil {
		return err
	}
	if err := validateCredentials(username, next); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Accounts().UpdatePasswordHash(ctx, username, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return storeErr("update password", username, err)
	}

	slogx.FromContext(ctx).Info("password changed", "account", username)
	return nil
}

// DeleteAccount removes the account along with its MFA state and every
// token pool, after checking the password.
func (s *AccountService) DeleteAccount(ctx context.Context, username, password string) error {
	username, err := s.VerifyPassword(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.Store.Accounts().DeleteAccount(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return storeErr("delete account", username, err)
	}

	slogx.FromContext(ctx).Info("account deleted", "account", username)
	return nil
}

// GetProfile returns the public view of an account.
func (s *AccountService) GetProfile(ctx context.Context, username string) (domain.Profile, error) {
	username = domain.NormalizeUsername(username)
	if _, err := s.Store.Accounts().GetAccount(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrAccountNotFound
		}
		return domain.Profile{}, storeErr("get account", username, err)
	}

	state, err := s.Store.MFA().GetMFAState(ctx, username, time.Now())
	if err != nil {
		return domain.Profile{}, storeErr("get mfa state", username, err)
	}

	return domain.Profile{Username: username, MFAEnabled: state.Enabled()}, nil
}

func validateCredentials(username, password string) error {
	if username == "" || utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("%w: username must be 1-%d characters", ErrInvalidRequest, MaxUsernameLength)
	}
	if strings.ContainsAny(username, "{}:") || strings.ContainsFunc(username, unicode.IsControl) {
		return fmt.Errorf("%w: username must not contain '{', '}', ':' or control characters", ErrInvalidRequest)
	}
	if n := utf8.RuneCountInString(password); n < MinPasswordLength || n > MaxPasswordLength {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidRequest, MinPasswordLength, MaxPasswordLength)
	}
	return nil
}

var dummyHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("usergate-timing-equaliser")
	if err != nil {
		return ""
	}
	return h
})
