package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrPrecondition is returned when a conditional write did not apply
	// because the stored state no longer matches what the caller expected.
	ErrPrecondition = errors.New("store: precondition failed")
)

// Store is the Credential Store: the only shared state of the service and
// the only place where concurrent requests synchronise. Drivers (sqlite,
// redis) implement it. Every multi-field change is a single atomic driver
// call so callers never need a transaction of their own.
type Store interface {
	Accounts() Accounts
	TokenPools() TokenPools
	MFA() MFA

	ApplyMigrations() error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

type Accounts interface {
	// CreateAccount returns ErrAlreadyExists if the username is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	GetAccount(ctx context.Context, username string) (domain.Account, error)

	UpdatePasswordHash(ctx context.Context, username string, newHash string) error

	// DeleteAccount also drops the account's MFA state, recovery codes and
	// token pools.
	DeleteAccount(ctx context.Context, username string) error
}

// TokenPools holds, per (account, audience), the identifiers of every token
// that is currently allowed to verify.
type TokenPools interface {
	AddToken(ctx context.Context, account, audience, tokenID string, expiresAt time.Time) error

	// HasToken reports whether tokenID is in the pool and not past its expiry.
	HasToken(ctx context.Context, account, audience, tokenID string, now time.Time) (bool, error)

	// RemoveToken removes exactly one entry. Removing an absent entry is not
	// an error.
	RemoveToken(ctx context.Context, account, audience, tokenID string) error

	// DeleteExpiredTokens prunes entries whose expiry is at or before now and
	// returns how many were removed.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type MFA interface {
	// GetMFAState never returns ErrNotFound: an account without any MFA
	// record is MFADisabled.
	GetMFAState(ctx context.Context, account string, now time.Time) (domain.MFAState, error)

	// SetCandidateSecret replaces any previous candidate. It returns
	// ErrAlreadyExists when MFA is already enabled.
	SetCandidateSecret(ctx context.Context, account, secret string, expiresAt time.Time) error

	// EnableMFA atomically enables MFA with secret and stores the recovery
	// code hashes, clearing the candidate. It returns ErrAlreadyExists when
	// MFA is already enabled and ErrPrecondition when secret is not the
	// account's unexpired candidate.
	EnableMFA(ctx context.Context, account, secret string, codeHashes []string, now time.Time) error

	// ReplaceRecoveryCodes swaps the full set of recovery codes. It returns
	// ErrPrecondition unless MFA is enabled with expectSecret.
	ReplaceRecoveryCodes(ctx context.Context, account, expectSecret string, codeHashes []string) error

	// ConsumeRecoveryCode removes codeHash in a single compare-and-remove and
	// reports whether it was present.
	ConsumeRecoveryCode(ctx context.Context, account, codeHash string) (bool, error)

	// DisableMFA clears the secret, candidate and recovery codes. It returns
	// ErrPrecondition unless MFA is enabled with expectSecret.
	DisableMFA(ctx context.Context, account, expectSecret string) error

	// DeleteExpiredCandidates prunes candidate secrets past their expiry.
	DeleteExpiredCandidates(ctx context.Context, now time.Time) (int64, error)
}
