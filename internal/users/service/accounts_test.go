package service

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/pkg/cryptox"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestAccounts_Register(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	a, err := f.accounts.Register(ctx, "  Alice ", testPassword)
	require.NoError(t, err)
	require.Equal(t, "alice", a.Username)
	require.NotContains(t, a.PasswordHash, testPassword)

	_, err = f.accounts.Register(ctx, "ALICE", testPassword)
	require.ErrorIs(t, err, ErrAccountExists)

	_, err = f.accounts.Register(ctx, "", testPassword)
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.accounts.Register(ctx, "bob", "short")
	require.ErrorIs(t, err, ErrInvalidRequest)

	for _, name := range []string{"x}:a", "{bob}", "carol:web", "da\x00ve"} {
		_, err = f.accounts.Register(ctx, name, testPassword)
		require.ErrorIs(t, err, ErrInvalidRequest, name)
	}
}

func TestAccounts_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.register(t, "alice")

	require.ErrorIs(t, f.accounts.ChangePassword(ctx, "alice", "wrong password", "another password"), ErrCredentialsInvalid)
	require.NoError(t, f.accounts.ChangePassword(ctx, "alice", testPassword, "another password"))

	_, err := f.accounts.VerifyPassword(ctx, "alice", testPassword)
	require.ErrorIs(t, err, ErrCredentialsInvalid)
	name, err := f.accounts.VerifyPassword(ctx, "alice", "another password")
	require.NoError(t, err)
	require.Equal(t, "alice", name)
}

func TestAccounts_Profile(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.register(t, "alice")

	p, err := f.accounts.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.False(t, p.MFAEnabled)

	enroll(t, f, "alice")

	p, err = f.accounts.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.True(t, p.MFAEnabled)

	_, err = f.accounts.GetProfile(ctx, "nobody")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccounts_DeleteRevokesSessions(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.register(t, "alice")

	tok, err := f.login.Login(ctx, LoginRequest{Username: "alice", Password: testPassword, Audience: testAudience})
	require.NoError(t, err)

	require.ErrorIs(t, f.accounts.DeleteAccount(ctx, "alice", "wrong password"), ErrCredentialsInvalid)
	require.NoError(t, f.accounts.DeleteAccount(ctx, "alice", testPassword))

	_, err = f.tokens.Verify(ctx, tok.Token, testAudience)
	require.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.accounts.GetProfile(ctx, "alice")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccounts_VerifyPasswordUpgradesOldHash(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	// A hash made with cheaper parameters than HashPassword uses today.
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte(testPassword+"service-test-pepper"), salt, 1, 8*1024, 1, 32)
	old := fmt.Sprintf("$argon2id$v=19$m=8192,t=1,p=1$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(key))

	require.NoError(t, f.store.Accounts().CreateAccount(ctx, domain.Account{
		Username:     "legacy",
		PasswordHash: old,
		CreatedAt:    time.Now(),
	}))

	name, err := f.accounts.VerifyPassword(ctx, "legacy", testPassword)
	require.NoError(t, err)
	require.Equal(t, "legacy", name)

	stored, err := f.store.Accounts().GetAccount(ctx, "legacy")
	require.NoError(t, err)
	require.NotEqual(t, old, stored.PasswordHash)
	require.False(t, cryptox.NeedsRehash(stored.PasswordHash))

	_, err = f.accounts.VerifyPassword(ctx, "legacy", testPassword)
	require.NoError(t, err)
}
