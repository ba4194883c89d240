package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHousekeeping_Cleanup(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	now := time.Now()

	require.NoError(t, f.store.TokenPools().AddToken(ctx, "alice", testAudience, "old", now.Add(-time.Minute)))
	require.NoError(t, f.store.TokenPools().AddToken(ctx, "alice", testAudience, "live", now.Add(time.Hour)))
	require.NoError(t, f.store.MFA().SetCandidateSecret(ctx, "alice", "SEED", now.Add(-time.Minute)))

	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour)
	hk.Cleanup(ctx, now)

	n, err := f.store.TokenPools().DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	require.Zero(t, n, "already pruned")

	n, err = f.store.MFA().DeleteExpiredCandidates(ctx, now)
	require.NoError(t, err)
	require.Zero(t, n)

	ok, err := f.store.TokenPools().HasToken(ctx, "alice", testAudience, "live", now)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHousekeeping_StartStop(t *testing.T) {
	f := newFixture(t)
	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Millisecond)
	hk.Start()
	time.Sleep(5 * time.Millisecond)
	hk.Stop()
}
