package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/usergate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 500, time.UTC)

	c := jwtx.NewClaims(jwtx.ClaimsParams{
		Issuer:   "usergate",
		Subject:  "alice",
		Audience: "web",
		AMR:      []string{"pwd"},
		Extra:    map[string]string{"role": "admin"},
		TTL:      time.Hour,
		Now:      now,
	})

	require.Equal(t, "usergate", c.Issuer)
	require.Equal(t, "alice", c.Subject)
	require.Equal(t, "alice", c.Username)
	require.Equal(t, jwt.ClaimStrings{"web"}, c.Audience)
	require.Equal(t, []string{"pwd"}, c.AMR)
	require.Equal(t, "admin", c.Extra["role"])
	require.NotEmpty(t, c.ID)
	require.True(t, now.Truncate(time.Second).Add(time.Hour).Equal(c.Expiry()))

	other := jwtx.NewClaims(jwtx.ClaimsParams{Subject: "alice", Audience: "web"})
	require.NotEqual(t, c.ID, other.ID, "jti must be unique per token")
	require.WithinDuration(t, time.Now().Add(jwtx.DefaultSessionTTL), other.Expiry(), 5*time.Second)
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "usergate",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("usergate"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("someone-else")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: []string{"web", "mobile"},
		},
	}

	t.Run("contains match", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience("web"))
		require.NoError(t, c.ValidateAudience("mobile"))
	})

	t.Run("no match", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateAudience("admin"), jwtx.ErrAudience)
	})

	t.Run("empty audience never matches", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateAudience(""), jwtx.ErrAudience)
	})
}
